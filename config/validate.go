package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Validate checks if the configuration is valid. Every problem is reported
// in one error.
//
// The input's existence is not checked here: the source element reports a
// missing input itself, and a URI input may not be a local file at all.
func (c *Config) Validate() error {
	var result *multierror.Error

	// Required fields
	if c.Input == "" {
		result = multierror.Append(result, errors.New("input video is required"))
	} else if !strings.Contains(c.Input, "://") {
		if info, err := os.Stat(c.Input); err == nil && info.IsDir() {
			result = multierror.Append(result, fmt.Errorf("input is a directory: %s", c.Input))
		}
	}

	if c.Image == "" {
		result = multierror.Append(result, errors.New("overlay image is required"))
	} else if info, err := os.Stat(c.Image); os.IsNotExist(err) {
		result = multierror.Append(result, fmt.Errorf("image file does not exist: %s", c.Image))
	} else if err == nil && info.IsDir() {
		result = multierror.Append(result, fmt.Errorf("image is a directory: %s", c.Image))
	}

	if c.Output == "" && c.OutputDir == "" {
		result = multierror.Append(result, errors.New("output or output directory is required"))
	}

	// Validate encoding config
	if err := c.Encoding.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("encoding config: %w", err))
	}

	// Validate overlay config
	if err := c.OverlaySettings().Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("overlay config: %w", err))
	}

	// Validate element names
	if err := c.Elements.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("elements config: %w", err))
	}

	if result != nil {
		result.ErrorFormat = formatErrors
	}
	return result.ErrorOrNil()
}

// formatErrors keeps the aggregated error on one line.
func formatErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return "configuration validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks if encoding configuration is valid
func (ec *EncodingConfig) Validate() error {
	var errs []string

	if ec.Container == "" {
		errs = append(errs, "container is required")
	}
	if err := ec.Audio.validate("audio"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := ec.Video.validate("video"); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, ", "))
	}
	return nil
}

func (sc *StreamConfig) validate(kind string) error {
	var errs []string

	if sc.Format == "" {
		errs = append(errs, kind+" format is required")
	} else if !strings.HasPrefix(sc.Format, kind+"/") {
		errs = append(errs, fmt.Sprintf("%s format '%s' must start with %s/", kind, sc.Format, kind))
	}
	if sc.Presence < 0 {
		errs = append(errs, kind+" presence cannot be negative (use 0 for unbounded)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, ", "))
	}
	return nil
}

// Validate checks that every element type is named
func (el *ElementsConfig) Validate() error {
	var missing []string
	if el.Source == "" {
		missing = append(missing, "source")
	}
	if el.Encoder == "" {
		missing = append(missing, "encoder")
	}
	if el.Sink == "" {
		missing = append(missing, "sink")
	}
	if el.Overlay == "" {
		missing = append(missing, "overlay")
	}
	if len(missing) > 0 {
		return fmt.Errorf("element types required: %s", strings.Join(missing, ", "))
	}
	return nil
}
