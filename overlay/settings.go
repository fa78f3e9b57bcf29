package overlay

import (
	"fmt"
	"strings"

	"watermark/element"
)

// Positioning selects how offsets are interpreted by the overlay element.
type Positioning string

const (
	// PositionRelativeToEdges measures offsets from the frame edges; negative
	// offsets count from the right/bottom edge. This is the element default.
	PositionRelativeToEdges Positioning = "relative-to-edges"
	// PositionAbsolute places the image at absolute pixel offsets.
	PositionAbsolute Positioning = "absolute"
)

// PositioningValues returns the valid positioning modes.
func PositioningValues() []string {
	return []string{string(PositionRelativeToEdges), string(PositionAbsolute)}
}

// IsValidPositioning checks if mode is a known positioning mode.
func IsValidPositioning(mode string) bool {
	for _, valid := range PositioningValues() {
		if mode == valid {
			return true
		}
	}
	return false
}

// Nick returns the overlay element's enum nick for p.
func (p Positioning) Nick() string {
	if p == PositionAbsolute {
		return "pixels-absolute"
	}
	return "pixels-relative-to-edges"
}

// Settings is the overlay placement.
type Settings struct {
	Positioning Positioning
	OffsetX     int
	OffsetY     int
	RelativeX   float64 // 0..1, fraction of the frame width
	RelativeY   float64 // 0..1, fraction of the frame height
	Alpha       float64 // 0..1
	Width       int     // 0 keeps the image width
	Height      int     // 0 keeps the image height
}

// DefaultSettings places the image at the top-left corner, fully opaque.
func DefaultSettings() Settings {
	return Settings{
		Positioning: PositionRelativeToEdges,
		Alpha:       1.0,
	}
}

// Validate checks the placement values.
func (s Settings) Validate() error {
	var errors []string

	if !IsValidPositioning(string(s.Positioning)) {
		errors = append(errors, fmt.Sprintf("invalid positioning '%s', must be one of: %s",
			s.Positioning, strings.Join(PositioningValues(), ", ")))
	}
	if s.Alpha < 0 || s.Alpha > 1 {
		errors = append(errors, "alpha must be between 0 and 1")
	}
	if s.RelativeX < 0 || s.RelativeX > 1 || s.RelativeY < 0 || s.RelativeY > 1 {
		errors = append(errors, "relative offsets must be between 0 and 1")
	}
	if s.Width < 0 || s.Height < 0 {
		errors = append(errors, "overlay size cannot be negative (use 0 for image size)")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}
	return nil
}

// ElementConfig returns the overlay element properties for img. The
// positioning mode is passed as its enum nick.
func (s Settings) ElementConfig(img *Image) []element.Setting {
	cfg := []element.Setting{
		{Key: "location", Value: img.Path},
		{Key: "offset-x", Value: s.OffsetX},
		{Key: "offset-y", Value: s.OffsetY},
		{Key: "relative-x", Value: s.RelativeX},
		{Key: "relative-y", Value: s.RelativeY},
		{Key: "alpha", Value: s.Alpha},
		{Key: "positioning-mode", Value: s.Positioning.Nick()},
	}
	if s.Width > 0 {
		cfg = append(cfg, element.Setting{Key: "overlay-width", Value: s.Width})
	}
	if s.Height > 0 {
		cfg = append(cfg, element.Setting{Key: "overlay-height", Value: s.Height})
	}
	return cfg
}
