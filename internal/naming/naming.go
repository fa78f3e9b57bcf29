// Package naming derives output file names and engine URIs from user input.
package naming

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Suffix is inserted between the input stem and its extension.
const Suffix = ".watermark"

// ErrDirectoryInput is returned when the input names a directory.
var ErrDirectoryInput = errors.New("input is a directory")

// OutputFileName returns "<stem>.watermark.<ext>" for input, or
// "<stem>.watermark" when input has no extension. Only the base name is
// kept. A URI input is reduced to the base name of its path.
func OutputFileName(input string) (string, error) {
	p := input
	if HasScheme(input) {
		u, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("invalid input URI %q: %w", input, err)
		}
		p = u.Path
	} else if info, err := os.Stat(input); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryInput, input)
	}

	if strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: %s", ErrDirectoryInput, input)
	}
	base := filepath.Base(p)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("input %q has no file name", input)
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// Dot files such as ".mp4" have no extension in this sense.
		return base + Suffix, nil
	}
	return stem + Suffix + ext, nil
}

// OutputPath joins dir with OutputFileName(input).
func OutputPath(dir, input string) (string, error) {
	name, err := OutputFileName(input)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name), nil
}

// HasScheme reports whether input already looks like a URI
// ("file:///...", "http://...").
func HasScheme(input string) bool {
	i := strings.Index(input, "://")
	if i <= 0 {
		return false
	}
	for _, r := range input[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// ToURI converts a plain path to an absolute file:// URI. Inputs that already
// carry a scheme are returned unchanged.
func ToURI(input string) (string, error) {
	if input == "" {
		return "", errors.New("input cannot be empty")
	}
	if HasScheme(input) {
		return input, nil
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", input, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// LocalPath returns the filesystem path behind input when it is a plain path
// or a file:// URI. ok is false for any other scheme.
func LocalPath(input string) (path string, ok bool) {
	if !HasScheme(input) {
		return input, input != ""
	}
	u, err := url.Parse(input)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}
