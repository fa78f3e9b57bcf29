// Package overlay loads the still image stamped onto the video and turns the
// placement settings into configuration for the overlay element.
package overlay

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a validated overlay image on disk.
type Image struct {
	Path   string // absolute path
	Format string // decoder name, e.g. "png"
	Width  int
	Height int
}

// Load opens path and decodes the image header. It fails when the file is
// missing, is a directory, or is not an image any registered decoder knows.
func Load(path string) (*Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("image %s is a directory", path)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image %s has invalid dimensions %dx%d", path, cfg.Width, cfg.Height)
	}

	return &Image{
		Path:   abs,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
