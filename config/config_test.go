package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Check defaults
	if cfg.Encoding.Container != "video/x-matroska" {
		t.Errorf("Expected container 'video/x-matroska', got %s", cfg.Encoding.Container)
	}
	if cfg.Encoding.Audio.Format != "audio/x-vorbis" {
		t.Errorf("Expected audio format 'audio/x-vorbis', got %s", cfg.Encoding.Audio.Format)
	}
	if cfg.Encoding.Video.Format != "video/x-theora" {
		t.Errorf("Expected video format 'video/x-theora', got %s", cfg.Encoding.Video.Format)
	}
	if cfg.Encoding.Audio.Presence != 0 || cfg.Encoding.Video.Presence != 0 {
		t.Error("Expected unbounded presence for both stream kinds")
	}
	if cfg.Overlay.Positioning != "relative-to-edges" {
		t.Errorf("Expected positioning 'relative-to-edges', got %s", cfg.Overlay.Positioning)
	}
	if cfg.Overlay.Alpha != 1.0 {
		t.Errorf("Expected alpha 1.0, got %f", cfg.Overlay.Alpha)
	}
	if cfg.Elements.Source != "uridecodebin" || cfg.Elements.Encoder != "encodebin" || cfg.Elements.Sink != "filesink" {
		t.Errorf("Unexpected skeleton elements: %+v", cfg.Elements)
	}
	if !cfg.Probe {
		t.Error("Expected probe to be enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      func() *Config
		expectError bool
		errorText   string
	}{
		{
			name: "valid config",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = "clip.mp4"
				cfg.Image = createTempFile(t)
				return cfg
			},
			expectError: false,
		},
		{
			name: "missing input file is left to the engine",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = "/nonexistent/missing.mp4"
				cfg.Image = createTempFile(t)
				return cfg
			},
			expectError: false,
		},
		{
			name: "missing input",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Image = createTempFile(t)
				return cfg
			},
			expectError: true,
			errorText:   "input video is required",
		},
		{
			name: "directory input",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = t.TempDir()
				cfg.Image = createTempFile(t)
				return cfg
			},
			expectError: true,
			errorText:   "input is a directory",
		},
		{
			name: "missing image",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = "clip.mp4"
				return cfg
			},
			expectError: true,
			errorText:   "overlay image is required",
		},
		{
			name: "nonexistent image",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = "clip.mp4"
				cfg.Image = "/nonexistent/logo.png"
				return cfg
			},
			expectError: true,
			errorText:   "image file does not exist",
		},
		{
			name: "no output location",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = "clip.mp4"
				cfg.Image = createTempFile(t)
				cfg.OutputDir = ""
				return cfg
			},
			expectError: true,
			errorText:   "output or output directory is required",
		},
		{
			name: "audio format of the wrong kind",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = "clip.mp4"
				cfg.Image = createTempFile(t)
				cfg.Encoding.Audio.Format = "video/x-theora"
				return cfg
			},
			expectError: true,
			errorText:   "must start with audio/",
		},
		{
			name: "invalid positioning",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Input = "clip.mp4"
				cfg.Image = createTempFile(t)
				cfg.Overlay.Positioning = "center"
				return cfg
			},
			expectError: true,
			errorText:   "invalid positioning",
		},
		{
			name: "every problem reported at once",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Overlay.Alpha = 2
				return cfg
			},
			expectError: true,
			errorText:   "input video is required; overlay image is required; overlay config: alpha must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config()
			err := cfg.Validate()

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errorText)
				} else if !contains(err.Error(), tt.errorText) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorText, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
			}
		})
	}
}

func TestEncodingConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      EncodingConfig
		expectError bool
	}{
		{
			name:        "defaults",
			config:      DefaultConfig().Encoding,
			expectError: false,
		},
		{
			name: "mp4 with aac and h264",
			config: EncodingConfig{
				Container: "video/quicktime",
				Audio:     StreamConfig{Format: "audio/mpeg"},
				Video:     StreamConfig{Format: "video/x-h264", Presence: 1},
			},
			expectError: false,
		},
		{
			name: "missing container",
			config: EncodingConfig{
				Audio: StreamConfig{Format: "audio/x-vorbis"},
				Video: StreamConfig{Format: "video/x-theora"},
			},
			expectError: true,
		},
		{
			name: "negative presence",
			config: EncodingConfig{
				Container: "video/x-matroska",
				Audio:     StreamConfig{Format: "audio/x-vorbis", Presence: -1},
				Video:     StreamConfig{Format: "video/x-theora"},
			},
			expectError: true,
		},
		{
			name: "missing video format",
			config: EncodingConfig{
				Container: "video/x-matroska",
				Audio:     StreamConfig{Format: "audio/x-vorbis"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestConfigProfile(t *testing.T) {
	cfg := DefaultConfig()

	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Expected default profile to build, got: %v", err)
	}
	want := "video/x-matroska:video/x-theora:audio/x-vorbis"
	if p.String() != want {
		t.Errorf("Expected profile %q, got %q", want, p.String())
	}

	cfg.Encoding.Container = ""
	if _, err := cfg.Profile(); err == nil {
		t.Error("Expected error for empty container")
	}
}

func TestConfigOverlaySettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overlay.Positioning = "absolute"
	cfg.Overlay.OffsetX = -10
	cfg.Overlay.Alpha = 0.5

	s := cfg.OverlaySettings()
	if string(s.Positioning) != "absolute" || s.OffsetX != -10 || s.Alpha != 0.5 {
		t.Errorf("Unexpected settings: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected valid settings, got: %v", err)
	}
}

func TestElementsConfigValidate(t *testing.T) {
	el := ElementsConfig{Source: "uridecodebin", Encoder: "encodebin"}
	err := el.Validate()
	if err == nil {
		t.Fatal("Expected error for missing element types")
	}
	if !contains(err.Error(), "sink, overlay") {
		t.Errorf("Expected missing names listed, got '%s'", err.Error())
	}
}

func TestConfigCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input = "input.mp4"
	cfg.Overlay.OffsetX = 8

	copy := cfg.Copy()

	// Modify original
	cfg.Input = "modified.mp4"
	cfg.Overlay.OffsetX = 16

	// Copy should be unchanged
	if copy.Input != "input.mp4" {
		t.Errorf("Copy input was modified: expected 'input.mp4', got '%s'", copy.Input)
	}
	if copy.Overlay.OffsetX != 8 {
		t.Errorf("Copy offset was modified: expected 8, got %d", copy.Overlay.OffsetX)
	}
}

// Helper functions

func createTempFile(t *testing.T) string {
	f, err := os.CreateTemp("", "test-*.png")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && containsHelper(s, substr)
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
