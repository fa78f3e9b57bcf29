package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	yamlContent := `
input: "clip.mp4"
image: "logo.png"
output_dir: "/tmp/watermarked"
encoding:
  container: "video/quicktime"
  audio:
    format: "audio/mpeg"
    presence: 1
  video:
    format: "video/x-h264"
    preset: "fast"
overlay:
  positioning: "absolute"
  offset_x: 16
  offset_y: -16
  alpha: 0.6
probe: false
verbose: true
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfigFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Input != "clip.mp4" {
		t.Errorf("Expected input 'clip.mp4', got '%s'", cfg.Input)
	}
	if cfg.Image != "logo.png" {
		t.Errorf("Expected image 'logo.png', got '%s'", cfg.Image)
	}
	if cfg.OutputDir != "/tmp/watermarked" {
		t.Errorf("Expected output dir '/tmp/watermarked', got '%s'", cfg.OutputDir)
	}
	if cfg.Encoding.Container != "video/quicktime" {
		t.Errorf("Expected container 'video/quicktime', got '%s'", cfg.Encoding.Container)
	}
	if cfg.Encoding.Audio.Presence != 1 {
		t.Errorf("Expected audio presence 1, got %d", cfg.Encoding.Audio.Presence)
	}
	if cfg.Encoding.Video.Preset != "fast" {
		t.Errorf("Expected video preset 'fast', got '%s'", cfg.Encoding.Video.Preset)
	}
	if cfg.Overlay.OffsetY != -16 {
		t.Errorf("Expected offset-y -16, got %d", cfg.Overlay.OffsetY)
	}
	if cfg.Probe {
		t.Error("Expected probe false, got true")
	}

	// Values absent from the file keep their defaults
	if cfg.Elements.Source != "uridecodebin" {
		t.Errorf("Expected default source element, got '%s'", cfg.Elements.Source)
	}
}

func TestLoadConfigFile_NotFound(t *testing.T) {
	_, err := LoadConfigFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
input: clip.mp4
invalid yaml syntax here ][{
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadConfigFile(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestSaveConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "test.yaml")

	cfg := DefaultConfig()
	cfg.Input = "clip.mp4"
	cfg.Overlay.OffsetX = 8

	if err := SaveConfigFile(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	// Load it back and verify
	loaded, err := LoadConfigFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Input != cfg.Input {
		t.Errorf("Input mismatch: expected '%s', got '%s'", cfg.Input, loaded.Input)
	}
	if loaded.Overlay.OffsetX != cfg.Overlay.OffsetX {
		t.Errorf("Offset mismatch: expected %d, got %d", cfg.Overlay.OffsetX, loaded.Overlay.OffsetX)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "watermark.yaml")
	image := createTempFile(t)

	yamlContent := "overlay:\n  alpha: 0.3\n  offset_x: 5\n"
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig([]string{"-config", configPath, "-alpha", "0.9", "clip.mp4", image})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Overlay.Alpha != 0.9 {
		t.Errorf("Expected flag alpha 0.9, got %f", cfg.Overlay.Alpha)
	}
	if cfg.Overlay.OffsetX != 5 {
		t.Errorf("Expected file offset-x 5, got %d", cfg.Overlay.OffsetX)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	if _, err := LoadConfig([]string{"-config", "/nonexistent/watermark.yaml", "clip.mp4", "logo.png"}); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestFindConfigFile(t *testing.T) {
	// This test depends on system state, so we'll just test it doesn't panic
	path := FindConfigFile()
	// Path can be empty if no config file exists (non-fatal)
	_ = path
}
