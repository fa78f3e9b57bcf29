package config

import (
	"flag"
	"testing"
)

func TestMergeFromArgs_Positional(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.MergeFromArgs([]string{"clip.mp4", "logo.png"}); err != nil {
		t.Fatalf("Expected no error with positional arguments, got: %v", err)
	}

	if cfg.Input != "clip.mp4" {
		t.Errorf("Expected input 'clip.mp4', got '%s'", cfg.Input)
	}
	if cfg.Image != "logo.png" {
		t.Errorf("Expected image 'logo.png', got '%s'", cfg.Image)
	}
}

func TestMergeFromArgs_MissingImage(t *testing.T) {
	// MergeFromArgs doesn't validate, but image should remain empty
	cfg := DefaultConfig()
	if err := cfg.MergeFromArgs([]string{"clip.mp4"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Image != "" {
		t.Errorf("Expected empty image, got '%s'", cfg.Image)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected validation error for missing image, got nil")
	}
}

func TestMergeFromArgs_TooManyArguments(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.MergeFromArgs([]string{"clip.mp4", "logo.png", "extra"})
	if err == nil {
		t.Fatal("Expected error for extra positional argument")
	}
	if !contains(err.Error(), "extra") {
		t.Errorf("Expected error to name the extra argument, got '%s'", err.Error())
	}
}

func TestMergeFromArgs_FlagAfterPositional(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.MergeFromArgs([]string{"clip.mp4", "logo.png", "-verbose"})
	if err == nil {
		t.Fatal("Expected error for an option after the positional arguments")
	}
	if !contains(err.Error(), "options must come before VIDEO-FILE") {
		t.Errorf("Expected a hint about option placement, got '%s'", err.Error())
	}
	if cfg.Verbose {
		t.Error("Trailing option must not be applied")
	}
}

func TestMergeFromArgs_AllFlags(t *testing.T) {
	args := []string{
		"-output", "out.mkv",
		"-output-dir", "/tmp/out",
		"-container", "video/quicktime",
		"-audio-format", "audio/mpeg",
		"-video-format", "video/x-h264",
		"-positioning", "absolute",
		"-offset-x", "-20",
		"-offset-y", "15",
		"-relative-x", "0.25",
		"-relative-y", "0.75",
		"-alpha", "0.5",
		"-log-file", "/tmp/watermark.log",
		"--no-probe",
		"--verbose",
		"--dry-run",
		"clip.mp4", "logo.png",
	}

	cfg := DefaultConfig()
	if err := cfg.MergeFromArgs(args); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Output != "out.mkv" {
		t.Errorf("Expected output 'out.mkv', got '%s'", cfg.Output)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("Expected output dir '/tmp/out', got '%s'", cfg.OutputDir)
	}
	if cfg.Encoding.Container != "video/quicktime" {
		t.Errorf("Expected container 'video/quicktime', got '%s'", cfg.Encoding.Container)
	}
	if cfg.Encoding.Audio.Format != "audio/mpeg" {
		t.Errorf("Expected audio format 'audio/mpeg', got '%s'", cfg.Encoding.Audio.Format)
	}
	if cfg.Encoding.Video.Format != "video/x-h264" {
		t.Errorf("Expected video format 'video/x-h264', got '%s'", cfg.Encoding.Video.Format)
	}
	if cfg.Overlay.Positioning != "absolute" {
		t.Errorf("Expected positioning 'absolute', got '%s'", cfg.Overlay.Positioning)
	}
	if cfg.Overlay.OffsetX != -20 || cfg.Overlay.OffsetY != 15 {
		t.Errorf("Expected offsets -20,15, got %d,%d", cfg.Overlay.OffsetX, cfg.Overlay.OffsetY)
	}
	if cfg.Overlay.RelativeX != 0.25 || cfg.Overlay.RelativeY != 0.75 {
		t.Errorf("Expected relative 0.25,0.75, got %f,%f", cfg.Overlay.RelativeX, cfg.Overlay.RelativeY)
	}
	if cfg.Overlay.Alpha != 0.5 {
		t.Errorf("Expected alpha 0.5, got %f", cfg.Overlay.Alpha)
	}
	if cfg.LogFile != "/tmp/watermark.log" {
		t.Errorf("Expected log file '/tmp/watermark.log', got '%s'", cfg.LogFile)
	}
	if cfg.Probe {
		t.Error("Expected probe to be disabled")
	}
	if !cfg.Verbose {
		t.Error("Expected verbose to be true")
	}
	if !cfg.DryRun {
		t.Error("Expected dry run to be true")
	}
	if cfg.Input != "clip.mp4" || cfg.Image != "logo.png" {
		t.Errorf("Expected positional arguments after flags, got '%s' '%s'", cfg.Input, cfg.Image)
	}
}

func TestMergeFromArgs_PartialOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overlay.OffsetX = 30
	cfg.Overlay.Alpha = 0.8
	cfg.Encoding.Container = "video/webm"

	// Only the y offset is given; explicitly zero must still override.
	cfg.Overlay.OffsetY = 12
	if err := cfg.MergeFromArgs([]string{"-offset-y", "0", "clip.mp4", "logo.png"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Overlay.OffsetY != 0 {
		t.Errorf("Expected offset-y overridden to 0, got %d", cfg.Overlay.OffsetY)
	}
	if cfg.Overlay.OffsetX != 30 {
		t.Errorf("Expected offset-x from config (30), got %d", cfg.Overlay.OffsetX)
	}
	if cfg.Overlay.Alpha != 0.8 {
		t.Errorf("Expected alpha from config (0.8), got %f", cfg.Overlay.Alpha)
	}
	if cfg.Encoding.Container != "video/webm" {
		t.Errorf("Expected container from config, got '%s'", cfg.Encoding.Container)
	}
}

func TestMergeFromArgs_Help(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.MergeFromArgs([]string{"-h"}); err != flag.ErrHelp {
		t.Errorf("Expected flag.ErrHelp, got %v", err)
	}
}

func TestMergeFromArgs_UnknownFlag(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.MergeFromArgs([]string{"-workers", "4", "clip.mp4", "logo.png"}); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestConfigFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"absent", []string{"clip.mp4", "logo.png"}, ""},
		{"separate value", []string{"-config", "a.yaml", "clip.mp4"}, "a.yaml"},
		{"equals form", []string{"--config=b.yaml", "clip.mp4"}, "b.yaml"},
		{"after terminator", []string{"--", "-config", "c.yaml"}, ""},
		{"missing value", []string{"-config"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := configFlag(tt.args); got != tt.want {
				t.Errorf("configFlag(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
