package naming

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"With extension", "clip.mp4", "clip.watermark.mp4"},
		{"Nested path", "/videos/2024/holiday.mkv", "holiday.watermark.mkv"},
		{"Multiple dots", "my.trip.webm", "my.trip.watermark.webm"},
		{"No extension", "rawfootage", "rawfootage.watermark"},
		{"Dot file", ".mp4", ".mp4.watermark"},
		{"File URI", "file:///home/user/clip.mp4", "clip.watermark.mp4"},
		{"HTTP URI with query", "https://example.com/media/talk.ogv?token=1", "talk.watermark.ogv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputFileName(tt.input)
			if err != nil {
				t.Fatalf("OutputFileName(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("OutputFileName(%q) = %s; want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestOutputFileName_Directory(t *testing.T) {
	dir := t.TempDir()

	_, err := OutputFileName(dir)
	if !errors.Is(err, ErrDirectoryInput) {
		t.Errorf("Expected ErrDirectoryInput, got %v", err)
	}

	_, err = OutputFileName("videos/")
	if !errors.Is(err, ErrDirectoryInput) {
		t.Errorf("Expected ErrDirectoryInput for trailing slash, got %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	got, err := OutputPath("/tmp/out", "/videos/clip.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != filepath.Join("/tmp/out", "clip.watermark.mp4") {
		t.Errorf("Unexpected path %s", got)
	}

	got, err = OutputPath("", "clip.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "clip.watermark.mp4" {
		t.Errorf("Expected current directory path, got %s", got)
	}
}

func TestToURI(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Absolute path", "/videos/clip.mp4", "file:///videos/clip.mp4"},
		{"Relative path", "clip.mp4", "file://" + filepath.ToSlash(filepath.Join(wd, "clip.mp4"))},
		{"Spaces escaped", "/videos/my clip.mp4", "file:///videos/my%20clip.mp4"},
		{"File URI unchanged", "file:///videos/clip.mp4", "file:///videos/clip.mp4"},
		{"HTTP URI unchanged", "http://example.com/a.mp4", "http://example.com/a.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToURI(tt.input)
			if err != nil {
				t.Fatalf("ToURI(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ToURI(%q) = %s; want %s", tt.input, got, tt.expected)
			}
		})
	}

	if _, err := ToURI(""); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestHasScheme(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"file:///a.mp4", true},
		{"rtsp://cam/stream", true},
		{"svn+ssh://host/x", true},
		{"/abs/path.mp4", false},
		{"relative/path.mp4", false},
		{"://missing", false},
		{"weird dir/x://y", false},
	}

	for _, tt := range tests {
		if got := HasScheme(tt.input); got != tt.expected {
			t.Errorf("HasScheme(%q) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLocalPath(t *testing.T) {
	if p, ok := LocalPath("/videos/clip.mp4"); !ok || p != "/videos/clip.mp4" {
		t.Errorf("Expected plain path passthrough, got %q %v", p, ok)
	}
	if p, ok := LocalPath("file:///videos/my%20clip.mp4"); !ok || !strings.HasSuffix(p, "my clip.mp4") {
		t.Errorf("Expected decoded file URI path, got %q %v", p, ok)
	}
	if _, ok := LocalPath("http://example.com/a.mp4"); ok {
		t.Error("Expected remote URI to have no local path")
	}
}
