package ffprobe

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"watermark/models"
)

func TestProbe_EmptyPath(t *testing.T) {
	_, err := Probe(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error for empty path")
	}
	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("Expected 'cannot be empty' error, got: %v", err)
	}
}

func TestProbe_NonExistentFile(t *testing.T) {
	_, err := Probe(context.Background(), "/nonexistent/file.mp4")
	if err == nil {
		t.Fatal("Expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "ffprobe failed") {
		t.Errorf("Expected ffprobe error, got: %v", err)
	}
}

func TestProbe_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Probe(ctx, "/tmp/anything.mp4"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestProbe_WithRealFile(t *testing.T) {
	testFile := os.Getenv("WATERMARK_TEST_MEDIA")
	if testFile == "" {
		t.Skip("WATERMARK_TEST_MEDIA not set, skipping real file test")
	}
	if !Available() {
		t.Skip("ffprobe not installed")
	}

	result, err := Probe(context.Background(), testFile)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if result.Format.Filename == "" {
		t.Error("Expected filename in format")
	}
	if len(result.Streams) == 0 {
		t.Error("Expected at least one stream")
	}
}

func TestProbeResult_ParsesFFprobeJSON(t *testing.T) {
	raw := `{
	  "streams": [
	    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
	    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2}
	  ],
	  "format": {"filename": "clip.mp4", "format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.5"}
	}`

	var result ProbeResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if len(result.GetVideoStreams()) != 1 || len(result.GetAudioStreams()) != 1 {
		t.Errorf("Expected one stream per kind, got %+v", result.Counts())
	}
	if result.Streams[0].Width != 1280 {
		t.Errorf("Expected width 1280, got %d", result.Streams[0].Width)
	}
	duration, err := result.GetDuration()
	if err != nil || duration != 12.5 {
		t.Errorf("Expected duration 12.5, got %f (%v)", duration, err)
	}
}

func TestProbeResult_GetDuration(t *testing.T) {
	tests := []struct {
		name        string
		result      ProbeResult
		expected    float64
		expectError bool
	}{
		{
			name:     "Valid duration",
			result:   ProbeResult{Format: Format{Duration: "30.5"}},
			expected: 30.5,
		},
		{
			name:     "Integer duration",
			result:   ProbeResult{Format: Format{Duration: "120"}},
			expected: 120.0,
		},
		{
			name:        "Empty duration",
			result:      ProbeResult{Format: Format{Duration: ""}},
			expectError: true,
		},
		{
			name:        "Invalid duration",
			result:      ProbeResult{Format: Format{Duration: "invalid"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, err := tt.result.GetDuration()

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if duration != tt.expected {
					t.Errorf("Expected duration %f, got %f", tt.expected, duration)
				}
			}
		})
	}
}

func TestProbeResult_Streams(t *testing.T) {
	result := ProbeResult{
		Streams: []Stream{
			{Index: 0, CodecType: "video", CodecName: "h264"},
			{Index: 1, CodecType: "audio", CodecName: "aac"},
			{Index: 2, CodecType: "audio", CodecName: "opus"},
			{Index: 3, CodecType: "subtitle", CodecName: "srt"},
		},
	}

	if got := len(result.GetVideoStreams()); got != 1 {
		t.Errorf("Expected 1 video stream, got %d", got)
	}
	if got := len(result.GetAudioStreams()); got != 2 {
		t.Errorf("Expected 2 audio streams, got %d", got)
	}
	for _, stream := range result.GetAudioStreams() {
		if stream.CodecType != "audio" {
			t.Errorf("Expected audio stream, got %s", stream.CodecType)
		}
	}

	counts := result.Counts()
	if counts[models.MediaAudio] != 2 || counts[models.MediaVideo] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestProbeResult_Mismatches(t *testing.T) {
	result := ProbeResult{
		Streams: []Stream{
			{Index: 0, CodecType: "video"},
			{Index: 1, CodecType: "audio"},
		},
	}

	tests := []struct {
		name  string
		built map[models.MediaKind]int
		want  int
	}{
		{"match", map[models.MediaKind]int{models.MediaAudio: 1, models.MediaVideo: 1}, 0},
		{"audio missing", map[models.MediaKind]int{models.MediaVideo: 1}, 1},
		{"both off", map[models.MediaKind]int{models.MediaAudio: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := result.Mismatches(tt.built)
			if len(got) != tt.want {
				t.Errorf("Expected %d mismatches, got %v", tt.want, got)
			}
		})
	}
}

func TestProbeResult_ZeroValue(t *testing.T) {
	var result ProbeResult

	if len(result.GetVideoStreams()) != 0 {
		t.Error("Zero value should have no video streams")
	}
	if len(result.GetAudioStreams()) != 0 {
		t.Error("Zero value should have no audio streams")
	}
	if len(result.Mismatches(nil)) != 0 {
		t.Error("Zero value should match zero branches")
	}
	if _, err := result.GetDuration(); err == nil {
		t.Error("Zero value GetDuration should return error")
	}
}

// TestProbe_DirectoryPath tests probing a directory instead of a file
func TestProbe_DirectoryPath(t *testing.T) {
	if _, err := Probe(context.Background(), t.TempDir()); err == nil {
		t.Error("Expected error when probing a directory")
	}
}
