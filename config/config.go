package config

import (
	"watermark/overlay"
	"watermark/profile"
)

// Config holds all watermark configuration options
type Config struct {
	// Positional arguments
	Input string `yaml:"input"` // video file path or URI
	Image string `yaml:"image"` // overlay image path

	// Output location
	Output    string `yaml:"output"`     // empty = derived from input
	OutputDir string `yaml:"output_dir"` // used only when Output is empty

	// Encoding profile
	Encoding EncodingConfig `yaml:"encoding"`

	// Overlay placement
	Overlay OverlayConfig `yaml:"overlay"`

	// Element types
	Elements ElementsConfig `yaml:"elements"`

	// Behavioral flags
	Probe   bool   `yaml:"probe"`    // Count streams with ffprobe before the run
	Verbose bool   `yaml:"verbose"`  // Show detailed logs
	DryRun  bool   `yaml:"dry_run"`  // Show config without running
	LogFile string `yaml:"log_file"` // Also append logs to this file
}

// EncodingConfig describes the output container and one stream target per kind
type EncodingConfig struct {
	Container string       `yaml:"container"` // e.g., "video/x-matroska", "video/quicktime"
	Audio     StreamConfig `yaml:"audio"`
	Video     StreamConfig `yaml:"video"`
}

// StreamConfig holds one elementary stream target
type StreamConfig struct {
	Format   string `yaml:"format"`   // caps name, e.g., "audio/x-vorbis", "video/x-theora"
	Preset   string `yaml:"preset"`   // optional encoder preset name
	Presence int    `yaml:"presence"` // max streams of this kind, 0 = unbounded
}

// OverlayConfig holds watermark placement
type OverlayConfig struct {
	Positioning string  `yaml:"positioning"` // "relative-to-edges" or "absolute"
	OffsetX     int     `yaml:"offset_x"`
	OffsetY     int     `yaml:"offset_y"`
	RelativeX   float64 `yaml:"relative_x"`
	RelativeY   float64 `yaml:"relative_y"`
	Alpha       float64 `yaml:"alpha"`
	Width       int     `yaml:"width"`  // 0 = image width
	Height      int     `yaml:"height"` // 0 = image height
}

// ElementsConfig names the engine element types
type ElementsConfig struct {
	Source  string `yaml:"source"`
	Encoder string `yaml:"encoder"`
	Sink    string `yaml:"sink"`
	Overlay string `yaml:"overlay"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	defaults := overlay.DefaultSettings()
	return &Config{
		// Required - must be provided by user
		Input: "",
		Image: "",

		// Output next to the working directory, named after the input
		Output:    "",
		OutputDir: ".",

		// Theora + Vorbis in Matroska, any number of streams
		Encoding: EncodingConfig{
			Container: "video/x-matroska",
			Audio:     StreamConfig{Format: "audio/x-vorbis", Presence: profile.PresenceUnbounded},
			Video:     StreamConfig{Format: "video/x-theora", Presence: profile.PresenceUnbounded},
		},

		// Top-left corner, fully opaque
		Overlay: OverlayConfig{
			Positioning: string(defaults.Positioning),
			Alpha:       defaults.Alpha,
		},

		Elements: ElementsConfig{
			Source:  "uridecodebin",
			Encoder: "encodebin",
			Sink:    "filesink",
			Overlay: "gdkpixbufoverlay",
		},

		// Behavioral defaults
		Probe:   true,
		Verbose: false,
		DryRun:  false,
	}
}

// Copy creates a deep copy of the config
func (c *Config) Copy() *Config {
	copy := *c
	copy.Encoding = c.Encoding
	copy.Overlay = c.Overlay
	copy.Elements = c.Elements
	return &copy
}

// Profile builds the encoding profile described by the encoding section.
func (c *Config) Profile() (*profile.Profile, error) {
	e := c.Encoding
	return profile.Build(
		profile.NewTarget(e.Audio.Format).SetPreset(e.Audio.Preset).SetPresence(e.Audio.Presence),
		profile.NewTarget(e.Video.Format).SetPreset(e.Video.Preset).SetPresence(e.Video.Presence),
		profile.NewTarget(e.Container),
	)
}

// OverlaySettings converts the overlay section.
func (c *Config) OverlaySettings() overlay.Settings {
	o := c.Overlay
	return overlay.Settings{
		Positioning: overlay.Positioning(o.Positioning),
		OffsetX:     o.OffsetX,
		OffsetY:     o.OffsetY,
		RelativeX:   o.RelativeX,
		RelativeY:   o.RelativeY,
		Alpha:       o.Alpha,
		Width:       o.Width,
		Height:      o.Height,
	}
}
