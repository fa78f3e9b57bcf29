package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// MergeFromArgs parses command-line flags and positional arguments and
// overrides config values. args excludes the program name.
func (c *Config) MergeFromArgs(args []string) error {
	fs := flag.NewFlagSet("watermark", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = printUsage

	// Config file override (handled by LoadConfig before this function is called)
	_ = fs.String("config", "", "Path to config file (default: search standard locations)")

	// Output location
	output := fs.String("output", "", "Output file path (default: <input>.watermark.<ext>)")
	outputDir := fs.String("output-dir", "", "Directory for the derived output file (default: from config)")

	// Encoding profile
	container := fs.String("container", "", "Container caps, e.g., video/x-matroska (default: from config)")
	audioFormat := fs.String("audio-format", "", "Audio caps, e.g., audio/x-vorbis (default: from config)")
	videoFormat := fs.String("video-format", "", "Video caps, e.g., video/x-theora (default: from config)")

	// Overlay placement
	positioning := fs.String("positioning", "", "Overlay positioning: relative-to-edges, absolute (default: from config)")
	offsetX := fs.Int("offset-x", 0, "Horizontal overlay offset in pixels")
	offsetY := fs.Int("offset-y", 0, "Vertical overlay offset in pixels")
	relativeX := fs.Float64("relative-x", 0, "Horizontal overlay offset as a fraction of the frame width")
	relativeY := fs.Float64("relative-y", 0, "Vertical overlay offset as a fraction of the frame height")
	alpha := fs.Float64("alpha", 1, "Overlay opacity, 0-1")

	// Behavioral flags
	noProbe := fs.Bool("no-probe", false, "Skip the ffprobe stream count before the run")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	dryRun := fs.Bool("dry-run", false, "Show configuration without running")
	logFile := fs.String("log-file", "", "Also append logs to this file")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			fs.Usage()
		}
		return err
	}

	// Only flags that were explicitly given override the config. Offsets may
	// legitimately be zero or negative, so presence is tracked by name.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *output != "" {
		c.Output = *output
	}
	if *outputDir != "" {
		c.OutputDir = *outputDir
	}

	if *container != "" {
		c.Encoding.Container = *container
	}
	if *audioFormat != "" {
		c.Encoding.Audio.Format = *audioFormat
	}
	if *videoFormat != "" {
		c.Encoding.Video.Format = *videoFormat
	}

	if *positioning != "" {
		c.Overlay.Positioning = *positioning
	}
	if set["offset-x"] {
		c.Overlay.OffsetX = *offsetX
	}
	if set["offset-y"] {
		c.Overlay.OffsetY = *offsetY
	}
	if set["relative-x"] {
		c.Overlay.RelativeX = *relativeX
	}
	if set["relative-y"] {
		c.Overlay.RelativeY = *relativeY
	}
	if set["alpha"] {
		c.Overlay.Alpha = *alpha
	}

	if *noProbe {
		c.Probe = false
	}
	if *verbose {
		c.Verbose = true
	}
	if *dryRun {
		c.DryRun = true
	}
	if *logFile != "" {
		c.LogFile = *logFile
	}

	// Positional arguments: VIDEO-FILE IMAGE-FILE
	rest := fs.Args()
	if len(rest) > 2 {
		if strings.HasPrefix(rest[2], "-") {
			return fmt.Errorf("unexpected arguments: %v (options must come before VIDEO-FILE)", rest[2:])
		}
		return fmt.Errorf("unexpected arguments: %v", rest[2:])
	}
	if len(rest) > 0 {
		c.Input = rest[0]
	}
	if len(rest) > 1 {
		c.Image = rest[1]
	}

	return nil
}

// printUsage prints help text
func printUsage() {
	fmt.Fprintf(os.Stderr, `watermark - Overlay a still image on every video stream of a file

USAGE:
  watermark [OPTIONS] VIDEO-FILE IMAGE-FILE

  Options must come before VIDEO-FILE; anything after IMAGE-FILE is rejected.

ARGUMENTS:
  VIDEO-FILE    Input video file path or URI
  IMAGE-FILE    Overlay image (png, jpeg, gif, bmp, tiff, webp)

CONFIGURATION:
  -config string
        Path to config file (default: search ./watermark.yaml, ~/.watermark/config.yaml, /etc/watermark/config.yaml)

OUTPUT:
  -output string
        Output file path (default: <input>.watermark.<ext>)
  -output-dir string
        Directory for the derived output file (default: .)

ENCODING:
  -container string
        Container caps (default: video/x-matroska)
  -audio-format string
        Audio caps (default: audio/x-vorbis)
  -video-format string
        Video caps (default: video/x-theora)

OVERLAY:
  -positioning string
        relative-to-edges or absolute (default: relative-to-edges)
  -offset-x int, -offset-y int
        Pixel offsets (default: 0)
  -relative-x float, -relative-y float
        Offsets as a fraction of the frame, 0-1 (default: 0)
  -alpha float
        Opacity, 0-1 (default: 1)

BEHAVIORAL FLAGS:
  --no-probe
        Skip the ffprobe stream count before the run
  --verbose
        Enable verbose logging
  --dry-run
        Show effective configuration without running
  -log-file string
        Also append logs to this file

EXAMPLES:
  # Basic usage, writes clip.watermark.mp4
  watermark clip.mp4 logo.png

  # Bottom-right corner, half transparent
  watermark -offset-x -10 -offset-y -10 -alpha 0.5 clip.mp4 logo.png

  # Show effective configuration
  watermark --dry-run clip.mp4 logo.png

CONFIGURATION FILES:
  Config files are searched in order:
    1. ./watermark.yaml
    2. ~/.watermark/config.yaml
    3. /etc/watermark/config.yaml

  Priority: CLI flags > Config file > Defaults

`)
}

// PrintConfig prints the effective configuration
func (c *Config) PrintConfig() {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                 Effective Configuration                  ")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("Input:          %s\n", c.Input)
	fmt.Printf("Image:          %s\n", c.Image)
	if c.Output != "" {
		fmt.Printf("Output:         %s\n", c.Output)
	} else {
		fmt.Printf("Output Dir:     %s\n", c.OutputDir)
	}

	fmt.Println("\nEncoding:")
	fmt.Printf("  Container:    %s\n", c.Encoding.Container)
	fmt.Printf("  Audio:        %s\n", describeStream(c.Encoding.Audio))
	fmt.Printf("  Video:        %s\n", describeStream(c.Encoding.Video))
	if p, err := c.Profile(); err == nil {
		fmt.Printf("  Profile:      %s\n", p)
	}

	fmt.Println("\nOverlay:")
	fmt.Printf("  Positioning:  %s\n", c.Overlay.Positioning)
	fmt.Printf("  Offset:       %d,%d\n", c.Overlay.OffsetX, c.Overlay.OffsetY)
	fmt.Printf("  Relative:     %.2f,%.2f\n", c.Overlay.RelativeX, c.Overlay.RelativeY)
	fmt.Printf("  Alpha:        %.2f\n", c.Overlay.Alpha)
	if c.Overlay.Width > 0 || c.Overlay.Height > 0 {
		fmt.Printf("  Size:         %dx%d\n", c.Overlay.Width, c.Overlay.Height)
	}

	fmt.Println("\nElements:")
	fmt.Printf("  Source:       %s\n", c.Elements.Source)
	fmt.Printf("  Encoder:      %s\n", c.Elements.Encoder)
	fmt.Printf("  Sink:         %s\n", c.Elements.Sink)
	fmt.Printf("  Overlay:      %s\n", c.Elements.Overlay)

	fmt.Println("\nBehavioral Flags:")
	fmt.Printf("  Probe:         %v\n", c.Probe)
	fmt.Printf("  Verbose:       %v\n", c.Verbose)
	if c.LogFile != "" {
		fmt.Printf("  Log File:      %s\n", c.LogFile)
	}
	fmt.Println("═══════════════════════════════════════════════════════════")
}

func describeStream(sc StreamConfig) string {
	s := sc.Format
	if sc.Preset != "" {
		s += " (preset " + sc.Preset + ")"
	}
	if sc.Presence > 0 {
		s += fmt.Sprintf(" max %d", sc.Presence)
	} else {
		s += " unbounded"
	}
	return s
}
