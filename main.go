package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"watermark/config"
	"watermark/engine/gstengine"
	"watermark/ffprobe"
	"watermark/internal/naming"
	"watermark/internal/timeutil"
	"watermark/lifecycle"
	"watermark/logging"
	"watermark/models"
	"watermark/overlay"
)

const probeTimeout = 30 * time.Second

func main() {
	// Step 1: Load configuration (CLI flags > config file > defaults)
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fail(err)
	}

	// Step 2: Handle dry-run mode
	if cfg.DryRun {
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("                      DRY RUN MODE")
		fmt.Println("═══════════════════════════════════════════════════════════")
		cfg.PrintConfig()
		if _, err := cfg.Profile(); err != nil {
			fail(err)
		}
		fmt.Println("\n✓ Configuration is valid. No pipeline will be built.")
		return
	}

	// Step 3: Set up logging
	logger, closeLog, err := logging.New(logging.Options{Verbose: cfg.Verbose, LogFile: cfg.LogFile})
	if err != nil {
		fail(err)
	}

	// Step 4: Register signal handlers (Ctrl+C, SIGTERM). Cancelling the
	// context makes the driver inject end of stream so the file is finalized.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\n⚠️  Interrupt received, finishing output...")
		cancel()
	}()

	// Step 5: Run the pipeline
	err = run(ctx, cfg, logger)
	closeLog()
	if err != nil {
		fail(err)
	}

	fmt.Println("\n✅ Watermarking completed successfully!")
}

// fail prints a single error line and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// run executes the complete watermarking workflow
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                  WATERMARK - PIPELINE START                    ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")

	// PHASE 1: Preparation
	fmt.Println("🧾 Phase 1: Preparation")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	outputPath := cfg.Output
	if outputPath == "" {
		p, err := naming.OutputPath(cfg.OutputDir, cfg.Input)
		if err != nil {
			return err
		}
		outputPath = p
	}

	uri, err := naming.ToURI(cfg.Input)
	if err != nil {
		return err
	}

	prof, err := cfg.Profile()
	if err != nil {
		return err
	}

	// The overlay is checked before any graph exists so a bad image never
	// leaves an output file behind.
	img, err := overlay.Load(cfg.Image)
	if err != nil {
		return err
	}
	settings := cfg.OverlaySettings()

	fmt.Printf("  Input:    %s\n", uri)
	fmt.Printf("  Output:   %s\n", outputPath)
	fmt.Printf("  Overlay:  %s (%s, %dx%d)\n", img.Path, img.Format, img.Width, img.Height)
	fmt.Printf("  Profile:  %s\n", prof)
	fmt.Println()

	// PHASE 2: Media analysis (optional)
	probed := probeInput(ctx, cfg, logging.Component(logger, "ffprobe"))

	// PHASE 3: Build
	fmt.Println("🔧 Phase 3: Building pipeline")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	driver := lifecycle.NewDriver(gstengine.New(), lifecycle.Options{
		SourceURI:       uri,
		OutputPath:      outputPath,
		Profile:         prof,
		Overlay:         img,
		OverlaySettings: settings,
		Elements: lifecycle.Elements{
			Source:  cfg.Elements.Source,
			Encoder: cfg.Elements.Encoder,
			Sink:    cfg.Elements.Sink,
			Overlay: cfg.Elements.Overlay,
		},
	}, logging.Component(logger, "main"))

	if err := driver.Build(); err != nil {
		return err
	}
	defer driver.Close()

	fmt.Printf("  ✓ Skeleton ready (run %s)\n\n", driver.RunID())

	// PHASE 4: Run
	fmt.Println("▶️  Phase 4: Running")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	result, runErr := driver.Run(ctx)
	if result != nil {
		printReport(result, driver, probed, logging.Component(logger, "report"))
	}
	return runErr
}

// probeInput counts streams with ffprobe when possible. It never fails the run.
func probeInput(ctx context.Context, cfg *config.Config, log *logrus.Entry) *ffprobe.ProbeResult {
	if !cfg.Probe {
		return nil
	}
	path, local := naming.LocalPath(cfg.Input)
	if !local {
		return nil
	}
	if !ffprobe.Available() {
		log.Debug("ffprobe not installed, skipping stream count")
		return nil
	}

	fmt.Println("📊 Phase 2: Media Analysis")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	result, err := ffprobe.Probe(probeCtx, path)
	if err != nil {
		log.WithError(err).Warn("Media analysis failed, continuing without it")
		fmt.Println()
		return nil
	}

	if duration, err := result.GetDuration(); err == nil {
		fmt.Printf("  Duration:       %s\n", timeutil.FormatSeconds(duration))
	}
	fmt.Printf("  Format:         %s\n", result.Format.FormatLongName)
	fmt.Printf("  Audio streams:  %d\n", len(result.GetAudioStreams()))
	fmt.Printf("  Video streams:  %d\n", len(result.GetVideoStreams()))
	fmt.Println()
	return result
}

func printReport(result *models.RunResult, driver *lifecycle.Driver, probed *ffprobe.ProbeResult, log *logrus.Entry) {
	fmt.Println()
	fmt.Println("📋 Report")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Outcome:          %s\n", result.Outcome)
	fmt.Printf("  Output:           %s\n", result.OutputPath)
	if info, err := os.Stat(result.OutputPath); err == nil {
		fmt.Printf("  Size:             %s\n", timeutil.FormatBytes(info.Size()))
	}
	fmt.Printf("  Elapsed:          %s\n", timeutil.FormatDuration(result.Elapsed()))
	fmt.Printf("  Audio branches:   %d\n", result.Built(models.MediaAudio))
	fmt.Printf("  Video branches:   %d\n", result.Built(models.MediaVideo))
	if n := result.Failed(); n > 0 {
		fmt.Printf("  Failed branches:  %d\n", n)
		for _, b := range result.Branches {
			if !b.Success {
				fmt.Printf("    ✗ %s (%s): %v\n", b.Stream.Port, b.Stream.MediaType, b.Error)
			}
		}
	}
	stats := driver.Topology().GetStats()
	fmt.Printf("  Graph:            %d nodes, %d links\n", stats["nodes"], stats["links"])

	if probed != nil && result.Outcome != models.RunFailed {
		for _, m := range probed.Mismatches(driver.Router().Counts()) {
			log.Warn("Stream count mismatch: " + m)
		}
	}
}
