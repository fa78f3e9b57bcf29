// Package lifecycle owns the top-level graph: it builds the static skeleton
// (source → encoder/muxer → sink), starts it, consumes the engine's event
// stream until end of stream or a fatal error, and stops it again.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"watermark/branch"
	"watermark/element"
	"watermark/engine"
	"watermark/models"
	"watermark/overlay"
	"watermark/profile"
	"watermark/router"
	"watermark/topology"
)

// Fixed node names inside the graph. The router finds the encoder by name.
const (
	SourceName  = "src"
	EncoderName = "encode"
	SinkName    = "sink"
)

// Elements names the element types used for the skeleton and the overlay.
type Elements struct {
	Source  string
	Encoder string
	Sink    string
	Overlay string
}

// DefaultElements returns the GStreamer element types.
func DefaultElements() Elements {
	return Elements{
		Source:  "uridecodebin",
		Encoder: "encodebin",
		Sink:    "filesink",
		Overlay: branch.DefaultOverlayElement,
	}
}

// Options configures one run.
type Options struct {
	SourceURI       string
	OutputPath      string
	Profile         *profile.Profile
	Overlay         *overlay.Image // nil builds video branches without overlay
	OverlaySettings overlay.Settings
	Elements        Elements
}

// Driver runs one graph from construction to teardown.
type Driver struct {
	eng   engine.Engine
	opts  Options
	log   *logrus.Entry
	runID string

	graph   engine.Graph
	encoder *profile.Encoder
	router  *router.Router
	topo    *topology.Graph

	outputExisted bool

	phaseMu sync.Mutex
	phase   Phase
}

// NewDriver creates a driver. Build must be called before Run.
func NewDriver(eng engine.Engine, opts Options, log *logrus.Entry) *Driver {
	if opts.Elements == (Elements{}) {
		opts.Elements = DefaultElements()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	runID := uuid.NewString()
	return &Driver{
		eng:   eng,
		opts:  opts,
		log:   log.WithFields(logrus.Fields{"component": "lifecycle", "run": runID[:8]}),
		runID: runID,
		topo:  topology.New(),
		phase: PhaseIdle,
	}
}

// RunID returns the unique id of this run.
func (d *Driver) RunID() string { return d.runID }

// Phase returns the current phase.
func (d *Driver) Phase() Phase {
	d.phaseMu.Lock()
	defer d.phaseMu.Unlock()
	return d.phase
}

func (d *Driver) setPhase(p Phase) {
	d.phaseMu.Lock()
	old := d.phase
	d.phase = p
	d.phaseMu.Unlock()
	d.log.WithFields(logrus.Fields{"from": old.String(), "to": p.String()}).Debug("Phase changed")
}

// Topology returns the ledger of nodes and links created so far.
func (d *Driver) Topology() *topology.Graph { return d.topo }

// Router returns the router, or nil before Build.
func (d *Driver) Router() *router.Router { return d.router }

// Graph returns the graph, or nil before Build.
func (d *Driver) Graph() engine.Graph { return d.graph }

// Build constructs the skeleton and registers the router on the source.
// Any failure here aborts before the graph ever runs.
func (d *Driver) Build() error {
	if d.graph != nil {
		return errors.New("graph already built")
	}
	if d.opts.Profile == nil {
		return &engine.ProfileBuildError{Reason: "no encoding profile"}
	}

	graph, err := d.eng.NewGraph("watermark-" + d.runID[:8])
	if err != nil {
		return fmt.Errorf("failed to create graph: %w", err)
	}

	if err := d.buildSkeleton(graph); err != nil {
		_ = graph.Close()
		return err
	}

	d.graph = graph
	if _, err := os.Stat(d.opts.OutputPath); err == nil {
		d.outputExisted = true
	}
	d.log.WithFields(logrus.Fields{
		"uri":     d.opts.SourceURI,
		"output":  d.opts.OutputPath,
		"profile": d.opts.Profile.String(),
	}).Info("Pipeline built")
	return nil
}

func (d *Driver) buildSkeleton(graph engine.Graph) error {
	el := d.opts.Elements

	src, err := element.MakeConfigured(d.eng, element.Spec{
		Type:   el.Source,
		ID:     SourceName,
		Config: []element.Setting{{Key: "uri", Value: d.opts.SourceURI}},
	})
	if err != nil {
		return err
	}
	enc, err := element.Make(d.eng, el.Encoder, EncoderName)
	if err != nil {
		return err
	}
	sink, err := element.MakeConfigured(d.eng, element.Spec{
		Type:   el.Sink,
		ID:     SinkName,
		Config: []element.Setting{{Key: "location", Value: d.opts.OutputPath}},
	})
	if err != nil {
		return err
	}

	d.encoder = profile.NewEncoder(enc)
	if err := d.encoder.Configure(d.opts.Profile, graph.State()); err != nil {
		return err
	}

	if err := graph.Add(src, enc, sink); err != nil {
		return fmt.Errorf("failed to add skeleton to graph: %w", err)
	}
	for _, n := range []engine.Node{src, enc, sink} {
		_ = d.topo.AddNode(topology.Node{Name: n.Name(), Type: n.TypeName(), Role: topology.RoleSkeleton})
	}

	if err := element.LinkNodes(enc, sink); err != nil {
		return err
	}
	d.topo.AddEdge(enc.Name(), sink.Name())

	audio := branch.NewAudioBuilder().SetRecorder(d.topo)
	video := branch.NewVideoBuilder().SetRecorder(d.topo)
	if d.opts.Overlay != nil {
		video.SetOverlay(el.Overlay, d.opts.Overlay, d.opts.OverlaySettings)
	}

	d.router = router.New(d.eng, graph.Downgrade(), enc.Name(), d.opts.Profile, audio, video,
		d.log.WithField("component", "router"))
	return d.router.Attach(src)
}

// Run starts the graph and blocks until end of stream or a fatal error.
// Cancelling ctx injects end of stream, so the output is still finalized.
// The returned error is non-nil exactly when the outcome is RunFailed.
func (d *Driver) Run(ctx context.Context) (*models.RunResult, error) {
	if d.graph == nil {
		return nil, errors.New("graph not built")
	}

	result := &models.RunResult{
		OutputPath: d.opts.OutputPath,
		StartedAt:  time.Now(),
	}

	if err := d.start(); err != nil {
		return d.finish(result, d.startFailure(err), false)
	}
	d.setPhase(PhaseRunning)

	// The watcher may outlive Run by a moment, so it must not read d.graph,
	// which Close clears.
	graph := d.graph
	var interrupted atomic.Bool
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			interrupted.Store(true)
			d.log.Warn("Interrupted, sending end of stream")
			if err := graph.SendEndOfStream(); err != nil {
				d.log.WithError(err).Warn("Failed to send end of stream")
			}
		case <-stop:
		}
	}()

	for {
		ev := graph.WaitEvent()
		switch ev.Kind {
		case engine.EventEOS:
			d.log.Info("End of stream")
			return d.finish(result, nil, interrupted.Load())
		case engine.EventError:
			fatal := engine.FatalFromEvent(ev)
			d.log.WithFields(logrus.Fields{"source": ev.Source, "debug": ev.Debug}).
				WithError(fatal).Error("Engine error")
			return d.finish(result, fatal, false)
		case engine.EventWarning:
			d.log.WithField("source", ev.Source).Warn(ev.Message)
		case engine.EventStateChanged:
			d.log.WithFields(logrus.Fields{
				"source": ev.Source,
				"from":   ev.OldState.String(),
				"to":     ev.NewState.String(),
			}).Debug("State changed")
		default:
			d.log.WithField("event", ev.String()).Trace("Event")
		}
	}
}

func (d *Driver) start() error {
	if err := d.graph.SetState(engine.StateReady); err != nil {
		return err
	}
	return d.graph.SetState(engine.StatePlaying)
}

// startFailure prefers an error the engine already posted over the bare
// state rejection, since it names the element that failed.
func (d *Driver) startFailure(err error) error {
	for {
		ev, ok := d.graph.PollEvent()
		if !ok {
			break
		}
		if ev.Kind == engine.EventError {
			fatal := engine.FatalFromEvent(ev)
			d.log.WithFields(logrus.Fields{"source": ev.Source, "debug": ev.Debug}).
				WithError(fatal).Error("Engine error")
			return fatal
		}
	}
	d.log.WithError(err).Error("Failed to start pipeline")
	return err
}

func (d *Driver) finish(result *models.RunResult, runErr error, interrupted bool) (*models.RunResult, error) {
	d.setPhase(PhaseDraining)
	d.stop()

	result.EndedAt = time.Now()
	result.Branches = d.router.Results()

	switch {
	case runErr != nil:
		result.Outcome = models.RunFailed
		result.Error = runErr
		var fatal *engine.FatalError
		if errors.As(runErr, &fatal) {
			result.ErrorSource = fatal.Source
		}
		d.removePartialOutput()
	case interrupted:
		result.Outcome = models.RunInterrupted
	default:
		result.Outcome = models.RunSucceeded
	}

	if err := d.topo.Validate(); err != nil {
		d.log.WithError(err).Warn("Graph ledger is inconsistent")
	}
	d.log.WithField("links", "\n"+d.topo.String()).Debug("Final graph")

	d.setPhase(PhaseStopped)
	return result, runErr
}

// stop brings the graph back to null. A rejection is logged and tolerated.
func (d *Driver) stop() {
	if err := d.graph.SetState(engine.StateNull); err != nil {
		d.log.WithError(err).Warn("Failed to stop pipeline cleanly")
	}
}

func (d *Driver) removePartialOutput() {
	if d.outputExisted || d.opts.OutputPath == "" {
		return
	}
	if err := os.Remove(d.opts.OutputPath); err != nil && !os.IsNotExist(err) {
		d.log.WithError(err).Warn("Failed to remove partial output")
		return
	}
}

// Close releases the graph. Weak handles held by callbacks stop upgrading.
func (d *Driver) Close() error {
	if d.graph == nil {
		return nil
	}
	err := d.graph.Close()
	d.graph = nil
	return err
}
