// Package router dispatches every output the source node discovers at
// runtime to the branch builder for its media kind.
//
// Handle runs on an engine thread. The router and the branch builders are
// the only code that changes the graph's topology once it is running; the
// lifecycle driver only requests state changes. That single-writer rule is
// why the graph itself needs no lock here: the router reaches the graph
// through a weak handle and simply returns when it no longer upgrades.
package router

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"watermark/branch"
	"watermark/engine"
	"watermark/models"
	"watermark/profile"
)

// Router routes discovered source outputs to branch builders.
type Router struct {
	eng         engine.Engine
	graph       engine.WeakGraph
	encoderName string
	profile     *profile.Profile
	audio       *branch.Builder
	video       *branch.Builder
	log         *logrus.Entry

	attachMu sync.Mutex
	source   string

	mu      sync.Mutex
	results []*models.BranchResult
	ignored []models.StreamDescriptor
}

// New creates a router. audio and video must be builders of the matching kind.
func New(eng engine.Engine, graph engine.WeakGraph, encoderName string, prof *profile.Profile,
	audio, video *branch.Builder, log *logrus.Entry) *Router {
	if log == nil {
		log = logrus.WithField("component", "router")
	}
	return &Router{
		eng:         eng,
		graph:       graph,
		encoderName: encoderName,
		profile:     prof,
		audio:       audio,
		video:       video,
		log:         log,
	}
}

// Attach registers the router on src. It must be called before the graph
// starts running and only once.
func (r *Router) Attach(src engine.Node) error {
	r.attachMu.Lock()
	defer r.attachMu.Unlock()

	if r.source != "" {
		return errors.New("router already attached to " + r.source)
	}
	if err := src.OnNewOutput(func(port engine.Port) {
		r.Handle(port)
	}); err != nil {
		return err
	}
	r.source = src.Name()
	return nil
}

// Handle processes one newly discovered output port.
func (r *Router) Handle(port engine.Port) {
	graph, ok := r.graph.Upgrade()
	if !ok {
		return
	}

	encoder, ok := graph.ByName(r.encoderName)
	if !ok {
		r.log.WithField("encoder", r.encoderName).Warn("Encoder not found in graph, dropping stream")
		return
	}

	mediaType, ok := port.MediaType()
	if !ok {
		r.log.WithError(&engine.UnnegotiatedCapsError{Port: port.Name()}).
			Warn("Failed to get media type from port")
		return
	}
	stream := models.NewStreamDescriptor(port.Name(), mediaType)

	log := r.log.WithFields(logrus.Fields{
		"port":       stream.Port,
		"media_type": stream.MediaType,
		"kind":       stream.Kind.String(),
	})
	log.Info("New source output")

	var builder *branch.Builder
	switch stream.Kind {
	case models.MediaAudio:
		builder = r.audio
	case models.MediaVideo:
		builder = r.video
	case models.MediaUnknown:
		log.Debug("Ignoring stream of unsupported kind")
		r.recordIgnored(stream)
		return
	}

	if builder == nil || !r.profile.Accepts(stream.Kind) {
		log.Debug("No branch configured for stream kind")
		r.recordIgnored(stream)
		return
	}

	template, err := r.profile.PortTemplate(stream.Kind)
	if err != nil {
		log.WithError(err).Error("Failed to insert branch")
		return
	}

	result, err := builder.Build(r.eng, branch.Request{
		Graph:      graph,
		Encoder:    encoder,
		Template:   template,
		SourceNode: r.sourceName(),
		Source:     port,
		Stream:     stream,
	})
	r.record(result)
	if err != nil {
		log.WithError(err).Error("Failed to insert branch")
		return
	}
	log.WithField("encoder_port", result.EncoderPort).Info("Branch linked")
}

func (r *Router) sourceName() string {
	r.attachMu.Lock()
	defer r.attachMu.Unlock()
	return r.source
}

func (r *Router) record(result *models.BranchResult) {
	if result == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *Router) recordIgnored(stream models.StreamDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ignored = append(r.ignored, stream)
}

// Results returns the outcome of every branch attempted so far.
func (r *Router) Results() []*models.BranchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.BranchResult, len(r.results))
	copy(out, r.results)
	return out
}

// Ignored returns the streams that were passed over without a branch.
func (r *Router) Ignored() []models.StreamDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.StreamDescriptor, len(r.ignored))
	copy(out, r.ignored)
	return out
}

// Counts returns the number of successfully built branches per kind.
func (r *Router) Counts() map[models.MediaKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.MediaKind]int{}
	for _, res := range r.results {
		if res.Success {
			counts[res.Stream.Kind]++
		}
	}
	return counts
}
