// Package gstengine implements the engine contract on GStreamer via go-gst.
package gstengine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gst/go-gst/gst"

	"watermark/engine"
)

var initOnce sync.Once

// Engine resolves element types through the GStreamer registry.
type Engine struct{}

// New initializes GStreamer once per process and returns an engine.
func New() *Engine {
	initOnce.Do(func() { gst.Init(nil) })
	return &Engine{}
}

// Lookup instantiates a GStreamer element.
func (e *Engine) Lookup(typeName, id string) (engine.Node, error) {
	var (
		el  *gst.Element
		err error
	)
	if id == "" {
		el, err = gst.NewElement(typeName)
	} else {
		el, err = gst.NewElementWithName(typeName, id)
	}
	if err != nil || el == nil {
		return nil, &engine.UnavailableElementError{TypeName: typeName, Err: err}
	}
	return &node{el: el, typeName: typeName}, nil
}

// NewGraph creates an empty pipeline.
func (e *Engine) NewGraph(name string) (engine.Graph, error) {
	p, err := gst.NewPipeline(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline %s: %w", name, err)
	}
	return &pipeline{p: p, bus: p.GetPipelineBus(), nodes: make(map[string]*node)}, nil
}

func toGstState(s engine.State) gst.State {
	switch s {
	case engine.StateReady:
		return gst.StateReady
	case engine.StatePaused:
		return gst.StatePaused
	case engine.StatePlaying:
		return gst.StatePlaying
	default:
		return gst.StateNull
	}
}

func fromGstState(s gst.State) engine.State {
	switch s {
	case gst.StateReady:
		return engine.StateReady
	case gst.StatePaused:
		return engine.StatePaused
	case gst.StatePlaying:
		return engine.StatePlaying
	default:
		return engine.StateNull
	}
}

var errForeignPort = errors.New("port does not belong to this engine")
