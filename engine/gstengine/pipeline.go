package gstengine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/go-gst/go-gst/gst"

	"watermark/engine"
)

type pipeline struct {
	p   *gst.Pipeline
	bus *gst.Bus

	mu     sync.Mutex
	nodes  map[string]*node
	closed atomic.Bool
}

func (g *pipeline) Name() string { return g.p.GetName() }

func (g *pipeline) Add(nodes ...engine.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	els := make([]*gst.Element, 0, len(nodes))
	for _, n := range nodes {
		gn, ok := n.(*node)
		if !ok {
			return fmt.Errorf("node %s does not belong to this engine", n.Name())
		}
		if _, dup := g.nodes[gn.Name()]; dup {
			return fmt.Errorf("node %s already in pipeline", gn.Name())
		}
		els = append(els, gn.el)
	}
	if err := g.p.AddMany(els...); err != nil {
		return err
	}
	for _, n := range nodes {
		gn := n.(*node)
		gn.parent.Store(g)
		g.nodes[gn.Name()] = gn
	}
	return nil
}

func (g *pipeline) SetState(state engine.State) error {
	if err := g.p.SetState(toGstState(state)); err != nil {
		return &engine.StateRejectedError{Target: state, Object: g.Name(), Err: err}
	}
	return nil
}

func (g *pipeline) State() engine.State {
	return fromGstState(g.p.GetCurrentState())
}

func (g *pipeline) ByName(name string) (engine.Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[name]
	if !ok {
		return nil, false
	}
	return n, true
}

func (g *pipeline) Downgrade() engine.WeakGraph {
	return weakPipeline{ptr: weak.Make(g)}
}

func (g *pipeline) WaitEvent() engine.Event {
	for {
		if msg := g.bus.BlockPopMessage(); msg != nil {
			return toEvent(msg)
		}
	}
}

func (g *pipeline) PollEvent() (engine.Event, bool) {
	msg := g.bus.Pop()
	if msg == nil {
		return engine.Event{}, false
	}
	return toEvent(msg), true
}

func (g *pipeline) SendEndOfStream() error {
	if !g.p.SendEvent(gst.NewEOSEvent()) {
		return errors.New("pipeline refused end-of-stream event")
	}
	return nil
}

func (g *pipeline) Close() error {
	if g.closed.Swap(true) {
		return nil
	}
	if err := g.p.SetState(gst.StateNull); err != nil {
		return &engine.StateRejectedError{Target: engine.StateNull, Object: g.Name(), Err: err}
	}
	return nil
}

type weakPipeline struct {
	ptr weak.Pointer[pipeline]
}

func (w weakPipeline) Upgrade() (engine.Graph, bool) {
	g := w.ptr.Value()
	if g == nil || g.closed.Load() {
		return nil, false
	}
	return g, true
}

func toEvent(msg *gst.Message) engine.Event {
	ev := engine.Event{Source: msg.Source()}
	switch msg.Type() {
	case gst.MessageEOS:
		ev.Kind = engine.EventEOS
	case gst.MessageError:
		ev.Kind = engine.EventError
		if gerr := msg.ParseError(); gerr != nil {
			ev.Message = gerr.Error()
			ev.Debug = gerr.DebugString()
		}
	case gst.MessageWarning:
		ev.Kind = engine.EventWarning
		if gerr := msg.ParseWarning(); gerr != nil {
			ev.Message = gerr.Error()
			ev.Debug = gerr.DebugString()
		}
	case gst.MessageStateChanged:
		ev.Kind = engine.EventStateChanged
		oldState, newState := msg.ParseStateChanged()
		ev.OldState = fromGstState(oldState)
		ev.NewState = fromGstState(newState)
	default:
		ev.Kind = engine.EventOther
		ev.Detail = msg.TypeName()
	}
	return ev
}
