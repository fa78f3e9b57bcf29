package gstengine

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"

	"watermark/engine"
)

type node struct {
	el       *gst.Element
	typeName string
	parent   atomic.Pointer[pipeline]
}

func (n *node) Name() string     { return n.el.GetName() }
func (n *node) TypeName() string { return n.typeName }

// SetConfig sets a property from its Go value. A string given for a property
// that is not string-typed is deserialized by GStreamer into the property's
// own type, which is how enum nicks and encoding profiles are set.
func (n *node) SetConfig(key string, value any) error {
	if s, ok := value.(string); ok {
		t, err := n.el.GetPropertyType(key)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", n.Name(), key, err)
		}
		if t != glib.TYPE_STRING {
			return n.setSerialized(key, s)
		}
	}
	if err := n.el.SetProperty(key, value); err != nil {
		return fmt.Errorf("%s.%s: %w", n.Name(), key, err)
	}
	return nil
}

// setSerialized goes through gst_util_set_object_arg, which reports nothing.
// The property is read back so a value that did not deserialize still fails.
func (n *node) setSerialized(key, value string) error {
	n.el.SetArg(key, value)

	got, err := n.el.GetProperty(key)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", n.Name(), key, err)
	}
	if obj, ok := got.(*glib.Object); got == nil || (ok && (obj == nil || obj.GObject == nil)) {
		return fmt.Errorf("%s.%s: cannot deserialize %q", n.Name(), key, value)
	}
	return nil
}

func (n *node) RequestPort(template string) (engine.Port, error) {
	pad := n.el.GetRequestPad(template)
	if pad == nil {
		return nil, &engine.PortRequestDeniedError{Node: n.Name(), Template: template}
	}
	return &port{pad: pad}, nil
}

func (n *node) ReleasePort(p engine.Port) {
	if gp, ok := p.(*port); ok && gp.pad != nil {
		n.el.ReleaseRequestPad(gp.pad)
	}
}

func (n *node) StaticPort(name string) (engine.Port, bool) {
	pad := n.el.GetStaticPad(name)
	if pad == nil {
		return nil, false
	}
	return &port{pad: pad}, true
}

func (n *node) SyncStateWithParent() error {
	if n.el.SyncStateWithParent() {
		return nil
	}
	err := &engine.StateRejectedError{
		Object: n.Name(),
		Err:    fmt.Errorf("failed to sync state with parent"),
	}
	if parent := n.parent.Load(); parent != nil {
		err.Target = parent.State()
	}
	return err
}

func (n *node) OnNewOutput(fn func(engine.Port)) error {
	_, err := n.el.Connect("pad-added", func(_ *gst.Element, pad *gst.Pad) {
		fn(&port{pad: pad})
	})
	if err != nil {
		return fmt.Errorf("failed to connect pad-added on %s: %w", n.Name(), err)
	}
	return nil
}

type port struct {
	pad *gst.Pad
}

func (p *port) Name() string { return p.pad.GetName() }

func (p *port) MediaType() (string, bool) {
	caps := p.pad.GetCurrentCaps()
	if caps == nil || caps.GetSize() == 0 {
		return "", false
	}
	s := caps.GetStructureAt(0)
	if s == nil {
		return "", false
	}
	return s.Name(), true
}

func (p *port) Link(sink engine.Port) error {
	gs, ok := sink.(*port)
	if !ok {
		return &engine.LinkError{From: p.Name(), To: sink.Name(), Reason: errForeignPort.Error()}
	}
	if ret := p.pad.Link(gs.pad); ret != gst.PadLinkOK {
		return &engine.LinkError{From: p.Name(), To: gs.Name(), Reason: ret.String()}
	}
	return nil
}

func (p *port) Unlink(sink engine.Port) error {
	gs, ok := sink.(*port)
	if !ok {
		return errForeignPort
	}
	if !p.pad.Unlink(gs.pad) {
		return fmt.Errorf("failed to unlink %s -> %s", p.Name(), gs.Name())
	}
	return nil
}
