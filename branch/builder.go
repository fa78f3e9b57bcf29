// Package branch builds the per-stream normalization chain between a
// discovered source output and the shared encoder/muxer node.
//
// A branch is built in a fixed order:
//
//  1. instantiate every element of the chain (all or nothing)
//  2. add them to the graph and link them pairwise
//  3. request a port of the stream's kind on the encoder
//  4. link the chain's last element to that port
//  5. bring every new element to the graph's run state
//  6. link the discovered source output to the chain's first element
//
// Data may flow the instant step 6 completes, so everything downstream must
// already be in place. A failure at any step abandons only this branch.
package branch

import (
	"fmt"

	"watermark/element"
	"watermark/engine"
	"watermark/models"
	"watermark/overlay"
	"watermark/topology"
)

// DefaultOverlayElement is the element that stamps the image onto frames.
const DefaultOverlayElement = "gdkpixbufoverlay"

// Builder describes the chain for one media kind. A Builder is not modified
// by Build and may serve concurrent callbacks.
type Builder struct {
	kind     models.MediaKind
	specs    []element.Spec
	recorder *topology.Graph
}

// NewAudioBuilder creates the audio chain: queue → audioconvert → audioresample.
func NewAudioBuilder() *Builder {
	return &Builder{
		kind: models.MediaAudio,
		specs: []element.Spec{
			{Type: "queue"},
			{Type: "audioconvert"},
			{Type: "audioresample"},
		},
	}
}

// NewVideoBuilder creates the video chain: queue → videoconvert → videoscale.
func NewVideoBuilder() *Builder {
	return &Builder{
		kind: models.MediaVideo,
		specs: []element.Spec{
			{Type: "queue"},
			{Type: "videoconvert"},
			{Type: "videoscale"},
		},
	}
}

// AddElement appends an element to the end of the chain.
func (b *Builder) AddElement(typeName string, cfg ...element.Setting) *Builder {
	b.specs = append(b.specs, element.Spec{Type: typeName, Config: cfg})
	return b
}

// SetOverlay appends an overlay element stamping img with the given placement.
// An empty typeName selects DefaultOverlayElement.
func (b *Builder) SetOverlay(typeName string, img *overlay.Image, settings overlay.Settings) *Builder {
	if typeName == "" {
		typeName = DefaultOverlayElement
	}
	return b.AddElement(typeName, settings.ElementConfig(img)...)
}

// SetRecorder makes Build record nodes and links into g.
func (b *Builder) SetRecorder(g *topology.Graph) *Builder {
	b.recorder = g
	return b
}

// Kind returns the media kind this builder serves.
func (b *Builder) Kind() models.MediaKind {
	return b.kind
}

// ElementTypes returns the chain's element types in link order.
func (b *Builder) ElementTypes() []string {
	types := make([]string, len(b.specs))
	for i, s := range b.specs {
		types[i] = s.Type
	}
	return types
}

// Request carries everything one Build call attaches to.
type Request struct {
	Graph      engine.Graph
	Encoder    engine.Node
	Template   string // encoder request template, e.g. "audio_%u"
	SourceNode string
	Source     engine.Port
	Stream     models.StreamDescriptor
}

// Build constructs and attaches one branch. The returned result is never nil;
// on failure it carries the same error that is returned.
func (b *Builder) Build(eng engine.Engine, req Request) (*models.BranchResult, error) {
	if len(b.specs) == 0 {
		return b.fail(req, nil, fmt.Errorf("%s branch has no elements", b.kind))
	}

	nodes, err := element.MakeChain(eng, b.specs)
	if err != nil {
		return b.fail(req, nil, err)
	}
	names := element.Names(nodes)

	if err := req.Graph.Add(nodes...); err != nil {
		return b.fail(req, nil, fmt.Errorf("failed to add %s elements to graph: %w", b.kind, err))
	}
	b.recordNodes(nodes)

	if err := element.LinkChain(nodes); err != nil {
		return b.fail(req, names, err)
	}
	b.recordChain(nodes)

	first, last := nodes[0], nodes[len(nodes)-1]

	encPort, err := req.Encoder.RequestPort(req.Template)
	if err != nil {
		return b.fail(req, names, err)
	}

	lastSrc, ok := last.StaticPort("src")
	if !ok {
		req.Encoder.ReleasePort(encPort)
		return b.fail(req, names, &engine.LinkError{From: last.Name(), To: req.Encoder.Name(), Reason: "no src port"})
	}
	if err := lastSrc.Link(encPort); err != nil {
		req.Encoder.ReleasePort(encPort)
		return b.fail(req, names, err)
	}
	b.recordEdge(last.Name(), req.Encoder.Name())

	// detach undoes the encoder side if a later step fails.
	detach := func() {
		_ = lastSrc.Unlink(encPort)
		req.Encoder.ReleasePort(encPort)
		b.forgetEdge(last.Name(), req.Encoder.Name())
	}

	for _, n := range nodes {
		if err := n.SyncStateWithParent(); err != nil {
			detach()
			return b.fail(req, names, err)
		}
	}

	firstSink, ok := first.StaticPort("sink")
	if !ok {
		detach()
		return b.fail(req, names, &engine.LinkError{From: req.Source.Name(), To: first.Name(), Reason: "no sink port"})
	}
	if err := req.Source.Link(firstSink); err != nil {
		detach()
		return b.fail(req, names, err)
	}
	b.recordEdge(req.SourceNode, first.Name())

	return models.NewBranchSuccess(req.Stream, encPort.Name(), names)
}

func (b *Builder) fail(req Request, names []string, err error) (*models.BranchResult, error) {
	result, _ := models.NewBranchFailure(req.Stream, names, err)
	return result, err
}

func (b *Builder) recordNodes(nodes []engine.Node) {
	if b.recorder == nil {
		return
	}
	for _, n := range nodes {
		_ = b.recorder.AddNode(topology.Node{
			Name: n.Name(),
			Type: n.TypeName(),
			Role: topology.RoleBranch,
			Kind: b.kind,
		})
	}
}

func (b *Builder) recordChain(nodes []engine.Node) {
	for i := 0; i+1 < len(nodes); i++ {
		b.recordEdge(nodes[i].Name(), nodes[i+1].Name())
	}
}

func (b *Builder) recordEdge(from, to string) {
	if b.recorder != nil && from != "" {
		b.recorder.AddEdge(from, to)
	}
}

func (b *Builder) forgetEdge(from, to string) {
	if b.recorder != nil {
		b.recorder.RemoveEdge(from, to)
	}
}
