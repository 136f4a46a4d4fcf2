package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vanderheijden86/pitgraph/pkg/debug"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Namespace is the UUIDv5 namespace content-derived ids are computed in.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://rges-pit.github.io/pitgraph"))

func derive(key string) string {
	return uuid.NewSHA1(Namespace, []byte(key)).String()
}

// PipelineID returns the stable id of the pipeline named name.
func PipelineID(name string) string { return derive("pipeline:" + name) }

// FlowID returns the stable id of the flow named flow sent by source.
func FlowID(source, flow string) string { return derive("flow:" + source + ":" + flow) }

// EdgeID returns the stable id of the edge source->target.
func EdgeID(source, target string) string { return derive(source + "->" + target) }

// ElementID returns the content-derived id of the element at path below the
// flow root flowID. path holds child indexes from the root down.
func ElementID(flowID string, path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return derive("element:" + flowID + "/" + strings.Join(parts, "/"))
}

type buildConfig struct {
	contentIDs bool
	pipelines  []*model.Pipeline
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithContentDerivedIDs derives decomposition node ids from the flow id and
// element path instead of drawing random ones, so repeated builds agree.
func WithContentDerivedIDs() BuildOption {
	return func(c *buildConfig) { c.contentIDs = true }
}

// WithPipelines registers pipelines up front, in order, so that pipelines
// with no flows still appear and node order does not depend on flow order.
func WithPipelines(ps ...*model.Pipeline) BuildOption {
	return func(c *buildConfig) { c.pipelines = append(c.pipelines, ps...) }
}

type builder struct {
	cfg   buildConfig
	store *Store
}

// Build constructs the graph from decls. It is the single entry point that
// turns declarations into a Store; nothing is built at import time.
func Build(decls []model.DataFlowDeclaration, opts ...BuildOption) (*Store, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &builder{cfg: cfg, store: NewStore()}
	defer debug.LogEnterExit("graph.Build")()
	defer metrics.Timer(metrics.GraphBuild)()

	for _, p := range cfg.pipelines {
		if _, err := b.pipeline(p); err != nil {
			return nil, err
		}
	}
	for i, d := range decls {
		if err := d.Validate(); err != nil {
			return nil, &StructuralError{Kind: KindInvalidDeclaration, Msg: fmt.Sprintf("declaration %d: %v", i, err)}
		}
		if err := b.flow(d); err != nil {
			return nil, err
		}
	}
	debug.Log("graph.Build: %d nodes, %d edges from %d declarations",
		b.store.NodeCount(), b.store.EdgeCount(), len(decls))
	return b.store, nil
}

func (b *builder) pipeline(p *model.Pipeline) (string, error) {
	if err := p.Validate(); err != nil {
		return "", &StructuralError{Kind: KindInvalidDeclaration, Msg: err.Error()}
	}
	id := PipelineID(p.Name)
	if existing, ok := b.store.Node(id); ok {
		if !existing.Is(p.Kind) {
			return "", &StructuralError{
				Kind: KindConflictingPipeline,
				Msg:  fmt.Sprintf("pipeline %q declared as both %s and %s", p.Name, existing.Kinds, p.Kind),
			}
		}
		return id, nil
	}
	n := model.Node{
		ID:    id,
		Name:  p.Name,
		Kinds: model.Kinds(p.Kind),
		Info:  model.Information{Name: p.Name},
	}
	if p.WorkingGroup != nil {
		wg := *p.WorkingGroup
		n.WorkingGroup = &wg
	}
	return id, b.store.AddNode(n)
}

func (b *builder) flow(d model.DataFlowDeclaration) error {
	src, err := b.pipeline(d.Source)
	if err != nil {
		return err
	}
	id := FlowID(d.Source.Name, d.Data.Name)
	if b.store.Has(id) {
		return &StructuralError{
			Kind: KindDuplicateFlow,
			Msg:  fmt.Sprintf("flow %q from %q declared twice", d.Data.Name, d.Source.Name),
		}
	}
	kinds := model.Kinds(model.KindDataFlow)
	if d.Data.IsTree() {
		kinds = kinds.With(model.KindDataTree)
	}
	if err := b.store.AddNode(model.Node{ID: id, Name: d.Data.Name, Kinds: kinds, Info: d.Data.Information}); err != nil {
		return err
	}
	if _, err := b.store.AddEdge(src, id, model.EdgeDataFlow); err != nil {
		return err
	}
	for _, dst := range d.Destinations {
		dstID, err := b.pipeline(dst)
		if err != nil {
			return err
		}
		if _, err := b.store.AddEdge(id, dstID, model.EdgeDataFlow); err != nil {
			return err
		}
	}
	return b.elements(id, id, d.Data.Elements, nil)
}

func (b *builder) elements(flowID, parentID string, elements []model.DataRecord, path []int) error {
	for i, el := range elements {
		childPath := append(append([]int(nil), path...), i)
		id := uuid.NewString()
		if b.cfg.contentIDs {
			id = ElementID(flowID, childPath)
		}
		kind := model.KindDataLeaf
		if el.IsTree() {
			kind = model.KindDataTree
		}
		if err := b.store.AddNode(model.Node{ID: id, Name: el.Name, Kinds: model.Kinds(kind), Info: el.Information}); err != nil {
			return err
		}
		if _, err := b.store.AddEdge(parentID, id, model.EdgeDataTree); err != nil {
			return err
		}
		if err := b.elements(flowID, id, el.Elements, childPath); err != nil {
			return err
		}
	}
	return nil
}
