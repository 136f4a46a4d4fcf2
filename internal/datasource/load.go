package datasource

import (
	"bytes"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/pitgraph/pkg/dataset"
	"github.com/vanderheijden86/pitgraph/pkg/graph"
	"github.com/vanderheijden86/pitgraph/pkg/metrics"
	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Declarations is everything needed to build a graph.
type Declarations struct {
	Flows []model.DataFlowDeclaration
	// Pipelines fixes node order and includes pipelines with no flows.
	Pipelines []*model.Pipeline
}

// Build builds the graph store for d and checks its flow and tree
// invariants.
func (d Declarations) Build(opts ...graph.BuildOption) (*graph.Store, error) {
	opts = append([]graph.BuildOption{graph.WithPipelines(d.Pipelines...)}, opts...)
	s, err := graph.Build(d.Flows, opts...)
	if err != nil {
		return nil, err
	}
	if err := graph.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// File is the on-disk declaration format. Flows refer to pipelines by name.
type File struct {
	Pipelines []PipelineEntry `json:"pipelines" yaml:"pipelines"`
	Flows     []FlowEntry     `json:"flows" yaml:"flows"`
}

type PipelineEntry struct {
	Name         string              `json:"name" yaml:"name"`
	Kind         string              `json:"kind" yaml:"kind"`
	WorkingGroup *model.WorkingGroup `json:"workingGroup,omitempty" yaml:"workingGroup,omitempty"`
}

type FlowEntry struct {
	Source       string           `json:"source" yaml:"source"`
	Destinations []string         `json:"destinations" yaml:"destinations"`
	Data         model.DataRecord `json:"data" yaml:"data"`
}

// Load reads declarations from src.
func Load(src Source) (Declarations, error) {
	defer metrics.Timer(metrics.DataLoad)()
	switch src.Type {
	case SourceTypeCompiled:
		flows, ps := dataset.Declarations()
		return Declarations{Flows: flows, Pipelines: ps.All()}, nil
	case SourceTypeYAML, SourceTypeJSON:
		f, err := os.Open(src.Path)
		if err != nil {
			return Declarations{}, err
		}
		defer f.Close()
		d, err := Decode(f, src.Type)
		if err != nil {
			return Declarations{}, fmt.Errorf("%s: %w", src.Path, err)
		}
		return d, nil
	case SourceTypeSQLite:
		r, err := NewSQLiteReader(src.Path)
		if err != nil {
			return Declarations{}, err
		}
		defer r.Close()
		return r.Declarations()
	}
	return Declarations{}, fmt.Errorf("unknown source type %q", src.Type)
}

// LoadPath detects and loads path; an empty path loads the compiled dataset.
func LoadPath(path string) (Declarations, Source, error) {
	src, err := Detect(path)
	if err != nil {
		return Declarations{}, Source{}, err
	}
	d, err := Load(src)
	return d, src, err
}

// Decode parses a YAML or JSON declaration file.
func Decode(r io.Reader, typ SourceType) (Declarations, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Declarations{}, err
	}
	var f File
	switch typ {
	case SourceTypeYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return Declarations{}, fmt.Errorf("parse yaml: %w", err)
		}
	case SourceTypeJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return Declarations{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		return Declarations{}, fmt.Errorf("cannot decode %s", typ)
	}
	return f.Declarations()
}

// Declarations resolves pipeline names.
func (f File) Declarations() (Declarations, error) {
	var d Declarations
	byName := make(map[string]*model.Pipeline, len(f.Pipelines))
	for i, pe := range f.Pipelines {
		kind, err := model.ParseKind(pe.Kind)
		if err != nil {
			return d, fmt.Errorf("pipelines[%d] %q: %w", i, pe.Name, err)
		}
		p := &model.Pipeline{Name: pe.Name, Kind: kind, WorkingGroup: pe.WorkingGroup}
		if err := p.Validate(); err != nil {
			return d, fmt.Errorf("pipelines[%d]: %w", i, err)
		}
		if _, dup := byName[p.Name]; dup {
			return d, fmt.Errorf("pipelines[%d]: %q declared twice", i, p.Name)
		}
		byName[p.Name] = p
		d.Pipelines = append(d.Pipelines, p)
	}

	ref := func(where, name string) (*model.Pipeline, error) {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%s: unknown pipeline %q", where, name)
		}
		return p, nil
	}
	for i, fe := range f.Flows {
		where := fmt.Sprintf("flows[%d] %q", i, fe.Data.Name)
		src, err := ref(where+" source", fe.Source)
		if err != nil {
			return d, err
		}
		decl := model.DataFlowDeclaration{Source: src, Data: fe.Data}
		for _, name := range fe.Destinations {
			dst, err := ref(where+" destination", name)
			if err != nil {
				return d, err
			}
			decl.Destinations = append(decl.Destinations, dst)
		}
		if err := decl.Validate(); err != nil {
			return d, fmt.Errorf("%s: %w", where, err)
		}
		d.Flows = append(d.Flows, decl)
	}
	return d, nil
}

// ToFile converts d to the on-disk format. Pipelines referenced by flows but
// missing from d.Pipelines are appended in order of first use.
func (d Declarations) ToFile() File {
	var f File
	seen := map[string]bool{}
	add := func(p *model.Pipeline) {
		if p == nil || seen[p.Name] {
			return
		}
		seen[p.Name] = true
		f.Pipelines = append(f.Pipelines, PipelineEntry{Name: p.Name, Kind: p.Kind.String(), WorkingGroup: p.WorkingGroup})
	}
	for _, p := range d.Pipelines {
		add(p)
	}
	for _, decl := range d.Flows {
		add(decl.Source)
		fe := FlowEntry{Source: decl.Source.Name, Data: decl.Data}
		for _, dst := range decl.Destinations {
			add(dst)
			fe.Destinations = append(fe.Destinations, dst.Name)
		}
		f.Flows = append(f.Flows, fe)
	}
	return f
}

// Encode writes d as YAML or JSON.
func Encode(w io.Writer, d Declarations, typ SourceType) error {
	f := d.ToFile()
	switch typ {
	case SourceTypeYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case SourceTypeJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return fmt.Errorf("cannot encode %s", typ)
}
