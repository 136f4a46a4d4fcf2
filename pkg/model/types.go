// Package model defines the node, edge and declaration types of the data-flow
// graph.
package model

import (
	"fmt"
	"strings"
)

// Field names an optional scalar in an Information record.
type Field string

const (
	FieldName               Field = "name"
	FieldUnit               Field = "unit"
	FieldFrequency          Field = "frequency"
	FieldLatency            Field = "latency"
	FieldStructure          Field = "structure"
	FieldFormat             Field = "format"
	FieldHost               Field = "host"
	FieldNotes              Field = "notes"
	FieldTotalNumberOfUnits Field = "totalNumberOfUnits"
	FieldUnitDataSize       Field = "unitDataSize"
	FieldTotalDataSize      Field = "totalDataSize"
	FieldExampleFileURL     Field = "exampleFileUrl"
)

// InheritableFields is the closed set of fields a structural node may take
// from its tree ancestors when unset on itself.
var InheritableFields = []Field{FieldUnit, FieldFrequency, FieldLatency}

// IsInheritable reports whether f belongs to InheritableFields.
func (f Field) IsInheritable() bool {
	for _, inh := range InheritableFields {
		if inh == f {
			return true
		}
	}
	return false
}

// Label returns the human readable field label shown in panels.
func (f Field) Label() string {
	switch f {
	case FieldTotalNumberOfUnits:
		return "Total number of units"
	case FieldUnitDataSize:
		return "Unit data size"
	case FieldTotalDataSize:
		return "Total data size"
	case FieldExampleFileURL:
		return "Example file"
	}
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Information is the metadata record attached to a node. An empty string
// means the field is absent.
type Information struct {
	Name                           string `json:"name" yaml:"name"`
	Unit                           string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Frequency                      string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Latency                        string `json:"latency,omitempty" yaml:"latency,omitempty"`
	Structure                      string `json:"structure,omitempty" yaml:"structure,omitempty"`
	Format                         string `json:"format,omitempty" yaml:"format,omitempty"`
	Host                           string `json:"host,omitempty" yaml:"host,omitempty"`
	Notes                          string `json:"notes,omitempty" yaml:"notes,omitempty"`
	TotalNumberOfUnits             string `json:"totalNumberOfUnits,omitempty" yaml:"totalNumberOfUnits,omitempty"`
	UnitDataSize                   string `json:"unitDataSize,omitempty" yaml:"unitDataSize,omitempty"`
	TotalDataSize                  string `json:"totalDataSize,omitempty" yaml:"totalDataSize,omitempty"`
	ExampleFileURL                 string `json:"exampleFileUrl,omitempty" yaml:"exampleFileUrl,omitempty"`
	IsOfficialPitPublicDataProduct bool   `json:"isOfficialPitPublicDataProduct,omitempty" yaml:"isOfficialPitPublicDataProduct,omitempty"`
}

// DetailFields lists the scalar fields in panel display order (name excluded).
var DetailFields = []Field{
	FieldUnit,
	FieldFrequency,
	FieldLatency,
	FieldStructure,
	FieldFormat,
	FieldHost,
	FieldTotalNumberOfUnits,
	FieldUnitDataSize,
	FieldTotalDataSize,
	FieldExampleFileURL,
	FieldNotes,
}

// Get returns the value of f and whether it is set.
func (i Information) Get(f Field) (string, bool) {
	var v string
	switch f {
	case FieldName:
		v = i.Name
	case FieldUnit:
		v = i.Unit
	case FieldFrequency:
		v = i.Frequency
	case FieldLatency:
		v = i.Latency
	case FieldStructure:
		v = i.Structure
	case FieldFormat:
		v = i.Format
	case FieldHost:
		v = i.Host
	case FieldNotes:
		v = i.Notes
	case FieldTotalNumberOfUnits:
		v = i.TotalNumberOfUnits
	case FieldUnitDataSize:
		v = i.UnitDataSize
	case FieldTotalDataSize:
		v = i.TotalDataSize
	case FieldExampleFileURL:
		v = i.ExampleFileURL
	}
	return v, v != ""
}

// WorkingGroup identifies a numbered collaboration working group.
type WorkingGroup struct {
	Number int    `json:"number" yaml:"number"`
	Name   string `json:"name" yaml:"name"`
}

func (w WorkingGroup) String() string {
	return fmt.Sprintf("WG%d: %s", w.Number, w.Name)
}

// Node is a vertex of the data-flow graph.
type Node struct {
	ID           string
	Name         string
	Kinds        KindSet
	Info         Information
	WorkingGroup *WorkingGroup // pipelines only
}

// Is reports whether the node carries kind k.
func (n *Node) Is(k Kind) bool {
	return n.Kinds.Has(k)
}

// IsPipeline reports whether the node is a working group, external group or
// public node.
func (n *Node) IsPipeline() bool {
	return n.Kinds.Matches(PipelineKinds)
}

// IsStructural reports whether the node is a tree element that is not also a
// data flow root.
func (n *Node) IsStructural() bool {
	return n.Kinds.Matches(StructureKinds) && !n.Is(KindDataFlow)
}

// Edge is a directed, kind-tagged connection between two nodes.
type Edge struct {
	ID     string
	Source string
	Target string
	Kind   EdgeKind
}

// Pipeline declares a top-level actor.
type Pipeline struct {
	Name         string        `json:"name" yaml:"name"`
	Kind         Kind          `json:"-" yaml:"-"`
	WorkingGroup *WorkingGroup `json:"workingGroup,omitempty" yaml:"workingGroup,omitempty"`
}

// Validate checks the pipeline declaration.
func (p *Pipeline) Validate() error {
	if p == nil {
		return fmt.Errorf("pipeline is nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pipeline name cannot be empty")
	}
	if !p.Kind.IsPipeline() {
		return fmt.Errorf("pipeline %q has non-pipeline kind %s", p.Name, p.Kind)
	}
	return nil
}

// DataRecord describes a payload. A record with Elements decomposes into a
// tree; one without is a leaf.
type DataRecord struct {
	Information `yaml:",inline"`
	Elements    []DataRecord `json:"dataElements,omitempty" yaml:"dataElements,omitempty"`
}

// IsTree reports whether the record decomposes into elements.
func (r DataRecord) IsTree() bool {
	return len(r.Elements) > 0
}

// DataFlowDeclaration declares one payload moving from a source pipeline to
// one or more destination pipelines.
type DataFlowDeclaration struct {
	Source       *Pipeline
	Destinations []*Pipeline
	Data         DataRecord
}

// Validate checks the declaration for missing endpoints and names.
func (d DataFlowDeclaration) Validate() error {
	if err := d.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if len(d.Destinations) == 0 {
		return fmt.Errorf("flow %q has no destinations", d.Data.Name)
	}
	for i, dst := range d.Destinations {
		if err := dst.Validate(); err != nil {
			return fmt.Errorf("destination %d: %w", i, err)
		}
	}
	return validateRecord(d.Data, "data")
}

func validateRecord(r DataRecord, path string) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%s: record name cannot be empty", path)
	}
	for i, el := range r.Elements {
		if err := validateRecord(el, fmt.Sprintf("%s.dataElements[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}
