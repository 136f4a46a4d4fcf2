// Package layout places nodes for the graph views: position maps, offset and
// merge helpers, and a deterministic layered placement.
package layout

import (
	"math"
	"sort"
)

// Position is a node center in view coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Positions maps node ids to positions.
type Positions map[string]Position

// Clone returns a copy of p.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for id, pos := range p {
		out[id] = pos
	}
	return out
}

// Offset returns a copy of p with every position translated by d.
func (p Positions) Offset(d Position) Positions {
	out := make(Positions, len(p))
	for id, pos := range p {
		out[id] = pos.Add(d)
	}
	return out
}

// Merge returns a copy of p overlaid with over; over wins on shared ids.
func (p Positions) Merge(over Positions) Positions {
	out := p.Clone()
	for id, pos := range over {
		out[id] = pos
	}
	return out
}

// Only returns the entries of p whose id is in ids.
func (p Positions) Only(ids map[string]struct{}) Positions {
	out := make(Positions, len(ids))
	for id := range ids {
		if pos, ok := p[id]; ok {
			out[id] = pos
		}
	}
	return out
}

// RoundTo10 returns a copy of p with both coordinates rounded to the nearest
// multiple of ten. Halves round up.
func (p Positions) RoundTo10() Positions {
	out := make(Positions, len(p))
	for id, pos := range p {
		out[id] = Position{X: RoundTo10(pos.X), Y: RoundTo10(pos.Y)}
	}
	return out
}

// RoundTo10 rounds v to the nearest multiple of ten, halves toward +Inf.
func RoundTo10(v float64) float64 {
	r := math.Floor(v/10+0.5) * 10
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// IDs returns the ids in p, sorted.
func (p Positions) IDs() []string {
	out := make([]string, 0, len(p))
	for id := range p {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Bounds returns the extent of the node centers in p. ok is false when p is
// empty.
func (p Positions) Bounds() (min, max Position, ok bool) {
	first := true
	for _, pos := range p {
		if first {
			min, max, first = pos, pos, false
			continue
		}
		min.X = math.Min(min.X, pos.X)
		min.Y = math.Min(min.Y, pos.Y)
		max.X = math.Max(max.X, pos.X)
		max.Y = math.Max(max.Y, pos.Y)
	}
	return min, max, !first
}
