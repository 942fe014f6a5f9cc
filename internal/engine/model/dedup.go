package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DedupStrategy selects the Deduplicator implementation.
type DedupStrategy int

const (
	// DedupHash looks vertices up in a map keyed by the attribute tuple.
	DedupHash DedupStrategy = iota
	// DedupLinear scans the accepted vertices in order. Quadratic; kept as
	// the reference the hash strategy must agree with.
	DedupLinear
)

// String returns the config name of the strategy.
func (s DedupStrategy) String() string {
	switch s {
	case DedupHash:
		return "hash"
	case DedupLinear:
		return "linear"
	default:
		return fmt.Sprintf("DedupStrategy(%d)", int(s))
	}
}

// ParseDedupStrategy converts a config name into a DedupStrategy.
func ParseDedupStrategy(s string) (DedupStrategy, error) {
	switch strings.ToLower(s) {
	case "hash", "":
		return DedupHash, nil
	case "linear":
		return DedupLinear, nil
	default:
		return 0, fmt.Errorf("unknown dedup strategy %q", s)
	}
}

// Deduplicator assigns indices to a stream of vertices, reusing the index of
// the first earlier vertex with identical position, normal and texcoord.
// Equality is exact float comparison: no epsilon, NaN never matches and
// +0 equals -0. When duplicates differ only in color the first color wins.
//
// Slices returned by Vertices and Indices are valid until the next Reset.
type Deduplicator interface {
	Add(v Vertex) uint32
	Vertices() []Vertex
	Indices() []uint32
	Reset()
}

// NewDeduplicator returns an empty Deduplicator using the given strategy.
func NewDeduplicator(s DedupStrategy) Deduplicator {
	if s == DedupLinear {
		return &linearDedup{}
	}
	return &hashDedup{lookup: make(map[vertexKey]uint32)}
}

// Dedup runs a whole vertex stream through a fresh Deduplicator.
func Dedup(s DedupStrategy, vertices []Vertex) ([]Vertex, []uint32) {
	d := NewDeduplicator(s)
	for _, v := range vertices {
		d.Add(v)
	}
	return d.Vertices(), d.Indices()
}

type linearDedup struct {
	vertices []Vertex
	indices  []uint32
}

func (d *linearDedup) Add(v Vertex) uint32 {
	i := 0
	for ; i < len(d.vertices); i++ {
		if d.vertices[i].SameAs(v) {
			break
		}
	}
	if i == len(d.vertices) {
		d.vertices = append(d.vertices, v)
	}
	d.indices = append(d.indices, uint32(i))
	return uint32(i)
}

func (d *linearDedup) Vertices() []Vertex { return d.vertices }
func (d *linearDedup) Indices() []uint32  { return d.indices }

func (d *linearDedup) Reset() {
	d.vertices = nil
	d.indices = nil
}

// vertexKey is the comparable dedup key. Go map lookup uses == on the float
// fields, which gives the same equality as Vertex.SameAs.
type vertexKey struct {
	position mgl32.Vec3
	normal   mgl32.Vec3
	texCoord mgl32.Vec2
}

type hashDedup struct {
	lookup   map[vertexKey]uint32
	vertices []Vertex
	indices  []uint32
}

func (d *hashDedup) Add(v Vertex) uint32 {
	key := vertexKey{v.Position, v.Normal, v.TexCoord}
	i, ok := d.lookup[key]
	if !ok {
		// Only the first occurrence is stored, so later lookups keep
		// returning the earliest index.
		i = uint32(len(d.vertices))
		d.lookup[key] = i
		d.vertices = append(d.vertices, v)
	}
	d.indices = append(d.indices, i)
	return i
}

func (d *hashDedup) Vertices() []Vertex { return d.vertices }
func (d *hashDedup) Indices() []uint32  { return d.indices }

func (d *hashDedup) Reset() {
	clear(d.lookup)
	d.vertices = nil
	d.indices = nil
}
