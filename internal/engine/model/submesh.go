package model

import (
	"fmt"
	"strings"
	"unsafe"

	"go.uber.org/multierr"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/pkg/formats"
)

// PartitionPolicy decides how a shape's faces are split into submeshes.
type PartitionPolicy int

const (
	// PartitionContiguous emits one submesh per maximal run of consecutive
	// faces sharing a material, in face order.
	PartitionContiguous PartitionPolicy = iota
	// PartitionByMaterial emits one submesh per distinct material, ordered by
	// first appearance in the shape.
	PartitionByMaterial
	// PartitionLegacy emits one submesh per shape using the material of the
	// last face. Faces with other materials render with the wrong one.
	PartitionLegacy
)

// String returns the config name of the policy.
func (p PartitionPolicy) String() string {
	switch p {
	case PartitionContiguous:
		return "contiguous"
	case PartitionByMaterial:
		return "material"
	case PartitionLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("PartitionPolicy(%d)", int(p))
	}
}

// ParsePartitionPolicy converts a config name into a PartitionPolicy.
func ParsePartitionPolicy(s string) (PartitionPolicy, error) {
	switch strings.ToLower(s) {
	case "contiguous", "":
		return PartitionContiguous, nil
	case "material", "by-material", "bymaterial":
		return PartitionByMaterial, nil
	case "legacy":
		return PartitionLegacy, nil
	default:
		return 0, fmt.Errorf("unknown partition policy %q", s)
	}
}

// faceRun is the set of faces that become one submesh.
type faceRun struct {
	material int32
	faces    []int
}

// resolveMaterialIDs returns the per-face material ids of a shape, mapping
// ids outside the material table to -1. Missing ids count as -1.
func resolveMaterialIDs(shape *formats.OBJShape, materialCount int, warn func(string, ...any)) []int32 {
	ids := make([]int32, shape.FaceCount())
	invalid := 0
	for f := range ids {
		id := int32(-1)
		if f < len(shape.MaterialIDs) {
			id = shape.MaterialIDs[f]
		}
		if id < -1 || int(id) >= materialCount {
			invalid++
			id = -1
		}
		ids[f] = id
	}
	if invalid > 0 {
		warn("shape %q: %d faces reference materials outside the table (%d materials), using default",
			shape.Name, invalid, materialCount)
	}
	return ids
}

// partitionFaces groups face indices according to policy. A shape with no
// faces yields one empty run with the default material.
func partitionFaces(ids []int32, policy PartitionPolicy) []faceRun {
	if len(ids) == 0 {
		return []faceRun{{material: -1}}
	}

	switch policy {
	case PartitionByMaterial:
		var runs []faceRun
		slot := make(map[int32]int)
		for f, id := range ids {
			i, ok := slot[id]
			if !ok {
				i = len(runs)
				slot[id] = i
				runs = append(runs, faceRun{material: id})
			}
			runs[i].faces = append(runs[i].faces, f)
		}
		return runs

	case PartitionLegacy:
		run := faceRun{material: ids[len(ids)-1], faces: make([]int, len(ids))}
		for f := range ids {
			run.faces[f] = f
		}
		return []faceRun{run}

	default:
		var runs []faceRun
		for f, id := range ids {
			if len(runs) == 0 || runs[len(runs)-1].material != id {
				runs = append(runs, faceRun{material: id})
			}
			last := &runs[len(runs)-1]
			last.faces = append(last.faces, f)
		}
		return runs
	}
}

// BuildSubMeshes converts one shape into submeshes and uploads their buffers
// to device. materialCount is the size of the mesh's material table.
// On error every object created by this call has been released.
func BuildSubMeshes(device gpu.Device, attrs *formats.OBJAttributes, shape *formats.OBJShape,
	materialCount int, opts ImportOptions) ([]SubMesh, []string, error) {
	a := newArena(device)
	b := newBuilder(a, attrs, materialCount, opts)
	subs, err := b.build(shape)
	if err != nil {
		return nil, b.warnings, multierr.Append(err, a.release())
	}
	a.commit()
	return subs, b.warnings, nil
}

// builder turns shapes into submeshes, reusing one Deduplicator.
type builder struct {
	arena         *arena
	attrs         *formats.OBJAttributes
	materialCount int
	policy        PartitionPolicy
	dedup         Deduplicator
	bounds        Bounds
	warnings      []string
}

func newBuilder(a *arena, attrs *formats.OBJAttributes, materialCount int, opts ImportOptions) *builder {
	return &builder{
		arena:         a,
		attrs:         attrs,
		materialCount: materialCount,
		policy:        opts.Partition,
		dedup:         NewDeduplicator(opts.Dedup),
		bounds:        emptyBounds(),
	}
}

func (b *builder) warn(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *builder) build(shape *formats.OBJShape) ([]SubMesh, error) {
	if len(shape.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: shape %q has %d corners, not a multiple of 3",
			ErrDataInconsistency, shape.Name, len(shape.Indices))
	}

	ids := resolveMaterialIDs(shape, b.materialCount, b.warn)
	runs := partitionFaces(ids, b.policy)

	subs := make([]SubMesh, 0, len(runs))
	missingNormals := 0
	for _, run := range runs {
		sm, missing, err := b.buildRun(shape, run)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", shape.Name, err)
		}
		missingNormals += missing
		subs = append(subs, sm)
	}

	if missingNormals > 0 {
		b.warn("shape %q: %d corners have no normal, left zero", shape.Name, missingNormals)
	}
	return subs, nil
}

// buildRun decodes, deduplicates and uploads one run of faces.
func (b *builder) buildRun(shape *formats.OBJShape, run faceRun) (SubMesh, int, error) {
	b.dedup.Reset()
	defer b.dedup.Reset()

	missingNormals := 0
	for _, f := range run.faces {
		for _, idx := range shape.Indices[3*f : 3*f+3] {
			v, err := DecodeVertex(b.attrs, idx)
			if err != nil {
				return SubMesh{}, 0, fmt.Errorf("face %d: %w", f, err)
			}
			if idx.Normal < 0 {
				missingNormals++
			}
			b.dedup.Add(v)
		}
	}

	vertices, indices := b.dedup.Vertices(), b.dedup.Indices()
	sm := SubMesh{
		Name:        shape.Name,
		MaterialID:  run.material,
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
	}
	if sm.IndexCount == 0 {
		return sm, missingNormals, nil
	}

	for _, v := range vertices {
		b.bounds.extend(v.Position)
	}

	var err error
	if sm.VertexBuffer, err = b.arena.createBuffer(gpu.BufferVertex, vertexBytes(vertices)); err != nil {
		return SubMesh{}, 0, fmt.Errorf("vertex buffer: %w", err)
	}
	if sm.IndexBuffer, err = b.arena.createBuffer(gpu.BufferIndex, indexBytes(indices)); err != nil {
		return SubMesh{}, 0, fmt.Errorf("index buffer: %w", err)
	}
	if sm.Layout, err = b.arena.bindLayout(sm.VertexBuffer, sm.IndexBuffer); err != nil {
		return SubMesh{}, 0, fmt.Errorf("vertex layout: %w", err)
	}
	// The layout owns the buffer names now; GL may already have deleted them
	sm.Ownership = OwnedByLayout
	sm.VertexBuffer, sm.IndexBuffer = 0, 0
	return sm, missingNormals, nil
}

// vertexBytes views vertices as raw bytes, exactly len*VertexStride long.
func vertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(unsafe.Sizeof(Vertex{})))
}

// indexBytes views indices as raw bytes, exactly len*IndexSize long.
func indexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*gpu.IndexSize)
}
