package model

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/internal/logger"
	"github.com/Faultbox/objviewer/pkg/formats"
)

// Import error kinds. An *ImportError wraps exactly one of them.
var (
	ErrParse             = errors.New("mesh parse error")
	ErrResourceExhausted = errors.New("GPU resources exhausted")
	ErrDataInconsistency = errors.New("mesh data inconsistency")
	ErrDestroyed         = errors.New("mesh destroyed")
)

// ImportError describes a failed import. Warnings collected before the
// failure are kept for diagnostics.
type ImportError struct {
	Path     string
	Kind     error // ErrParse, ErrResourceExhausted or ErrDataInconsistency
	Warnings []string
	Err      error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v: %v", e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ImportError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ImportOptions controls the import pipeline. The zero value uses hash
// deduplication, contiguous partitioning and DefaultMaterial.
type ImportOptions struct {
	Dedup     DedupStrategy
	Partition PartitionPolicy

	// StrictLifecycle makes use of a destroyed mesh panic instead of
	// logging an error and returning zero values.
	StrictLifecycle bool

	// DefaultMaterial overrides the fallback material when non-nil.
	DefaultMaterial *Material

	// Textures resolves material textures. Nil leaves every texture unset.
	Textures TextureCache
}

// Stats summarizes a mesh for diagnostics.
type Stats struct {
	SubMeshes      int
	EmptySubMeshes int
	Materials      int
	Vertices       int // Unique vertices uploaded
	Indices        int // Face corners processed
}

// Mesh is an imported model: submeshes, their materials, and the GPU
// objects they own. A Mesh must not be copied; use the pointer returned by
// Import. It is not safe for concurrent use.
type Mesh struct {
	_ noCopy

	path      string
	device    gpu.Device
	subMeshes []SubMesh
	materials []Material
	fallback  Material
	warnings  []string
	bounds    Bounds
	strict    bool
	destroyed bool
}

// Import loads the OBJ file at path and uploads it to device.
// Either a loaded Mesh is returned or every GPU object created along the
// way has been released and the error is an *ImportError.
func Import(device gpu.Device, path string, opts ImportOptions) (*Mesh, error) {
	start := time.Now()

	obj, err := formats.LoadOBJ(path)
	if err != nil {
		return nil, &ImportError{Path: path, Kind: ErrParse, Err: err}
	}

	m, err := importOBJ(device, path, obj, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("mesh imported",
		zap.String("path", path),
		zap.Int("submeshes", len(m.subMeshes)),
		zap.Int("materials", len(m.materials)),
		zap.Int("warnings", len(m.warnings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// ImportData uploads an already parsed OBJ to device.
// Textures are resolved relative to obj.MaterialDir.
func ImportData(device gpu.Device, obj *formats.OBJ, opts ImportOptions) (*Mesh, error) {
	return importOBJ(device, "", obj, opts)
}

func importOBJ(device gpu.Device, path string, obj *formats.OBJ, opts ImportOptions) (*Mesh, error) {
	warnings := append([]string(nil), obj.Warnings...)

	materials := BuildMaterials(obj.Materials, obj.MaterialDir, opts.Textures)

	a := newArena(device)
	b := newBuilder(a, &obj.Attributes, len(materials), opts)

	var subs []SubMesh
	for i := range obj.Shapes {
		shapeSubs, err := b.build(&obj.Shapes[i])
		if err != nil {
			warnings = append(warnings, b.warnings...)
			if rerr := a.release(); rerr != nil {
				logger.Error("failed to release GPU objects after import error",
					zap.String("path", path), zap.Error(rerr))
				err = multierr.Append(err, rerr)
			}
			return nil, &ImportError{Path: path, Kind: classify(err), Warnings: warnings, Err: err}
		}
		subs = append(subs, shapeSubs...)
	}
	a.commit()
	warnings = append(warnings, b.warnings...)

	for _, w := range warnings {
		logger.Warn("import warning", zap.String("path", path), zap.String("warning", w))
	}

	fallback := DefaultMaterial()
	if opts.DefaultMaterial != nil {
		fallback = *opts.DefaultMaterial
	}

	bounds := b.bounds
	if bounds.IsEmpty() {
		bounds = Bounds{}
	}

	m := &Mesh{
		path:      path,
		device:    device,
		subMeshes: subs,
		materials: materials,
		fallback:  fallback,
		warnings:  warnings,
		bounds:    bounds,
		strict:    opts.StrictLifecycle,
	}
	st := m.stats()
	logger.Debug("mesh built",
		zap.String("path", path),
		zap.Int("vertices", st.Vertices),
		zap.Int("indices", st.Indices),
		zap.String("dedup", opts.Dedup.String()),
		zap.String("partition", opts.Partition.String()),
	)
	return m, nil
}

// classify maps a build failure to its import error kind.
func classify(err error) error {
	if errors.Is(err, ErrDataInconsistency) {
		return ErrDataInconsistency
	}
	// Everything else comes from the device: out of memory or a rejected handle.
	return ErrResourceExhausted
}

// alive reports whether the mesh may be used, enforcing the lifecycle.
func (m *Mesh) alive(op string) bool {
	if !m.destroyed {
		return true
	}
	if m.strict {
		panic(fmt.Sprintf("model: %s on %v (%s)", op, ErrDestroyed, m.path))
	}
	logger.Error("use of destroyed mesh", zap.String("op", op), zap.String("path", m.path))
	return false
}

// Path returns the file the mesh was imported from, empty for ImportData.
func (m *Mesh) Path() string {
	return m.path
}

// SubMeshes returns the submeshes in build order.
func (m *Mesh) SubMeshes() []SubMesh {
	if !m.alive("SubMeshes") {
		return nil
	}
	return m.subMeshes
}

// Materials returns the material table.
func (m *Mesh) Materials() []Material {
	if !m.alive("Materials") {
		return nil
	}
	return m.materials
}

// MaterialFor returns the material a submesh renders with, falling back to
// the default material for id -1.
func (m *Mesh) MaterialFor(sm *SubMesh) Material {
	if !m.alive("MaterialFor") {
		return Material{}
	}
	if sm.MaterialID < 0 || int(sm.MaterialID) >= len(m.materials) {
		return m.fallback
	}
	return m.materials[sm.MaterialID]
}

// Warnings returns the non-fatal diagnostics collected during import.
func (m *Mesh) Warnings() []string {
	if !m.alive("Warnings") {
		return nil
	}
	return m.warnings
}

// Bounds returns the bounding box of all uploaded vertices.
func (m *Mesh) Bounds() Bounds {
	if !m.alive("Bounds") {
		return Bounds{}
	}
	return m.bounds
}

// Stats returns vertex and index totals.
func (m *Mesh) Stats() Stats {
	if !m.alive("Stats") {
		return Stats{}
	}
	return m.stats()
}

func (m *Mesh) stats() Stats {
	s := Stats{SubMeshes: len(m.subMeshes), Materials: len(m.materials)}
	for i := range m.subMeshes {
		sm := &m.subMeshes[i]
		if sm.Empty() {
			s.EmptySubMeshes++
		}
		s.Vertices += int(sm.VertexCount)
		s.Indices += int(sm.IndexCount)
	}
	return s
}

// Destroyed reports whether Destroy has been called.
func (m *Mesh) Destroyed() bool {
	return m.destroyed
}

// Destroy releases every GPU object owned by the mesh. Calling it again is
// a no-op. Textures belong to the texture cache and are not released.
func (m *Mesh) Destroy() error {
	if m.destroyed {
		return nil
	}
	m.destroyed = true

	var err error
	for i := len(m.subMeshes) - 1; i >= 0; i-- {
		err = multierr.Append(err, m.subMeshes[i].release(m.device))
	}
	m.subMeshes = nil
	m.materials = nil
	m.warnings = nil

	if err != nil {
		logger.Error("failed to release mesh", zap.String("path", m.path), zap.Error(err))
	}
	return err
}

// release frees the submesh's GPU objects according to its ownership.
func (s *SubMesh) release(device gpu.Device) error {
	var err error
	switch s.Ownership {
	case OwnedByLayout:
		err = device.DeleteLayout(s.Layout)
	default:
		err = multierr.Append(device.DeleteBuffer(s.IndexBuffer), device.DeleteBuffer(s.VertexBuffer))
	}
	s.Layout, s.VertexBuffer, s.IndexBuffer = 0, 0, 0
	return err
}
