package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/pkg/formats"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors.mtl", colorsMTL+"map_Kd brick.png\n")
	path := writeFile(t, dir, "mixed.obj", mixedOBJ)

	dev := gpu.NewMemoryDevice()
	cache := &fakeTextures{}

	m, err := Import(dev, path, ImportOptions{Textures: cache})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	defer m.Destroy()

	if m.Path() != path {
		t.Errorf("path = %q", m.Path())
	}
	if len(m.Materials()) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(m.Materials()))
	}
	if len(m.SubMeshes()) != 3 {
		t.Errorf("expected 3 contiguous submeshes, got %d", len(m.SubMeshes()))
	}
	if want := filepath.Join(dir, "brick.png"); len(cache.loads) != 1 || cache.loads[0] != want {
		t.Errorf("texture loads = %v, want [%s]", cache.loads, want)
	}
	if m.Materials()[1].DiffuseTexture == 0 {
		t.Error("blue material should have the brick texture")
	}

	b := m.Bounds()
	if b.Min != (mgl32.Vec3{0, 0, 0}) || b.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("bounds = %v..%v", b.Min, b.Max)
	}

	st := m.Stats()
	if st.Indices != 9 || st.Vertices != 9 || st.SubMeshes != 3 {
		t.Errorf("unexpected stats %+v", st)
	}
	if len(m.Warnings()) == 0 {
		t.Error("expected missing-normal warnings")
	}
}

func TestImportMissingFile(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	_, err := Import(dev, filepath.Join(t.TempDir(), "nope.obj"), ImportOptions{})

	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *ImportError, got %T %v", err, err)
	}
	if !errors.Is(err, ErrParse) || !errors.Is(err, formats.ErrOBJNotFound) {
		t.Errorf("expected ErrParse wrapping ErrOBJNotFound, got %v", err)
	}
}

func TestImportMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.obj", "v 0 0 0\nv 1 0\n")

	_, err := Import(gpu.NewMemoryDevice(), path, ImportOptions{})
	if !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestImportBadMaterialLibrary(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{
			name: "statement before newmtl",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "colors.mtl", "Kd 1 0 0\nnewmtl red\n")
			},
		},
		{
			name: "library is a directory",
			setup: func(t *testing.T, dir string) {
				if err := os.Mkdir(filepath.Join(dir, "colors.mtl"), 0755); err != nil {
					t.Fatal(err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)
			path := writeFile(t, dir, "mixed.obj", mixedOBJ)

			dev := gpu.NewMemoryDevice()
			m, err := Import(dev, path, ImportOptions{})
			if m != nil {
				t.Fatal("expected no mesh")
			}
			if !errors.Is(err, ErrParse) || !errors.Is(err, formats.ErrMaterialLibrary) {
				t.Errorf("expected ErrParse wrapping ErrMaterialLibrary, got %v", err)
			}
			if dev.LiveBuffers() != 0 || dev.LiveLayouts() != 0 {
				t.Errorf("leaked %d buffers %d layouts", dev.LiveBuffers(), dev.LiveLayouts())
			}
		})
	}
}

func TestImportMissingMaterialLibrary(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mixed.obj", mixedOBJ)

	m, err := Import(gpu.NewMemoryDevice(), path, ImportOptions{})
	if err != nil {
		t.Fatalf("a missing material library must not fail the import: %v", err)
	}
	defer m.Destroy()

	if len(m.Materials()) != 0 {
		t.Errorf("expected no materials, got %d", len(m.Materials()))
	}
	if len(m.Warnings()) == 0 {
		t.Error("expected a warning for the missing library")
	}
}

func TestImportNoLeakOnExhaustion(t *testing.T) {
	// Each triangle needs 3*36 + 3*4 = 120 bytes; the second does not fit
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
o first
f 1 2 3
o second
f 1 2 4
`
	obj := parseOBJ(t, src, nil)
	dev := gpu.NewMemoryDevice()
	dev.BudgetBytes = 150

	m, err := ImportData(dev, obj, ImportOptions{})
	if m != nil {
		t.Fatal("expected no mesh on failure")
	}
	if !errors.Is(err, ErrResourceExhausted) || !errors.Is(err, gpu.ErrOutOfMemory) {
		t.Fatalf("expected ErrResourceExhausted wrapping ErrOutOfMemory, got %v", err)
	}
	if dev.LayoutsCreated != 1 {
		t.Errorf("expected the first shape to be uploaded, got %d layouts", dev.LayoutsCreated)
	}
	if dev.LiveBuffers() != 0 || dev.LiveLayouts() != 0 || dev.BytesInUse() != 0 {
		t.Errorf("leaked %d buffers, %d layouts, %d bytes", dev.LiveBuffers(), dev.LiveLayouts(), dev.BytesInUse())
	}
}

func TestImportNoLeakOnBadIndex(t *testing.T) {
	obj := &formats.OBJ{
		Attributes: formats.OBJAttributes{Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}},
		Shapes: []formats.OBJShape{
			{Name: "ok", Indices: corners(0, 1, 2)},
			{Name: "bad", Indices: corners(0, 1, 99)},
		},
		Warnings: []string{"parser warning"},
	}
	dev := gpu.NewMemoryDevice()

	_, err := ImportData(dev, obj, ImportOptions{})

	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *ImportError, got %v", err)
	}
	if ie.Kind != ErrDataInconsistency {
		t.Errorf("kind = %v, want ErrDataInconsistency", ie.Kind)
	}
	if len(ie.Warnings) == 0 || ie.Warnings[0] != "parser warning" {
		t.Errorf("expected parser warnings to be kept, got %v", ie.Warnings)
	}
	if dev.LiveBuffers() != 0 || dev.LiveLayouts() != 0 {
		t.Errorf("leaked %d buffers, %d layouts", dev.LiveBuffers(), dev.LiveLayouts())
	}
}

func TestMaterialForFallback(t *testing.T) {
	obj := parseOBJ(t, mixedOBJ+"usemtl missing\nf 2 3 4\n", map[string]string{"colors.mtl": colorsMTL})
	dev := gpu.NewMemoryDevice()

	m, err := ImportData(dev, obj, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}
	defer m.Destroy()

	subs := m.SubMeshes()
	last := subs[len(subs)-1]
	if last.MaterialID != -1 {
		t.Fatalf("expected unresolved material -1, got %d", last.MaterialID)
	}
	if got := m.MaterialFor(&last); got != DefaultMaterial() {
		t.Errorf("expected default material, got %+v", got)
	}
	if got := m.MaterialFor(&subs[0]); got.Name != "red" || got.Shininess != 10 {
		t.Errorf("expected red material, got %+v", got)
	}

	custom := Material{Name: "custom", Diffuse: mgl32.Vec3{0.5, 0.5, 0.5}, Shininess: 8}
	m2, err := ImportData(dev, obj, ImportOptions{DefaultMaterial: &custom})
	if err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}
	defer m2.Destroy()
	subs2 := m2.SubMeshes()
	if got := m2.MaterialFor(&subs2[len(subs2)-1]); got != custom {
		t.Errorf("expected injected default, got %+v", got)
	}
}

func TestImportWithoutMaterials(t *testing.T) {
	obj := parseOBJ(t, quadOBJ, nil)
	m, err := ImportData(gpu.NewMemoryDevice(), obj, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}
	defer m.Destroy()

	if len(m.Materials()) != 0 {
		t.Errorf("expected empty material table, got %d", len(m.Materials()))
	}
	for _, sm := range m.SubMeshes() {
		if sm.MaterialID != -1 {
			t.Errorf("submesh %q has material %d without a table", sm.Name, sm.MaterialID)
		}
	}
}

func TestDestroyIdempotent(t *testing.T) {
	obj := parseOBJ(t, mixedOBJ, map[string]string{"colors.mtl": colorsMTL})
	dev := gpu.NewMemoryDevice()

	m, err := ImportData(dev, obj, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}
	if dev.LiveLayouts() != 3 {
		t.Fatalf("expected 3 live layouts, got %d", dev.LiveLayouts())
	}

	// The memory device reports a double free as ErrInvalidHandle
	if err := m.Destroy(); err != nil {
		t.Fatalf("first Destroy failed: %v", err)
	}
	if err := m.Destroy(); err != nil {
		t.Fatalf("second Destroy failed: %v", err)
	}
	if !m.Destroyed() {
		t.Error("expected mesh to report destroyed")
	}
	if dev.LiveBuffers() != 0 || dev.LiveLayouts() != 0 || dev.BytesInUse() != 0 {
		t.Errorf("leaked %d buffers, %d layouts", dev.LiveBuffers(), dev.LiveLayouts())
	}
}

func TestDestroyEmptyMesh(t *testing.T) {
	obj := &formats.OBJ{Shapes: []formats.OBJShape{{Name: "empty"}}}
	dev := gpu.NewMemoryDevice()

	m, err := ImportData(dev, obj, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}
	subs := m.SubMeshes()
	if len(subs) != 1 || !subs[0].Empty() {
		t.Fatalf("expected one empty submesh, got %+v", subs)
	}
	if b := m.Bounds(); b != (Bounds{}) {
		t.Errorf("expected zero bounds, got %+v", b)
	}
	if err := m.Destroy(); err != nil {
		t.Errorf("Destroy failed: %v", err)
	}
}

func TestDestroyUnboundBuffers(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	vb, _ := dev.CreateBuffer(gpu.BufferVertex, make([]byte, gpu.VertexStride))
	ib, _ := dev.CreateBuffer(gpu.BufferIndex, make([]byte, gpu.IndexSize))

	m := &Mesh{
		device:    dev,
		subMeshes: []SubMesh{{VertexBuffer: vb, IndexBuffer: ib, VertexCount: 1, IndexCount: 1}},
	}
	if err := m.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if dev.LiveBuffers() != 0 {
		t.Errorf("expected submesh-owned buffers to be released, %d left", dev.LiveBuffers())
	}
}

func TestUseAfterDestroy(t *testing.T) {
	obj := parseOBJ(t, quadOBJ, nil)

	t.Run("lenient", func(t *testing.T) {
		m, err := ImportData(gpu.NewMemoryDevice(), obj, ImportOptions{})
		if err != nil {
			t.Fatalf("ImportData failed: %v", err)
		}
		m.Destroy()

		if m.SubMeshes() != nil || m.Materials() != nil {
			t.Error("expected nil slices from a destroyed mesh")
		}
		if got := m.MaterialFor(&SubMesh{MaterialID: -1}); got != (Material{}) {
			t.Errorf("expected zero material, got %+v", got)
		}
	})

	t.Run("strict", func(t *testing.T) {
		m, err := ImportData(gpu.NewMemoryDevice(), obj, ImportOptions{StrictLifecycle: true})
		if err != nil {
			t.Fatalf("ImportData failed: %v", err)
		}
		m.Destroy()

		defer func() {
			if recover() == nil {
				t.Error("expected panic on use after Destroy")
			}
		}()
		m.SubMeshes()
	})
}

func TestImportErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&ImportError{Path: "a.obj", Kind: ErrResourceExhausted, Err: cause})

	if !errors.Is(err, ErrResourceExhausted) || !errors.Is(err, cause) {
		t.Error("ImportError should unwrap to both kind and cause")
	}
	if errors.Is(err, ErrParse) {
		t.Error("ImportError should not match other kinds")
	}
}
