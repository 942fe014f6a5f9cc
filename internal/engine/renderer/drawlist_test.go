package renderer

import (
	"io"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/internal/engine/model"
	"github.com/Faultbox/objviewer/pkg/formats"
)

const whiteTex = gpu.TextureHandle(99)

type stubTextures map[string]gpu.TextureHandle

func (s stubTextures) Load(path string) gpu.TextureHandle { return s[path] }

func importString(t *testing.T, dev gpu.Device, src, mtl string, tex model.TextureCache) *model.Mesh {
	t.Helper()
	obj, err := formats.ParseOBJ(strings.NewReader(src), func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(mtl)), nil
	})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	m, err := model.ImportData(dev, obj, model.ImportOptions{Textures: tex})
	if err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}
	t.Cleanup(func() { m.Destroy() })
	return m
}

func TestBuildDrawList(t *testing.T) {
	const mtl = `
newmtl red
Kd 1 0 0
newmtl blue
Kd 0 0 1
map_Kd blue.png
`
	const src = `
mtllib m.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
o quad
usemtl red
f 1 2 3
usemtl blue
f 1 3 4
`
	dev := gpu.NewMemoryDevice()
	m := importString(t, dev, src, mtl, stubTextures{"blue.png": 7})

	calls := buildDrawList(m, whiteTex)
	if len(calls) != 2 {
		t.Fatalf("expected 2 draw calls, got %d", len(calls))
	}

	tests := []struct {
		diffuse mgl32.Vec3
		tex     gpu.TextureHandle
	}{
		{mgl32.Vec3{1, 0, 0}, whiteTex},
		{mgl32.Vec3{0, 0, 1}, 7},
	}
	for i, tt := range tests {
		c := calls[i]
		if c.indexCount != 3 {
			t.Errorf("call %d: index count = %d, want 3", i, c.indexCount)
		}
		if c.layout == 0 {
			t.Errorf("call %d: missing layout", i)
		}
		if c.material.Diffuse != tt.diffuse {
			t.Errorf("call %d: diffuse = %v, want %v", i, c.material.Diffuse, tt.diffuse)
		}
		if c.diffuseMap != tt.tex {
			t.Errorf("call %d: texture = %d, want %d", i, c.diffuseMap, tt.tex)
		}
	}
}

func TestBuildDrawList_DefaultMaterial(t *testing.T) {
	const src = `
v 0 0 0
v 1 0 0
v 1 1 0
f 1 2 3
`
	m := importString(t, gpu.NewMemoryDevice(), src, "", nil)

	calls := buildDrawList(m, whiteTex)
	if len(calls) != 1 {
		t.Fatalf("expected 1 draw call, got %d", len(calls))
	}
	if calls[0].material.Name != "default" {
		t.Errorf("expected default material, got %q", calls[0].material.Name)
	}
	if calls[0].diffuseMap != whiteTex {
		t.Errorf("expected white texture, got %d", calls[0].diffuseMap)
	}
}

func TestBuildDrawList_SkipsEmpty(t *testing.T) {
	m := importString(t, gpu.NewMemoryDevice(), "v 0 0 0\n", "", nil)

	if calls := buildDrawList(m, whiteTex); len(calls) != 0 {
		t.Errorf("expected no draw calls, got %d", len(calls))
	}
}

func TestBuildDrawList_Destroyed(t *testing.T) {
	const src = "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 3\n"
	m := importString(t, gpu.NewMemoryDevice(), src, "", nil)
	m.Destroy()

	if calls := buildDrawList(m, whiteTex); len(calls) != 0 {
		t.Errorf("expected no draw calls after destroy, got %d", len(calls))
	}
}
