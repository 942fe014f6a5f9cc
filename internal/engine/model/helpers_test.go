package model

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/pkg/formats"
)

// parseOBJ parses src with an in-memory set of material libraries.
func parseOBJ(t *testing.T, src string, libs map[string]string) *formats.OBJ {
	t.Helper()
	obj, err := formats.ParseOBJ(strings.NewReader(src), func(name string) (io.ReadCloser, error) {
		data, ok := libs[name]
		if !ok {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(strings.NewReader(data)), nil
	})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return obj
}

// corners builds position-only face corners.
func corners(positions ...int32) []formats.OBJIndex {
	out := make([]formats.OBJIndex, len(positions))
	for i, p := range positions {
		out[i] = formats.OBJIndex{Vertex: p, Normal: formats.NoIndex, TexCoord: formats.NoIndex}
	}
	return out
}

// fakeTextures hands out a new handle per distinct path.
type fakeTextures struct {
	handles map[string]gpu.TextureHandle
	loads   []string
}

func (c *fakeTextures) Load(path string) gpu.TextureHandle {
	c.loads = append(c.loads, path)
	if c.handles == nil {
		c.handles = make(map[string]gpu.TextureHandle)
	}
	h, ok := c.handles[path]
	if !ok {
		h = gpu.TextureHandle(len(c.handles) + 10)
		c.handles[path] = h
	}
	return h
}

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
o quad
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const colorsMTL = `
newmtl red
Kd 1 0 0
Ns 10

newmtl blue
Kd 0 0 1
Ns 20
`

// mixedOBJ has one shape whose faces switch material red, blue, red.
const mixedOBJ = `
mtllib colors.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
o body
usemtl red
f 1 2 3
usemtl blue
f 1 3 4
usemtl red
f 1 2 4
`
