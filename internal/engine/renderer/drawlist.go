package renderer

import (
	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/internal/engine/model"
)

// drawCall is everything needed to issue one indexed draw.
type drawCall struct {
	layout     gpu.LayoutHandle
	indexCount int32
	material   model.Material
	diffuseMap gpu.TextureHandle
}

// buildDrawList flattens a mesh into draw calls in submesh order. Empty
// submeshes are skipped and materials without a diffuse map sample white.
func buildDrawList(m *model.Mesh, white gpu.TextureHandle) []drawCall {
	subs := m.SubMeshes()
	calls := make([]drawCall, 0, len(subs))
	for i := range subs {
		sm := &subs[i]
		if sm.Empty() || sm.Layout == 0 {
			continue
		}
		mat := m.MaterialFor(sm)
		tex := mat.DiffuseTexture
		if tex == 0 {
			tex = white
		}
		calls = append(calls, drawCall{
			layout:     sm.Layout,
			indexCount: int32(sm.IndexCount),
			material:   mat,
			diffuseMap: tex,
		})
	}
	return calls
}
