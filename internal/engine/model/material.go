package model

import (
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/pkg/formats"
)

// TextureCache resolves texture paths to handles. Implementations return
// the same handle for the same path and a placeholder handle when a file
// cannot be loaded, never an error.
type TextureCache interface {
	Load(path string) gpu.TextureHandle
}

// BuildMaterials converts parsed MTL materials into runtime materials.
// Colors and shininess are copied verbatim. Texture names are joined with dir
// and resolved through textures; an empty name or a nil cache yields handle 0.
func BuildMaterials(src []formats.MTLMaterial, dir string, textures TextureCache) []Material {
	if len(src) == 0 {
		return nil
	}

	resolve := func(name string) gpu.TextureHandle {
		if name == "" || textures == nil {
			return 0
		}
		return textures.Load(filepath.Join(dir, name))
	}

	materials := make([]Material, len(src))
	for i := range src {
		m := &src[i]
		materials[i] = Material{
			Name:            m.Name,
			Ambient:         mgl32.Vec3(m.Ambient),
			Diffuse:         mgl32.Vec3(m.Diffuse),
			Specular:        mgl32.Vec3(m.Specular),
			Shininess:       m.Shininess,
			AmbientTexture:  resolve(m.AmbientTexname),
			DiffuseTexture:  resolve(m.DiffuseTexname),
			SpecularTexture: resolve(m.SpecularTexname),
		}
	}
	return materials
}
