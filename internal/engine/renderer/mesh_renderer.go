package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/internal/engine/model"
	"github.com/Faultbox/objviewer/internal/engine/renderer/shaders"
	"github.com/Faultbox/objviewer/internal/engine/shader"
)

// View describes the camera for one frame.
type View struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Eye        mgl32.Vec3
}

// MeshRenderer draws a model.Mesh with per-submesh materials.
type MeshRenderer struct {
	program *shader.Program
	white   gpu.TextureHandle

	// LightDir is the direction the key light travels, in world space.
	LightDir mgl32.Vec3
}

// NewMeshRenderer compiles the mesh shader. white is sampled by
// materials without a diffuse map.
func NewMeshRenderer(white gpu.TextureHandle) (*MeshRenderer, error) {
	prog, err := shader.NewProgram(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	return &MeshRenderer{
		program:  prog,
		white:    white,
		LightDir: mgl32.Vec3{-0.4, -1, -0.6}.Normalize(),
	}, nil
}

// Draw renders every non-empty submesh of m with the given model transform.
func (r *MeshRenderer) Draw(m *model.Mesh, modelMat mgl32.Mat4, v View) {
	if m == nil || m.Destroyed() {
		return
	}
	calls := buildDrawList(m, r.white)
	if len(calls) == 0 {
		return
	}

	p := r.program
	p.Use()
	p.SetMat4("uModel", modelMat)
	p.SetMat4("uView", v.View)
	p.SetMat4("uProjection", v.Projection)
	p.SetMat3("uNormalMatrix", modelMat.Mat3().Inv().Transpose())
	p.SetVec3("uLightDir", r.LightDir)
	p.SetVec3("uCameraPos", v.Eye)
	p.SetInt("uDiffuseMap", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	for _, c := range calls {
		p.SetVec3("uAmbient", c.material.Ambient)
		p.SetVec3("uDiffuse", c.material.Diffuse)
		p.SetVec3("uSpecular", c.material.Specular)
		p.SetFloat("uShininess", c.material.Shininess)
		gl.BindTexture(gl.TEXTURE_2D, uint32(c.diffuseMap))

		gl.BindVertexArray(uint32(c.layout))
		gl.DrawElementsWithOffset(gl.TRIANGLES, c.indexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Close deletes the shader program.
func (r *MeshRenderer) Close() {
	r.program.Delete()
}
