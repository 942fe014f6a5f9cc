package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/renderer/shaders"
	"github.com/Faultbox/objviewer/internal/engine/shader"
)

// LineRenderer draws overlay line lists such as bounding boxes.
type LineRenderer struct {
	program  *shader.Program
	vao      uint32
	vbo      uint32
	capacity int // Vertices the VBO can hold
}

// NewLineRenderer compiles the line shader and creates its buffers.
func NewLineRenderer() (*LineRenderer, error) {
	prog, err := shader.NewProgram(shaders.LineVertexShader, shaders.LineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("line shader: %w", err)
	}

	r := &LineRenderer{program: prog}
	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return r, nil
}

// Draw renders endpoint pairs as lines in a single color.
func (r *LineRenderer) Draw(lines []mgl32.Vec3, color mgl32.Vec4, v View) {
	if len(lines) < 2 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	size := len(lines) * 3 * 4
	if len(lines) > r.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, unsafe.Pointer(&lines[0]), gl.DYNAMIC_DRAW)
		r.capacity = len(lines)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, unsafe.Pointer(&lines[0]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.program.Use()
	r.program.SetMat4("uViewProj", v.Projection.Mul4(v.View))
	r.program.SetVec4("uColor", color)

	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.LINES, 0, int32(len(lines)))
	gl.BindVertexArray(0)
}

// Close deletes the GL objects.
func (r *LineRenderer) Close() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	r.program.Delete()
}
