package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/logger"
)

// GLDevice implements Device and TextureDevice on OpenGL 4.1 core.
// All methods must be called on the thread owning the GL context.
type GLDevice struct{}

// NewGLDevice initializes the OpenGL function pointers for the current context.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	return &GLDevice{}, nil
}

// clearGLErrors drains stale error flags so the next check only sees one call.
func clearGLErrors() {
	for i := 0; i < 8 && gl.GetError() != gl.NO_ERROR; i++ {
	}
}

func bufferTarget(kind BufferKind) uint32 {
	if kind == BufferIndex {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

// CreateBuffer uploads data into a new static buffer object.
func (d *GLDevice) CreateBuffer(kind BufferKind, data []byte) (BufferHandle, error) {
	if len(data) == 0 {
		return 0, nil
	}

	clearGLErrors()

	var id uint32
	gl.GenBuffers(1, &id)
	target := bufferTarget(kind)
	gl.BindBuffer(target, id)
	gl.BufferData(target, len(data), unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	gl.BindBuffer(target, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &id)
		if code == gl.OUT_OF_MEMORY {
			return 0, fmt.Errorf("%w: %s buffer of %d bytes", ErrOutOfMemory, kind, len(data))
		}
		return 0, fmt.Errorf("glBufferData failed: 0x%x", code)
	}
	return BufferHandle(id), nil
}

// DeleteBuffer releases a buffer that is not bound to a layout.
func (d *GLDevice) DeleteBuffer(h BufferHandle) error {
	if h == 0 {
		return nil
	}
	id := uint32(h)
	gl.DeleteBuffers(1, &id)
	return nil
}

// BindLayout creates a VAO describing the fixed vertex layout over the buffer pair.
// The buffer names are deleted right away: the VAO keeps their storage alive
// until it is itself deleted.
func (d *GLDevice) BindLayout(vertices, indices BufferHandle) (LayoutHandle, error) {
	if vertices == 0 || indices == 0 {
		return 0, fmt.Errorf("%w: cannot bind null buffer", ErrInvalidHandle)
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(indices))
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vertices))

	// Position
	gl.VertexAttribPointerWithOffset(AttribPosition, 3, gl.FLOAT, false, VertexStride, PositionOffset)
	gl.EnableVertexAttribArray(AttribPosition)
	// Normal
	gl.VertexAttribPointerWithOffset(AttribNormal, 3, gl.FLOAT, false, VertexStride, NormalOffset)
	gl.EnableVertexAttribArray(AttribNormal)
	// TexCoord
	gl.VertexAttribPointerWithOffset(AttribTexCoord, 2, gl.FLOAT, false, VertexStride, TexCoordOffset)
	gl.EnableVertexAttribArray(AttribTexCoord)
	// Color (RGBA8, normalized)
	gl.VertexAttribPointerWithOffset(AttribColor, 4, gl.UNSIGNED_BYTE, true, VertexStride, ColorOffset)
	gl.EnableVertexAttribArray(AttribColor)

	// Always unbind the VAO before touching buffer objects
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	vbo, ibo := uint32(vertices), uint32(indices)
	gl.DeleteBuffers(1, &vbo)
	gl.DeleteBuffers(1, &ibo)

	return LayoutHandle(vao), nil
}

// DeleteLayout deletes the VAO and with it the buffers it owns.
func (d *GLDevice) DeleteLayout(h LayoutHandle) error {
	if h == 0 {
		return nil
	}
	id := uint32(h)
	gl.DeleteVertexArrays(1, &id)
	return nil
}

// CreateTexture uploads an RGBA image with mipmaps and repeat wrapping.
func (d *GLDevice) CreateTexture(img *image.RGBA) (TextureHandle, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("empty texture %dx%d", w, h)
	}

	clearGLErrors()

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &texID)
		if code == gl.OUT_OF_MEMORY {
			return 0, fmt.Errorf("%w: texture %dx%d", ErrOutOfMemory, w, h)
		}
		return 0, fmt.Errorf("glTexImage2D failed: 0x%x", code)
	}
	return TextureHandle(texID), nil
}

// DeleteTexture releases a texture.
func (d *GLDevice) DeleteTexture(h TextureHandle) error {
	if h == 0 {
		return nil
	}
	id := uint32(h)
	gl.DeleteTextures(1, &id)
	return nil
}
