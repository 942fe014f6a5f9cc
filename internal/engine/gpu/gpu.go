// Package gpu defines the GPU resource interfaces used by mesh import
// and provides an OpenGL backend and a headless in-memory backend.
package gpu

import (
	"errors"
	"fmt"
	"image"
)

// GPU resource errors.
var (
	ErrOutOfMemory   = errors.New("GPU out of memory")
	ErrInvalidHandle = errors.New("invalid GPU handle")
)

// BufferHandle identifies a vertex or index buffer. Zero is the null buffer.
type BufferHandle uint32

// LayoutHandle identifies a vertex-layout binding object (a VAO). Zero is null.
type LayoutHandle uint32

// TextureHandle identifies a 2D texture. Zero means "no texture".
type TextureHandle uint32

// BufferKind selects the buffer binding target.
type BufferKind int

const (
	BufferVertex BufferKind = iota // Vertex attribute data
	BufferIndex                    // uint32 element indices
)

// String returns a human-readable buffer kind.
func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	default:
		return fmt.Sprintf("BufferKind(%d)", int(k))
	}
}

// Vertex layout consumed by the shading stage. Changing any of these
// requires updating the vertex shader attribute declarations.
const (
	VertexStride   = 36
	PositionOffset = 0
	NormalOffset   = 12
	TexCoordOffset = 24
	ColorOffset    = 32
	IndexSize      = 4
)

// Vertex attribute locations.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTexCoord = 2
	AttribColor    = 3
)

// Device creates and releases mesh buffers and layout objects.
//
// CreateBuffer with empty data returns the null handle without allocating.
// BindLayout associates a vertex/index buffer pair with the fixed vertex
// layout; on success the layout owns both buffers and DeleteLayout releases
// them, so the caller must not delete them separately.
type Device interface {
	CreateBuffer(kind BufferKind, data []byte) (BufferHandle, error)
	DeleteBuffer(h BufferHandle) error
	BindLayout(vertices, indices BufferHandle) (LayoutHandle, error)
	DeleteLayout(h LayoutHandle) error
}

// TextureDevice uploads decoded images as textures.
type TextureDevice interface {
	CreateTexture(img *image.RGBA) (TextureHandle, error)
	DeleteTexture(h TextureHandle) error
}
