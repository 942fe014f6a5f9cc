package gpu

import (
	"fmt"
	"image"
)

// MemoryDevice is a headless Device and TextureDevice that keeps resources
// in host memory. It backs the command-line inspector and the tests, and
// reports double releases as ErrInvalidHandle.
//
// BudgetBytes, when positive, caps the total live allocation; exceeding it
// fails with ErrOutOfMemory the way a real driver would.
// MemoryDevice is not safe for concurrent use.
type MemoryDevice struct {
	BudgetBytes int64

	next     uint32
	used     int64
	buffers  map[BufferHandle]*memBuffer
	layouts  map[LayoutHandle][2]BufferHandle
	textures map[TextureHandle]int64

	// Counters survive releases and are useful for assertions.
	BuffersCreated  int
	LayoutsCreated  int
	TexturesCreated int
}

type memBuffer struct {
	kind  BufferKind
	data  []byte
	bound bool // Ownership transferred to a layout
}

// NewMemoryDevice creates an empty headless device.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{
		buffers:  make(map[BufferHandle]*memBuffer),
		layouts:  make(map[LayoutHandle][2]BufferHandle),
		textures: make(map[TextureHandle]int64),
	}
}

func (d *MemoryDevice) alloc(size int64) error {
	if d.BudgetBytes > 0 && d.used+size > d.BudgetBytes {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, d.used, d.BudgetBytes)
	}
	d.used += size
	d.next++
	return nil
}

// CreateBuffer copies data into a new buffer.
func (d *MemoryDevice) CreateBuffer(kind BufferKind, data []byte) (BufferHandle, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if err := d.alloc(int64(len(data))); err != nil {
		return 0, err
	}
	h := BufferHandle(d.next)
	d.buffers[h] = &memBuffer{kind: kind, data: append([]byte(nil), data...)}
	d.BuffersCreated++
	return h, nil
}

// DeleteBuffer releases an unbound buffer.
func (d *MemoryDevice) DeleteBuffer(h BufferHandle) error {
	if h == 0 {
		return nil
	}
	buf, ok := d.buffers[h]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, h)
	}
	if buf.bound {
		return fmt.Errorf("%w: buffer %d is owned by a layout", ErrInvalidHandle, h)
	}
	d.used -= int64(len(buf.data))
	delete(d.buffers, h)
	return nil
}

// BindLayout transfers ownership of both buffers to a new layout.
func (d *MemoryDevice) BindLayout(vertices, indices BufferHandle) (LayoutHandle, error) {
	vb, ok := d.buffers[vertices]
	if !ok || vb.bound || vb.kind != BufferVertex {
		return 0, fmt.Errorf("%w: vertex buffer %d", ErrInvalidHandle, vertices)
	}
	ib, ok := d.buffers[indices]
	if !ok || ib.bound || ib.kind != BufferIndex {
		return 0, fmt.Errorf("%w: index buffer %d", ErrInvalidHandle, indices)
	}
	if err := d.alloc(0); err != nil {
		return 0, err
	}
	h := LayoutHandle(d.next)
	vb.bound, ib.bound = true, true
	d.layouts[h] = [2]BufferHandle{vertices, indices}
	d.LayoutsCreated++
	return h, nil
}

// DeleteLayout releases a layout and the buffers it owns.
func (d *MemoryDevice) DeleteLayout(h LayoutHandle) error {
	if h == 0 {
		return nil
	}
	pair, ok := d.layouts[h]
	if !ok {
		return fmt.Errorf("%w: layout %d", ErrInvalidHandle, h)
	}
	for _, bh := range pair {
		if buf, ok := d.buffers[bh]; ok {
			d.used -= int64(len(buf.data))
			delete(d.buffers, bh)
		}
	}
	delete(d.layouts, h)
	return nil
}

// CreateTexture records a texture of the image's size.
func (d *MemoryDevice) CreateTexture(img *image.RGBA) (TextureHandle, error) {
	size := int64(len(img.Pix))
	if size == 0 {
		return 0, fmt.Errorf("empty texture %v", img.Bounds())
	}
	if err := d.alloc(size); err != nil {
		return 0, err
	}
	h := TextureHandle(d.next)
	d.textures[h] = size
	d.TexturesCreated++
	return h, nil
}

// DeleteTexture releases a texture.
func (d *MemoryDevice) DeleteTexture(h TextureHandle) error {
	if h == 0 {
		return nil
	}
	size, ok := d.textures[h]
	if !ok {
		return fmt.Errorf("%w: texture %d", ErrInvalidHandle, h)
	}
	d.used -= size
	delete(d.textures, h)
	return nil
}

// BufferData returns the contents of a live buffer.
func (d *MemoryDevice) BufferData(h BufferHandle) ([]byte, bool) {
	buf, ok := d.buffers[h]
	if !ok {
		return nil, false
	}
	return buf.data, true
}

// LayoutBuffers returns the vertex and index buffers owned by a layout.
func (d *MemoryDevice) LayoutBuffers(h LayoutHandle) (vertices, indices BufferHandle, ok bool) {
	pair, ok := d.layouts[h]
	return pair[0], pair[1], ok
}

// LiveBuffers returns the number of unreleased buffers.
func (d *MemoryDevice) LiveBuffers() int { return len(d.buffers) }

// LiveLayouts returns the number of unreleased layouts.
func (d *MemoryDevice) LiveLayouts() int { return len(d.layouts) }

// LiveTextures returns the number of unreleased textures.
func (d *MemoryDevice) LiveTextures() int { return len(d.textures) }

// BytesInUse returns the total size of live resources.
func (d *MemoryDevice) BytesInUse() int64 { return d.used }
