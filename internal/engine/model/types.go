// Package model imports OBJ meshes into GPU-ready submeshes and materials.
//
// Import decodes each face corner into a fixed-layout Vertex, deduplicates
// vertices within a submesh, partitions shapes by material and uploads the
// result through a gpu.Device. The resulting Mesh owns every buffer and
// layout it created and releases them exactly once in Destroy.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
)

// Vertex is the GPU vertex record. Its memory layout (36 bytes, offsets
// 0/12/24/32) matches gpu.VertexStride and the shader attribute locations.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
	Color    [4]uint8 // RGBA8
}

// SameAs reports whether two vertices are duplicates for deduplication.
// Color is not part of the key.
func (v Vertex) SameAs(o Vertex) bool {
	return v.Position == o.Position && v.Normal == o.Normal && v.TexCoord == o.TexCoord
}

// Ownership records who releases a submesh's vertex and index buffers.
type Ownership uint8

const (
	// OwnedBySubMesh means the buffers are released individually.
	OwnedBySubMesh Ownership = iota
	// OwnedByLayout means the layout was bound and releasing it frees the buffers.
	OwnedByLayout
)

// String returns a human-readable ownership name.
func (o Ownership) String() string {
	if o == OwnedByLayout {
		return "layout"
	}
	return "submesh"
}

// SubMesh is one drawable unit: a buffer pair rendered with one material.
// Once Ownership is OwnedByLayout the buffer handles are zero and the pair
// is reachable only through Layout.
type SubMesh struct {
	Name         string // Source shape name
	VertexBuffer gpu.BufferHandle
	IndexBuffer  gpu.BufferHandle
	Layout       gpu.LayoutHandle
	Ownership    Ownership
	VertexCount  uint32
	IndexCount   uint32
	MaterialID   int32 // Index into Mesh.Materials, -1 for the default material
}

// Empty reports whether the submesh has nothing to draw.
func (s *SubMesh) Empty() bool {
	return s.IndexCount == 0
}

// Material is the runtime shading description of a submesh.
// Texture handles are owned by the texture cache, not by the mesh.
type Material struct {
	Name            string
	Ambient         mgl32.Vec3
	Diffuse         mgl32.Vec3
	Specular        mgl32.Vec3
	Shininess       float32
	AmbientTexture  gpu.TextureHandle // 0 = none
	DiffuseTexture  gpu.TextureHandle
	SpecularTexture gpu.TextureHandle
}

// DefaultMaterial returns the material used by submeshes without one:
// black ambient, white diffuse, no specular, shininess 256.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		Ambient:   mgl32.Vec3{0, 0, 0},
		Diffuse:   mgl32.Vec3{1, 1, 1},
		Specular:  mgl32.Vec3{0, 0, 0},
		Shininess: 256,
	}
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// emptyBounds returns an inverted box that any point extends.
func emptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{1e30, 1e30, 1e30},
		Max: mgl32.Vec3{-1e30, -1e30, -1e30},
	}
}

// IsEmpty reports whether the box contains no point.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the center of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns half the diagonal, the radius of the enclosing sphere.
func (b Bounds) Radius() float32 {
	return b.Size().Len() / 2
}

func (b *Bounds) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// noCopy flags accidental copies of a Mesh with go vet's copylocks check.
// Buffer handles are not reference counted, so a copy would double free.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
