package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/pkg/formats"
)

// white is the vertex color used when the file has no color extension.
var white = [4]uint8{255, 255, 255, 255}

// DecodeVertex assembles the vertex referenced by one face corner.
//
// The position index is required. A negative normal index leaves the normal
// zero (normals are never generated) and a negative texcoord index yields
// (0, 0). Texture V is flipped because OBJ puts the texture origin top-left.
// Colors come from the per-position color array only when attrs.HasColors.
// Out-of-range indices wrap ErrDataInconsistency.
func DecodeVertex(attrs *formats.OBJAttributes, idx formats.OBJIndex) (Vertex, error) {
	var v Vertex

	if idx.Vertex < 0 || int(idx.Vertex) >= attrs.PositionCount() {
		return v, fmt.Errorf("%w: position index %d out of range (%d positions)",
			ErrDataInconsistency, idx.Vertex, attrs.PositionCount())
	}
	p := 3 * int(idx.Vertex)
	v.Position = mgl32.Vec3{attrs.Positions[p], attrs.Positions[p+1], attrs.Positions[p+2]}

	if idx.Normal >= 0 {
		if int(idx.Normal) >= attrs.NormalCount() {
			return v, fmt.Errorf("%w: normal index %d out of range (%d normals)",
				ErrDataInconsistency, idx.Normal, attrs.NormalCount())
		}
		n := 3 * int(idx.Normal)
		v.Normal = mgl32.Vec3{attrs.Normals[n], attrs.Normals[n+1], attrs.Normals[n+2]}
	}

	if idx.TexCoord >= 0 {
		if int(idx.TexCoord) >= attrs.TexCoordCount() {
			return v, fmt.Errorf("%w: texcoord index %d out of range (%d texcoords)",
				ErrDataInconsistency, idx.TexCoord, attrs.TexCoordCount())
		}
		t := 2 * int(idx.TexCoord)
		v.TexCoord = mgl32.Vec2{attrs.TexCoords[t], 1 - attrs.TexCoords[t+1]}
	}

	v.Color = white
	if attrs.HasColors && p+2 < len(attrs.Colors) {
		v.Color = [4]uint8{
			colorByte(attrs.Colors[p]),
			colorByte(attrs.Colors[p+1]),
			colorByte(attrs.Colors[p+2]),
			255,
		}
	}
	return v, nil
}

// colorByte converts a normalized channel to 8 bits, truncating c*255.99.
func colorByte(c float32) uint8 {
	v := c * 255.99
	switch {
	case !(v > 0): // also catches NaN
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
