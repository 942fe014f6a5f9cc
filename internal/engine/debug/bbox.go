package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objviewer/internal/engine/model"
)

// BoxLineVertexCount is the number of line endpoints in a box wireframe (12 edges x 2).
const BoxLineVertexCount = 24

// BoxLines returns the 12 edges of b as line endpoint pairs, grown by
// padding on every side.
func BoxLines(b model.Bounds, padding float32) []mgl32.Vec3 {
	pad := mgl32.Vec3{padding, padding, padding}
	lo, hi := b.Min.Sub(pad), b.Max.Add(pad)

	corner := func(x, y, z bool) mgl32.Vec3 {
		c := lo
		if x {
			c[0] = hi[0]
		}
		if y {
			c[1] = hi[1]
		}
		if z {
			c[2] = hi[2]
		}
		return c
	}

	lines := make([]mgl32.Vec3, 0, BoxLineVertexCount)
	for _, y := range []bool{false, true} {
		// Bottom and top rings
		lines = append(lines,
			corner(false, y, false), corner(true, y, false),
			corner(true, y, false), corner(true, y, true),
			corner(true, y, true), corner(false, y, true),
			corner(false, y, true), corner(false, y, false),
		)
	}
	for _, xz := range [][2]bool{{false, false}, {true, false}, {true, true}, {false, true}} {
		lines = append(lines, corner(xz[0], false, xz[1]), corner(xz[0], true, xz[1]))
	}
	return lines
}
