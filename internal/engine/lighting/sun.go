// Package lighting computes the viewer's directional key light.
package lighting

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts azimuth and elevation angles in degrees into the
// unit vector the light travels along. Azimuth rotates around +Y starting
// at +Z; elevation is measured up from the horizon.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	az := float64(mgl32.DegToRad(azimuth))
	el := float64(mgl32.DegToRad(elevation))

	// Point from the scene towards the sun, then flip
	toSun := mgl32.Vec3{
		float32(gomath.Cos(el) * gomath.Sin(az)),
		float32(gomath.Sin(el)),
		float32(gomath.Cos(el) * gomath.Cos(az)),
	}
	return toSun.Mul(-1)
}
