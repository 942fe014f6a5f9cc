// Package camera provides the orbit camera used to inspect models.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates around Target
	Distance float32
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// Projection
	FovY float32 // Radians
	Near float32
	Far  float32
}

// NewOrbitCamera creates an orbit camera looking at the origin.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		Pitch:           0.4,
		Yaw:             0.6,
		MinDistance:     0.01,
		MaxDistance:     1e5,
		MinPitch:        -1.55,
		MaxPitch:        1.55,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FovY:            mgl32.DegToRad(45),
		Near:            0.01,
		Far:             1000,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := gomath.Cos(float64(c.Pitch)), gomath.Sin(float64(c.Pitch))
	cy, sy := gomath.Cos(float64(c.Yaw)), gomath.Sin(float64(c.Yaw))
	offset := mgl32.Vec3{float32(cp * sy), float32(sp), float32(cp * cy)}
	return c.Target.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the world-to-view transform.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleDrag rotates the camera from a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom scales the distance from a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandlePan moves the target in the view plane. Speed scales with distance.
func (c *OrbitCamera) HandlePan(right, up float32) {
	view := c.ViewMatrix()
	// Rows of the rotation part are the camera axes in world space
	rightAxis := mgl32.Vec3{view[0], view[4], view[8]}
	upAxis := mgl32.Vec3{view[1], view[5], view[9]}

	speed := c.Distance * 0.002
	c.Target = c.Target.Add(rightAxis.Mul(-right * speed)).Add(upAxis.Mul(up * speed))
}

// FitSphere frames a bounding sphere so it fills the vertical field of view,
// and sizes the clip planes and zoom limits to it.
func (c *OrbitCamera) FitSphere(center mgl32.Vec3, radius float32) {
	if radius <= 0 {
		radius = 1
	}
	c.Target = center
	c.Distance = radius / float32(gomath.Sin(float64(c.FovY)/2))
	c.MinDistance = radius * 0.01
	c.MaxDistance = radius * 100
	c.Near = radius * 0.01
	c.Far = c.Distance + radius*100
}
