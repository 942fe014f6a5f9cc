package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name               string
		azimuth, elevation float32
		want               mgl32.Vec3
	}{
		{"overhead", 0, 90, mgl32.Vec3{0, -1, 0}},
		{"horizon front", 0, 0, mgl32.Vec3{0, 0, -1}},
		{"horizon right", 90, 0, mgl32.Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.azimuth, tt.elevation)
			if !got.ApproxEqualThreshold(tt.want, 1e-5) {
				t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.azimuth, tt.elevation, got, tt.want)
			}
			if l := got.Len(); l < 0.9999 || l > 1.0001 {
				t.Errorf("length = %v, want 1", l)
			}
		})
	}
}
