package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/controller"
)

var limits = Limits{MinRadius: 3, MaxRadius: 30, MinPitch: 0.1, MaxPitch: 1.4}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 0, 0.5, 10, 45, limits)

	if cam.Focus != (r3.Vec{}) {
		t.Errorf("expected focus at origin, got %v", cam.Focus)
	}
	if cam.Radius != 10 || cam.Pitch != 0.5 || cam.Yaw != 0 {
		t.Errorf("unexpected orbit %+v", cam)
	}
	if !near(cam.Aspect(), 1280.0/720) {
		t.Errorf("aspect = %f", cam.Aspect())
	}
}

func TestNewClampsToLimits(t *testing.T) {
	cam := New(1280, 720, 0, 2, 100, 45, limits)
	if cam.Pitch != limits.MaxPitch || cam.Radius != limits.MaxRadius {
		t.Errorf("expected clamped pitch and radius, got %f, %f", cam.Pitch, cam.Radius)
	}
}

func TestPositionAtZeroYaw(t *testing.T) {
	cam := New(1280, 720, 0, 0.1, 10, 45, limits)
	cam.Follow(r3.Vec{X: 2, Y: 1, Z: -3})

	pos := cam.Position()
	if !near(pos.X, 2) || pos.Z <= -3 || pos.Y <= 1 {
		t.Errorf("camera at %v should sit behind (+Z) and above the focus", pos)
	}
	if d := r3.Norm(r3.Sub(pos, cam.Focus)); !near(d, 10) {
		t.Errorf("distance = %f, want 10", d)
	}
}

func TestForwardMatchesMovementBasis(t *testing.T) {
	for _, yaw := range []float64{0, 0.7, -1.9, 3} {
		cam := New(1280, 720, yaw, 0.6, 10, 45, limits)
		fwd := cam.Forward()
		planar := math.Hypot(fwd.X, fwd.Z)

		want, _ := controller.Basis(cam.Yaw)
		if !near(fwd.X/planar, want.X) || !near(fwd.Z/planar, want.Y) {
			t.Errorf("yaw %.2f: view %v does not match move forward %v", yaw, fwd, want)
		}
	}
}

func TestOrbitWrapsYawAndClampsPitch(t *testing.T) {
	cam := New(1280, 720, 3, 0.5, 10, 45, limits)

	cam.Orbit(1, 0)
	if cam.Yaw > math.Pi || cam.Yaw <= -math.Pi {
		t.Errorf("yaw %f not wrapped", cam.Yaw)
	}
	if !near(cam.Yaw, 4-2*math.Pi) {
		t.Errorf("yaw = %f, want %f", cam.Yaw, 4-2*math.Pi)
	}

	cam.Orbit(0, 10)
	if cam.Pitch != limits.MaxPitch {
		t.Errorf("pitch = %f, want max", cam.Pitch)
	}
	cam.Orbit(0, -10)
	if cam.Pitch != limits.MinPitch {
		t.Errorf("pitch = %f, want min", cam.Pitch)
	}
}

func TestZoomBy(t *testing.T) {
	cam := New(1280, 720, 0, 0.5, 10, 45, limits)

	cam.ZoomBy(2)
	if !near(cam.Radius, 5) {
		t.Errorf("radius = %f, want 5", cam.Radius)
	}
	cam.ZoomBy(100)
	if cam.Radius != limits.MinRadius {
		t.Errorf("radius = %f, want min", cam.Radius)
	}
	cam.ZoomBy(0)
	if cam.Radius != limits.MinRadius {
		t.Error("non-positive factor should be ignored")
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 0.2, 0.5, 10, 45, limits)
	cam.Orbit(1, 0.3)
	cam.ZoomBy(2)
	cam.Follow(r3.Vec{X: 5})
	cam.Reset()

	if !near(cam.Yaw, 0.2) || !near(cam.Pitch, 0.5) || !near(cam.Radius, 10) {
		t.Errorf("reset failed: %+v", cam)
	}
	if cam.Focus.X != 5 {
		t.Error("reset should not move the focus")
	}
}

func TestResize(t *testing.T) {
	cam := New(1280, 720, 0, 0.5, 10, 45, limits)
	cam.Resize(800, 800)
	if cam.Aspect() != 1 {
		t.Errorf("aspect = %f, want 1", cam.Aspect())
	}
	cam.Resize(800, 0)
	if cam.Aspect() != 1 {
		t.Error("zero height should fall back to 1")
	}
}
