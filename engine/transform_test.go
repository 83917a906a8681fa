package engine

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func assertRect(t *testing.T, got, want Rect, eps float64) {
	t.Helper()
	if !approxEqual(got.X, want.X, eps) || !approxEqual(got.Y, want.Y, eps) ||
		!approxEqual(got.Width, want.Width, eps) || !approxEqual(got.Height, want.Height, eps) {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
}

func TestWorldBoundsCenteredOrigin(t *testing.T) {
	n := NewRectangle("r", 50, 50, 40, 40, ColorWhite)
	assertRect(t, n.WorldBounds(), Rect{X: 30, Y: 30, Width: 40, Height: 40}, epsilon)
}

func TestWorldBoundsTopLeftOrigin(t *testing.T) {
	n := NewRectangle("r", 50, 50, 40, 20, ColorWhite)
	n.SetOrigin(0, 0)
	assertRect(t, n.WorldBounds(), Rect{X: 50, Y: 50, Width: 40, Height: 20}, epsilon)
}

func TestWorldBoundsScaled(t *testing.T) {
	n := NewRectangle("r", 100, 100, 10, 10, ColorWhite)
	n.SetScale(4, 2)
	assertRect(t, n.WorldBounds(), Rect{X: 80, Y: 90, Width: 40, Height: 20}, epsilon)
}

func TestWorldBoundsParentChain(t *testing.T) {
	panel := NewContainer("panel")
	panel.SetPosition(100, 200)
	child := NewRectangle("c", 10, 10, 20, 20, ColorWhite)
	panel.AddChild(child)

	assertRect(t, child.WorldBounds(), Rect{X: 100, Y: 200, Width: 20, Height: 20}, epsilon)

	// Bounds follow mutations without a frame in between.
	panel.X = 0
	assertRect(t, child.WorldBounds(), Rect{X: 0, Y: 200, Width: 20, Height: 20}, epsilon)
}

func TestWorldBoundsRotated(t *testing.T) {
	n := NewRectangle("r", 0, 0, 100, 100, ColorWhite)
	n.SetRotation(math.Pi / 4)
	b := n.WorldBounds()
	size := 100 * math.Sqrt(2)
	if !approxEqual(b.Width, size, 1e-6) || !approxEqual(b.Height, size, 1e-6) {
		t.Errorf("rotated size = (%f, %f), want ~(%f, %f)", b.Width, b.Height, size, size)
	}
	if !approxEqual(b.CenterX(), 0, 1e-6) || !approxEqual(b.CenterY(), 0, 1e-6) {
		t.Errorf("rotated center = (%f, %f), want (0, 0)", b.CenterX(), b.CenterY())
	}
}

func TestWorldBoundsZeroSize(t *testing.T) {
	n := NewContainer("c")
	n.SetPosition(5, 7)
	assertRect(t, n.WorldBounds(), Rect{X: 5, Y: 7}, epsilon)
}

func TestInvertAffineRoundTrip(t *testing.T) {
	n := NewRectangle("r", 30, 40, 10, 10, ColorWhite)
	n.SetRotation(0.3)
	n.SetScale(2, 3)
	updateWorldTransform(n, identityTransform, false)

	wx, wy := n.LocalToWorld(4, 5)
	lx, ly := n.WorldToLocal(wx, wy)
	if !approxEqual(lx, 4, 1e-9) || !approxEqual(ly, 5, 1e-9) {
		t.Errorf("round trip = (%f, %f), want (4, 5)", lx, ly)
	}
}

func TestInvertAffineSingular(t *testing.T) {
	if got := invertAffine([6]float64{0, 0, 0, 0, 1, 1}); got != identityTransform {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestWorldAABB_Translated(t *testing.T) {
	aabb := worldAABB([6]float64{1, 0, 0, 1, 100, 200}, 32, 32)
	assertRect(t, aabb, Rect{X: 100, Y: 200, Width: 32, Height: 32}, epsilon)
}
