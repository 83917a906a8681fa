package engine

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Vec2 is a 2D vector used for positions, offsets, and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns X + Width.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns Y + Height.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() &&
		y >= r.Y && y <= r.Bottom()
}

// Overlaps is the standard AABB test. Rectangles that only touch along an
// edge do not overlap; a zero-area rectangle strictly inside another does.
func (r Rect) Overlaps(other Rect) bool {
	return !(r.Right() <= other.X || other.Right() <= r.X ||
		r.Bottom() <= other.Y || other.Bottom() <= r.Y)
}

// Intersection returns the overlapping region of r and other. ok is false
// when the rectangles do not overlap, in which case the zero Rect is returned.
func (r Rect) Intersection(other Rect) (Rect, bool) {
	if !r.Overlaps(other) {
		return Rect{}, false
	}
	x := math.Max(r.X, other.X)
	y := math.Max(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Min(r.Right(), other.Right()) - x,
		Height: math.Min(r.Bottom(), other.Bottom()) - y,
	}, true
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), other.Right()) - x,
		Height: math.Max(r.Bottom(), other.Bottom()) - y,
	}
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeRectangle                 // solid filled rectangle
	NodeTypeSprite                    // renders a texture from the texture manager
)

// String returns the type tag used in diagnostics.
func (t NodeType) String() string {
	switch t {
	case NodeTypeContainer:
		return "Container"
	case NodeTypeRectangle:
		return "Rectangle"
	case NodeTypeSprite:
		return "Sprite"
	default:
		return "Node"
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
