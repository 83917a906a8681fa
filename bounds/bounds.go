// Package bounds turns anything with a world-space bounding box into a plain
// rectangle. It is the single conversion point used by the layout
// assertions: everything downstream works on Rect values only.
package bounds

import (
	"errors"
	"fmt"

	"github.com/phanxgames/willowtest/engine"
)

// Rect is an axis-aligned rectangle in world space.
type Rect = engine.Rect

// ErrUnresolvableBounds is returned when a value carries no bounds source.
// It signals a caller-side type error, never a layout defect.
var ErrUnresolvableBounds = errors.New("bounds: value has no resolvable bounds")

// Boundable is implemented by live scene objects that compute their world
// AABB on demand. *engine.Node implements it.
type Boundable interface {
	WorldBounds() Rect
}

// Named is implemented by values that carry a diagnostic name.
type Named interface {
	Label() string
}

type sourceKind uint8

const (
	kindNone sourceKind = iota
	kindObject
	kindRect
)

// Source is either a live object or a bare rectangle. The zero value holds
// neither and does not resolve.
type Source struct {
	kind sourceKind
	obj  Boundable
	rect Rect
}

// Of wraps a live object. A nil object yields the zero Source.
func Of(b Boundable) Source {
	if b == nil {
		return Source{}
	}
	return Source{kind: kindObject, obj: b}
}

// FromRect wraps a plain rectangle, for example a panel with no visual
// presence in the scene.
func FromRect(r Rect) Source {
	return Source{kind: kindRect, rect: r}
}

// IsRect reports whether s holds a bare rectangle.
func (s Source) IsRect() bool { return s.kind == kindRect }

// Object returns the live object held by s, or nil.
func (s Source) Object() Boundable { return s.obj }

// Resolve returns the rectangle of s. A rectangle source is returned as
// stored; an object source computes its bounds now, so the result reflects
// the object's current transform.
func Resolve(s Source) (Rect, error) {
	switch s.kind {
	case kindRect:
		return s.rect, nil
	case kindObject:
		return s.obj.WorldBounds(), nil
	default:
		return Rect{}, ErrUnresolvableBounds
	}
}

// From converts a loosely typed value into a Source. It accepts Source,
// Rect, *Rect, and any Boundable.
func From(v any) (Source, error) {
	switch t := v.(type) {
	case Source:
		if t.kind == kindNone {
			return Source{}, ErrUnresolvableBounds
		}
		return t, nil
	case Rect:
		return FromRect(t), nil
	case *Rect:
		if t == nil {
			return Source{}, fmt.Errorf("nil *Rect: %w", ErrUnresolvableBounds)
		}
		return FromRect(*t), nil
	case *engine.Node:
		if t == nil {
			return Source{}, fmt.Errorf("nil node: %w", ErrUnresolvableBounds)
		}
		return Of(t), nil
	case Boundable:
		return Of(t), nil
	case nil:
		return Source{}, fmt.Errorf("nil value: %w", ErrUnresolvableBounds)
	default:
		return Source{}, fmt.Errorf("%T: %w", v, ErrUnresolvableBounds)
	}
}

// ResolveAny is From followed by Resolve.
func ResolveAny(v any) (Rect, error) {
	s, err := From(v)
	if err != nil {
		return Rect{}, err
	}
	return Resolve(s)
}

// Name returns a label for v in diagnostics: its explicit name if it has
// one, then a type tag, then "object". It never affects pass/fail logic.
func Name(v any) string {
	if s, ok := v.(Source); ok {
		switch s.kind {
		case kindObject:
			return Name(s.obj)
		case kindRect:
			return "Rect"
		default:
			return "object"
		}
	}
	if node, ok := v.(*engine.Node); ok && node == nil {
		return "object"
	}
	if n, ok := v.(Named); ok && n.Label() != "" {
		return n.Label()
	}
	switch t := v.(type) {
	case *engine.Node:
		return t.Type.String()
	case Rect, *Rect:
		return "Rect"
	}
	return "object"
}

// Format renders r for diagnostics.
func Format(r Rect) string {
	return fmt.Sprintf("(x=%g, y=%g, w=%g, h=%g)", r.X, r.Y, r.Width, r.Height)
}
