package layout

import (
	"fmt"

	"github.com/phanxgames/willowtest/bounds"
)

// Axis selects the scalar projection of a rectangle compared by
// ExpectAligned.
type Axis uint8

const (
	AxisCenterX Axis = iota
	AxisCenterY
	AxisTop
	AxisBottom
	AxisLeft
	AxisRight
)

var axisNames = [...]string{
	AxisCenterX: "centerX",
	AxisCenterY: "centerY",
	AxisTop:     "top",
	AxisBottom:  "bottom",
	AxisLeft:    "left",
	AxisRight:   "right",
}

func (a Axis) String() string {
	if int(a) < len(axisNames) {
		return axisNames[a]
	}
	return fmt.Sprintf("Axis(%d)", a)
}

// ParseAxis maps "centerX", "centerY", "top", "bottom", "left" or "right"
// to its Axis.
func ParseAxis(s string) (Axis, error) {
	for i, name := range axisNames {
		if name == s {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("layout: unknown axis %q", s)
}

// Value returns the projection of r on the axis.
func (a Axis) Value(r bounds.Rect) float64 {
	switch a {
	case AxisCenterX:
		return r.CenterX()
	case AxisCenterY:
		return r.CenterY()
	case AxisTop:
		return r.Y
	case AxisBottom:
		return r.Bottom()
	case AxisLeft:
		return r.X
	case AxisRight:
		return r.Right()
	default:
		panic(fmt.Sprintf("layout: invalid axis %d", a))
	}
}
