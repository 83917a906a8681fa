package layout

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/willowtest/bounds"
	"github.com/phanxgames/willowtest/engine"
)

func rect(x, y, w, h float64) bounds.Rect {
	return bounds.Rect{X: x, Y: y, Width: w, Height: h}
}

// centered builds a rectangle node the way scenes do: positioned by its
// center.
func centered(name string, cx, cy, w, h float64) *engine.Node {
	return engine.NewRectangle(name, cx, cy, w, h, engine.ColorWhite)
}

func requireAssertion(t *testing.T, err error, pred string) *AssertionError {
	t.Helper()
	require.Error(t, err)
	var ae *AssertionError
	require.True(t, errors.As(err, &ae), "error %T is not an *AssertionError", err)
	assert.Equal(t, pred, ae.Predicate)
	assert.Contains(t, ae.Error(), pred+" failed:")
	return ae
}

func TestNoOverlapScenarioSeparated(t *testing.T) {
	a := centered("a", 50, 50, 40, 40)
	b := centered("b", 150, 50, 40, 40)
	assert.NoError(t, ExpectNoOverlap(a, b))
}

func TestNoOverlapScenarioOverlapping(t *testing.T) {
	a := centered("left", 50, 50, 40, 40)
	b := centered("right", 60, 50, 40, 40)

	ae := requireAssertion(t, ExpectNoOverlap(a, b), PredNoOverlap)
	assert.Contains(t, ae.Message, "expectNoOverlap failed")
	assert.Contains(t, ae.Message, "30x40")
	assert.Contains(t, ae.Message, `"left"`)
	assert.Contains(t, ae.Message, `"right"`)
	assert.Contains(t, ae.Message, "(x=40, y=30, w=30, h=40)")
	assert.Contains(t, ae.Message, "#")
}

func TestNoOverlapMatchesOverlapTest(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		a := rect(float64(rng.Intn(20)), float64(rng.Intn(20)), float64(rng.Intn(10)), float64(rng.Intn(10)))
		b := rect(float64(rng.Intn(20)), float64(rng.Intn(20)), float64(rng.Intn(10)), float64(rng.Intn(10)))
		err := ExpectNoOverlap(a, b)
		if a.Overlaps(b) {
			assert.Error(t, err, "a=%v b=%v", a, b)
		} else {
			assert.NoError(t, err, "a=%v b=%v", a, b)
		}
	}
}

func TestEdgeTouching(t *testing.T) {
	a := rect(0, 0, 40, 40)
	right := rect(40, 0, 40, 40)
	below := rect(0, 40, 40, 40)

	assert.NoError(t, ExpectNoOverlap(a, right))
	assert.NoError(t, ExpectLeftOf(a, right))
	assert.NoError(t, ExpectNoOverlap(a, below))
	assert.NoError(t, ExpectAbove(a, below))
	assert.NoError(t, ExpectMinGap(a, right, 0))
}

func TestShiftedByWidth(t *testing.T) {
	a := rect(13, 7, 25, 10)
	b := a
	b.X += a.Width
	assert.NoError(t, ExpectLeftOf(a, b))
	assert.NoError(t, ExpectNoOverlap(a, b))
	assert.NoError(t, ExpectMinGap(a, b, 0))

	c := a
	c.Y += a.Height
	assert.NoError(t, ExpectAbove(a, c))
	assert.NoError(t, ExpectNoOverlap(a, c))
}

func TestNoOverlapsReportsFirstPair(t *testing.T) {
	items := []any{rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(25, 5, 10, 10), rect(5, 5, 10, 10)}
	ae := requireAssertion(t, ExpectNoOverlaps(items...), PredNoOverlaps)
	assert.Contains(t, ae.Message, "items 0 and 3")

	assert.NoError(t, ExpectNoOverlaps())
	assert.NoError(t, ExpectNoOverlaps(rect(0, 0, 1, 1)))
	assert.NoError(t, ExpectNoOverlaps(rect(0, 0, 10, 10), rect(10, 0, 10, 10), rect(0, 10, 10, 10)))
}

func TestNoOverlapsOrderIndependent(t *testing.T) {
	items := []any{rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(25, 5, 10, 10)}
	reversed := []any{items[2], items[1], items[0]}
	assert.Error(t, ExpectNoOverlaps(items...))
	assert.Error(t, ExpectNoOverlaps(reversed...))
}

func TestContainedInScenario(t *testing.T) {
	child := centered("label", 90, 50, 60, 40)
	parent := rect(0, 0, 100, 100)

	ae := requireAssertion(t, ExpectContainedIn(child, parent), PredContainedIn)
	assert.Contains(t, ae.Message, "Right: 20px past parent right edge")
	assert.Contains(t, ae.Message, `"label"`)
	assert.Contains(t, ae.Message, `"Rect"`)
	assert.NotContains(t, ae.Message, "Left:")
}

func TestSelfContainment(t *testing.T) {
	for _, r := range []bounds.Rect{rect(0, 0, 0, 0), rect(-5, 3, 10, 0), rect(0.1, 0.2, 0.3, 0.4), rect(1e6, 1e6, 1, 1)} {
		assert.NoError(t, ExpectContainedIn(r, r), "%v", r)
	}
}

func TestAllContainedInShortCircuits(t *testing.T) {
	parent := rect(0, 0, 100, 100)
	items := []any{rect(0, 0, 10, 10), rect(95, 0, 10, 10), rect(-5, 0, 10, 10)}
	ae := requireAssertion(t, ExpectAllContainedIn(items, parent), PredAllContainedIn)
	assert.Contains(t, ae.Message, "Right: 5px")
	assert.Contains(t, ae.Message, "item: 1 of 3")
	assert.NotContains(t, ae.Message, "Left:")
}

func TestAligned(t *testing.T) {
	a := rect(0, 0, 10, 10)  // centerY 5
	b := rect(50, 2, 10, 10) // centerY 7

	assert.NoError(t, ExpectAligned(a, a, AxisCenterY, 0))
	requireAssertion(t, ExpectAligned(a, b, AxisCenterY, 0), PredAligned)
	assert.NoError(t, ExpectAligned(a, b, AxisCenterY, 2))
	requireAssertion(t, ExpectAligned(a, b, AxisCenterY, math.Nextafter(2, 0)), PredAligned)
	assert.Error(t, ExpectAligned(a, b, AxisCenterY, DefaultAlignTolerance))

	assert.NoError(t, ExpectAligned(a, b, AxisLeft, 50))
	assert.NoError(t, ExpectAligned(rect(0, 0, 10, 10), rect(5, 0, 5, 10), AxisRight, 0))
	assert.NoError(t, ExpectAligned(rect(0, 0, 10, 10), rect(0, 4, 10, 6), AxisBottom, 0))
	assert.NoError(t, ExpectAligned(rect(0, 0, 10, 10), rect(4, 0, 2, 1), AxisCenterX, 0))

	ae := requireAssertion(t, ExpectAligned(a, b, AxisTop, 1), PredAligned)
	assert.Contains(t, ae.Message, "2px apart on top")
}

func TestParseAxis(t *testing.T) {
	for _, name := range []string{"centerX", "centerY", "top", "bottom", "left", "right"} {
		ax, err := ParseAxis(name)
		require.NoError(t, err)
		assert.Equal(t, name, ax.String())
	}
	_, err := ParseAxis("middle")
	assert.Error(t, err)
}

func TestMinGap(t *testing.T) {
	a := rect(30, 30, 40, 40)  // right edge 70
	b := rect(130, 30, 40, 40) // left edge 130

	assert.Equal(t, 60.0, Gap(a, b))
	assert.Equal(t, 60.0, Gap(b, a))
	assert.NoError(t, ExpectMinGap(a, b, 50))
	assert.NoError(t, ExpectMinGap(a, b, 60))
	ae := requireAssertion(t, ExpectMinGap(a, b, 61), PredMinGap)
	assert.Contains(t, ae.Message, "60px")
}

func TestMinGapOverlappingIsNotClamped(t *testing.T) {
	a := rect(0, 0, 40, 40)
	b := rect(30, 10, 40, 40)
	assert.Equal(t, -10.0, Gap(a, b))
	assert.Error(t, ExpectMinGap(a, b, 1))
	assert.Error(t, ExpectMinGap(a, b, 0))
	assert.NoError(t, ExpectMinGap(a, b, -10))
}

func TestMinGapDiagonal(t *testing.T) {
	a := rect(0, 0, 10, 10)
	b := rect(15, 30, 10, 10)
	assert.Equal(t, 20.0, Gap(a, b))
}

func TestOrderingMessages(t *testing.T) {
	ae := requireAssertion(t, ExpectAbove(rect(0, 0, 10, 70), rect(0, 50, 10, 10)), PredAbove)
	assert.Contains(t, ae.Message, "20px below")

	ae = requireAssertion(t, ExpectLeftOf(rect(0, 0, 70, 10), rect(60, 0, 10, 10)), PredLeftOf)
	assert.Contains(t, ae.Message, "10px past")
}

func TestValidLayout(t *testing.T) {
	container := rect(0, 0, 100, 100)
	overlapping := []any{rect(10, 10, 30, 30), rect(20, 20, 30, 30)}
	off := false

	err := ExpectValidLayout(overlapping, container, DefaultLayoutOptions())
	ae := requireAssertion(t, err, PredValidLayout)
	require.NotNil(t, ae.Cause)
	assert.Equal(t, PredNoOverlaps, ae.Cause.Predicate)

	assert.NoError(t, ExpectValidLayout(overlapping, container, LayoutOptions{NoOverlaps: &off}))
	assert.NoError(t, ExpectValidLayout(overlapping, container, LayoutOptions{NoOverlaps: &off, ContainChildren: &off}))

	escaping := []any{rect(10, 10, 30, 30), rect(50, 50, 100, 30)}
	ae = requireAssertion(t, ExpectValidLayout(escaping, container, LayoutOptions{}), PredValidLayout)
	assert.Equal(t, PredAllContainedIn, ae.Cause.Predicate)
	var inner *AssertionError
	require.True(t, errors.As(errors.Unwrap(ae), &inner))
	assert.Equal(t, PredAllContainedIn, inner.Predicate)
	assert.NoError(t, ExpectValidLayout(escaping, container, LayoutOptions{ContainChildren: &off}))
}

func TestUnresolvableOperand(t *testing.T) {
	var ae *AssertionError
	for _, err := range []error{
		ExpectNoOverlap("a", rect(0, 0, 1, 1)),
		ExpectContainedIn(rect(0, 0, 1, 1), nil),
		ExpectNoOverlaps(rect(0, 0, 1, 1), 7),
		ExpectValidLayout([]any{struct{}{}}, rect(0, 0, 1, 1), DefaultLayoutOptions()),
	} {
		assert.ErrorIs(t, err, bounds.ErrUnresolvableBounds)
		assert.False(t, errors.As(err, &ae))
	}
}

func TestZeroAreaOperands(t *testing.T) {
	point := rect(5, 5, 0, 0)
	box := rect(0, 0, 10, 10)
	assert.Equal(t, point.Overlaps(box), ExpectNoOverlap(point, box) != nil)
	assert.NoError(t, ExpectNoOverlap(point, rect(5, 0, 10, 10)))
	assert.NoError(t, ExpectContainedIn(point, box))
	assert.NoError(t, ExpectAligned(point, box, AxisCenterX, 0))
	assert.NoError(t, ExpectNoOverlap(point, point))
}

func TestLiveNodeBoundsAreReadEachCall(t *testing.T) {
	a := centered("a", 50, 50, 40, 40)
	b := centered("b", 150, 50, 40, 40)
	require.NoError(t, ExpectNoOverlap(a, b))
	b.SetPosition(60, 50)
	requireAssertion(t, ExpectNoOverlap(a, b), PredNoOverlap)
}

func TestCheckBuildsDiagnosticOnDemand(t *testing.T) {
	renders := 0
	orig := renderOverlap
	renderOverlap = func(a, b, inter bounds.Rect, nameA, nameB string) string {
		renders++
		return orig(a, b, inter, nameA, nameB)
	}
	t.Cleanup(func() { renderOverlap = orig })

	a, b, c := rect(0, 0, 40, 40), rect(20, 0, 40, 40), rect(0, 100, 10, 10)
	o, err := CheckNoOverlap(a, b)
	require.NoError(t, err)
	assert.False(t, o.Pass)
	o2, err := CheckValidLayout([]any{a, b}, rect(0, 0, 100, 100), LayoutOptions{})
	require.NoError(t, err)
	assert.False(t, o2.Pass)
	assert.Zero(t, renders, "failed checks must not render until asked")

	ae := o.Failure()
	require.NotNil(t, ae)
	assert.Equal(t, 1, renders)
	assert.Equal(t, ExpectNoOverlap(a, b).Error(), ae.Message)

	pass, err := CheckNoOverlap(a, c)
	require.NoError(t, err)
	assert.True(t, pass.Pass)
	assert.Nil(t, pass.Failure())
	assert.NoError(t, pass.Err())
}
