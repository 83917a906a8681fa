package layout

import (
	"fmt"
	"math"

	"github.com/phanxgames/willowtest/bounds"
)

// DefaultAlignTolerance is the alignment tolerance in pixels used when a
// caller has no stronger requirement.
const DefaultAlignTolerance = 1.0

type operand struct {
	name string
	rect bounds.Rect
}

func resolve(pred, role string, v any) (operand, error) {
	r, err := bounds.ResolveAny(v)
	if err != nil {
		return operand{}, resolveErr(pred, role, err)
	}
	return operand{name: bounds.Name(v), rect: r}, nil
}

func resolvePair(pred string, a, b any, roleA, roleB string) (operand, operand, error) {
	oa, err := resolve(pred, roleA, a)
	if err != nil {
		return operand{}, operand{}, err
	}
	ob, err := resolve(pred, roleB, b)
	if err != nil {
		return operand{}, operand{}, err
	}
	return oa, ob, nil
}

func resolveList(pred string, items []any) ([]operand, error) {
	ops := make([]operand, len(items))
	for i, v := range items {
		op, err := resolve(pred, fmt.Sprintf("item %d", i), v)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}

func rectLine(role string, op operand) string {
	return fmt.Sprintf("  %s %q: %s", role, op.name, bounds.Format(op.rect))
}

// Outcome is the verdict of a layout check whose operands resolved. The
// diagnostic of a failed check is only built when Failure or Err is
// called, so callers that only need the verdict never render a diagram.
type Outcome struct {
	Pass    bool
	failure func() *AssertionError
}

var passed = Outcome{Pass: true}

func failed(build func() *AssertionError) Outcome {
	return Outcome{failure: build}
}

// Failure builds the diagnostic of a failed check. It returns nil when the
// check passed.
func (o Outcome) Failure() *AssertionError {
	if o.Pass || o.failure == nil {
		return nil
	}
	return o.failure()
}

// Err is Failure as an error.
func (o Outcome) Err() error {
	if e := o.Failure(); e != nil {
		return e
	}
	return nil
}

func expect(o Outcome, err error) error {
	if err != nil {
		return err
	}
	return o.Err()
}

// --- Overlap ---

// ExpectNoOverlap passes when a and b do not intersect. Rectangles that
// only share an edge do not overlap.
func ExpectNoOverlap(a, b any) error {
	return expect(CheckNoOverlap(a, b))
}

// CheckNoOverlap is ExpectNoOverlap with a lazily built diagnostic. The
// error reports operands that could not be resolved.
func CheckNoOverlap(a, b any) (Outcome, error) {
	oa, ob, err := resolvePair(PredNoOverlap, a, b, "a", "b")
	if err != nil {
		return Outcome{}, err
	}
	return checkNoOverlap(PredNoOverlap, oa, ob), nil
}

func checkNoOverlap(pred string, a, b operand) Outcome {
	inter, ok := a.rect.Intersection(b.rect)
	if !ok {
		return passed
	}
	return failed(func() *AssertionError {
		lines := []string{
			rectLine("a", a),
			rectLine("b", b),
			fmt.Sprintf("  overlap: %s", bounds.Format(inter)),
			renderOverlap(a.rect, b.rect, inter, a.name, b.name),
		}
		return failf(pred, lines, "%q overlaps %q by %s px", a.name, b.name, dims(inter))
	})
}

// ExpectNoOverlaps passes when no two items overlap. All pairs are tested;
// the first failing pair in index order is reported.
func ExpectNoOverlaps(items ...any) error {
	return expect(CheckNoOverlaps(items...))
}

// CheckNoOverlaps is ExpectNoOverlaps with a lazily built diagnostic.
func CheckNoOverlaps(items ...any) (Outcome, error) {
	ops, err := resolveList(PredNoOverlaps, items)
	if err != nil {
		return Outcome{}, err
	}
	return checkNoOverlaps(ops), nil
}

func checkNoOverlaps(ops []operand) Outcome {
	for i := 0; i < len(ops); i++ {
		for j := i + 1; j < len(ops); j++ {
			o := checkNoOverlap(PredNoOverlaps, ops[i], ops[j])
			if o.Pass {
				continue
			}
			return failed(func() *AssertionError {
				e := o.Failure()
				e.Message += fmt.Sprintf("\n  pair: items %d and %d of %d", i, j, len(ops))
				return e
			})
		}
	}
	return passed
}

// --- Containment ---

// ExpectContainedIn passes when child lies inside parent. Edges that
// coincide count as contained.
func ExpectContainedIn(child, parent any) error {
	return expect(CheckContainedIn(child, parent))
}

// CheckContainedIn is ExpectContainedIn with a lazily built diagnostic.
func CheckContainedIn(child, parent any) (Outcome, error) {
	oc, op, err := resolvePair(PredContainedIn, child, parent, "child", "parent")
	if err != nil {
		return Outcome{}, err
	}
	return checkContainedIn(PredContainedIn, oc, op), nil
}

func contained(c, p bounds.Rect) bool {
	return c.X >= p.X && c.Y >= p.Y && c.Right() <= p.Right() && c.Bottom() <= p.Bottom()
}

func checkContainedIn(pred string, child, parent operand) Outcome {
	if contained(child.rect, parent.rect) {
		return passed
	}
	return failed(func() *AssertionError {
		lines := []string{
			rectLine("child", child),
			rectLine("parent", parent),
		}
		for _, l := range OverflowReport(child.rect, parent.rect) {
			lines = append(lines, "  "+l)
		}
		return failf(pred, lines, "%q is not contained in %q", child.name, parent.name)
	})
}

// ExpectAllContainedIn passes when every item lies inside parent. It stops
// at the first item that does not.
func ExpectAllContainedIn(items []any, parent any) error {
	return expect(CheckAllContainedIn(items, parent))
}

// CheckAllContainedIn is ExpectAllContainedIn with a lazily built
// diagnostic.
func CheckAllContainedIn(items []any, parent any) (Outcome, error) {
	op, err := resolve(PredAllContainedIn, "parent", parent)
	if err != nil {
		return Outcome{}, err
	}
	ops, err := resolveList(PredAllContainedIn, items)
	if err != nil {
		return Outcome{}, err
	}
	return checkAllContainedIn(ops, op), nil
}

func checkAllContainedIn(ops []operand, parent operand) Outcome {
	for i, oc := range ops {
		o := checkContainedIn(PredAllContainedIn, oc, parent)
		if o.Pass {
			continue
		}
		return failed(func() *AssertionError {
			e := o.Failure()
			e.Message += fmt.Sprintf("\n  item: %d of %d", i, len(ops))
			return e
		})
	}
	return passed
}

// --- Alignment ---

// ExpectAligned passes when a and b project to values on axis that differ
// by at most tolerance pixels.
func ExpectAligned(a, b any, axis Axis, tolerance float64) error {
	return expect(CheckAligned(a, b, axis, tolerance))
}

// CheckAligned is ExpectAligned with a lazily built diagnostic.
func CheckAligned(a, b any, axis Axis, tolerance float64) (Outcome, error) {
	oa, ob, err := resolvePair(PredAligned, a, b, "a", "b")
	if err != nil {
		return Outcome{}, err
	}
	va, vb := axis.Value(oa.rect), axis.Value(ob.rect)
	diff := math.Abs(va - vb)
	if diff <= tolerance {
		return passed, nil
	}
	return failed(func() *AssertionError {
		lines := []string{
			rectLine("a", oa),
			rectLine("b", ob),
			fmt.Sprintf("  %s: a=%g b=%g", axis, va, vb),
		}
		return failf(PredAligned, lines, "%q and %q are %gpx apart on %s, tolerance %gpx",
			oa.name, ob.name, diff, axis, tolerance)
	}), nil
}

// --- Spacing ---

// Gap returns the separation between a and b: the larger of the horizontal
// and vertical separations. Overlapping rectangles yield zero or a negative
// value; the result is not clamped.
func Gap(a, b bounds.Rect) float64 {
	h := math.Max(b.X-a.Right(), a.X-b.Right())
	v := math.Max(b.Y-a.Bottom(), a.Y-b.Bottom())
	return math.Max(h, v)
}

// ExpectMinGap passes when the gap between a and b is at least want pixels.
// Overlapping operands fail any positive want.
func ExpectMinGap(a, b any, want float64) error {
	return expect(CheckMinGap(a, b, want))
}

// CheckMinGap is ExpectMinGap with a lazily built diagnostic.
func CheckMinGap(a, b any, want float64) (Outcome, error) {
	oa, ob, err := resolvePair(PredMinGap, a, b, "a", "b")
	if err != nil {
		return Outcome{}, err
	}
	gap := Gap(oa.rect, ob.rect)
	if gap >= want {
		return passed, nil
	}
	return failed(func() *AssertionError {
		lines := []string{
			rectLine("a", oa),
			rectLine("b", ob),
			fmt.Sprintf("  short by: %gpx", want-gap),
		}
		return failf(PredMinGap, lines, "gap between %q and %q is %gpx, want at least %gpx",
			oa.name, ob.name, gap, want)
	}), nil
}

// --- Ordering ---

// ExpectAbove passes when upper ends at or above the top of lower.
func ExpectAbove(upper, lower any) error {
	return expect(CheckAbove(upper, lower))
}

// CheckAbove is ExpectAbove with a lazily built diagnostic.
func CheckAbove(upper, lower any) (Outcome, error) {
	ou, ol, err := resolvePair(PredAbove, upper, lower, "upper", "lower")
	if err != nil {
		return Outcome{}, err
	}
	if ou.rect.Bottom() <= ol.rect.Y {
		return passed, nil
	}
	return failed(func() *AssertionError {
		lines := []string{
			rectLine("upper", ou),
			rectLine("lower", ol),
		}
		return failf(PredAbove, lines, "bottom of %q (%g) is %gpx below top of %q (%g)",
			ou.name, ou.rect.Bottom(), ou.rect.Bottom()-ol.rect.Y, ol.name, ol.rect.Y)
	}), nil
}

// ExpectLeftOf passes when left ends at or before the left edge of right.
func ExpectLeftOf(left, right any) error {
	return expect(CheckLeftOf(left, right))
}

// CheckLeftOf is ExpectLeftOf with a lazily built diagnostic.
func CheckLeftOf(left, right any) (Outcome, error) {
	ol, or, err := resolvePair(PredLeftOf, left, right, "left", "right")
	if err != nil {
		return Outcome{}, err
	}
	if ol.rect.Right() <= or.rect.X {
		return passed, nil
	}
	return failed(func() *AssertionError {
		lines := []string{
			rectLine("left", ol),
			rectLine("right", or),
		}
		return failf(PredLeftOf, lines, "right edge of %q (%g) is %gpx past left edge of %q (%g)",
			ol.name, ol.rect.Right(), ol.rect.Right()-or.rect.X, or.name, or.rect.X)
	}), nil
}

// --- Composite ---

// LayoutOptions toggles the sub-checks of ExpectValidLayout. A nil field
// means enabled.
type LayoutOptions struct {
	ContainChildren *bool
	NoOverlaps      *bool
}

// DefaultLayoutOptions enables every sub-check.
func DefaultLayoutOptions() LayoutOptions {
	on := true
	return LayoutOptions{ContainChildren: &on, NoOverlaps: &on}
}

func enabled(b *bool) bool { return b == nil || *b }

// ExpectValidLayout runs containment of children in container and then
// pairwise no-overlap among children, each unless disabled by opts. The
// first failing sub-check is reported.
func ExpectValidLayout(children []any, container any, opts LayoutOptions) error {
	return expect(CheckValidLayout(children, container, opts))
}

// CheckValidLayout is ExpectValidLayout with a lazily built diagnostic.
// Resolution errors are prefixed with the sub-check that hit them.
func CheckValidLayout(children []any, container any, opts LayoutOptions) (Outcome, error) {
	if enabled(opts.ContainChildren) {
		o, err := CheckAllContainedIn(children, container)
		if err != nil {
			return Outcome{}, fmt.Errorf("%s: %w", PredValidLayout, err)
		}
		if !o.Pass {
			return composite("containment", o), nil
		}
	}
	if enabled(opts.NoOverlaps) {
		o, err := CheckNoOverlaps(children...)
		if err != nil {
			return Outcome{}, fmt.Errorf("%s: %w", PredValidLayout, err)
		}
		if !o.Pass {
			return composite("overlap", o), nil
		}
	}
	return passed, nil
}

func composite(check string, inner Outcome) Outcome {
	return failed(func() *AssertionError {
		cause := inner.Failure()
		e := failf(PredValidLayout, []string{cause.Message}, "%s check failed", check)
		e.Cause = cause
		return e
	})
}

func dims(r bounds.Rect) string {
	return fmt.Sprintf("%gx%g", r.Width, r.Height)
}
