package expect

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/phanxgames/willowtest/bounds"
	"github.com/phanxgames/willowtest/layout"
)

// Layout matcher names.
const (
	NoOverlap      = "NoOverlap"
	NoOverlaps     = "NoOverlaps"
	ContainedIn    = "ContainedIn"
	AllContainedIn = "AllContainedIn"
	AlignedWith    = "AlignedWith"
	MinGap         = "MinGap"
	Above          = "Above"
	LeftOf         = "LeftOf"
	ValidLayout    = "ValidLayout"
)

var registerOnce sync.Once

// RegisterLayoutMatchers registers the layout matchers. It is safe to call
// from every test package; only the first call registers.
//
//	NoOverlap       actual=a, args: b
//	NoOverlaps      actual=slice of items
//	ContainedIn     actual=child, args: parent
//	AllContainedIn  actual=slice of items, args: parent
//	AlignedWith     actual=a, args: b, axis (layout.Axis or name), [tolerance]
//	MinGap          actual=a, args: b, min
//	Above           actual=upper, args: lower
//	LeftOf          actual=left, args: right
//	ValidLayout     actual=slice of children, args: container, [layout.LayoutOptions]
func RegisterLayoutMatchers() {
	registerOnce.Do(func() {
		Register(NoOverlap, matchNoOverlap)
		Register(NoOverlaps, matchNoOverlaps)
		Register(ContainedIn, matchContainedIn)
		Register(AllContainedIn, matchAllContainedIn)
		Register(AlignedWith, matchAligned)
		Register(MinGap, matchMinGap)
		Register(Above, matchAbove)
		Register(LeftOf, matchLeftOf)
		Register(ValidLayout, matchValidLayout)
	})
}

// fromOutcome turns a layout check into a matcher Result. The failure
// diagnostic is only built when the failure is reported. describe states
// the layout that holds, for the negated message.
func fromOutcome(name string, o layout.Outcome, err error, describe func() string) Result {
	if err != nil {
		return Result{Err: err}
	}
	if o.Pass {
		return Result{Pass: true, Message: func(bool) string {
			return fmt.Sprintf("expected NotTo(%s) to fail, but %s", name, describe())
		}}
	}
	return Result{Pass: false, Message: func(bool) string { return o.Failure().Message }}
}

func argErr(name string, format string, args ...any) Result {
	return Result{Err: fmt.Errorf("expect: %s: %s", name, fmt.Sprintf(format, args...))}
}

func wantArgs(name string, args []any, lo, hi int) *Result {
	if len(args) < lo || len(args) > hi {
		r := argErr(name, "got %d arguments, want %d to %d", len(args), lo, hi)
		return &r
	}
	return nil
}

// toItems flattens a slice or array of any element type into []any.
func toItems(name string, v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expect: %s: actual must be a slice, got %T", name, v)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expect: %s: want a number, got %T", name, v)
	}
}

func toAxis(name string, v any) (layout.Axis, error) {
	switch a := v.(type) {
	case layout.Axis:
		return a, nil
	case string:
		ax, err := layout.ParseAxis(a)
		if err != nil {
			return 0, fmt.Errorf("expect: %s: %w", name, err)
		}
		return ax, nil
	default:
		return 0, fmt.Errorf("expect: %s: want an axis, got %T", name, v)
	}
}

func pair(verb string, a, b any) func() string {
	return func() string { return fmt.Sprintf("%q %s %q", bounds.Name(a), verb, bounds.Name(b)) }
}

func listNames(items []any) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = fmt.Sprintf("%q", bounds.Name(it))
	}
	return "[" + strings.Join(names, " ") + "]"
}

func matchNoOverlap(actual any, args ...any) Result {
	if r := wantArgs(NoOverlap, args, 1, 1); r != nil {
		return *r
	}
	o, err := layout.CheckNoOverlap(actual, args[0])
	return fromOutcome(NoOverlap, o, err, pair("does not overlap", actual, args[0]))
}

func matchNoOverlaps(actual any, args ...any) Result {
	if r := wantArgs(NoOverlaps, args, 0, 0); r != nil {
		return *r
	}
	items, err := toItems(NoOverlaps, actual)
	if err != nil {
		return Result{Err: err}
	}
	o, err := layout.CheckNoOverlaps(items...)
	return fromOutcome(NoOverlaps, o, err, func() string {
		return listNames(items) + " have no overlaps"
	})
}

func matchContainedIn(actual any, args ...any) Result {
	if r := wantArgs(ContainedIn, args, 1, 1); r != nil {
		return *r
	}
	o, err := layout.CheckContainedIn(actual, args[0])
	return fromOutcome(ContainedIn, o, err, pair("is contained in", actual, args[0]))
}

func matchAllContainedIn(actual any, args ...any) Result {
	if r := wantArgs(AllContainedIn, args, 1, 1); r != nil {
		return *r
	}
	items, err := toItems(AllContainedIn, actual)
	if err != nil {
		return Result{Err: err}
	}
	o, err := layout.CheckAllContainedIn(items, args[0])
	return fromOutcome(AllContainedIn, o, err, func() string {
		return fmt.Sprintf("%s are all contained in %q", listNames(items), bounds.Name(args[0]))
	})
}

func matchAligned(actual any, args ...any) Result {
	if r := wantArgs(AlignedWith, args, 2, 3); r != nil {
		return *r
	}
	axis, err := toAxis(AlignedWith, args[1])
	if err != nil {
		return Result{Err: err}
	}
	tol := layout.DefaultAlignTolerance
	if len(args) == 3 {
		if tol, err = toFloat(AlignedWith, args[2]); err != nil {
			return Result{Err: err}
		}
	}
	o, err := layout.CheckAligned(actual, args[0], axis, tol)
	return fromOutcome(AlignedWith, o, err,
		pair(fmt.Sprintf("is aligned on %s within %gpx with", axis, tol), actual, args[0]))
}

func matchMinGap(actual any, args ...any) Result {
	if r := wantArgs(MinGap, args, 2, 2); r != nil {
		return *r
	}
	gap, err := toFloat(MinGap, args[1])
	if err != nil {
		return Result{Err: err}
	}
	o, err := layout.CheckMinGap(actual, args[0], gap)
	return fromOutcome(MinGap, o, err,
		pair(fmt.Sprintf("keeps at least %gpx from", gap), actual, args[0]))
}

func matchAbove(actual any, args ...any) Result {
	if r := wantArgs(Above, args, 1, 1); r != nil {
		return *r
	}
	o, err := layout.CheckAbove(actual, args[0])
	return fromOutcome(Above, o, err, pair("is above", actual, args[0]))
}

func matchLeftOf(actual any, args ...any) Result {
	if r := wantArgs(LeftOf, args, 1, 1); r != nil {
		return *r
	}
	o, err := layout.CheckLeftOf(actual, args[0])
	return fromOutcome(LeftOf, o, err, pair("is left of", actual, args[0]))
}

func matchValidLayout(actual any, args ...any) Result {
	if r := wantArgs(ValidLayout, args, 1, 2); r != nil {
		return *r
	}
	items, err := toItems(ValidLayout, actual)
	if err != nil {
		return Result{Err: err}
	}
	opts := layout.DefaultLayoutOptions()
	if len(args) == 2 {
		lo, ok := args[1].(layout.LayoutOptions)
		if !ok {
			return argErr(ValidLayout, "want layout.LayoutOptions, got %T", args[1])
		}
		opts = lo
	}
	o, err := layout.CheckValidLayout(items, args[0], opts)
	return fromOutcome(ValidLayout, o, err, func() string {
		return fmt.Sprintf("%s form a valid layout in %q", listNames(items), bounds.Name(args[0]))
	})
}
