package layout

import (
	"fmt"
	"strings"
)

// Predicate names, used as the prefix of every failure message.
const (
	PredNoOverlap      = "expectNoOverlap"
	PredNoOverlaps     = "expectNoOverlaps"
	PredContainedIn    = "expectContainedIn"
	PredAllContainedIn = "expectAllContainedIn"
	PredAligned        = "expectAligned"
	PredMinGap         = "expectMinGap"
	PredAbove          = "expectAbove"
	PredLeftOf         = "expectLeftOf"
	PredValidLayout    = "expectValidLayout"
)

// AssertionError is returned when a layout predicate does not hold.
type AssertionError struct {
	// Predicate is the failing predicate, e.g. "expectNoOverlap".
	Predicate string
	// Message is the full multi-line diagnostic. It starts with
	// "<Predicate> failed:".
	Message string
	// Cause is the sub-check that failed inside a composite predicate.
	Cause *AssertionError
}

func (e *AssertionError) Error() string { return e.Message }

// Unwrap returns the failing sub-check, if any.
func (e *AssertionError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

func failf(pred string, lines []string, format string, args ...any) *AssertionError {
	var b strings.Builder
	b.WriteString(pred)
	b.WriteString(" failed: ")
	fmt.Fprintf(&b, format, args...)
	for _, l := range lines {
		b.WriteByte('\n')
		b.WriteString(l)
	}
	return &AssertionError{Predicate: pred, Message: b.String()}
}

func resolveErr(pred, role string, err error) error {
	return fmt.Errorf("%s: %s: %w", pred, role, err)
}
