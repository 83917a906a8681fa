package expect

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// Expectation binds an actual value to the test it is asserted in.
type Expectation struct {
	t      assert.TestingT
	actual any
}

// That starts an expectation on actual.
func That(t assert.TestingT, actual any) *Expectation {
	return &Expectation{t: t, actual: actual}
}

// To asserts that the named matcher passes. It reports a failure through
// assert.Fail and returns false when it does not.
func (e *Expectation) To(name string, args ...any) bool {
	if h, ok := e.t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return e.run(name, false, args)
}

// NotTo asserts that the named matcher fails.
func (e *Expectation) NotTo(name string, args ...any) bool {
	if h, ok := e.t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return e.run(name, true, args)
}

func (e *Expectation) run(name string, negated bool, args []any) bool {
	if h, ok := e.t.(interface{ Helper() }); ok {
		h.Helper()
	}
	fn, ok := Lookup(name)
	if !ok {
		return assert.Fail(e.t, fmt.Sprintf("expect: no matcher registered as %q", name))
	}
	res := fn(e.actual, args...)
	if res.Err != nil {
		return assert.Fail(e.t, res.Err.Error())
	}
	if res.Pass != negated {
		return true
	}
	return assert.Fail(e.t, res.Message(negated))
}
