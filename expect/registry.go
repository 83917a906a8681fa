// Package expect exposes the layout predicates as named matchers usable
// through a small expectation API on top of testify:
//
//	func TestMain(m *testing.M) {
//		expect.RegisterLayoutMatchers()
//		os.Exit(m.Run())
//	}
//
//	expect.That(t, okButton).To("NoOverlap", cancelButton)
//	expect.That(t, label).NotTo("ContainedIn", panel)
//
// Registered matchers are process-wide and live for the whole test binary.
package expect

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Result is the outcome of one matcher call. Message is only invoked when a
// failure must be reported, so building diagrams and names is skipped on
// the passing path. negated is true when the caller asserted the opposite
// (NotTo) and the matcher passed.
//
// Err reports a problem with the inputs themselves, such as an operand
// without bounds. It fails the expectation in both forms.
type Result struct {
	Pass    bool
	Message func(negated bool) string
	Err     error
}

// MatcherFunc evaluates a matcher against actual and its arguments.
type MatcherFunc func(actual any, args ...any) Result

var (
	registryMu sync.RWMutex
	registry   = map[string]MatcherFunc{}
)

// Register adds a matcher under name. Registering the same function twice
// is a no-op; registering a different function under a taken name panics.
func Register(name string, fn MatcherFunc) {
	if fn == nil {
		panic("expect: Register with nil matcher " + name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if old, ok := registry[name]; ok {
		if reflect.ValueOf(old).Pointer() == reflect.ValueOf(fn).Pointer() {
			return
		}
		panic(fmt.Sprintf("expect: matcher %q already registered", name))
	}
	registry[name] = fn
}

// Lookup returns the matcher registered under name.
func Lookup(name string) (MatcherFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	return fn, ok
}

// Names returns every registered matcher name in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
