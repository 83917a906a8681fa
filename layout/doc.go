// Package layout asserts geometric relationships between the world-space
// bounding boxes of scene objects: overlap, containment, alignment, spacing,
// and ordering.
//
// Every Expect function accepts operands anything bounds.From understands
// (a *engine.Node, a bounds.Source, a Rect) and returns nil when the layout
// holds. A failing layout yields an *AssertionError whose message is enough
// to diagnose the failure on its own: operand names, both rectangles, the
// violation in pixels and, for overlap and containment, a text diagram.
// Operands that cannot be resolved yield an error wrapping
// bounds.ErrUnresolvableBounds instead.
//
//	if err := layout.ExpectNoOverlap(okButton, cancelButton); err != nil {
//		t.Fatal(err)
//	}
package layout
