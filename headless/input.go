package headless

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/willowtest/engine"
)

// Pointer events are queued in screen coordinates and consumed one per
// frame, so they go through the primary camera exactly like real mouse
// input. PointerDown, PointerMove and PointerUp only queue; Click and Drag
// also step the frames their events need.

func enqueue(g *engine.Game, x, y float64, pressed bool) error {
	return g.Do(func() {
		g.Input().Enqueue(engine.PointerEvent{X: x, Y: y, Pressed: pressed, Button: engine.MouseButtonLeft})
	})
}

// PointerDown queues a left-button press at (x, y).
func PointerDown(g *engine.Game, x, y float64) error {
	return enqueue(g, x, y, true)
}

// PointerMove queues a move to (x, y) with the button held. Use it between
// PointerDown and PointerUp to drag.
func PointerMove(g *engine.Game, x, y float64) error {
	return enqueue(g, x, y, true)
}

// PointerUp queues a release at (x, y).
func PointerUp(g *engine.Game, x, y float64) error {
	return enqueue(g, x, y, false)
}

// Click presses and releases at (x, y) and steps the two frames that
// consume them.
func Click(g *engine.Game, x, y float64) error {
	if err := PointerDown(g, x, y); err != nil {
		return err
	}
	if err := PointerUp(g, x, y); err != nil {
		return err
	}
	return Step(g, 2, DefaultDelta)
}

// Drag presses at (fromX, fromY), moves in a straight line over frames-2
// intermediate frames, releases at (toX, toY), and steps all frames. frames
// below 2 is raised to 2.
func Drag(g *engine.Game, fromX, fromY, toX, toY float64, frames int) error {
	if frames < 2 {
		frames = 2
	}
	if err := PointerDown(g, fromX, fromY); err != nil {
		return err
	}
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		if err := PointerMove(g, fromX+(toX-fromX)*t, fromY+(toY-fromY)*t); err != nil {
			return err
		}
	}
	if err := PointerUp(g, toX, toY); err != nil {
		return err
	}
	return Step(g, frames, DefaultDelta)
}

func pushKey(g *engine.Game, events ...engine.KeyEvent) error {
	return g.Do(func() {
		kb := g.Input().Keyboard
		kb.Queue = append(kb.Queue, events...)
		kb.Process()
	})
}

// KeyDown presses key and delivers the event to every running scene
// immediately.
func KeyDown(g *engine.Game, key ebiten.Key) error {
	return pushKey(g, engine.KeyEvent{Key: key, Down: true})
}

// KeyUp releases key.
func KeyUp(g *engine.Game, key ebiten.Key) error {
	return pushKey(g, engine.KeyEvent{Key: key})
}

// KeyPress presses and releases key.
func KeyPress(g *engine.Game, key ebiten.Key) error {
	return pushKey(g, engine.KeyEvent{Key: key, Down: true}, engine.KeyEvent{Key: key})
}
