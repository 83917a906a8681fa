package headless

import "github.com/phanxgames/willowtest/engine"

// DefaultDelta is one frame at 60 fps, in milliseconds.
const DefaultDelta = 1000.0 / 60

// Step runs frames frames of delta milliseconds each, synchronously. The
// virtual clock continues from the game's last frame time. frames <= 0 runs
// one frame and delta <= 0 uses DefaultDelta. Every requested frame runs
// the full pipeline exactly once; none are skipped or merged.
func Step(g *engine.Game, frames int, delta float64) error {
	if frames <= 0 {
		frames = 1
	}
	if delta <= 0 {
		delta = DefaultDelta
	}
	t := g.Loop().Now()
	for i := 0; i < frames; i++ {
		t += delta
		if err := g.Step(t, delta); err != nil {
			return err
		}
	}
	return nil
}
