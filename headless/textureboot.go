package headless

import (
	"github.com/phanxgames/willowtest/engine"
)

// forceTextureBoot completes the texture boot of a headless game. The
// headless renderer has no decoder, so the builtin loads never settle and
// EventTexturesReady never fires on its own. forceTextureBoot stands in a
// blank canvas for every builtin key that is still missing, clears the
// pending counter, cancels the dangling loads so a late completion cannot
// touch the textures, and emits the ready event the engine waits for.
//
// It must run with the game lock held. It returns false when the textures
// were already ready.
//
// This depends on how engine.TextureManager tracks boot loads; it is the
// only place the harness reaches into that protocol.
func forceTextureBoot(g *engine.Game) (detached []string, forced bool) {
	tm := g.Textures()
	if tm.Ready() {
		return nil, false
	}
	for _, key := range engine.BuiltinTextureKeys() {
		if tm.Exists(key) {
			continue
		}
		w, h, _ := engine.BuiltinTextureSize(key)
		tm.AddCanvas(key, w, h)
	}
	tm.ResetPending()
	detached = tm.DetachLoads()
	g.Events().Emit(engine.EventTexturesReady)
	return detached, true
}
