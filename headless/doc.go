// Package headless boots the engine without a window or GPU and drives it
// frame by frame from test code.
//
//	tg := headless.MustNewTestGame(t, headless.Options{
//		Scene: engine.SceneConfig{OnCreate: buildMenu},
//	})
//	require.NoError(t, tg.Step(1))
//	require.NoError(t, headless.Click(tg.Game, 400, 300))
//	require.NoError(t, layout.ExpectNoOverlap(tg.Scene.Find("ok"), tg.Scene.Find("cancel")))
//
// NewTestGame returns once the first scene is running and the engine's own
// loop has been stopped, so from then on only Step advances time. Each
// TestGame owns its engine; call Destroy (MustNewTestGame registers it as a
// test cleanup) before the test ends.
package headless
