// Package engine is a retained-mode 2D scene engine built on [Ebitengine].
//
// A [Game] owns a texture manager, a scene manager, an input manager, and a
// frame [Loop]. Games boot asynchronously: the texture manager loads its
// builtin placeholder textures, and once [EventTexturesReady] fires the game
// queues its configured scene, which is created on the first frame and then
// reaches [SceneRunning].
//
//	g := engine.NewGame(engine.Config{
//		Scene: engine.SceneConfig{
//			Key: "main",
//			OnCreate: func(s *engine.Scene) {
//				s.AddRectangle("panel", 400, 300, 200, 100, engine.ColorWhite)
//			},
//		},
//	})
//	err := engine.Run(g)
//
// Every frame runs the same pipeline: [EventPreStep], input, [EventStep],
// scene updates ([EventPreUpdate], pointer processing, [EventUpdate], the
// scene's Update hook, node OnUpdate callbacks, tweens, cameras,
// [EventPostUpdate]), [EventPostStep], [EventPreRender], rendering, and
// [EventPostRender].
//
// The headless renderer draws nothing and has no image decoding backend, so a
// headless game's boot textures never finish loading on their own. The
// headless test harness in package headless completes that boot.
//
// [Ebitengine]: https://ebitengine.org
package engine
