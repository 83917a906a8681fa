package headless

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/willowtest/engine"
)

func quiet() *log.Logger { return log.New(io.Discard) }

// frozen keeps the engine's own loop from ever ticking, so the scene never
// gets created during bootstrap.
func frozen(cfg *engine.Config) { cfg.FPS = 0.001 }

func TestStepCounterScenario(t *testing.T) {
	counter := 0
	tg := MustNewTestGame(t, Options{
		Logger: quiet(),
		Scene: engine.SceneConfig{
			Key:      "counter",
			OnUpdate: func(*engine.Scene, float64, float64) { counter++ },
		},
	})
	require.Equal(t, 0, counter, "bootstrap must not update the scene")

	require.NoError(t, tg.Step(1))
	assert.Equal(t, 1, counter)
	require.NoError(t, tg.Step(5))
	assert.Equal(t, 6, counter)
}

func TestBootstrapReadyState(t *testing.T) {
	tg := MustNewTestGame(t, Options{Logger: quiet(), Scene: engine.SceneConfig{Key: "main"}})

	assert.Equal(t, "main", tg.Scene.Key)
	assert.Equal(t, engine.SceneRunning, tg.Scene.Status())
	assert.Same(t, tg.Scene, tg.Game.Scenes().First())
	assert.False(t, tg.Game.Loop().Running(), "loop must be stopped")
	assert.Equal(t, engine.RendererHeadless, tg.Game.Config.Renderer)
	assert.False(t, tg.Game.Config.Banner)
	assert.False(t, tg.Game.AudioEnabled())
	assert.Equal(t, 800, tg.Game.Config.Width)
	assert.Equal(t, 600, tg.Game.Config.Height)

	tm := tg.Game.Textures()
	assert.True(t, tm.Ready())
	assert.Zero(t, tm.Pending())
	for _, key := range engine.BuiltinTextureKeys() {
		w, h, _ := engine.BuiltinTextureSize(key)
		tex := tm.Get(key)
		require.NotNil(t, tex, key)
		assert.Equal(t, key, tex.Key)
		assert.True(t, tex.Canvas, key)
		assert.Equal(t, w, tex.Width, key)
		assert.Equal(t, h, tex.Height, key)
	}
}

func TestBootstrapFramesStopAtRunning(t *testing.T) {
	tg := MustNewTestGame(t, Options{Logger: quiet(), Scene: engine.SceneConfig{}})
	frames := tg.Game.Loop().Frames()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frames, tg.Game.Loop().Frames(), "loop ran after bootstrap")
}

func TestOverridesPrecedence(t *testing.T) {
	mainScene := engine.SceneConfig{Key: "main"}
	opts := Options{
		Width:  320,
		Height: 240,
		Logger: quiet(),
		Scene:  mainScene,
		Overrides: func(cfg *engine.Config) {
			cfg.Width = 1024
			cfg.Title = "overridden"
			cfg.Scene = engine.SceneConfig{Key: "hijack"}
			cfg.Renderer = engine.RendererCanvas
		},
	}

	cfg := opts.Config()
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
	assert.Equal(t, "overridden", cfg.Title)
	assert.Equal(t, mainScene, cfg.Scene)
	assert.Equal(t, engine.RendererHeadless, cfg.Renderer)

	tg := MustNewTestGame(t, opts)
	assert.Equal(t, 1024, tg.Game.Config.Width)
	assert.Equal(t, engine.RendererHeadless, tg.Game.Config.Renderer)
	assert.Equal(t, "main", tg.Scene.Key)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, 5*time.Second, o.Timeout)
	assert.Equal(t, 5*time.Millisecond, o.PollInterval)
}

func TestNilSceneIsConfigError(t *testing.T) {
	_, err := NewTestGame(context.Background(), Options{Logger: quiet()})
	assert.ErrorIs(t, err, engine.ErrNoScene)
}

func TestBootstrapTimeout(t *testing.T) {
	start := time.Now()
	_, err := NewTestGame(context.Background(), Options{
		Logger:    quiet(),
		Scene:     engine.SceneConfig{},
		Overrides: frozen,
		Timeout:   50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBootstrapTimeout), "err = %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestBootstrapCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewTestGame(ctx, Options{
		Logger:    quiet(),
		Scene:     engine.SceneConfig{},
		Overrides: frozen,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrBootstrapTimeout)
}

func TestBootstrapPropagatesScenePanic(t *testing.T) {
	assert.PanicsWithValue(t, "scene exploded", func() {
		_, _ = NewTestGame(context.Background(), Options{
			Logger: quiet(),
			Scene:  engine.SceneConfig{OnCreate: func(*engine.Scene) { panic("scene exploded") }},
		})
	})
}

func TestDestroy(t *testing.T) {
	tg, err := NewTestGame(context.Background(), Options{Logger: quiet(), Scene: engine.SceneConfig{}})
	require.NoError(t, err)

	tg.Destroy()
	tg.Destroy()
	assert.True(t, tg.Game.Destroyed())
	assert.Equal(t, engine.SceneDestroyed, tg.Scene.Status())
	assert.Empty(t, tg.Game.Textures().Keys())
	assert.ErrorIs(t, tg.Step(1), engine.ErrDestroyed)
}

func TestIndependentGames(t *testing.T) {
	a := MustNewTestGame(t, Options{Logger: quiet(), Scene: engine.SceneConfig{}})
	b := MustNewTestGame(t, Options{Logger: quiet(), Scene: engine.SceneConfig{}})
	assert.NotEqual(t, a.Game.ID, b.Game.ID)

	require.NoError(t, a.Step(3))
	before := b.Game.Loop().Frames()
	a.Destroy()
	require.NoError(t, b.Step(1))
	assert.Equal(t, before+1, b.Game.Loop().Frames())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting-textures", StateAwaitingTextures.String())
	assert.Equal(t, "timed-out", StateTimedOut.String())
}
