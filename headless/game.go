package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/willowtest/engine"
)

// ErrBootstrapTimeout is returned when the first scene does not reach the
// running state in time. It points at an incompatible engine or
// environment; retrying with the same setup will not help.
var ErrBootstrapTimeout = errors.New("headless: bootstrap timed out")

// Bootstrap defaults.
const (
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultTimeout      = 5 * time.Second
	DefaultPollInterval = 5 * time.Millisecond
)

// State is a step of the bootstrap.
type State uint8

const (
	StateConstructing State = iota
	StateAwaitingTextures
	StateAwaitingScene
	StateReady
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateAwaitingTextures:
		return "awaiting-textures"
	case StateAwaitingScene:
		return "awaiting-scene"
	case StateReady:
		return "ready"
	case StateTimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Options configures NewTestGame.
type Options struct {
	// Width and Height default to 800x600.
	Width, Height int
	// Scene is the scene started by the game. Required.
	Scene engine.SceneDef
	// Overrides edits the engine config after the harness has set it up.
	// Scene is always taken from Options.Scene and Renderer is always
	// headless.
	Overrides func(*engine.Config)
	// Logger receives engine and bootstrap logs. Defaults to the engine's
	// stderr logger.
	Logger *log.Logger
	// Timeout bounds the wait for the first scene. Defaults to 5s.
	Timeout time.Duration
	// PollInterval is how often the bootstrap checks the scene status.
	// Defaults to 5ms.
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// Config returns the engine config NewTestGame constructs the game with.
func (o Options) Config() engine.Config {
	o = o.withDefaults()
	cfg := engine.Config{
		Width:    o.Width,
		Height:   o.Height,
		Renderer: engine.RendererHeadless,
		Banner:   false,
		Audio:    false,
		Logger:   o.Logger,
	}
	if o.Overrides != nil {
		o.Overrides(&cfg)
	}
	cfg.Scene = o.Scene
	cfg.Renderer = engine.RendererHeadless
	return cfg
}

// TestGame is a booted engine whose first scene is running and whose loop
// only advances through Step.
type TestGame struct {
	Game  *engine.Game
	Scene *engine.Scene

	destroyOnce sync.Once
}

// Destroy tears the engine down. It is synchronous and idempotent.
func (tg *TestGame) Destroy() {
	tg.destroyOnce.Do(tg.Game.Destroy)
}

// Step advances the game by frames frames of DefaultDelta.
func (tg *TestGame) Step(frames int) error {
	return Step(tg.Game, frames, DefaultDelta)
}

// StepDelta advances the game by frames frames of delta milliseconds.
func (tg *TestGame) StepDelta(frames int, delta float64) error {
	return Step(tg.Game, frames, delta)
}

// NewTestGame boots a headless game running opts.Scene and returns once
// that scene is running. On timeout or cancellation the half-booted engine
// is destroyed. A panic on the engine's loop goroutine is re-raised on the
// caller's goroutine.
func NewTestGame(ctx context.Context, opts Options) (*TestGame, error) {
	opts = opts.withDefaults()
	if opts.Scene == nil {
		return nil, fmt.Errorf("headless: %w", engine.ErrNoScene)
	}
	b := &bootstrap{opts: opts}
	return b.run(ctx)
}

// MustNewTestGame is NewTestGame for tests: it fails t on error and
// destroys the game when t finishes.
func MustNewTestGame(t testing.TB, opts Options) *TestGame {
	t.Helper()
	tg, err := NewTestGame(context.Background(), opts)
	require.NoError(t, err, "bootstrap headless game")
	t.Cleanup(tg.Destroy)
	return tg
}

type bootstrap struct {
	opts   Options
	state  State
	game   *engine.Game
	logger *log.Logger
}

func (b *bootstrap) enter(s State, keyvals ...any) {
	b.state = s
	if b.logger != nil {
		b.logger.Debug("bootstrap", append([]any{"state", s}, keyvals...)...)
	}
}

func (b *bootstrap) run(ctx context.Context) (*TestGame, error) {
	deadline := time.NewTimer(b.opts.Timeout)
	defer deadline.Stop()

	b.enter(StateConstructing)
	cfg := b.opts.Config()
	b.game = engine.NewGame(cfg)
	b.logger = b.game.Logger().With("harness", "headless")

	// The loop must not run a frame past the one in which the scene
	// reaches running, so it is halted from inside that frame. Polling
	// below only observes the result.
	var halter engine.ListenerHandle
	b.enter(StateAwaitingTextures, "pending", b.game.Textures().Pending())
	err := b.game.Do(func() {
		halter = b.game.Events().On(engine.EventPostStep, func(...any) {
			if sceneRunning(b.game) {
				b.game.Loop().Halt()
			}
		})
		if detached, forced := forceTextureBoot(b.game); forced {
			b.logger.Debug("forced texture boot", "detached", detached)
		}
	})
	if err != nil {
		return nil, err
	}

	b.enter(StateAwaitingScene)
	poll := time.NewTicker(b.opts.PollInterval)
	defer poll.Stop()
	for {
		if fault := b.game.Loop().Fault(); fault != nil {
			b.game.Destroy()
			panic(fault)
		}
		var scene *engine.Scene
		if err := b.game.Do(func() {
			if sceneRunning(b.game) {
				scene = b.game.Scenes().First()
			}
		}); err != nil {
			return nil, err
		}
		if scene != nil {
			b.game.Loop().Stop()
			if err := b.game.Do(halter.Remove); err != nil {
				return nil, err
			}
			b.enter(StateReady, "scene", scene.Key, "frames", b.game.Loop().Frames())
			return &TestGame{Game: b.game, Scene: scene}, nil
		}

		select {
		case <-poll.C:
		case <-deadline.C:
			b.enter(StateTimedOut)
			b.game.Destroy()
			return nil, fmt.Errorf("headless: no running scene after %s: %w", b.opts.Timeout, ErrBootstrapTimeout)
		case <-ctx.Done():
			b.game.Destroy()
			return nil, fmt.Errorf("headless: bootstrap cancelled in state %s: %w", b.state, ctx.Err())
		}
	}
}

func sceneRunning(g *engine.Game) bool {
	s := g.Scenes().First()
	return s != nil && s.Status() >= engine.SceneRunning
}
