package engine

import (
	"errors"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	// ErrDestroyed is returned by operations on a destroyed game.
	ErrDestroyed = errors.New("willow: game destroyed")
	// ErrNoScene is returned when a game that needs a scene has none
	// configured.
	ErrNoScene = errors.New("willow: no scene configured")
)

// RendererType selects how frames are presented.
type RendererType uint8

const (
	// RendererCanvas draws through Ebitengine. Frames are driven by Run.
	RendererCanvas RendererType = iota
	// RendererHeadless never draws and has no image decoding backend. Frames
	// are driven by the game's own loop goroutine or by Step.
	RendererHeadless
)

func (r RendererType) String() string {
	switch r {
	case RendererCanvas:
		return "canvas"
	case RendererHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// Config configures a Game. Zero values are replaced by defaults in NewGame.
type Config struct {
	Title    string
	Width    int
	Height   int
	Renderer RendererType
	// Banner prints a one-line startup banner when the game starts.
	Banner bool
	// Audio records whether the game wants sound. There is no mixer; the flag
	// is exposed through Game.AudioEnabled for scenes that branch on it.
	Audio bool
	// FPS is the target frame rate of the autonomous loop.
	FPS             float64
	BackgroundColor Color
	DragDeadZone    float64
	// Debug enables tree-size warnings.
	Debug bool

	// Scene is started automatically once textures are ready.
	Scene SceneDef
	// Loader decodes boot textures. Defaults to DecodeLoader for the canvas
	// renderer; the headless renderer has none.
	Loader ImageLoader
	Logger *log.Logger
}

// DefaultConfig returns the configuration NewGame fills zero fields from.
func DefaultConfig() Config {
	return Config{
		Title:        "willow",
		Width:        800,
		Height:       600,
		Renderer:     RendererCanvas,
		Banner:       true,
		Audio:        true,
		FPS:          60,
		DragDeadZone: defaultDragDeadZone,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.DragDeadZone <= 0 {
		c.DragDeadZone = d.DragDeadZone
	}
	if c.Loader == nil {
		if c.Renderer == RendererHeadless {
			c.Loader = nullLoader{}
		} else {
			c.Loader = DecodeLoader{}
		}
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "willow",
			Level:  log.WarnLevel,
		})
	}
	return c
}

// Game is one engine instance: textures, scenes, input, and the frame loop.
//
// All engine state is guarded by a single lock. Frames run with the lock
// held, so code called from inside a frame (scene hooks, node callbacks,
// event listeners) must not call Step, Do, or Destroy.
type Game struct {
	ID     string
	Config Config

	mu       sync.Mutex
	logger   *log.Logger
	events   *EventEmitter
	textures *TextureManager
	scenes   *SceneManager
	input    *InputManager
	loop     *Loop
	renderer renderer

	started   bool
	destroyed bool
}

// NewGame creates a game and boots its texture manager. The game starts, and
// its first scene is queued, once EventTexturesReady fires.
func NewGame(cfg Config) *Game {
	cfg = cfg.withDefaults()
	id := uuid.NewString()
	g := &Game{
		ID:     id,
		Config: cfg,
		logger: cfg.Logger.With("game", id[:8]),
		events: NewEventEmitter(),
	}
	g.textures = newTextureManager(g.events, cfg.Loader, g.logger)
	g.scenes = newSceneManager(g)
	g.input = newInputManager(cfg.Renderer == RendererCanvas)
	g.input.Keyboard.dispatch = g.dispatchKey
	g.loop = newLoop(cfg.FPS, &g.mu, g.step)
	if cfg.Renderer == RendererHeadless {
		g.renderer = headlessRenderer{}
	} else {
		g.renderer = newCanvasRenderer(g)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.boot()
	return g
}

func (g *Game) boot() {
	g.events.Once(EventTexturesReady, func(...any) { g.start() })
	g.events.Emit(EventBoot)
	g.logger.Debug("booting", "renderer", g.Config.Renderer, "size", [2]int{g.Config.Width, g.Config.Height})
	g.textures.boot()
}

// start runs once textures are ready: it queues the configured scene and,
// for the headless renderer, launches the loop goroutine.
func (g *Game) start() {
	if g.started || g.destroyed {
		return
	}
	g.started = true
	if g.Config.Banner {
		g.logger.Print("willow", "renderer", g.Config.Renderer, "audio", g.Config.Audio)
	}
	if g.Config.Scene != nil {
		g.scenes.Add(g.Config.Scene, true)
	}
	g.events.Emit(EventReady)
	if g.Config.Renderer == RendererHeadless {
		g.loop.start()
		g.logger.Debug("loop started", "fps", g.Config.FPS)
	}
}

// step runs one frame with the lock held.
func (g *Game) step(time, delta float64) {
	if g.destroyed {
		return
	}
	g.events.Emit(EventPreStep, time, delta)
	g.input.update()
	g.events.Emit(EventStep, time, delta)
	g.scenes.update(time, delta)
	g.events.Emit(EventPostStep, time, delta)

	g.renderer.preRender()
	g.events.Emit(EventPreRender, time, delta)
	g.scenes.render(g.renderer)
	g.renderer.postRender()
	g.events.Emit(EventPostRender, time, delta)
}

// Step runs exactly one frame at the given loop time with the given delta,
// both in milliseconds, and returns when the frame is complete.
func (g *Game) Step(time, delta float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return ErrDestroyed
	}
	g.loop.advance(time, delta)
	g.step(time, delta)
	return nil
}

// Do runs fn with the game lock held, serialized with frames.
func (g *Game) Do(fn func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return ErrDestroyed
	}
	fn()
	return nil
}

// Started reports whether the game passed texture boot and queued its scene.
func (g *Game) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}

// Destroyed reports whether Destroy has been called.
func (g *Game) Destroyed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyed
}

// Destroy stops the loop, shuts down every scene, releases all textures, and
// removes every listener. It is idempotent.
func (g *Game) Destroy() {
	g.loop.Stop()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return
	}
	g.events.Emit(EventDestroy)
	g.scenes.destroy()
	g.textures.destroy()
	g.input.reset()
	g.renderer.destroy()
	g.events.RemoveAll("")
	g.destroyed = true
	g.logger.Debug("destroyed", "frames", g.loop.Frames())
}

// Events returns the game's event emitter.
func (g *Game) Events() *EventEmitter { return g.events }

// Textures returns the texture manager.
func (g *Game) Textures() *TextureManager { return g.textures }

// Scenes returns the scene manager.
func (g *Game) Scenes() *SceneManager { return g.scenes }

// Input returns the input manager.
func (g *Game) Input() *InputManager { return g.input }

// Loop returns the frame loop.
func (g *Game) Loop() *Loop { return g.loop }

// Logger returns the game's logger.
func (g *Game) Logger() *log.Logger { return g.logger }

// AudioEnabled reports the Audio config flag.
func (g *Game) AudioEnabled() bool { return g.Config.Audio }

func (g *Game) dispatchKey(evt KeyEvent) {
	for _, s := range g.scenes.scenes {
		if s.status != SceneRunning {
			continue
		}
		if evt.Down {
			s.events.Emit(EventKeyDown, evt)
			s.events.Emit(KeyDownEvent(evt.Key), evt)
		} else {
			s.events.Emit(EventKeyUp, evt)
			s.events.Emit(KeyUpEvent(evt.Key), evt)
		}
	}
}
