package engine

import (
	"fmt"
	"math"

	"github.com/tanema/gween"
)

// SceneStatus is a scene's lifecycle state. Values increase monotonically
// through boot; a scene is updated only while its status is SceneRunning.
type SceneStatus int

const (
	ScenePending SceneStatus = iota
	SceneInit
	SceneStart
	SceneLoading
	SceneCreating
	SceneRunning
	ScenePaused
	SceneSleeping
	SceneShutdown
	SceneDestroyed
)

var sceneStatusNames = [...]string{
	"pending", "init", "start", "loading", "creating",
	"running", "paused", "sleeping", "shutdown", "destroyed",
}

func (s SceneStatus) String() string {
	if s < 0 || int(s) >= len(sceneStatusNames) {
		return fmt.Sprintf("SceneStatus(%d)", int(s))
	}
	return sceneStatusNames[s]
}

// SceneDef is a scene definition. Create builds the scene's node tree once
// the scene has finished loading. A definition may also implement SceneKeyer,
// SceneIniter, ScenePreloader, and SceneUpdater.
type SceneDef interface {
	Create(s *Scene)
}

// SceneKeyer names a scene definition.
type SceneKeyer interface {
	SceneKey() string
}

// SceneIniter runs before preload.
type SceneIniter interface {
	Init(s *Scene)
}

// ScenePreloader runs between init and create.
type ScenePreloader interface {
	Preload(s *Scene)
}

// SceneUpdater runs once per frame while the scene is running. time is the
// loop's elapsed time and delta the frame duration, both in milliseconds.
type SceneUpdater interface {
	Update(s *Scene, time, delta float64)
}

// SceneConfig is an inline scene definition built from plain functions. Nil
// hooks are skipped.
type SceneConfig struct {
	Key       string
	OnInit    func(s *Scene)
	OnPreload func(s *Scene)
	OnCreate  func(s *Scene)
	OnUpdate  func(s *Scene, time, delta float64)
}

// SceneKey implements SceneKeyer.
func (c SceneConfig) SceneKey() string { return c.Key }

// Init implements SceneIniter.
func (c SceneConfig) Init(s *Scene) {
	if c.OnInit != nil {
		c.OnInit(s)
	}
}

// Preload implements ScenePreloader.
func (c SceneConfig) Preload(s *Scene) {
	if c.OnPreload != nil {
		c.OnPreload(s)
	}
}

// Create implements SceneDef.
func (c SceneConfig) Create(s *Scene) {
	if c.OnCreate != nil {
		c.OnCreate(s)
	}
}

// Update implements SceneUpdater.
func (c SceneConfig) Update(s *Scene, time, delta float64) {
	if c.OnUpdate != nil {
		c.OnUpdate(s, time, delta)
	}
}

// Scene owns a node tree, cameras, tweens, and the per-scene pointer state.
type Scene struct {
	Key string

	def    SceneDef
	game   *Game
	status SceneStatus
	events *EventEmitter
	root   *Node

	cameras []*Camera
	tweens  []*Tween
	input   sceneInput
	visible bool
}

func newScene(g *Game, key string, def SceneDef) *Scene {
	root := NewContainer("root")
	root.Interactable = true
	return &Scene{
		Key:     key,
		def:     def,
		game:    g,
		events:  NewEventEmitter(),
		root:    root,
		input:   sceneInput{dragDeadZone: g.Config.DragDeadZone},
		visible: true,
	}
}

// Status returns the scene's lifecycle status.
func (s *Scene) Status() SceneStatus { return s.status }

// Game returns the owning game.
func (s *Scene) Game() *Game { return s.game }

// Events returns the scene's event emitter.
func (s *Scene) Events() *EventEmitter { return s.events }

// Root returns the scene's root container node.
func (s *Scene) Root() *Node { return s.root }

// Textures returns the game's texture manager.
func (s *Scene) Textures() *TextureManager { return s.game.textures }

// Input returns the game's input manager.
func (s *Scene) Input() *InputManager { return s.game.input }

// Def returns the definition the scene was created from.
func (s *Scene) Def() SceneDef { return s.def }

// Add appends n to the root container and returns it.
func (s *Scene) Add(n *Node) *Node {
	s.root.AddChild(n)
	if s.game.Config.Debug {
		debugCheckTreeDepth(s.game.logger, n)
		debugCheckChildCount(s.game.logger, s.root)
	}
	return n
}

// AddRectangle adds a solid rectangle centered on (x, y).
func (s *Scene) AddRectangle(name string, x, y, w, h float64, c Color) *Node {
	return s.Add(NewRectangle(name, x, y, w, h, c))
}

// AddContainer adds an empty container at (x, y).
func (s *Scene) AddContainer(name string, x, y float64) *Node {
	n := NewContainer(name)
	n.X, n.Y = x, y
	return s.Add(n)
}

// AddSprite adds a sprite centered on (x, y) showing the texture under key.
func (s *Scene) AddSprite(name string, x, y float64, key string) *Node {
	return s.Add(NewSprite(name, x, y, s.game.textures.Get(key)))
}

// Find returns the first node with the given name, or nil.
func (s *Scene) Find(name string) *Node {
	return s.root.Find(name)
}

// NewCamera creates a camera with the given viewport and adds it to the scene.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	cam := newCamera(viewport)
	s.cameras = append(s.cameras, cam)
	return cam
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// SetVisible controls whether the scene is rendered.
func (s *Scene) SetVisible(v bool) { s.visible = v }

// step runs one frame of the scene's update pipeline.
func (s *Scene) step(time, delta float64) {
	dt := delta / 1000

	updateWorldTransform(s.root, identityTransform, false)
	s.events.Emit(EventPreUpdate, time, delta)
	s.processPointer()

	s.events.Emit(EventUpdate, time, delta)
	if u, ok := s.def.(SceneUpdater); ok {
		u.Update(s, time, delta)
	}

	var updaters []*Node
	walk(s.root, func(n *Node) {
		if n.OnUpdate != nil {
			updaters = append(updaters, n)
		}
	})
	for _, n := range updaters {
		if !n.disposed && n.OnUpdate != nil {
			n.OnUpdate(dt)
		}
	}

	s.updateTweens(float32(dt))
	for _, cam := range s.cameras {
		cam.update(float32(dt))
	}
	s.events.Emit(EventPostUpdate, time, delta)
}

func (s *Scene) shutdown() {
	s.status = SceneShutdown
	s.events.Emit(EventShutdown, s)
	s.tweens = nil
	s.cameras = nil
	s.input = sceneInput{}
	s.root.Dispose()
	s.events.RemoveAll("")
	s.status = SceneDestroyed
}

// primaryCamera returns the first camera, or nil for an identity view.
func (s *Scene) primaryCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0]
}

// screenToWorld converts screen coordinates using the primary camera.
func (s *Scene) screenToWorld(sx, sy float64) (float64, float64) {
	if cam := s.primaryCamera(); cam != nil {
		return cam.ScreenToWorld(sx, sy)
	}
	return sx, sy
}

// SceneManager owns the game's scenes and drives their lifecycle.
type SceneManager struct {
	game    *Game
	scenes  []*Scene
	pending []*Scene
}

func newSceneManager(g *Game) *SceneManager {
	return &SceneManager{game: g}
}

// Add registers a scene definition. Auto-started scenes are created on the
// next frame.
func (m *SceneManager) Add(def SceneDef, autoStart bool) *Scene {
	key := ""
	if k, ok := def.(SceneKeyer); ok {
		key = k.SceneKey()
	}
	if key == "" {
		key = fmt.Sprintf("scene%d", len(m.scenes))
	}
	s := newScene(m.game, key, def)
	m.scenes = append(m.scenes, s)
	if autoStart {
		m.pending = append(m.pending, s)
	}
	return s
}

// Start queues a registered scene for creation. No-op for scenes already
// past the pending state.
func (m *SceneManager) Start(key string) {
	s := m.Get(key)
	if s == nil || s.status != ScenePending {
		return
	}
	for _, p := range m.pending {
		if p == s {
			return
		}
	}
	m.pending = append(m.pending, s)
}

// Scenes returns every registered scene in registration order. The returned
// slice MUST NOT be mutated.
func (m *SceneManager) Scenes() []*Scene { return m.scenes }

// First returns the first registered scene, or nil.
func (m *SceneManager) First() *Scene {
	if len(m.scenes) == 0 {
		return nil
	}
	return m.scenes[0]
}

// Get returns the scene registered under key, or nil.
func (m *SceneManager) Get(key string) *Scene {
	for _, s := range m.scenes {
		if s.Key == key {
			return s
		}
	}
	return nil
}

// Pause stops updating a running scene.
func (m *SceneManager) Pause(key string) {
	if s := m.Get(key); s != nil && s.status == SceneRunning {
		s.status = ScenePaused
	}
}

// Resume restarts updates of a paused or sleeping scene.
func (m *SceneManager) Resume(key string) {
	if s := m.Get(key); s != nil && (s.status == ScenePaused || s.status == SceneSleeping) {
		s.status = SceneRunning
		s.visible = true
	}
}

// Sleep stops updating and rendering a running scene.
func (m *SceneManager) Sleep(key string) {
	if s := m.Get(key); s != nil && s.status == SceneRunning {
		s.status = SceneSleeping
		s.visible = false
	}
}

// processQueue boots every pending scene through init, preload, and create.
func (m *SceneManager) processQueue() {
	if len(m.pending) == 0 {
		return
	}
	queue := m.pending
	m.pending = nil
	for _, s := range queue {
		m.bootScene(s)
	}
}

func (m *SceneManager) bootScene(s *Scene) {
	logger := m.game.logger.With("scene", s.Key)
	s.status = SceneInit
	if i, ok := s.def.(SceneIniter); ok {
		i.Init(s)
	}
	s.status = SceneStart
	s.status = SceneLoading
	if p, ok := s.def.(ScenePreloader); ok {
		p.Preload(s)
	}
	s.status = SceneCreating
	s.def.Create(s)
	s.status = SceneRunning
	s.events.Emit(EventCreate, s)
	logger.Debug("scene running")
}

// update steps every running scene. Scenes booted by this frame's queue
// start updating on the next frame.
func (m *SceneManager) update(time, delta float64) {
	running := make([]*Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		if s.status == SceneRunning {
			running = append(running, s)
		}
	}
	m.processQueue()
	for _, s := range running {
		if s.status == SceneRunning {
			s.step(time, delta)
		}
	}
}

func (m *SceneManager) render(r renderer) {
	for _, s := range m.scenes {
		if s.visible && (s.status == SceneRunning || s.status == ScenePaused) {
			r.render(s)
		}
	}
}

func (m *SceneManager) destroy() {
	for _, s := range m.scenes {
		if s.status != SceneDestroyed {
			s.shutdown()
		}
	}
	m.scenes = nil
	m.pending = nil
}

// --- Tweens ---

// Tween interpolates a value over time and hands each step to an apply
// function.
type Tween struct {
	tw         *gween.Tween
	apply      func(v float64)
	done       bool
	OnComplete func()
}

// Done reports whether the tween has finished or was stopped.
func (t *Tween) Done() bool { return t.done }

// Stop ends the tween without applying further values.
func (t *Tween) Stop() { t.done = true }

func (s *Scene) updateTweens(dt float32) {
	// Tweens started by apply or OnComplete land past n and first update on
	// the next call.
	n := len(s.tweens)
	live := make([]*Tween, 0, n)
	for i := 0; i < n; i++ {
		t := s.tweens[i]
		if t.done {
			continue
		}
		v, finished := t.tw.Update(dt)
		t.apply(float64(v))
		if finished {
			t.done = true
			if t.OnComplete != nil {
				t.OnComplete()
			}
			continue
		}
		live = append(live, t)
	}
	s.tweens = append(live, s.tweens[n:]...)
}

// Tweens returns the number of active tweens.
func (s *Scene) Tweens() int { return len(s.tweens) }

// Tween starts interpolating from -> to over duration seconds.
func (s *Scene) Tween(from, to float64, duration float32, easeFn EaseFunc, apply func(v float64)) *Tween {
	t := &Tween{tw: newTweener(from, to, duration, easeFn), apply: apply}
	s.tweens = append(s.tweens, t)
	return t
}

// MoveTo tweens a node's position to (x, y) over duration seconds.
func (s *Scene) MoveTo(n *Node, x, y float64, duration float32, easeFn EaseFunc) *Tween {
	fromX, fromY := n.X, n.Y
	return s.Tween(0, 1, duration, easeFn, func(p float64) {
		n.SetPosition(fromX+(x-fromX)*p, fromY+(y-fromY)*p)
	})
}

// FadeTo tweens a node's alpha over duration seconds.
func (s *Scene) FadeTo(n *Node, alpha float64, duration float32, easeFn EaseFunc) *Tween {
	return s.Tween(n.Alpha, alpha, duration, easeFn, func(a float64) {
		n.Alpha = math.Max(0, math.Min(1, a))
	})
}
