package engine

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const defaultDragDeadZone = 4.0 // pixels

// Scene-level input events. Pointer events carry a PointerContext, drag
// events a DragContext, key events a KeyEvent.
const (
	EventPointerDown  = "pointerdown"
	EventPointerUp    = "pointerup"
	EventPointerMove  = "pointermove"
	EventPointerOver  = "pointerover"
	EventPointerOut   = "pointerout"
	EventClick        = "click"
	EventDragStart    = "dragstart"
	EventDrag         = "drag"
	EventDragEnd      = "dragend"
	EventKeyDown      = "keydown"
	EventKeyUp        = "keyup"
	eventKeyDownShort = "keydown-"
	eventKeyUpShort   = "keyup-"
)

// KeyDownEvent returns the per-key event name emitted when key is pressed,
// e.g. "keydown-Space".
func KeyDownEvent(key ebiten.Key) string { return eventKeyDownShort + key.String() }

// KeyUpEvent returns the per-key event name emitted when key is released.
func KeyUpEvent(key ebiten.Key) string { return eventKeyUpShort + key.String() }

// ActivePointer is the primary pointer in screen coordinates.
type ActivePointer struct {
	X, Y         float64
	PrevX, PrevY float64
	IsDown       bool
	Button       MouseButton
	// Buttons is a bitmask of held buttons, bit n for MouseButton n.
	Buttons   uint8
	Modifiers KeyModifiers
}

// PointerEvent is one queued pointer sample in screen coordinates.
type PointerEvent struct {
	X, Y    float64
	Pressed bool
	Button  MouseButton
}

// InputManager owns the primary pointer and the keyboard. Queued pointer
// events are consumed one per frame; with an empty queue the canvas renderer
// samples the real mouse and the headless renderer leaves the pointer alone.
type InputManager struct {
	Pointer  ActivePointer
	Keyboard *KeyboardManager

	queue     []PointerEvent
	pollMouse bool
}

func newInputManager(pollDevices bool) *InputManager {
	return &InputManager{
		Keyboard:  newKeyboardManager(pollDevices),
		pollMouse: pollDevices,
	}
}

// Enqueue appends a pointer event consumed on a later frame, one per frame.
func (im *InputManager) Enqueue(evt PointerEvent) {
	im.queue = append(im.queue, evt)
}

// Queued returns the number of pointer events waiting to be consumed.
func (im *InputManager) Queued() int {
	return len(im.queue)
}

// update applies the next queued pointer event, or samples the device.
func (im *InputManager) update() {
	im.Keyboard.update()
	im.Pointer.Modifiers = im.Keyboard.Modifiers()

	if len(im.queue) > 0 {
		evt := im.queue[0]
		copy(im.queue, im.queue[1:])
		im.queue = im.queue[:len(im.queue)-1]
		im.apply(evt)
		return
	}
	if im.pollMouse {
		im.apply(sampleMouse())
	}
}

func (im *InputManager) apply(evt PointerEvent) {
	p := &im.Pointer
	p.PrevX, p.PrevY = p.X, p.Y
	p.X, p.Y = evt.X, evt.Y
	p.IsDown = evt.Pressed
	p.Button = evt.Button
	if evt.Pressed {
		p.Buttons = 1 << evt.Button
	} else {
		p.Buttons = 0
	}
}

func sampleMouse() PointerEvent {
	mx, my := ebiten.CursorPosition()
	evt := PointerEvent{X: float64(mx), Y: float64(my)}
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		evt.Pressed, evt.Button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		evt.Pressed, evt.Button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		evt.Pressed, evt.Button = true, MouseButtonMiddle
	}
	return evt
}

func (im *InputManager) reset() {
	im.queue = nil
	im.Pointer = ActivePointer{}
	im.Keyboard.reset()
}

// --- Keyboard ---

// KeyEvent is one key transition.
type KeyEvent struct {
	Key       ebiten.Key
	Down      bool
	Modifiers KeyModifiers
}

// KeyboardManager buffers key transitions in Queue and dispatches them to
// every running scene when Process is called. Process runs automatically at
// the start of each frame.
type KeyboardManager struct {
	Queue []KeyEvent

	down        map[ebiten.Key]bool
	pollDevices bool
	keyBuf      []ebiten.Key
	dispatch    func(KeyEvent)
}

func newKeyboardManager(pollDevices bool) *KeyboardManager {
	return &KeyboardManager{
		down:        make(map[ebiten.Key]bool),
		pollDevices: pollDevices,
	}
}

// IsDown reports whether key is held according to processed events.
func (k *KeyboardManager) IsDown(key ebiten.Key) bool {
	return k.down[key]
}

// Modifiers returns the modifier keys currently held.
func (k *KeyboardManager) Modifiers() KeyModifiers {
	var mods KeyModifiers
	if k.down[ebiten.KeyShift] || k.down[ebiten.KeyShiftLeft] || k.down[ebiten.KeyShiftRight] {
		mods |= ModShift
	}
	if k.down[ebiten.KeyControl] || k.down[ebiten.KeyControlLeft] || k.down[ebiten.KeyControlRight] {
		mods |= ModCtrl
	}
	if k.down[ebiten.KeyAlt] || k.down[ebiten.KeyAltLeft] || k.down[ebiten.KeyAltRight] {
		mods |= ModAlt
	}
	if k.down[ebiten.KeyMeta] || k.down[ebiten.KeyMetaLeft] || k.down[ebiten.KeyMetaRight] {
		mods |= ModMeta
	}
	return mods
}

// Process drains Queue, updating held-key state and emitting EventKeyDown /
// EventKeyUp plus the per-key events on every running scene. Repeated downs
// of a held key are delivered again.
func (k *KeyboardManager) Process() {
	for len(k.Queue) > 0 {
		evt := k.Queue[0]
		k.Queue = k.Queue[1:]
		if evt.Down {
			k.down[evt.Key] = true
		} else {
			delete(k.down, evt.Key)
		}
		evt.Modifiers = k.Modifiers()
		if k.dispatch != nil {
			k.dispatch(evt)
		}
	}
	k.Queue = nil
}

func (k *KeyboardManager) update() {
	if k.pollDevices {
		k.keyBuf = inpututil.AppendJustPressedKeys(k.keyBuf[:0])
		for _, key := range k.keyBuf {
			k.Queue = append(k.Queue, KeyEvent{Key: key, Down: true})
		}
		k.keyBuf = inpututil.AppendJustReleasedKeys(k.keyBuf[:0])
		for _, key := range k.keyBuf {
			k.Queue = append(k.Queue, KeyEvent{Key: key, Down: false})
		}
	}
	k.Process()
}

func (k *KeyboardManager) reset() {
	k.Queue = nil
	clear(k.down)
	k.dispatch = nil
}

// --- Per-scene pointer state machine ---

type sceneInput struct {
	down         bool
	startX       float64
	startY       float64
	lastX        float64
	lastY        float64
	hitNode      *Node
	hoverNode    *Node
	dragging     bool
	button       MouseButton
	dragDeadZone float64
	hitBuf       []*Node
}

// nodeContainsLocal tests whether (lx, ly) falls inside the node's local box.
// Containers are not hit-testable.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.Type == NodeTypeContainer || (n.Width == 0 && n.Height == 0) {
		return false
	}
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// collectInteractable walks the tree in painter order, appending interactable
// nodes to buf. Skips invisible or non-interactable subtrees.
func collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || !n.Interactable {
		return buf
	}
	if n.Type != NodeTypeContainer {
		buf = append(buf, n)
	}
	for _, child := range n.paintOrder() {
		buf = collectInteractable(child, buf)
	}
	return buf
}

// hitTest finds the topmost interactable node at (worldX, worldY).
func (s *Scene) hitTest(worldX, worldY float64) *Node {
	s.input.hitBuf = collectInteractable(s.root, s.input.hitBuf[:0])
	for i := len(s.input.hitBuf) - 1; i >= 0; i-- {
		n := s.input.hitBuf[i]
		lx, ly := n.WorldToLocal(worldX, worldY)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// NodeAt returns the topmost interactable node under the screen point
// (x, y), or nil.
func (s *Scene) NodeAt(x, y float64) *Node {
	updateWorldTransform(s.root, identityTransform, false)
	wx, wy := s.screenToWorld(x, y)
	return s.hitTest(wx, wy)
}

// processPointer runs the pointer state machine against the game's active
// pointer. Called from Scene.step after EventPreUpdate.
func (s *Scene) processPointer() {
	p := s.game.input.Pointer
	ps := &s.input
	wx, wy := s.screenToWorld(p.X, p.Y)
	mods := p.Modifiers

	target := s.hitTest(wx, wy)

	if target != ps.hoverNode {
		if ps.hoverNode != nil {
			s.firePointer(EventPointerOut, ps.hoverNode, ps.hoverNode.OnPointerLeave, wx, wy, p.Button, mods)
		}
		if target != nil {
			s.firePointer(EventPointerOver, target, target.OnPointerEnter, wx, wy, p.Button, mods)
		}
		ps.hoverNode = target
	}

	switch {
	case p.IsDown && !ps.down:
		ps.down = true
		ps.button = p.Button
		ps.startX, ps.startY = wx, wy
		ps.lastX, ps.lastY = wx, wy
		ps.hitNode = target
		ps.dragging = false
		s.firePointer(EventPointerDown, target, nodeCallback(target, func(n *Node) func(PointerContext) { return n.OnPointerDown }), wx, wy, ps.button, mods)

	case !p.IsDown && ps.down:
		if ps.dragging {
			s.fireDrag(EventDragEnd, ps.hitNode, wx, wy, wx-ps.lastX, wy-ps.lastY, mods)
		} else if ps.hitNode != nil && ps.hitNode == target {
			s.firePointer(EventClick, target, target.OnClick, wx, wy, ps.button, mods)
		}
		s.firePointer(EventPointerUp, target, nodeCallback(target, func(n *Node) func(PointerContext) { return n.OnPointerUp }), wx, wy, ps.button, mods)
		ps.down = false
		ps.hitNode = nil
		ps.dragging = false
		ps.lastX, ps.lastY = wx, wy

	case p.IsDown && ps.down:
		if wx != ps.lastX || wy != ps.lastY {
			if !ps.dragging {
				dx := wx - ps.startX
				dy := wy - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > ps.dragDeadZone {
					ps.dragging = true
					s.fireDrag(EventDragStart, ps.hitNode, wx, wy, wx-ps.startX, wy-ps.startY, mods)
				}
			}
			if ps.dragging {
				s.fireDrag(EventDrag, ps.hitNode, wx, wy, wx-ps.lastX, wy-ps.lastY, mods)
			}
		}
		ps.lastX, ps.lastY = wx, wy

	default:
		if wx != ps.lastX || wy != ps.lastY {
			s.firePointer(EventPointerMove, target, nodeCallback(target, func(n *Node) func(PointerContext) { return n.OnPointerMove }), wx, wy, p.Button, mods)
			ps.lastX, ps.lastY = wx, wy
		}
	}
}

func nodeCallback(n *Node, pick func(*Node) func(PointerContext)) func(PointerContext) {
	if n == nil {
		return nil
	}
	return pick(n)
}

func (s *Scene) firePointer(event string, n *Node, fn func(PointerContext), wx, wy float64, button MouseButton, mods KeyModifiers) {
	ctx := PointerContext{Node: n, GlobalX: wx, GlobalY: wy, Button: button, Modifiers: mods}
	if n != nil {
		ctx.LocalX, ctx.LocalY = n.WorldToLocal(wx, wy)
	}
	if fn != nil {
		fn(ctx)
	}
	s.events.Emit(event, ctx)
}

func (s *Scene) fireDrag(event string, n *Node, wx, wy, dx, dy float64, mods KeyModifiers) {
	ps := &s.input
	ctx := DragContext{
		Node:    n,
		GlobalX: wx, GlobalY: wy,
		StartX: ps.startX, StartY: ps.startY,
		DeltaX: dx, DeltaY: dy,
		Button:    ps.button,
		Modifiers: mods,
	}
	if n != nil {
		var fn func(DragContext)
		switch event {
		case EventDragStart:
			fn = n.OnDragStart
		case EventDrag:
			fn = n.OnDrag
		case EventDragEnd:
			fn = n.OnDragEnd
		}
		if fn != nil {
			fn(ctx)
		}
	}
	s.events.Emit(event, ctx)
}
