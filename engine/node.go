package engine

import (
	"sort"
	"sync/atomic"
)

// PointerContext carries pointer event data.
type PointerContext struct {
	Node      *Node
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// DragContext carries drag event data.
type DragContext struct {
	Node      *Node
	GlobalX   float64
	GlobalY   float64
	StartX    float64
	StartY    float64
	DeltaX    float64
	DeltaY    float64
	Button    MouseButton
	Modifiers KeyModifiers
}

var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// Node is the scene graph element. A single flat struct is used for all node
// types.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Origin is a fraction of the node's size: 0.5, 0.5
	// places (X, Y) at the center of the node.
	X, Y             float64
	Width, Height    float64
	OriginX, OriginY float64
	ScaleX, ScaleY   float64
	Rotation         float64

	worldTransform [6]float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool

	// Ordering
	ZIndex int

	// Appearance
	Color      Color
	TextureKey string

	// Metadata
	UserData any

	// Per-node callbacks (nil by default)
	OnUpdate       func(dt float64)
	OnPointerDown  func(PointerContext)
	OnPointerUp    func(PointerContext)
	OnPointerMove  func(PointerContext)
	OnPointerEnter func(PointerContext)
	OnPointerLeave func(PointerContext)
	OnClick        func(PointerContext)
	OnDragStart    func(DragContext)
	OnDrag         func(DragContext)
	OnDragEnd      func(DragContext)

	disposed       bool
	childrenSorted bool
	sortedChildren []*Node
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.transformDirty = true
	n.childrenSorted = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewRectangle creates a solid rectangle centered on (x, y).
func NewRectangle(name string, x, y, width, height float64, c Color) *Node {
	n := &Node{
		Name:    name,
		Type:    NodeTypeRectangle,
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		OriginX: 0.5,
		OriginY: 0.5,
	}
	nodeDefaults(n)
	n.Color = c
	return n
}

// NewSprite creates a sprite node centered on (x, y) that displays the texture
// stored under key. The size is taken from the texture when it exists.
func NewSprite(name string, x, y float64, tex *Texture) *Node {
	n := &Node{
		Name:    name,
		Type:    NodeTypeSprite,
		X:       x,
		Y:       y,
		OriginX: 0.5,
		OriginY: 0.5,
	}
	nodeDefaults(n)
	if tex != nil {
		n.TextureKey = tex.Key
		n.Width = float64(tex.Width)
		n.Height = float64(tex.Height)
	}
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("willow: cannot add nil child")
	}
	if n.disposed || child.disposed {
		panic("willow: AddChild on disposed node")
	}
	if isAncestor(child, n) {
		panic("willow: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("willow: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Find returns the first descendant (depth-first, including n) with the given
// name, or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// Label returns the node's name. It lets diagnostics name a node without
// depending on its concrete type.
func (n *Node) Label() string {
	return n.Name
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.UserData = nil
	n.OnUpdate = nil
	n.OnPointerDown = nil
	n.OnPointerUp = nil
	n.OnPointerMove = nil
	n.OnPointerEnter = nil
	n.OnPointerLeave = nil
	n.OnClick = nil
	n.OnDragStart = nil
	n.OnDrag = nil
	n.OnDragEnd = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// paintOrder returns children sorted by ZIndex, stable on insertion order.
func (n *Node) paintOrder() []*Node {
	if n.childrenSorted && n.sortedChildren == nil {
		return n.children
	}
	if !n.childrenSorted {
		n.sortedChildren = append(n.sortedChildren[:0], n.children...)
		sort.SliceStable(n.sortedChildren, func(i, j int) bool {
			return n.sortedChildren[i].ZIndex < n.sortedChildren[j].ZIndex
		})
		n.childrenSorted = true
	}
	return n.sortedChildren
}

// walk visits n and its descendants depth-first in paint order.
func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.paintOrder() {
		walk(c, fn)
	}
}
