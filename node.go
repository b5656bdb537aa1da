package canopy

import "math"

// nodeIDCounter is a plain counter (no atomic, the core is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// HitTestFunc is a custom hit-test hook. It receives the point in the node's
// local space and returns the hit node, or nil.
type HitTestFunc func(n *Node, lx, ly float64) *Node

// RenderFunc draws extra content in the node's local space after its own
// render step.
type RenderFunc func(n *Node, s Surface) error

// Node is the scene graph element. A single flat struct is used for every
// node kind; kind-specific state lives in owned component pointers that are
// nil for kinds that do not use them.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	parent   *Node
	children []*Node
	stage    *Stage

	// Local position. Box kinds have X and Y computed by layout; set their
	// offsets through Set(AttrX(...), AttrY(...)) instead.
	X, Y float64

	alpha         float64
	visible       bool
	pointerEvents bool
	transform     Matrix

	// HitArea is the node's own hit-test area in local space. Nil means the
	// node itself is never hit (its children still are).
	HitArea HitShape
	// ExtraRender runs after the node's own render step.
	ExtraRender RenderFunc
	// ExtraHitTest runs when neither children nor HitArea matched.
	ExtraHitTest HitTestFunc

	// Metadata
	UserData any
	EntityID uint32

	listeners []listenerRecord

	// Components
	Box   *Box
	Text  *TextContent
	Image *ImageContent
	Shape *Shape
	drag  *dragState

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.alpha = 1
	n.visible = true
	n.pointerEvents = true
	n.transform = Identity
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// --- Accessors ---

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Stage returns the stage the node is attached to, or nil.
func (n *Node) Stage() *Stage { return n.stage }

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node { return n.children }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// ChildAt returns the child at index, or nil when out of range.
func (n *Node) ChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	return n.children[index]
}

// Alpha returns the node's own alpha in [0, 1].
func (n *Node) Alpha() float64 { return n.alpha }

// Visible reports whether the node is visible.
func (n *Node) Visible() bool { return n.visible }

// PointerEvents reports whether the node participates in hit-testing.
func (n *Node) PointerEvents() bool { return n.pointerEvents }

// IsDisposed reports whether Remove has destroyed this node.
func (n *Node) IsDisposed() bool { return n.disposed }

// --- Property setters ---

// SetPosition moves the node. NaN or infinite coordinates are ignored.
func (n *Node) SetPosition(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	if n.Box != nil {
		n.Box.setOffset(x, y)
		return
	}
	n.X, n.Y = x, y
	n.Repaint()
}

// SetAlpha sets the node's alpha, clamped to [0, 1]. NaN is ignored.
func (n *Node) SetAlpha(a float64) {
	if math.IsNaN(a) {
		return
	}
	n.alpha = clamp01(a)
	n.Repaint()
}

// SetVisible shows or hides the node and its subtree.
func (n *Node) SetVisible(v bool) {
	if n.visible == v {
		return
	}
	n.visible = v
	n.Repaint()
}

// SetPointerEvents enables or disables hit-testing for the node's subtree.
func (n *Node) SetPointerEvents(v bool) {
	n.pointerEvents = v
}

// Repaint requests a redraw of the stage the node belongs to. Requests made
// before the next frame collapse into a single redraw. No-op when detached.
func (n *Node) Repaint() {
	if n.stage != nil {
		n.stage.repaint = true
	}
}

// --- Tree manipulation ---

// AppendChild appends children in order. A child that already has a parent
// is detached from it first. Nil children, disposed nodes, stages and
// children that would create a cycle are ignored.
func (n *Node) AppendChild(children ...*Node) {
	for _, child := range children {
		n.AppendChildAt(child, len(n.children))
	}
}

// AppendChildAt inserts child at index, clamped to [0, NumChildren()].
// Same reparenting and validation rules as AppendChild.
func (n *Node) AppendChildAt(child *Node, index int) {
	if !n.canAdopt(child) {
		return
	}
	if child.parent != nil {
		if child.parent == n {
			if i := n.ChildIndex(child); i < index {
				index--
			}
		}
		child.parent.RemoveChild(child)
	}
	if index < 0 {
		index = 0
	}
	if index > len(n.children) {
		index = len(n.children)
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if n.Box != nil {
		n.Box.zAppend(child)
	}
	if n.stage != nil {
		if n.stage.debug {
			n.stage.debugCheckTreeDepth(child)
			n.stage.debugCheckChildCount(n)
		}
		child.attach(n.stage)
		n.childAdded(child)
	}
	n.Repaint()
}

func (n *Node) canAdopt(child *Node) bool {
	if child == nil || child.disposed || n.disposed || child.Type == NodeTypeStage {
		return false
	}
	return !isAncestor(child, n)
}

// RemoveChild detaches child from this node. No-op when child is not a
// child of this node.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	n.RemoveChildAt(n.ChildIndex(child))
}

// RemoveChildAt detaches and returns the child at index. Returns nil when the
// index is out of range.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	child := n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.parent = nil
	if n.Box != nil {
		n.Box.zRemove(child)
	}
	n.Repaint()
	if child.stage != nil {
		child.detach()
		n.childRemoved()
	}
	return child
}

// RemoveChildren detaches all children from this node.
// Children are NOT destroyed.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.RemoveChildAt(len(n.children) - 1)
	}
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.RemoveChild(n)
}

// SetChildIndex moves child to a new index among its siblings. The index is
// clamped to the valid range.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child == nil || child.parent != n {
		return
	}
	nc := len(n.children)
	if index < 0 {
		index = 0
	}
	if index >= nc {
		index = nc - 1
	}
	oldIndex := n.ChildIndex(child)
	if oldIndex == index {
		return
	}
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
	if n.stage != nil {
		n.childRemoved()
	}
	n.Repaint()
}

// ChildIndex returns the index of child, or -1.
func (n *Node) ChildIndex(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Contains reports whether other is this node or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	return other != nil && isAncestor(n, other)
}

// Depth returns the number of ancestors between the node and the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// --- Destruction ---

// Remove detaches the node from its parent and destroys its subtree: every
// descendant is detached and every listener, locked or not, is cleared so
// no callback can reach a torn-down subtree.
func (n *Node) Remove() {
	if n.disposed {
		return
	}
	if n.Type == NodeTypeStage && n.stage != nil {
		n.stage.Remove()
		return
	}
	n.RemoveFromParent()
	n.destroy()
}

func (n *Node) destroy() {
	for _, child := range n.children {
		child.parent = nil
		child.destroy()
	}
	n.children = nil
	n.listeners = nil
	n.disposed = true
	n.HitArea = nil
	n.ExtraRender = nil
	n.ExtraHitTest = nil
	n.UserData = nil
	n.DisableDrag()
	if n.Box != nil {
		n.Box.dispose()
	}
	if n.Image != nil {
		n.Image.dispose()
	}
}

// --- Stage membership ---

// attach propagates the stage reference top-down, resolves styles, then
// fires added_to_stage through the subtree and lays it out once.
func (n *Node) attach(s *Stage) {
	n.setStage(s)
	n.fireAdded()
}

func (n *Node) setStage(s *Stage) {
	n.stage = s
	s.register(n)
	if n.Box != nil {
		n.Box.resolveStyle()
	}
	for _, child := range n.children {
		child.setStage(s)
	}
}

func (n *Node) fireAdded() {
	if n.stage == nil {
		return
	}
	n.Dispatch(NewEvent(EventAddedToStage, false))
	for _, child := range n.children {
		child.fireAdded()
	}
	if n.Image != nil {
		n.Image.load()
	}
}

// detach clears the stage reference through the subtree.
func (n *Node) detach() {
	s := n.stage
	if s == nil {
		return
	}
	n.clearStage(s)
	n.Dispatch(NewEvent(EventRemovedFromStage, false))
}

func (n *Node) clearStage(s *Stage) {
	s.unregister(n)
	n.stage = nil
	if n.Box != nil {
		n.Box.stopAnimations()
	}
	for _, child := range n.children {
		child.clearStage(s)
	}
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
