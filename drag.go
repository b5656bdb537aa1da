package canopy

// dragState tracks one draggable node. While a press that started on the
// node is held, moves anywhere on the stage reposition it.
type dragState struct {
	bounds Rect
	size   Vec2

	tracking       bool
	startX, startY float64
	touchX, touchY float64

	start     ListenerHandle
	move, end ListenerHandle
}

// EnableDrag makes the node draggable. The node's position is clamped so
// that a box of the given size, mapped through the node's transform, stays
// inside bounds (given in the parent's space). Calling it again replaces the
// previous bounds.
func (n *Node) EnableDrag(bounds Rect, size Vec2) {
	if n.disposed || n.Type == NodeTypeStage {
		return
	}
	n.DisableDrag()
	d := &dragState{bounds: bounds, size: size}
	n.drag = d
	d.start = n.On(EventTouchStart+".drag", func(ev *Event, _ ...any) bool {
		n.dragStart(ev)
		return true
	}, Locked())
}

// DisableDrag stops dragging and removes the drag listeners.
func (n *Node) DisableDrag() {
	d := n.drag
	if d == nil {
		return
	}
	d.start.Remove()
	d.release()
	n.drag = nil
}

// Draggable reports whether EnableDrag is in effect.
func (n *Node) Draggable() bool { return n.drag != nil }

func (d *dragState) release() {
	d.move.Remove()
	d.end.Remove()
	d.move, d.end = ListenerHandle{}, ListenerHandle{}
	d.tracking = false
}

func (n *Node) dragPosition() (float64, float64) {
	if n.Box != nil {
		return n.Box.offsetX, n.Box.offsetY
	}
	return n.X, n.Y
}

func (n *Node) dragStart(ev *Event) {
	d := n.drag
	s := n.stage
	if d == nil || s == nil || d.tracking {
		return
	}
	d.tracking = true
	d.startX, d.startY = n.dragPosition()
	d.touchX, d.touchY = n.dragPoint(ev)
	d.move = s.root.On(EventTouchMove+".drag", func(ev *Event, _ ...any) bool {
		n.dragMove(ev)
		return true
	}, Locked())
	d.end = s.root.On(EventTouchEnd+".drag", func(*Event, ...any) bool {
		d.release()
		return true
	}, Locked())
	s.dragging = append(s.dragging, n)
}

// endDrags releases every drag still tracking after a release, including
// those whose touchend was stopped before reaching the root.
func (s *Stage) endDrags() {
	for _, n := range s.dragging {
		if d := n.drag; d != nil && d.tracking {
			d.release()
		}
	}
	s.dragging = s.dragging[:0]
}

// dragPoint maps the event position into the parent's space, where the
// node's position lives.
func (n *Node) dragPoint(ev *Event) (float64, float64) {
	if n.parent == nil {
		return ev.X, ev.Y
	}
	return n.parent.WorldToLocal(ev.X, ev.Y)
}

func (n *Node) dragMove(ev *Event) {
	d := n.drag
	if d == nil || !d.tracking || n.stage == nil {
		return
	}
	px, py := n.dragPoint(ev)
	x := d.startX - d.touchX + px
	y := d.startY - d.touchY + py

	// The bounds apply to the laid-out position; a box's offset is relative
	// to its flow position.
	var flowX, flowY float64
	if b := n.Box; b != nil {
		flowX, flowY = n.X-b.offsetX, n.Y-b.offsetY
	}
	x, y = d.clamp(n.transform, x+flowX, y+flowY)
	n.SetPosition(x-flowX, y-flowY)
}

// clamp keeps (x, y) inside the bounds. The extent is the far corner of the
// drag size under m, so a scaled node stops at the same visual edge.
func (d *dragState) clamp(m Matrix, x, y float64) (float64, float64) {
	w, h := m.Apply(d.size.X, d.size.Y)
	x1, y1 := d.bounds.X, d.bounds.Y
	x2 := d.bounds.X + d.bounds.Width - w
	y2 := d.bounds.Y + d.bounds.Height - h
	minX, maxX := min(x1, x2), max(x1, x2)
	minY, maxY := min(y1, y2), max(y1, y2)
	return min(max(x, minX), maxX), min(max(y, minY), maxY)
}
