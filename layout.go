package canopy

import "math"

// Layout runs synchronously on the mutation that requires it. A box is laid
// out top-down (its width comes from its parent, its children are laid out
// against that width) and the change then propagates leaf to root: every
// ancestor box re-arranges its children and recomputes its content height.

// relayoutTree lays out every box in n's subtree.
func (n *Node) relayoutTree() {
	if n.stage == nil {
		return
	}
	if n.Box != nil {
		n.Box.layout()
		return
	}
	for _, child := range n.children {
		child.relayoutTree()
	}
}

// childAdded lays out a newly attached child and re-arranges n's ancestors.
func (n *Node) childAdded(child *Node) {
	child.relayoutTree()
	n.childrenChanged()
}

func (n *Node) childRemoved() {
	n.childrenChanged()
}

// childrenChanged re-arranges n (when it is a box) and every box above it.
func (n *Node) childrenChanged() {
	for p := n; p != nil && p.stage != nil; p = p.parent {
		if p.Box != nil {
			p.Box.arrange()
		}
	}
}

// relayout lays out the box's subtree and propagates the result upward.
func (b *Box) relayout() {
	n := b.node
	if n.stage == nil {
		return
	}
	b.layout()
	if n.parent != nil {
		n.parent.childrenChanged()
	}
}

// layout resolves the box's own size, lays out its children against it and
// arranges them.
func (b *Box) layout() {
	n := b.node
	if n.stage == nil {
		return
	}
	if b.style.Display != DisplayFlex {
		for _, child := range n.children {
			if child.Box != nil {
				child.Box.flexWSet, child.Box.flexHSet = false, false
			}
		}
	}
	b.resolveSize()
	b.placeFree()
	if n.Text != nil {
		n.Text.layout(b)
	}
	for _, child := range n.children {
		child.relayoutTree()
	}
	b.arrange()

	if !b.laidOut {
		b.laidOut = true
		if b.style.Overflow == OverflowAuto && b.isClip && b.h < b.contentHeight {
			b.hideScroll()
		}
	}
}

// parentContentWidth returns the content width of the nearest box ancestor,
// or the stage width when there is none.
func (b *Box) parentContentWidth() float64 {
	for p := b.node.parent; p != nil; p = p.parent {
		if p.Type == NodeTypeStage {
			if p.stage != nil {
				return p.stage.width
			}
			return 0
		}
		if p.Box != nil {
			return p.Box.w
		}
	}
	if s := b.node.stage; s != nil {
		return s.width
	}
	return 0
}

// fillsStage reports whether the box is an auto-height clip box placed
// directly on the stage, which takes the stage height.
func (b *Box) fillsStage() bool {
	p := b.node.parent
	return p != nil && p.Type == NodeTypeStage && b.height.IsAuto() && !b.flexHSet &&
		b.style.Overflow != OverflowVisible
}

func (b *Box) resolveSize() {
	st := b.style
	switch {
	case b.flexWSet:
		b.w = b.flexW
	case b.width.IsAuto():
		b.w = st.clampWidth(b.parentContentWidth() - st.insetsX())
	default:
		b.w = st.clampWidth(b.width.v)
	}

	b.fixedH = true
	switch {
	case b.flexHSet:
		b.h = b.flexH
	case !b.height.IsAuto():
		b.h = st.clampHeight(b.height.v)
	case b.fillsStage():
		b.h = st.clampHeight(b.node.stage.height - st.insetsY())
	default:
		b.fixedH = false
	}

	if img := b.node.Image; img != nil {
		img.size(b)
	}
	b.w = math.Max(b.w, 0)
	b.h = math.Max(b.h, 0)
	b.isClip = st.Overflow != OverflowVisible && b.fixedH
}

// arrange positions the children, computes the content height and clamps
// the scroll offset. Flex containers may resize flexible children, which
// lays those children out again.
func (b *Box) arrange() {
	n := b.node
	if n.stage == nil {
		return
	}
	var content float64
	if b.style.Display == DisplayFlex {
		content = b.arrangeFlex()
	} else {
		content = b.arrangeBlock()
	}
	if n.Text != nil {
		content = math.Max(content, n.Text.height)
	}
	if n.Image != nil && b.fixedH {
		content = math.Max(content, b.h)
	}
	b.contentHeight = math.Ceil(content)
	if !b.fixedH {
		b.h = math.Max(b.style.clampHeight(b.contentHeight), 0)
	}
	b.clampScroll()
	b.zDirty = true
	n.Repaint()
}

// placeAbsolute positions an out-of-flow child relative to the padding-box
// origin.
func (b *Box) placeAbsolute(c *Node) {
	st := b.style
	c.X = st.Margin.Left + st.BorderWidth.Left + c.Box.offsetX
	c.Y = st.Margin.Top + st.BorderWidth.Top + c.Box.offsetY
}

// inlineShift aligns an image child according to the parent's text-align.
func (b *Box) inlineShift(c *Box) float64 {
	if c.node.Type != NodeTypeImage {
		return 0
	}
	free := b.w - c.OuterWidth()
	switch b.style.TextAlign {
	case TextAlignCenter:
		return math.Round(free / 2)
	case TextAlignRight:
		return free
	}
	return 0
}

// arrangeBlock stacks in-flow children vertically and returns their total
// outer height.
func (b *Box) arrangeBlock() float64 {
	bx, by := b.style.baseX(), b.style.baseY()
	var acc float64
	for _, c := range b.node.children {
		cb := c.Box
		if cb == nil {
			continue
		}
		if cb.style.Position == PositionAbsolute {
			b.placeAbsolute(c)
			continue
		}
		c.X = bx + cb.offsetX + b.inlineShift(cb)
		c.Y = by + acc + cb.offsetY
		acc += cb.OuterHeight()
	}
	return acc
}

// arrangeFlex distributes the main-axis space left by fixed children among
// flexible children by weight, lines children up along the main axis and
// aligns them on the cross axis. It returns the content height.
func (b *Box) arrangeFlex() float64 {
	st := b.style
	horizontal := st.FlexOrient == FlexHorizontal
	bx, by := st.baseX(), st.baseY()

	var flow []*Box
	var flexible []*Box
	var weights float64
	for _, c := range b.node.children {
		cb := c.Box
		if cb == nil {
			continue
		}
		if cb.style.Position == PositionAbsolute {
			b.placeAbsolute(c)
			continue
		}
		flow = append(flow, cb)
		if cb.style.Flex > 0 {
			flexible = append(flexible, cb)
			weights += cb.style.Flex
		}
	}

	distribute := horizontal || b.fixedH
	if distribute && len(flexible) > 0 {
		rest := b.h
		if horizontal {
			rest = b.w
		}
		for _, cb := range flow {
			switch {
			case cb.style.Flex > 0 && horizontal:
				rest -= cb.style.insetsX()
			case cb.style.Flex > 0:
				rest -= cb.style.insetsY()
			case horizontal:
				rest -= cb.OuterWidth()
			default:
				rest -= cb.OuterHeight()
			}
		}
		rest = math.Max(rest, 0)
		remaining := rest
		for i, cb := range flexible {
			size := remaining
			if i < len(flexible)-1 {
				size = math.Round(rest * cb.style.Flex / weights)
				remaining -= size
			}
			if cb.setFlexMain(horizontal, size) {
				cb.layout()
			}
		}
	} else {
		for _, cb := range flexible {
			if cb.clearFlexMain(horizontal) {
				cb.layout()
			}
		}
	}

	var cross float64
	for _, cb := range flow {
		if horizontal {
			cross = math.Max(cross, cb.OuterHeight())
		} else {
			cross = math.Max(cross, cb.OuterWidth())
		}
	}
	crossSize := b.w
	if horizontal {
		crossSize = cross
		if b.fixedH {
			crossSize = b.h
		}
	}

	off := by
	if horizontal {
		off = bx
	}
	for _, cb := range flow {
		c := cb.node
		if horizontal {
			c.X = off + cb.offsetX
			c.Y = by + crossAlign(st.FlexAlign, crossSize, cb.OuterHeight()) + cb.offsetY
			off += cb.OuterWidth()
		} else {
			c.X = bx + crossAlign(st.FlexAlign, crossSize, cb.OuterWidth()) + cb.offsetX
			c.Y = off + cb.offsetY
			off += cb.OuterHeight()
		}
	}
	if horizontal {
		return cross
	}
	return off - by
}

func crossAlign(a FlexAlign, container, item float64) float64 {
	switch a {
	case FlexCenter:
		return (container - item) / 2
	case FlexEnd:
		return container - item
	}
	return 0
}

func (b *Box) setFlexMain(horizontal bool, size float64) bool {
	if horizontal {
		if b.flexWSet && b.flexW == size {
			return false
		}
		b.flexW, b.flexWSet = size, true
		return true
	}
	if b.flexHSet && b.flexH == size {
		return false
	}
	b.flexH, b.flexHSet = size, true
	return true
}

func (b *Box) clearFlexMain(horizontal bool) bool {
	if horizontal {
		changed := b.flexWSet
		b.flexWSet = false
		return changed
	}
	changed := b.flexHSet
	b.flexHSet = false
	return changed
}

// placeFree positions a box whose parent is not a box at its offset; boxes
// inside boxes are placed by the parent's arrange.
func (b *Box) placeFree() {
	n := b.node
	if p := n.parent; p == nil || p.Box == nil {
		n.X, n.Y = b.offsetX, b.offsetY
	}
}

// setOffset moves the box relative to its flow position.
func (b *Box) setOffset(x, y float64) {
	if b.offsetX == x && b.offsetY == y {
		return
	}
	b.offsetX, b.offsetY = x, y
	n := b.node
	b.placeFree()
	if n.stage == nil {
		return
	}
	if n.parent != nil {
		n.parent.childrenChanged()
	}
	n.Repaint()
}

// SetSize changes the declared size and lays the box out again.
func (b *Box) SetSize(w, h Length) {
	if w == b.width && h == b.height {
		return
	}
	b.width, b.height = w, h
	b.relayout()
	b.node.Repaint()
}

// clampScroll keeps scrollTop within [0, MaxScrollTop].
func (b *Box) clampScroll() {
	if !b.isClip {
		return
	}
	b.scrollTop = math.Min(math.Max(b.scrollTop, 0), b.MaxScrollTop())
}
