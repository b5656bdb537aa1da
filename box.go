package canopy

import (
	"math"
	"sort"
	"strings"
)

// Length is a box dimension: a pixel value or auto. The zero value is auto.
type Length struct {
	v   float64
	set bool
}

// Auto is the automatic length: widths fill the parent, heights fit the
// content.
var Auto = Length{}

// Px returns a fixed pixel length. Negative and non-finite values become 0.
func Px(v float64) Length {
	if !finite(v) || v < 0 {
		v = 0
	}
	return Length{v: v, set: true}
}

// IsAuto reports whether l is Auto.
func (l Length) IsAuto() bool { return !l.set }

// Value returns the pixel value; 0 for Auto.
func (l Length) Value() float64 { return l.v }

func (l Length) String() string {
	if !l.set {
		return "auto"
	}
	return formatFloat(l.v) + "px"
}

// BoxConfig describes a box at construction time. Every field is optional.
type BoxConfig struct {
	// Tag is the element name used for stylesheet matching. Defaults to "div".
	Tag         string
	ID          string
	Class       string
	ActiveClass string
	// Style holds inline declarations ("margin: 4px; color: red").
	Style string

	Width, Height Length
	// X and Y offset the box from its flow position.
	X, Y      float64
	ScrollTop float64
}

// Box is the box-model layout component of Box, Text and Image nodes. Its
// node's X and Y hold the margin-box origin in the parent's space and are
// recomputed by layout.
type Box struct {
	node *Node

	tag         string
	id          string
	class       string
	activeClass string
	inline      string

	style       *Style
	activeStyle *Style
	active      bool

	width, height    Length
	offsetX, offsetY float64

	// Resolved content size. h is the fixed height or the content height
	// for auto-height boxes.
	w, h          float64
	contentHeight float64
	fixedH        bool

	flexW, flexH       float64
	flexWSet, flexHSet bool

	isClip      bool
	scrollTop   float64
	scrollAlpha float64
	laidOut     bool

	zChildren []*Node
	zDirty    bool

	scroll scrollState
}

var defaultStyle = func() *Style {
	st := DefaultStyle()
	return &st
}()

// NewBox creates a box node.
func NewBox(name string, cfg BoxConfig) *Node {
	return newBoxNode(name, NodeTypeBox, cfg)
}

func newBoxNode(name string, typ NodeType, cfg BoxConfig) *Node {
	n := &Node{Name: name, Type: typ}
	nodeDefaults(n)
	tag := strings.ToLower(strings.TrimSpace(cfg.Tag))
	if tag == "" {
		tag = "div"
	}
	b := &Box{
		node:        n,
		tag:         tag,
		id:          cfg.ID,
		class:       normalizeClass(cfg.Class),
		activeClass: normalizeClass(cfg.ActiveClass),
		inline:      normalizeInline(cfg.Style),
		style:       defaultStyle,
		activeStyle: defaultStyle,
		width:       cfg.Width,
		height:      cfg.Height,
		scrollAlpha: 1,
	}
	if finite(cfg.X) {
		b.offsetX = cfg.X
	}
	if finite(cfg.Y) {
		b.offsetY = cfg.Y
	}
	if finite(cfg.ScrollTop) && cfg.ScrollTop > 0 {
		b.scrollTop = cfg.ScrollTop
	}
	n.Box = b
	b.placeFree()
	b.installScroll()
	return n
}

// --- Accessors ---

// Node returns the node that owns the box.
func (b *Box) Node() *Node { return b.node }

// Tag returns the element name used for stylesheet matching.
func (b *Box) Tag() string { return b.tag }

// ElementID returns the stylesheet id.
func (b *Box) ElementID() string { return b.id }

// Class returns the space-separated class list.
func (b *Box) Class() string { return b.class }

// ActiveClass returns the class list added while the box is pressed.
func (b *Box) ActiveClass() string { return b.activeClass }

// InlineStyle returns the normalized inline declarations.
func (b *Box) InlineStyle() string { return b.inline }

// HasClass reports whether c is in the class list.
func (b *Box) HasClass(c string) bool {
	for _, have := range strings.Fields(b.class) {
		if have == c {
			return true
		}
	}
	return false
}

// Style returns a copy of the resolved style. Before the box is first
// attached this is the default style.
func (b *Box) Style() Style { return *b.style }

// Active reports whether the box is in the pressed state.
func (b *Box) Active() bool { return b.active }

// DeclaredWidth and DeclaredHeight return the lengths the box was given.
func (b *Box) DeclaredWidth() Length  { return b.width }
func (b *Box) DeclaredHeight() Length { return b.height }

// Width returns the resolved content width.
func (b *Box) Width() float64 { return b.w }

// Height returns the resolved content-box height.
func (b *Box) Height() float64 { return b.h }

// ContentHeight returns the extent of the box's children (or text lines).
func (b *Box) ContentHeight() float64 { return b.contentHeight }

// OuterWidth returns the margin-box width.
func (b *Box) OuterWidth() float64 { return b.w + b.style.insetsX() }

// OuterHeight returns the margin-box height.
func (b *Box) OuterHeight() float64 { return b.h + b.style.insetsY() }

// Offset returns the offset from the flow position.
func (b *Box) Offset() (x, y float64) { return b.offsetX, b.offsetY }

// ScrollTop returns the vertical scroll offset.
func (b *Box) ScrollTop() float64 { return b.scrollTop }

// ScrollAlpha returns the scrollbar opacity factor in [0, 1].
func (b *Box) ScrollAlpha() float64 { return b.scrollAlpha }

// IsClip reports whether the box clips its children: overflow is hidden or
// auto and its height is fixed.
func (b *Box) IsClip() bool { return b.isClip }

// MaxScrollTop returns the largest valid scroll offset.
func (b *Box) MaxScrollTop() float64 {
	if !b.isClip || b.h >= b.contentHeight {
		return 0
	}
	return b.contentHeight - b.h
}

// ContentRect returns the content box in the box's local space.
func (b *Box) ContentRect() Rect {
	return Rect{X: b.style.baseX(), Y: b.style.baseY(), Width: b.w, Height: b.h}
}

// BorderRect returns the border box in the box's local space.
func (b *Box) BorderRect() Rect {
	st := b.style
	return Rect{
		X:      st.Margin.Left,
		Y:      st.Margin.Top,
		Width:  st.BorderWidth.Horizontal() + st.Padding.Horizontal() + b.w,
		Height: st.BorderWidth.Vertical() + st.Padding.Vertical() + b.h,
	}
}

// --- Style ---

func (b *Box) styleKey() StyleKey {
	return StyleKey{Tag: b.tag, ID: b.id, Class: b.class, ActiveClass: b.activeClass, Inline: b.inline}
}

// resolveStyle looks the box's style up in the stage cache. It runs when the
// box is attached and after identity or inline style mutations.
func (b *Box) resolveStyle() {
	s := b.node.stage
	if s == nil {
		return
	}
	b.style, b.activeStyle = s.styles.Resolve(b.styleKey())
	if p := b.node.parent; p != nil && p.Box != nil {
		p.Box.zDirty = true
	}
}

// paintStyle returns the style whose colors are used to draw the box.
func (b *Box) paintStyle() *Style {
	if b.active && b.activeClass != "" {
		return b.activeStyle
	}
	return b.style
}

func (b *Box) setActive(v bool) {
	if b.active == v {
		return
	}
	b.active = v
	if b.activeClass != "" || b.node.Text != nil {
		b.node.Repaint()
	}
}

// mergeInline merges decls over the existing inline declarations; a later
// value for the same property replaces the earlier one in place.
func mergeInline(existing, decls string) string {
	type kv struct{ prop, val string }
	var list []kv
	index := make(map[string]int)
	add := func(s string) {
		for _, decl := range strings.Split(s, ";") {
			prop, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			prop = strings.ToLower(strings.TrimSpace(prop))
			val = strings.TrimSpace(val)
			if prop == "" || val == "" {
				continue
			}
			if i, ok := index[prop]; ok {
				list[i].val = val
				continue
			}
			index[prop] = len(list)
			list = append(list, kv{prop, val})
		}
	}
	add(existing)
	add(decls)
	var sb strings.Builder
	for _, e := range list {
		sb.WriteString(e.prop + ":" + e.val + ";")
	}
	return sb.String()
}

// --- z-order ---

func (b *Box) zAppend(child *Node) {
	b.zChildren = append(b.zChildren, child)
	b.zDirty = true
}

func (b *Box) zRemove(child *Node) {
	for i, c := range b.zChildren {
		if c == child {
			copy(b.zChildren[i:], b.zChildren[i+1:])
			b.zChildren[len(b.zChildren)-1] = nil
			b.zChildren = b.zChildren[:len(b.zChildren)-1]
			break
		}
	}
	if child.Box != nil {
		child.Box.flexWSet, child.Box.flexHSet = false, false
	}
}

// sortedZChildren returns the children in paint order: ascending z-index,
// tree order among equals.
func (b *Box) sortedZChildren() []*Node {
	if b.zDirty || len(b.zChildren) != len(b.node.children) {
		b.zChildren = append(b.zChildren[:0], b.node.children...)
		sort.SliceStable(b.zChildren, func(i, j int) bool {
			return zIndexOf(b.zChildren[i]) < zIndexOf(b.zChildren[j])
		})
		b.zDirty = false
	}
	return b.zChildren
}

func zIndexOf(n *Node) int {
	if n.Box != nil {
		return n.Box.style.ZIndex
	}
	return defaultZIndex
}

// --- Geometry used by traversal ---

// applyStyleTransform applies the style transform about the border-box
// center on top of m.
func (b *Box) applyStyleTransform(m Matrix) Matrix {
	st := b.style
	if !st.HasTransform {
		return m
	}
	r := b.BorderRect()
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	return m.Multiply(Translate(cx, cy)).Multiply(st.Transform).Multiply(Translate(-cx, -cy))
}

func (b *Box) clipRect() Rect {
	return b.ContentRect()
}

// containsLocal hit-tests the border box. Non-clipping boxes whose content
// overflows are hit over the full content height.
func (b *Box) containsLocal(lx, ly float64) bool {
	st := b.style
	if !st.PointerEvents {
		return false
	}
	h := b.h
	if !b.isClip && b.contentHeight > h {
		h = b.contentHeight
	}
	r := Rect{
		X:      st.Margin.Left,
		Y:      st.Margin.Top,
		Width:  st.BorderWidth.Horizontal() + st.Padding.Horizontal() + b.w,
		Height: st.BorderWidth.Vertical() + st.Padding.Vertical() + h,
	}
	return r.Contains(lx, ly)
}

// --- Rendering ---

// render fills the background over the padding box and draws each border
// side as a filled rectangle.
func (b *Box) render(sf Surface) error {
	st := b.style
	ps := b.paintStyle()
	ml, mt := st.Margin.Left, st.Margin.Top
	bw, pd := st.BorderWidth, st.Padding
	w, h := b.w, b.h

	if !ps.Background.IsTransparent() {
		sf.FillRect(Rect{
			X: ml + bw.Left, Y: mt + bw.Top,
			Width: pd.Left + w + pd.Right, Height: pd.Top + h + pd.Bottom,
		}, ps.Background)
	}
	fullW := bw.Left + pd.Left + w + pd.Right + bw.Right
	fullH := bw.Top + pd.Top + h + pd.Bottom + bw.Bottom
	if bw.Top > 0 {
		sf.FillRect(Rect{X: ml, Y: mt, Width: fullW, Height: bw.Top}, ps.BorderColor[0])
	}
	if bw.Right > 0 {
		sf.FillRect(Rect{X: ml + bw.Left + pd.Left + w + pd.Right, Y: mt, Width: bw.Right, Height: fullH}, ps.BorderColor[1])
	}
	if bw.Bottom > 0 {
		sf.FillRect(Rect{X: ml, Y: mt + bw.Top + pd.Top + h + pd.Bottom, Width: fullW, Height: bw.Bottom}, ps.BorderColor[2])
	}
	if bw.Left > 0 {
		sf.FillRect(Rect{X: ml, Y: mt, Width: bw.Left, Height: fullH}, ps.BorderColor[3])
	}
	return nil
}

const (
	scrollbarWidth = 5
	scrollbarInset = 6
	scrollbarAlpha = 0.3
)

// drawScrollbar draws the vertical scroll indicator of an overflow:auto
// clip box whose content overflows.
func (b *Box) drawScrollbar(sf Surface) {
	st := b.style
	if st.Overflow != OverflowAuto || !b.isClip || b.h >= b.contentHeight || b.scrollAlpha <= 0 {
		return
	}
	barH := math.Round(b.h * b.h / b.contentHeight)
	barY := math.Round(b.scrollTop * (b.h - barH) / (b.contentHeight - b.h))
	right := st.Margin.Left + st.BorderWidth.Left + st.Padding.Left + b.w + st.Padding.Right + st.BorderWidth.Right
	sf.FillRect(Rect{
		X:      right - scrollbarInset,
		Y:      st.Margin.Top + st.BorderWidth.Top + barY,
		Width:  scrollbarWidth,
		Height: barH,
	}, Color{A: scrollbarAlpha * b.scrollAlpha})
}

// --- Lifecycle ---

func (b *Box) stopAnimations() {
	b.scroll.stop()
	b.laidOut = false
}

func (b *Box) dispose() {
	b.stopAnimations()
	b.zChildren = nil
}

func normalizeClass(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
