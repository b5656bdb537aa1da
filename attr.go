package canopy

import (
	"math"
	"strconv"
)

type attrKind uint8

const (
	attrX attrKind = iota + 1
	attrY
	attrWidth
	attrHeight
	attrScrollTop
	attrVisible
	attrAlpha
	attrID
	attrClass
	attrActiveClass
	attrStyle
	attrActive
	attrTransform
	attrText
	attrSrc
)

// Attr is one typed attribute write for Node.Set. Build values with the
// Attr* constructors.
type Attr struct {
	kind   attrKind
	num    float64
	length Length
	str    string
	flag   bool
}

// AttrX sets the horizontal offset (boxes) or position (other nodes).
func AttrX(v float64) Attr { return Attr{kind: attrX, num: v} }

// AttrY sets the vertical offset (boxes) or position (other nodes).
func AttrY(v float64) Attr { return Attr{kind: attrY, num: v} }

// AttrWidth sets a box's declared width.
func AttrWidth(l Length) Attr { return Attr{kind: attrWidth, length: l} }

// AttrHeight sets a box's declared height.
func AttrHeight(l Length) Attr { return Attr{kind: attrHeight, length: l} }

// AttrScrollTop sets a box's scroll offset, clamped to the scroll range.
func AttrScrollTop(v float64) Attr { return Attr{kind: attrScrollTop, num: v} }

// AttrVisible shows or hides the node.
func AttrVisible(v bool) Attr { return Attr{kind: attrVisible, flag: v} }

// AttrAlpha sets the node alpha.
func AttrAlpha(v float64) Attr { return Attr{kind: attrAlpha, num: v} }

// AttrID sets a box's stylesheet id.
func AttrID(id string) Attr { return Attr{kind: attrID, str: id} }

// AttrClass replaces a box's class list.
func AttrClass(class string) Attr { return Attr{kind: attrClass, str: class} }

// AttrActiveClass replaces the class list a box adds while pressed.
func AttrActiveClass(class string) Attr { return Attr{kind: attrActiveClass, str: class} }

// AttrStyle merges inline declarations into a box's existing ones.
func AttrStyle(decls string) Attr { return Attr{kind: attrStyle, str: decls} }

// AttrActive sets the pressed state of a box.
func AttrActive(v bool) Attr { return Attr{kind: attrActive, flag: v} }

// AttrTransform sets the node's local transform from a transform list.
func AttrTransform(s string) Attr { return Attr{kind: attrTransform, str: s} }

// AttrText replaces a text node's content with a single plain span.
func AttrText(s string) Attr { return Attr{kind: attrText, str: s} }

// AttrSrc points an image node at a new source and starts loading it.
func AttrSrc(src string) Attr { return Attr{kind: attrSrc, str: src} }

// Set applies attribute writes in order. Attributes that do not apply to
// the node's kind and invalid values are ignored. Style and size changes are
// coalesced: the node is restyled and laid out at most once per call.
func (n *Node) Set(attrs ...Attr) {
	if n.disposed {
		return
	}
	b := n.Box
	var restyle, resize bool
	x, y := n.X, n.Y
	if b != nil {
		x, y = b.offsetX, b.offsetY
	}
	moved := false
	scroll, scrolled := 0.0, false

	for _, a := range attrs {
		switch a.kind {
		case attrX:
			if finite(a.num) {
				x, moved = a.num, true
			}
		case attrY:
			if finite(a.num) {
				y, moved = a.num, true
			}
		case attrVisible:
			n.SetVisible(a.flag)
		case attrAlpha:
			n.SetAlpha(a.num)
		case attrTransform:
			n.SetTransform(a.str)
		case attrWidth:
			if b != nil && b.width != a.length {
				b.width, resize = a.length, true
			}
		case attrHeight:
			if b != nil && b.height != a.length {
				b.height, resize = a.length, true
			}
		case attrScrollTop:
			if b != nil {
				scroll, scrolled = a.num, true
			}
		case attrID:
			if b != nil && b.id != a.str {
				b.id, restyle = a.str, true
			}
		case attrClass:
			if b != nil {
				b.class, restyle = normalizeClass(a.str), true
			}
		case attrActiveClass:
			if b != nil {
				b.activeClass, restyle = normalizeClass(a.str), true
			}
		case attrStyle:
			if b != nil {
				b.inline, restyle = mergeInline(b.inline, a.str), true
			}
		case attrActive:
			if b != nil {
				b.setActive(a.flag)
			}
		case attrText:
			if n.Text != nil {
				n.Text.setSpans([]Span{{Text: a.str}})
				n.Text.activeLink = nil
				resize = true
			}
		case attrSrc:
			if n.Image != nil {
				n.Image.setSrc(a.str)
			}
		}
	}

	if moved {
		n.SetPosition(x, y)
	}
	if b == nil {
		return
	}
	if restyle {
		b.resolveStyle()
	}
	if restyle || resize {
		b.relayout()
		n.Repaint()
	}
	// Scrolling clamps against the layout produced by this call.
	if scrolled {
		b.scrollTo(scroll, false)
	}
}

// String describes the attribute for logs and test failures.
func (a Attr) String() string {
	switch a.kind {
	case attrX:
		return "x=" + formatFloat(a.num)
	case attrY:
		return "y=" + formatFloat(a.num)
	case attrWidth:
		return "width=" + a.length.String()
	case attrHeight:
		return "height=" + a.length.String()
	case attrScrollTop:
		return "scrollTop=" + formatFloat(a.num)
	case attrVisible:
		return "visible=" + strconv.FormatBool(a.flag)
	case attrAlpha:
		return "alpha=" + formatFloat(a.num)
	case attrID:
		return "id=" + strconv.Quote(a.str)
	case attrClass:
		return "class=" + strconv.Quote(a.str)
	case attrActiveClass:
		return "activeClass=" + strconv.Quote(a.str)
	case attrStyle:
		return "style=" + strconv.Quote(a.str)
	case attrActive:
		return "active=" + strconv.FormatBool(a.flag)
	case attrTransform:
		return "transform=" + strconv.Quote(a.str)
	case attrText:
		return "text=" + strconv.Quote(a.str)
	case attrSrc:
		return "src=" + strconv.Quote(a.str)
	}
	return "invalid"
}

func formatFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
