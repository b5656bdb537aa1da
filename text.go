package canopy

import (
	"math"
	"strings"
)

// Link is the target of a hyperlinked span.
type Link struct {
	Href   string
	Target string
	// ID numbers the links of one text node in order of appearance.
	ID   int
	Text string
}

// Span is a run of text sharing one size, color and optional link. A zero
// Color or FontSize inherits the box style.
type Span struct {
	Text     string
	Color    Color
	FontSize float64
	Link     *Link
}

// textRun is a measured piece of one span on one line.
type textRun struct {
	text  string
	width float64
	size  float64
	color Color
	link  *Link
}

type textLine struct {
	runs  []textRun
	width float64
}

// TextContent is the text component of a Text node. Lines are rebuilt
// whenever the box is laid out.
type TextContent struct {
	node  *Node
	spans []Span

	lines      []textLine
	height     float64
	activeLink *Link
}

// NewText creates a text box. Links in spans are numbered in order.
func NewText(name string, cfg BoxConfig, spans ...Span) *Node {
	n := newBoxNode(name, NodeTypeText, cfg)
	n.Text = &TextContent{node: n}
	n.Text.setSpans(spans)
	return n
}

// Spans returns the current spans. The returned slice MUST NOT be mutated.
func (t *TextContent) Spans() []Span { return t.spans }

// PlainText returns the concatenated span text.
func (t *TextContent) PlainText() string {
	var b strings.Builder
	for _, s := range t.spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// NumLines returns the number of laid-out lines.
func (t *TextContent) NumLines() int { return len(t.lines) }

// LineText returns the text of line i, or "" when out of range.
func (t *TextContent) LineText(i int) string {
	if i < 0 || i >= len(t.lines) {
		return ""
	}
	var b strings.Builder
	for _, r := range t.lines[i].runs {
		b.WriteString(r.text)
	}
	return b.String()
}

// ActiveLink returns the link under the latest press, or nil.
func (t *TextContent) ActiveLink() *Link { return t.activeLink }

// SetSpans replaces the content and lays the box out again.
func (t *TextContent) SetSpans(spans ...Span) {
	t.setSpans(spans)
	t.activeLink = nil
	t.node.Box.relayout()
	t.node.Repaint()
}

// SetText replaces the content with a single plain span.
func (t *TextContent) SetText(s string) {
	t.SetSpans(Span{Text: s})
}

func (t *TextContent) setSpans(spans []Span) {
	t.spans = append([]Span(nil), spans...)
	id := 0
	for i := range t.spans {
		if l := t.spans[i].Link; l != nil {
			cp := *l
			cp.ID = id
			if cp.Text == "" {
				cp.Text = t.spans[i].Text
			}
			t.spans[i].Link = &cp
			id++
		}
	}
}

// lineBreaker accumulates runs into lines no wider than width.
type lineBreaker struct {
	shaper    TextShaper
	width     float64
	nowrap    bool
	ellipsis  bool
	lines     []textLine
	cur       textLine
	truncated bool
}

func (lb *lineBreaker) newLine() {
	lb.lines = append(lb.lines, lb.cur)
	lb.cur = textLine{}
}

// add appends text of one span to the current line, merging it with the
// previous run when they share the same span.
func (lb *lineBreaker) add(text string, width float64, sp *Span, size float64, color Color) {
	if n := len(lb.cur.runs); n > 0 {
		last := &lb.cur.runs[n-1]
		if last.link == sp.Link && last.size == size && last.color == color {
			last.text += text
			last.width = lb.shaper.Measure(last.text, size)
			lb.cur.width = lineWidth(lb.cur.runs)
			return
		}
	}
	lb.cur.runs = append(lb.cur.runs, textRun{text: text, width: width, size: size, color: color, link: sp.Link})
	lb.cur.width += width
}

// truncate cuts the current line so that it ends with an ellipsis and fits.
func (lb *lineBreaker) truncate() {
	lb.truncated = true
	if !lb.ellipsis || len(lb.cur.runs) == 0 {
		return
	}
	const mark = "…"
	last := &lb.cur.runs[len(lb.cur.runs)-1]
	clusters := graphemes(last.text)
	others := lb.cur.width - last.width
	for len(clusters) > 0 {
		text := strings.Join(clusters, "") + mark
		if w := lb.shaper.Measure(text, last.size); others+w <= lb.width || len(clusters) == 1 {
			last.text, last.width = text, w
			lb.cur.width = others + w
			return
		}
		clusters = clusters[:len(clusters)-1]
	}
}

func (lb *lineBreaker) place(seg string, sp *Span, size float64, color Color) {
	if lb.truncated {
		return
	}
	w := lb.shaper.Measure(seg, size)
	if lb.cur.width+w <= lb.width {
		lb.add(seg, w, sp, size, color)
		return
	}
	if lb.nowrap {
		if lb.cur.width == 0 {
			lb.add(seg, w, sp, size, color)
		}
		lb.truncate()
		return
	}
	if lb.cur.width > 0 && w <= lb.width {
		lb.newLine()
		lb.add(seg, w, sp, size, color)
		return
	}
	// The segment is wider than a line: break it between characters.
	for _, cl := range graphemes(seg) {
		cw := lb.shaper.Measure(cl, size)
		if lb.cur.width > 0 && lb.cur.width+cw > lb.width {
			lb.newLine()
		}
		lb.add(cl, cw, sp, size, color)
	}
}

// layout rebuilds the lines at the box's content width and sets the text
// height to the line count times the line height.
func (t *TextContent) layout(b *Box) {
	t.lines = t.lines[:0]
	t.height = 0
	s := t.node.stage
	if s == nil {
		return
	}
	st := b.style
	lb := &lineBreaker{
		shaper:   s.shaper,
		width:    b.w,
		nowrap:   st.WhiteSpace == WhiteSpaceNoWrap,
		ellipsis: st.TextOverflow == TextOverflowEllipsis,
	}
	empty := true
	for i := range t.spans {
		sp := &t.spans[i]
		if sp.Text == "" {
			continue
		}
		empty = false
		size := sp.FontSize
		if size <= 0 {
			size = st.FontSize
		}
		color := sp.Color
		if color == (Color{}) {
			color = st.Color
		}
		for _, seg := range s.shaper.Segments(sp.Text) {
			body := strings.TrimRight(seg, "\r\n\v\f\u0085\u2028\u2029")
			if body != "" {
				lb.place(body, sp, size, color)
			}
			if body != seg && !lb.truncated {
				if lb.nowrap {
					lb.truncate()
					continue
				}
				lb.newLine()
			}
		}
	}
	if empty {
		return
	}
	if len(lb.cur.runs) > 0 || len(lb.lines) == 0 {
		lb.lines = append(lb.lines, lb.cur)
	}
	t.lines = lb.lines
	t.height = math.Round(float64(len(t.lines)) * st.LineHeight)
}

func lineWidth(runs []textRun) float64 {
	var w float64
	for _, r := range runs {
		w += r.width
	}
	return w
}

// lineLeft returns the left edge of line l: the runs are laid out one after
// another, offset backward from the alignment anchor by the line width.
func (t *TextContent) lineLeft(b *Box, l *textLine) float64 {
	x := b.style.baseX()
	switch b.style.TextAlign {
	case TextAlignCenter:
		return x + math.Round(b.w/2) - l.width/2
	case TextAlignRight:
		return x + b.w - l.width
	}
	return x
}

func (t *TextContent) render(sf Surface) error {
	b := t.node.Box
	s := t.node.stage
	if s == nil || len(t.lines) == 0 {
		return nil
	}
	lh := b.style.LineHeight
	top := b.style.baseY()
	for li := range t.lines {
		l := &t.lines[li]
		x := t.lineLeft(b, l)
		y := math.Round(top + (float64(li)+0.5)*lh)
		for _, r := range l.runs {
			c := r.color
			if r.link != nil && b.active && t.activeLink != nil && t.activeLink.ID == r.link.ID {
				c = b.activeStyle.Color
			}
			sf.FillText(r.text, x, y, s.shaper.Face(r.size), c)
			x += r.width
		}
	}
	return nil
}

// linkAt returns the link under the local point and records it as the
// active link.
func (t *TextContent) linkAt(lx, ly float64) *Link {
	t.activeLink = nil
	b := t.node.Box
	lh := b.style.LineHeight
	top := b.style.baseY()
	for li := range t.lines {
		l := &t.lines[li]
		y0 := top + float64(li)*lh
		if ly < y0 || ly > y0+lh {
			continue
		}
		x := t.lineLeft(b, l)
		for _, r := range l.runs {
			if r.link != nil && lx >= x && lx <= x+r.width {
				t.activeLink = r.link
				return r.link
			}
			x += r.width
		}
	}
	return nil
}
