package canopy

import (
	"image"
	"math"
	"testing"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// drawOp is one recorded drawing call. Rect is in device space.
type drawOp struct {
	Kind  string
	Rect  Rect
	Color Color
	Text  string
	Alpha float64
	Clip  Rect
}

type recState struct {
	m     Matrix
	alpha float64
	clip  Rect
}

// recSurface records drawing calls instead of rasterizing them. Clear
// starts a new recording.
type recSurface struct {
	w, h   int
	cur    recState
	stack  []recState
	ops    []drawOp
	clears []Color
}

var _ Surface = (*recSurface)(nil)

func newRecSurface(w, h int) *recSurface {
	return &recSurface{w: w, h: h, cur: recState{m: Identity, alpha: 1}}
}

func (r *recSurface) Size() (int, int) { return r.w, r.h }

func (r *recSurface) Save() { r.stack = append(r.stack, r.cur) }

func (r *recSurface) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.cur = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *recSurface) Transform(m Matrix)       { r.cur.m = r.cur.m.Multiply(m) }
func (r *recSurface) SetGlobalAlpha(a float64) { r.cur.alpha = a }
func (r *recSurface) ClipRect(rc Rect)         { r.cur.clip = r.device(rc) }

func (r *recSurface) Clear(c Color) {
	r.clears = append(r.clears, c)
	r.ops = r.ops[:0]
}

func (r *recSurface) FillRect(rc Rect, c Color) { r.record("fill", r.device(rc), c, "") }

func (r *recSurface) StrokeRect(rc Rect, c Color, _ float64) { r.record("stroke", r.device(rc), c, "") }

func (r *recSurface) FillPath(pts []Vec2, c Color) { r.record("path", r.devicePoints(pts), c, "") }

func (r *recSurface) StrokePath(pts []Vec2, c Color, _ float64, _ bool) {
	r.record("polyline", r.devicePoints(pts), c, "")
}

func (r *recSurface) FillText(s string, x, y float64, _ font.Face, c Color) {
	dx, dy := r.cur.m.Apply(x, y)
	r.record("text", Rect{X: dx, Y: dy}, c, s)
}

func (r *recSurface) DrawImage(_ image.Image, _ image.Rectangle, dst Rect) error {
	r.record("image", r.device(dst), Color{}, "")
	return nil
}

func (r *recSurface) record(kind string, rc Rect, c Color, text string) {
	r.ops = append(r.ops, drawOp{Kind: kind, Rect: rc, Color: c, Text: text, Alpha: r.cur.alpha, Clip: r.cur.clip})
}

func (r *recSurface) device(rc Rect) Rect {
	return r.devicePoints([]Vec2{{rc.X, rc.Y}, {rc.X + rc.Width, rc.Y + rc.Height}})
}

func (r *recSurface) devicePoints(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		x, y := r.cur.m.Apply(p.X, p.Y)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// find returns the recorded ops of one kind in drawing order.
func (r *recSurface) find(kind string) []drawOp {
	var out []drawOp
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// fixedShaper gives every rune an advance of half the font size and breaks
// lines like FaceShaper.
type fixedShaper struct{}

func (fixedShaper) Face(float64) font.Face { return basicfont.Face7x13 }

func (fixedShaper) Measure(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size / 2
}

func (fixedShaper) Segments(s string) []string { return lineSegments(s) }

func newTestStage(t *testing.T, w, h float64, css string) (*Stage, *recSurface) {
	t.Helper()
	sheet, err := ParseStyleSheet(css)
	if err != nil {
		t.Fatalf("ParseStyleSheet: %v", err)
	}
	sf := newRecSurface(int(w), int(h))
	s, err := NewStage(sf, StageConfig{Width: w, Height: h, StyleSheet: sheet, Shaper: fixedShaper{}})
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}
	t.Cleanup(s.Destroy)
	return s, sf
}

func childNames(n *Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Name)
	}
	return out
}
