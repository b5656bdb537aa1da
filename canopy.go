package canopy

import "fmt"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication happens in RGBA, which makes Color usable as a color.Color.
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
)

// RGBA implements color.Color with alpha-premultiplied 16-bit components.
func (c Color) RGBA() (r, g, b, a uint32) {
	a32 := clamp01(c.A)
	return uint32(clamp01(c.R)*a32*0xffff + 0.5),
		uint32(clamp01(c.G)*a32*0xffff + 0.5),
		uint32(clamp01(c.B)*a32*0xffff + 0.5),
		uint32(a32*0xffff + 0.5)
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= clamp01(a)
	return c
}

// IsTransparent reports whether the color paints nothing.
func (c Color) IsTransparent() bool {
	return c.A <= 0
}

// String formats the color in CSS rgba() notation.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)",
		int(clamp01(c.R)*255+0.5), int(clamp01(c.G)*255+0.5), int(clamp01(c.B)*255+0.5), clamp01(c.A))
}

// Vec2 is a 2D vector used for points, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset returns r shrunk by the given edges (top, right, bottom, left).
func (r Rect) Inset(e Edges) Rect {
	return Rect{
		X:      r.X + e.Left,
		Y:      r.Y + e.Top,
		Width:  r.Width - e.Left - e.Right,
		Height: r.Height - e.Top - e.Bottom,
	}
}

// Edges holds per-side values in CSS order.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Horizontal returns Left + Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// NodeType distinguishes rendering, layout and hit-test behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeStage                     // tree root bound to a Surface
	NodeTypeShape                     // filled/stroked rectangle or polygon path
	NodeTypeBox                       // box-model layout node
	NodeTypeText                      // box that lays out shaped text runs
	NodeTypeImage                     // box that draws a loaded image
)

var nodeTypeNames = [...]string{
	NodeTypeContainer: "container",
	NodeTypeStage:     "stage",
	NodeTypeShape:     "shape",
	NodeTypeBox:       "box",
	NodeTypeText:      "text",
	NodeTypeImage:     "image",
}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", t)
}

// isBoxType reports whether nodes of this type carry a Box component.
func (t NodeType) isBoxType() bool {
	return t == NodeTypeBox || t == NodeTypeText || t == NodeTypeImage
}

// TextAlign controls horizontal alignment of text runs and inline images.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // align to the left edge (default)
	TextAlignCenter                  // center horizontally
	TextAlignRight                   // align to the right edge
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
