package canopy

// Shape is the component of a Shape node: a filled and/or stroked polygon
// path in local coordinates. A transparent Fill or Stroke is skipped.
type Shape struct {
	node   *Node
	points []Vec2

	Fill      Color
	Stroke    Color
	LineWidth float64
	// Closed joins the last point back to the first when stroking. Filled
	// paths are always closed.
	Closed bool
}

// NewRect creates a shape node for the rectangle (0, 0, w, h) filled with
// fill. Its hit area is the rectangle.
func NewRect(name string, w, h float64, fill Color) *Node {
	n := NewPolygon(name, []Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}})
	n.Shape.Fill = fill
	n.HitArea = HitRect{Width: w, Height: h}
	return n
}

// NewPolygon creates a closed shape node through points. The points are
// copied. Its hit area is the polygon when it is convex.
func NewPolygon(name string, points []Vec2) *Node {
	n := &Node{Name: name, Type: NodeTypeShape}
	nodeDefaults(n)
	n.Shape = &Shape{node: n, Closed: true, LineWidth: 1}
	n.Shape.SetPoints(points)
	return n
}

// Points returns the path. The returned slice MUST NOT be mutated.
func (sh *Shape) Points() []Vec2 { return sh.points }

// SetPoints replaces the path and, when the node's hit area is a polygon or
// unset, the hit area with it.
func (sh *Shape) SetPoints(points []Vec2) {
	sh.points = append(sh.points[:0], points...)
	n := sh.node
	switch n.HitArea.(type) {
	case nil, HitPolygon:
		if len(sh.points) >= 3 {
			n.HitArea = HitPolygon{Points: sh.points}
		} else {
			n.HitArea = nil
		}
	}
	n.Repaint()
}

// SetFill changes the fill color.
func (sh *Shape) SetFill(c Color) {
	sh.Fill = c
	sh.node.Repaint()
}

// SetStroke changes the stroke color and width.
func (sh *Shape) SetStroke(c Color, lineWidth float64) {
	sh.Stroke, sh.LineWidth = c, lineWidth
	sh.node.Repaint()
}

// Bounds returns the axis-aligned bounds of the path.
func (sh *Shape) Bounds() Rect {
	if len(sh.points) == 0 {
		return Rect{}
	}
	minX, minY := sh.points[0].X, sh.points[0].Y
	maxX, maxY := minX, minY
	for _, p := range sh.points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (sh *Shape) render(sf Surface) error {
	if len(sh.points) < 2 {
		return nil
	}
	if len(sh.points) >= 3 && !sh.Fill.IsTransparent() {
		sf.FillPath(sh.points, sh.Fill)
	}
	if !sh.Stroke.IsTransparent() && sh.LineWidth > 0 {
		sf.StrokePath(sh.points, sh.Stroke, sh.LineWidth, sh.Closed)
	}
	return nil
}
