package ebitenhost

import (
	"image"
	"image/color"
	"math"
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/phanxgames/canopy"
	"golang.org/x/image/font"
)

type surfaceState struct {
	m     canopy.Matrix
	alpha float64
	clip  image.Rectangle
}

// Surface implements canopy.Surface on an offscreen *ebiten.Image. Clipping
// is done with sub-images, so a clip under rotation is widened to its
// axis-aligned bounds.
type Surface struct {
	canvas *ebiten.Image
	cur    surfaceState
	stack  []surfaceState

	faces  map[font.Face]*text.GoXFace
	images map[image.Image]*ebiten.Image

	vs []ebiten.Vertex
	is []uint16
}

// NewSurface returns a surface backed by a new image of the given size.
func NewSurface(width, height int) *Surface {
	return NewSurfaceFromImage(ebiten.NewImage(max(width, 1), max(height, 1)))
}

// NewSurfaceFromImage returns a surface drawing into img.
func NewSurfaceFromImage(img *ebiten.Image) *Surface {
	return &Surface{
		canvas: img,
		cur:    surfaceState{m: canopy.Identity, alpha: 1, clip: img.Bounds()},
		faces:  make(map[font.Face]*text.GoXFace),
		images: make(map[image.Image]*ebiten.Image),
	}
}

// Image returns the backing image.
func (s *Surface) Image() *ebiten.Image { return s.canvas }

// Size returns the surface size in device pixels.
func (s *Surface) Size() (int, int) {
	b := s.canvas.Bounds()
	return b.Dx(), b.Dy()
}

// Save pushes the transform, alpha and clip.
func (s *Surface) Save() { s.stack = append(s.stack, s.cur) }

// Restore pops the state pushed by the matching Save.
func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.cur = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// Transform post-multiplies m onto the current transform.
func (s *Surface) Transform(m canopy.Matrix) { s.cur.m = s.cur.m.Multiply(m) }

// SetGlobalAlpha sets the alpha multiplied into every following draw.
func (s *Surface) SetGlobalAlpha(a float64) { s.cur.alpha = math.Min(math.Max(a, 0), 1) }

// ClipRect intersects the clip with the device bounds of r.
func (s *Surface) ClipRect(r canopy.Rect) {
	s.cur.clip = s.cur.clip.Intersect(s.deviceBounds(r))
}

// Clear fills the whole image with c, ignoring transform and clip.
func (s *Surface) Clear(c canopy.Color) {
	s.canvas.Clear()
	if !c.IsTransparent() {
		s.canvas.Fill(c)
	}
}

func (s *Surface) target() *ebiten.Image {
	if s.cur.clip.Empty() {
		return nil
	}
	return s.canvas.SubImage(s.cur.clip).(*ebiten.Image)
}

func (s *Surface) deviceBounds(r canopy.Rect) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range rectPoints(r) {
		x, y := s.cur.m.Apply(p.X, p.Y)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

func rectPoints(r canopy.Rect) []canopy.Vec2 {
	return []canopy.Vec2{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// devicePath builds a vector path through pts mapped to device space.
func (s *Surface) devicePath(pts []canopy.Vec2, closed bool) *vector.Path {
	var p vector.Path
	for i, pt := range pts {
		x, y := s.cur.m.Apply(pt.X, pt.Y)
		if i == 0 {
			p.MoveTo(float32(x), float32(y))
		} else {
			p.LineTo(float32(x), float32(y))
		}
	}
	if closed {
		p.Close()
	}
	return &p
}

func (s *Surface) drawVertices(dst *ebiten.Image, c canopy.Color) {
	c = c.WithAlpha(s.cur.alpha)
	for i := range s.vs {
		s.vs[i].SrcX, s.vs[i].SrcY = 1, 1
		s.vs[i].ColorR = float32(c.R)
		s.vs[i].ColorG = float32(c.G)
		s.vs[i].ColorB = float32(c.B)
		s.vs[i].ColorA = float32(c.A)
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true, FillRule: ebiten.FillRuleNonZero}
	dst.DrawTriangles(s.vs, s.is, whiteImage(), op)
}

func (s *Surface) fill(pts []canopy.Vec2, c canopy.Color) {
	dst := s.target()
	if dst == nil || c.WithAlpha(s.cur.alpha).IsTransparent() {
		return
	}
	s.vs, s.is = s.devicePath(pts, true).AppendVerticesAndIndicesForFilling(s.vs[:0], s.is[:0])
	s.drawVertices(dst, c)
}

func (s *Surface) stroke(pts []canopy.Vec2, c canopy.Color, lineWidth float64, closed bool) {
	dst := s.target()
	if dst == nil || lineWidth <= 0 || c.WithAlpha(s.cur.alpha).IsTransparent() {
		return
	}
	m := s.cur.m
	scale := math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
	op := &vector.StrokeOptions{Width: float32(lineWidth * scale), LineJoin: vector.LineJoinMiter, MiterLimit: 10}
	s.vs, s.is = s.devicePath(pts, closed).AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], op)
	s.drawVertices(dst, c)
}

// FillRect fills r with c.
func (s *Surface) FillRect(r canopy.Rect, c canopy.Color) {
	if r.Empty() {
		return
	}
	s.fill(rectPoints(r), c)
}

// StrokeRect outlines r with c.
func (s *Surface) StrokeRect(r canopy.Rect, c canopy.Color, lineWidth float64) {
	s.stroke(rectPoints(r), c, lineWidth, true)
}

// FillPath fills the polygon through pts.
func (s *Surface) FillPath(pts []canopy.Vec2, c canopy.Color) {
	if len(pts) < 3 {
		return
	}
	s.fill(pts, c)
}

// StrokePath strokes the polyline through pts.
func (s *Surface) StrokePath(pts []canopy.Vec2, c canopy.Color, lineWidth float64, closed bool) {
	if len(pts) < 2 {
		return
	}
	s.stroke(pts, c, lineWidth, closed)
}

func (s *Surface) face(f font.Face) *text.GoXFace {
	if xf, ok := s.faces[f]; ok {
		return xf
	}
	xf := text.NewGoXFace(f)
	s.faces[f] = xf
	return xf
}

// FillText draws str with its left edge at x, vertically centered on y.
func (s *Surface) FillText(str string, x, y float64, f font.Face, c canopy.Color) {
	dst := s.target()
	if dst == nil || str == "" || f == nil || c.WithAlpha(s.cur.alpha).IsTransparent() {
		return
	}
	xf := s.face(f)
	m := xf.Metrics()
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y-(m.HAscent+m.HDescent)/2)
	op.GeoM.Concat(geoM(s.cur.m))
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(float32(s.cur.alpha))
	op.Filter = ebiten.FilterLinear
	text.Draw(dst, str, xf, op)
}

// DrawImage scales the src region of img into dst.
func (s *Surface) DrawImage(img image.Image, src image.Rectangle, dst canopy.Rect) error {
	target := s.target()
	if target == nil || img == nil || dst.Empty() {
		return nil
	}
	eimg := s.ebitenImage(img)
	if src.Empty() {
		src = img.Bounds()
	}
	src = src.Intersect(img.Bounds())
	if src.Empty() {
		return nil
	}
	part := eimg.SubImage(src.Sub(img.Bounds().Min)).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(dst.Width/float64(src.Dx()), dst.Height/float64(src.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.GeoM.Concat(geoM(s.cur.m))
	op.ColorScale.ScaleAlpha(float32(s.cur.alpha))
	target.DrawImage(part, op)
	return nil
}

// ebitenImage converts img once and caches the result for comparable image
// values.
func (s *Surface) ebitenImage(img image.Image) *ebiten.Image {
	if e, ok := img.(*ebiten.Image); ok {
		return e
	}
	if !reflect.TypeOf(img).Comparable() {
		return ebiten.NewImageFromImage(img)
	}
	if e, ok := s.images[img]; ok {
		return e
	}
	e := ebiten.NewImageFromImage(img)
	s.images[img] = e
	return e
}

// ForgetImage drops the converted copy of img.
func (s *Surface) ForgetImage(img image.Image) {
	if e, ok := s.images[img]; ok {
		e.Deallocate()
		delete(s.images, img)
	}
}

// geoM converts an affine matrix to an ebiten.GeoM.
func geoM(m canopy.Matrix) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// whitePixel is a lazily created 3x3 white image; triangles sample its
// center pixel. The host is single-threaded.
var whitePixel *ebiten.Image

func whiteImage() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(3, 3)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

var _ canopy.Surface = (*Surface)(nil)
