// Package ggsurface implements canopy.Surface on a fogleman/gg context, a
// software rasterizer. It is used for headless rendering, snapshots and
// tests.
package ggsurface

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/phanxgames/canopy"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Surface draws into an in-memory RGBA image.
type Surface struct {
	dc     *gg.Context
	alpha  float64
	alphas []float64
}

// New returns a surface of the given size in device pixels.
func New(width, height int) *Surface {
	return &Surface{dc: gg.NewContext(max(width, 1), max(height, 1)), alpha: 1}
}

// Size returns the surface size in device pixels.
func (s *Surface) Size() (int, int) { return s.dc.Width(), s.dc.Height() }

// Image returns the backing image.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// Context exposes the gg context, e.g. for extra render hooks.
func (s *Surface) Context() *gg.Context { return s.dc }

// EncodePNG writes the current image as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("ggsurface: encode png: %w", err)
	}
	return nil
}

// SavePNG writes the current image to a PNG file.
func (s *Surface) SavePNG(path string) error {
	if err := s.dc.SavePNG(path); err != nil {
		return fmt.Errorf("ggsurface: save %s: %w", path, err)
	}
	return nil
}

// Save pushes the transform, clip and global alpha.
func (s *Surface) Save() {
	s.dc.Push()
	s.alphas = append(s.alphas, s.alpha)
}

// Restore pops the state pushed by the matching Save.
func (s *Surface) Restore() {
	if len(s.alphas) == 0 {
		return
	}
	s.dc.Pop()
	s.alpha = s.alphas[len(s.alphas)-1]
	s.alphas = s.alphas[:len(s.alphas)-1]
}

// Transform post-multiplies m onto the current transform. gg only exposes
// elementary transforms, so m is decomposed into translate, rotate, shear
// and scale.
func (s *Surface) Transform(m canopy.Matrix) {
	if m.IsIdentity() {
		return
	}
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	s.dc.Translate(e, f)
	sx := math.Hypot(a, b)
	if sx == 0 {
		s.dc.Scale(0, 0)
		return
	}
	theta := math.Atan2(b, a)
	sin, cos := math.Sincos(theta)
	k := cos*c + sin*d
	sy := -sin*c + cos*d
	if theta != 0 {
		s.dc.Rotate(theta)
	}
	if sy != 0 && k != 0 {
		s.dc.Shear(k/sy, 0)
	}
	s.dc.Scale(sx, sy)
}

// SetGlobalAlpha sets the alpha multiplied into every following draw.
func (s *Surface) SetGlobalAlpha(a float64) {
	s.alpha = math.Min(math.Max(a, 0), 1)
}

// ClipRect intersects the clip region with r.
func (s *Surface) ClipRect(r canopy.Rect) {
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Clip()
}

// Clear fills the whole surface with c, ignoring transform and clip.
func (s *Surface) Clear(c canopy.Color) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

func (s *Surface) setColor(c canopy.Color) bool {
	c = c.WithAlpha(s.alpha)
	if c.IsTransparent() {
		return false
	}
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
	return true
}

// FillRect fills r with c.
func (s *Surface) FillRect(r canopy.Rect, c canopy.Color) {
	if r.Empty() || !s.setColor(c) {
		return
	}
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Fill()
}

// StrokeRect outlines r with c.
func (s *Surface) StrokeRect(r canopy.Rect, c canopy.Color, lineWidth float64) {
	if lineWidth <= 0 || !s.setColor(c) {
		return
	}
	s.dc.SetLineWidth(lineWidth)
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Stroke()
}

func (s *Surface) path(pts []canopy.Vec2, closed bool) {
	s.dc.NewSubPath()
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	if closed {
		s.dc.ClosePath()
	}
}

// FillPath fills the polygon through pts.
func (s *Surface) FillPath(pts []canopy.Vec2, c canopy.Color) {
	if len(pts) < 3 || !s.setColor(c) {
		return
	}
	s.path(pts, true)
	s.dc.Fill()
}

// StrokePath strokes the polyline through pts.
func (s *Surface) StrokePath(pts []canopy.Vec2, c canopy.Color, lineWidth float64, closed bool) {
	if len(pts) < 2 || lineWidth <= 0 || !s.setColor(c) {
		return
	}
	s.dc.SetLineWidth(lineWidth)
	s.path(pts, closed)
	s.dc.Stroke()
}

// FillText draws str with its left edge at x, vertically centered on y.
func (s *Surface) FillText(str string, x, y float64, face font.Face, c canopy.Color) {
	if str == "" || face == nil || !s.setColor(c) {
		return
	}
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	s.dc.SetFontFace(face)
	s.dc.DrawString(str, x, y+(ascent-descent)/2)
}

// DrawImage scales the src region of img into dst.
func (s *Surface) DrawImage(img image.Image, src image.Rectangle, dst canopy.Rect) error {
	if img == nil {
		return fmt.Errorf("ggsurface: nil image")
	}
	if src.Empty() {
		src = img.Bounds()
	}
	src = src.Intersect(img.Bounds())
	if src.Empty() || dst.Empty() {
		return nil
	}
	part := subImage(img, src, s.alpha)
	s.dc.Push()
	s.dc.Translate(dst.X, dst.Y)
	s.dc.Scale(dst.Width/float64(src.Dx()), dst.Height/float64(src.Dy()))
	s.dc.DrawImage(part, 0, 0)
	s.dc.Pop()
	return nil
}

// subImage copies the src region of img to an image anchored at the origin,
// applying alpha.
func subImage(img image.Image, src image.Rectangle, alpha float64) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	if alpha >= 1 {
		draw.Draw(out, out.Bounds(), img, src.Min, draw.Src)
		return out
	}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	draw.DrawMask(out, out.Bounds(), img, src.Min, mask, image.Point{}, draw.Src)
	return out
}

var _ canopy.Surface = (*Surface)(nil)
