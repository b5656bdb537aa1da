package canopy

import (
	"image"

	"golang.org/x/image/font"
)

// Surface is the 2D raster drawing context a Stage renders into. Its state
// model follows a canvas: Save pushes the current transform, alpha and clip;
// Restore pops them. Transform post-multiplies the current transform.
//
// Implementations live outside this package (see ggsurface and ebitenhost).
type Surface interface {
	// Size returns the surface size in device pixels.
	Size() (width, height int)

	Save()
	Restore()
	Transform(m Matrix)
	SetGlobalAlpha(a float64)
	// ClipRect intersects the clip region with r in the current space.
	ClipRect(r Rect)
	Clear(c Color)

	FillRect(r Rect, c Color)
	StrokeRect(r Rect, c Color, lineWidth float64)
	// FillPath fills the closed polygon through pts.
	FillPath(pts []Vec2, c Color)
	// StrokePath strokes the polyline through pts.
	StrokePath(pts []Vec2, c Color, lineWidth float64, closed bool)
	// FillText draws s with its left edge at x and vertical middle at y.
	FillText(s string, x, y float64, face font.Face, c Color)
	// DrawImage draws the src region of img into dst. A zero src draws the
	// whole image.
	DrawImage(img image.Image, src image.Rectangle, dst Rect) error
}
