package canopy

import (
	"errors"
	"image"
	"math"

	"go.uber.org/zap"
)

// ImageContent is the image component of an Image node. The image is
// requested from the stage's ImageCache when the node joins a stage.
type ImageContent struct {
	node *Node
	src  string
	clip image.Rectangle

	img  image.Image
	err  error
	gen  int
	busy bool
}

// NewImage creates an image box showing src. A box with an auto width or
// height takes it from the image, preserving the aspect ratio.
func NewImage(name string, cfg BoxConfig, src string) *Node {
	n := newBoxNode(name, NodeTypeImage, cfg)
	n.Image = &ImageContent{node: n, src: normalizeSrc(src)}
	return n
}

// Src returns the image source.
func (m *ImageContent) Src() string { return m.src }

// Loaded reports whether the image has been decoded.
func (m *ImageContent) Loaded() bool { return m.img != nil }

// Loading reports whether a request is in flight.
func (m *ImageContent) Loading() bool { return m.busy }

// Image returns the decoded image, or nil.
func (m *ImageContent) Image() image.Image { return m.img }

// Err returns the latest load error.
func (m *ImageContent) Err() error { return m.err }

// Clip returns the source rectangle; empty means the whole image.
func (m *ImageContent) Clip() image.Rectangle { return m.clip }

// SetClip draws only r of the source image and sizes the box from it.
func (m *ImageContent) SetClip(r image.Rectangle) {
	r = r.Canon()
	if r == m.clip {
		return
	}
	m.clip = r
	if m.img != nil {
		m.node.Box.relayout()
	}
	m.node.Repaint()
}

// NaturalSize returns the size of the drawn source region, or zero before
// the image is loaded.
func (m *ImageContent) NaturalSize() (w, h float64) {
	if m.img == nil {
		return 0, 0
	}
	r := m.img.Bounds()
	if !m.clip.Empty() {
		r = m.clip
	}
	return float64(r.Dx()), float64(r.Dy())
}

func (m *ImageContent) setSrc(src string) {
	src = normalizeSrc(src)
	if src == m.src {
		return
	}
	m.src = src
	m.img, m.err = nil, nil
	m.gen++
	m.busy = false
	if m.node.stage != nil {
		m.node.Box.relayout()
		m.load()
	}
}

// load requests the image. A completion that arrives after the source
// changed or the node left the stage is dropped.
func (m *ImageContent) load() {
	s := m.node.stage
	if s == nil || m.src == "" || m.img != nil || m.busy {
		return
	}
	m.gen++
	gen := m.gen
	m.busy = true
	s.images.Request(m.src, func(img image.Image, err error) {
		if m.gen != gen {
			return
		}
		m.busy = false
		if m.node.stage == nil || m.node.disposed {
			return
		}
		m.complete(img, err)
	})
}

func (m *ImageContent) complete(img image.Image, err error) {
	n := m.node
	if err == nil && img == nil {
		err = errors.New("canopy: loader returned no image")
	}
	if err != nil {
		m.err = err
		n.stage.logger.Debug("canopy: image error", zap.String("src", m.src), zap.Error(err))
		n.Dispatch(&Event{Type: EventError, Target: n, Err: err})
		return
	}
	m.img, m.err = img, nil
	n.Box.relayout()
	n.Repaint()
	n.Dispatch(&Event{Type: EventLoad, Target: n})
}

// size derives the box size from the image. It runs during layout after
// the declared size was resolved.
func (m *ImageContent) size(b *Box) {
	wAuto := b.width.IsAuto() && !b.flexWSet
	hAuto := b.height.IsAuto() && !b.flexHSet
	iw, ih := m.NaturalSize()
	switch {
	case iw <= 0 || ih <= 0:
		if wAuto {
			b.w = 0
		}
		if hAuto {
			b.h = 0
		}
	case wAuto && hAuto:
		b.w, b.h = iw, ih
	case wAuto:
		b.w = math.Round(b.h * iw / ih)
	case hAuto:
		b.h = math.Round(b.w * ih / iw)
	}
	b.fixedH = true
}

func (m *ImageContent) render(sf Surface) error {
	if m.img == nil {
		return nil
	}
	b := m.node.Box
	return sf.DrawImage(m.img, m.clip, b.ContentRect())
}

func (m *ImageContent) dispose() {
	m.gen++
	m.busy = false
	m.img = nil
}
