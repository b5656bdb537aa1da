package canopy

import (
	"fmt"
	"sync"

	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TextShaper measures and segments text for text boxes and supplies the
// faces used to draw it.
type TextShaper interface {
	// Face returns the face for the given font size in pixels.
	Face(size float64) font.Face
	// Measure returns the advance width of s at the given size.
	Measure(s string, size float64) float64
	// Segments splits s at line-break opportunities. Concatenating the
	// result yields s.
	Segments(s string) []string
}

// FaceShaper is the default TextShaper. It builds one face per font size
// from an OpenType font and breaks lines at Unicode line-break
// opportunities.
type FaceShaper struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

var (
	goRegularOnce sync.Once
	goRegular     *opentype.Font
)

// NewFaceShaper returns a shaper for f. A nil f uses Go Regular.
func NewFaceShaper(f *opentype.Font) *FaceShaper {
	if f == nil {
		goRegularOnce.Do(func() {
			goRegular, _ = opentype.Parse(goregular.TTF)
		})
		f = goRegular
	}
	return &FaceShaper{font: f, faces: make(map[float64]font.Face)}
}

// LoadFaceShaper parses TTF or OTF data into a FaceShaper.
func LoadFaceShaper(data []byte) (*FaceShaper, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("canopy: parse font: %w", err)
	}
	return NewFaceShaper(f), nil
}

// Face returns the cached face for size, creating it on first use. If the
// font cannot produce a face, a fixed bitmap face is returned.
func (s *FaceShaper) Face(size float64) font.Face {
	if size <= 0 {
		size = defaultFontSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.faces[size]; ok {
		return f
	}
	var face font.Face = basicfont.Face7x13
	if s.font != nil {
		f, err := opentype.NewFace(s.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err == nil {
			face = f
		}
	}
	s.faces[size] = face
	return face
}

// Measure returns the advance width of str at size.
func (s *FaceShaper) Measure(str string, size float64) float64 {
	if str == "" {
		return 0
	}
	adv := font.MeasureString(s.Face(size), str)
	return float64(adv) / 64
}

// Segments splits str at line-break opportunities using the Unicode line
// breaking algorithm.
func (s *FaceShaper) Segments(str string) []string {
	return lineSegments(str)
}

func lineSegments(str string) []string {
	var segs []string
	state := -1
	for len(str) > 0 {
		var seg string
		seg, str, _, state = uniseg.FirstLineSegmentInString(str, state)
		segs = append(segs, seg)
	}
	return segs
}

// graphemes splits s into user-perceived characters.
func graphemes(s string) []string {
	var out []string
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}
