// Package scenefile loads canopy scenes from YAML documents.
//
// A document declares the stage size, a stylesheet and a tree of nodes:
//
//	width: 320
//	height: 480
//	background: "#fff"
//	styles: |
//	  .row { padding: 8px; border-bottom: 1px solid #ddd }
//	nodes:
//	  - type: box
//	    name: list
//	    style: "overflow: auto"
//	    height: 300
//	    children:
//	      - type: text
//	        class: row
//	        text: Hello
package scenefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/canopy"
	"gopkg.in/yaml.v3"
)

// Node types accepted in documents.
const (
	TypeContainer = "container"
	TypeBox       = "box"
	TypeText      = "text"
	TypeImage     = "image"
	TypeShape     = "shape"
)

// Document is a parsed scene file.
type Document struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Ratio      float64 `yaml:"ratio"`
	Background string  `yaml:"background"`
	// Styles holds inline stylesheet source.
	Styles string `yaml:"styles"`
	// StyleFiles are stylesheet paths relative to the document.
	StyleFiles []string `yaml:"stylesheets"`
	Nodes      []Node   `yaml:"nodes"`

	dir string
}

// Node describes one scene node and its children.
type Node struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Tag         string `yaml:"tag"`
	ID          string `yaml:"id"`
	Class       string `yaml:"class"`
	ActiveClass string `yaml:"activeClass"`
	Style       string `yaml:"style"`

	Width     Length   `yaml:"width"`
	Height    Length   `yaml:"height"`
	X         float64  `yaml:"x"`
	Y         float64  `yaml:"y"`
	ScrollTop float64  `yaml:"scrollTop"`
	Alpha     *float64 `yaml:"alpha"`
	Hidden    bool     `yaml:"hidden"`
	Transform string   `yaml:"transform"`

	Text  string `yaml:"text"`
	Spans []Span `yaml:"spans"`
	Src   string `yaml:"src"`

	Points    [][2]float64 `yaml:"points"`
	Fill      string       `yaml:"fill"`
	Stroke    string       `yaml:"stroke"`
	LineWidth float64      `yaml:"lineWidth"`

	Children []Node `yaml:"children"`

	line int
}

// Span is one styled run of a text node.
type Span struct {
	Text     string  `yaml:"text"`
	Color    string  `yaml:"color"`
	FontSize float64 `yaml:"fontSize"`
	Href     string  `yaml:"href"`
	Target   string  `yaml:"target"`
}

// Length is a box dimension: a number of pixels, "12px" or "auto".
type Length struct {
	canopy.Length
}

// UnmarshalYAML accepts numbers, px strings and "auto".
func (l *Length) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", value.Line)
	}
	s := strings.TrimSpace(value.Value)
	if s == "" || strings.EqualFold(s, "auto") {
		l.Length = canopy.Auto
		return nil
	}
	v, ok := canopy.ParseLength(s)
	if !ok {
		return fmt.Errorf("line %d: invalid length %q", value.Line, s)
	}
	l.Length = canopy.Px(v)
	return nil
}

// UnmarshalYAML records the source line for error messages.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	type plain Node
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.line = value.Line
	return nil
}

// Parse decodes a document. Unknown top-level keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	return &doc, nil
}

// Load reads and decodes the document at path. Relative stylesheet and
// image paths resolve against its directory.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.dir = filepath.Dir(path)
	return doc, nil
}

// Dir returns the directory the document was loaded from, or "".
func (d *Document) Dir() string { return d.dir }

// StyleSheet parses the inline styles followed by the style files.
func (d *Document) StyleSheet() (*canopy.StyleSheet, error) {
	src := d.Styles
	for _, f := range d.StyleFiles {
		if d.dir != "" && !filepath.IsAbs(f) {
			f = filepath.Join(d.dir, f)
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("scenefile: %w", err)
		}
		src += "\n" + string(data)
	}
	sheet, err := canopy.ParseStyleSheet(src)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	return sheet, nil
}

// StageConfig returns a stage config carrying the document's size,
// background and stylesheet. Loader is rooted at the document directory.
func (d *Document) StageConfig() (canopy.StageConfig, error) {
	sheet, err := d.StyleSheet()
	if err != nil {
		return canopy.StageConfig{}, err
	}
	cfg := canopy.StageConfig{
		Width:      d.Width,
		Height:     d.Height,
		Ratio:      d.Ratio,
		StyleSheet: sheet,
		Loader:     canopy.DefaultLoader{Root: d.dir},
	}
	if d.Background != "" {
		c, ok := canopy.ParseColor(d.Background)
		if !ok {
			return canopy.StageConfig{}, fmt.Errorf("scenefile: invalid background %q", d.Background)
		}
		cfg.Background = c
	}
	return cfg, nil
}

// Build creates the top-level nodes. Nothing is attached to a stage.
func (d *Document) Build() ([]*canopy.Node, error) {
	out := make([]*canopy.Node, 0, len(d.Nodes))
	for i := range d.Nodes {
		n, err := d.Nodes[i].Build()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Build creates the node and its subtree.
func (n *Node) Build() (*canopy.Node, error) {
	node, err := n.build()
	if err != nil {
		return nil, fmt.Errorf("scenefile: line %d: %w", n.line, err)
	}
	if n.Alpha != nil {
		node.SetAlpha(*n.Alpha)
	}
	if n.Hidden {
		node.SetVisible(false)
	}
	if n.Transform != "" {
		if _, ok := canopy.ParseTransform(n.Transform); !ok {
			return nil, fmt.Errorf("scenefile: line %d: invalid transform %q", n.line, n.Transform)
		}
		node.SetTransform(n.Transform)
	}
	for i := range n.Children {
		child, err := n.Children[i].Build()
		if err != nil {
			return nil, err
		}
		node.AppendChild(child)
	}
	return node, nil
}

func (n *Node) boxConfig() canopy.BoxConfig {
	return canopy.BoxConfig{
		Tag:         n.Tag,
		ID:          n.ID,
		Class:       n.Class,
		ActiveClass: n.ActiveClass,
		Style:       n.Style,
		Width:       n.Width.Length,
		Height:      n.Height.Length,
		X:           n.X,
		Y:           n.Y,
		ScrollTop:   n.ScrollTop,
	}
}

func (n *Node) build() (*canopy.Node, error) {
	switch strings.ToLower(n.Type) {
	case TypeContainer:
		c := canopy.NewContainer(n.Name)
		c.SetPosition(n.X, n.Y)
		return c, nil
	case "", TypeBox:
		return canopy.NewBox(n.Name, n.boxConfig()), nil
	case TypeText:
		spans, err := n.spans()
		if err != nil {
			return nil, err
		}
		return canopy.NewText(n.Name, n.boxConfig(), spans...), nil
	case TypeImage:
		return canopy.NewImage(n.Name, n.boxConfig(), n.Src), nil
	case TypeShape:
		return n.shape()
	}
	return nil, fmt.Errorf("unknown node type %q", n.Type)
}

func (n *Node) spans() ([]canopy.Span, error) {
	if len(n.Spans) == 0 {
		return []canopy.Span{{Text: n.Text}}, nil
	}
	out := make([]canopy.Span, 0, len(n.Spans))
	for _, s := range n.Spans {
		sp := canopy.Span{Text: s.Text, FontSize: s.FontSize}
		if s.Color != "" {
			c, ok := canopy.ParseColor(s.Color)
			if !ok {
				return nil, fmt.Errorf("invalid span color %q", s.Color)
			}
			sp.Color = c
		}
		if s.Href != "" {
			sp.Link = &canopy.Link{Href: s.Href, Target: s.Target}
		}
		out = append(out, sp)
	}
	return out, nil
}

func (n *Node) shape() (*canopy.Node, error) {
	if len(n.Points) < 2 {
		return nil, errors.New("shape needs at least two points")
	}
	pts := make([]canopy.Vec2, len(n.Points))
	for i, p := range n.Points {
		pts[i] = canopy.Vec2{X: p[0], Y: p[1]}
	}
	node := canopy.NewPolygon(n.Name, pts)
	node.SetPosition(n.X, n.Y)
	sh := node.Shape
	if n.Fill != "" {
		c, ok := canopy.ParseColor(n.Fill)
		if !ok {
			return nil, fmt.Errorf("invalid fill %q", n.Fill)
		}
		sh.SetFill(c)
	}
	if n.Stroke != "" {
		c, ok := canopy.ParseColor(n.Stroke)
		if !ok {
			return nil, fmt.Errorf("invalid stroke %q", n.Stroke)
		}
		w := n.LineWidth
		if w <= 0 {
			w = 1
		}
		sh.SetStroke(c, w)
	}
	return node, nil
}
