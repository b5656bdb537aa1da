package canopy

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Overflow controls clipping and scrolling of a box's children.
type Overflow uint8

const (
	OverflowVisible Overflow = iota // children draw outside the box
	OverflowHidden                  // children are clipped to the content box
	OverflowAuto                    // clipped and scrollable by touch drag
)

// Position selects how a box is placed inside its parent.
type Position uint8

const (
	PositionStatic   Position = iota // stacked by the parent's flow
	PositionRelative                 // flow position plus its own offset
	PositionAbsolute                 // parent's padding-box origin plus offset; out of flow
)

// Display selects the layout mode a box uses for its children.
type Display uint8

const (
	DisplayBlock Display = iota // children stack vertically
	DisplayFlex                 // children are distributed along one axis
)

// FlexOrient is the main axis of a flex container.
type FlexOrient uint8

const (
	FlexHorizontal FlexOrient = iota
	FlexVertical
)

// FlexAlign is the cross-axis alignment of a flex container's children.
type FlexAlign uint8

const (
	FlexStart FlexAlign = iota
	FlexCenter
	FlexEnd
)

// WhiteSpace controls line wrapping in text boxes.
type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNoWrap
)

// TextOverflow controls how a non-wrapping line that overflows is cut.
type TextOverflow uint8

const (
	TextOverflowClip TextOverflow = iota
	TextOverflowEllipsis
)

const (
	defaultFontSize   = 16
	lineHeightFactor  = 1.2
	defaultZIndex     = 0
	maxDeclarationLen = 4096
)

// Style is the resolved visual and layout record of a box. Edge slices use
// CSS order: top, right, bottom, left.
type Style struct {
	Background  Color
	Color       Color
	BorderColor [4]Color
	BorderWidth Edges
	Margin      Edges
	Padding     Edges

	FontSize     float64
	LineHeight   float64
	TextAlign    TextAlign
	WhiteSpace   WhiteSpace
	TextOverflow TextOverflow

	Overflow      Overflow
	Position      Position
	PointerEvents bool
	Display       Display
	ZIndex        int

	Flex       float64
	FlexOrient FlexOrient
	FlexAlign  FlexAlign

	// Zero means unset.
	MinWidth, MaxWidth   float64
	MinHeight, MaxHeight float64

	Transform    Matrix
	HasTransform bool

	lineHeightSet bool
	lineHeightMul float64
}

// DefaultStyle returns the style every box starts from before rules and
// inline declarations apply.
func DefaultStyle() Style {
	return Style{
		Color:         ColorBlack,
		BorderColor:   [4]Color{ColorBlack, ColorBlack, ColorBlack, ColorBlack},
		FontSize:      defaultFontSize,
		LineHeight:    defaultFontSize * lineHeightFactor,
		PointerEvents: true,
		ZIndex:        defaultZIndex,
		Transform:     Identity,
	}
}

// Declaration is one "property: value" pair after shorthand expansion.
type Declaration struct {
	Property string
	Value    string
}

// ParseDeclarations splits an inline style string ("color: red; margin: 4px 8px")
// into declarations, lowercasing property names and expanding the margin,
// padding, border-width, border-color and border shorthands. Empty or
// malformed entries are skipped.
func ParseDeclarations(s string) []Declaration {
	if len(s) > maxDeclarationLen {
		s = s[:maxDeclarationLen]
	}
	var out []Declaration
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		out = expandShorthand(out, prop, val)
	}
	return out
}

var sideNames = [4]string{"top", "right", "bottom", "left"}

func expandShorthand(out []Declaration, prop, val string) []Declaration {
	switch prop {
	case "margin", "padding":
		vals, ok := expandBoxValues(val)
		if !ok {
			return out
		}
		for i, side := range sideNames {
			out = append(out, Declaration{prop + "-" + side, vals[i]})
		}
	case "border-width", "border-color":
		vals, ok := expandBoxValues(val)
		if !ok {
			return out
		}
		kind := strings.TrimPrefix(prop, "border-")
		for i, side := range sideNames {
			out = append(out, Declaration{"border-" + side + "-" + kind, vals[i]})
		}
	case "border":
		for _, side := range sideNames {
			out = expandBorderSide(out, side, val)
		}
	case "border-top", "border-right", "border-bottom", "border-left":
		out = expandBorderSide(out, strings.TrimPrefix(prop, "border-"), val)
	default:
		out = append(out, Declaration{prop, val})
	}
	return out
}

// expandBoxValues applies the 1/2/3/4-value rule for box shorthands.
func expandBoxValues(val string) ([4]string, bool) {
	parts := strings.Fields(val)
	switch len(parts) {
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}, true
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}, true
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}, true
	case 4:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}, true
	}
	return [4]string{}, false
}

func expandBorderSide(out []Declaration, side, val string) []Declaration {
	for _, part := range splitColorAware(val) {
		switch {
		case isBorderStyleKeyword(part):
		case isLength(part):
			out = append(out, Declaration{"border-" + side + "-width", part})
		default:
			out = append(out, Declaration{"border-" + side + "-color", part})
		}
	}
	return out
}

// splitColorAware splits on whitespace outside parentheses so that
// "1px solid rgba(0, 0, 0, 0.5)" keeps the color in one piece.
func splitColorAware(s string) []string {
	var parts []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ' ' || r == '\t') && depth == 0:
			if start >= 0 {
				parts = append(parts, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, s[start:])
	}
	return parts
}

func isBorderStyleKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "none", "solid", "dotted", "dashed", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

func isLength(s string) bool {
	_, ok := ParseLength(s)
	return ok
}

// ParseLength parses a pixel length ("12px", "12", "0"). Negative values
// are allowed; callers clamp where the property requires it.
func ParseLength(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "px")
	return parseNumber(s)
}

// ParseColor parses #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(), rgba(),
// "transparent" and the SVG/CSS color keywords.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return Color{}, false
	case s == "transparent":
		return ColorTransparent, true
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}, true
	}
	return Color{}, false
}

func parseHexColor(h string) (Color, bool) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return Color{}, false
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, true
}

func parseRGBFunc(s string) (Color, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, false
	}
	args := splitArgs(s[open+1 : len(s)-1])
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var ch [4]float64
	ch[3] = 1
	for i, a := range args {
		pct := strings.HasSuffix(a, "%")
		v, ok := parseNumber(strings.TrimSuffix(a, "%"))
		if !ok {
			return Color{}, false
		}
		switch {
		case i == 3 && pct:
			v /= 100
		case i == 3:
		case pct:
			v /= 100
		default:
			v /= 255
		}
		ch[i] = clamp01(v)
	}
	return Color{ch[0], ch[1], ch[2], ch[3]}, true
}

// Apply sets the property named by d. Unknown properties and unparseable
// values leave the style unchanged.
func (st *Style) Apply(d Declaration) {
	val := strings.TrimSpace(d.Value)
	lower := strings.ToLower(val)
	switch d.Property {
	case "background", "background-color":
		if c, ok := ParseColor(val); ok {
			st.Background = c
		}
	case "color":
		if c, ok := ParseColor(val); ok {
			st.Color = c
		}
	case "font-size":
		if v, ok := ParseLength(val); ok && v > 0 {
			st.FontSize = v
		}
	case "line-height":
		st.applyLineHeight(lower)
	case "text-align":
		switch lower {
		case "left", "start":
			st.TextAlign = TextAlignLeft
		case "center":
			st.TextAlign = TextAlignCenter
		case "right", "end":
			st.TextAlign = TextAlignRight
		}
	case "white-space":
		switch lower {
		case "nowrap", "pre":
			st.WhiteSpace = WhiteSpaceNoWrap
		case "normal":
			st.WhiteSpace = WhiteSpaceNormal
		}
	case "text-overflow":
		switch lower {
		case "ellipsis":
			st.TextOverflow = TextOverflowEllipsis
		case "clip":
			st.TextOverflow = TextOverflowClip
		}
	case "overflow", "overflow-y":
		switch lower {
		case "visible":
			st.Overflow = OverflowVisible
		case "hidden":
			st.Overflow = OverflowHidden
		case "auto", "scroll":
			st.Overflow = OverflowAuto
		}
	case "position":
		switch lower {
		case "static":
			st.Position = PositionStatic
		case "relative":
			st.Position = PositionRelative
		case "absolute", "fixed":
			st.Position = PositionAbsolute
		}
	case "pointer-events":
		st.PointerEvents = lower != "none"
	case "display":
		switch lower {
		case "box", "-webkit-box", "flex", "-webkit-flex":
			st.Display = DisplayFlex
		case "block", "inline-block", "inline":
			st.Display = DisplayBlock
		}
	case "z-index":
		if v, err := strconv.Atoi(lower); err == nil {
			st.ZIndex = v
		} else if lower == "auto" {
			st.ZIndex = defaultZIndex
		}
	case "box-flex", "-webkit-box-flex", "flex", "flex-grow":
		if v, ok := parseNumber(lower); ok && v >= 0 {
			st.Flex = v
		}
	case "box-orient", "-webkit-box-orient", "flex-direction":
		switch lower {
		case "vertical", "block-axis", "column":
			st.FlexOrient = FlexVertical
		case "horizontal", "inline-axis", "row":
			st.FlexOrient = FlexHorizontal
		}
	case "box-align", "-webkit-box-align", "align-items":
		switch lower {
		case "start", "flex-start", "stretch", "baseline":
			st.FlexAlign = FlexStart
		case "center":
			st.FlexAlign = FlexCenter
		case "end", "flex-end":
			st.FlexAlign = FlexEnd
		}
	case "min-width":
		st.MinWidth = nonNegativeLength(val, st.MinWidth)
	case "max-width":
		st.MaxWidth = nonNegativeLength(val, st.MaxWidth)
	case "min-height":
		st.MinHeight = nonNegativeLength(val, st.MinHeight)
	case "max-height":
		st.MaxHeight = nonNegativeLength(val, st.MaxHeight)
	case "transform", "-webkit-transform":
		if lower == "none" {
			st.Transform, st.HasTransform = Identity, false
		} else if m, ok := ParseTransform(val); ok {
			st.Transform, st.HasTransform = m, !m.IsIdentity()
		}
	default:
		st.applySide(d.Property, val)
	}
}

func (st *Style) applyLineHeight(v string) {
	if v == "normal" {
		st.lineHeightSet, st.lineHeightMul = false, 0
		return
	}
	if strings.HasSuffix(v, "px") {
		if px, ok := ParseLength(v); ok && px >= 0 {
			st.LineHeight, st.lineHeightSet, st.lineHeightMul = px, true, 0
		}
		return
	}
	if strings.HasSuffix(v, "%") {
		if pct, ok := parseNumber(strings.TrimSuffix(v, "%")); ok && pct >= 0 {
			st.lineHeightSet, st.lineHeightMul = false, pct/100
		}
		return
	}
	// Unitless values are multiples of the final font size.
	if f, ok := parseNumber(v); ok && f >= 0 {
		st.lineHeightSet, st.lineHeightMul = false, f
	}
}

// applySide handles the per-side longhands produced by shorthand expansion.
func (st *Style) applySide(prop, val string) {
	var group, side string
	switch {
	case strings.HasPrefix(prop, "margin-"):
		group, side = "margin", strings.TrimPrefix(prop, "margin-")
	case strings.HasPrefix(prop, "padding-"):
		group, side = "padding", strings.TrimPrefix(prop, "padding-")
	case strings.HasPrefix(prop, "border-") && strings.HasSuffix(prop, "-width"):
		group, side = "border-width", strings.TrimSuffix(strings.TrimPrefix(prop, "border-"), "-width")
	case strings.HasPrefix(prop, "border-") && strings.HasSuffix(prop, "-color"):
		group, side = "border-color", strings.TrimSuffix(strings.TrimPrefix(prop, "border-"), "-color")
	default:
		return
	}
	i := sideIndex(side)
	if i < 0 {
		return
	}
	if group == "border-color" {
		if c, ok := ParseColor(val); ok {
			st.BorderColor[i] = c
		}
		return
	}
	v, ok := ParseLength(val)
	if !ok {
		if strings.EqualFold(val, "auto") {
			v, ok = 0, true
		} else {
			return
		}
	}
	switch group {
	case "margin":
		setEdge(&st.Margin, i, v)
	case "padding":
		setEdge(&st.Padding, i, max(v, 0))
	case "border-width":
		setEdge(&st.BorderWidth, i, max(v, 0))
	}
}

func sideIndex(side string) int {
	for i, s := range sideNames {
		if s == side {
			return i
		}
	}
	return -1
}

func setEdge(e *Edges, i int, v float64) {
	switch i {
	case 0:
		e.Top = v
	case 1:
		e.Right = v
	case 2:
		e.Bottom = v
	case 3:
		e.Left = v
	}
}

func nonNegativeLength(val string, prev float64) float64 {
	if strings.EqualFold(strings.TrimSpace(val), "none") {
		return 0
	}
	if v, ok := ParseLength(val); ok && v >= 0 {
		return v
	}
	return prev
}

// finish derives values that depend on other properties once every
// declaration has been applied.
func (st *Style) finish() {
	switch {
	case st.lineHeightSet:
	case st.lineHeightMul > 0:
		st.LineHeight = st.FontSize * st.lineHeightMul
	default:
		st.LineHeight = st.FontSize * lineHeightFactor
	}
}

// clampWidth applies MinWidth then MaxWidth to w.
func (st *Style) clampWidth(w float64) float64 {
	if st.MinWidth > 0 {
		w = max(w, st.MinWidth)
	}
	if st.MaxWidth > 0 {
		w = min(w, st.MaxWidth)
	}
	return w
}

// clampHeight applies MinHeight then MaxHeight to h.
func (st *Style) clampHeight(h float64) float64 {
	if st.MinHeight > 0 {
		h = max(h, st.MinHeight)
	}
	if st.MaxHeight > 0 {
		h = min(h, st.MaxHeight)
	}
	return h
}

// insetsX returns the margin, border and padding on the left and right.
func (st *Style) insetsX() float64 {
	return st.Margin.Horizontal() + st.BorderWidth.Horizontal() + st.Padding.Horizontal()
}

// insetsY returns the margin, border and padding on the top and bottom.
func (st *Style) insetsY() float64 {
	return st.Margin.Vertical() + st.BorderWidth.Vertical() + st.Padding.Vertical()
}

// baseX is the content-box left edge relative to the margin-box origin.
func (st *Style) baseX() float64 {
	return st.Margin.Left + st.BorderWidth.Left + st.Padding.Left
}

// baseY is the content-box top edge relative to the margin-box origin.
func (st *Style) baseY() float64 {
	return st.Margin.Top + st.BorderWidth.Top + st.Padding.Top
}
