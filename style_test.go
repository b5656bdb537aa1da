package canopy

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/sync/errgroup"
)

var styleCmp = []cmp.Option{cmpopts.IgnoreUnexported(Style{}), approx}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#f00", Color{1, 0, 0, 1}, true},
		{"#0f08", Color{0, 1, 0, 0x88 / 255.0}, true},
		{"#0000ff", Color{0, 0, 1, 1}, true},
		{"#ff000080", Color{1, 0, 0, 0x80 / 255.0}, true},
		{"rgb(255, 0, 0)", Color{1, 0, 0, 1}, true},
		{"rgba(0,0,255,0.5)", Color{0, 0, 1, 0.5}, true},
		{"rgb(100%, 0%, 50%)", Color{1, 0, 0.5, 1}, true},
		{"rgba(0 0 0 / 50%)", Color{}, false},
		{"rgba(300, 0, 0, 2)", Color{1, 0, 0, 1}, true},
		{" RED ", Color{1, 0, 0, 1}, true},
		{"white", ColorWhite, true},
		{"transparent", ColorTransparent, true},
		{"nope", Color{}, false},
		{"", Color{}, false},
		{"#12", Color{}, false},
		{"#zzzzzz", Color{}, false},
		{"rgb(1,2)", Color{}, false},
		{"rgb(1,2,x)", Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("ParseColor(%q) (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12px", 12, true},
		{"12", 12, true},
		{" 1.5PX ", 1.5, true},
		{"-4px", -4, true},
		{"auto", 0, false},
		{"px", 0, false},
		{"12em", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLength(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseDeclarations(t *testing.T) {
	got := ParseDeclarations("margin:1px 2px; PADDING:3px; border:2px solid rgba(0, 0, 0, 0.5);; bogus; :x")
	want := []Declaration{
		{"margin-top", "1px"},
		{"margin-right", "2px"},
		{"margin-bottom", "1px"},
		{"margin-left", "2px"},
		{"padding-top", "3px"},
		{"padding-right", "3px"},
		{"padding-bottom", "3px"},
		{"padding-left", "3px"},
		{"border-top-width", "2px"},
		{"border-top-color", "rgba(0, 0, 0, 0.5)"},
		{"border-right-width", "2px"},
		{"border-right-color", "rgba(0, 0, 0, 0.5)"},
		{"border-bottom-width", "2px"},
		{"border-bottom-color", "rgba(0, 0, 0, 0.5)"},
		{"border-left-width", "2px"},
		{"border-left-color", "rgba(0, 0, 0, 0.5)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDeclarations (-want +got):\n%s", diff)
	}
}

func TestShorthandValueCounts(t *testing.T) {
	tests := []struct {
		in   string
		want Edges
	}{
		{"margin: 1px", Edges{1, 1, 1, 1}},
		{"margin: 1px 2px", Edges{1, 2, 1, 2}},
		{"margin: 1px 2px 3px", Edges{1, 2, 3, 2}},
		{"margin: 1px 2px 3px 4px", Edges{1, 2, 3, 4}},
		{"margin: 1px 2px 3px 4px 5px", Edges{}},
		{"margin: 0 auto", Edges{}},
		{"margin: 4px; margin-left: 9px", Edges{4, 4, 4, 9}},
	}
	for _, tt := range tests {
		st := DefaultStyle()
		for _, d := range ParseDeclarations(tt.in) {
			st.Apply(d)
		}
		if diff := cmp.Diff(tt.want, st.Margin); diff != "" {
			t.Errorf("%q margin (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestStyleApply(t *testing.T) {
	decls := strings.Join([]string{
		"background: #fff",
		"color: red",
		"margin: 1px 2px",
		"padding: 3px",
		"border: 2px solid blue",
		"border-left-color: green",
		"font-size: 20px",
		"line-height: 1.5",
		"text-align: center",
		"white-space: nowrap",
		"text-overflow: ellipsis",
		"overflow: auto",
		"position: absolute",
		"pointer-events: none",
		"display: -webkit-box",
		"z-index: 3",
		"-webkit-box-flex: 2",
		"-webkit-box-orient: vertical",
		"align-items: center",
		"min-width: 10px",
		"max-width: 100px",
		"min-height: 5px",
		"max-height: 50px",
		"transform: translate(1px, 2px)",
		"unknown-property: 7",
	}, ";")

	got := DefaultStyle()
	for _, d := range ParseDeclarations(decls) {
		got.Apply(d)
	}
	got.finish()

	blueC := Color{0, 0, 1, 1}
	greenC, _ := ParseColor("green")
	want := Style{
		Background:    ColorWhite,
		Color:         red,
		BorderColor:   [4]Color{blueC, blueC, blueC, greenC},
		BorderWidth:   Edges{2, 2, 2, 2},
		Margin:        Edges{1, 2, 1, 2},
		Padding:       Edges{3, 3, 3, 3},
		FontSize:      20,
		LineHeight:    30,
		TextAlign:     TextAlignCenter,
		WhiteSpace:    WhiteSpaceNoWrap,
		TextOverflow:  TextOverflowEllipsis,
		Overflow:      OverflowAuto,
		Position:      PositionAbsolute,
		PointerEvents: false,
		Display:       DisplayFlex,
		ZIndex:        3,
		Flex:          2,
		FlexOrient:    FlexVertical,
		FlexAlign:     FlexCenter,
		MinWidth:      10,
		MaxWidth:      100,
		MinHeight:     5,
		MaxHeight:     50,
		Transform:     Translate(1, 2),
		HasTransform:  true,
	}
	if diff := cmp.Diff(want, got, styleCmp...); diff != "" {
		t.Errorf("applied style (-want +got):\n%s", diff)
	}
}

func TestStyleApplyIgnoresInvalidValues(t *testing.T) {
	decls := "color: nope; font-size: -3px; padding: -2px; z-index: high; flex: -1; " +
		"overflow: sideways; min-width: wide; transform: spin(2)"
	got := DefaultStyle()
	for _, d := range ParseDeclarations(decls) {
		got.Apply(d)
	}
	got.finish()
	if diff := cmp.Diff(DefaultStyle(), got, styleCmp...); diff != "" {
		t.Errorf("invalid declarations changed the style (-want +got):\n%s", diff)
	}
}

func TestLineHeight(t *testing.T) {
	tests := []struct {
		decls string
		want  float64
	}{
		{"", 19.2},
		{"font-size: 20px", 24},
		{"font-size: 20px; line-height: 1.5", 30},
		{"line-height: 1.5; font-size: 20px", 30},
		{"line-height: 150%; font-size: 10px", 15},
		{"line-height: 24px; font-size: 40px", 24},
		{"line-height: 24px; line-height: normal; font-size: 10px", 12},
		{"line-height: -1; font-size: 10px", 12},
		{"line-height: abc", 19.2},
	}
	for _, tt := range tests {
		st := DefaultStyle()
		for _, d := range ParseDeclarations(tt.decls) {
			st.Apply(d)
		}
		st.finish()
		if math.Abs(st.LineHeight-tt.want) > 1e-9 {
			t.Errorf("%q: LineHeight = %v, want %v", tt.decls, st.LineHeight, tt.want)
		}
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		spec    int
		wantErr bool
	}{
		{in: "div", want: Selector{Tag: "div"}, spec: 1},
		{in: "DIV#main.a.b", want: Selector{Tag: "div", ID: "main", Classes: []string{"a", "b"}}, spec: 121},
		{in: ".a", want: Selector{Classes: []string{"a"}}, spec: 10},
		{in: "#x", want: Selector{ID: "x"}, spec: 100},
		{in: "*", want: Selector{Tag: "*"}, spec: 0},
		{in: "*.a", want: Selector{Tag: "*", Classes: []string{"a"}}, spec: 10},
		{in: "", wantErr: true},
		{in: "div p", wantErr: true},
		{in: "a>b", wantErr: true},
		{in: "a:hover", wantErr: true},
		{in: "input[type]", wantErr: true},
		{in: "#a#b", wantErr: true},
		{in: "a..b", wantErr: true},
		{in: "a.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelector(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSelector(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSelector(%q) (-want +got):\n%s", tt.in, diff)
			}
			if got.Specificity() != tt.spec {
				t.Errorf("Specificity() = %d, want %d", got.Specificity(), tt.spec)
			}
		})
	}
}

func TestParseStyleSheet(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		rules   int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"comments", "/* head */ div { color: red } /* tail", 1, false},
		{"selector list", "h1, .title { font-size: 20px } p { }", 2, false},
		{"unsupported selector skipped", "div p { color: red } .ok { color: blue }", 1, false},
		{"missing close", "div { color: red", 0, true},
		{"missing open", "color: red }", 0, true},
		{"nested", "a { b { color: red } }", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := ParseStyleSheet(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(sheet.Rules) != tt.rules {
				t.Errorf("got %d rules, want %d", len(sheet.Rules), tt.rules)
			}
		})
	}
}

func TestStyleSheetAdd(t *testing.T) {
	var sheet StyleSheet
	if err := sheet.Add(" , ", "color: red"); err == nil {
		t.Error("Add with no selectors should fail")
	}
	if err := sheet.Add("a b, .ok", "color: red"); err != nil {
		t.Errorf("Add with one valid selector: %v", err)
	}
	if len(sheet.Rules) != 1 || len(sheet.Rules[0].Selectors) != 1 {
		t.Errorf("rules = %+v", sheet.Rules)
	}
}

func TestMatchOrder(t *testing.T) {
	sheet, err := ParseStyleSheet(`
		#x { color: green }
		.a { color: red }
		div { color: blue }
		.b { color: yellow }
		span { color: black }
	`)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, d := range sheet.Match("div", "x", []string{"a", "b"}) {
		got = append(got, d.Value)
	}
	if diff := cmp.Diff([]string{"blue", "red", "yellow", "green"}, got); diff != "" {
		t.Errorf("Match order (-want +got):\n%s", diff)
	}
	var nilSheet *StyleSheet
	if nilSheet.Match("div", "", nil) != nil {
		t.Error("nil sheet matched declarations")
	}
}

func TestCascade(t *testing.T) {
	sheet, err := ParseStyleSheet(`
		div { color: red; font-size: 12px }
		.a.b { font-size: 14px }
		#x { color: green }
		.a { color: blue; font-size: 30px }
	`)
	if err != nil {
		t.Fatal(err)
	}
	c := NewStyleCache(sheet)
	st, _ := c.Resolve(StyleKey{Tag: "div", ID: "x", Class: "a b"})
	want, _ := ParseColor("green")
	if st.Color != want || st.FontSize != 14 {
		t.Errorf("cascaded color = %v, font-size = %v; want green, 14", st.Color, st.FontSize)
	}

	inline, _ := c.Resolve(StyleKey{Tag: "div", ID: "x", Class: "a b", Inline: "color: purple"})
	purple, _ := ParseColor("purple")
	if inline.Color != purple {
		t.Errorf("inline color = %v, want purple", inline.Color)
	}
}

func TestStyleCache(t *testing.T) {
	sheet, err := ParseStyleSheet(`
		.btn { background: white; color: black; padding: 4px }
		.on { background: red; color: white; padding: 10px }
	`)
	if err != nil {
		t.Fatal(err)
	}
	c := NewStyleCache(sheet)

	a, _ := c.Resolve(StyleKey{Tag: "div", Class: "btn", Inline: "margin : 2px ;"})
	b, _ := c.Resolve(StyleKey{Tag: "DIV", Class: " btn ", Inline: "margin:2px"})
	if a != b {
		t.Error("equivalent keys resolved to different entries")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}

	base, active := c.Resolve(StyleKey{Tag: "div", Class: "btn", ActiveClass: "on"})
	if active.Background != red || active.Color != ColorWhite {
		t.Errorf("active colors = %v / %v, want red / white", active.Background, active.Color)
	}
	if active.Padding != base.Padding || base.Padding.Top != 4 {
		t.Errorf("active padding = %+v, base padding = %+v; want both 4px", active.Padding, base.Padding)
	}
	if base.Background != ColorWhite {
		t.Errorf("base background = %v, want white", base.Background)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", c.Len())
	}
}

func TestStyleCacheConcurrentResolve(t *testing.T) {
	sheet, err := ParseStyleSheet(".x { color: red }")
	if err != nil {
		t.Fatal(err)
	}
	c := NewStyleCache(sheet)
	key := StyleKey{Tag: "div", Class: "x"}

	const workers = 16
	results := make([]*Style, workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			results[i], _ = c.Resolve(key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	for i, st := range results {
		if st != results[0] {
			t.Errorf("worker %d got a distinct style entry", i)
		}
	}
	if _, misses := c.Stats(); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestStagesShareStyleCache(t *testing.T) {
	sheet, err := ParseStyleSheet(".card { padding: 5px }")
	if err != nil {
		t.Fatal(err)
	}
	cache := NewStyleCache(sheet)
	for range 2 {
		s, err := NewStage(newRecSurface(100, 100), StageConfig{StyleCache: cache, Shaper: fixedShaper{}})
		if err != nil {
			t.Fatal(err)
		}
		defer s.Destroy()
		card := NewBox("card", BoxConfig{Class: "card"})
		s.AppendChild(card)
		if card.Box.Style().Padding.Top != 5 {
			t.Errorf("padding = %v, want 5", card.Box.Style().Padding.Top)
		}
		if s.Styles() != cache {
			t.Error("Styles() does not return the shared cache")
		}
	}
	if hits, misses := cache.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}
}
