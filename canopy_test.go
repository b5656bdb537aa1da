package canopy

import (
	"testing"
)

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		name       string
		c          Color
		r, g, b, a uint32
	}{
		{"opaque red", Color{1, 0, 0, 1}, 0xffff, 0, 0, 0xffff},
		{"half white", Color{1, 1, 1, 0.5}, 0x8000, 0x8000, 0x8000, 0x8000},
		{"transparent", ColorTransparent, 0, 0, 0, 0},
		{"clamped", Color{2, -1, 0, 1}, 0xffff, 0, 0, 0xffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.r || g != tt.g || b != tt.b || a != tt.a {
				t.Errorf("RGBA() = %#x %#x %#x %#x, want %#x %#x %#x %#x", r, g, b, a, tt.r, tt.g, tt.b, tt.a)
			}
		})
	}
}

func TestColorHelpers(t *testing.T) {
	c := ColorWhite.WithAlpha(0.5)
	if c.A != 0.5 {
		t.Errorf("WithAlpha(0.5).A = %v, want 0.5", c.A)
	}
	if !ColorTransparent.IsTransparent() || ColorBlack.IsTransparent() {
		t.Error("IsTransparent mismatch")
	}
	if got := (Color{1, 0.5, 0, 0.25}).String(); got != "rgba(255,128,0,0.25)" {
		t.Errorf("String() = %q", got)
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{30, 20, true},
		{20, 15, true},
		{9, 15, false},
		{20, 21, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if !r.Intersects(Rect{X: 30, Y: 20, Width: 5, Height: 5}) {
		t.Error("edge-sharing rects should intersect")
	}
	if r.Intersects(Rect{X: 31, Y: 0, Width: 5, Height: 5}) {
		t.Error("disjoint rects should not intersect")
	}
	in := r.Inset(Edges{Top: 1, Right: 2, Bottom: 3, Left: 4})
	if in != (Rect{X: 14, Y: 11, Width: 14, Height: 6}) {
		t.Errorf("Inset = %+v", in)
	}
	if !(Rect{Width: 0, Height: 5}).Empty() {
		t.Error("zero-width rect should be empty")
	}
}

func TestNodeTypeString(t *testing.T) {
	tests := []struct {
		typ  NodeType
		want string
	}{
		{NodeTypeContainer, "container"},
		{NodeTypeStage, "stage"},
		{NodeTypeShape, "shape"},
		{NodeTypeBox, "box"},
		{NodeTypeText, "text"},
		{NodeTypeImage, "image"},
		{NodeType(42), "NodeType(42)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("NodeType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestLength(t *testing.T) {
	if !Auto.IsAuto() || Auto.String() != "auto" {
		t.Errorf("Auto = %v", Auto)
	}
	if l := Px(12.5); l.IsAuto() || l.Value() != 12.5 || l.String() != "12.5px" {
		t.Errorf("Px(12.5) = %v", l)
	}
	if l := Px(-3); l.Value() != 0 || l.IsAuto() {
		t.Errorf("Px(-3) = %v, want 0px", l)
	}
}
