package canopy

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestMatrixConstructors(t *testing.T) {
	tests := []struct {
		name string
		got  Matrix
		want Matrix
	}{
		{"translate", Translate(3, 4), Matrix{1, 0, 0, 1, 3, 4}},
		{"scale", Scale(2, 3), Matrix{2, 0, 0, 3, 0, 0}},
		{"rotate90", Rotate(math.Pi / 2), Matrix{0, 1, -1, 0, 0, 0}},
		{"skewX", Skew(math.Pi/4, 0), Matrix{1, 0, 1, 1, 0, 0}},
		{"skewY", Skew(0, math.Pi/4), Matrix{1, 1, 0, 1, 0, 0}},
		{"translate then scale", Translate(10, 20).Multiply(Scale(2, 2)), Matrix{2, 0, 0, 2, 10, 20}},
		{"scale then translate", Scale(2, 2).Multiply(Translate(10, 20)), Matrix{2, 0, 0, 2, 20, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got, approx); diff != "" {
				t.Errorf("matrix mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(10, 20).Multiply(Rotate(0.3)).Multiply(Scale(2, 0.5))
	if diff := cmp.Diff(Identity, m.Multiply(m.Invert()), approx); diff != "" {
		t.Errorf("m * m^-1 (-want +got):\n%s", diff)
	}
	x, y := m.Apply(7, -3)
	x, y = m.Invert().Apply(x, y)
	if diff := cmp.Diff([2]float64{7, -3}, [2]float64{x, y}, approx); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	if got := Scale(0, 1).Invert(); got != Identity {
		t.Errorf("singular Invert() = %v, want identity", got)
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		in   string
		want Matrix
		ok   bool
	}{
		{"translate(10,20) scale(2)", Matrix{2, 0, 0, 2, 10, 20}, true},
		{"translate(10px, 20px)", Translate(10, 20), true},
		{"translate(5)", Translate(5, 0), true},
		{"translateX(5px)", Translate(5, 0), true},
		{"translateY(-3)", Translate(0, -3), true},
		{"scale(2, 3)", Scale(2, 3), true},
		{"scaleX(2)", Scale(2, 1), true},
		{"scaleY(3)", Scale(1, 3), true},
		{"rotate(90deg)", Rotate(math.Pi / 2), true},
		{"rotate(90)", Rotate(math.Pi / 2), true},
		{"rotate(0.25turn)", Rotate(math.Pi / 2), true},
		{"rotate(100grad)", Rotate(math.Pi / 2), true},
		{"rotate(1rad)", Rotate(1), true},
		{"skewX(45deg)", Skew(math.Pi/4, 0), true},
		{"skewY(45deg)", Skew(0, math.Pi/4), true},
		{"skew(45deg, 0)", Skew(math.Pi/4, 0), true},
		{"matrix(1,2,3,4,5,6)", Matrix{1, 2, 3, 4, 5, 6}, true},
		{"MATRIX(1 0 0 1 5 5)", Translate(5, 5), true},
		{"none", Identity, true},
		{"", Identity, true},
		{"spin(3)", Identity, false},
		{"translate(1,2,3)", Identity, false},
		{"translateX(1,2)", Identity, false},
		{"rotate(abc)", Identity, false},
		{"scale(2", Identity, false},
		{"matrix(1,2,3)", Identity, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTransform(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseTransform(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("ParseTransform(%q) (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestSetTransformRoundTrip(t *testing.T) {
	n := NewContainer("n")
	n.SetTransform("translate(10,20) scale(2)")
	want := Translate(10, 20).Multiply(Scale(2, 2))
	if diff := cmp.Diff(want, n.Transform(), approx); diff != "" {
		t.Errorf("Transform() (-want +got):\n%s", diff)
	}

	n.SetTransform("bogus(1)")
	if diff := cmp.Diff(want, n.Transform(), approx); diff != "" {
		t.Errorf("invalid input changed the transform (-want +got):\n%s", diff)
	}
}

func TestWorldMatrix(t *testing.T) {
	parent := NewContainer("parent")
	parent.SetPosition(10, 20)
	parent.SetMatrix(Scale(2, 2))
	child := NewContainer("child")
	child.SetPosition(5, 5)
	parent.AppendChild(child)

	tests := []struct {
		lx, ly, wx, wy float64
	}{
		{0, 0, 20, 30},
		{1, 1, 22, 32},
		{-5, -5, 10, 20},
	}
	for _, tt := range tests {
		wx, wy := child.LocalToWorld(tt.lx, tt.ly)
		if diff := cmp.Diff([2]float64{tt.wx, tt.wy}, [2]float64{wx, wy}, approx); diff != "" {
			t.Errorf("LocalToWorld(%v, %v) (-want +got):\n%s", tt.lx, tt.ly, diff)
		}
		lx, ly := child.WorldToLocal(tt.wx, tt.wy)
		if diff := cmp.Diff([2]float64{tt.lx, tt.ly}, [2]float64{lx, ly}, approx); diff != "" {
			t.Errorf("WorldToLocal(%v, %v) (-want +got):\n%s", tt.wx, tt.wy, diff)
		}
	}
}

func TestWorldMatrixIncludesScroll(t *testing.T) {
	s, _ := newTestStage(t, 100, 100, ".list { overflow: auto }")
	list := NewBox("list", BoxConfig{Class: "list", Height: Px(50)})
	item := NewBox("item", BoxConfig{Height: Px(200)})
	list.AppendChild(item)
	s.AppendChild(list)

	list.Set(AttrScrollTop(30))
	_, wy := item.LocalToWorld(0, 0)
	if wy != -30 {
		t.Errorf("item world y = %v, want -30", wy)
	}
}
