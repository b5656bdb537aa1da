package canopy

import "testing"

func TestDragShape(t *testing.T) {
	s, _ := newTestStage(t, 100, 100, "")
	r := NewRect("r", 20, 20, red)
	r.SetPosition(10, 10)
	s.AppendChild(r)
	r.EnableDrag(Rect{Width: 100, Height: 100}, Vec2{20, 20})
	if !r.Draggable() {
		t.Fatal("Draggable() = false")
	}

	press(s, 15, 15, 0)
	move(s, 45, 35)
	if r.X != 40 || r.Y != 30 {
		t.Errorf("position = (%v, %v), want (40, 30)", r.X, r.Y)
	}
	move(s, 200, 200)
	if r.X != 80 || r.Y != 80 {
		t.Errorf("clamped position = (%v, %v), want (80, 80)", r.X, r.Y)
	}
	release(s, 200, 200, 0)

	if s.Root().HasListener(EventTouchMove) || s.Root().HasListener(EventTouchEnd) {
		t.Error("drag listeners left on the stage after release")
	}
	move(s, 0, 0)
	if r.X != 80 {
		t.Error("node moved after release")
	}
}

func TestDragInTransformedParent(t *testing.T) {
	s, _ := newTestStage(t, 200, 200, "")
	parent := NewContainer("parent")
	parent.SetMatrix(Scale(2, 2))
	r := NewRect("r", 10, 10, red)
	parent.AppendChild(r)
	s.AppendChild(parent)
	r.EnableDrag(Rect{Width: 100, Height: 100}, Vec2{10, 10})

	press(s, 4, 4, 0)
	move(s, 24, 44)
	if r.X != 10 || r.Y != 20 {
		t.Errorf("position = (%v, %v), want (10, 20) in parent space", r.X, r.Y)
	}
	release(s, 24, 44, 0)
}

func TestDragBox(t *testing.T) {
	s, _ := newTestStage(t, 100, 200, "")
	holder := NewBox("holder", BoxConfig{})
	head := NewBox("head", BoxConfig{Height: Px(30)})
	b := NewBox("b", BoxConfig{Height: Px(20)})
	holder.AppendChild(head, b)
	s.AppendChild(holder)
	b.EnableDrag(Rect{Width: 100, Height: 100}, Vec2{100, 20})

	press(s, 50, 35, 0)
	move(s, 50, 135)
	if b.Y != 80 {
		t.Errorf("b.Y = %v, want 80", b.Y)
	}
	if x, y := b.Box.Offset(); x != 0 || y != 50 {
		t.Errorf("Offset() = (%v, %v), want (0, 50)", x, y)
	}
	release(s, 50, 135, 0)
}

func TestDragCleanup(t *testing.T) {
	s, _ := newTestStage(t, 100, 100, "")
	r := NewRect("r", 20, 20, red)
	s.AppendChild(r)
	r.EnableDrag(Rect{Width: 100, Height: 100}, Vec2{20, 20})

	press(s, 5, 5, 0)
	if !s.Root().HasListener(EventTouchMove) {
		t.Fatal("drag did not start")
	}
	r.Remove()
	if s.Root().HasListener(EventTouchMove) || s.Root().HasListener(EventTouchEnd) {
		t.Error("Remove left drag listeners on the stage")
	}
	move(s, 50, 50)
	release(s, 50, 50, 0)

	other := NewRect("other", 20, 20, red)
	s.AppendChild(other)
	other.EnableDrag(Rect{Width: 100, Height: 100}, Vec2{20, 20})
	other.DisableDrag()
	if other.Draggable() || other.HasListener(EventTouchStart) {
		t.Error("DisableDrag left the node draggable")
	}
	press(s, 5, 5, 0)
	move(s, 50, 50)
	if other.X != 0 {
		t.Error("disabled node was dragged")
	}
}

func TestDragEndsWhenTouchEndIsStopped(t *testing.T) {
	s, _ := newTestStage(t, 100, 100, "")
	r := NewRect("r", 20, 20, red)
	s.AppendChild(r)
	r.EnableDrag(Rect{Width: 100, Height: 100}, Vec2{20, 20})
	r.On(EventTouchEnd, func(*Event, ...any) bool { return false })

	press(s, 5, 5, 0)
	move(s, 15, 15)
	release(s, 15, 15, 0)
	if s.Root().HasListener(EventTouchMove) || s.Root().HasListener(EventTouchEnd) {
		t.Error("drag listeners left on the stage after a stopped touchend")
	}

	press(s, 90, 90, 0)
	move(s, 95, 95)
	if r.X != 10 || r.Y != 10 {
		t.Errorf("position = (%v, %v) after a press elsewhere, want (10, 10)", r.X, r.Y)
	}
	release(s, 95, 95, 0)
}
