package ecs

import (
	"testing"

	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []canopy.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		received = append(received, e)
	})

	store.EmitEvent(canopy.InteractionEvent{
		Type:     canopy.EventTouchStart,
		EntityID: 42,
		X:        100,
		Y:        200,
	})
	store.EmitEvent(canopy.InteractionEvent{
		Type: canopy.EventLink,
		Href: "https://example.com",
	})

	// Events are queued until processed.
	InteractionEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != canopy.EventTouchStart || e0.EntityID != 42 {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.X != 100 || e0.Y != 200 {
		t.Errorf("event 0 position: (%v,%v)", e0.X, e0.Y)
	}
	if e1 := received[1]; e1.Type != canopy.EventLink || e1.Href != "https://example.com" {
		t.Errorf("event 1: %+v", e1)
	}
}

// recordingSurface is the smallest Surface a Stage accepts.
type recordingSurface struct{ canopy.Surface }

func (recordingSurface) Size() (int, int) { return 100, 100 }

func TestDonburiStore_StageTap(t *testing.T) {
	world := donburi.NewWorld()
	stage, err := canopy.NewStage(recordingSurface{}, canopy.StageConfig{})
	if err != nil {
		t.Fatal(err)
	}
	stage.SetEntityStore(NewDonburiStore(world))

	box := canopy.NewBox("button", canopy.BoxConfig{Width: canopy.Px(50), Height: canopy.Px(50)})
	box.EntityID = 7
	stage.AppendChild(box)

	var types []string
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		if e.EntityID == 7 {
			types = append(types, e.Type)
		}
	})

	stage.HandlePointer(canopy.PointerEvent{X: 10, Y: 10, Phase: canopy.PhaseStart})
	stage.HandlePointer(canopy.PointerEvent{X: 10, Y: 10, Phase: canopy.PhaseEnd})
	InteractionEventType.ProcessEvents(world)

	want := []string{canopy.EventTouchStart, canopy.EventTouchEnd, canopy.EventTap}
	if len(types) != len(want) {
		t.Fatalf("types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestDonburiStore_TypeFilter(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world, "TAP", canopy.EventLink)

	var received []string
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		received = append(received, e.Type)
	})

	for _, typ := range []string{canopy.EventTouchStart, canopy.EventTouchMove, canopy.EventTap, canopy.EventTouchEnd, canopy.EventLink} {
		store.EmitEvent(canopy.InteractionEvent{Type: typ})
	}
	InteractionEventType.ProcessEvents(world)

	want := []string{canopy.EventTap, canopy.EventLink}
	if len(received) != len(want) {
		t.Fatalf("received = %v, want %v", received, want)
	}
	for i := range want {
		if received[i] != want[i] {
			t.Errorf("received[%d] = %q, want %q", i, received[i], want[i])
		}
	}
}
