package canopy

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
)

var errMissing = errors.New("missing")

// countingLoader serves 40x20 images and fails for "bad.png".
type countingLoader struct {
	loads atomic.Int32
}

func (l *countingLoader) Load(_ context.Context, src string) (image.Image, error) {
	l.loads.Add(1)
	if src == "bad.png" {
		return nil, errMissing
	}
	return image.NewRGBA(image.Rect(0, 0, 40, 20)), nil
}

func newImageStage(t *testing.T, loader AssetLoader) *Stage {
	t.Helper()
	return newStageWith(t, "", StageConfig{Loader: loader})
}

// settle waits for outstanding loads and delivers their completions.
func settle(s *Stage) {
	s.Images().Wait()
	s.Frame(0)
}

func TestImageSizing(t *testing.T) {
	loader := &countingLoader{}
	s := newImageStage(t, loader)
	auto := NewImage("auto", BoxConfig{}, "a.png")
	wide := NewImage("wide", BoxConfig{Width: Px(80)}, "a.png")
	tall := NewImage("tall", BoxConfig{Height: Px(10)}, "a.png")
	loads := eventLog(auto, EventLoad)
	s.AppendChild(auto, wide, tall)

	if auto.Box.Width() != 0 || auto.Box.Height() != 0 {
		t.Errorf("unloaded size = %vx%v, want 0x0", auto.Box.Width(), auto.Box.Height())
	}
	if !auto.Image.Loading() {
		t.Error("Loading() = false while a request is in flight")
	}

	settle(s)
	tests := []struct {
		node *Node
		want geom
	}{
		{auto, geom{0, 0, 40, 20}},
		{wide, geom{0, 20, 80, 40}},
		{tall, geom{0, 60, 20, 10}},
	}
	for _, tt := range tests {
		if got := geomOf(tt.node); got != tt.want {
			t.Errorf("%s geometry = %+v, want %+v", tt.node.Name, got, tt.want)
		}
	}
	if len(*loads) != 1 || !auto.Image.Loaded() || auto.Image.Loading() {
		t.Errorf("load events = %d, loaded = %v", len(*loads), auto.Image.Loaded())
	}
	if n := loader.loads.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestImageError(t *testing.T) {
	loader := &countingLoader{}
	s := newImageStage(t, loader)
	img := NewImage("img", BoxConfig{}, "bad.png")
	var got error
	img.On(EventError, func(ev *Event, _ ...any) bool {
		got = ev.Err
		return true
	})
	s.AppendChild(img)
	settle(s)

	if !errors.Is(got, errMissing) || !errors.Is(img.Image.Err(), errMissing) {
		t.Errorf("error event = %v, Err() = %v; want %v", got, img.Image.Err(), errMissing)
	}
	if img.Image.Loaded() || s.Images().Len() != 0 {
		t.Error("failed load was cached")
	}

	again := NewImage("again", BoxConfig{}, "bad.png")
	s.AppendChild(again)
	settle(s)
	if n := loader.loads.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2 (failures are retried)", n)
	}
}

func TestImageCacheSeeded(t *testing.T) {
	loader := &countingLoader{}
	s := newImageStage(t, loader)
	s.Images().Put("seed.png", image.NewRGBA(image.Rect(0, 0, 8, 4)))
	img := NewImage("img", BoxConfig{}, " seed.png ")
	s.AppendChild(img)
	settle(s)

	if loader.loads.Load() != 0 {
		t.Error("seeded source was loaded")
	}
	if w, h := img.Image.NaturalSize(); w != 8 || h != 4 {
		t.Errorf("NaturalSize() = %vx%v, want 8x4", w, h)
	}
	if _, ok := s.Images().Get("seed.png"); !ok {
		t.Error("Get(seed.png) missed")
	}
	s.Images().Forget("seed.png")
	if s.Images().Len() != 0 {
		t.Errorf("Len() after Forget = %d", s.Images().Len())
	}
}

func TestImageDetachDropsCompletion(t *testing.T) {
	s := newImageStage(t, &countingLoader{})
	img := NewImage("img", BoxConfig{}, "a.png")
	loads := eventLog(img, EventLoad)
	s.AppendChild(img)
	img.RemoveFromParent()
	settle(s)

	if img.Image.Loaded() || len(*loads) != 0 {
		t.Error("completion delivered to a detached node")
	}
}

func TestImageSrcAndClip(t *testing.T) {
	s, sf := newTestStage(t, 100, 100, "")
	s.Images().Put("a.png", image.NewRGBA(image.Rect(0, 0, 40, 20)))
	s.Images().Put("b.png", image.NewRGBA(image.Rect(0, 0, 10, 30)))
	img := NewImage("img", BoxConfig{}, "a.png")
	s.AppendChild(img)
	settle(s)

	s.Render()
	ops := sf.find("image")
	if len(ops) != 1 || ops[0].Rect != (Rect{Width: 40, Height: 20}) {
		t.Errorf("image ops = %+v, want one 40x20 draw", ops)
	}

	img.Image.SetClip(image.Rect(10, 0, 0, 10))
	if img.Image.Clip() != image.Rect(0, 0, 10, 10) {
		t.Errorf("Clip() = %v, want canonical 10x10", img.Image.Clip())
	}
	if img.Box.Width() != 10 || img.Box.Height() != 10 {
		t.Errorf("clipped size = %vx%v, want 10x10", img.Box.Width(), img.Box.Height())
	}
	img.Image.SetClip(image.Rectangle{})

	img.Set(AttrSrc("b.png"))
	if img.Image.Loaded() || img.Image.Src() != "b.png" {
		t.Fatal("src change kept the old image")
	}
	settle(s)
	if img.Box.Width() != 10 || img.Box.Height() != 30 {
		t.Errorf("size after src change = %vx%v, want 10x30", img.Box.Width(), img.Box.Height())
	}
}

func TestDestroyCancelsLoads(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	loader := AssetLoaderFunc(func(ctx context.Context, _ string) (image.Image, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	s, err := NewStage(newRecSurface(100, 100), StageConfig{Loader: loader, Shaper: fixedShaper{}})
	if err != nil {
		t.Fatal(err)
	}
	img := NewImage("img", BoxConfig{}, "slow.png")
	s.AppendChild(img)
	<-started

	s.Destroy()
	s.Images().Wait()
	if s.Context().Err() == nil {
		t.Error("stage context not canceled")
	}
	if img.Image.Loaded() {
		t.Error("canceled load delivered an image")
	}
}
