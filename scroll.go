package canopy

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// scrollDecel is the momentum deceleration in px/ms².
	scrollDecel      = 1.0 / 200
	scrollSamples    = 3
	scrollHideDelay  = 500 * time.Millisecond
	scrollFadeLength = 300 * time.Millisecond
)

type scrollSample struct {
	y float64
	t time.Duration
}

// scrollState tracks one touch-scroll interaction and the animations that
// follow it.
type scrollState struct {
	tracking bool
	baseTop  float64
	baseY    float64
	samples  []scrollSample

	momentum *Tween
	fade     *scrollFade
}

func (s *scrollState) stop() {
	s.tracking = false
	s.samples = s.samples[:0]
	if s.momentum != nil {
		s.momentum.Stop()
		s.momentum = nil
	}
	if s.fade != nil {
		s.fade.stop()
		s.fade = nil
	}
}

func (s *scrollState) record(y float64, t time.Duration) {
	if len(s.samples) == scrollSamples {
		copy(s.samples, s.samples[1:])
		s.samples = s.samples[:scrollSamples-1]
	}
	s.samples = append(s.samples, scrollSample{y: y, t: t})
}

// installScroll registers the locked touch listeners that scroll an
// overflow:auto clip box. They stay inert for other boxes.
func (b *Box) installScroll() {
	n := b.node
	n.On(EventTouchStart+".scroll", b.onTouchStart, Locked())
	n.On(EventTouchMove+".scroll", b.onTouchMove, Locked())
	n.On(EventTouchEnd+".scroll", b.onTouchEnd, Locked())
}

func (b *Box) scrollable() bool {
	return b.style.Overflow == OverflowAuto && b.isClip
}

func (b *Box) onTouchStart(ev *Event, _ ...any) bool {
	s := b.node.stage
	if s == nil || !b.scrollable() {
		return true
	}
	b.scroll.stop()
	b.scroll.tracking = true
	b.scroll.baseTop = b.scrollTop
	b.scroll.baseY = ev.Y
	b.scroll.record(ev.Y, s.sched.now)
	b.scrollAlpha = 1
	b.node.Repaint()
	return true
}

func (b *Box) onTouchMove(ev *Event, _ ...any) bool {
	s := b.node.stage
	if s == nil || !b.scroll.tracking {
		return true
	}
	b.scroll.record(ev.Y, s.sched.now)
	b.scrollTo(b.scroll.baseTop+b.scroll.baseY-ev.Y, true)
	b.node.Repaint()
	return true
}

func (b *Box) onTouchEnd(ev *Event, _ ...any) bool {
	if !b.scroll.tracking {
		return true
	}
	b.scroll.tracking = false
	samples := b.scroll.samples
	b.scroll.samples = b.scroll.samples[:0]
	b.node.Repaint()

	if len(samples) < 2 {
		b.hideScroll()
		return true
	}
	first, last := samples[0], samples[len(samples)-1]
	dt := float64(last.t-first.t) / float64(time.Millisecond)
	var speed float64
	if dt > 0 {
		speed = (last.y - first.y) / dt
	}
	distance, duration := momentum(speed, b.scrollTop, b.MaxScrollTop())
	if distance == 0 || duration <= 0 {
		b.hideScroll()
		return true
	}
	from := b.scrollTop
	t := newTween(b.node, duration, ease.OutCirc, []float64{0}, []float64{distance},
		func(v float64) { b.scrollTo(from-math.Round(v), true) })
	t.OnComplete = b.hideScroll
	b.scroll.momentum = t.Start()
	return true
}

// momentum returns the scroll distance (positive moves content down, toward
// scrollTop 0) and duration of a fling at speed px/ms under uniform
// deceleration, limited so the scroll offset stays within [0, maxTop].
func momentum(speed, top, maxTop float64) (float64, time.Duration) {
	if speed == 0 || !finite(speed) {
		return 0, 0
	}
	distance := math.Round(speed * math.Abs(speed/scrollDecel) / 2)
	if distance < 0 {
		distance = math.Max(distance, top-maxTop)
	} else {
		distance = math.Min(distance, top)
	}
	ms := distance * 2 / speed
	if ms <= 0 || !finite(ms) {
		return 0, 0
	}
	return distance, time.Duration(ms * float64(time.Millisecond))
}

// scrollTo sets scrollTop, clamped to the valid range, and optionally
// dispatches a scroll event when it changed.
func (b *Box) scrollTo(v float64, dispatch bool) {
	if !finite(v) {
		return
	}
	if b.isClip {
		v = math.Min(math.Max(v, 0), b.MaxScrollTop())
	} else if v < 0 {
		v = 0
	}
	if v == b.scrollTop {
		return
	}
	b.scrollTop = v
	b.node.Repaint()
	if dispatch && b.node.stage != nil {
		b.node.Dispatch(&Event{Type: EventScroll, Target: b.node})
	}
}

// scrollFade waits scrollHideDelay, then fades scrollAlpha from 1 to 0.
type scrollFade struct {
	box   *Box
	delay time.Duration
	tween *gween.Tween
	done  bool
}

func (f *scrollFade) stop() { f.done = true }

func (f *scrollFade) advance(dt time.Duration) bool {
	if f.done {
		return true
	}
	b := f.box
	if b.node.stage == nil || b.node.disposed {
		f.done = true
		return true
	}
	if f.delay > 0 {
		if dt <= f.delay {
			f.delay -= dt
			return false
		}
		dt -= f.delay
		f.delay = 0
	}
	v, finished := f.tween.Update(float32(dt.Seconds()))
	b.scrollAlpha = clamp01(float64(v))
	b.node.Repaint()
	if finished {
		f.done = true
		if b.scroll.fade == f {
			b.scroll.fade = nil
		}
	}
	return f.done
}

// hideScroll fades the scrollbar out after a short delay.
func (b *Box) hideScroll() {
	s := b.node.stage
	if s == nil {
		return
	}
	if b.scroll.momentum != nil && b.scroll.momentum.Done {
		b.scroll.momentum = nil
	}
	if b.scroll.fade != nil {
		b.scroll.fade.stop()
	}
	f := &scrollFade{
		box:   b,
		delay: scrollHideDelay,
		tween: gween.New(1, 0, float32(scrollFadeLength.Seconds()), ease.Linear),
	}
	b.scroll.fade = f
	s.animate(f)
}
