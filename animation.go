package canopy

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates up to 4 values on a Node simultaneously. Create one with
// the convenience constructors (TweenPosition, TweenAlpha, TweenScrollTop)
// and call Start to let the stage drive it from Frame, or call Update
// yourself. A tween never writes to a node that has left its stage: it
// stops on the first tick after detachment.
type Tween struct {
	tweens [4]*gween.Tween
	count  int
	set    [4]func(float64)
	target *Node
	delay  time.Duration

	// OnUpdate runs after each tick that wrote values.
	OnUpdate func()
	// OnComplete runs once when every value reached its end.
	OnComplete func()

	Done bool
}

func newTween(target *Node, duration time.Duration, fn ease.TweenFunc, from, to []float64, set ...func(float64)) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	d := float32(duration.Seconds())
	t := &Tween{target: target, count: len(set)}
	for i := range set {
		t.tweens[i] = gween.New(float32(from[i]), float32(to[i]), d, fn)
		t.set[i] = set[i]
	}
	return t
}

// Delay postpones the first write by d. Returns t for chaining.
func (t *Tween) Delay(d time.Duration) *Tween {
	t.delay = d
	return t
}

// Start registers the tween with the target's stage. A tween whose target is
// detached is marked done immediately.
func (t *Tween) Start() *Tween {
	if t.target == nil || t.target.stage == nil {
		t.Done = true
		return t
	}
	t.target.stage.animate(t)
	return t
}

// Stop ends the tween without running OnComplete.
func (t *Tween) Stop() {
	if t != nil {
		t.Done = true
	}
}

func (t *Tween) advance(dt time.Duration) bool {
	if t.Done {
		return true
	}
	if t.delay > 0 {
		if dt <= t.delay {
			t.delay -= dt
			return false
		}
		dt -= t.delay
		t.delay = 0
	}
	t.Update(float32(dt.Seconds()))
	return t.Done
}

// Update advances all values by dt seconds, writes them to the target and
// requests a repaint. If the target is no longer attached to a stage, Done
// is set and nothing is written.
func (t *Tween) Update(dt float32) {
	if t.Done {
		return
	}
	if t.target == nil || t.target.stage == nil || t.target.disposed {
		t.Done = true
		return
	}

	allDone := true
	for i := 0; i < t.count; i++ {
		val, finished := t.tweens[i].Update(dt)
		t.set[i](float64(val))
		if !finished {
			allDone = false
		}
	}
	t.target.Repaint()
	if t.OnUpdate != nil {
		t.OnUpdate()
	}
	if allDone {
		t.Done = true
		if t.OnComplete != nil {
			t.OnComplete()
		}
	}
}

// TweenPosition animates the node's position to (toX, toY). Boxes animate
// their layout offsets.
func TweenPosition(node *Node, toX, toY float64, duration time.Duration, fn ease.TweenFunc) *Tween {
	fromX, fromY := node.X, node.Y
	if node.Box != nil {
		fromX, fromY = node.Box.offsetX, node.Box.offsetY
	}
	var x, y float64 = fromX, fromY
	return newTween(node, duration, fn,
		[]float64{fromX, fromY}, []float64{toX, toY},
		func(v float64) { x = v; node.SetPosition(x, y) },
		func(v float64) { y = v; node.SetPosition(x, y) },
	)
}

// TweenAlpha animates the node's alpha.
func TweenAlpha(node *Node, to float64, duration time.Duration, fn ease.TweenFunc) *Tween {
	return newTween(node, duration, fn,
		[]float64{node.alpha}, []float64{to},
		node.SetAlpha,
	)
}

// TweenScrollTop animates a box's scroll offset, dispatching scroll events
// as it moves. Returns a finished tween for nodes without a Box.
func TweenScrollTop(node *Node, to float64, duration time.Duration, fn ease.TweenFunc) *Tween {
	if node.Box == nil {
		return &Tween{Done: true}
	}
	b := node.Box
	return newTween(node, duration, fn,
		[]float64{b.scrollTop}, []float64{to},
		func(v float64) { b.scrollTo(v, true) },
	)
}
