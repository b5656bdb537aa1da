package ebitenhost

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/canopy"
)

// pointerSample is one frame of polled pointer state in device pixels.
type pointerSample struct {
	x, y    int
	pressed bool
}

// pointerTracker turns polled pointer state into start, move and end
// events. It follows a single contact: the mouse or the first touch.
type pointerTracker struct {
	down      bool
	lastX     int
	lastY     int
	touchID   ebiten.TouchID
	touchDown bool
}

// step compares a sample with the previous state and returns the events it
// implies. ratio converts device pixels to stage units.
func (p *pointerTracker) step(s pointerSample, ratio float64, now time.Duration) []canopy.PointerEvent {
	ev := func(phase canopy.Phase) canopy.PointerEvent {
		return canopy.PointerEvent{X: float64(s.x) / ratio, Y: float64(s.y) / ratio, Phase: phase, Time: now}
	}
	var out []canopy.PointerEvent
	switch {
	case s.pressed && !p.down:
		out = append(out, ev(canopy.PhaseStart))
	case s.pressed && (s.x != p.lastX || s.y != p.lastY):
		out = append(out, ev(canopy.PhaseMove))
	case !s.pressed && p.down:
		s.x, s.y = p.lastX, p.lastY
		out = append(out, ev(canopy.PhaseEnd))
	}
	p.down = s.pressed
	if s.pressed {
		p.lastX, p.lastY = s.x, s.y
	}
	return out
}

// poll reads the current mouse or touch state from ebiten.
func (p *pointerTracker) poll() pointerSample {
	if p.touchDown {
		if inpututil.IsTouchJustReleased(p.touchID) {
			p.touchDown = false
			return pointerSample{}
		}
		x, y := ebiten.TouchPosition(p.touchID)
		return pointerSample{x: x, y: y, pressed: true}
	}
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 && !p.down {
		p.touchID, p.touchDown = ids[0], true
		x, y := ebiten.TouchPosition(p.touchID)
		return pointerSample{x: x, y: y, pressed: true}
	}
	x, y := ebiten.CursorPosition()
	return pointerSample{x: x, y: y, pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)}
}
