package canopy

import (
	"time"

	"go.uber.org/zap"
)

// Phase is the stage of a normalized pointer event.
type Phase uint8

const (
	PhaseStart  Phase = iota // pointer pressed
	PhaseMove                // pointer moved while pressed
	PhaseEnd                 // pointer released
	PhaseCancel              // host aborted the gesture; never produces a tap
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	case PhaseCancel:
		return "cancel"
	}
	return "unknown"
}

// PointerEvent is a normalized pointer event in stage logical coordinates.
// Time is on the same clock as Stage.Frame; zero means "the latest frame".
type PointerEvent struct {
	X, Y  float64
	Phase Phase
	Time  time.Duration
}

// TouchSession is the state of the single active press. It is owned by the
// stage and reset on release.
type TouchSession struct {
	target   *Node
	link     *Link
	moved    bool
	timedOut bool
	start    time.Duration
	timer    *Timer
	id       uint64
}

// Target returns the node the press landed on, or nil when idle.
func (t TouchSession) Target() *Node { return t.target }

// Moved reports whether the pointer moved since the press.
func (t TouchSession) Moved() bool { return t.moved }

// TimedOut reports whether the press outlasted the tap timeout.
func (t TouchSession) TimedOut() bool { return t.timedOut }

// Link returns the text link under the press, if any.
func (t TouchSession) Link() *Link { return t.link }

// Session returns a snapshot of the current touch session.
func (s *Stage) Session() TouchSession { return s.session }

// HandlePointer feeds one normalized pointer event through the gesture state
// machine: Idle -> Pressed -> (Idle | Dragging) -> Idle.
func (s *Stage) HandlePointer(ev PointerEvent) {
	if s.destroyed || !finite(ev.X) || !finite(ev.Y) {
		return
	}
	if ev.Time == 0 {
		ev.Time = s.sched.now
	}
	switch ev.Phase {
	case PhaseStart:
		s.pointerStart(ev)
	case PhaseMove:
		s.pointerMove(ev)
	case PhaseEnd, PhaseCancel:
		s.pointerEnd(ev)
	}
}

func (s *Stage) pointerStart(ev PointerEvent) {
	if s.session.target != nil {
		return
	}
	target := s.HitTest(ev.X, ev.Y)
	var link *Link
	if target.Text != nil {
		lx, ly := target.WorldToLocal(ev.X, ev.Y)
		link = target.Text.linkAt(lx, ly)
	}
	s.sessionID++
	id := s.sessionID
	s.session = TouchSession{target: target, link: link, start: ev.Time, id: id}
	// The deadline counts from the press, which may arrive between frames.
	s.session.timer = s.After(max(ev.Time+s.tapTimeout-s.sched.now, 0), func() {
		if s.session.id == id {
			s.session.timedOut = true
		}
	})
	if s.debug {
		s.logger.Debug("canopy: press", zap.Uint32("target", target.ID), zap.Float64("x", ev.X), zap.Float64("y", ev.Y))
	}

	target.Dispatch(&Event{Type: EventTouchStart, Bubble: true, Target: target, X: ev.X, Y: ev.Y})
	s.emit(EventTouchStart, target, ev.X, ev.Y, nil)
	if target.Box != nil && s.session.target == target {
		target.Box.setActive(true)
	}
}

func (s *Stage) pointerMove(ev PointerEvent) {
	target := s.session.target
	if target == nil {
		return
	}
	s.session.moved = true
	if target.Box != nil {
		target.Box.setActive(false)
	}
	if s.suppressMove {
		return
	}
	target.Dispatch(&Event{Type: EventTouchMove, Bubble: true, Target: target, X: ev.X, Y: ev.Y})
	s.emit(EventTouchMove, target, ev.X, ev.Y, nil)
}

func (s *Stage) pointerEnd(ev PointerEvent) {
	sess := s.session
	target := sess.target
	if target == nil {
		return
	}
	s.session = TouchSession{}
	sess.timer.Stop()
	if ev.Time-sess.start >= s.tapTimeout {
		sess.timedOut = true
	}

	target.Dispatch(&Event{Type: EventTouchEnd, Bubble: true, Target: target, X: ev.X, Y: ev.Y})
	s.emit(EventTouchEnd, target, ev.X, ev.Y, nil)
	s.endDrags()

	if ev.Phase == PhaseEnd && !sess.moved && !sess.timedOut {
		target.Dispatch(&Event{Type: EventTap, Bubble: true, Target: target, X: ev.X, Y: ev.Y, Link: sess.link})
		s.emit(EventTap, target, ev.X, ev.Y, sess.link)
		if sess.link != nil {
			linkEv := &Event{Type: EventLink, Bubble: true, Target: target, X: ev.X, Y: ev.Y, Link: sess.link}
			if target.Dispatch(linkEv) && s.openLink != nil {
				s.openLink(*sess.link)
			}
			s.emit(EventLink, target, ev.X, ev.Y, sess.link)
		}
	}

	if target.Box != nil && target.stage != nil {
		target.Box.setActive(false)
	}
}
