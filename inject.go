package canopy

// InjectPress queues a pointer press at the given stage coordinates. Queued
// events are consumed one per frame, stamped with that frame's time.
func (s *Stage) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, PointerEvent{X: x, Y: y, Phase: PhaseStart})
}

// InjectMove queues a pointer move. Use it between InjectPress and
// InjectRelease to simulate a drag.
func (s *Stage) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, PointerEvent{X: x, Y: y, Phase: PhaseMove})
}

// InjectRelease queues a pointer release.
func (s *Stage) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, PointerEvent{X: x, Y: y, Phase: PhaseEnd})
}

// InjectTap is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two frames.
func (s *Stage) InjectTap(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (s *Stage) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY)
}

// PendingInput returns the number of queued synthetic events.
func (s *Stage) PendingInput() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through HandlePointer. Returns true if an event was consumed.
func (s *Stage) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	evt.Time = s.sched.now
	s.HandlePointer(evt)
	return true
}
