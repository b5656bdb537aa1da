package canopy

import (
	"sort"
	"sync"
	"time"
)

// Timer is a one-shot callback scheduled on the stage's frame clock.
type Timer struct {
	at      time.Duration
	seq     uint64
	fn      func()
	stopped bool
}

// Stop cancels the timer. Safe to call more than once or after it fired.
func (t *Timer) Stop() {
	if t != nil {
		t.stopped = true
	}
}

// animator is advanced once per frame; it reports true when finished.
type animator interface {
	advance(dt time.Duration) bool
}

// scheduler drives timers, animations and posted tasks from Stage.Frame.
// Everything except post runs on the frame thread.
type scheduler struct {
	now    time.Duration
	frames uint64
	seq    uint64
	timers []*Timer
	anims  []animator

	mu     sync.Mutex
	posted []func()
}

// After schedules fn to run on the first frame at or after delay from the
// latest frame time.
func (s *Stage) After(delay time.Duration, fn func()) *Timer {
	if fn == nil || s.destroyed {
		return &Timer{stopped: true}
	}
	s.sched.seq++
	t := &Timer{at: s.sched.now + delay, seq: s.sched.seq, fn: fn}
	s.sched.timers = append(s.sched.timers, t)
	return t
}

// Post queues fn to run at the start of the next frame. It is the only
// Stage method that is safe to call from other goroutines.
func (s *Stage) Post(fn func()) {
	if fn == nil {
		return
	}
	s.sched.mu.Lock()
	s.sched.posted = append(s.sched.posted, fn)
	s.sched.mu.Unlock()
}

func (s *Stage) animate(a animator) {
	s.sched.anims = append(s.sched.anims, a)
}

func (q *scheduler) drainPosted() {
	q.mu.Lock()
	tasks := q.posted
	q.posted = nil
	q.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}

// fireTimers runs every due timer in deadline order. Timers scheduled by a
// callback run on a later frame at the earliest.
func (q *scheduler) fireTimers(now time.Duration) {
	if len(q.timers) == 0 {
		return
	}
	var due []*Timer
	kept := q.timers[:0]
	for _, t := range q.timers {
		switch {
		case t.stopped:
		case t.at <= now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(q.timers); i++ {
		q.timers[i] = nil
	}
	q.timers = kept
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func (q *scheduler) advance(dt time.Duration) {
	if len(q.anims) == 0 {
		return
	}
	running := append([]animator(nil), q.anims...)
	done := make(map[animator]bool)
	for _, a := range running {
		if a.advance(dt) {
			done[a] = true
		}
	}
	kept := q.anims[:0]
	for _, a := range q.anims {
		if !done[a] {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(q.anims); i++ {
		q.anims[i] = nil
	}
	q.anims = kept
}

func (q *scheduler) reset() {
	for _, t := range q.timers {
		t.stopped = true
	}
	q.timers = nil
	q.anims = nil
	q.mu.Lock()
	q.posted = nil
	q.mu.Unlock()
}
