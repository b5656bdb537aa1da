package canopy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recorder returns a listener appending name to *log.
func recorder(log *[]string, name string) Listener {
	return func(*Event, ...any) bool {
		*log = append(*log, name)
		return true
	}
}

func TestDispatchOrder(t *testing.T) {
	n := NewContainer("n")
	var log []string
	n.On("tap", recorder(&log, "a"))
	n.On("tap", recorder(&log, "b"))
	n.On("tap", recorder(&log, "c"), Priority())
	n.On("scroll", recorder(&log, "other"))

	if !n.Trigger("tap") {
		t.Error("Trigger returned false for a completed dispatch")
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, log); diff != "" {
		t.Errorf("listener order (-want +got):\n%s", diff)
	}
}

func TestDispatchArgsAndTargets(t *testing.T) {
	n := NewContainer("n")
	var gotArgs []any
	var ev *Event
	n.On("custom", func(e *Event, args ...any) bool {
		ev, gotArgs = e, args
		return true
	})
	n.Trigger("CUSTOM", 1, "x")

	if ev == nil {
		t.Fatal("listener not invoked")
	}
	if diff := cmp.Diff([]any{1, "x"}, gotArgs); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}
	if ev.Type != "custom" || ev.Target != n || ev.CurrentTarget != n {
		t.Errorf("event = %+v", ev)
	}
	if !n.HasListener("Custom") {
		t.Error("HasListener should be case-insensitive")
	}
}

func TestBubbling(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AppendChild(child)

	var log []string
	var targets []*Node
	for _, n := range []*Node{parent, child} {
		n.On("tap", func(ev *Event, _ ...any) bool {
			log = append(log, ev.CurrentTarget.Name)
			targets = append(targets, ev.Target)
			return true
		})
	}

	child.Dispatch(NewEvent("tap", true))
	if diff := cmp.Diff([]string{"child", "parent"}, log); diff != "" {
		t.Errorf("bubble path (-want +got):\n%s", diff)
	}
	for _, tg := range targets {
		if tg != child {
			t.Errorf("Target = %q, want child", tg.Name)
		}
	}

	log = nil
	child.Dispatch(NewEvent("tap", false))
	if diff := cmp.Diff([]string{"child"}, log); diff != "" {
		t.Errorf("non-bubbling path (-want +got):\n%s", diff)
	}
}

func TestListenerFalseHaltsBubbling(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AppendChild(child)

	var log []string
	child.On("tap", func(*Event, ...any) bool {
		log = append(log, "child")
		return false
	})
	child.On("tap", recorder(&log, "child-second"))
	parent.On("tap", recorder(&log, "parent"))

	ev := NewEvent("tap", true)
	if child.Dispatch(ev) {
		t.Error("Dispatch should report a halted event")
	}
	if !ev.Halted() {
		t.Error("Halted() = false")
	}
	if diff := cmp.Diff([]string{"child"}, log); diff != "" {
		t.Errorf("invoked (-want +got):\n%s", diff)
	}
}

func TestStopPropagation(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AppendChild(child)

	var log []string
	child.On("tap", func(ev *Event, _ ...any) bool {
		ev.StopPropagation()
		log = append(log, "first")
		return true
	})
	child.On("tap", recorder(&log, "second"))
	parent.On("tap", recorder(&log, "parent"))

	child.Dispatch(NewEvent("tap", true))
	if diff := cmp.Diff([]string{"first", "second"}, log); diff != "" {
		t.Errorf("invoked (-want +got):\n%s", diff)
	}
}

func TestOffNamespaces(t *testing.T) {
	n := NewContainer("n")
	var log []string
	n.On("scroll.a", recorder(&log, "f1"))
	n.On("scroll.b", recorder(&log, "f2"))

	n.Off("scroll.a")
	n.Trigger("scroll")
	if diff := cmp.Diff([]string{"f2"}, log); diff != "" {
		t.Errorf("after Off(scroll.a) (-want +got):\n%s", diff)
	}
}

func TestOffMatching(t *testing.T) {
	tests := []struct {
		name   string
		off    string
		tap    []string
		scroll []string
	}{
		{"type", "tap", []string{"locked"}, []string{"scroll-menu"}},
		{"namespace only", ".menu", []string{"plain", "locked"}, nil},
		{"type and namespace", "tap.main", []string{"plain", "menu", "locked"}, []string{"scroll-menu"}},
		{"everything", "", []string{"locked"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewContainer("n")
			var log []string
			n.On("tap", recorder(&log, "plain"))
			n.On("tap.menu", recorder(&log, "menu"))
			n.On("tap.menu.main", recorder(&log, "menu-main"))
			n.On("scroll.menu", recorder(&log, "scroll-menu"))
			n.On("tap", recorder(&log, "locked"), Locked())

			n.Off(tt.off)

			n.Trigger("tap")
			if diff := cmp.Diff(tt.tap, log); diff != "" {
				t.Errorf("tap listeners (-want +got):\n%s", diff)
			}
			log = nil
			n.Trigger("scroll")
			if diff := cmp.Diff(tt.scroll, log); diff != "" {
				t.Errorf("scroll listeners (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLockedListenerNeedsHandle(t *testing.T) {
	n := NewContainer("n")
	var log []string
	h := n.On("tap", recorder(&log, "locked"), Locked())

	n.Off("tap")
	n.Trigger("tap")
	if len(log) != 1 {
		t.Fatalf("locked listener removed by wildcard Off")
	}

	n.Off("tap", h)
	n.Trigger("tap")
	if len(log) != 1 {
		t.Errorf("locked listener survived Off with its handle")
	}
}

func TestRemoveListener(t *testing.T) {
	n := NewContainer("n")
	other := NewContainer("other")
	var log []string
	h := n.On("tap", recorder(&log, "x"), Locked())

	n.RemoveListener("scroll", h)
	other.RemoveListener("tap", h)
	if !n.HasListener("tap") {
		t.Fatal("listener removed through a mismatched type or owner")
	}

	n.RemoveListener("tap", h)
	if n.HasListener("tap") {
		t.Error("RemoveListener did not remove the registration")
	}

	h2 := n.On("tap", recorder(&log, "y"))
	h2.Remove()
	h2.Remove()
	if n.HasListener("tap") {
		t.Error("handle Remove did not remove the registration")
	}
}

func TestOnce(t *testing.T) {
	n := NewContainer("n")
	var log []string
	n.Once("tap", recorder(&log, "once"))
	n.Trigger("tap")
	n.Trigger("tap")
	if len(log) != 1 {
		t.Errorf("Once listener ran %d times, want 1", len(log))
	}
}

func TestOnIgnoresInvalidRegistrations(t *testing.T) {
	n := NewContainer("n")
	if h := n.On("", recorder(new([]string), "x")); h != (ListenerHandle{}) {
		t.Error("On with empty type returned a live handle")
	}
	if h := n.On("tap", nil); h != (ListenerHandle{}) {
		t.Error("On with nil listener returned a live handle")
	}
	if n.HasListener("tap") || n.HasListener("") {
		t.Error("invalid registrations were stored")
	}
	ListenerHandle{}.Remove()
	if !n.Dispatch(nil) {
		t.Error("Dispatch(nil) should be a completed no-op")
	}
}

func TestListenerAddedDuringDispatch(t *testing.T) {
	n := NewContainer("n")
	var log []string
	added := false
	n.On("tap", func(*Event, ...any) bool {
		log = append(log, "first")
		if !added {
			added = true
			n.On("tap", recorder(&log, "late"))
		}
		return true
	})

	n.Trigger("tap")
	if diff := cmp.Diff([]string{"first"}, log); diff != "" {
		t.Errorf("first dispatch (-want +got):\n%s", diff)
	}
	log = nil
	n.Trigger("tap")
	if diff := cmp.Diff([]string{"first", "late"}, log); diff != "" {
		t.Errorf("second dispatch (-want +got):\n%s", diff)
	}
}
