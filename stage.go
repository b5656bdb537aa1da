package canopy

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTapTimeout = 500 * time.Millisecond
)

// EntityStore is the interface for optional ECS integration.
// When set on a Stage, gesture events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries gesture data for the ECS bridge.
type InteractionEvent struct {
	Type     string
	NodeID   uint32
	EntityID uint32
	X, Y     float64
	// Href is set for link events.
	Href string
}

// StageConfig configures a Stage. The zero value is usable: size comes from
// the surface, ratio is 1, the tap timeout is 500ms and logging is disabled.
type StageConfig struct {
	// Width and Height are the logical stage size. Zero derives them from
	// the surface size divided by Ratio.
	Width, Height float64
	// Ratio is the pixel-density ratio applied before drawing children.
	Ratio float64
	// Background clears the surface before every redraw.
	Background Color
	// SuppressMove drops move events after a press so a host can keep
	// native scrolling. Taps still require no movement.
	SuppressMove bool
	// TapTimeout is how long a press may last and still count as a tap.
	TapTimeout time.Duration

	Debug  bool
	Logger *zap.Logger

	StyleSheet *StyleSheet
	// StyleCache shares resolved styles between stages using the same
	// sheet. When set it takes precedence over StyleSheet.
	StyleCache *StyleCache
	Shaper     TextShaper
	Loader     AssetLoader
	Store      EntityStore

	// OpenLink follows a tapped text link when no link listener returned
	// false.
	OpenLink func(Link)
}

// Stage is the root of a display tree bound to one drawing surface. It owns
// the single repaint flag, the style and image caches, the frame scheduler
// and the gesture session.
type Stage struct {
	root    *Node
	surface Surface
	store   EntityStore
	logger  *zap.Logger
	debug   bool

	width, height float64
	ratio         float64
	background    Color

	repaint     bool
	renderCount int

	nodes  map[uint32]*Node
	styles *StyleCache
	shaper TextShaper
	images *ImageCache

	sched scheduler

	// Input state
	session      TouchSession
	sessionID    uint64
	dragging     []*Node
	suppressMove bool
	tapTimeout   time.Duration
	openLink     func(Link)
	injectQueue  []PointerEvent
	testRunner   *TestRunner

	ctx       context.Context
	cancel    context.CancelFunc
	destroyed bool
}

// NewStage creates a stage drawing into surface. It fails with ErrNilSurface
// when surface is nil.
func NewStage(surface Surface, cfg StageConfig) (*Stage, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ratio := cfg.Ratio
	if ratio <= 0 || !finite(ratio) {
		ratio = 1
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 || height <= 0 {
		sw, sh := surface.Size()
		if width <= 0 {
			width = float64(sw) / ratio
		}
		if height <= 0 {
			height = float64(sh) / ratio
		}
	}
	tapTimeout := cfg.TapTimeout
	if tapTimeout <= 0 {
		tapTimeout = defaultTapTimeout
	}
	styles := cfg.StyleCache
	if styles == nil {
		sheet := cfg.StyleSheet
		if sheet == nil {
			sheet = &StyleSheet{}
		}
		styles = NewStyleCache(sheet)
	}
	shaper := cfg.Shaper
	if shaper == nil {
		shaper = NewFaceShaper(nil)
	}
	loader := cfg.Loader
	if loader == nil {
		loader = DefaultLoader{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Stage{
		surface:      surface,
		store:        cfg.Store,
		logger:       logger,
		debug:        cfg.Debug,
		width:        width,
		height:       height,
		ratio:        ratio,
		background:   cfg.Background,
		repaint:      true,
		nodes:        make(map[uint32]*Node),
		styles:       styles,
		shaper:       shaper,
		suppressMove: cfg.SuppressMove,
		tapTimeout:   tapTimeout,
		openLink:     cfg.OpenLink,
		ctx:          ctx,
		cancel:       cancel,
	}
	s.images = newImageCache(loader, s)

	root := &Node{Name: "stage", Type: NodeTypeStage}
	nodeDefaults(root)
	root.HitArea = HitRect{Width: width, Height: height}
	root.stage = s
	s.root = root
	s.nodes[root.ID] = root

	logger.Debug("canopy: stage created",
		zap.Float64("width", width), zap.Float64("height", height), zap.Float64("ratio", ratio))
	return s, nil
}

// Root returns the stage's root node. Append top-level nodes to it.
func (s *Stage) Root() *Node { return s.root }

// AppendChild appends nodes to the root.
func (s *Stage) AppendChild(children ...*Node) { s.root.AppendChild(children...) }

// Width returns the logical stage width.
func (s *Stage) Width() float64 { return s.width }

// Height returns the logical stage height.
func (s *Stage) Height() float64 { return s.height }

// Ratio returns the pixel-density ratio.
func (s *Stage) Ratio() float64 { return s.ratio }

// Surface returns the drawing surface.
func (s *Stage) Surface() Surface { return s.surface }

// Logger returns the stage logger.
func (s *Stage) Logger() *zap.Logger { return s.logger }

// Styles returns the stage's style cache.
func (s *Stage) Styles() *StyleCache { return s.styles }

// Images returns the stage's image cache.
func (s *Stage) Images() *ImageCache { return s.images }

// Shaper returns the text shaper used by text nodes.
func (s *Stage) Shaper() TextShaper { return s.shaper }

// Dirty reports whether a redraw is pending.
func (s *Stage) Dirty() bool { return s.repaint }

// RenderCount returns how many full redraws the stage has performed.
func (s *Stage) RenderCount() int { return s.renderCount }

// Now returns the time of the latest frame.
func (s *Stage) Now() time.Duration { return s.sched.now }

// Context is canceled when the stage is destroyed.
func (s *Stage) Context() context.Context { return s.ctx }

// SetEntityStore sets the optional ECS bridge.
func (s *Stage) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug logging of frame stats and tree
// shape warnings.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Lookup returns the attached node with the given ID, or nil.
func (s *Stage) Lookup(id uint32) *Node {
	return s.nodes[id]
}

func (s *Stage) register(n *Node) {
	s.nodes[n.ID] = n
}

func (s *Stage) unregister(n *Node) {
	delete(s.nodes, n.ID)
}

// HitTest returns the topmost node under the stage-space point. The stage
// root is returned when no descendant is hit.
func (s *Stage) HitTest(x, y float64) *Node {
	order := s.root.children
	for i := len(order) - 1; i >= 0; i-- {
		if t := hitTest(order[i], Identity, x, y); t != nil {
			return t
		}
	}
	return s.root
}

// Resize changes the logical stage size, re-runs layout for top-level boxes
// and dispatches a resize event on the root.
func (s *Stage) Resize(width, height float64) {
	if width <= 0 || height <= 0 || !finite(width) || !finite(height) {
		return
	}
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.root.HitArea = HitRect{Width: width, Height: height}
	for _, child := range s.root.children {
		child.relayoutTree()
	}
	s.repaint = true
	s.root.Dispatch(NewEvent(EventResize, false))
}

// Frame is the host's per-frame callback. It drains posted work and injected
// input, fires due timers, advances animations, dispatches enter_frame and
// finally redraws once if anything requested a repaint since the last frame.
func (s *Stage) Frame(now time.Duration) {
	if s.destroyed {
		return
	}
	dt := now - s.sched.now
	if dt < 0 || s.sched.frames == 0 {
		dt = 0
	}
	s.sched.now = now
	s.sched.frames++

	s.sched.drainPosted()
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjectedInput()
	s.sched.fireTimers(now)
	s.sched.advance(dt)
	s.root.Dispatch(NewEvent(EventEnterFrame, false))

	if s.repaint {
		s.Render()
	}
}

// Render redraws the whole tree immediately and clears the repaint flag.
// Hosts normally call Frame instead.
func (s *Stage) Render() {
	if s.destroyed {
		return
	}
	s.repaint = false
	s.renderCount++

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	sf := s.surface
	sf.Save()
	sf.Clear(s.background)
	sf.Transform(Scale(s.ratio, s.ratio))
	for _, child := range s.root.children {
		s.prepareRender(child, s.root.alpha, &stats)
	}
	if s.root.ExtraRender != nil {
		if err := s.root.ExtraRender(s.root, sf); err != nil {
			s.logger.Warn("canopy: stage extra render failed", zap.Error(err))
		}
	}
	sf.Restore()

	if s.debug {
		stats.traverseTime = time.Since(t0)
		s.debugLog(stats)
	}
}

// Remove clears the stage: every child is destroyed and all root listeners
// are removed. The stage itself stays usable.
func (s *Stage) Remove() {
	for len(s.root.children) > 0 {
		s.root.children[len(s.root.children)-1].Remove()
	}
	s.root.listeners = nil
	s.session.timer.Stop()
	s.session = TouchSession{}
	s.dragging = nil
	s.repaint = true
}

// Destroy removes everything, cancels pending timers, animations and asset
// loads, and makes further frames no-ops.
func (s *Stage) Destroy() {
	if s.destroyed {
		return
	}
	s.Remove()
	s.cancel()
	s.sched.reset()
	s.destroyed = true
	s.logger.Debug("canopy: stage destroyed")
}

// emit forwards a gesture event to the entity store when one is set.
func (s *Stage) emit(typ string, target *Node, x, y float64, link *Link) {
	if s.store == nil || target == nil {
		return
	}
	ev := InteractionEvent{Type: typ, NodeID: target.ID, EntityID: target.EntityID, X: x, Y: y}
	if link != nil {
		ev.Href = link.Href
	}
	s.store.EmitEvent(ev)
}
