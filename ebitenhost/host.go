// Package ebitenhost runs a canopy Stage inside an Ebitengine window. The
// stage renders into an offscreen image during Update, only when it is dirty,
// and Draw copies that image to the screen.
package ebitenhost

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/phanxgames/canopy"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title string
	// Width and Height are the logical window size.
	Width, Height int
	// Ratio is the device pixel ratio. Zero uses the monitor's scale.
	Ratio float64
	// ShowFPS overlays the current frame rate.
	ShowFPS bool
	// Stage configures the stage. Width, Height and Ratio are filled in
	// from the run config.
	Stage canopy.StageConfig
}

// Game is an ebiten.Game driving one Stage.
type Game struct {
	stage   *canopy.Stage
	surface *Surface
	cfg     RunConfig
	ratio   float64

	pointer pointerTracker
	clock   func() time.Duration
}

// NewGame creates the surface and stage for cfg.
func NewGame(cfg RunConfig) (*Game, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("ebitenhost: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	ratio := cfg.Ratio
	if ratio <= 0 {
		ratio = ebiten.Monitor().DeviceScaleFactor()
	}
	if ratio <= 0 {
		ratio = 1
	}
	sf := NewSurface(int(float64(cfg.Width)*ratio), int(float64(cfg.Height)*ratio))
	sc := cfg.Stage
	sc.Width, sc.Height, sc.Ratio = float64(cfg.Width), float64(cfg.Height), ratio
	stage, err := canopy.NewStage(sf, sc)
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: %w", err)
	}
	start := time.Now()
	return &Game{
		stage:   stage,
		surface: sf,
		cfg:     cfg,
		ratio:   ratio,
		clock:   func() time.Duration { return time.Since(start) },
	}, nil
}

// Stage returns the stage driven by the game.
func (g *Game) Stage() *canopy.Stage { return g.stage }

// Surface returns the offscreen surface the stage renders into.
func (g *Game) Surface() *Surface { return g.surface }

// Update feeds pointer input to the stage and runs one frame.
func (g *Game) Update() error {
	now := g.clock()
	for _, ev := range g.pointer.step(g.pointer.poll(), g.ratio, now) {
		g.stage.HandlePointer(ev)
	}
	g.stage.Frame(now)
	return nil
}

// Draw copies the stage image to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.surface.Image(), nil)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout returns the device size of the stage image.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.surface.Size()
}

// Run opens a window, lets setup populate the stage and runs the game loop
// until the window is closed.
func Run(cfg RunConfig, setup func(*canopy.Stage) error) error {
	g, err := NewGame(cfg)
	if err != nil {
		return err
	}
	if setup != nil {
		if err := setup(g.stage); err != nil {
			return err
		}
	}
	title := cfg.Title
	if title == "" {
		title = "canopy"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	defer g.stage.Destroy()
	return ebiten.RunGame(g)
}
