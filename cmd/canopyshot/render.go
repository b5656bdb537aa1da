package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/ggsurface"
	"github.com/phanxgames/canopy/scenefile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultWidth  = 320
	defaultHeight = 480
)

// renderOptions are the resolved settings of one render.
type renderOptions struct {
	Out       string
	Script    string
	Frames    int
	MaxFrames int
	Interval  time.Duration
	Width     float64
	Height    float64
	Ratio     float64
	Debug     bool
}

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <scene.yaml>",
		Short: "Render a scene file to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.renderOptions()
			return runRender(args[0], opts, a.logger, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringP("out", "o", "out.png", "output PNG path")
	f.StringP("script", "s", "", "JSON input script replayed before the capture")
	f.Int("frames", 2, "frames to run before the capture")
	f.Int("max-frames", 600, "upper bound on frames while a script runs")
	f.Duration("interval", time.Second/60, "simulated time between frames")
	f.Float64("width", 0, "stage width (default from the scene, else 320)")
	f.Float64("height", 0, "stage height (default from the scene, else 480)")
	f.Float64("ratio", 0, "device pixel ratio (default from the scene, else 1)")
	f.Bool("debug", false, "log per-frame render statistics")
	for _, name := range []string{"out", "script", "frames", "max-frames", "interval", "width", "height", "ratio", "debug"} {
		_ = a.v.BindPFlag("render."+name, f.Lookup(name))
	}
	return cmd
}

func (a *app) renderOptions() renderOptions {
	v := a.v
	return renderOptions{
		Out:       v.GetString("render.out"),
		Script:    v.GetString("render.script"),
		Frames:    v.GetInt("render.frames"),
		MaxFrames: v.GetInt("render.max-frames"),
		Interval:  v.GetDuration("render.interval"),
		Width:     v.GetFloat64("render.width"),
		Height:    v.GetFloat64("render.height"),
		Ratio:     v.GetFloat64("render.ratio"),
		Debug:     v.GetBool("render.debug"),
	}
}

// buildStage loads the scene into a stage drawing on a new gg surface.
func buildStage(path string, opts renderOptions, logger *zap.Logger) (*canopy.Stage, *ggsurface.Surface, error) {
	doc, err := scenefile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := doc.StageConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.Width = firstPositive(opts.Width, cfg.Width, defaultWidth)
	cfg.Height = firstPositive(opts.Height, cfg.Height, defaultHeight)
	cfg.Ratio = firstPositive(opts.Ratio, cfg.Ratio, 1)
	cfg.Logger = logger
	cfg.Debug = opts.Debug

	sf := ggsurface.New(int(math.Ceil(cfg.Width*cfg.Ratio)), int(math.Ceil(cfg.Height*cfg.Ratio)))
	stage, err := canopy.NewStage(sf, cfg)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := doc.Build()
	if err != nil {
		stage.Destroy()
		return nil, nil, err
	}
	stage.AppendChild(nodes...)
	return stage, sf, nil
}

func runRender(path string, opts renderOptions, logger *zap.Logger, out io.Writer) error {
	stage, sf, err := buildStage(path, opts, logger)
	if err != nil {
		return err
	}
	defer stage.Destroy()

	var runner *canopy.TestRunner
	if opts.Script != "" {
		data, err := os.ReadFile(opts.Script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err = canopy.LoadTestScript(data)
		if err != nil {
			return err
		}
		runner.OnStep = func(action, label string) {
			logger.Debug("script step", zap.String("action", action), zap.String("label", label))
		}
		stage.SetTestRunner(runner)
	}

	frames := runFrames(stage, runner, opts)
	if runner != nil && !runner.Done() {
		logger.Warn("script did not finish", zap.Int("frames", frames))
	}
	stage.Render()

	if err := sf.SavePNG(opts.Out); err != nil {
		return err
	}
	logger.Info("rendered", zap.String("scene", path), zap.String("out", opts.Out), zap.Int("frames", frames))
	fmt.Fprintln(out, opts.Out)
	return nil
}

// runFrames advances the stage on simulated time. Image loads are awaited
// before every frame so the capture does not depend on I/O timing.
func runFrames(stage *canopy.Stage, runner *canopy.TestRunner, opts renderOptions) int {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	limit := max(opts.Frames, 1)
	if runner != nil {
		limit = max(opts.MaxFrames, limit)
	}
	var now time.Duration
	n := 0
	for n < limit {
		stage.Images().Wait()
		stage.Frame(now)
		now += interval
		n++
		if n >= opts.Frames && (runner == nil || runner.Done()) {
			break
		}
	}
	return n
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <scene.yaml>",
		Short: "Lay out a scene and print the node tree with box geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, _, err := buildStage(args[0], a.renderOptions(), a.logger)
			if err != nil {
				return err
			}
			defer stage.Destroy()
			stage.Images().Wait()
			stage.Frame(0)
			printTree(cmd.OutOrStdout(), stage.Root())
			return nil
		},
	}
}

func printTree(w io.Writer, root *canopy.Node) {
	root.Walk(func(n *canopy.Node) bool {
		indent := strings.Repeat("  ", n.Depth())
		line := fmt.Sprintf("%s%s %q", indent, n.Type, n.Name)
		if b := n.Box; b != nil {
			line += fmt.Sprintf(" <%s> x=%g y=%g w=%g h=%g", b.Tag(), n.X, n.Y, b.Width(), b.Height())
			if b.IsClip() {
				line += fmt.Sprintf(" scroll=%g/%g", b.ScrollTop(), b.MaxScrollTop())
			}
		}
		if !n.Visible() {
			line += " hidden"
		}
		fmt.Fprintln(w, line)
		return true
	})
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
