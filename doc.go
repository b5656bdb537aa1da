// Package canopy is a retained-mode canvas toolkit: a display tree drawn onto
// a single 2D raster surface, with touch gestures, a box layout engine and a
// repaint scheduler that redraws at most once per frame.
//
// # Quick start
//
// A [Stage] binds the tree to a [Surface]. Hosts call [Stage.Frame] once per
// display frame and feed pointer input through [Stage.HandlePointer]. The
// ebitenhost package does both for an Ebitengine window:
//
//	sheet, _ := canopy.ParseStyleSheet(`.row { padding: 8px; border-bottom: 1px solid #ddd }`)
//	stage, _ := canopy.NewStage(surface, canopy.StageConfig{StyleSheet: sheet})
//
//	list := canopy.NewBox("list", canopy.BoxConfig{Style: "overflow: auto", Height: canopy.Px(300)})
//	for i := 0; i < 50; i++ {
//		list.AppendChild(canopy.NewText("row", canopy.BoxConfig{Class: "row"},
//			canopy.Span{Text: fmt.Sprintf("Row %d", i)}))
//	}
//	stage.AppendChild(list)
//
// # Scene graph
//
// Every element is a [Node]. Kind-specific state lives in component pointers:
// [Box] for layout boxes, [TextContent] for text boxes, [ImageContent] for
// image boxes and [Shape] for plain paths. Children inherit their parent's
// transform and alpha; a box's children are painted in z-index order.
//
// # Events and gestures
//
// Listeners are registered with [Node.On] under a type and optional
// namespaces ("tap.menu"). Returning false from a listener halts the
// dispatch and the bubbling. The stage turns raw pointer events into
// touchstart, touchmove, touchend, tap and link events.
//
// # Layout
//
// Boxes are styled from a [StyleSheet] plus inline declarations and laid out
// as blocks or along a single flexible axis. Layout runs synchronously on the
// mutation that requires it; attribute writes go through [Node.Set] with
// typed [Attr] values. Clipping boxes with overflow auto scroll by drag with
// momentum.
//
// # Animation
//
// Tweens and timers run on the frame callback ([Stage.After], [TweenAlpha],
// [TweenPosition], [TweenScrollTop]) using [gween] easing.
//
// [gween]: https://github.com/tanema/gween
package canopy
