package canopy

import (
	"math"

	"go.uber.org/zap"
)

// paintOrder returns the children in painting order. Boxes paint their
// zChildren (stable z-index order); other nodes paint in tree order.
func (n *Node) paintOrder() []*Node {
	if n.Box != nil {
		return n.Box.sortedZChildren()
	}
	return n.children
}

// prepareRender draws n and its subtree. Detached, invisible and fully
// transparent nodes are skipped together with their descendants.
func (s *Stage) prepareRender(n *Node, parentAlpha float64, stats *debugStats) {
	if n.stage == nil || !n.visible || n.alpha <= 0 {
		return
	}
	alpha := parentAlpha * n.alpha
	sf := s.surface

	sf.Save()
	sf.SetGlobalAlpha(alpha)
	sf.Transform(n.localMatrix())
	s.renderNode(n, stats)

	children := n.paintOrder()
	if n.Box != nil && n.Box.isClip {
		sf.Save()
		sf.ClipRect(n.Box.clipRect())
		sf.Transform(Translate(0, -math.Round(n.Box.scrollTop)))
		for _, child := range children {
			s.prepareRender(child, alpha, stats)
		}
		sf.Restore()
		sf.SetGlobalAlpha(alpha)
		n.Box.drawScrollbar(sf)
	} else {
		for _, child := range children {
			s.prepareRender(child, alpha, stats)
		}
	}
	sf.Restore()
}

// renderNode runs the node's own render step and its extra render hook.
// Failures, including panics, are logged and skip only this node.
func (s *Stage) renderNode(n *Node, stats *debugStats) {
	stats.nodeCount++
	defer func() {
		if r := recover(); r != nil {
			stats.renderErrors++
			s.logger.Warn("canopy: render panic",
				zap.Uint32("node", n.ID), zap.String("name", n.Name), zap.Any("panic", r))
		}
	}()

	var err error
	switch n.Type {
	case NodeTypeShape:
		err = n.Shape.render(s.surface)
	case NodeTypeBox:
		err = n.Box.render(s.surface)
	case NodeTypeText:
		if err = n.Box.render(s.surface); err == nil {
			err = n.Text.render(s.surface)
		}
	case NodeTypeImage:
		if err = n.Box.render(s.surface); err == nil {
			err = n.Image.render(s.surface)
		}
	}
	if err == nil && n.ExtraRender != nil {
		err = n.ExtraRender(n, s.surface)
	}
	if err != nil {
		stats.renderErrors++
		s.logger.Warn("canopy: render failed",
			zap.Uint32("node", n.ID), zap.String("name", n.Name), zap.Error(err))
	}
}

// hitTest finds the topmost node under the stage-space point (x, y). parent
// maps n's parent space to stage space. Children are tested in reverse paint
// order so the visually topmost match wins; then the node's own area, then
// its custom hook. Invisible, detached or pointer-disabled nodes are excluded
// with their whole subtree.
func hitTest(n *Node, parent Matrix, x, y float64) *Node {
	if n.stage == nil || !n.visible || !n.pointerEvents {
		return nil
	}
	local := parent.Multiply(n.localMatrix())
	lx, ly := local.Invert().Apply(x, y)

	childrenHittable := true
	if n.Box != nil && n.Box.isClip {
		childrenHittable = n.Box.clipRect().Contains(lx, ly)
	}
	if childrenHittable {
		inner := n.childMatrix(local)
		order := n.paintOrder()
		for i := len(order) - 1; i >= 0; i-- {
			if t := hitTest(order[i], inner, x, y); t != nil {
				return t
			}
		}
	}

	if n.HitArea != nil {
		if n.HitArea.Contains(lx, ly) {
			return n
		}
	} else if n.Box != nil && n.Box.containsLocal(lx, ly) {
		return n
	}
	if n.ExtraHitTest != nil {
		return n.ExtraHitTest(n, lx, ly)
	}
	return nil
}

// HitTest returns the topmost node of n's subtree under the stage-space
// point, or nil. The node must be attached to a stage.
func (n *Node) HitTest(x, y float64) *Node {
	parent := Identity
	if n.parent != nil && n.Type != NodeTypeStage {
		parent = n.parent.WorldMatrix()
		parent = n.parent.childMatrix(parent)
	}
	return hitTest(n, parent, x, y)
}
