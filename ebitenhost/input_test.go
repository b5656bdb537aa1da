package ebitenhost

import (
	"testing"
	"time"

	"github.com/phanxgames/canopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerTrackerSequence(t *testing.T) {
	var p pointerTracker
	steps := []struct {
		sample pointerSample
		want   []canopy.Phase
	}{
		{pointerSample{x: 10, y: 10}, nil},
		{pointerSample{x: 10, y: 10, pressed: true}, []canopy.Phase{canopy.PhaseStart}},
		{pointerSample{x: 10, y: 10, pressed: true}, nil},
		{pointerSample{x: 14, y: 30, pressed: true}, []canopy.Phase{canopy.PhaseMove}},
		{pointerSample{x: 0, y: 0}, []canopy.Phase{canopy.PhaseEnd}},
		{pointerSample{x: 0, y: 0}, nil},
	}
	for i, st := range steps {
		got := p.step(st.sample, 1, time.Duration(i)*time.Millisecond)
		require.Len(t, got, len(st.want), "step %d", i)
		for j := range got {
			assert.Equal(t, st.want[j], got[j].Phase, "step %d", i)
		}
	}
}

func TestPointerTrackerEndUsesLastPosition(t *testing.T) {
	var p pointerTracker
	p.step(pointerSample{x: 40, y: 20, pressed: true}, 2, 0)
	got := p.step(pointerSample{}, 2, time.Millisecond)
	require.Len(t, got, 1)
	assert.Equal(t, canopy.PointerEvent{X: 20, Y: 10, Phase: canopy.PhaseEnd, Time: time.Millisecond}, got[0])
}

func TestGeoMMatchesMatrix(t *testing.T) {
	m := canopy.Translate(5, 7).Multiply(canopy.Rotate(0.5)).Multiply(canopy.Scale(2, 3))
	g := geoM(m)
	for _, pt := range [][2]float64{{0, 0}, {1, 0}, {3, -2}} {
		wx, wy := m.Apply(pt[0], pt[1])
		gx, gy := g.Apply(pt[0], pt[1])
		assert.InDelta(t, wx, gx, 1e-9)
		assert.InDelta(t, wy, gy, 1e-9)
	}
}

func TestRectPoints(t *testing.T) {
	pts := rectPoints(canopy.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	assert.Equal(t, []canopy.Vec2{{X: 1, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 6}, {X: 1, Y: 6}}, pts)
}
