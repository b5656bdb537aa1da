package canopy

import (
	"math"
	"strconv"
	"strings"
)

// Matrix is a 2D affine matrix in canvas order [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// Identity is the identity affine matrix.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Translate returns a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{1, 0, 0, 1, x, y}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix for an angle in radians.
func Rotate(rad float64) Matrix {
	sin, cos := math.Sincos(rad)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Skew returns a skew matrix for angles in radians along X and Y.
func Skew(ax, ay float64) Matrix {
	return Matrix{1, math.Tan(ay), math.Tan(ax), 1, 0, 0}
}

// Multiply returns m * c, which applies c first and then m.
func (m Matrix) Multiply(c Matrix) Matrix {
	return Matrix{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert computes the inverse of m.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Matrix) Invert() Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y) by m.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity
}

// ParseTransform parses a CSS-like transform list such as
// "translate(10,20) scale(2)" or "matrix(1,0,0,1,5,5)". Functions are
// composed left to right. Supported: matrix, translate, translateX,
// translateY, scale, scaleX, scaleY, rotate, skew, skewX, skewY. Angles
// accept deg, rad, grad and turn units; unitless angles are degrees.
//
// The second return is false when the input cannot be parsed, in which case
// the identity is returned. "none" and the empty string parse as identity.
func ParseTransform(s string) (Matrix, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return Identity, true
	}
	m := Identity
	for s != "" {
		open := strings.IndexByte(s, '(')
		closing := strings.IndexByte(s, ')')
		if open <= 0 || closing < open {
			return Identity, false
		}
		name := strings.ToLower(strings.TrimSpace(s[:open]))
		args := splitArgs(s[open+1 : closing])
		s = strings.TrimSpace(s[closing+1:])

		f, ok := transformFunc(name, args)
		if !ok {
			return Identity, false
		}
		m = m.Multiply(f)
	}
	return m, true
}

func transformFunc(name string, args []string) (Matrix, bool) {
	switch name {
	case "matrix":
		if len(args) != 6 {
			return Identity, false
		}
		var out Matrix
		for i, a := range args {
			v, ok := parseNumber(a)
			if !ok {
				return Identity, false
			}
			out[i] = v
		}
		return out, true
	case "translate", "translatex", "translatey":
		v, ok := parseLengths(args, 1, 2)
		if !ok {
			return Identity, false
		}
		switch name {
		case "translatex":
			return Translate(v[0], 0), len(v) == 1
		case "translatey":
			return Translate(0, v[0]), len(v) == 1
		}
		if len(v) == 1 {
			return Translate(v[0], 0), true
		}
		return Translate(v[0], v[1]), true
	case "scale", "scalex", "scaley":
		v, ok := parseLengths(args, 1, 2)
		if !ok {
			return Identity, false
		}
		switch name {
		case "scalex":
			return Scale(v[0], 1), len(v) == 1
		case "scaley":
			return Scale(1, v[0]), len(v) == 1
		}
		if len(v) == 1 {
			return Scale(v[0], v[0]), true
		}
		return Scale(v[0], v[1]), true
	case "rotate":
		if len(args) != 1 {
			return Identity, false
		}
		a, ok := parseAngle(args[0])
		return Rotate(a), ok
	case "skew", "skewx", "skewy":
		if len(args) < 1 || len(args) > 2 || (name != "skew" && len(args) != 1) {
			return Identity, false
		}
		ax, ok := parseAngle(args[0])
		if !ok {
			return Identity, false
		}
		var ay float64
		if len(args) == 2 {
			if ay, ok = parseAngle(args[1]); !ok {
				return Identity, false
			}
		}
		switch name {
		case "skewx":
			return Skew(ax, 0), true
		case "skewy":
			return Skew(0, ax), true
		}
		return Skew(ax, ay), true
	}
	return Identity, false
}

func splitArgs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

func parseLengths(args []string, min, max int) ([]float64, bool) {
	if len(args) < min || len(args) > max {
		return nil, false
	}
	out := make([]float64, len(args))
	for i, a := range args {
		v, ok := parseNumber(strings.TrimSuffix(strings.ToLower(a), "px"))
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseAngle(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	scale := math.Pi / 180
	switch {
	case strings.HasSuffix(s, "grad"):
		s, scale = strings.TrimSuffix(s, "grad"), math.Pi/200
	case strings.HasSuffix(s, "deg"):
		s = strings.TrimSuffix(s, "deg")
	case strings.HasSuffix(s, "rad"):
		s, scale = strings.TrimSuffix(s, "rad"), 1
	case strings.HasSuffix(s, "turn"):
		s, scale = strings.TrimSuffix(s, "turn"), 2*math.Pi
	}
	v, ok := parseNumber(s)
	return v * scale, ok
}

// --- Node transform ---

// SetTransform parses a transform list and installs it as the node's local
// transform. Unparseable input is ignored.
func (n *Node) SetTransform(s string) {
	m, ok := ParseTransform(s)
	if !ok {
		return
	}
	n.SetMatrix(m)
}

// SetMatrix installs m as the node's local transform.
func (n *Node) SetMatrix(m Matrix) {
	if n.transform == m {
		return
	}
	n.transform = m
	n.Repaint()
}

// Transform returns the node's local transform (identity by default).
func (n *Node) Transform() Matrix {
	return n.transform
}

// localMatrix returns the matrix mapping this node's local space into its
// parent's space: the node is moved to its position and then transformed
// about its own origin. Boxes additionally apply their style transform about
// their border-box center.
func (n *Node) localMatrix() Matrix {
	m := Translate(n.X, n.Y)
	if !n.transform.IsIdentity() {
		m = m.Multiply(n.transform)
	}
	if n.Box != nil {
		m = n.Box.applyStyleTransform(m)
	}
	return m
}

// childMatrix returns the extra transform applied between this node's local
// space and its children's parent space (scroll offset for clip boxes).
func (n *Node) childMatrix(local Matrix) Matrix {
	if n.Box != nil && n.Box.isClip {
		return local.Multiply(Translate(0, -math.Round(n.Box.scrollTop)))
	}
	return local
}

// WorldMatrix returns the accumulated matrix from this node's local space to
// the stage's logical coordinate space. The stage density ratio is not
// included.
func (n *Node) WorldMatrix() Matrix {
	var chain []*Node
	for p := n; p != nil && p.Type != NodeTypeStage; p = p.parent {
		chain = append(chain, p)
	}
	m := Identity
	for i := len(chain) - 1; i >= 0; i-- {
		local := chain[i].localMatrix()
		if i == 0 {
			m = m.Multiply(local)
		} else {
			m = chain[i].childMatrix(m.Multiply(local))
		}
	}
	return m
}

// WorldToLocal converts a stage-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return n.WorldMatrix().Invert().Apply(wx, wy)
}

// LocalToWorld converts a local-space point to stage space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return n.WorldMatrix().Apply(lx, ly)
}
