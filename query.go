package canopy

import "strings"

// ChildrenByName returns the direct children whose name matches. The name
// may carry an operator prefix: "^=pre" matches names starting with pre,
// "$=suf" names ending with suf and "~=sub" names containing sub. Without a
// prefix the name must match exactly. Results are in child order.
func (n *Node) ChildrenByName(name string) []*Node {
	match := nameMatcher(name)
	var out []*Node
	for _, child := range n.children {
		if match(child.Name) {
			out = append(out, child)
		}
	}
	return out
}

// ChildByName returns the first direct child matching name (see
// ChildrenByName), or nil.
func (n *Node) ChildByName(name string) *Node {
	match := nameMatcher(name)
	for _, child := range n.children {
		if match(child.Name) {
			return child
		}
	}
	return nil
}

func nameMatcher(name string) func(string) bool {
	if len(name) > 2 && name[1] == '=' {
		arg := name[2:]
		switch name[0] {
		case '^':
			return func(s string) bool { return strings.HasPrefix(s, arg) }
		case '$':
			return func(s string) bool { return strings.HasSuffix(s, arg) }
		case '~':
			return func(s string) bool { return strings.Contains(s, arg) }
		}
	}
	return func(s string) bool { return s == name }
}

// ChildrenByType returns the direct children of the given kind.
func (n *Node) ChildrenByType(t NodeType) []*Node {
	var out []*Node
	for _, child := range n.children {
		if child.Type == t {
			out = append(out, child)
		}
	}
	return out
}

// IsDescendantOf reports whether n is a strict descendant of ancestor.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	if ancestor == nil || ancestor == n {
		return false
	}
	return isAncestor(ancestor, n)
}

// Walk calls fn for n and every descendant in depth-first tree order.
// Returning false from fn skips that node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// ElementByID returns the first box in n's subtree (n included) whose
// element id is id, or nil.
func (n *Node) ElementByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Box != nil && c.Box.id == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// ElementsByClass returns every box in n's subtree (n included) carrying
// the class, in tree order.
func (n *Node) ElementsByClass(class string) []*Node {
	class = strings.TrimSpace(class)
	if class == "" {
		return nil
	}
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Box != nil && c.Box.HasClass(class) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// ElementByID searches the whole stage tree.
func (s *Stage) ElementByID(id string) *Node { return s.root.ElementByID(id) }

// ElementsByClass searches the whole stage tree.
func (s *Stage) ElementsByClass(class string) []*Node { return s.root.ElementsByClass(class) }
