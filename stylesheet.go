package canopy

import (
	"fmt"
	"sort"
	"strings"
)

// Selector is a compound selector: an optional tag, an optional #id and any
// number of .classes, all of which must match. "*" matches any tag.
type Selector struct {
	Tag     string
	ID      string
	Classes []string
}

// Specificity orders selectors the CSS way: ids, then classes, then tags.
func (s Selector) Specificity() int {
	spec := len(s.Classes) * 10
	if s.ID != "" {
		spec += 100
	}
	if s.Tag != "" && s.Tag != "*" {
		spec++
	}
	return spec
}

// Matches reports whether an element with the given tag, id and class list
// satisfies every part of the selector.
func (s Selector) Matches(tag, id string, classes []string) bool {
	if s.Tag != "" && s.Tag != "*" && !strings.EqualFold(s.Tag, tag) {
		return false
	}
	if s.ID != "" && s.ID != id {
		return false
	}
	for _, want := range s.Classes {
		found := false
		for _, have := range classes {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s Selector) String() string {
	var b strings.Builder
	b.WriteString(s.Tag)
	if s.ID != "" {
		b.WriteString("#" + s.ID)
	}
	for _, c := range s.Classes {
		b.WriteString("." + c)
	}
	return b.String()
}

// ParseSelector parses a compound selector such as "div#main.list.dark".
// Combinators are not supported.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("canopy: empty selector")
	}
	if strings.ContainsAny(s, " >+~[:") {
		return Selector{}, fmt.Errorf("canopy: unsupported selector %q", s)
	}
	var sel Selector
	i := strings.IndexAny(s, "#.")
	if i < 0 {
		sel.Tag = strings.ToLower(s)
		return sel, nil
	}
	sel.Tag = strings.ToLower(s[:i])
	rest := s[i:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, "#.")
		if end < 0 {
			end = len(rest)
		}
		part := rest[:end]
		rest = rest[end:]
		if part == "" {
			return Selector{}, fmt.Errorf("canopy: malformed selector %q", s)
		}
		if kind == '#' {
			if sel.ID != "" {
				return Selector{}, fmt.Errorf("canopy: selector %q has two ids", s)
			}
			sel.ID = part
		} else {
			sel.Classes = append(sel.Classes, part)
		}
	}
	return sel, nil
}

// Rule is one stylesheet rule: a selector list sharing declarations.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
	order        int
}

// StyleSheet is an ordered list of rules. Later rules win over earlier ones
// of equal specificity. A StyleSheet must not be modified while a Stage
// using it is resolving styles.
type StyleSheet struct {
	Rules []Rule
}

// ParseStyleSheet parses "selector, selector { prop: value; ... }" rules.
// Comments are stripped. Rules with an unparseable selector are skipped;
// unbalanced braces are an error.
func ParseStyleSheet(src string) (*StyleSheet, error) {
	sheet := &StyleSheet{}
	src = stripComments(src)
	for {
		src = strings.TrimSpace(src)
		if src == "" {
			return sheet, nil
		}
		open := strings.IndexByte(src, '{')
		if open < 0 {
			return nil, fmt.Errorf("canopy: parse stylesheet: missing '{' near %q", truncate(src, 32))
		}
		end := strings.IndexByte(src[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("canopy: parse stylesheet: missing '}' near %q", truncate(src, 32))
		}
		end += open
		if strings.IndexByte(src[open+1:end], '{') >= 0 {
			return nil, fmt.Errorf("canopy: parse stylesheet: nested block near %q", truncate(src, 32))
		}
		_ = sheet.Add(src[:open], src[open+1:end])
		src = src[end+1:]
	}
}

// Add appends a rule for a comma-separated selector list. Selectors that do
// not parse are dropped; an error is returned when none remain.
func (s *StyleSheet) Add(selectors, declarations string) error {
	var sels []Selector
	var firstErr error
	for _, raw := range strings.Split(selectors, ",") {
		sel, err := ParseSelector(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sels = append(sels, sel)
	}
	if len(sels) == 0 {
		if firstErr == nil {
			firstErr = fmt.Errorf("canopy: no selectors in %q", selectors)
		}
		return firstErr
	}
	s.Rules = append(s.Rules, Rule{
		Selectors:    sels,
		Declarations: ParseDeclarations(declarations),
		order:        len(s.Rules),
	})
	return nil
}

// Match returns the declarations that apply to an element, lowest priority
// first, so applying them in order yields the cascaded result.
func (s *StyleSheet) Match(tag, id string, classes []string) []Declaration {
	if s == nil {
		return nil
	}
	type hit struct {
		spec, order int
		decls       []Declaration
	}
	var hits []hit
	for i, rule := range s.Rules {
		best := -1
		for _, sel := range rule.Selectors {
			if sel.Matches(tag, id, classes) {
				best = max(best, sel.Specificity())
			}
		}
		if best >= 0 {
			hits = append(hits, hit{spec: best, order: i, decls: rule.Declarations})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].spec != hits[j].spec {
			return hits[i].spec < hits[j].spec
		}
		return hits[i].order < hits[j].order
	})
	var out []Declaration
	for _, h := range hits {
		out = append(out, h.decls...)
	}
	return out
}

func stripComments(s string) string {
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			return s[:start]
		}
		s = s[:start] + s[start+2+end+2:]
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
