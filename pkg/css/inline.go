package css

import (
	"strings"

	"stickyfill/pkg/html"
)

// Declaration is a single `property: value` pair from a style attribute.
type Declaration struct {
	Property string
	Value    string
}

// InlineStyle is the ordered declaration list of a style attribute. Order is
// kept so that writing the attribute back is deterministic.
type InlineStyle struct {
	decls []Declaration
}

// ParseInlineStyle parses a style attribute. Later duplicates replace earlier
// ones in place.
func ParseInlineStyle(attr string) *InlineStyle {
	s := &InlineStyle{}
	for _, decl := range strings.Split(attr, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		s.Set(strings.ToLower(strings.TrimSpace(prop)), strings.TrimSpace(val))
	}
	return s
}

func (s *InlineStyle) Get(property string) (string, bool) {
	for _, d := range s.decls {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

func (s *InlineStyle) Set(property, value string) {
	for i := range s.decls {
		if s.decls[i].Property == property {
			s.decls[i].Value = value
			return
		}
	}
	s.decls = append(s.decls, Declaration{Property: property, Value: value})
}

func (s *InlineStyle) Remove(property string) bool {
	for i, d := range s.decls {
		if d.Property == property {
			s.decls = append(s.decls[:i], s.decls[i+1:]...)
			return true
		}
	}
	return false
}

func (s *InlineStyle) Declarations() []Declaration {
	return append([]Declaration(nil), s.decls...)
}

func (s *InlineStyle) Len() int {
	return len(s.decls)
}

// String serializes as "a: 1; b: 2".
func (s *InlineStyle) String() string {
	parts := make([]string, len(s.decls))
	for i, d := range s.decls {
		parts[i] = d.Property + ": " + d.Value
	}
	return strings.Join(parts, "; ")
}

// NodeStyle reads the inline style of node.
func NodeStyle(node *html.Node) *InlineStyle {
	attr, _ := node.GetAttribute("style")
	return ParseInlineStyle(attr)
}

// Property returns one inline declaration of node.
func Property(node *html.Node, property string) (string, bool) {
	return NodeStyle(node).Get(property)
}

// SetProperty writes one inline declaration on node, keeping the others.
func SetProperty(node *html.Node, property, value string) {
	s := NodeStyle(node)
	s.Set(property, value)
	writeStyle(node, s)
}

// RemoveProperty drops one inline declaration from node. The style attribute
// itself is removed once it is empty.
func RemoveProperty(node *html.Node, property string) {
	s := NodeStyle(node)
	if s.Remove(property) {
		writeStyle(node, s)
	}
}

func writeStyle(node *html.Node, s *InlineStyle) {
	if s.Len() == 0 {
		node.RemoveAttribute("style")
		return
	}
	node.SetAttribute("style", s.String())
}
