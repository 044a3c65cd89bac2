package css

import (
	"fmt"
	"sort"
	"strings"

	"stickyfill/pkg/html"
)

// Selector is a compound selector: an optional tag plus ids, classes and
// attribute presence tests, e.g. `h2.header[sticky]`. Combinators are not
// supported; rules using them are skipped by ParseStylesheet.
type Selector struct {
	Tag         string
	ID          string
	Classes     []string
	Attributes  []string
	Specificity int
}

type Rule struct {
	Selector     Selector
	Declarations *InlineStyle
	order        int
}

type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses a flat list of rules. Comments are stripped, at-rules
// and unsupported selectors are ignored.
func ParseStylesheet(src string) (*Stylesheet, error) {
	src = stripComments(src)
	sheet := &Stylesheet{}
	for {
		src = strings.TrimSpace(src)
		if src == "" {
			return sheet, nil
		}
		open := strings.IndexByte(src, '{')
		if open < 0 {
			return sheet, fmt.Errorf("expected '{' after %q", src)
		}
		prelude := strings.TrimSpace(src[:open])
		if strings.HasPrefix(prelude, "@") {
			// at-rules may nest blocks; skip to the balancing brace
			end := matchingBrace(src, open)
			if end < 0 {
				return sheet, fmt.Errorf("unterminated block %q", prelude)
			}
			src = src[end+1:]
			continue
		}
		end := strings.IndexByte(src[open:], '}')
		if end < 0 {
			return sheet, fmt.Errorf("unterminated rule %q", prelude)
		}
		body := src[open+1 : open+end]
		src = src[open+end+1:]
		decls := ParseInlineStyle(body)
		for _, raw := range strings.Split(prelude, ",") {
			sel, ok := parseSelector(strings.TrimSpace(raw))
			if !ok {
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Declarations: decls, order: len(sheet.Rules)})
		}
	}
}

func matchingBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func stripComments(src string) string {
	var sb strings.Builder
	for {
		start := strings.Index(src, "/*")
		if start < 0 {
			sb.WriteString(src)
			return sb.String()
		}
		sb.WriteString(src[:start])
		end := strings.Index(src[start+2:], "*/")
		if end < 0 {
			return sb.String()
		}
		src = src[start+2+end+2:]
	}
}

func parseSelector(s string) (Selector, bool) {
	if s == "" || strings.ContainsAny(s, " >+~:") {
		return Selector{}, false
	}
	var sel Selector
	i := 0
	readIdent := func() string {
		start := i
		for i < len(s) && s[i] != '.' && s[i] != '#' && s[i] != '[' {
			i++
		}
		return s[start:i]
	}
	if s[0] != '.' && s[0] != '#' && s[0] != '[' {
		sel.Tag = strings.ToLower(readIdent())
		if sel.Tag == "*" {
			sel.Tag = ""
		} else {
			sel.Specificity++
		}
	}
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			sel.Classes = append(sel.Classes, readIdent())
			sel.Specificity += 10
		case '#':
			i++
			sel.ID = readIdent()
			sel.Specificity += 100
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return Selector{}, false
			}
			sel.Attributes = append(sel.Attributes, strings.ToLower(s[i+1:i+end]))
			sel.Specificity += 10
			i += end + 1
		default:
			return Selector{}, false
		}
	}
	return sel, true
}

// Matches reports whether node satisfies every part of the selector.
func (sel Selector) Matches(node *html.Node) bool {
	if !node.IsElement() {
		return false
	}
	if sel.Tag != "" && sel.Tag != node.TagName {
		return false
	}
	if sel.ID != "" {
		if id, _ := node.GetAttribute("id"); id != sel.ID {
			return false
		}
	}
	for _, c := range sel.Classes {
		if !node.HasClass(c) {
			return false
		}
	}
	for _, a := range sel.Attributes {
		if !node.HasAttribute(a) {
			return false
		}
	}
	return true
}

// matchingRules returns the rules of all sheets that apply to node, lowest
// specificity first and source order within equal specificity.
func matchingRules(node *html.Node, sheets []*Stylesheet) []Rule {
	var rules []Rule
	for _, sheet := range sheets {
		for _, r := range sheet.Rules {
			if r.Selector.Matches(node) {
				rules = append(rules, r)
			}
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Selector.Specificity < rules[j].Selector.Specificity
	})
	return rules
}
