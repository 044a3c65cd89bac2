package css

import (
	"slices"

	"stickyfill/pkg/html"
)

// Features describes what the hosting platform's style engine understands.
// StickyValues lists the `position` keywords that compute natively; the host
// itself supports none, which is the zero value.
type Features struct {
	StickyValues []string
}

// SupportsPosition reports whether the position keyword survives computation.
func (f Features) SupportsPosition(value string) bool {
	switch PositionType(value) {
	case PositionStatic, PositionRelative, PositionAbsolute, PositionFixed:
		return true
	}
	return slices.Contains(f.StickyValues, value)
}

// IsNativeSticky reports whether value is one of the platform's sticky spellings.
func (f Features) IsNativeSticky(value string) bool {
	return slices.Contains(f.StickyValues, value)
}

// applyUserAgentStyles applies default browser styles based on element type
func applyUserAgentStyles(node *html.Node, style *Style) {
	switch node.TagName {
	case "head", "title", "meta", "link", "script", "style", "template":
		style.Set("display", "none")
	}
}

// Compute returns the computed style of node: user agent defaults, then the
// document's rules by specificity, then the inline style attribute. A
// position keyword the platform does not support computes to static, the
// same as an invalid declaration.
func Compute(node *html.Node, sheets []*Stylesheet, features Features) *Style {
	style := NewStyle()
	if !node.IsElement() {
		return style
	}
	applyUserAgentStyles(node, style)

	for _, rule := range matchingRules(node, sheets) {
		for _, d := range rule.Declarations.decls {
			expandShorthand(style, d.Property, d.Value)
		}
	}
	for _, d := range NodeStyle(node).decls {
		expandShorthand(style, d.Property, d.Value)
	}

	if pos, ok := style.Get("position"); ok && !features.SupportsPosition(pos) {
		style.Set("position", string(PositionStatic))
	}
	return style
}

// ParseStylesheets parses every stylesheet of the document, skipping the
// ones that fail.
func ParseStylesheets(doc *html.Document) []*Stylesheet {
	sheets := make([]*Stylesheet, 0, len(doc.Stylesheets))
	for _, src := range doc.Stylesheets {
		if sheet, err := ParseStylesheet(src); err == nil {
			sheets = append(sheets, sheet)
		}
	}
	return sheets
}
