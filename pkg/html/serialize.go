package html

import (
	"sort"
	"strings"
)

// Serialize returns the markup of n's children (innerHTML).
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		writeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the markup of n including its own tags (outerHTML).
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	if n.Type == TextNode {
		sb.WriteString(textEscaper.Replace(n.Text))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// attribute order is sorted so output is stable across runs
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(attrEscaper.Replace(n.Attributes[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if isVoidElement(n.TagName) {
		return
	}
	for _, child := range n.Children {
		writeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}
