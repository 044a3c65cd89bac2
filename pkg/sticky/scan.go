package sticky

import (
	"sort"

	"stickyfill/pkg/html"
	"stickyfill/pkg/layout"
)

// Probe measures nodes relative to their scroll container viewport.
type Probe interface {
	BoundingRect(node *html.Node) layout.ClientRect
}

// scan orders the group by slot top and picks the element that should be
// targeted: the last one whose slot top has reached the viewport top, or the
// first one when none has. Active elements other than the target are
// released, so a header pinned over its section stays pinned.
func scan(g *Group, probe Probe) {
	if len(g.elements) == 0 {
		g.index = -1
		return
	}
	slots := make(map[*Element]layout.ClientRect, len(g.elements))
	for _, el := range g.elements {
		slots[el] = probe.BoundingRect(el.Wrapper)
	}
	sort.SliceStable(g.elements, func(i, j int) bool {
		return slots[g.elements[i]].Top < slots[g.elements[j]].Top
	})

	target := 0
	for i, el := range g.elements {
		if slots[el].Top > 0 {
			break
		}
		target = i
	}
	for i, el := range g.elements {
		if el.active && i != target {
			el.deactivate()
		}
	}
	g.index = target
}
