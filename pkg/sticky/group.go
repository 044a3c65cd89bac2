package sticky

import (
	"slices"

	"stickyfill/pkg/html"
)

// Group is the sticky state of one scroll container.
type Group struct {
	container *html.Node
	elements  []*Element
	// index of the targeted element, -1 while undefined
	index      int
	lastScroll float64
	// unsubscribe removes the scroll listener; nil while not listening
	unsubscribe func()
}

func newGroup(container *html.Node) *Group {
	return &Group{container: container, index: -1}
}

func (g *Group) current() *Element {
	if g == nil || g.index < 0 || g.index >= len(g.elements) {
		return nil
	}
	return g.elements[g.index]
}

func (g *Group) next() *Element {
	if g.index+1 < len(g.elements) {
		return g.elements[g.index+1]
	}
	return nil
}

func (g *Group) remove(el *Element) bool {
	i := slices.Index(g.elements, el)
	if i < 0 {
		return false
	}
	g.elements = slices.Delete(g.elements, i, i+1)
	if len(g.elements) == 0 {
		g.index = -1
	} else if g.index >= len(g.elements) {
		g.index = len(g.elements) - 1
	}
	return true
}

// ElementState is a snapshot of one element of a group.
type ElementState struct {
	Content  *html.Node
	Active   bool
	Offset   float64
	Reserved float64
}

// GroupState is a read-only snapshot of a group.
type GroupState struct {
	Container  *html.Node
	Index      int
	LastScroll float64
	Listening  bool
	Elements   []ElementState
}

// Active returns the index of the element carrying the marker, or -1.
func (s GroupState) Active() int {
	for i, e := range s.Elements {
		if e.Active {
			return i
		}
	}
	return -1
}

func (g *Group) state() GroupState {
	s := GroupState{
		Container:  g.container,
		Index:      g.index,
		LastScroll: g.lastScroll,
		Listening:  g.unsubscribe != nil,
		Elements:   make([]ElementState, len(g.elements)),
	}
	for i, el := range g.elements {
		s.Elements[i] = ElementState{
			Content:  el.Content,
			Active:   el.active,
			Offset:   el.offset,
			Reserved: el.height,
		}
	}
	return s
}
