package layout

import (
	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
)

// Find returns the box generated for node, or nil.
func (b *Box) Find(node *html.Node) *Box {
	if b.Node == node {
		return b
	}
	for _, c := range b.Children {
		if found := c.Find(node); found != nil {
			return found
		}
	}
	return nil
}

// Container returns the nearest scrolling ancestor box.
func (b *Box) Container() *Box {
	for p := b.Parent; p != nil; p = p.Parent {
		if p.Scroller {
			return p
		}
	}
	return nil
}

// VisualY is the top of the box as painted: document y plus every shift on
// the way up, minus the scroll offset of every enclosing scroller.
func (b *Box) VisualY() float64 {
	y := b.Y
	for p := b; p != nil; p = p.Parent {
		y += p.Shift
		if p != b && p.Scroller {
			y -= p.ScrollTop
		}
	}
	return y
}

// Viewport returns the painted top and height of the visible area of a
// scroller's content. The document root uses viewportHeight.
func (b *Box) Viewport(viewportHeight float64) (top, height float64) {
	top = b.VisualY() + b.Border.Top
	if b.Parent == nil {
		return top, viewportHeight
	}
	return top, b.Height - b.Border.Top - b.Border.Bottom
}

// Walk visits b and its descendants in paint order. Pinned subtrees come
// after the whole flow of their scroll container.
func (b *Box) Walk(fn func(*Box)) {
	var pinned []*Box
	b.walkFlow(fn, &pinned)
	for _, p := range pinned {
		p.Walk(fn)
	}
}

func (b *Box) walkFlow(fn func(*Box), pinned *[]*Box) {
	fn(b)
	for _, c := range b.Children {
		switch {
		case c.Pinned:
			*pinned = append(*pinned, c)
		case c.Scroller:
			c.Walk(fn)
		default:
			c.walkFlow(fn, pinned)
		}
	}
}

func (e *Engine) find(node *html.Node) *Box {
	if node == nil {
		return nil
	}
	root := node.Root()
	if root.TagName != "document" {
		return nil
	}
	return e.Layout(root).Find(node)
}

// BoundingRect returns the rectangle of node relative to the viewport top
// of its nearest scroll container, the document counting as one. Detached
// and undisplayed nodes give a zero rect.
func (e *Engine) BoundingRect(node *html.Node) ClientRect {
	box := e.find(node)
	if box == nil || box.Parent == nil {
		return ClientRect{}
	}
	vtop, _ := box.Container().Viewport(e.Height)
	top := box.VisualY() - vtop
	return ClientRect{
		Top:    top,
		Bottom: top + box.Height,
		Left:   box.X,
		Right:  box.X + box.Width,
		Width:  box.Width,
		Height: box.Height,
	}
}

// ScrollHeight returns the scrollable content height of container.
func (e *Engine) ScrollHeight(container *html.Node) float64 {
	if box := e.find(container); box != nil {
		return box.ScrollHeight
	}
	return 0
}

// ViewportHeight returns the visible height of container.
func (e *Engine) ViewportHeight(container *html.Node) float64 {
	if box := e.find(container); box != nil {
		_, h := box.Viewport(e.Height)
		return h
	}
	return 0
}

// MaxScroll returns the largest useful scroll offset of container.
func (e *Engine) MaxScroll(container *html.Node) float64 {
	box := e.find(container)
	if box == nil {
		return 0
	}
	_, h := box.Viewport(e.Height)
	if m := box.ScrollHeight - h; m > 0 {
		return m
	}
	return 0
}

// IsScrollContainer reports whether node's computed overflow scrolls.
func (e *Engine) IsScrollContainer(node *html.Node) bool {
	if !node.IsElement() {
		return false
	}
	return css.Compute(node, e.Sheets, e.Features).IsScrollable()
}

// ScrollContainer returns the nearest ancestor of node that scrolls, or nil.
// The document itself is not considered.
func (e *Engine) ScrollContainer(node *html.Node) *html.Node {
	if node == nil {
		return nil
	}
	return node.Closest(e.IsScrollContainer)
}

// Boxes lays out doc and returns its root box.
func (e *Engine) Boxes(doc *html.Document) *Box {
	return e.Layout(doc.Root)
}
