package layout

import (
	"strings"

	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
)

const DefaultLineHeight = 20

// NewEngine creates a layout engine for a viewport of the given size. The
// engine starts without native sticky support.
func NewEngine(width, height float64) *Engine {
	return &Engine{
		Width:      width,
		Height:     height,
		LineHeight: DefaultLineHeight,
	}
}

// Attach makes the document's stylesheets part of every computed style.
func (e *Engine) Attach(doc *html.Document) {
	e.Sheets = css.ParseStylesheets(doc)
}

// Layout lays out the tree below root in block flow. The root acts as the
// document viewport: it scrolls like any other container.
func (e *Engine) Layout(root *html.Node) *Box {
	box := &Box{
		Node:     root,
		Style:    css.NewStyle(),
		Width:    e.Width,
		Scroller: true,
	}
	box.ScrollTop = e.scrollTop(root)
	e.layoutChildren(box, box)
	box.Height = box.ScrollHeight
	e.applyNativeSticky(box, box)
	return box
}

func (e *Engine) scrollTop(node *html.Node) float64 {
	if e.Scroll == nil {
		return 0
	}
	return e.Scroll.ScrollTop(node)
}

func (e *Engine) lineHeight() float64 {
	if e.LineHeight <= 0 {
		return DefaultLineHeight
	}
	return e.LineHeight
}

// viewportTop returns the document y of the visible top edge of container.
func viewportTop(container *Box) float64 {
	return container.Y + container.Border.Top + container.ScrollTop
}

func (e *Engine) layoutBlock(node *html.Node, parent, container *Box, x, y, width float64) *Box {
	style := css.Compute(node, e.Sheets, e.Features)
	if style.GetDisplay() == css.DisplayNone {
		return nil
	}
	box := &Box{
		Node:    node,
		Style:   style,
		Parent:  parent,
		Margin:  style.GetMargin(),
		Padding: style.GetPadding(),
		Border:  style.GetBorderWidth(),
		Pinned:  node.HasAttribute(PinnedAttribute),
		Shift:   style.TranslateY(),
	}
	if box.Pinned {
		// out of flow, at the top of the container viewport
		y = viewportTop(container)
	}
	box.X = x + box.Margin.Left
	box.Y = y + box.Margin.Top
	box.Width = width - box.Margin.Left - box.Margin.Right
	if w, ok := style.GetLength("width"); ok {
		box.Width = w + box.Padding.Left + box.Padding.Right + box.Border.Left + box.Border.Right
	}
	if style.IsScrollable() {
		box.Scroller = true
		box.ScrollTop = e.scrollTop(node)
		container = box
	}

	content := e.layoutChildren(box, container)
	if h, ok := style.GetLength("height"); ok {
		content = h
	}
	box.Height = box.Border.Top + box.Padding.Top + content + box.Padding.Bottom + box.Border.Bottom
	e.applyNativeSticky(box, container)
	return box
}

// layoutChildren stacks the children of box and returns the in-flow content
// height. ScrollHeight is set as a side effect.
func (e *Engine) layoutChildren(box, container *Box) float64 {
	x := box.X + box.Border.Left + box.Padding.Left
	width := box.Width - box.Border.Left - box.Border.Right - box.Padding.Left - box.Padding.Right
	top := box.Y + box.Border.Top + box.Padding.Top
	cy := top

	for _, child := range box.Node.Children {
		switch child.Type {
		case html.TextNode:
			text := strings.TrimSpace(child.Text)
			if text == "" {
				continue
			}
			line := &Box{
				Node:   child,
				Style:  css.NewStyle(),
				Parent: box,
				X:      x,
				Y:      cy,
				Width:  width,
				Height: e.lineHeight(),
				Text:   text,
			}
			box.Children = append(box.Children, line)
			cy += line.Height
		case html.ElementNode:
			cb := e.layoutBlock(child, box, container, x, cy, width)
			if cb == nil {
				continue
			}
			box.Children = append(box.Children, cb)
			if !cb.Pinned {
				cy = cb.Y + cb.Height + cb.Margin.Bottom
			}
		}
	}
	box.ScrollHeight = box.Padding.Top + (cy - top) + box.Padding.Bottom
	return cy - top
}

// applyNativeSticky shifts natively sticky children of box so they stay
// below the viewport top of container, the scroller box's children live in,
// without leaving box's content area.
func (e *Engine) applyNativeSticky(box, container *Box) {
	limit := box.Y + box.Height - box.Border.Bottom - box.Padding.Bottom
	if box.Scroller {
		limit = box.Y + box.Border.Top + box.ScrollHeight - box.Padding.Bottom
	}
	for _, c := range box.Children {
		if c.Pinned || c.Style.GetPosition() != css.PositionSticky {
			continue
		}
		inset, ok := c.Style.GetTop()
		if !ok {
			continue
		}
		shift := viewportTop(container) + inset - c.Y
		if room := limit - (c.Y + c.Height + c.Margin.Bottom); shift > room {
			shift = room
		}
		if shift > 0 {
			c.Shift += shift
		}
	}
}
