package sticky

import (
	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
	"stickyfill/pkg/layout"
)

const (
	// WrapperClass is the class of the element reserving the content's slot.
	WrapperClass = "sticky-container"
	// ActiveAttribute marks the pinned content. It is written, never read:
	// Element.active is the state.
	ActiveAttribute = layout.PinnedAttribute
)

// Element is one registered sticky content node and the wrapper inserted
// around it.
type Element struct {
	Content *html.Node
	Wrapper *html.Node

	group  *Group
	active bool
	offset float64
	height float64
}

// Active reports whether the content is pinned.
func (el *Element) Active() bool { return el.active }

// Offset returns the applied translation, always <= 0.
func (el *Element) Offset() float64 { return el.offset }

// Reserved returns the height held by the wrapper while pinned.
func (el *Element) Reserved() float64 { return el.height }

// activate pins the content and reserves its height in the wrapper so the
// rest of the flow does not move.
func (el *Element) activate(height float64) {
	el.active = true
	el.height = height
	el.Content.SetAttribute(ActiveAttribute, "true")
	css.SetProperty(el.Wrapper, "height", css.FormatPx(height))
}

// translate applies a vertical offset, clamped to be non-positive.
func (el *Element) translate(offset float64) {
	if offset > 0 {
		offset = 0
	}
	el.offset = offset
	css.SetProperty(el.Content, "transform", css.Translate3D(offset))
}

func (el *Element) deactivate() {
	el.active = false
	el.offset = 0
	el.height = 0
	el.Content.RemoveAttribute(ActiveAttribute)
	css.RemoveProperty(el.Content, "transform")
	css.RemoveProperty(el.Wrapper, "height")
}
