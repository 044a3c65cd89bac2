package sticky

import "stickyfill/pkg/layout"

// action tells what a positioning tick did.
type action int

const (
	actionNone action = iota
	actionHandoffDown
	actionHandoffUp
	actionRelease
	actionActivate
	actionPush
	actionPull
)

func (a action) String() string {
	switch a {
	case actionHandoffDown:
		return "handoff-down"
	case actionHandoffUp:
		return "handoff-up"
	case actionRelease:
		return "release"
	case actionActivate:
		return "activate"
	case actionPush:
		return "push"
	case actionPull:
		return "pull"
	}
	return "none"
}

func touching(first, second layout.ClientRect) bool {
	return first.Bottom >= second.Top
}

// tick advances the group for a scroll offset. The element list is read
// from g on every call, so a group that shrank or emptied since the tick was
// scheduled is handled here.
func tick(g *Group, probe Probe, scrollTop float64) action {
	cur := g.current()
	if cur == nil {
		return actionNone
	}
	down := scrollTop > g.lastScroll
	g.lastScroll = scrollTop

	content := probe.BoundingRect(cur.Content)
	slot := probe.BoundingRect(cur.Wrapper)

	if down && cur.active && content.Bottom <= 0 && g.next() != nil {
		cur.deactivate()
		g.index++
		settle(g, probe, down)
		return actionHandoffDown
	}

	// Going up, the section above takes over once this slot is back in
	// view. A target that was never activated hands back the same way.
	if !down && slot.Top > 0 && (cur.active || g.index > 0) {
		cur.deactivate()
		if g.index == 0 {
			return actionRelease
		}
		g.index--
		prev := g.elements[g.index]
		h := probe.BoundingRect(prev.Content).Height
		prev.activate(h)
		prev.translate(-h)
		return actionHandoffUp
	}

	return settle(g, probe, down)
}

// settle runs activation, push and pull for the targeted element. Only the
// next element is ever compared against.
func settle(g *Group, probe Probe, down bool) action {
	cur := g.current()
	content := probe.BoundingRect(cur.Content)
	next := g.next()

	switch {
	case down && !cur.active:
		if content.Top > 0 {
			return actionNone
		}
		cur.activate(content.Height)
		offset := 0.0
		if next != nil {
			if n := probe.BoundingRect(next.Content); touching(content, n) {
				offset = n.Top - content.Bottom
			}
		}
		cur.translate(min(offset, 0))
		return actionActivate

	case down && cur.active && next != nil:
		n := probe.BoundingRect(next.Content)
		if touching(content, n) {
			cur.translate(cur.offset - (content.Bottom - n.Top))
			return actionPush
		}

	case !down && cur.active && next != nil && content.Top < 0:
		n := probe.BoundingRect(next.Content)
		cur.translate(min(cur.offset-(content.Bottom-n.Top), 0))
		return actionPull
	}
	return actionNone
}
