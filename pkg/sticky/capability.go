package sticky

import (
	"sync"
	"sync/atomic"

	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
)

// stickyValues are the position keywords tried, in order.
var stickyValues = []string{"sticky", "-webkit-sticky"}

// Mode is the outcome of capability detection: either a native position
// keyword or the fallback engine.
type Mode struct {
	value string
}

// Fallback means the platform has no native sticky positioning.
var Fallback = Mode{}

func Native(value string) Mode {
	return Mode{value: value}
}

func (m Mode) IsNative() bool {
	return m.value != ""
}

// Value returns the native position keyword, empty in fallback mode.
func (m Mode) Value() string {
	return m.value
}

func (m Mode) String() string {
	if m.IsNative() {
		return "native(" + m.value + ")"
	}
	return "fallback"
}

// Detect writes each sticky keyword onto probe and keeps the first one the
// style engine computes unchanged. The experimental declarations are removed
// again when none survives.
func Detect(probe *html.Node, features css.Features) Mode {
	if probe == nil {
		probe = html.NewElement("div")
	}
	for _, v := range stickyValues {
		css.SetProperty(probe, "position", v)
		css.SetProperty(probe, "top", "0px")
		if pos, _ := css.Compute(probe, nil, features).Get("position"); pos == v {
			return Native(v)
		}
	}
	css.RemoveProperty(probe, "position")
	css.RemoveProperty(probe, "top")
	return Fallback
}

// Capability runs detection at most once and hands out the memoized mode.
type Capability struct {
	features css.Features
	once     sync.Once
	mode     Mode
	detected atomic.Bool
}

// NewCapability detects lazily, on the first call to Mode.
func NewCapability(features css.Features) *Capability {
	return &Capability{features: features}
}

// FixedCapability never probes and always reports mode.
func FixedCapability(mode Mode) *Capability {
	c := &Capability{mode: mode}
	c.once.Do(func() {})
	return c
}

// Mode returns the detected mode, probing with probe the first time.
func (c *Capability) Mode(probe *html.Node) Mode {
	c.once.Do(func() {
		c.mode = Detect(probe, c.features)
		c.detected.Store(true)
	})
	return c.mode
}

// Detected reports whether a probe actually ran.
func (c *Capability) Detected() bool {
	return c.detected.Load()
}
