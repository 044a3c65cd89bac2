package sticky

import (
	"fmt"

	"go.uber.org/multierr"

	"stickyfill/pkg/html"
)

// Attribute marks elements that Bind registers.
const Attribute = "sticky"

// Bind registers every element of doc carrying the sticky attribute, in
// document order. The returned func deregisters them again. When one
// registration fails the ones already made are undone.
func Bind(doc *html.Document, reg *Registry) (unbind func() error, err error) {
	var bound []*html.Node
	unbind = func() error {
		var errs error
		for i := len(bound) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, reg.Unregister(bound[i]))
		}
		bound = nil
		return errs
	}
	for _, node := range doc.Root.ElementsWithAttribute(Attribute) {
		if _, err := reg.Register(node); err != nil {
			return nil, multierr.Append(fmt.Errorf("binding %s: %w", node.Describe(), err), unbind())
		}
		bound = append(bound, node)
	}
	return unbind, nil
}
