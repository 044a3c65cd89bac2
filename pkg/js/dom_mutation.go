package js

import (
	"github.com/dop251/goja"

	"stickyfill/pkg/html"
)

// appendChildFn returns a JS function that implements node.appendChild(child).
func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	vm := e.ctx.engine.vm
	return func(call goja.FunctionCall) goja.Value {
		child := e.ctx.unwrapNode(call.Argument(0))
		if child == nil {
			panic(vm.NewTypeError("Failed to execute 'appendChild': parameter is not a Node"))
		}
		if child.Contains(e.node) {
			panic(vm.NewTypeError("Failed to execute 'appendChild': the new child contains the parent"))
		}
		e.node.AddChild(child)
		return e.ctx.elementProxy(child)
	}
}

// removeChildFn returns a JS function that implements node.removeChild(child).
func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	vm := e.ctx.engine.vm
	return func(call goja.FunctionCall) goja.Value {
		child := e.ctx.unwrapNode(call.Argument(0))
		if child == nil {
			panic(vm.NewTypeError("Failed to execute 'removeChild': parameter is not a Node"))
		}
		removed := e.node.RemoveChild(child)
		if removed == nil {
			panic(vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		return e.ctx.elementProxy(removed)
	}
}

// insertBeforeFn returns a JS function that implements node.insertBefore(newNode, refNode).
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	vm := e.ctx.engine.vm
	return func(call goja.FunctionCall) goja.Value {
		newChild := e.ctx.unwrapNode(call.Argument(0))
		if newChild == nil {
			panic(vm.NewTypeError("Failed to execute 'insertBefore': parameter 1 is not a Node"))
		}
		var refChild *html.Node
		if ref := call.Argument(1); !goja.IsNull(ref) && !goja.IsUndefined(ref) {
			refChild = e.ctx.unwrapNode(ref)
		}
		e.node.InsertBefore(newChild, refChild)
		return e.ctx.elementProxy(newChild)
	}
}
