package js

import (
	"github.com/dop251/goja"

	"stickyfill/pkg/sticky"
)

// registerSticky sets up the global `sticky` object:
//
//	var off = sticky.register(el); ... off();
//	sticky.mode // "fallback" or "native(sticky)"
func registerSticky(ctx *domContext, reg *sticky.Registry) {
	vm := ctx.engine.vm
	obj := vm.NewObject()
	obj.Set("register", func(call goja.FunctionCall) goja.Value {
		node := ctx.unwrapNode(call.Argument(0))
		if node == nil {
			panic(vm.NewTypeError("Failed to execute 'register' on 'sticky': parameter 1 is not an Element"))
		}
		dereg, err := reg.Register(node)
		if err != nil {
			ctx.engine.throw(err)
		}
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			dereg()
			return goja.Undefined()
		})
	})
	obj.DefineAccessorProperty("mode", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(reg.Mode().String())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	vm.Set("sticky", obj)
}
