package js

import (
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
	"stickyfill/pkg/layout"
)

// domContext holds shared state for DOM bindings within a single execution.
// It maintains a node-to-proxy cache so the same JS object is returned for
// the same underlying *html.Node (needed for === identity checks).
type domContext struct {
	engine *Engine
	doc    *html.Document
	cache  map[*html.Node]*goja.Object
	nodes  map[*goja.Object]*html.Node
}

func newDOMContext(engine *Engine, doc *html.Document) *domContext {
	return &domContext{
		engine: engine,
		doc:    doc,
		cache:  make(map[*html.Node]*goja.Object),
		nodes:  make(map[*goja.Object]*html.Node),
	}
}

// registerDocument sets up the global `document` object on the goja runtime.
func registerDocument(engine *Engine, doc *html.Document) *domContext {
	ctx := newDOMContext(engine, doc)
	vm := engine.vm

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		node := doc.Root.FindByID(call.Arguments[0].String())
		if node == nil {
			return goja.Null()
		}
		return ctx.elementProxy(node)
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(doc.Root.ElementsByTagName(call.Arguments[0].String()))
	})
	docObj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(doc.Root.ElementsByClassName(call.Arguments[0].String()))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.elementProxy(html.NewElement(call.Arguments[0].String()))
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return ctx.elementProxy(&html.Node{Type: html.TextNode, Text: call.Argument(0).String()})
	})

	vm.Set("document", docObj)
	return ctx
}

// elementArray creates a JS array of Element proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	items := make([]interface{}, len(nodes))
	for i, n := range nodes {
		items[i] = ctx.elementProxy(n)
	}
	return ctx.engine.vm.NewArray(items...)
}

// elementProxy creates (or retrieves from cache) a JS DynamicObject wrapping an html.Node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.engine.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	ctx.nodes[v] = node
	return v
}

// unwrapNode extracts the *html.Node behind an element proxy.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	if node, ok := ctx.nodes[obj]; ok {
		return node
	}
	for node, cached := range ctx.cache {
		if cached.SameAs(obj) {
			return node
		}
	}
	return nil
}

// elementAccessor implements goja.DynamicObject to intercept property access
// on DOM element proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"tagName", "nodeName", "nodeType", "id", "className", "textContent",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "parentElement", "style",
	"appendChild", "removeChild", "insertBefore",
	"getBoundingClientRect", "scrollTop", "scrollHeight", "clientHeight",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.engine.vm

	switch key {
	case "nodeType":
		if e.node.Type == html.TextNode {
			return vm.ToValue(3) // Node.TEXT_NODE
		}
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "nodeName":
		if e.node.Type == html.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "tagName":
		if e.node.Type == html.TextNode {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "id":
		id, _ := e.node.GetAttribute("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := e.node.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(e.node.TextContent())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			val, ok := e.node.GetAttribute(call.Argument(0).String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			e.node.SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(e.node.HasAttribute(call.Argument(0).String()))
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			e.node.RemoveAttribute(call.Argument(0).String())
			return goja.Undefined()
		})
	case "children":
		var elChildren []*html.Node
		for _, child := range e.node.Children {
			if child.IsElement() {
				elChildren = append(elChildren, child)
			}
		}
		return e.ctx.elementArray(elChildren)
	case "parentElement":
		if p := e.node.Parent; p.IsElement() && p.TagName != "document" {
			return e.ctx.elementProxy(p)
		}
		return goja.Null()
	case "style":
		return vm.NewDynamicObject(&styleAccessor{vm: vm, node: e.node})
	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "getBoundingClientRect":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return e.rectObject(e.ctx.engine.boundingRect(e.node))
		})
	case "scrollTop":
		return vm.ToValue(e.ctx.engine.scrolls.ScrollTop(e.node))
	case "scrollHeight":
		if g := e.ctx.engine.geometry; g != nil {
			return vm.ToValue(g.ScrollHeight(e.node))
		}
		return vm.ToValue(0)
	case "clientHeight":
		if g := e.ctx.engine.geometry; g != nil {
			return vm.ToValue(g.ViewportHeight(e.node))
		}
		return vm.ToValue(0)
	}
	return goja.Undefined()
}

func (e *elementAccessor) rectObject(r layout.ClientRect) goja.Value {
	obj := e.ctx.engine.vm.NewObject()
	obj.Set("top", r.Top)
	obj.Set("bottom", r.Bottom)
	obj.Set("left", r.Left)
	obj.Set("right", r.Right)
	obj.Set("width", r.Width)
	obj.Set("height", r.Height)
	obj.Set("x", r.Left)
	obj.Set("y", r.Top)
	return obj
}

func (e *Engine) boundingRect(node *html.Node) layout.ClientRect {
	if e.geometry == nil {
		return layout.ClientRect{}
	}
	return e.geometry.BoundingRect(node)
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.node.Children = nil
		if text := val.String(); text != "" {
			e.node.AppendText(text)
		}
		return true
	case "className":
		e.node.SetAttribute("class", val.String())
		return true
	case "id":
		e.node.SetAttribute("id", val.String())
		return true
	case "scrollTop":
		// listeners run synchronously, like a scroll event
		e.ctx.engine.scrolls.Controller(e.node).ScrollTo(val.ToFloat())
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}

// styleAccessor maps JS camelCase property access to CSS kebab-case on the
// node's inline style attribute, keeping declaration order.
type styleAccessor struct {
	vm   *goja.Runtime
	node *html.Node
}

func (s *styleAccessor) Get(key string) goja.Value {
	if key == "cssText" {
		v, _ := s.node.GetAttribute("style")
		return s.vm.ToValue(v)
	}
	v, _ := css.Property(s.node, camelToKebab(key))
	return s.vm.ToValue(v)
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	prop := camelToKebab(key)
	if v := val.String(); v != "" {
		css.SetProperty(s.node, prop, v)
	} else {
		css.RemoveProperty(s.node, prop)
	}
	return true
}

func (s *styleAccessor) Has(key string) bool {
	return true
}

func (s *styleAccessor) Delete(key string) bool {
	css.RemoveProperty(s.node, camelToKebab(key))
	return true
}

func (s *styleAccessor) Keys() []string {
	decls := css.NodeStyle(s.node).Declarations()
	keys := make([]string, len(decls))
	for i, d := range decls {
		keys[i] = d.Property
	}
	return keys
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
