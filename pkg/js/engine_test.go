package js

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stickyfill/pkg/html"
)

func parseHTML(t *testing.T, s string) *html.Document {
	t.Helper()
	doc, err := html.Parse(s)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return doc
}

func run(t *testing.T, engine *Engine, doc *html.Document, script string) {
	t.Helper()
	doc.Scripts = append(doc.Scripts, script)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}
}

func TestGetElementById(t *testing.T) {
	doc := parseHTML(t, `<div id="foo">hello</div>`)
	run(t, New(), doc, `
		var el = document.getElementById("foo");
		if (el === null) throw new Error("element not found");
		if (el.id !== "foo") throw new Error("wrong id: " + el.id);
		if (el.tagName !== "DIV") throw new Error("wrong tagName: " + el.tagName);
		if (document.getElementById("foo") !== el) throw new Error("proxy identity lost");
		if (document.getElementById("nonexistent") !== null) throw new Error("expected null");
	`)
}

func TestCollections(t *testing.T) {
	doc := parseHTML(t, `<p class="a b">one</p><p class="a">two</p><div id="parent"><span>a</span>x<span>b</span></div>`)
	run(t, New(), doc, `
		var ps = document.getElementsByTagName("p");
		if (ps.length !== 2) throw new Error("expected 2 p tags, got: " + ps.length);
		var els = document.getElementsByClassName("a");
		if (els.length !== 2) throw new Error("expected 2 elements with class a, got: " + els.length);
		var kids = document.getElementById("parent").children;
		if (kids.length !== 2) throw new Error("expected 2 children, got: " + kids.length);
		if (kids[0].tagName !== "SPAN") throw new Error("expected SPAN, got: " + kids[0].tagName);
		if (kids[1].parentElement.id !== "parent") throw new Error("parentElement broken");
		if (document.getElementById("parent").parentElement !== null) throw new Error("document leaked as element");
	`)
}

func TestTextContentAndAttributes(t *testing.T) {
	doc := parseHTML(t, `<p id="target" class="old" data-x="hello">original</p>`)
	run(t, New(), doc, `
		var el = document.getElementById("target");
		if (el.getAttribute("data-x") !== "hello") throw new Error("getAttribute");
		if (el.getAttribute("missing") !== null) throw new Error("missing attribute should be null");
		el.textContent = "changed";
		el.className = "new-class";
		el.setAttribute("data-value", "42");
		el.removeAttribute("data-x");
		if (el.hasAttribute("data-x")) throw new Error("removeAttribute");
	`)

	node := doc.Root.FindByID("target")
	if got := node.TextContent(); got != "changed" {
		t.Errorf("textContent = %q, want %q", got, "changed")
	}
	if cls, _ := node.GetAttribute("class"); cls != "new-class" {
		t.Errorf("class = %q", cls)
	}
	if v, _ := node.GetAttribute("data-value"); v != "42" {
		t.Errorf("data-value = %q, want %q", v, "42")
	}
}

func TestStyleKeepsDeclarationOrder(t *testing.T) {
	doc := parseHTML(t, `<div id="box" style="color: red">box</div>`)
	run(t, New(), doc, `
		var el = document.getElementById("box");
		el.style.backgroundColor = "yellow";
		el.style.color = "blue";
		el.style.fontSize = "20px";
		el.style.fontSize = "";
		if (el.style.color !== "blue") throw new Error("read back: " + el.style.color);
		if (el.style.cssText !== "color: blue; background-color: yellow") throw new Error("cssText: " + el.style.cssText);
	`)
	style, _ := doc.Root.FindByID("box").GetAttribute("style")
	if style != "color: blue; background-color: yellow" {
		t.Errorf("style = %q", style)
	}
}

func TestMutation(t *testing.T) {
	doc := parseHTML(t, `<div id="list"><p id="last">z</p></div>`)
	run(t, New(), doc, `
		var list = document.getElementById("list");
		var first = document.createElement("P");
		first.id = "first";
		list.insertBefore(first, document.getElementById("last"));
		var tail = document.createElement("p");
		list.appendChild(tail);
		list.removeChild(tail);
		if (list.children.length !== 2) throw new Error("children: " + list.children.length);
		if (list.children[0].id !== "first") throw new Error("insertBefore misplaced");
		var threw = false;
		try { list.removeChild(tail); } catch (e) { threw = true; }
		if (!threw) throw new Error("removing a detached node should throw");
	`)
}

func TestScriptError(t *testing.T) {
	doc := parseHTML(t, `<p>text</p>`)
	doc.Scripts = append(doc.Scripts, `throw new Error("test error");`)
	if err := New().Execute(doc); err == nil {
		t.Fatal("expected error from script")
	}
}

func TestConsoleGoesToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	doc := parseHTML(t, `<p>text</p>`)
	run(t, New(WithLogger(zap.New(core))), doc, `
		console.log("hello", 42);
		console.warn("careful");
		console.error("broken");
	`)
	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Message != "hello 42" || entries[0].LoggerName != "console" {
		t.Errorf("entry 0 = %+v", entries[0].Entry)
	}
	if entries[1].Level != zapcore.WarnLevel || entries[2].Level != zapcore.ErrorLevel {
		t.Errorf("levels = %v, %v", entries[1].Level, entries[2].Level)
	}
}

func TestCamelToKebab(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"color", "color"},
		{"backgroundColor", "background-color"},
		{"borderTopWidth", "border-top-width"},
		{"cssFloat", "float"},
	}
	for _, tt := range tests {
		got := camelToKebab(tt.input)
		if got != tt.want {
			t.Errorf("camelToKebab(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
