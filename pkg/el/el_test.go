package el

import (
	"testing"

	"github.com/retree-dev/retree/pkg/desc"
)

func TestE(t *testing.T) {
	d := E("div",
		Class("box"),
		Key("k1"),
		Attr("id", "main"),
		Style("color", "red"),
		Data("row", "3"),
		E("span", Text("hi")),
		"trailing",
	)

	if d.Kind != desc.KindElement || d.Tag != "div" {
		t.Fatalf("unexpected element: %+v", d)
	}
	if d.Class != "box" || d.Key != "k1" {
		t.Errorf("class/key not applied: %q %q", d.Class, d.Key)
	}
	if d.Attrs["id"] != "main" {
		t.Errorf("attr not applied: %v", d.Attrs)
	}
	if d.Styles["color"] != "red" {
		t.Errorf("style not applied: %v", d.Styles)
	}
	if d.Dataset["row"] != "3" {
		t.Errorf("data not applied: %v", d.Dataset)
	}
	if len(d.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(d.Children))
	}
	if d.Children[1].Kind != desc.KindText || d.Children[1].Text != "trailing" {
		t.Errorf("string arg should become a text child, got %+v", d.Children[1])
	}
}

func TestENilChildSkipped(t *testing.T) {
	d := E("div", nil, If(false, Span()), Text("x"))
	if len(d.Children) != 1 {
		t.Errorf("nil children should be skipped, got %d children", len(d.Children))
	}
}

func TestCustomAttrAndListener(t *testing.T) {
	d := E("x-widget",
		CustomAttr("shadow", "open"),
		CustomOn("toggle", func(event any) {}),
	)
	if d.CustomAttrs["shadow"] != "open" {
		t.Errorf("custom attr not applied: %v", d.CustomAttrs)
	}
	if _, ok := d.CustomListeners["toggle"]; !ok {
		t.Errorf("custom listener not applied: %v", d.CustomListeners)
	}
	if len(d.Attrs) != 0 || len(d.Listeners) != 0 {
		t.Error("custom entries must not leak into the standard maps")
	}
}

func TestC(t *testing.T) {
	d := C("app", map[string]any{"n": 1}, Key("root"))
	if d.Kind != desc.KindComponent || d.Component != "app" {
		t.Fatalf("unexpected component: %+v", d)
	}
	if d.Props["n"] != 1 || d.Key != "root" {
		t.Errorf("props/key not applied: %v %q", d.Props, d.Key)
	}
	if d.Root {
		t.Error("plain components are not tree boundaries")
	}
	if !Root("app").Root {
		t.Error("Root must mark the description as a tree boundary")
	}
}

func TestDescribe(t *testing.T) {
	if Describe(nil) != nil {
		t.Error("nil template renders nothing")
	}
	if Describe(false) != nil {
		t.Error("false template renders nothing")
	}
	if d := Describe("plain"); d == nil || d.Kind != desc.KindText || d.Text != "plain" {
		t.Errorf("string template should normalize to text, got %+v", d)
	}
	src := Div()
	if Describe(src) != src {
		t.Error("descriptions pass through unchanged")
	}
}

func TestRange(t *testing.T) {
	items := Range([]string{"a", "b"}, func(item string, index int) *desc.Desc {
		return Li(Key(item), Text(item))
	})
	if len(items) != 2 || items[0].Key != "a" || items[1].Key != "b" {
		t.Errorf("unexpected range result: %+v", items)
	}
}
