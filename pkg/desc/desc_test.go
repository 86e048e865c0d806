package desc

import "testing"

func elementDesc(tag, key string) *Desc {
	return &Desc{Kind: KindElement, Tag: tag, Key: key}
}

func TestCompatible(t *testing.T) {
	cases := []struct {
		name string
		a, b *Desc
		want bool
	}{
		{"same element", elementDesc("div", ""), elementDesc("div", ""), true},
		{"different tag", elementDesc("div", ""), elementDesc("span", ""), false},
		{"different key", elementDesc("div", "a"), elementDesc("div", "b"), false},
		{"element vs text", elementDesc("div", ""), &Desc{Kind: KindText, Text: "x"}, false},
		{"same text", &Desc{Kind: KindText, Text: "x"}, &Desc{Kind: KindText, Text: "x"}, true},
		{"different text", &Desc{Kind: KindText, Text: "x"}, &Desc{Kind: KindText, Text: "y"}, false},
		{
			"same component type",
			&Desc{Kind: KindComponent, Component: "app"},
			&Desc{Kind: KindComponent, Component: "app"},
			true,
		},
		{
			"different component type",
			&Desc{Kind: KindComponent, Component: "app"},
			&Desc{Kind: KindComponent, Component: "nav"},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Compatible(tc.b); got != tc.want {
				t.Errorf("Compatible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEqualIgnoresListenerWrapper(t *testing.T) {
	handler := func(event any) {}

	a := elementDesc("button", "")
	a.Listeners = map[string]Listener{"click": Bound(handler, func(event any) { handler(event) })}
	b := elementDesc("button", "")
	b.Listeners = map[string]Listener{"click": Bound(handler, func(event any) { handler(event) })}

	if !a.Equal(b) {
		t.Error("descriptions with same listener source should be equal")
	}

	other := func(event any) {}
	b.Listeners["click"] = On(other)
	if a.Equal(b) {
		t.Error("descriptions with different listener sources should differ")
	}
}

func TestEqualComponentProps(t *testing.T) {
	a := &Desc{Kind: KindComponent, Component: "app", Props: map[string]any{"n": 1}}
	b := &Desc{Kind: KindComponent, Component: "app", Props: map[string]any{"n": 1}}
	c := &Desc{Kind: KindComponent, Component: "app", Props: map[string]any{"n": 2}}

	if !a.Equal(b) {
		t.Error("equal props should compare equal")
	}
	if a.Equal(c) {
		t.Error("different props should compare unequal")
	}
}

func TestFreezeDetectsMutation(t *testing.T) {
	d := elementDesc("div", "")
	d.Attrs = map[string]string{"id": "x"}
	d.Freeze()

	if !d.Frozen() {
		t.Fatal("expected description to be frozen")
	}
	if !d.Verify() {
		t.Fatal("unmutated frozen description should verify")
	}

	d.Attrs["id"] = "y"
	if d.Verify() {
		t.Error("mutation after freeze should fail verification")
	}
}

func TestFreezeDetectsListenerSwap(t *testing.T) {
	d := elementDesc("div", "")
	d.Listeners = map[string]Listener{"click": On(func(event any) {})}
	d.Freeze()

	// Same map size, same event name, different handler.
	d.Listeners["click"] = On(func(event any) {})
	if d.Verify() {
		t.Error("listener swap after freeze should fail verification")
	}
}

func TestVerifyUnfrozen(t *testing.T) {
	d := elementDesc("div", "")
	if !d.Verify() {
		t.Error("unfrozen descriptions always verify")
	}
}

func TestListenerSameSource(t *testing.T) {
	fn := func(event any) {}
	a := On(fn)
	b := Bound(fn, func(event any) { fn(event) })

	if !a.SameSource(b) {
		t.Error("listeners sharing a source should match")
	}
	if a.SameSource(On(func(event any) {})) {
		t.Error("distinct sources should not match")
	}
	if a.SameSource(Listener{}) {
		t.Error("zero listener should not match")
	}
}
