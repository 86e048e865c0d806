package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("E010")
	if err.Code != "E010" || err.Category != CategoryReentrancy {
		t.Errorf("unexpected error: %+v", err)
	}
	if !strings.Contains(err.Error(), "too many cycles") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("E999")
	if err.Code != "E999" || err.Message != "Unknown error" {
		t.Errorf("unexpected error: %+v", err)
	}
}

func TestBuilderChain(t *testing.T) {
	inner := stderrors.New("boom")
	err := New("E004").
		WithDetail("child at index %d", 3).
		WithSuggestion("rebuild the subtree").
		Wrap(inner)

	if err.Detail != "child at index 3" {
		t.Errorf("detail = %q", err.Detail)
	}
	if err.Suggestion != "rebuild the subtree" {
		t.Errorf("suggestion = %q", err.Suggestion)
	}
	if !stderrors.Is(err, inner) {
		t.Error("wrapped error must satisfy errors.Is")
	}
}

func TestIsCategory(t *testing.T) {
	if !Is(New("E020"), CategoryAssertion) {
		t.Error("E020 should be an assertion error")
	}
	if Is(New("E020"), CategoryStructural) {
		t.Error("E020 is not structural")
	}
	if Is(stderrors.New("plain"), CategoryStructural) {
		t.Error("foreign errors are never engine categories")
	}
	if !Is(Newf(CategoryContract, "bad %s", "thing"), CategoryContract) {
		t.Error("Newf must carry its category")
	}
}
