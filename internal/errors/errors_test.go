package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("E001")
	if err.Code != "E001" {
		t.Errorf("expected code E001, got %s", err.Code)
	}
	if err.Category != CategoryReactive {
		t.Errorf("expected reactive category, got %s", err.Category)
	}
	if err.Message == "" {
		t.Error("expected non-empty message")
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("E999")
	if err.Code != "E999" {
		t.Errorf("expected code E999, got %s", err.Code)
	}
	if err.Message != "Unknown error" {
		t.Errorf("expected unknown error message, got %q", err.Message)
	}
}

func TestErrorString(t *testing.T) {
	err := New("E040")
	s := err.Error()
	if !strings.HasPrefix(s, "E040: ") {
		t.Errorf("expected code prefix, got %q", s)
	}

	noCode := Newf(CategoryTree, "slot %d empty", 3)
	if noCode.Error() != "slot 3 empty" {
		t.Errorf("unexpected message: %q", noCode.Error())
	}
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("boom")
	err := FromError(inner, "E020")

	if !stderrors.Is(err, inner) {
		t.Error("expected errors.Is to find wrapped error")
	}
	if err.Unwrap() != inner {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestFromErrorNil(t *testing.T) {
	if FromError(nil, "E020") != nil {
		t.Error("expected nil for nil input")
	}
}

func TestBuilderMethods(t *testing.T) {
	err := New("E002").
		WithDetail("custom detail").
		WithSuggestion("break the cycle")

	if err.Detail != "custom detail" {
		t.Errorf("expected custom detail, got %q", err.Detail)
	}
	if err.Suggestion != "break the cycle" {
		t.Errorf("expected suggestion, got %q", err.Suggestion)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E021").WithSuggestion("file a bug")
	out := Format(err)

	for _, want := range []string{"E021", "scheduler", "hint: file a bug", "docs:"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q:\n%s", want, out)
		}
	}

	if Format(nil) != "" {
		t.Error("expected empty string for nil error")
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("E001"); !ok {
		t.Error("expected E001 to be registered")
	}
	if _, ok := Lookup("E999"); ok {
		t.Error("expected E999 to be unregistered")
	}
}
