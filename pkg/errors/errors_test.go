package errors

import (
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidViewport, "viewport %gx%g must not be negative", -1.0, 600.0)

	if err.Code != ErrCodeInvalidViewport {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInvalidViewport)
	}
	want := "INVALID_VIEWPORT: viewport -1x600 must not be negative"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeStore, cause, "save layout %s", "abc")

	if err.Unwrap() != cause {
		t.Error("Unwrap() did not return the cause")
	}
	want := "STORE_ERROR: save layout abc: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeLayoutNotFound, "no layout %s", "abc")
	wrapped := fmt.Errorf("load: %w", err)

	if !Is(err, ErrCodeLayoutNotFound) {
		t.Error("Is() = false for direct error")
	}
	if !Is(wrapped, ErrCodeLayoutNotFound) {
		t.Error("Is() = false for wrapped error")
	}
	if Is(wrapped, ErrCodeStore) {
		t.Error("Is() = true for wrong code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeStore) {
		t.Error("Is() = true for plain error")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCodeInvalidSnapshot, "bad snapshot")
	wrapped := fmt.Errorf("request: %w", err)

	if got := GetCode(wrapped); got != ErrCodeInvalidSnapshot {
		t.Errorf("GetCode() = %s, want %s", got, ErrCodeInvalidSnapshot)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode() = %s for plain error, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeFileNotFound, "snapshot file missing")
	if got := UserMessage(err); got != "snapshot file missing" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(fmt.Errorf("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage() = %q for plain error", got)
	}
}
