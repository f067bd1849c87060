package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeCycle, "node %s revisited", "n1")
	if got, want := err.Error(), "CYCLE: node n1 revisited"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "fetch snapshot")
	if got, want := wrapped.Error(), "NETWORK_ERROR: fetch snapshot: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := fmt.Errorf("layout: %w", New(ErrCodeRootNotFound, "missing root"))

	if !Is(err, ErrCodeRootNotFound) {
		t.Error("Is should find the code through fmt.Errorf wrapping")
	}
	if Is(err, ErrCodeCycle) {
		t.Error("Is should not match a different code")
	}
	if GetCode(err) != ErrCodeRootNotFound {
		t.Errorf("GetCode = %q", GetCode(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode on a plain error should be empty")
	}
}

func TestIsStructural(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeInvalidSnapshot, true},
		{ErrCodeDanglingReference, true},
		{ErrCodeRootNotFound, true},
		{ErrCodeRootMismatch, true},
		{ErrCodeCycle, true},
		{ErrCodeNoTrunk, true},
		{ErrCodeMultipleTrunks, true},
		{ErrCodeNotFound, false},
		{ErrCodeNetwork, false},
		{ErrCodeUnauthorized, false},
	}

	for _, tt := range tests {
		if got := IsStructural(New(tt.code, "x")); got != tt.want {
			t.Errorf("IsStructural(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
	if IsStructural(nil) {
		t.Error("IsStructural(nil) should be false")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "node %s not found", "n9")); got != "node n9 not found" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage = %q", got)
	}
}
