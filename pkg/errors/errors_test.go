package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidTerm, "invalid term: %s", "  ")
	if err.Code != ErrCodeInvalidTerm {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidTerm)
	}
	if err.Message != "invalid term:   " {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "failed to reach %s", "service")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"MatchingCode", New(ErrCodeNotFound, "missing"), ErrCodeNotFound, true},
		{"DifferentCode", New(ErrCodeNotFound, "missing"), ErrCodeNetwork, false},
		{"PlainError", stderrors.New("plain"), ErrCodeNotFound, false},
		{"WrappedInFmt", fmt.Errorf("outer: %w", New(ErrCodeTimeout, "slow")), ErrCodeTimeout, true},
		{"Nil", nil, ErrCodeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInternal, "boom")); got != ErrCodeInternal {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeInternal)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidRelation, "unknown relation kind %q", "metonym")
	want := `unknown relation kind "metonym"`
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestErrorString(t *testing.T) {
	err := Wrap(ErrCodeNetwork, stderrors.New("dial tcp"), "fetch failed")
	want := "NETWORK_ERROR: fetch failed: dial tcp"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
