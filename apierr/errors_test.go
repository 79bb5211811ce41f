package apierr_test

import (
	"errors"
	"testing"

	"github.com/momentics/netkit/apierr"
)

func TestNewError(t *testing.T) {
	err := apierr.New(apierr.InvalidParameter, "bad value")
	if err.Kind != apierr.InvalidParameter {
		t.Errorf("Kind = %v, want InvalidParameter", err.Kind)
	}
	if err.Error() != "bad value" {
		t.Errorf("Error() = %q, want %q", err.Error(), "bad value")
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := apierr.Wrap(apierr.Runtime, "operation failed", cause)
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(wrapped, cause) = false, want true")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() did not return the original cause")
	}
}

func TestWithContext(t *testing.T) {
	err := apierr.New(apierr.AccessViolation, "read past end").
		WithContext("pos", 10).WithContext("len", 4)
	if err.Context["pos"] != 10 || err.Context["len"] != 4 {
		t.Errorf("Context = %+v, want pos=10 len=4", err.Context)
	}
}

func TestSentinelsDistinguishableByErrorsIs(t *testing.T) {
	wrapped := apierr.Wrap(apierr.Logic, "socket gone", apierr.ErrClosed)
	if !errors.Is(wrapped, apierr.ErrClosed) {
		t.Errorf("errors.Is(wrapped, ErrClosed) = false, want true")
	}
	if errors.Is(wrapped, apierr.ErrTimeout) {
		t.Errorf("errors.Is(wrapped, ErrTimeout) = true, want false")
	}
}

func TestKindString(t *testing.T) {
	cases := map[apierr.Kind]string{
		apierr.NullPointer:      "null_pointer",
		apierr.InvalidParameter: "invalid_parameter",
		apierr.Logic:            "logic",
		apierr.Runtime:          "runtime",
		apierr.AccessViolation:  "access_violation",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
