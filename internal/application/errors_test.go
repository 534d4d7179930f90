package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	vErr.add("name", "name is required")

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", ErrNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrNotFound), "not_found"},
		{"already exists", ErrAlreadyExists, "already_exists"},
		{"session running", ErrSessionRunning, "session_running"},
		{"validation", vErr, "validation"},
		{"unexpected", errors.New("boom"), "unexpected"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestValidationError_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatalf("empty validation error must report no issues")
	}

	vErr.add("name", "name is required")
	vErr.add("end_utc", "end time must be after start time")

	if !vErr.HasErrors() {
		t.Fatalf("expected recorded issues")
	}
	if len(vErr.FieldErrors) != 2 {
		t.Fatalf("unexpected field errors: %#v", vErr.FieldErrors)
	}
	if vErr.Error() != "validation failed" {
		t.Fatalf("unexpected message %q", vErr.Error())
	}
}
