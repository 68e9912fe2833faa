package failures_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"arrimeta/internal/failures"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("short read")
	err := failures.Wrap(failures.ErrTruncated, "header", "read", "clip.ari", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, failures.ErrTruncated) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"header", "read", "clip.ari"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := failures.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failures.ErrDecode) {
		t.Fatalf("expected nil marker to default to ErrDecode, got %v", err)
	}
	if !strings.Contains(err.Error(), "metadata failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{failures.Wrap(failures.ErrFormat, "header", "", "", nil), "format"},
		{failures.Wrap(failures.ErrTruncated, "header", "", "", nil), "truncated"},
		{failures.Wrap(failures.ErrSchema, "schema", "", "", nil), "schema"},
		{failures.Wrap(failures.ErrUnknownField, "schema", "", "", nil), "unknown_field"},
		{failures.Wrap(failures.ErrDecode, "decode", "", "", nil), "decode"},
		{fmt.Errorf("open: %w", errors.New("permission denied")), "io"},
	}
	for _, tc := range cases {
		if got := failures.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
