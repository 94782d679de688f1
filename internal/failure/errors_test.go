package failure_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"genreshelf/internal/failure"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	err := failure.Wrap(failure.ErrFilesystem, "reorganize", "copy", "copy Zamba", fs.ErrPermission)
	if !errors.Is(err, failure.ErrFilesystem) {
		t.Fatalf("expected filesystem marker, got %v", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	want := "filesystem error: reorganize: copy: copy Zamba: permission denied"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestWrapDefaultsAndEmptyDetail(t *testing.T) {
	err := failure.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, failure.ErrFilesystem) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{failure.Wrap(failure.ErrValidation, "count", "", "", nil), 2},
		{failure.Wrap(failure.ErrConfiguration, "taxonomy", "", "", nil), 2},
		{failure.Wrap(failure.ErrLocked, "reorganize", "", "", nil), 3},
		{errors.New("boom"), 1},
	}
	for _, tc := range cases {
		if got := failure.ExitCode(tc.err); got != tc.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
