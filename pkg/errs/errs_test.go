package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(KindSchema, "DUPLICATE_COLUMN", "column already exists")

	if err.Kind != KindSchema {
		t.Errorf("expected kind %v, got %v", KindSchema, err.Kind)
	}
	if err.Code != "DUPLICATE_COLUMN" {
		t.Errorf("expected code DUPLICATE_COLUMN, got %s", err.Code)
	}
	if len(err.Stack) == 0 {
		t.Error("expected captured stack")
	}
}

func TestErrorFormat(t *testing.T) {
	err := New(KindEval, "SIZE_MISMATCH", "mask size does not match row count").
		WithDetail("mask has %d entries, table has %d rows", 3, 5).
		WithOp("Table.Filter")

	msg := err.Error()
	for _, want := range []string{"[EVAL/SIZE_MISMATCH]", "3 entries", "Table.Filter"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestWrapForeignError(t *testing.T) {
	cause := fmt.Errorf("open /tmp/missing: no such file")
	err := Wrap(cause, KindIO, "OPEN_FAILED", "persist.Load")

	if err.Cause != cause {
		t.Error("expected cause to be preserved")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Op != "persist.Load" {
		t.Errorf("expected op persist.Load, got %s", err.Op)
	}
}

func TestWrapExistingError(t *testing.T) {
	inner := New(KindSchema, "UNKNOWN_COLUMN", "no such column")
	err := Wrap(inner, KindIO, "IGNORED", "Table.DropColumns")

	if err != inner {
		t.Error("wrapping an *Error should return it unchanged")
	}
	if err.Op != "Table.DropColumns" {
		t.Errorf("expected op to be filled in, got %q", err.Op)
	}
	if err.Code != "UNKNOWN_COLUMN" {
		t.Errorf("code must not be overwritten, got %s", err.Code)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, KindIO, "X", "op") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindPersist, "BAD_VERSION", "unsupported version")

	if !IsKind(err, KindPersist) {
		t.Error("expected KindPersist match")
	}
	if IsKind(err, KindIO) {
		t.Error("did not expect KindIO match")
	}
	if IsKind(errors.New("plain"), KindPersist) {
		t.Error("plain errors have no kind")
	}

	wrapped := fmt.Errorf("context: %w", err)
	if !IsKind(wrapped, KindPersist) {
		t.Error("expected kind match through wrapping")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindSchema:  "SCHEMA",
		KindType:    "TYPE",
		KindEval:    "EVAL",
		KindPersist: "PERSIST",
		KindIO:      "IO",
		Kind(99):    "UNKNOWN",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
