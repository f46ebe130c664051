package persist

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tablekit/pkg/errs"
	"tablekit/pkg/table"
	"tablekit/pkg/types"
)

type peakRef struct {
	ID    int
	Label string
}

func init() {
	Register(peakRef{})
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.table")

	src := table.MustNew(
		[]string{"n", "s", "obj"},
		[]types.Type{types.IntType, types.StringType, types.ObjectType},
		nil,
		[][]any{
			{1, "a", peakRef{ID: 7, Label: "x"}},
			{2, "b", nil},
			{3, nil, peakRef{ID: 9, Label: "y"}},
		},
		"peaks", map[string]any{"instrument": "qtof"})

	if err := Store(src, path, false); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(got.ColNames(), src.ColNames()) {
		t.Errorf("names %v", got.ColNames())
	}
	if !reflect.DeepEqual(got.ColTypes(), src.ColTypes()) {
		t.Errorf("types %v", got.ColTypes())
	}
	if got.Len() != src.Len() {
		t.Fatalf("row count %d", got.Len())
	}
	for i := 0; i < src.Len(); i++ {
		want, _ := src.Row(i)
		have, _ := got.Row(i)
		if !reflect.DeepEqual(have, want) {
			t.Errorf("row %d: %v, want %v", i, have, want)
		}
	}
	if got.Title() != "peaks" {
		t.Errorf("title %q", got.Title())
	}
	if got.Meta()["instrument"] != "qtof" {
		t.Errorf("meta %v", got.Meta())
	}
	if got.Meta()["loaded_from"] == nil {
		t.Error("loaded_from not recorded")
	}
}

func TestStoreRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twice.table")
	src := table.MustNew([]string{"a"}, []types.Type{types.IntType}, nil,
		[][]any{{1}}, "", nil)

	if err := Store(src, path, false); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	if err := Store(src, path, false); !errs.IsKind(err, errs.KindIO) {
		t.Fatalf("expected an IO error, got %v", err)
	}
	if err := Store(src, path, true); err != nil {
		t.Fatalf("overwriting Store failed: %v", err)
	}
}

func TestLoadRejectsOldVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.table")
	if err := os.WriteFile(path, []byte("version=0.9.3\njunk"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errs.IsKind(err, errs.KindPersist) {
		t.Fatalf("expected a persistence error, got %v", err)
	}
	if !strings.Contains(err.Error(), "0.9.3") {
		t.Errorf("error does not name the offending version: %v", err)
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noheader.table")
	if err := os.WriteFile(path, []byte("not a header\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errs.IsKind(err, errs.KindPersist) {
		t.Fatalf("expected a persistence error, got %v", err)
	}
}

func TestSortednessNotTrusted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sorted.table")

	src := table.MustNew([]string{"a"}, []types.Type{types.IntType}, nil,
		[][]any{{2}, {1}}, "", nil)
	if _, err := src.SortBy("a", true); err != nil {
		t.Fatal(err)
	}
	if err := Store(src, path, false); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Row order survives, the index flag does not; re-sorting establishes
	// it again without error.
	values, _ := got.ColumnValues("a")
	if !reflect.DeepEqual(values, []any{int64(1), int64(2)}) {
		t.Errorf("rows %v", values)
	}
	if _, err := got.SortBy("a", true); err != nil {
		t.Fatalf("re-sort failed: %v", err)
	}
}
