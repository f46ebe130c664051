package table

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tablekit/pkg/errs"
	"tablekit/pkg/expr"
	"tablekit/pkg/types"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	return MustNew(
		[]string{"n", "s"},
		[]types.Type{types.IntType, types.StringType},
		nil,
		[][]any{{1, "a"}, {2, "b"}, {3, "c"}},
		"sample", nil)
}

func column(t *testing.T, tab *Table, name string) []any {
	t.Helper()
	values, err := tab.ColumnValues(name)
	if err != nil {
		t.Fatalf("ColumnValues(%q) failed: %v", name, err)
	}
	return values
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		types []types.Type
		rows  [][]any
	}{
		{"duplicate names", []string{"a", "a"}, []types.Type{types.IntType, types.IntType}, nil},
		{"arity mismatch", []string{"a"}, []types.Type{types.IntType, types.IntType}, nil},
		{"short row", []string{"a", "b"}, []types.Type{types.IntType, types.IntType}, [][]any{{1}}},
		{"double postfix", []string{"a__1__2"}, []types.Type{types.IntType}, nil},
		{"empty name", []string{""}, []types.Type{types.IntType}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.names, tt.types, nil, tt.rows, "", nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNewConvertsCells(t *testing.T) {
	tab := MustNew([]string{"x"}, []types.Type{types.FloatType}, nil,
		[][]any{{1}, {2.5}, {nil}}, "", nil)
	want := []any{1.0, 2.5, nil}
	if got := column(t, tab, "x"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFromSlice(t *testing.T) {
	tab, err := FromSlice("v", []any{1, 2, nil}, "ints")
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if got := tab.ColTypes()[0]; got != types.IntType {
		t.Errorf("inferred type %v, want IntType", got)
	}
	if tab.Len() != 3 {
		t.Errorf("got %d rows", tab.Len())
	}

	tab, err = FromSlice("v", []any{1, 2.5}, "mixed")
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if got := tab.ColTypes()[0]; got != types.FloatType {
		t.Errorf("inferred type %v, want FloatType", got)
	}
}

func TestGetSetAddRow(t *testing.T) {
	tab := sampleTable(t)

	v, err := tab.Get(1, "s")
	if err != nil || v != "b" {
		t.Fatalf("Get: %v, %v", v, err)
	}
	if err := tab.Set(1, "n", 20); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, _ = tab.Get(1, "n")
	if v != int64(20) {
		t.Errorf("Set did not convert: %v", v)
	}

	if err := tab.AddRow([]any{4, "d"}); err != nil {
		t.Fatalf("AddRow failed: %v", err)
	}
	if tab.Len() != 4 {
		t.Errorf("got %d rows", tab.Len())
	}
	if err := tab.AddRow([]any{"x", "d"}); !errs.IsKind(err, errs.KindType) {
		t.Errorf("bad cell should be a type error, got %v", err)
	}
	if err := tab.AddRow([]any{1}); !errs.IsKind(err, errs.KindSchema) {
		t.Errorf("short row should be a schema error, got %v", err)
	}
}

func TestAddColumnVariants(t *testing.T) {
	tab := sampleTable(t)

	if err := tab.AddColumn("v", []any{10, 20, 30}, types.AutoType, AutoFormat); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if got := column(t, tab, "v"); !reflect.DeepEqual(got, []any{int64(10), int64(20), int64(30)}) {
		t.Errorf("got %v", got)
	}

	if err := tab.AddColumnFunc("twice", func(row []any) any {
		return row[tab.ColIndex("n")].(int64) * 2
	}, types.IntType, AutoFormat); err != nil {
		t.Fatalf("AddColumnFunc failed: %v", err)
	}
	if got := column(t, tab, "twice"); !reflect.DeepEqual(got, []any{int64(2), int64(4), int64(6)}) {
		t.Errorf("got %v", got)
	}

	if err := tab.AddColumnExpr("sum", tab.Col("n").Add(tab.Col("v")), types.AutoType, AutoFormat); err != nil {
		t.Fatalf("AddColumnExpr failed: %v", err)
	}
	if got := column(t, tab, "sum"); !reflect.DeepEqual(got, []any{int64(11), int64(22), int64(33)}) {
		t.Errorf("got %v", got)
	}

	if err := tab.AddConstantColumn("tag", "x", types.StringType, AutoFormat); err != nil {
		t.Fatalf("AddConstantColumn failed: %v", err)
	}
	if got := column(t, tab, "tag"); !reflect.DeepEqual(got, []any{"x", "x", "x"}) {
		t.Errorf("got %v", got)
	}

	if err := tab.AddColumn("n", []any{0, 0, 0}, types.IntType, AutoFormat); !errs.IsKind(err, errs.KindSchema) {
		t.Errorf("duplicate name should be a schema error, got %v", err)
	}
	if err := tab.AddColumn("short", []any{1}, types.IntType, AutoFormat); !errs.IsKind(err, errs.KindSchema) {
		t.Errorf("wrong length should be a schema error, got %v", err)
	}
}

func TestInsertColumnBefore(t *testing.T) {
	tab := sampleTable(t)

	if err := tab.InsertColumnBefore("s", "mid", []any{0, 0, 0}, types.IntType, AutoFormat); err != nil {
		t.Fatalf("InsertColumnBefore failed: %v", err)
	}
	if got := tab.ColNames(); !reflect.DeepEqual(got, []string{"n", "mid", "s"}) {
		t.Errorf("got %v", got)
	}
	row, _ := tab.Row(0)
	if !reflect.DeepEqual(row, []any{int64(1), int64(0), "a"}) {
		t.Errorf("row not aligned: %v", row)
	}

	if err := tab.InsertColumnBefore(-1, "last", []any{9, 9, 9}, types.IntType, AutoFormat); err != nil {
		t.Fatalf("negative index failed: %v", err)
	}
	if got := tab.ColNames(); !reflect.DeepEqual(got, []string{"n", "mid", "last", "s"}) {
		t.Errorf("got %v", got)
	}
}

func TestAddEnumeration(t *testing.T) {
	tab := sampleTable(t)
	if err := tab.AddEnumeration(""); err != nil {
		t.Fatalf("AddEnumeration failed: %v", err)
	}
	if got := tab.ColNames()[0]; got != "id" {
		t.Errorf("first column %q, want id", got)
	}
	if got := column(t, tab, "id"); !reflect.DeepEqual(got, []any{int64(0), int64(1), int64(2)}) {
		t.Errorf("got %v", got)
	}
}

func TestDropColumnsAtomic(t *testing.T) {
	tab := sampleTable(t)
	before := tab.ColNames()

	if err := tab.DropColumns("n", "missing"); !errs.IsKind(err, errs.KindSchema) {
		t.Fatalf("expected a schema error, got %v", err)
	}
	if got := tab.ColNames(); !reflect.DeepEqual(got, before) {
		t.Errorf("failed drop mutated schema: %v", got)
	}

	if err := tab.DropColumns("s"); err != nil {
		t.Fatalf("DropColumns failed: %v", err)
	}
	if got := tab.ColNames(); !reflect.DeepEqual(got, []string{"n"}) {
		t.Errorf("got %v", got)
	}
	row, _ := tab.Row(0)
	if !reflect.DeepEqual(row, []any{int64(1)}) {
		t.Errorf("row not trimmed: %v", row)
	}
}

func TestAddThenDropRestoresSchema(t *testing.T) {
	tab := sampleTable(t)
	wantNames := tab.ColNames()
	wantRow, _ := tab.Row(1)

	if err := tab.AddColumn("tmp", []any{0, 0, 0}, types.IntType, AutoFormat); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := tab.DropColumns("tmp"); err != nil {
		t.Fatalf("DropColumns failed: %v", err)
	}
	if got := tab.ColNames(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("schema not restored: %v", got)
	}
	row, _ := tab.Row(1)
	if !reflect.DeepEqual(row, wantRow) {
		t.Errorf("rows not restored: %v", row)
	}
}

func TestRenameColumnsAtomic(t *testing.T) {
	tab := sampleTable(t)

	if err := tab.RenameColumns(map[string]string{"n": "s"}); !errs.IsKind(err, errs.KindSchema) {
		t.Fatalf("collision should be a schema error, got %v", err)
	}
	if !tab.HasColumn("n") {
		t.Error("failed rename mutated schema")
	}

	if err := tab.RenameColumns(map[string]string{"n": "num", "s": "str"}); err != nil {
		t.Fatalf("RenameColumns failed: %v", err)
	}
	if got := tab.ColNames(); !reflect.DeepEqual(got, []string{"num", "str"}) {
		t.Errorf("got %v", got)
	}
}

func TestReplaceAndUpdateColumn(t *testing.T) {
	tab := sampleTable(t)

	if err := tab.ReplaceColumn("n", []any{1.5, 2.5, 3.5}, types.FloatType, AutoFormat); err != nil {
		t.Fatalf("ReplaceColumn failed: %v", err)
	}
	if tab.ColTypes()[0] != types.FloatType {
		t.Errorf("type not replaced: %v", tab.ColTypes()[0])
	}

	if err := tab.UpdateColumn("n", tab.Col("n").Mul(2)); err != nil {
		t.Fatalf("UpdateColumn failed: %v", err)
	}
	if got := column(t, tab, "n"); !reflect.DeepEqual(got, []any{3.0, 5.0, 7.0}) {
		t.Errorf("got %v", got)
	}
}

func TestExtractColumns(t *testing.T) {
	tab := sampleTable(t)
	sub, err := tab.ExtractColumns("s")
	if err != nil {
		t.Fatalf("ExtractColumns failed: %v", err)
	}
	if got := sub.ColNames(); !reflect.DeepEqual(got, []string{"s"}) {
		t.Errorf("got %v", got)
	}
	if err := sub.AddRow([]any{"z"}); err != nil {
		t.Fatalf("AddRow on extract failed: %v", err)
	}
	if tab.Len() != 3 {
		t.Error("mutating the extract changed the source")
	}

	if _, err := tab.ExtractColumns("s", "s"); !errs.IsKind(err, errs.KindSchema) {
		t.Errorf("repeated name must be a schema error, got %v", err)
	}
}

func TestSortBy(t *testing.T) {
	tab := MustNew([]string{"n"}, []types.Type{types.IntType}, nil,
		[][]any{{3}, {1}, {2}}, "", nil)

	perm, err := tab.SortBy("n", true)
	if err != nil {
		t.Fatalf("SortBy failed: %v", err)
	}
	if !reflect.DeepEqual(perm, []int{1, 2, 0}) {
		t.Errorf("permutation %v", perm)
	}
	if got := column(t, tab, "n"); !reflect.DeepEqual(got, []any{int64(1), int64(2), int64(3)}) {
		t.Errorf("got %v", got)
	}

	// Idempotent: sorting a sorted table reorders nothing.
	perm, err = tab.SortBy("n", true)
	if err != nil {
		t.Fatalf("second SortBy failed: %v", err)
	}
	if !reflect.DeepEqual(perm, []int{0, 1, 2}) {
		t.Errorf("second sort moved rows: %v", perm)
	}

	if _, err := tab.SortBy("n", false); err != nil {
		t.Fatalf("descending SortBy failed: %v", err)
	}
	if got := column(t, tab, "n"); !reflect.DeepEqual(got, []any{int64(3), int64(2), int64(1)}) {
		t.Errorf("got %v", got)
	}
}

func TestSortByNullsFirst(t *testing.T) {
	tab := MustNew([]string{"n"}, []types.Type{types.IntType}, nil,
		[][]any{{2}, {nil}, {1}}, "", nil)
	if _, err := tab.SortBy("n", true); err != nil {
		t.Fatalf("SortBy failed: %v", err)
	}
	if got := column(t, tab, "n"); !reflect.DeepEqual(got, []any{nil, int64(1), int64(2)}) {
		t.Errorf("got %v", got)
	}
}

func TestFilter(t *testing.T) {
	tab := sampleTable(t)

	got, err := tab.Filter(tab.Col("n").Ge(2))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d rows", got.Len())
	}
	if s := column(t, got, "s"); !reflect.DeepEqual(s, []any{"b", "c"}) {
		t.Errorf("got %v", s)
	}

	// Sorting descending first reverses the surviving row order.
	sorted := tab.Copy()
	if _, err := sorted.SortBy("n", false); err != nil {
		t.Fatalf("SortBy failed: %v", err)
	}
	got, err = sorted.Filter(sorted.Col("n").Ge(2))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if s := column(t, got, "s"); !reflect.DeepEqual(s, []any{"c", "b"}) {
		t.Errorf("got %v", s)
	}
}

func TestFilterScalar(t *testing.T) {
	tab := sampleTable(t)

	all, err := tab.Filter(expr.Gt(tab.Col("n").Count(), 0))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if all.Len() != tab.Len() {
		t.Errorf("scalar true kept %d rows", all.Len())
	}

	none, err := tab.Filter(expr.Gt(tab.Col("n").Count(), 100))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if none.Len() != 0 {
		t.Errorf("scalar false kept %d rows", none.Len())
	}
}

func TestFilterWithNulls(t *testing.T) {
	tab := MustNew([]string{"a"}, []types.Type{types.IntType}, nil,
		[][]any{{nil}, {2}}, "", nil)

	lt, err := tab.Filter(tab.Col("a").Lt(3))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if lt.Len() != 1 {
		t.Errorf("a < 3 kept %d rows, want 1", lt.Len())
	}

	// != also excludes the null row: null compares to null, not true.
	ne, err := tab.Filter(tab.Col("a").Ne(2))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if ne.Len() != 0 {
		t.Errorf("a != 2 kept %d rows, want 0", ne.Len())
	}

	// The same masks after sorting, through the fast path.
	if _, err := tab.SortBy("a", true); err != nil {
		t.Fatalf("SortBy failed: %v", err)
	}
	lt, err = tab.Filter(tab.Col("a").Lt(3))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if lt.Len() != 1 {
		t.Errorf("sorted a < 3 kept %d rows, want 1", lt.Len())
	}
}

func TestFilterComplementLaw(t *testing.T) {
	tab := sampleTable(t)
	cond := tab.Col("n").Ge(2)

	kept, err := tab.Filter(cond)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	dropped, err := tab.Filter(expr.Not(cond))
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if kept.Len()+dropped.Len() != tab.Len() {
		t.Errorf("%d + %d != %d", kept.Len(), dropped.Len(), tab.Len())
	}
}

func TestSplitBy(t *testing.T) {
	tab := MustNew([]string{"a", "b", "c"},
		[]types.Type{types.IntType, types.IntType, types.IntType}, nil,
		[][]any{{1, 1, 1}, {1, 1, 2}, {2, 1, 3}, {2, 2, 4}}, "", nil)

	subs, err := tab.SplitBy("a")
	if err != nil {
		t.Fatalf("SplitBy failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d groups", len(subs))
	}
	if subs[0].Len() != 2 || subs[1].Len() != 2 {
		t.Errorf("group sizes %d, %d", subs[0].Len(), subs[1].Len())
	}

	subs, err = tab.SplitBy("a", "b")
	if err != nil {
		t.Fatalf("SplitBy failed: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("got %d groups", len(subs))
	}
	if got := column(t, subs[2], "c"); !reflect.DeepEqual(got, []any{int64(4)}) {
		t.Errorf("last group %v", got)
	}
}

func TestAggregate(t *testing.T) {
	tab := MustNew([]string{"id", "source", "value"},
		[]types.Type{types.IntType, types.IntType, types.FloatType}, nil,
		[][]any{{0, 1, 10.0}, {1, 1, 20.0}, {2, 2, 30.0}}, "", nil)

	if err := tab.Aggregate(tab.Col("value").Mean(), "mean"); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got := column(t, tab, "mean"); !reflect.DeepEqual(got, []any{20.0, 20.0, 20.0}) {
		t.Errorf("got %v", got)
	}

	if err := tab.Aggregate(tab.Col("value").Mean(), "mean_per_source", "source"); err != nil {
		t.Fatalf("grouped Aggregate failed: %v", err)
	}
	if got := column(t, tab, "mean_per_source"); !reflect.DeepEqual(got, []any{15.0, 15.0, 30.0}) {
		t.Errorf("got %v", got)
	}
}

func TestAggregateInterleavedGroups(t *testing.T) {
	// Group values interleave across rows; every row must still receive
	// its own group's result.
	tab := MustNew([]string{"g", "v"},
		[]types.Type{types.StringType, types.IntType}, nil,
		[][]any{{"a", 1}, {"b", 10}, {"a", 3}, {"b", 30}}, "", nil)

	if err := tab.Aggregate(tab.Col("v").Sum(), "total", "g"); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	want := []any{int64(4), int64(40), int64(4), int64(40)}
	if got := column(t, tab, "total"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAggregateRejectsNonReduced(t *testing.T) {
	tab := sampleTable(t)
	err := tab.Aggregate(tab.Col("n").Add(1), "bad")
	if !errs.IsKind(err, errs.KindEval) {
		t.Fatalf("expected an evaluation error, got %v", err)
	}
	if tab.HasColumn("bad") {
		t.Error("failed aggregate added a column")
	}
}

func TestAppend(t *testing.T) {
	a := sampleTable(t)
	b := sampleTable(t)
	if err := a.Append(b); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if a.Len() != 6 {
		t.Errorf("got %d rows", a.Len())
	}

	c := MustNew([]string{"x"}, []types.Type{types.IntType}, nil, nil, "", nil)
	if err := a.Append(c); !errs.IsKind(err, errs.KindSchema) {
		t.Errorf("mismatched append should be a schema error, got %v", err)
	}
}

func TestUniqueRows(t *testing.T) {
	tab := MustNew([]string{"a"}, []types.Type{types.IntType}, nil,
		[][]any{{1}, {2}, {1}, {nil}, {nil}}, "", nil)
	got := tab.UniqueRows()
	if got.Len() != 3 {
		t.Errorf("got %d rows, want 3", got.Len())
	}

	// Cell content that mimics the key syntax must not merge distinct rows.
	tricky := MustNew([]string{"a", "b"},
		[]types.Type{types.StringType, types.StringType}, nil,
		[][]any{{"x|s:y", "z"}, {"x", "y|s:z"}}, "", nil)
	if got := tricky.UniqueRows(); got.Len() != 2 {
		t.Errorf("distinct rows merged, got %d rows", got.Len())
	}
}

func TestSliceAndCopyIndependence(t *testing.T) {
	tab := sampleTable(t)

	mid, err := tab.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if got := column(t, mid, "s"); !reflect.DeepEqual(got, []any{"b", "c"}) {
		t.Errorf("got %v", got)
	}

	cp := tab.Copy()
	if err := cp.Set(0, "s", "changed"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := tab.Get(0, "s"); v != "a" {
		t.Error("mutating the copy changed the source")
	}
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()
	tab := sampleTable(t)

	path := filepath.Join(dir, "out.csv")
	written, err := tab.SaveCSV(path, true)
	if err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}
	if written != path {
		t.Errorf("wrote to %s", written)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "n; s" {
		t.Errorf("header %q", lines[0])
	}
	if lines[1] != "1; a" {
		t.Errorf("first row %q", lines[1])
	}

	// A second save must not overwrite; it probes numbered suffixes.
	written, err = tab.SaveCSV(path, true)
	if err != nil {
		t.Fatalf("second SaveCSV failed: %v", err)
	}
	if written != path+".1" {
		t.Errorf("second save wrote to %s", written)
	}

	if _, err := tab.SaveCSV(filepath.Join(dir, "out.txt"), true); !errs.IsKind(err, errs.KindIO) {
		t.Errorf("wrong extension should be an IO error, got %v", err)
	}
}

func TestSaveCSVSuppressedColumns(t *testing.T) {
	dir := t.TempDir()
	tab := MustNew([]string{"a", "b"},
		[]types.Type{types.IntType, types.IntType},
		[]string{"%d", types.FormatSuppress},
		[][]any{{1, 2}}, "", nil)

	written, err := tab.SaveCSV(filepath.Join(dir, "vis.csv"), true)
	if err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}
	data, _ := os.ReadFile(written)
	if !strings.HasPrefix(string(data), "a\n") {
		t.Errorf("suppressed column leaked: %q", string(data))
	}

	written, err = tab.SaveCSV(filepath.Join(dir, "all.csv"), false)
	if err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}
	data, _ = os.ReadFile(written)
	if !strings.HasPrefix(string(data), "a; b\n") {
		t.Errorf("all-columns export missing header: %q", string(data))
	}
}

func TestPrint(t *testing.T) {
	tab := sampleTable(t)
	out := tab.String()
	for _, want := range []string{"sample", "n", "s", "int", "string", "a", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInfo(t *testing.T) {
	tab := MustNew([]string{"a"}, []types.Type{types.IntType}, nil,
		[][]any{{1}, {1}, {nil}}, "stats", nil)
	info := tab.Info()
	for _, want := range []string{"stats", "3 rows", "1 distinct", "1 null"} {
		if !strings.Contains(info, want) {
			t.Errorf("info missing %q:\n%s", want, info)
		}
	}
}
