package render

import (
	"strings"
	"testing"

	"tablekit/pkg/table"
	"tablekit/pkg/types"
)

func sample(t *testing.T) *table.Table {
	t.Helper()
	return table.MustNew(
		[]string{"n", "s", "hidden"},
		[]types.Type{types.IntType, types.StringType, types.IntType},
		[]string{"%d", "%s", types.FormatSuppress},
		[][]any{{1, "a", 10}, {2, nil, 20}, {3, "c", 30}},
		"sample", nil)
}

func TestTable(t *testing.T) {
	out := Table(sample(t), Options{})

	for _, want := range []string{"sample", "n", "s", "int", "str", "3 rows", "-"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("suppressed column rendered:\n%s", out)
	}
}

func TestTableMaxRows(t *testing.T) {
	out := Table(sample(t), Options{MaxRows: 2})

	if !strings.Contains(out, "2 of 3 rows") {
		t.Errorf("footer missing truncation note:\n%s", out)
	}
	if strings.Contains(out, "c") {
		t.Errorf("third row rendered despite the limit:\n%s", out)
	}
}

func TestTableCellTruncation(t *testing.T) {
	tab := table.MustNew([]string{"s"}, []types.Type{types.StringType}, nil,
		[][]any{{"abcdefghij"}}, "", nil)

	out := Table(tab, Options{MaxCellWidth: 5})
	if !strings.Contains(out, "ab...") {
		t.Errorf("long cell not truncated:\n%s", out)
	}
}

func TestInfoPanel(t *testing.T) {
	tab := sample(t)
	tab.Meta()["source"] = "unit"

	out := InfoPanel(tab)
	for _, want := range []string{"sample", "rows", "3", "meta.source", "unit", "hidden"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel missing %q:\n%s", want, out)
		}
	}
}
