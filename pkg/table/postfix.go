package table

import (
	"sort"
	"strconv"
	"strings"

	"tablekit/pkg/errs"
)

// Column names carry an optional numeric postfix "__<n>" recording join
// lineage; an unsuffixed name counts as postfix -1. Names starting with
// "__" are internal and excluded from postfix bookkeeping.

// postfixValue parses a column name's postfix. Internal names report
// ok=false. A name with more than one "__" separator, or a non-numeric
// suffix, is malformed.
func postfixValue(name string) (value int, err error) {
	if strings.HasPrefix(name, "__") {
		return 0, nil
	}
	fields := strings.Split(name, "__")
	switch len(fields) {
	case 1:
		return -1, nil
	case 2:
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil || n < 0 {
			return 0, errs.Newf(errs.KindSchema, "INVALID_NAME",
				"column name %q has a non-numeric postfix", name)
		}
		return n, nil
	default:
		return 0, errs.Newf(errs.KindSchema, "INVALID_NAME",
			"column name %q has more than one postfix separator", name)
	}
}

func isInternalName(name string) bool {
	return strings.HasPrefix(name, "__")
}

func (t *Table) postfixValues() []int {
	seen := make(map[int]bool)
	var out []int
	for _, name := range t.names {
		if isInternalName(name) {
			continue
		}
		v, _ := postfixValue(name)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// MaxPostfix reports the largest postfix value among the non-internal
// columns, -1 when all are unsuffixed.
func (t *Table) MaxPostfix() int {
	max := -1
	for _, v := range t.postfixValues() {
		if v > max {
			max = v
		}
	}
	return max
}

// MinPostfix reports the smallest postfix value among the non-internal
// columns.
func (t *Table) MinPostfix() int {
	min := -1
	for i, v := range t.postfixValues() {
		if i == 0 || v < min {
			min = v
		}
	}
	return min
}

// FindPostfixes lists the distinct postfix strings in use, sorted; the
// empty string stands for unsuffixed columns.
func (t *Table) FindPostfixes() []string {
	seen := make(map[string]bool)
	for _, name := range t.names {
		if isInternalName(name) {
			continue
		}
		_, suffix, found := strings.Cut(name, "__")
		if found {
			seen["__"+suffix] = true
		} else {
			seen[""] = true
		}
	}
	out := make([]string, 0, len(seen))
	for pf := range seen {
		out = append(out, pf)
	}
	sort.Strings(out)
	return out
}

// incrementedPostfixes returns the column names with every postfix value
// shifted by the given amount. Internal names pass through untouched.
func (t *Table) incrementedPostfixes(by int) []string {
	out := make([]string, len(t.names))
	for i, name := range t.names {
		if isInternalName(name) {
			out[i] = name
			continue
		}
		v, _ := postfixValue(name)
		prefix, _, _ := strings.Cut(name, "__")
		out[i] = prefix + "__" + strconv.Itoa(by+v)
	}
	return out
}

// RemovePostfixes strips postfixes in place. With no arguments every
// "__<n>" suffix is removed; otherwise only the given suffix strings are
// stripped. The operation is rejected before any mutation if it would
// produce duplicate names.
func (t *Table) RemovePostfixes(postfixes ...string) error {
	newNames := make([]string, len(t.names))
	for i, name := range t.names {
		newNames[i] = name
		if isInternalName(name) {
			continue
		}
		if len(postfixes) == 0 {
			prefix, _, _ := strings.Cut(name, "__")
			newNames[i] = prefix
			continue
		}
		for _, pf := range postfixes {
			if pf != "" && strings.HasSuffix(name, pf) {
				newNames[i] = name[:len(name)-len(pf)]
				break
			}
		}
	}
	if err := validateNames(newNames); err != nil {
		return errs.Wrap(err, errs.KindSchema, "AMBIGUOUS_NAMES", "Table.RemovePostfixes")
	}
	t.names = newNames
	t.rebuildIndex()
	return nil
}

// RenamePostfixes rewrites postfix strings in place, e.g. {"__0": "__1"}.
// Validation happens before any mutation.
func (t *Table) RenamePostfixes(mapping map[string]string) error {
	collected := make(map[string]string)
	for oldPf, newPf := range mapping {
		for _, name := range t.names {
			if !isInternalName(name) && strings.HasSuffix(name, oldPf) {
				collected[name] = name[:len(name)-len(oldPf)] + newPf
			}
		}
	}
	return t.RenameColumns(collected)
}

// SupportedPostfixes lists the suffix strings s such that every name in
// prefixes exists with that suffix appended. For a table with columns
// rt, rtmin, rtmax, rt__1, rtmin__1: SupportedPostfixes("rt") reports
// ["", "__1", "max", "min", "min__1"], while SupportedPostfixes("rt",
// "rtmin") reports ["", "__1"].
func (t *Table) SupportedPostfixes(prefixes ...string) []string {
	counts := make(map[string]int)
	for _, prefix := range prefixes {
		seen := make(map[string]bool)
		for _, name := range t.names {
			if strings.HasPrefix(name, prefix) {
				seen[name[len(prefix):]] = true
			}
		}
		for suffix := range seen {
			counts[suffix]++
		}
	}
	var out []string
	for suffix, c := range counts {
		if c == len(prefixes) {
			out = append(out, suffix)
		}
	}
	sort.Strings(out)
	return out
}
