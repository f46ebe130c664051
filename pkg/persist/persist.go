// Package persist round-trips tables through a small binary format: a
// textual version header line followed by a gob payload of schema and
// rows. Derived state like sortedness flags is never serialized; loading
// rebuilds the table through its constructor so everything transient is
// re-derived.
package persist

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tablekit/pkg/errs"
	"tablekit/pkg/logging"
	"tablekit/pkg/table"
	"tablekit/pkg/types"
)

const (
	// Version tags every file written by Store.
	Version = "1.1.0"

	// MinSupportedVersion is the oldest file version Load accepts.
	MinSupportedVersion = "1.0.0"
)

// cell wraps one table cell for encoding. gob rejects bare nil interface
// values inside slices; a nil struct field is simply a zero field and
// round-trips cleanly.
type cell struct {
	V any
}

type payload struct {
	Names   []string
	Types   []types.Type
	Formats []string
	Rows    [][]cell
	Title   string
	Meta    map[string]any
}

func init() {
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register("")
	gob.Register(false)
	gob.Register([]any(nil))
	gob.Register(map[string]any(nil))
}

// Register records an opaque cell or meta value type with the codec.
// Every concrete type stored in an object column or in table meta must be
// registered before Store and Load, unless it implements its own gob or
// binary (un)marshalling.
func Register(v any) {
	gob.Register(v)
}

// Store writes the table to path. An existing file is refused unless
// overwrite is set.
func Store(t *table.Table, path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errs.Newf(errs.KindIO, "EXISTS",
				"%s exists, pass overwrite to replace it", path)
		}
	}

	rows := make([][]cell, t.Len())
	for i := 0; i < t.Len(); i++ {
		row, err := t.Row(i)
		if err != nil {
			return err
		}
		cells := make([]cell, len(row))
		for j, v := range row {
			cells[j] = cell{V: v}
		}
		rows[i] = cells
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "version=%s\n", Version)
	enc := gob.NewEncoder(&body)
	err := enc.Encode(payload{
		Names:   t.ColNames(),
		Types:   t.ColTypes(),
		Formats: t.ColFormats(),
		Rows:    rows,
		Title:   t.Title(),
		Meta:    t.Meta(),
	})
	if err != nil {
		return errs.Wrap(err, errs.KindPersist, "ENCODE_FAILED", "persist.Store")
	}

	if err := os.WriteFile(path, body.Bytes(), 0o644); err != nil {
		return errs.Wrap(err, errs.KindIO, "WRITE_FAILED", "persist.Store")
	}
	logging.WithPath(path).Info("table stored", "rows", t.Len(), "version", Version)
	return nil
}

// Load reads a table written by Store. Files older than
// MinSupportedVersion are rejected with an error naming their version.
// The returned table records the absolute source path under the
// "loaded_from" meta key.
func Load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindIO, "OPEN_FAILED", "persist.Load")
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, errs.Wrap(err, errs.KindPersist, "BAD_HEADER", "persist.Load")
	}
	version, ok := strings.CutPrefix(strings.TrimSuffix(header, "\n"), "version=")
	if !ok {
		return nil, errs.Newf(errs.KindPersist, "BAD_HEADER",
			"%s does not start with a version line", path)
	}
	if err := checkVersion(version); err != nil {
		return nil, err
	}

	var p payload
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, errs.Wrap(err, errs.KindPersist, "DECODE_FAILED", "persist.Load").
			WithDetail("file version %s", version)
	}

	rows := make([][]any, len(p.Rows))
	for i, cells := range p.Rows {
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c.V
		}
		rows[i] = row
	}

	t, err := table.New(p.Names, p.Types, p.Formats, rows, p.Title, p.Meta)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindPersist, "BAD_PAYLOAD", "persist.Load")
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		t.Meta()["loaded_from"] = abs
	}
	return t, nil
}

func checkVersion(version string) error {
	got, err := parseVersion(version)
	if err != nil {
		return err
	}
	min, err := parseVersion(MinSupportedVersion)
	if err != nil {
		return err
	}
	for i := range got {
		if got[i] < min[i] {
			return errs.Newf(errs.KindPersist, "UNSUPPORTED_VERSION",
				"file version %s is older than the supported minimum %s",
				version, MinSupportedVersion)
		}
		if got[i] > min[i] {
			break
		}
	}
	return nil
}

func parseVersion(s string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return out, errs.Newf(errs.KindPersist, "BAD_VERSION",
			"version %q is not of the form X.Y.Z", s)
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return out, errs.Newf(errs.KindPersist, "BAD_VERSION",
				"version %q is not of the form X.Y.Z", s)
		}
		out[i] = n
	}
	return out, nil
}
