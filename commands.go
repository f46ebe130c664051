package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tablekit/pkg/logging"
	"tablekit/pkg/persist"
	"tablekit/pkg/render"
	"tablekit/pkg/table"
	"tablekit/pkg/types"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}

func getBool(cmd *cobra.Command, name string) bool {
	result, _ := cmd.Flags().GetBool(name)
	return result
}

func getInt(cmd *cobra.Command, name string) int {
	result, _ := cmd.Flags().GetInt(name)
	return result
}

func getString(cmd *cobra.Command, name string) string {
	result, _ := cmd.Flags().GetString(name)
	return result
}

// setup loads the config file and initializes logging from it. Every
// command handler calls it first.
func setup(cmd *cobra.Command) *cliConfig {
	cfg, err := loadCLIConfig(getString(cmd, "config"))
	if err != nil {
		fatal("%v", err)
	}
	if level := getString(cmd, "log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := logging.Init(logging.Config{
		Level:      logging.LogLevel(strings.ToUpper(cfg.LogLevel)),
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogPath,
	}); err != nil {
		fatal("%v", err)
	}
	return cfg
}

func openTable(path string) (*table.Table, error) {
	t, err := persist.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return t, nil
}

type columnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Format   string `json:"format,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
	Distinct int    `json:"distinct"`
	Nulls    int    `json:"nulls"`
}

type tableInfo struct {
	Title   string         `json:"title,omitempty"`
	Rows    int            `json:"rows"`
	Meta    map[string]any `json:"meta,omitempty"`
	Columns []columnInfo   `json:"columns"`
}

func describe(t *table.Table) tableInfo {
	names := t.ColNames()
	colTypes := t.ColTypes()
	formats := t.ColFormats()

	info := tableInfo{
		Title:   t.Title(),
		Rows:    t.Len(),
		Meta:    t.Meta(),
		Columns: make([]columnInfo, len(names)),
	}
	for i, name := range names {
		values, _ := t.ColumnValues(name)
		nulls := 0
		distinct := make(map[string]bool)
		for _, v := range values {
			if v == nil {
				nulls++
				continue
			}
			distinct[types.ComputeKey(v)] = true
		}
		info.Columns[i] = columnInfo{
			Name:     name,
			Type:     colTypes[i].Name(),
			Format:   formats[i],
			Hidden:   formats[i] == types.FormatSuppress,
			Distinct: len(distinct),
			Nulls:    nulls,
		}
	}
	return info
}

func infoTable(cmd *cobra.Command, args []string) {
	setup(cmd)
	t, err := openTable(args[0])
	if err != nil {
		fatal("%v", err)
	}
	if !getBool(cmd, "json") {
		fmt.Println(render.InfoPanel(t))
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(describe(t)); err != nil {
		fatal("%v", err)
	}
}

func printTable(cmd *cobra.Command, args []string) {
	cfg := setup(cmd)
	t, err := openTable(args[0])
	if err != nil {
		fatal("%v", err)
	}

	maxRows := cfg.MaxRows
	if cmd.Flags().Changed("max-rows") {
		maxRows = getInt(cmd, "max-rows")
	}
	if getBool(cmd, "plain") {
		if err := t.Print(os.Stdout); err != nil {
			fatal("%v", err)
		}
		return
	}
	opts := render.DefaultOptions
	opts.MaxRows = maxRows
	fmt.Println(render.Table(t, opts))
}

func exportTable(cmd *cobra.Command, args []string) {
	setup(cmd)
	t, err := openTable(args[0])
	if err != nil {
		fatal("%v", err)
	}
	written, err := t.SaveCSV(args[1], !getBool(cmd, "all-columns"))
	if err != nil {
		fatal("%v", errors.Wrapf(err, "exporting %s", args[0]))
	}
	fmt.Println(written)
}

// convertTables exports every given table file to CSV concurrently. Each
// worker owns its table for the whole conversion.
func convertTables(cmd *cobra.Command, args []string) {
	setup(cmd)
	outDir := getString(cmd, "out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fatal("%v", err)
	}

	var g errgroup.Group
	written := make([]string, len(args))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			t, err := openTable(path)
			if err != nil {
				return err
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			out, err := t.SaveCSV(filepath.Join(outDir, base+".csv"), true)
			if err != nil {
				return errors.Wrapf(err, "converting %s", path)
			}
			written[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatal("%v", err)
	}
	for _, out := range written {
		fmt.Println(out)
	}
}
