package main

import (
	"github.com/spf13/cobra"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info file",
		Short: "Show schema and summary statistics for a stored table",
		Args:  cobra.ExactArgs(1),
		Run:   infoTable}
	cmd.Flags().Bool("json", false, "machine readable output")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "print file",
		Short: "Render a stored table in the terminal",
		Args:  cobra.ExactArgs(1),
		Run:   printTable}
	cmd.Flags().Int("max-rows", 0, "maximum rows to render, 0 for all")
	cmd.Flags().Bool("plain", false, "unstyled fixed-width output")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "export file out.csv",
		Short: "Export a stored table to a CSV file",
		Args:  cobra.ExactArgs(2),
		Run:   exportTable}
	cmd.Flags().Bool("all-columns", false, "include hidden columns")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "convert file+",
		Short: "Convert stored tables to CSV in bulk",
		Args:  cobra.MinimumNArgs(1),
		Run:   convertTables}
	cmd.Flags().String("out-dir", ".", "directory for the CSV files")
	root.AddCommand(cmd)
}

func main() {
	root := &cobra.Command{Use: "tablekit"}
	root.PersistentFlags().String("config", "", "config file (default: ~/.tablekit.ini)")
	root.PersistentFlags().String("log-level", "", "override log level: DEBUG, INFO, WARN or ERROR")
	addCommands(root)
	root.Execute()
}
