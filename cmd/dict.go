package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dictExportField  string
	dictExportFormat string
)

var dictCmd = &cobra.Command{
	Use:   "dict [field]",
	Short: "Inspect and manage the field dictionaries",
	Long: `Show the ReadingType field dictionaries. Without arguments, lists
the 16 fields; with a field name, lists that field's values.

Examples:
  metra dict
  metra dict measurementKind
  metra dict add uom 170 测试单位 "自定义的测试单位"
  metra dict export --field uom --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDict,
}

var dictAddCmd = &cobra.Command{
	Use:   "add <field> <value> <display-name> [description]",
	Short: "Add a custom value to a field dictionary",
	Args:  cobra.RangeArgs(3, 4),
	RunE:  runDictAdd,
}

var dictExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export dictionaries to a timestamped file",
	Args:  cobra.NoArgs,
	RunE:  runDictExport,
}

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictExportCmd)

	dictExportCmd.Flags().StringVar(&dictExportField, "field", "", "Export a single field (default: all)")
	dictExportCmd.Flags().StringVar(&dictExportFormat, "format", "csv", "Export format (csv or json)")
}

func runDict(cmd *cobra.Command, args []string) error {
	var field string
	if len(args) == 1 {
		field = args[0]
	}

	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		fmt.Fprintln(cmd.OutOrStdout(), a.assistant.RenderDictionary(field))
		return nil
	})
}

func runDictAdd(cmd *cobra.Command, args []string) error {
	field, value, display := args[0], args[1], args[2]
	var description string
	if len(args) == 4 {
		description = args[3]
	}

	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		if err := a.dict.AddCustomValue(field, value, display, description); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 已添加 %s.%s: %s\n", field, value, display)
		return nil
	})
}

func runDictExport(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		path, err := a.dict.Export(a.dirs.ExportDir(), dictExportField, dictExportFormat)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 字典已导出到: %s\n", path)
		return nil
	})
}
