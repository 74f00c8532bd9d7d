package cmd

import (
	"context"
	"fmt"

	"github.com/adalundhe/metra/core/assistant"
	"github.com/spf13/cobra"
)

var (
	recordsPage     int
	recordsPerPage  int
	recordsCategory string

	recordsAddDescription string
	recordsAddCategory    string

	recordsFilterCategory string
	recordsFilterKind     string

	recordsExportFormat   string
	recordsExportCategory string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage the ReadingType code library",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved codes page by page",
	Args:  cobra.NoArgs,
	RunE:  runRecordsList,
}

var recordsAddCmd = &cobra.Command{
	Use:   "add <name> <reading-type-id>",
	Short: "Add a code to the library",
	Long: `Add a named code to the library. The identifier is validated
before saving; duplicate names and identifiers are rejected.

Example:
  metra records add "储能有功功率" "0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0" \
    --description "储能PCS三相有功功率" --category 储能`,
	Args: cobra.ExactArgs(2),
	RunE: runRecordsAdd,
}

var recordsFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter the library by category and measurement kind",
	Args:  cobra.NoArgs,
	RunE:  runRecordsFilter,
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library to a timestamped file",
	Args:  cobra.NoArgs,
	RunE:  runRecordsExport,
}

var recordsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library and dictionary statistics",
	Args:  cobra.NoArgs,
	RunE:  runRecordsStats,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsAddCmd)
	recordsCmd.AddCommand(recordsFilterCmd)
	recordsCmd.AddCommand(recordsExportCmd)
	recordsCmd.AddCommand(recordsStatsCmd)

	recordsListCmd.Flags().IntVarP(&recordsPage, "page", "p", 1, "Page number")
	recordsListCmd.Flags().IntVar(&recordsPerPage, "per-page", 20, "Records per page")
	recordsListCmd.Flags().StringVarP(&recordsCategory, "category", "c", "", "Filter by category")

	recordsAddCmd.Flags().StringVarP(&recordsAddDescription, "description", "d", "", "Code description")
	recordsAddCmd.Flags().StringVarP(&recordsAddCategory, "category", "c", "", "Code category")

	recordsFilterCmd.Flags().StringVarP(&recordsFilterCategory, "category", "c", "", "Category filter (glob patterns allowed)")
	recordsFilterCmd.Flags().StringVarP(&recordsFilterKind, "kind", "k", "", "Measurement kind substring filter")

	recordsExportCmd.Flags().StringVar(&recordsExportFormat, "format", "csv", "Export format (csv or json)")
	recordsExportCmd.Flags().StringVarP(&recordsExportCategory, "category", "c", "", "Export only one category")
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		out := assistant.RenderLibrary(a.records.All(), recordsPage, recordsPerPage, recordsCategory)
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	})
}

func runRecordsAdd(cmd *cobra.Command, args []string) error {
	name, id := args[0], args[1]

	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		record, err := a.assistant.AddToLibrary(ctx, name, id, recordsAddDescription, recordsAddCategory)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 已添加编码 #%d: %s\n🔢 %s\n", record.ID, record.Name, record.ReadingTypeID)
		return nil
	})
}

func runRecordsFilter(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		matched := a.records.Filter(recordsFilterCategory, recordsFilterKind)
		fmt.Fprintln(cmd.OutOrStdout(), assistant.RenderFilter(matched, recordsFilterCategory, recordsFilterKind))
		return nil
	})
}

func runRecordsExport(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		path, err := a.assistant.Export(ctx, recordsExportFormat, recordsExportCategory)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 数据已导出到文件: %s\n", path)
		return nil
	})
}

func runRecordsStats(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		recordStats, dictStats := a.assistant.Statistics()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📊 编码库统计 (共%d条):\n", recordStats.TotalRecords)
		for category, count := range recordStats.CategoryStats {
			fmt.Fprintf(out, "  类别 %s: %d\n", category, count)
		}
		for source, count := range recordStats.SourceStats {
			fmt.Fprintf(out, "  来源 %s: %d\n", source, count)
		}

		fmt.Fprintf(out, "\n📚 字典统计 (共%d个字段):\n", len(dictStats))
		for _, fs := range dictStats {
			fmt.Fprintf(out, "  %s (%s): %d个值 (自定义 %d)\n", fs.Field, fs.DisplayName, fs.TotalValues, fs.CustomValues)
		}
		return nil
	})
}
