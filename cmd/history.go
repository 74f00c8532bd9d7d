package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent operations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		if a.history == nil {
			return fmt.Errorf("history database unavailable")
		}

		entries, err := a.history.Recent(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "暂无历史记录")
			return nil
		}

		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(out, "%s  [%s] %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Operation, e.Input)
			if e.Result != "" {
				fmt.Fprintf(out, "    → %s\n", e.Result)
			}
		}
		return nil
	})
}
