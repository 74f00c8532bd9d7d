package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <reading-type-id>",
	Short: "Validate a ReadingTypeID and explain its fields",
	Long: `Validate a ReadingTypeID's format and resolve every field value
against the dictionaries.

Example:
  metra validate "0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0"`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		result := a.assistant.Validate(ctx, args[0])
		fmt.Fprintln(cmd.OutOrStdout(), a.assistant.RenderValidate(args[0], result))
		if !result.Valid {
			return fmt.Errorf("invalid reading type id")
		}
		return nil
	})
}
