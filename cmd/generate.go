package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var generateFields []string

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate a ReadingTypeID from a measurement description",
	Long: `Generate a ReadingTypeID by classifying a free-text measurement
description into the 16 semantic fields.

Examples:
  metra generate "储能PCS三相有功功率15分钟间隔数据"
  metra generate "A相电压瞬时值"
  metra generate --field measurementKind=37 --field uom=38 ""`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringArrayVar(&generateFields, "field", nil,
		"Set a field explicitly as name=value (repeatable, skips classification)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")

	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		if len(generateFields) > 0 {
			values, err := parseFieldArgs(generateFields)
			if err != nil {
				return err
			}
			result, err := a.assistant.GenerateFromFields(ctx, values)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.assistant.RenderGenerate(description, result))
			return nil
		}

		result := a.assistant.Generate(ctx, description)
		fmt.Fprintln(cmd.OutOrStdout(), a.assistant.RenderGenerate(description, result))
		return nil
	})
}

// parseFieldArgs parses repeated name=value flags into field assignments.
func parseFieldArgs(pairs []string) (map[string]int, error) {
	values := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --field %q (want name=value)", pair)
		}
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid --field %q: value must be an integer", pair)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}
