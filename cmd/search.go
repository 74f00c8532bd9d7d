package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/adalundhe/metra/core/assistant"
	"github.com/spf13/cobra"
)

var (
	searchDict  bool
	searchField string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the code library or the field dictionaries",
	Long: `Search the code library for saved ReadingType records by name, or
the field dictionaries with --dict.

Examples:
  metra search 有功功率
  metra search --dict 电压
  metra search --dict --field uom 瓦特`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchDict, "dict", false, "Search the field dictionaries instead of the code library")
	searchCmd.Flags().StringVar(&searchField, "field", "", "Restrict dictionary search to one field")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum number of dictionary matches")
}

func runSearch(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")

	return runWithApp(appOptions{}, func(ctx context.Context, a *app) error {
		if searchDict {
			limit := searchLimit
			if limit <= 0 {
				limit = a.config.Get().Search.Limit
			}
			matches := a.assistant.SearchDictionary(ctx, term, searchField, limit)
			fmt.Fprintln(cmd.OutOrStdout(), assistant.RenderDictMatches(term, matches))
			return nil
		}

		exact, fuzzy := a.assistant.SearchCodes(ctx, term)
		fmt.Fprintln(cmd.OutOrStdout(), assistant.RenderSearch(term, exact, fuzzy))
		return nil
	})
}
