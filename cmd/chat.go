package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/adalundhe/metra/core/assistant"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive assistant conversation",
	Long: `Start an interactive conversation with the ReadingType assistant.
Requires an API key for the configured provider (ANTHROPIC_API_KEY or
OPENAI_API_KEY). The model calls the deterministic core through tools; it
never computes identifiers itself.

Type 'exit' or 'quit' to leave, 'clear' to reset the conversation.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	return runWithApp(appOptions{watch: true, provider: true}, func(ctx context.Context, a *app) error {
		session, err := a.assistant.NewChatSession()
		if err != nil {
			if err == assistant.ErrNoProvider {
				return fmt.Errorf("no API key configured; set ANTHROPIC_API_KEY or OPENAI_API_KEY")
			}
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "🤖 ReadingTypeID智能编码助手已就绪，输入'exit'退出。")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Fprint(out, "\n您: ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())

			switch input {
			case "":
				continue
			case "exit", "quit", "退出":
				fmt.Fprintln(out, "👋 再见！")
				return nil
			case "clear":
				session.Clear()
				fmt.Fprintln(out, "🧹 对话已重置")
				continue
			}

			fmt.Fprint(out, "\n助手: ")
			_, err := session.Send(ctx, input, func(text string) {
				fmt.Fprint(out, text)
			})
			fmt.Fprintln(out)
			if err != nil {
				a.logger.Error("chat turn failed", "error", err)
				fmt.Fprintf(out, "❌ 出错了: %v\n", err)
			}
		}
		return scanner.Err()
	})
}
