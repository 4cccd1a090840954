package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-answering session",
	Long: `Opens an interactive chat over the indexed documents. Each answer
cites the passages it was grounded on.

Controls:
  Enter - Ask
  ↑/↓   - Scroll transcript
  Esc   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := svc.Embedder.Ping(ctx); err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	if err := svc.LLM.Ping(ctx); err != nil {
		return fmt.Errorf("language model: %w", err)
	}

	return tui.Run(ctx, svc.Pipeline)
}
