package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

var (
	askTopK     int
	askMinScore float64
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the most relevant indexed fragments for the question and
generates an answer grounded on them, citing the source passages.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of fragments to retrieve (default from config)")
	askCmd.Flags().Float64Var(&askMinScore, "min-score", 0, "minimum similarity score for retrieved fragments")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	answer, err := svc.Pipeline.Ask(ctx, domain.Query{
		Question: args[0],
		TopK:     askTopK,
		MinScore: askMinScore,
	})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		title := src.DocumentTitle
		if title == "" {
			title = src.DocumentID
		}
		cmd.Printf("  [%d] %s, fragment %d (%.2f)\n", i+1, title, src.Position, src.Score)
	}
	return nil
}
