package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

var documentJSON bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, inspect, or remove indexed documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document and its fragments",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

func init() {
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}

	docs, err := svc.Pipeline.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if documentJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	for _, doc := range docs {
		status := string(doc.Status)
		if doc.Status == domain.StatusFailed && doc.Error != "" {
			status = fmt.Sprintf("failed (%s)", doc.Error)
		}
		cmd.Printf("%s  %-9s %4d fragments  %s\n", doc.ID, status, doc.FragmentCount, doc.Path)
	}
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	docs, err := svc.Pipeline.Documents(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	for _, doc := range docs {
		if doc.ID != args[0] {
			continue
		}
		cmd.Printf("ID:        %s\n", doc.ID)
		cmd.Printf("Path:      %s\n", doc.Path)
		cmd.Printf("Title:     %s\n", doc.Title)
		cmd.Printf("Format:    %s\n", doc.Format)
		cmd.Printf("Status:    %s\n", doc.Status)
		if doc.Error != "" {
			cmd.Printf("Error:     %s\n", doc.Error)
		}
		cmd.Printf("Fragments: %d\n", doc.FragmentCount)
		if !doc.IngestedAt.IsZero() {
			cmd.Printf("Ingested:  %s\n", doc.IngestedAt.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	}

	return fmt.Errorf("document %s: %w", args[0], domain.ErrNotFound)
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}

	if err := svc.Pipeline.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}
