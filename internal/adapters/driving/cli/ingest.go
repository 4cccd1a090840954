package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]...",
	Short: "Index documents for question answering",
	Long: `Indexes the given files into the vector index. Directories are
expanded recursively to the supported formats. Re-ingesting a file whose
content is unchanged is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}

	paths, err := expandPaths(args, svc.Extensions)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("No supported documents found.")
		return nil
	}

	results := svc.Pipeline.IngestAll(cmd.Context(), paths)

	var processed, skipped, failed int
	for _, result := range results {
		switch result.Outcome {
		case driving.IngestProcessed:
			processed++
			cmd.Printf("  indexed  %s (%d fragments)\n", result.Path, result.Fragments)
		case driving.IngestSkipped:
			skipped++
			cmd.Printf("  skipped  %s (unchanged)\n", result.Path)
		case driving.IngestFailed:
			failed++
			cmd.Printf("  failed   %s: %v\n", result.Path, result.Err)
		}
	}

	cmd.Println()
	cmd.Printf("%d indexed, %d skipped, %d failed\n", processed, skipped, failed)

	if failed > 0 && processed == 0 && skipped == 0 {
		return fmt.Errorf("all %d documents failed", failed)
	}
	return nil
}

// expandPaths resolves the argument list to concrete files, walking
// directories for supported extensions.
func expandPaths(args, extensions []string) ([]string, error) {
	supported := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		supported[strings.ToLower(ext)] = struct{}{}
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			// Let ingestion report the missing file in its result.
			paths = append(paths, arg)
			continue
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != arg {
					return filepath.SkipDir
				}
				return nil
			}
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if _, ok := supported[ext]; ok {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}
