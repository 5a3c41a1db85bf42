package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/internal/models"
)

func newExportCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the family to a JSON file",
		Long: `Export every person with their parent and partner links to a portable
JSON file. Use 'kinship import' to restore it, or 'kinship resolve' to query
it offline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := apiClient.Export(cmd.Context())
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling export: %w", err)
			}

			if outputPath == "" {
				outputPath = fmt.Sprintf("kinship-export-%s.json",
					time.Now().UTC().Format("20060102T150405Z"))
			}

			if outputPath == "-" {
				_, err = os.Stdout.Write(out)
				return err
			}

			if err := os.WriteFile(outputPath, out, 0o600); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Exported %d people, %d parent links, %d partnerships to %s\n",
				data.Stats.PersonCount, data.Stats.ParentLinkCount, data.Stats.PartnerLinkCount, outputPath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: kinship-export-<timestamp>.json, use - for stdout)")

	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		overwrite bool
		dryRun    bool
		validate  bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a family export",
		Long: `Import people and links from a JSON export. Existing people are skipped
unless --overwrite is set. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readExport(args[0])
			if err != nil {
				return err
			}

			if validate {
				problems, err := apiClient.ValidateImport(cmd.Context(), data)
				if err != nil {
					return fmt.Errorf("validate: %w", err)
				}
				formatJSON(map[string]any{"valid": len(problems) == 0, "errors": problems})
				if len(problems) > 0 {
					return fmt.Errorf("export has %d problems", len(problems))
				}
				return nil
			}

			result, err := apiClient.Import(cmd.Context(), data, models.ImportOptions{
				OverwriteExisting: overwrite,
				DryRun:            dryRun,
			})
			if result != nil {
				formatJSON(result)
			}
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace people that already exist")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&validate, "validate", false, "Only validate the file")

	return cmd
}

func readExport(path string) (*models.FamilyExport, error) {
	var (
		raw []byte
		err error
	)

	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path) //nolint:gosec // user-supplied path is intentional
	}
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}

	var data models.FamilyExport
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}

	return &data, nil
}
