package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/noah-isme/klmaterial-hub/internal/service"
	"github.com/noah-isme/klmaterial-hub/pkg/storage"
)

func newExportCmd() *cobra.Command {
	var (
		flags     selectionFlags
		format    string
		out       string
		dir       string
		retention time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the narrowed catalog as CSV or PDF",
		Long: `Export the materials catalog, narrowed like 'list', to a CSV or PDF file.

Examples:
  klmaterial export --format pdf --year 1
  klmaterial export --subject DS -o ds.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := flags.selection(container.Registry)
			if err != nil {
				return err
			}
			result, err := container.Exports.Generate(cmd.Context(), sel, format)
			if err != nil {
				return err
			}
			size := humanize.Bytes(uint64(len(result.Payload)))
			if out != "" {
				if err := os.WriteFile(out, result.Payload, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				ok("Wrote %d rows to %s (%s)", result.Rows, out, size)
				return nil
			}

			exports, err := storage.NewExportDir(dir)
			if err != nil {
				return err
			}
			path, err := exports.Save(result.Filename, result.Payload)
			if err != nil {
				return err
			}
			ok("Wrote %d rows to %s (%s)", result.Rows, path, size)
			if retention > 0 {
				removed, err := exports.Prune(retention)
				if err != nil {
					warn("prune exports: %v", err)
				} else if len(removed) > 0 {
					ok("Pruned %d old exports", len(removed))
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", service.ExportFormatCSV, "csv or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: a generated name inside --dir)")
	cmd.Flags().StringVar(&dir, "dir", "./exports", "Directory for generated export files")
	cmd.Flags().DurationVar(&retention, "retention", 0, "Remove exports in --dir older than this (0 keeps all)")
	return cmd
}
