package cli

import (
	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the materials listing and replace the cached copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := container.Materials.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			ok("Listed %d files in %d subjects from %s", resp.TotalFiles, resp.Subjects, resp.Source)
			return nil
		},
	}
}
