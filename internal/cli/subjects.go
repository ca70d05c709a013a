package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSubjectsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Show the subject registry by year and semester",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := container.Subjects.List()
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			for _, year := range resp.Tree {
				fmt.Println(subjectStyle.Render(fmt.Sprintf("Year %d", year.Year)))
				for _, sem := range year.Semesters {
					fmt.Println(dimStyle.Render(fmt.Sprintf("  Semester %d", sem.Semester)))
					for _, code := range sem.Subjects {
						subject, _ := container.Subjects.Get(code)
						fmt.Printf("    %s %-5s %s\n", subject.Icon, subject.Code, subject.Name)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
