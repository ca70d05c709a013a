package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/models"
)

var (
	subjectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	markStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

type selectionFlags struct {
	year     string
	semester string
	subject  string
	query    string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.year, "year", "", "Year number or 'all'")
	cmd.Flags().StringVar(&f.semester, "semester", "", "Semester number or 'all'")
	cmd.Flags().StringVar(&f.subject, "subject", "", "Subject code (implies its year and semester)")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Search query")
}

func (f *selectionFlags) selection(registry *models.SubjectRegistry) (models.ActiveSelection, error) {
	values := url.Values{}
	for key, v := range map[string]string{"year": f.year, "semester": f.semester, "subject": f.subject, "q": f.query} {
		if v != "" {
			values.Set(key, v)
		}
	}
	return models.SelectionFromQuery(values, registry)
}

func newListCmd() *cobra.Command {
	var (
		flags   selectionFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List materials grouped by subject",
		Long: `List materials grouped by subject, narrowed by year, semester, subject and query.

Examples:
  klmaterial list --year 1 --semester 2
  klmaterial list --subject DM -q co1
  klmaterial list -q notes --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := flags.selection(container.Registry)
			if err != nil {
				return err
			}
			page, err := container.Materials.Page(cmd.Context(), sel, "")
			if page == nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			return printPage(page, err)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printPage(page *dto.MaterialsPage, listErr error) error {
	switch page.State {
	case dto.PageStateReady:
	case dto.PageStateNoResults:
		warn("No materials match the current filters")
		return nil
	case dto.PageStateEmpty:
		warn("No materials have been published yet")
		return nil
	default:
		return listErr
	}

	for _, g := range page.Groups {
		fmt.Println(subjectStyle.Render(fmt.Sprintf("%s %s", g.Icon, g.Name)), dimStyle.Render(fmt.Sprintf("(%d)", g.FileCount)))
		for _, card := range g.Cards {
			line := fmt.Sprintf("  %s %s", card.Icon, highlightTerminal(card.DisplayName, page.Selection.Query))
			details := []string{card.Extension}
			if card.SizeLabel != "" {
				details = append(details, card.SizeLabel)
			}
			if card.RatingCount > 0 {
				details = append(details, fmt.Sprintf("★ %.1f (%d)", card.Rating, card.RatingCount))
			}
			if card.Downloads > 0 {
				details = append(details, strconv.FormatInt(card.Downloads, 10)+" downloads")
			}
			fmt.Println(line, dimStyle.Render(strings.Join(details, " · ")))
		}
		fmt.Println()
	}
	source := page.Source
	if page.CacheHit {
		source = "cache"
	}
	ok("%d files in %d subjects (source: %s)", page.TotalFiles, len(page.Groups), source)
	return nil
}

// highlightTerminal styles case-insensitive query matches for terminal output.
func highlightTerminal(text, query string) string {
	query = strings.ReplaceAll(strings.TrimSpace(query), "_", " ")
	if query == "" {
		return text
	}
	lower, needle := strings.ToLower(text), strings.ToLower(query)
	if len(lower) != len(text) {
		return text
	}
	var b strings.Builder
	for {
		i := strings.Index(lower, needle)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(markStyle.Render(text[i : i+len(needle)]))
		text, lower = text[i+len(needle):], lower[i+len(needle):]
	}
}
