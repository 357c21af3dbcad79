package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

var reportJSON bool

var reportHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var concernStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

var reportCmd = &cobra.Command{
	Use:   "report <sprint-id>",
	Short: "Aggregate a sprint into a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		report, err := services.Analytics.GetSprintReport(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}

		if reportJSON {
			return printJSON(report)
		}
		fmt.Println(renderReport(report))
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report as JSON")
	RootCmd.AddCommand(reportCmd)
}

func renderReport(r *domain.SprintReport) string {
	var b strings.Builder

	title := r.SprintName
	if title == "" {
		title = r.SprintID
	}
	b.WriteString(reportHeaderStyle.Render(fmt.Sprintf("Sprint Report — %s", title)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Duration:    %s → %s (%d days)\n",
		r.Duration.Start.Format("2006-01-02"), r.Duration.End.Format("2006-01-02"), r.Duration.Days)
	fmt.Fprintf(&b, "Commitment:  %.1f planned, %.1f completed (%.0f%%)\n",
		r.Commitment.PlannedPoints, r.Commitment.CompletedPoints, r.Commitment.CompletionRate*100)
	fmt.Fprintf(&b, "Items:       %d total, %d completed\n",
		r.Commitment.TotalItems, r.Commitment.CompletedItems)
	fmt.Fprintf(&b, "Scope:       +%d / -%d (stability %.2f)\n",
		r.ScopeChanges.Added, r.ScopeChanges.Removed, r.ScopeChanges.Stability)
	fmt.Fprintf(&b, "Velocity:    %.1f points, team of %d\n",
		r.TeamPerformance.Velocity, r.TeamPerformance.TeamSize)

	if len(r.WorkBreakdown) > 0 {
		b.WriteString("Breakdown:   ")
		parts := make([]string, 0, len(r.WorkBreakdown))
		for kind, count := range r.WorkBreakdown {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, count))
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteString("\n")
	}

	if len(r.Highlights) > 0 {
		b.WriteString("\n")
		b.WriteString(highlightStyle.Render("Highlights:"))
		b.WriteString("\n")
		for _, h := range r.Highlights {
			fmt.Fprintf(&b, "  + %s\n", h)
		}
	}
	if len(r.Concerns) > 0 {
		b.WriteString("\n")
		b.WriteString(concernStyle.Render("Concerns:"))
		b.WriteString("\n")
		for _, c := range r.Concerns {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}

	return b.String()
}
