package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

var (
	dashboardProject string
	dashboardSprint  string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("SPRINTLENS_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialModel(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardProject, "project", "default", "Project to display")
	dashboardCmd.Flags().StringVar(&dashboardSprint, "sprint", "", "Sprint to report on (optional)")
	RootCmd.AddCommand(dashboardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var trendUp = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var trendDown = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type model struct {
	table   table.Model
	project string
	trend   string
	average float64
	report  *domain.SprintReport
	err     error
}

func initialModel(ctx context.Context) model {
	services, err := buildServices()
	if err != nil {
		return model{err: err}
	}
	defer services.Close()

	velocity, err := services.Analytics.GetVelocity(ctx, dashboardProject, 6)
	if err != nil {
		return model{err: err}
	}

	var report *domain.SprintReport
	if dashboardSprint != "" {
		report, err = services.Analytics.GetSprintReport(ctx, dashboardSprint)
		if err != nil {
			return model{err: err}
		}
	}

	columns := []table.Column{
		{Title: "Sprint", Width: 24},
		{Title: "Committed", Width: 10},
		{Title: "Completed", Width: 10},
	}

	rows := []table.Row{}
	var committed, completed []domain.ChartDataPoint
	for _, series := range velocity.Series {
		switch series.Name {
		case "Committed":
			committed = series.Data
		case "Completed":
			completed = series.Data
		}
	}
	for i := range committed {
		done := "-"
		if i < len(completed) {
			done = fmt.Sprintf("%.1f", completed[i].Value)
		}
		rows = append(rows, table.Row{committed[i].Label, fmt.Sprintf("%.1f", committed[i].Value), done})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	trend, _ := velocity.Metadata["trend"].(string)
	average, _ := velocity.Metadata["average_velocity"].(float64)

	return model{
		table:   t,
		project: dashboardProject,
		trend:   trend,
		average: average,
		report:  report,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("SprintLens — %s", m.project))

	trendView := fmt.Sprintf("Velocity: %.1f avg, trend %s", m.average, m.trend)
	switch m.trend {
	case "increasing":
		trendView = trendUp.Render(trendView)
	case "decreasing":
		trendView = trendDown.Render(trendView)
	}

	reportView := ""
	if m.report != nil {
		reportView = "\n" + renderReport(m.report)
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			trendView,
			"\nSprint History:",
			m.table.View(),
			reportView,
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
