package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

var (
	chartScope     string
	chartLimit     int
	chartDimension string
	chartFrom      string
	chartTo        string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Compute an analytics chart and print it as JSON",
}

var burndownCmd = &cobra.Command{
	Use:   "burndown <sprint-id>",
	Short: "Burndown chart for a sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		chart, err := services.Analytics.GetBurndown(cmd.Context(), args[0], domain.ScopeType(chartScope))
		if err != nil {
			return MapError(err)
		}
		return printJSON(chart)
	},
}

var velocityCmd = &cobra.Command{
	Use:   "velocity <project-id>",
	Short: "Velocity over recent sprints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		chart, err := services.Analytics.GetVelocity(cmd.Context(), args[0], chartLimit)
		if err != nil {
			return MapError(err)
		}
		return printJSON(chart)
	},
}

var cumulativeFlowCmd = &cobra.Command{
	Use:     "cumulative-flow <project-id>",
	Aliases: []string{"cfd"},
	Short:   "Cumulative flow diagram over a date range",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		from, to, err := flagRange()
		if err != nil {
			return MapError(err)
		}
		chart, err := services.Analytics.GetCumulativeFlow(cmd.Context(), args[0], from, to)
		if err != nil {
			return MapError(err)
		}
		return printJSON(chart)
	},
}

var cycleTimeCmd = &cobra.Command{
	Use:   "cycle-time <project-id>",
	Short: "Cycle time scatter with percentiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		chart, err := services.Analytics.GetCycleTime(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		return printJSON(chart)
	},
}

var distributionCmd = &cobra.Command{
	Use:   "distribution <project-id>",
	Short: "Work distribution along a dimension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		chart, err := services.Analytics.GetWorkDistribution(cmd.Context(), args[0], domain.Dimension(chartDimension))
		if err != nil {
			return MapError(err)
		}
		return printJSON(chart)
	},
}

var issueTrendCmd = &cobra.Command{
	Use:   "trend <project-id>",
	Short: "Created versus resolved issues over a date range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		from, to, err := flagRange()
		if err != nil {
			return MapError(err)
		}
		chart, err := services.Analytics.GetIssueTrend(cmd.Context(), args[0], from, to)
		if err != nil {
			return MapError(err)
		}
		return printJSON(chart)
	},
}

func init() {
	burndownCmd.Flags().StringVar(&chartScope, "scope", "story_points", "Scope metric (story_points, tasks, hours)")
	velocityCmd.Flags().IntVar(&chartLimit, "limit", 6, "Number of recent sprints")
	distributionCmd.Flags().StringVar(&chartDimension, "dimension", "assignee", "Grouping dimension (assignee, priority, type, status)")
	for _, c := range []*cobra.Command{cumulativeFlowCmd, issueTrendCmd} {
		c.Flags().StringVar(&chartFrom, "from", "", "Range start date (default: 30 days before --to)")
		c.Flags().StringVar(&chartTo, "to", "", "Range end date (default: today)")
	}

	chartCmd.AddCommand(burndownCmd, velocityCmd, cumulativeFlowCmd, cycleTimeCmd, distributionCmd, issueTrendCmd)
	RootCmd.AddCommand(chartCmd)
}

func buildServices() (*wiring.AppServices, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return wiring.BuildAppServices(cwd, nil)
}

func flagRange() (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if chartFrom != "" {
		if from, err = normalize.ParseTime(chartFrom); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if chartTo != "" {
		if to, err = normalize.ParseTime(chartTo); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	return from, to, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
