package provider

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// SyntheticProvider generates deterministic project data from a seed, for
// isolated runs and tests. The same seed always yields the same payloads,
// so cached and fresh computations stay comparable.
type SyntheticProvider struct {
	seed     int64
	itemsPer int
	now      func() time.Time
}

// NewSyntheticProvider creates a generator. A zero seed falls back to 1.
func NewSyntheticProvider(seed int64) *SyntheticProvider {
	if seed == 0 {
		seed = 1
	}
	return &SyntheticProvider{seed: seed, itemsPer: 24, now: time.Now}
}

var (
	syntheticStatuses   = []string{"To Do", "In Progress", "In Review", "Done", "Done", "Done", "Blocked"}
	syntheticTypes      = []string{"Story", "Story", "Bug", "Task", "Sub-task"}
	syntheticPriorities = []string{"Highest", "High", "Medium", "Medium", "Low"}
	syntheticAssignees  = []string{"ada", "grace", "linus", "barbara", ""}
	syntheticPoints     = []float64{1, 2, 3, 5, 8, 13}
)

// FetchSprint generates a two-week sprint ending today with a committed
// scope, a couple of mid-sprint additions, and one removal.
func (p *SyntheticProvider) FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.seed + int64(len(sprintID))))

	end := p.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -14)

	payload := &normalize.SprintPayload{
		Sprint: map[string]any{
			"id":         sprintID,
			"name":       fmt.Sprintf("Sprint %s", sprintID),
			"status":     "active",
			"start_date": start.Format(time.RFC3339),
			"end_date":   end.Format(time.RFC3339),
		},
		Tasks:       p.generateItems(rng, sprintID, start, p.itemsPer),
		TeamMembers: []string{"ada", "grace", "linus", "barbara"},
	}

	payload.AddedItems = p.generateItems(rng, sprintID+"-added", start.AddDate(0, 0, 3), 2)
	payload.RemovedItems = p.generateItems(rng, sprintID+"-removed", start.AddDate(0, 0, 5), 1)

	return payload, nil
}

// FetchSprintHistory generates a plausible committed/completed history.
func (p *SyntheticProvider) FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 6
	}
	rng := rand.New(rand.NewSource(p.seed + int64(len(projectID))))

	end := p.now().UTC().Truncate(24 * time.Hour)
	history := make([]domain.SprintSummary, 0, limit)
	for i := 0; i < limit; i++ {
		committed := float64(20 + rng.Intn(21))
		completed := committed * (0.6 + rng.Float64()*0.5)
		history = append(history, domain.SprintSummary{
			ID:        fmt.Sprintf("%s-%d", projectID, i+1),
			Name:      fmt.Sprintf("Sprint %d", i+1),
			EndDate:   end.AddDate(0, 0, -14*(limit-i-1)),
			Committed: committed,
			Completed: float64(int(completed)),
		})
	}
	return history, nil
}

// FetchWorkItems generates a backlog spread over the last sixty days.
func (p *SyntheticProvider) FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.seed + int64(len(projectID))*7))
	start := p.now().UTC().AddDate(0, 0, -60)
	return p.generateItems(rng, projectID, start, p.itemsPer*3), nil
}

// generateItems builds raw work items in upstream vocabulary so the
// payloads exercise the normalizer the same way a real provider would.
func (p *SyntheticProvider) generateItems(rng *rand.Rand, prefix string, notBefore time.Time, count int) []map[string]any {
	items := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		status := syntheticStatuses[rng.Intn(len(syntheticStatuses))]
		created := notBefore.AddDate(0, 0, rng.Intn(10)).Add(time.Duration(rng.Intn(24)) * time.Hour)

		item := map[string]any{
			"id":           fmt.Sprintf("%s-%d", prefix, i+1),
			"title":        fmt.Sprintf("Generated item %d", i+1),
			"status":       status,
			"type":         syntheticTypes[rng.Intn(len(syntheticTypes))],
			"priority":     syntheticPriorities[rng.Intn(len(syntheticPriorities))],
			"story_points": syntheticPoints[rng.Intn(len(syntheticPoints))],
			"assigned_to":  syntheticAssignees[rng.Intn(len(syntheticAssignees))],
			"created_at":   created.Format(time.RFC3339),
		}

		if status == "Done" {
			completed := created.AddDate(0, 0, 1+rng.Intn(12))
			item["completed_at"] = completed.Format(time.RFC3339)
			item["status_history"] = []any{
				map[string]any{"date": created.Add(12 * time.Hour).Format(time.RFC3339), "status": "In Progress"},
				map[string]any{"date": completed.Format(time.RFC3339), "status": "Done"},
			}
		}

		items = append(items, item)
	}
	return items
}
