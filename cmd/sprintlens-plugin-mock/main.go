package main

import (
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/go-plugin"

	providerPlugin "github.com/felixgeelhaar/sprintlens/internal/infrastructure/provider/plugin"
	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// MockProvider returns a small fixed dataset, for exercising the plugin
// transport end to end without external credentials.
type MockProvider struct{}

func (m *MockProvider) Init(config map[string]string) error {
	log.Printf("mock provider initialized with %d config keys", len(config))
	return nil
}

func (m *MockProvider) Sprint(sprintID string) (*normalize.SprintPayload, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -14)
	return &normalize.SprintPayload{
		Sprint: map[string]any{
			"id":         sprintID,
			"name":       fmt.Sprintf("Mock Sprint %s", sprintID),
			"status":     "active",
			"start_date": start.Format(time.RFC3339),
			"end_date":   end.Format(time.RFC3339),
		},
		Tasks: m.items(start),
	}, nil
}

func (m *MockProvider) History(projectID string, limit int) ([]domain.SprintSummary, error) {
	if limit <= 0 || limit > 3 {
		limit = 3
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	history := make([]domain.SprintSummary, 0, limit)
	for i := 0; i < limit; i++ {
		history = append(history, domain.SprintSummary{
			ID:        fmt.Sprintf("%s-%d", projectID, i+1),
			Name:      fmt.Sprintf("Sprint %d", i+1),
			EndDate:   end.AddDate(0, 0, -14*(limit-i-1)),
			Committed: 20,
			Completed: float64(14 + 2*i),
		})
	}
	return history, nil
}

func (m *MockProvider) WorkItems(projectID string) ([]map[string]any, error) {
	return m.items(time.Now().UTC().AddDate(0, 0, -30)), nil
}

func (m *MockProvider) items(start time.Time) []map[string]any {
	done := start.AddDate(0, 0, 5)
	return []map[string]any{
		{
			"id":           "MOCK-1",
			"title":        "Finished story",
			"status":       "Done",
			"type":         "Story",
			"story_points": 5.0,
			"created_at":   start.Format(time.RFC3339),
			"completed_at": done.Format(time.RFC3339),
		},
		{
			"id":           "MOCK-2",
			"title":        "Story in flight",
			"status":       "In Progress",
			"type":         "Story",
			"story_points": 3.0,
			"created_at":   start.AddDate(0, 0, 1).Format(time.RFC3339),
		},
		{
			"id":         "MOCK-3",
			"title":      "Waiting bug",
			"status":     "To Do",
			"type":       "Bug",
			"priority":   "High",
			"created_at": start.AddDate(0, 0, 2).Format(time.RFC3339),
		},
	}
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: providerPlugin.HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			"provider": &providerPlugin.ProviderPlugin{Impl: &MockProvider{}},
		},
	})
}
