package charts

import (
	"testing"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// cycleItem completes id exactly days whole days after its in-progress
// transition.
func cycleItem(id string, days int) domain.WorkItem {
	start := day(2026, 2, 2)
	completed := start.AddDate(0, 0, days)
	return domain.WorkItem{
		ID:          id,
		Status:      domain.StatusDone,
		CreatedAt:   start.AddDate(0, 0, -7),
		CompletedAt: tptr(completed),
		StatusHistory: []domain.StatusChange{
			{Date: start, Status: domain.StatusInProgress},
		},
	}
}

func TestCycleTime_Percentiles(t *testing.T) {
	items := []domain.WorkItem{
		cycleItem("CT-1", 1),
		cycleItem("CT-2", 2),
		cycleItem("CT-3", 3),
		cycleItem("CT-4", 4),
		cycleItem("CT-5", 5),
		cycleItem("CT-6", 20),
	}

	chart, err := CycleTime(items)
	if err != nil {
		t.Fatalf("CycleTime failed: %v", err)
	}

	if count, _ := chart.Metadata["count"].(int); count != 6 {
		t.Fatalf("Expected 6 measures, got %d", count)
	}
	if med, _ := chart.Metadata["median_days"].(float64); !almostEqual(med, 3.5) {
		t.Errorf("Expected median 3.5, got %f", med)
	}
	if p85, _ := chart.Metadata["p85"].(float64); !almostEqual(p85, 8.75) {
		t.Errorf("Expected p85 8.75, got %f", p85)
	}
	if p95, _ := chart.Metadata["p95"].(float64); !almostEqual(p95, 16.25) {
		t.Errorf("Expected p95 16.25, got %f", p95)
	}

	outliers, ok := chart.Metadata["outliers"].([]string)
	if !ok {
		t.Fatal("expected outliers metadata")
	}
	if len(outliers) != 1 || outliers[0] != "CT-6" {
		t.Errorf("Expected only CT-6 above p95, got %v", outliers)
	}
}

func TestCycleTime_ReferenceLines(t *testing.T) {
	items := []domain.WorkItem{
		cycleItem("CT-1", 1),
		cycleItem("CT-2", 2),
		cycleItem("CT-3", 3),
	}

	chart, err := CycleTime(items)
	if err != nil {
		t.Fatalf("CycleTime failed: %v", err)
	}

	if len(chart.Series) != 4 {
		t.Fatalf("Expected scatter plus 3 reference lines, got %d series", len(chart.Series))
	}
	names := []string{"Cycle Time", "P50", "P85", "P95"}
	for i, want := range names {
		if chart.Series[i].Name != want {
			t.Errorf("series %d: got %q, want %q", i, chart.Series[i].Name, want)
		}
	}
	// Reference lines are flat two-point series.
	for _, s := range chart.Series[1:] {
		if len(s.Data) != 2 {
			t.Errorf("Expected 2 points in %s, got %d", s.Name, len(s.Data))
		} else if s.Data[0].Value != s.Data[1].Value {
			t.Errorf("%s reference line is not flat", s.Name)
		}
	}
}

func TestCycleTime_WorkStartFromHistory(t *testing.T) {
	// The clock starts at the in-progress transition, not creation.
	item := cycleItem("CT-1", 3)
	chart, err := CycleTime([]domain.WorkItem{item})
	if err != nil {
		t.Fatalf("CycleTime failed: %v", err)
	}
	if got := chart.Series[0].Data[0].Value; got != 3 {
		t.Errorf("Expected cycle time of 3 days, got %f", got)
	}
}

func TestCycleTime_WorkStartFallsBackToCreation(t *testing.T) {
	created := day(2026, 2, 2)
	item := domain.WorkItem{
		ID:          "CT-1",
		Status:      domain.StatusDone,
		CreatedAt:   created,
		CompletedAt: tptr(created.AddDate(0, 0, 4)),
	}

	chart, err := CycleTime([]domain.WorkItem{item})
	if err != nil {
		t.Fatalf("CycleTime failed: %v", err)
	}
	if got := chart.Series[0].Data[0].Value; got != 4 {
		t.Errorf("Expected cycle time of 4 days, got %f", got)
	}
}

func TestCycleTime_DropsUnusableItems(t *testing.T) {
	created := day(2026, 2, 2)
	items := []domain.WorkItem{
		// Not completed.
		{ID: "open", Status: domain.StatusInProgress, CreatedAt: created},
		// Completed before it started.
		{
			ID:          "backwards",
			Status:      domain.StatusDone,
			CreatedAt:   created,
			CompletedAt: tptr(created.AddDate(0, 0, -1)),
		},
		cycleItem("CT-1", 2),
	}

	chart, err := CycleTime(items)
	if err != nil {
		t.Fatalf("CycleTime failed: %v", err)
	}
	if count, _ := chart.Metadata["count"].(int); count != 1 {
		t.Errorf("Expected 1 usable measure, got %d", count)
	}
}

func TestCycleTime_NoUsableItems(t *testing.T) {
	chart, err := CycleTime(nil)
	if err != nil {
		t.Fatalf("CycleTime failed: %v", err)
	}
	if len(chart.Series) != 0 {
		t.Errorf("Expected no series, got %d", len(chart.Series))
	}
	if _, ok := chart.Metadata["message"]; !ok {
		t.Error("expected an explanatory message in metadata")
	}
}
