package charts

import (
	"testing"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

func distributionFixture() []domain.WorkItem {
	created := day(2026, 5, 4)
	return []domain.WorkItem{
		{ID: "D-1", Status: domain.StatusDone, Type: domain.TypeStory, AssignedTo: "ada", StoryPoints: fptr(5), CreatedAt: created},
		{ID: "D-2", Status: domain.StatusDone, Type: domain.TypeBug, AssignedTo: "ada", StoryPoints: fptr(3), CreatedAt: created},
		{ID: "D-3", Status: domain.StatusInProgress, Type: domain.TypeStory, AssignedTo: "grace", StoryPoints: fptr(8), CreatedAt: created},
		{ID: "D-4", Status: domain.StatusTodo, Type: domain.TypeTask, CreatedAt: created},
		{ID: "D-5", Status: domain.StatusTodo, Type: domain.TypeStory, AssignedTo: "grace", StoryPoints: fptr(2), CreatedAt: created},
	}
}

func TestWorkDistribution_ByStatus(t *testing.T) {
	chart, err := WorkDistribution(distributionFixture(), domain.DimensionStatus)
	if err != nil {
		t.Fatalf("WorkDistribution failed: %v", err)
	}

	if len(chart.Series) != 1 {
		t.Fatalf("Expected 1 series, got %d", len(chart.Series))
	}
	data := chart.Series[0].Data
	if len(data) != 3 {
		t.Fatalf("Expected 3 status groups, got %d", len(data))
	}

	// Count-descending, then name ascending for the 2/2 tie.
	if data[0].Label != "done" || data[0].Value != 2 {
		t.Errorf("Expected done first with 2 items, got %q/%f", data[0].Label, data[0].Value)
	}
	if data[1].Label != "todo" || data[1].Value != 2 {
		t.Errorf("Expected todo second with 2 items, got %q/%f", data[1].Label, data[1].Value)
	}
	if data[2].Label != "in_progress" || data[2].Value != 1 {
		t.Errorf("Expected in_progress last with 1 item, got %q/%f", data[2].Label, data[2].Value)
	}
}

func TestWorkDistribution_PercentagesSumToHundred(t *testing.T) {
	chart, err := WorkDistribution(distributionFixture(), domain.DimensionStatus)
	if err != nil {
		t.Fatalf("WorkDistribution failed: %v", err)
	}

	var sum float64
	for _, p := range chart.Series[0].Data {
		pct, _ := p.Metadata["percent_count"].(float64)
		sum += pct
	}
	if sum < 99.9 || sum > 100.1 {
		t.Errorf("Expected percent_count to sum to 100, got %f", sum)
	}
}

func TestWorkDistribution_ByAssignee_UnassignedBucket(t *testing.T) {
	chart, err := WorkDistribution(distributionFixture(), domain.DimensionAssignee)
	if err != nil {
		t.Fatalf("WorkDistribution failed: %v", err)
	}

	byLabel := map[string]domain.ChartDataPoint{}
	for _, p := range chart.Series[0].Data {
		byLabel[p.Label] = p
	}

	unassigned, ok := byLabel["Unassigned"]
	if !ok {
		t.Fatal("expected an Unassigned bucket")
	}
	if unassigned.Value != 1 {
		t.Errorf("Expected 1 unassigned item, got %f", unassigned.Value)
	}

	ada := byLabel["ada"]
	if pts, _ := ada.Metadata["story_points"].(float64); !almostEqual(pts, 8) {
		t.Errorf("Expected 8 points for ada, got %f", pts)
	}
	if done, _ := ada.Metadata["completed"].(int); done != 2 {
		t.Errorf("Expected 2 completed for ada, got %d", done)
	}
}

func TestWorkDistribution_Metadata(t *testing.T) {
	chart, err := WorkDistribution(distributionFixture(), domain.DimensionType)
	if err != nil {
		t.Fatalf("WorkDistribution failed: %v", err)
	}

	if dim, _ := chart.Metadata["dimension"].(string); dim != "type" {
		t.Errorf("Expected dimension type, got %q", dim)
	}
	if total, _ := chart.Metadata["total_items"].(int); total != 5 {
		t.Errorf("Expected 5 total items, got %d", total)
	}
	if pts, _ := chart.Metadata["total_points"].(float64); !almostEqual(pts, 18) {
		t.Errorf("Expected 18 total points, got %f", pts)
	}
	if groups, _ := chart.Metadata["groups"].(int); groups != 3 {
		t.Errorf("Expected 3 type groups, got %d", groups)
	}
}

func TestWorkDistribution_UnknownDimension(t *testing.T) {
	_, err := WorkDistribution(distributionFixture(), domain.Dimension("moon_phase"))
	if err == nil {
		t.Fatal("expected an error for an unknown dimension")
	}
	if !domain.IsInvalidArgument(err) {
		t.Errorf("expected an invalid-argument error, got %v", err)
	}
}

func TestWorkDistribution_NoItems(t *testing.T) {
	chart, err := WorkDistribution(nil, domain.DimensionStatus)
	if err != nil {
		t.Fatalf("WorkDistribution failed: %v", err)
	}
	if len(chart.Series) != 0 {
		t.Errorf("Expected no series, got %d", len(chart.Series))
	}
	if _, ok := chart.Metadata["message"]; !ok {
		t.Error("expected an explanatory message in metadata")
	}
}
