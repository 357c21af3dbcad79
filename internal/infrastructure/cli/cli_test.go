package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func setupSyntheticWorkspace(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfg := []byte("provider: synthetic\nsynthetic_seed: 11\n")
	if err := os.WriteFile(filepath.Join(dir, "sprintlens.yaml"), cfg, 0600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
}

func TestChartCommands_RunAgainstSyntheticProvider(t *testing.T) {
	setupSyntheticWorkspace(t)

	cases := [][]string{
		{"chart", "burndown", "sprint-1"},
		{"chart", "velocity", "web"},
		{"chart", "cumulative-flow", "web"},
		{"chart", "cycle-time", "web"},
		{"chart", "distribution", "web", "--dimension", "status"},
		{"chart", "trend", "web"},
		{"report", "sprint-1", "--json"},
		{"cache", "clear"},
	}

	for _, args := range cases {
		RootCmd.SetArgs(args)
		if err := RootCmd.Execute(); err != nil {
			t.Errorf("command %v failed: %v", args, err)
		}
	}
}

func TestBurndownCommand_RejectsBadScope(t *testing.T) {
	setupSyntheticWorkspace(t)

	RootCmd.SetArgs([]string{"chart", "burndown", "sprint-1", "--scope", "furlongs"})
	err := RootCmd.Execute()
	if err == nil {
		t.Fatal("expected an error for an unknown scope")
	}
}
