package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// GitHubProvider maps GitHub issues onto work items and milestones onto
// sprints. Project IDs are "owner/repo"; sprint IDs are milestone numbers.
// GitHub has no native story points, so point-based charts degrade to
// their documented absent-value behavior.
type GitHubProvider struct {
	client *github.Client
}

// NewGitHubProvider creates a provider. An empty token uses the
// unauthenticated client with its lower rate limits.
func NewGitHubProvider(token string) *GitHubProvider {
	if token == "" {
		return &GitHubProvider{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &GitHubProvider{client: github.NewClient(tc)}
}

// FetchSprint loads one milestone and its issues. The caller encodes the
// repository into the sprint ID as "owner/repo#number".
func (p *GitHubProvider) FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error) {
	owner, repo, number, err := splitSprintID(sprintID)
	if err != nil {
		return nil, err
	}

	milestone, _, err := p.client.Issues.GetMilestone(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("get milestone %s: %w", sprintID, err)
	}

	issues, err := p.listIssues(ctx, owner, repo, strconv.Itoa(number))
	if err != nil {
		return nil, err
	}

	sprint := map[string]any{
		"id":     strconv.Itoa(number),
		"name":   milestone.GetTitle(),
		"status": milestone.GetState(),
	}
	if created := milestone.GetCreatedAt(); !created.Time.IsZero() {
		sprint["start_date"] = created.Time.UTC().Format(time.RFC3339)
	}
	if due := milestone.GetDueOn(); !due.Time.IsZero() {
		sprint["end_date"] = due.Time.UTC().Format(time.RFC3339)
	}

	return &normalize.SprintPayload{
		Sprint: sprint,
		Tasks:  issuesToRaw(issues),
	}, nil
}

// FetchSprintHistory maps closed milestones onto committed/completed
// pairs: total issues committed, closed issues completed.
func (p *GitHubProvider) FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	milestones, _, err := p.client.Issues.ListMilestones(ctx, owner, repo, &github.MilestoneListOptions{
		State:       "closed",
		Sort:        "due_on",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("list milestones for %s: %w", projectID, err)
	}

	history := make([]domain.SprintSummary, 0, len(milestones))
	for _, m := range milestones {
		committed := m.GetOpenIssues() + m.GetClosedIssues()
		history = append(history, domain.SprintSummary{
			ID:        strconv.Itoa(m.GetNumber()),
			Name:      m.GetTitle(),
			EndDate:   m.GetDueOn().Time.UTC(),
			Committed: float64(committed),
			Completed: float64(m.GetClosedIssues()),
		})
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

// FetchWorkItems returns all issues in the repository.
func (p *GitHubProvider) FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}
	issues, err := p.listIssues(ctx, owner, repo, "")
	if err != nil {
		return nil, err
	}
	return issuesToRaw(issues), nil
}

func (p *GitHubProvider) listIssues(ctx context.Context, owner, repo, milestone string) ([]*github.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	if milestone != "" {
		opts.Milestone = milestone
	}

	var all []*github.Issue
	for {
		issues, resp, err := p.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues for %s/%s: %w", owner, repo, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			all = append(all, issue)
		}
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// issuesToRaw translates issues into the collaborator payload shape.
// Workflow and classification live in labels on GitHub, so label names
// feed the status/type/priority fields and the normalizer's substring
// matching does the rest.
func issuesToRaw(issues []*github.Issue) []map[string]any {
	raw := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		item := map[string]any{
			"id":         strconv.Itoa(issue.GetNumber()),
			"title":      issue.GetTitle(),
			"status":     issue.GetState(),
			"created_at": issue.GetCreatedAt().Time.UTC().Format(time.RFC3339),
		}
		if assignee := issue.GetAssignee(); assignee != nil {
			item["assigned_to"] = assignee.GetLogin()
		}
		if closed := issue.GetClosedAt(); !closed.Time.IsZero() {
			item["completed_at"] = closed.Time.UTC().Format(time.RFC3339)
			item["status"] = "closed"
		}

		for _, label := range issue.Labels {
			name := strings.ToLower(label.GetName())
			switch {
			case strings.Contains(name, "progress"), strings.Contains(name, "review"),
				strings.Contains(name, "block"):
				if issue.GetState() == "open" {
					item["status"] = label.GetName()
				}
			case strings.Contains(name, "bug"), strings.Contains(name, "story"),
				strings.Contains(name, "epic"):
				item["type"] = label.GetName()
			case strings.Contains(name, "priority"), strings.Contains(name, "critical"),
				strings.Contains(name, "urgent"):
				item["priority"] = label.GetName()
			}
		}

		raw = append(raw, item)
	}
	return raw
}

func splitProjectID(projectID string) (owner, repo string, err error) {
	parts := strings.SplitN(projectID, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("github project id must be owner/repo, got %q", projectID)
	}
	return parts[0], parts[1], nil
}

func splitSprintID(sprintID string) (owner, repo string, number int, err error) {
	parts := strings.SplitN(sprintID, "#", 2)
	if len(parts) != 2 {
		return "", "", 0, fmt.Errorf("github sprint id must be owner/repo#milestone, got %q", sprintID)
	}
	owner, repo, err = splitProjectID(parts[0])
	if err != nil {
		return "", "", 0, err
	}
	number, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", "", 0, fmt.Errorf("github sprint id must end in a milestone number, got %q", sprintID)
	}
	return owner, repo, number, nil
}
