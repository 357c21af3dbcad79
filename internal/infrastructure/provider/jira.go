package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// JiraConfig holds the Jira Cloud connection settings. Empty fields fall
// back to the JIRA_DOMAIN, JIRA_EMAIL and JIRA_API_TOKEN environment
// variables at construction time.
type JiraConfig struct {
	Domain   string `yaml:"domain"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
}

// JiraProvider reads sprints and issues from the Jira Cloud REST and
// Agile APIs. Sprint IDs are Jira sprint IDs; project IDs are Jira
// project keys.
type JiraProvider struct {
	domain   string
	email    string
	apiToken string
	client   *http.Client
}

// NewJiraProvider creates a provider from a validated config.
func NewJiraProvider(cfg JiraConfig) (*JiraProvider, error) {
	if cfg.Domain == "" || cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira configuration missing (domain, email, api_token required)")
	}
	dom := cfg.Domain
	if !strings.HasPrefix(dom, "http") {
		dom = "https://" + dom
	}
	return &JiraProvider{
		domain:   dom,
		email:    cfg.Email,
		apiToken: cfg.APIToken,
		client:   http.DefaultClient,
	}, nil
}

type jiraSprint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type jiraIssue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Created string `json:"created"`
		Updated string `json:"updated"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Priority struct {
			Name string `json:"name"`
		} `json:"priority"`
		Assignee struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		ResolutionDate string   `json:"resolutiondate"`
		StoryPoints    *float64 `json:"customfield_10016"`
	} `json:"fields"`
	Changelog struct {
		Histories []struct {
			Created string `json:"created"`
			Items   []struct {
				Field    string `json:"field"`
				ToString string `json:"toString"`
			} `json:"items"`
		} `json:"histories"`
	} `json:"changelog"`
}

// FetchSprint loads one sprint and its issues via the Agile API.
func (p *JiraProvider) FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error) {
	data, err := p.request(ctx, "GET", "/rest/agile/1.0/sprint/"+url.PathEscape(sprintID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch jira sprint %s: %w", sprintID, err)
	}
	var sprint jiraSprint
	if err := json.Unmarshal(data, &sprint); err != nil {
		return nil, fmt.Errorf("decode jira sprint %s: %w", sprintID, err)
	}

	issues, err := p.sprintIssues(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	return &normalize.SprintPayload{
		Sprint: map[string]any{
			"id":         strconv.Itoa(sprint.ID),
			"name":       sprint.Name,
			"status":     sprint.State,
			"start_date": sprint.StartDate,
			"end_date":   sprint.EndDate,
		},
		Tasks: jiraIssuesToRaw(issues),
	}, nil
}

// FetchSprintHistory lists closed sprints on the project's first board
// and sums issue story points into committed/completed pairs. Jira does
// not keep a commitment snapshot on the sprint itself, so the current
// issue set stands in for what was committed.
func (p *JiraProvider) FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error) {
	boardID, err := p.firstBoard(ctx, projectID)
	if err != nil {
		return nil, err
	}

	data, err := p.request(ctx, "GET", fmt.Sprintf("/rest/agile/1.0/board/%d/sprint?state=closed", boardID), nil)
	if err != nil {
		return nil, fmt.Errorf("list jira sprints for %s: %w", projectID, err)
	}
	var listing struct {
		Values []jiraSprint `json:"values"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("decode jira sprint list: %w", err)
	}

	sprints := listing.Values
	if limit > 0 && len(sprints) > limit {
		sprints = sprints[len(sprints)-limit:]
	}

	history := make([]domain.SprintSummary, 0, len(sprints))
	for _, sp := range sprints {
		issues, err := p.sprintIssues(ctx, strconv.Itoa(sp.ID))
		if err != nil {
			return nil, err
		}

		var committed, completed float64
		for _, issue := range issues {
			points := 1.0
			if issue.Fields.StoryPoints != nil {
				points = *issue.Fields.StoryPoints
			}
			committed += points
			if issue.Fields.ResolutionDate != "" {
				completed += points
			}
		}

		end, _ := normalize.ParseTime(sp.EndDate)
		history = append(history, domain.SprintSummary{
			ID:        strconv.Itoa(sp.ID),
			Name:      sp.Name,
			EndDate:   end,
			Committed: committed,
			Completed: completed,
		})
	}
	return history, nil
}

// FetchWorkItems searches all issues of a project, with changelogs so
// status history survives normalization.
func (p *JiraProvider) FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error) {
	jql := fmt.Sprintf("project = %q ORDER BY created ASC", projectID)
	path := "/rest/api/2/search?expand=changelog&maxResults=100&jql=" + url.QueryEscape(jql)

	var all []jiraIssue
	startAt := 0
	for {
		data, err := p.request(ctx, "GET", fmt.Sprintf("%s&startAt=%d", path, startAt), nil)
		if err != nil {
			return nil, fmt.Errorf("search jira issues for %s: %w", projectID, err)
		}
		var page struct {
			StartAt int         `json:"startAt"`
			Total   int         `json:"total"`
			Issues  []jiraIssue `json:"issues"`
		}
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("decode jira search result: %w", err)
		}
		all = append(all, page.Issues...)
		startAt += len(page.Issues)
		if startAt >= page.Total || len(page.Issues) == 0 {
			return jiraIssuesToRaw(all), nil
		}
	}
}

func (p *JiraProvider) sprintIssues(ctx context.Context, sprintID string) ([]jiraIssue, error) {
	path := "/rest/agile/1.0/sprint/" + url.PathEscape(sprintID) + "/issue?expand=changelog&maxResults=100"
	data, err := p.request(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch issues of jira sprint %s: %w", sprintID, err)
	}
	var listing struct {
		Issues []jiraIssue `json:"issues"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("decode jira sprint issues: %w", err)
	}
	return listing.Issues, nil
}

func (p *JiraProvider) firstBoard(ctx context.Context, projectID string) (int, error) {
	data, err := p.request(ctx, "GET", "/rest/agile/1.0/board?projectKeyOrId="+url.QueryEscape(projectID), nil)
	if err != nil {
		return 0, fmt.Errorf("list jira boards for %s: %w", projectID, err)
	}
	var listing struct {
		Values []struct {
			ID int `json:"id"`
		} `json:"values"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return 0, fmt.Errorf("decode jira board list: %w", err)
	}
	if len(listing.Values) == 0 {
		return 0, fmt.Errorf("no jira board found for project %s", projectID)
	}
	return listing.Values[0].ID, nil
}

func (p *JiraProvider) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.domain+path, bodyReader)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(p.email + ":" + p.apiToken))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("jira api error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// jiraIssuesToRaw translates issues into the collaborator payload shape,
// flattening changelog status transitions into status_history.
func jiraIssuesToRaw(issues []jiraIssue) []map[string]any {
	raw := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		item := map[string]any{
			"id":         issue.Key,
			"title":      issue.Fields.Summary,
			"status":     issue.Fields.Status.Name,
			"type":       issue.Fields.IssueType.Name,
			"priority":   issue.Fields.Priority.Name,
			"created_at": issue.Fields.Created,
		}
		if issue.Fields.Assignee.DisplayName != "" {
			item["assigned_to"] = issue.Fields.Assignee.DisplayName
		}
		if issue.Fields.ResolutionDate != "" {
			item["completed_at"] = issue.Fields.ResolutionDate
		}
		if issue.Fields.StoryPoints != nil {
			item["story_points"] = *issue.Fields.StoryPoints
		}

		var history []any
		for _, h := range issue.Changelog.Histories {
			for _, change := range h.Items {
				if change.Field != "status" {
					continue
				}
				history = append(history, map[string]any{
					"date":   h.Created,
					"status": change.ToString,
				})
			}
		}
		if len(history) > 0 {
			item["status_history"] = history
		}

		raw = append(raw, item)
	}
	return raw
}
