package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/civicfix/mobile-gateway/internal/core/ports"
)

// IssuesAPI implements ports.IssuesAPI against the platform's issue
// endpoints. Calls are made on behalf of the session's token.
type IssuesAPI struct {
	client *Client
}

func NewIssuesAPI(client *Client) *IssuesAPI {
	return &IssuesAPI{client: client}
}

func (a *IssuesAPI) Feed(ctx context.Context, token string, page, limit int) ([]ports.IssueSummary, error) {
	path := fmt.Sprintf("/api/issues?page=%d&limit=%d", page, limit)
	env, err := a.client.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("issue feed: %s", env.Message)
	}

	var issues []ports.IssueSummary
	if err := decodeData(env, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (a *IssuesAPI) Upvote(ctx context.Context, token, issueID string) (int, error) {
	env, err := a.client.do(ctx, http.MethodPost, "/api/issues/"+issueID+"/upvote", token, nil)
	if err != nil {
		return 0, err
	}
	if !env.Success {
		return 0, fmt.Errorf("upvote: %s", env.Message)
	}

	var data struct {
		Upvotes int `json:"upvotes"`
	}
	if err := decodeData(env, &data); err != nil {
		return 0, err
	}
	return data.Upvotes, nil
}

func (a *IssuesAPI) Submit(ctx context.Context, token string, in ports.ReportInput) (string, error) {
	env, err := a.client.do(ctx, http.MethodPost, "/api/issues", token, in)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", fmt.Errorf("submit report: %s", env.Message)
	}

	var data struct {
		ID string `json:"id"`
	}
	if err := decodeData(env, &data); err != nil {
		return "", err
	}
	return data.ID, nil
}

func (a *IssuesAPI) AssignedTo(ctx context.Context, token, workerID string) ([]ports.IssueSummary, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/api/issues/assigned/"+workerID, token, nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("assigned issues: %s", env.Message)
	}

	var issues []ports.IssueSummary
	if err := decodeData(env, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (a *IssuesAPI) Stats(ctx context.Context, token string) (ports.PlatformStats, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/api/admin/stats", token, nil)
	if err != nil {
		return ports.PlatformStats{}, err
	}
	if !env.Success {
		return ports.PlatformStats{}, fmt.Errorf("platform stats: %s", env.Message)
	}

	var stats ports.PlatformStats
	if err := decodeData(env, &stats); err != nil {
		return ports.PlatformStats{}, err
	}
	return stats, nil
}
