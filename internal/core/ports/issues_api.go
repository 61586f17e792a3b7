package ports

import (
	"context"
	"time"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

// IssueSummary is the feed view of a reported issue.
type IssueSummary struct {
	ID        string      `json:"id"`
	Category  string      `json:"category"`
	Title     string      `json:"title"`
	Status    string      `json:"status"`
	Upvotes   int         `json:"upvotes"`
	Location  *domain.Geo `json:"location,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ReportInput is a completed complaint handed to the backend issues API.
type ReportInput struct {
	UserID      string
	Category    string
	Title       string
	Description string
	Media       []domain.MediaRef
	Location    *domain.Geo
}

// PlatformStats is the aggregate view shown on the admin dashboard.
type PlatformStats struct {
	OpenIssues     int `json:"open_issues"`
	ResolvedIssues int `json:"resolved_issues"`
	ActiveWorkers  int `json:"active_workers"`
}

// IssuesAPI is the backend issue-management collaborator. All issue state
// lives on the backend; the gateway only forwards calls on behalf of the
// authenticated session.
type IssuesAPI interface {
	Feed(ctx context.Context, token string, page, limit int) ([]IssueSummary, error)
	Upvote(ctx context.Context, token, issueID string) (int, error)
	Submit(ctx context.Context, token string, in ReportInput) (string, error)
	AssignedTo(ctx context.Context, token, workerID string) ([]IssueSummary, error)
	Stats(ctx context.Context, token string) (PlatformStats, error)
}
