package ports

import (
	"context"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

// DraftRepository persists in-progress complaint drafts.
type DraftRepository interface {
	Create(ctx context.Context, draft *domain.ReportDraft) error
	Update(ctx context.Context, draft *domain.ReportDraft) error
	FindByID(ctx context.Context, id, userID string) (*domain.ReportDraft, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ReportDraft, error)
	Delete(ctx context.Context, id, userID string) error
}

// ResendLimiter enforces the durable half of the resend cooldown: once a
// verification message is dispatched, further resends for the same target
// are refused until the window expires, surviving gateway restarts.
type ResendLimiter interface {
	// Reserve claims the window for target. It returns the remaining
	// cooldown in seconds when the window is already held.
	Reserve(ctx context.Context, channel, target string) (retryAfter int, err error)
}
