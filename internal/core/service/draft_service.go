package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
	"github.com/civicfix/mobile-gateway/internal/core/ports"
)

// DraftInput is one step's worth of complaint-form state.
type DraftInput struct {
	Category    string
	Title       string
	Description string
	Media       []domain.MediaRef
	Location    *domain.Geo
	Step        int
}

// DraftService persists the multi-step complaint form so a citizen can
// resume a half-filled report. Submission hands the completed draft to the
// backend issues API and deletes it.
type DraftService struct {
	repo   ports.DraftRepository
	issues ports.IssuesAPI
	log    zerolog.Logger
}

func NewDraftService(repo ports.DraftRepository, issues ports.IssuesAPI, log zerolog.Logger) *DraftService {
	return &DraftService{repo: repo, issues: issues, log: log}
}

func (s *DraftService) Create(ctx context.Context, userID string, in DraftInput) (*domain.ReportDraft, error) {
	if in.Category == "" {
		return nil, domain.Validation("category", "is required")
	}

	now := time.Now().UTC()
	draft := &domain.ReportDraft{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    in.Category,
		Title:       in.Title,
		Description: in.Description,
		Media:       in.Media,
		Location:    in.Location,
		Step:        in.Step,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return draft, nil
}

// Update replaces the draft's form state with the latest step snapshot.
func (s *DraftService) Update(ctx context.Context, userID, draftID string, in DraftInput) (*domain.ReportDraft, error) {
	draft, err := s.repo.FindByID(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}

	if in.Category != "" {
		draft.Category = in.Category
	}
	draft.Title = in.Title
	draft.Description = in.Description
	draft.Media = in.Media
	draft.Location = in.Location
	draft.Step = in.Step
	draft.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, draft); err != nil {
		return nil, fmt.Errorf("update draft: %w", err)
	}
	return draft, nil
}

func (s *DraftService) Get(ctx context.Context, userID, draftID string) (*domain.ReportDraft, error) {
	return s.repo.FindByID(ctx, draftID, userID)
}

func (s *DraftService) List(ctx context.Context, userID string) ([]domain.ReportDraft, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *DraftService) Discard(ctx context.Context, userID, draftID string) error {
	return s.repo.Delete(ctx, draftID, userID)
}

// Submit sends a completed draft to the backend and deletes it. The draft
// survives a failed submission unchanged.
func (s *DraftService) Submit(ctx context.Context, token, userID, draftID string) (string, error) {
	draft, err := s.repo.FindByID(ctx, draftID, userID)
	if err != nil {
		return "", err
	}
	if draft.Category == "" || draft.Description == "" || draft.Location == nil {
		return "", domain.ErrDraftIncomplete
	}

	issueID, err := s.issues.Submit(ctx, token, ports.ReportInput{
		UserID:      userID,
		Category:    draft.Category,
		Title:       draft.Title,
		Description: draft.Description,
		Media:       draft.Media,
		Location:    draft.Location,
	})
	if err != nil {
		return "", fmt.Errorf("%w: submit report: %v", domain.ErrBackend, err)
	}

	if err := s.repo.Delete(ctx, draftID, userID); err != nil {
		s.log.Warn().Err(err).Str("draft_id", draftID).Msg("submitted draft not deleted")
	}

	s.log.Info().
		Str("draft_id", draftID).
		Str("issue_id", issueID).
		Str("user_id", userID).
		Msg("report submitted")

	return issueID, nil
}
