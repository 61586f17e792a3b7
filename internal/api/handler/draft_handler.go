package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
	"github.com/civicfix/mobile-gateway/internal/core/service"
)

type draftRequest struct {
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Media       []domain.MediaRef `json:"media,omitempty"`
	Location    *domain.Geo       `json:"location,omitempty"`
	Step        int               `json:"step" validate:"min=0"`
}

// DraftHandler serves the citizen's multi-step complaint drafts.
type DraftHandler struct {
	drafts *service.DraftService
}

func NewDraftHandler(drafts *service.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Create starts a new draft.
//
// @Summary      Create a report draft
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string        true  "Device identity"
// @Param        body         body      draftRequest  true  "Draft state"
// @Success      201          {object}  domain.ReportDraft
// @Failure      400          {object}  map[string]string
// @Router       /app/citizen/drafts [post]
func (h *DraftHandler) Create(c echo.Context) error {
	var req draftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	draft, err := h.drafts.Create(c.Request().Context(), userID, draftInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, draft)
}

// Update replaces a draft's form state with the latest step snapshot.
//
// @Summary      Update a report draft
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string        true  "Device identity"
// @Param        id           path      string        true  "Draft id"
// @Param        body         body      draftRequest  true  "Draft state"
// @Success      200          {object}  domain.ReportDraft
// @Failure      404          {object}  map[string]string
// @Router       /app/citizen/drafts/{id} [put]
func (h *DraftHandler) Update(c echo.Context) error {
	var req draftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	draft, err := h.drafts.Update(c.Request().Context(), userID, c.Param("id"), draftInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draft)
}

// Get returns one draft.
//
// @Summary      Fetch a report draft
// @Tags         drafts
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Param        id           path      string  true  "Draft id"
// @Success      200          {object}  domain.ReportDraft
// @Failure      404          {object}  map[string]string
// @Router       /app/citizen/drafts/{id} [get]
func (h *DraftHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	draft, err := h.drafts.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draft)
}

// List returns the caller's drafts, most recently touched first.
//
// @Summary      List report drafts
// @Tags         drafts
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Success      200          {array}   domain.ReportDraft
// @Router       /app/citizen/drafts [get]
func (h *DraftHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	drafts, err := h.drafts.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if drafts == nil {
		drafts = []domain.ReportDraft{}
	}
	return c.JSON(http.StatusOK, drafts)
}

// Discard deletes a draft without submitting it.
//
// @Summary      Discard a report draft
// @Tags         drafts
// @Param        X-Device-ID  header  string  true  "Device identity"
// @Param        id           path    string  true  "Draft id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /app/citizen/drafts/{id} [delete]
func (h *DraftHandler) Discard(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.drafts.Discard(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit hands a completed draft to the platform and deletes it.
//
// @Summary      Submit a report draft
// @Tags         drafts
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Param        id           path      string  true  "Draft id"
// @Success      201          {object}  map[string]string
// @Failure      422          {object}  map[string]string
// @Router       /app/citizen/drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c echo.Context) error {
	userID, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	issueID, err := h.drafts.Submit(c.Request().Context(), token, userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"issue_id": issueID})
}

func draftInput(req draftRequest) service.DraftInput {
	return service.DraftInput{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Media:       req.Media,
		Location:    req.Location,
		Step:        req.Step,
	}
}
