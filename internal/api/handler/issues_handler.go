package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/civicfix/mobile-gateway/internal/core/ports"
)

// IssuesHandler forwards issue reads and votes to the platform on behalf of
// the authenticated session. No issue state lives in the gateway.
type IssuesHandler struct {
	issues ports.IssuesAPI
}

func NewIssuesHandler(issues ports.IssuesAPI) *IssuesHandler {
	return &IssuesHandler{issues: issues}
}

// Feed returns the public issue feed.
//
// @Summary      Issue feed
// @Tags         issues
// @Produce      json
// @Param        X-Device-ID  header    string  true   "Device identity"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Page size"
// @Success      200          {array}   ports.IssueSummary
// @Router       /app/citizen/issues [get]
func (h *IssuesHandler) Feed(c echo.Context) error {
	_, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	issues, err := h.issues.Feed(c.Request().Context(), token, page, limit)
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []ports.IssueSummary{}
	}
	return c.JSON(http.StatusOK, issues)
}

// Upvote adds the caller's vote to an issue.
//
// @Summary      Upvote an issue
// @Tags         issues
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Param        id           path      string  true  "Issue id"
// @Success      200          {object}  map[string]int
// @Router       /app/citizen/issues/{id}/upvote [post]
func (h *IssuesHandler) Upvote(c echo.Context) error {
	_, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	upvotes, err := h.issues.Upvote(c.Request().Context(), token, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"upvotes": upvotes})
}

// Assigned returns the issues assigned to the calling worker.
//
// @Summary      Issues assigned to the caller
// @Tags         issues
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Success      200          {array}   ports.IssueSummary
// @Router       /app/worker/issues [get]
func (h *IssuesHandler) Assigned(c echo.Context) error {
	userID, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	issues, err := h.issues.AssignedTo(c.Request().Context(), token, userID)
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []ports.IssueSummary{}
	}
	return c.JSON(http.StatusOK, issues)
}

// Stats returns the platform-wide aggregates for the admin dashboard.
//
// @Summary      Platform statistics
// @Tags         issues
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Success      200          {object}  ports.PlatformStats
// @Router       /app/admin/stats [get]
func (h *IssuesHandler) Stats(c echo.Context) error {
	_, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	stats, err := h.issues.Stats(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
