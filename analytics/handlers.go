package analytics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler exposes the analytics HTTP endpoints.
type Handler struct {
	store *Store
}

// NewHandler creates a Handler backed by the given store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Collect records a page view sent by the tracking script. Bot traffic is
// acknowledged but not stored.
func (h *Handler) Collect(c echo.Context) error {
	var req VisitRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if req.Path == "" {
		return c.NoContent(http.StatusBadRequest)
	}

	ua := c.Request().UserAgent()
	if IsBot(ua) {
		return c.NoContent(http.StatusNoContent)
	}

	browser, os, device := ParseUserAgent(ua)
	visit := Visit{
		VisitorID: h.store.VisitorID(c.RealIP(), ua),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Path:      req.Path,
		Referrer:  CleanReferrer(req.Referrer),
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.RecordVisit(visit); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats returns aggregated visit statistics. The days query parameter
// bounds the period (default 30).
func (h *Handler) Stats(c echo.Context) error {
	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	stats, err := h.store.Stats(days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
