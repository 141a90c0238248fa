package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/f1-draft/internal/domain/standing"
	"github.com/riskibarqy/f1-draft/internal/usecase"
)

type adjustmentRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

// GetStandings aggregates every scored race unless ?race= narrows it.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	filter := standing.AllRaces()
	if raw := r.URL.Query().Get("race"); raw != "" {
		parsed, err := standing.ParseFilter(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err))
			return
		}
		filter = parsed
	}

	rows, err := h.standings.Aggregate(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "aggregate standings failed", err, "filter", filter.String())
		return
	}
	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) GetRaceStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRaceStandings")
	defer span.End()

	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.standings.RaceStandings(ctx, raceID)
	if err != nil {
		h.fail(ctx, w, "race standings failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) GetSeasonSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonSummary")
	defer span.End()

	summary, err := h.standings.SeasonSummary(ctx)
	if err != nil {
		h.fail(ctx, w, "season summary failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) SetSeasonAdjustment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSeasonAdjustment")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req adjustmentRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.standings.SetSeasonAdjustment(ctx, actor, userID, *req.Delta); err != nil {
		h.fail(ctx, w, "set season adjustment failed", err, "user_id", userID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"userId": userID, "delta": *req.Delta})
}

func (h *Handler) RescoreSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RescoreSeason")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	scored, err := h.standings.RescoreSeason(ctx, actor)
	if err != nil {
		h.fail(ctx, w, "rescore season failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"racesScored": scored})
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Undo")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	restored, err := h.history.Undo(ctx, actor)
	if err != nil {
		h.fail(ctx, w, "undo failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"version": restored.Version, "updatedAt": restored.UpdatedAt})
}
