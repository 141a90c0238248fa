package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/f1-draft/internal/usecase"
)

type saveRaceRequest struct {
	Name         string `json:"name" validate:"required,max=80"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	DeadlineDate string `json:"deadlineDate" validate:"required,datetime=2006-01-02"`
	DeadlineTime string `json:"deadlineTime" validate:"omitempty,datetime=15:04"`
	Status       string `json:"status" validate:"omitempty,oneof=upcoming drafting completed"`
}

func (req saveRaceRequest) input(id int64) usecase.SaveRaceInput {
	return usecase.SaveRaceInput{
		ID:           id,
		Name:         req.Name,
		Date:         req.Date,
		DeadlineDate: req.DeadlineDate,
		DeadlineTime: req.DeadlineTime,
		Status:       req.Status,
	}
}

func (h *Handler) ListRaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRaces")
	defer span.End()

	races, err := h.calendar.List(ctx)
	if err != nil {
		h.fail(ctx, w, "list races failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, races)
}

func (h *Handler) GetCurrentRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentRace")
	defer span.End()

	current, err := h.calendar.CurrentDraftRace(ctx)
	if err != nil {
		h.fail(ctx, w, "get current race failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, current)
}

func (h *Handler) GetDraftOpen(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraftOpen")
	defer span.End()

	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	open, err := h.calendar.CanDraft(ctx, raceID, time.Time{})
	if err != nil {
		h.fail(ctx, w, "check draft open failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"raceId": raceID, "open": open})
}

func (h *Handler) CreateRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateRace")
	defer span.End()

	h.saveRace(w, r.WithContext(ctx), 0, http.StatusCreated)
}

func (h *Handler) UpdateRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateRace")
	defer span.End()

	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.saveRace(w, r.WithContext(ctx), raceID, http.StatusOK)
}

func (h *Handler) saveRace(w http.ResponseWriter, r *http.Request, raceID int64, status int) {
	ctx := r.Context()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req saveRaceRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.calendar.SaveRace(ctx, actor, req.input(raceID))
	if err != nil {
		h.fail(ctx, w, "save race failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, status, saved)
}

func (h *Handler) DeleteRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteRace")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.calendar.DeleteRace(ctx, actor, raceID); err != nil {
		h.fail(ctx, w, "delete race failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"deleted": raceID})
}
