package httpapi

import (
	"net/http"
)

type rankingRequest struct {
	DriverIDs []int `json:"driverIds" validate:"required,min=1,dive,gt=0"`
}

type polePickRequest struct {
	DriverID *int `json:"driverId" validate:"omitempty,gt=0"`
}

type top5PickRequest struct {
	DriverIDs []int `json:"driverIds" validate:"max=5,dive,gt=0"`
}

func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRanking")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	variant, err := pathVariant(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ranking, err := h.drafts.GetRanking(ctx, actor.UserID, variant, raceID)
	if err != nil {
		h.fail(ctx, w, "get ranking failed", err, "race_id", raceID, "variant", variant)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"variant": variant, "raceId": raceID, "driverIds": ranking})
}

func (h *Handler) SaveRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveRanking")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	variant, err := pathVariant(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req rankingRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.drafts.SaveRanking(ctx, actor, variant, raceID, req.DriverIDs)
	if err != nil {
		h.fail(ctx, w, "save ranking failed", err, "race_id", raceID, "variant", variant)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"variant": variant, "raceId": raceID, "driverIds": saved})
}

func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitDraft")
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

	if err := h.drafts.SubmitDraft(ctx, actor, raceID); err != nil {
		h.fail(ctx, w, "submit draft failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"raceId": raceID, "submitted": true})
}

func (h *Handler) ResolvePicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolvePicks")
	defer span.End()

	variant, err := pathVariant(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.drafts.ResolvePicks(ctx, variant, raceID)
	if err != nil {
		h.fail(ctx, w, "resolve picks failed", err, "race_id", raceID, "variant", variant)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, picks)
}

func (h *Handler) GetBonusPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBonusPicks")
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

	view, err := h.bonuses.GetBonusPicks(ctx, actor.UserID, raceID)
	if err != nil {
		h.fail(ctx, w, "get bonus picks failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) SavePolePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePolePick")
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
	var req polePickRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.bonuses.SavePolePick(ctx, actor, raceID, req.DriverID); err != nil {
		h.fail(ctx, w, "save pole pick failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"raceId": raceID, "driverId": req.DriverID})
}

func (h *Handler) SaveTop5Pick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveTop5Pick")
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
	var req top5PickRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.bonuses.SaveTop5Pick(ctx, actor, raceID, req.DriverIDs)
	if err != nil {
		h.fail(ctx, w, "save top5 pick failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"raceId": raceID, "driverIds": saved})
}

func (h *Handler) SubmitBonuses(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitBonuses")
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

	if err := h.bonuses.SubmitBonuses(ctx, actor, raceID); err != nil {
		h.fail(ctx, w, "submit bonuses failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"raceId": raceID, "submitted": true})
}
