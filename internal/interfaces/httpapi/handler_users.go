package httpapi

import (
	"net/http"

	"github.com/riskibarqy/f1-draft/internal/usecase"
)

type addUserRequest struct {
	Username string `json:"username" validate:"required,max=40"`
	Avatar   string `json:"avatar" validate:"max=16"`
}

type turnOrderRequest struct {
	Order []int64 `json:"order" validate:"required,min=1,dive,gt=0"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUsers")
	defer span.End()

	users, err := h.users.List(ctx)
	if err != nil {
		h.fail(ctx, w, "list users failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, users)
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddUser")
	defer span.End()

	var req addUserRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.users.AddUser(ctx, usecase.AddUserInput{Username: req.Username, Avatar: req.Avatar})
	if err != nil {
		h.fail(ctx, w, "add user failed", err, "username", req.Username)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, created)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteUser")
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

	if err := h.users.DeleteUser(ctx, actor, userID); err != nil {
		h.fail(ctx, w, "delete user failed", err, "user_id", userID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"deleted": userID})
}

func (h *Handler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MakeAdmin")
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

	if err := h.users.MakeAdmin(ctx, actor, userID); err != nil {
		h.fail(ctx, w, "make admin failed", err, "user_id", userID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"userId": userID, "isAdmin": true})
}

func (h *Handler) GetTurnOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTurnOrder")
	defer span.End()

	order, err := h.users.TurnOrder(ctx)
	if err != nil {
		h.fail(ctx, w, "get turn order failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, order)
}

func (h *Handler) ReorderTurnOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReorderTurnOrder")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req turnOrderRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	order, err := h.users.ReorderTurnOrder(ctx, actor, req.Order)
	if err != nil {
		h.fail(ctx, w, "reorder turn order failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, order)
}

func (h *Handler) GetUserRaceLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserRaceLog")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.standings.UserRaceLog(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "get user race log failed", err, "user_id", userID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, entries)
}

func (h *Handler) GetUserPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserPicks")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.drafts.UserPicks(ctx, userID, raceID)
	if err != nil {
		h.fail(ctx, w, "get user picks failed", err, "user_id", userID, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, picks)
}
