package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/f1-draft/internal/platform/id"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
	"github.com/riskibarqy/f1-draft/internal/usecase"
)

const (
	adminID  int64 = 1
	memberID int64 = 2
	raceID   int64 = 100
)

type envelope struct {
	Data  any              `json:"data"`
	Error *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	snapshot := state.Empty()
	snapshot.Users = []user.User{
		{ID: adminID, Username: "alice", Avatar: "A", IsAdmin: true},
		{ID: memberID, Username: "bob", Avatar: "B"},
	}
	snapshot.TurnOrder = user.TurnOrder{adminID, memberID}
	snapshot.RaceCalendar = race.Calendar{
		{ID: raceID, Name: "Imola", Date: "2099-05-18", DeadlineDate: "2099-05-17", DeadlineTime: "12:00", Status: race.StatusDrafting},
		{ID: raceID + 1, Name: "Monaco", Date: "2099-05-25", DeadlineDate: "2099-05-24", DeadlineTime: "12:00", Status: race.StatusUpcoming},
	}

	logger := logging.NewNop()
	roster := driver.DefaultRoster()
	rules := draft.DefaultRules()
	store := usecase.NewStateStore(memory.NewSeededStateRepository(snapshot), memory.NewHistoryRepository(0), logger)
	scoring := usecase.NewScoringService(store, rules, 2, logger)
	users := usecase.NewUserService(store, id.NewTimestampGenerator(), logger)

	handler := NewHandler(Services{
		Users:     users,
		Calendar:  usecase.NewCalendarService(store, id.NewTimestampGenerator(), time.UTC, logger),
		Drafts:    usecase.NewDraftService(store, roster, rules, time.UTC, logger),
		Bonuses:   usecase.NewBonusService(store, roster, time.UTC, logger),
		Results:   usecase.NewResultsService(store, scoring, roster, logger),
		Scoring:   scoring,
		Standings: usecase.NewStandingsService(store, scoring, rules, 0, logger),
		History:   usecase.NewHistoryService(store, logger),
	}, roster, logger)
	return NewRouter(handler, users, logger, []string{"*"})
}

func call(t *testing.T, router http.Handler, method, path string, userID int64, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(userIDHeader, strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: unmarshal body %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, out
}

func reversedRoster() string {
	ids := driver.DefaultRoster().IDs()
	parts := make([]byte, 0, len(ids)*3)
	for i := len(ids) - 1; i >= 0; i-- {
		if len(parts) > 0 {
			parts = append(parts, ',')
		}
		parts = strconv.AppendInt(parts, int64(ids[i]), 10)
	}
	return `{"driverIds":[` + string(parts) + `]}`
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec, body := call(t, router, http.MethodGet, "/healthz", 0, "")
	if rec.Code != http.StatusOK || body.Error != nil {
		t.Fatalf("unexpected healthz response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RequireUser(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "malformed header", header: "abc"},
		{name: "unknown user", header: "999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/undo", nil)
			if tt.header != "" {
				req.Header.Set(userIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_AdminRoutesRejectMembers(t *testing.T) {
	router := newTestRouter(t)

	rec, body := call(t, router, http.MethodPost, "/v1/races", memberID,
		`{"name":"Spain","date":"2099-06-01","deadlineDate":"2099-05-31"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if body.Error == nil || body.Error.Errors[0].Reason != "adminRequired" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
}

func TestRouter_RejectsUnknownFieldsAndBadDates(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := call(t, router, http.MethodPost, "/v1/races", adminID,
		`{"name":"Spain","date":"2099-06-01","deadlineDate":"2099-05-31","round":7}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	rec, _ = call(t, router, http.MethodPost, "/v1/races", adminID,
		`{"name":"Spain","date":"01/06/2099","deadlineDate":"2099-05-31"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	rec, _ = call(t, router, http.MethodGet, "/v1/races/100/picks/sideways", 0, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown variant, got %d", rec.Code)
	}
}

func TestRouter_DraftPublishAndUndo(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := call(t, router, http.MethodPut, "/v1/races/100/rankings/grojean", memberID, reversedRoster())
	if rec.Code != http.StatusOK {
		t.Fatalf("save ranking: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = call(t, router, http.MethodPost, "/v1/races/100/draft/submit", memberID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit draft: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = call(t, router, http.MethodPut, "/v1/races/100/bonus/pole", memberID, `{"driverId":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save pole pick: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = call(t, router, http.MethodPut, "/v1/races/100/results", adminID,
		`{"results":{"1":7,"2":1,"3":8},"statuses":{"8":"C,DNF"},"pole":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish results: %d %s", rec.Code, rec.Body.String())
	}

	rec, body := call(t, router, http.MethodGet, "/v1/races/100/results/drivers/7/finish", 0, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("classify driver: %d %s", rec.Code, rec.Body.String())
	}
	finish, _ := body.Data.(map[string]any)
	if finish["kind"] != "finished" || finish["position"] != float64(1) {
		t.Fatalf("unexpected finish: %+v", finish)
	}

	_, body = call(t, router, http.MethodGet, "/v1/races/100/results/drivers/8/finish", 0, "")
	finish, _ = body.Data.(map[string]any)
	if finish["kind"] != "classified_dnf" || finish["position"] != float64(3) {
		t.Fatalf("unexpected classified dnf: %+v", finish)
	}

	rec, body = call(t, router, http.MethodGet, "/v1/standings", 0, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("standings: %d %s", rec.Code, rec.Body.String())
	}
	if rows, _ := body.Data.([]any); len(rows) == 0 {
		t.Fatalf("expected standings rows, got %s", rec.Body.String())
	}

	rec, _ = call(t, router, http.MethodGet, "/v1/standings?race=nope", 0, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad filter, got %d", rec.Code)
	}

	rec, _ = call(t, router, http.MethodPost, "/v1/undo", adminID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("undo: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = call(t, router, http.MethodGet, "/v1/races/100/results", 0, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected result gone after undo, got %d", rec.Code)
	}
}
