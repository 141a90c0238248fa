package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/usecase"
)

type parseResultsRequest struct {
	Format  string `json:"format" validate:"omitempty,oneof=text html"`
	Content string `json:"content" validate:"required"`
}

// publishResultsRequest keys positions 1..20 and driver ids as JSON object keys.
type publishResultsRequest struct {
	Results  map[int]int    `json:"results" validate:"required,min=1"`
	Statuses map[int]string `json:"statuses"`
	Times    map[int]string `json:"times"`
	Pole     *int           `json:"pole" validate:"omitempty,gt=0"`
}

func (req publishResultsRequest) input(raceID int64) (usecase.PublishResultsInput, error) {
	statuses := make(map[int]race.FinishStatus, len(req.Statuses))
	for driverID, raw := range req.Statuses {
		status, err := race.ParseFinishStatus(raw)
		if err != nil {
			return usecase.PublishResultsInput{}, fmt.Errorf("%w: driver %d: %w", usecase.ErrInvalidInput, driverID, err)
		}
		if status != race.StatusNone {
			statuses[driverID] = status
		}
	}
	return usecase.PublishResultsInput{
		RaceID:   raceID,
		Results:  req.Results,
		Statuses: statuses,
		Times:    req.Times,
		Pole:     req.Pole,
	}, nil
}

type finishDTO struct {
	RaceID   int64  `json:"raceId"`
	DriverID int    `json:"driverId"`
	Kind     string `json:"kind"`
	Position *int   `json:"position"`
}

func newFinishDTO(raceID int64, driverID int, finish race.Finish) finishDTO {
	out := finishDTO{RaceID: raceID, DriverID: driverID, Kind: finish.Kind.String()}
	if finish.HasPosition() {
		position := finish.Position
		out.Position = &position
	}
	return out
}

func (h *Handler) ParseResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ParseResults")
	defer span.End()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !actor.IsAdmin {
		writeError(ctx, w, fmt.Errorf("%w: admin only", usecase.ErrForbidden))
		return
	}
	var req parseResultsRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	parsed, err := h.results.Parse(ctx, req.Format, req.Content)
	if err != nil {
		h.fail(ctx, w, "parse results failed", err, "format", req.Format)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, parsed)
}

// PublishLatestResults targets the most recently completed calendar race.
func (h *Handler) PublishLatestResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PublishLatestResults")
	defer span.End()

	h.publishResults(w, r.WithContext(ctx), 0)
}

func (h *Handler) PublishResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PublishResults")
	defer span.End()

	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.publishResults(w, r.WithContext(ctx), raceID)
}

func (h *Handler) publishResults(w http.ResponseWriter, r *http.Request, raceID int64) {
	ctx := r.Context()

	actor, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req publishResultsRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	input, err := req.input(raceID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.results.PublishResults(ctx, actor, input)
	if err != nil {
		h.fail(ctx, w, "publish results failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetResult")
	defer span.End()

	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.results.GetResult(ctx, raceID)
	if err != nil {
		h.fail(ctx, w, "get result failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ClassifyDriver(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClassifyDriver")
	defer span.End()

	raceID, err := pathID(r, "raceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	driverID, err := pathID(r, "driverID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	finish, err := h.results.ClassifyDriver(ctx, raceID, int(driverID))
	if err != nil {
		h.fail(ctx, w, "classify driver failed", err, "race_id", raceID, "driver_id", driverID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, newFinishDTO(raceID, int(driverID), finish))
}

func (h *Handler) ScoreRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreRace")
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

	rows, err := h.scoring.ScorePublished(ctx, actor, raceID)
	if err != nil {
		h.fail(ctx, w, "score race failed", err, "race_id", raceID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"raceId": raceID, "standings": rows})
}
