package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
	"github.com/riskibarqy/f1-draft/internal/usecase"
)

const maxBodyBytes = 1 << 20

// Services groups the use cases served over HTTP.
type Services struct {
	Users     *usecase.UserService
	Calendar  *usecase.CalendarService
	Drafts    *usecase.DraftService
	Bonuses   *usecase.BonusService
	Results   *usecase.ResultsService
	Scoring   *usecase.ScoringService
	Standings *usecase.StandingsService
	History   *usecase.HistoryService
}

type Handler struct {
	users     *usecase.UserService
	calendar  *usecase.CalendarService
	drafts    *usecase.DraftService
	bonuses   *usecase.BonusService
	results   *usecase.ResultsService
	scoring   *usecase.ScoringService
	standings *usecase.StandingsService
	history   *usecase.HistoryService
	roster    driver.Roster
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(services Services, roster driver.Roster, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		users:     services.Users,
		calendar:  services.Calendar,
		drafts:    services.Drafts,
		bonuses:   services.Bonuses,
		results:   services.Results,
		scoring:   services.Scoring,
		standings: services.Standings,
		history:   services.History,
		roster:    roster,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDrivers")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.roster.List())
}

// decodeJSON reads a bounded body, rejects unknown fields and validates the result.
func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	decoder := jsoniter.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(ctx, dst); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", usecase.ErrInvalidInput, name, raw)
	}
	return id, nil
}

func pathVariant(r *http.Request) (draft.Variant, error) {
	variant, err := draft.ParseVariant(r.PathValue("variant"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err)
	}
	return variant, nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: acting user is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// fail logs client errors at warn and server errors at error before responding.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if mapError(err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	writeError(ctx, w, err)
}
