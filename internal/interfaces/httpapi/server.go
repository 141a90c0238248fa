package httpapi

import (
	"net/http"

	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	resolver PrincipalResolver,
	logger *logging.Logger,
	corsAllowedOrigins []string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerUserRoutes(mux, handler, resolver)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}
