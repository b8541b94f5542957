package httpapi

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/codes"

	"github.com/oddsdesk/matchcontext/internal/platform/logging"
)

// NewRouter wires the deliberately thin HTTP surface: one contract endpoint
// (POST /analyzers/analyze) plus a health check, behind panic recovery,
// request logging, and tracing, the way the teacher layers NewRouter.
func NewRouter(handler *Handler, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerRoutes(mux, handler)

	stack := RequestLogging(logger, recoverPanic(logger, mux))
	return RequestTracing(stack)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				panicErr := fmt.Errorf("panic recovered: %v", rec)
				span.RecordError(panicErr)
				span.SetStatus(codes.Error, "panic")
				logger.ErrorContext(ctx, "panic recovered",
					"event", "panic_recovered",
					"error_code", "panic",
					"panic", rec,
				)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
