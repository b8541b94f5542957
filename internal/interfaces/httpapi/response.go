package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/oddsdesk/matchcontext/internal/contextagent"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "matchcontext"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus    int
	Reason        string
	Status        string
	PublicMessage string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	internalMessage := err.Error()
	if internalMessage == "" {
		internalMessage = http.StatusText(mapped.HTTPStatus)
	}

	logging.Default().ErrorContext(ctx, "api error response",
		"event", "api_error",
		"error_code", mapped.Reason,
		"http_status", mapped.HTTPStatus,
		"error_status", mapped.Status,
		"user_message", mapped.PublicMessage,
		"internal_message", internalMessage,
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, mapped.Reason)
	span.SetAttributes(
		attribute.Int("error.http_status", mapped.HTTPStatus),
		attribute.String("error.reason", mapped.Reason),
		attribute.String("error.status", mapped.Status),
		attribute.String("error.public_message", mapped.PublicMessage),
		attribute.String("error.internal_message", internalMessage),
	)

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: mapped.PublicMessage,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: mapped.PublicMessage,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

// mapError realizes spec.md §7's taxonomy: FixtureNotFound→404, Busy→409,
// Timeout/UpstreamUnavailable→502/504, StoreFailure and everything else→500.
func mapError(err error) mappedError {
	switch {
	case errors.Is(err, contextagent.ErrFixtureNotFound):
		return mappedError{
			HTTPStatus:    http.StatusNotFound,
			Reason:        "fixtureNotFound",
			Status:        "NOT_FOUND",
			PublicMessage: "fixture not found",
		}
	case errors.Is(err, contextagent.ErrBusy):
		return mappedError{
			HTTPStatus:    http.StatusConflict,
			Reason:        "busy",
			Status:        "ABORTED",
			PublicMessage: "match context is being collected by another request, retry shortly",
		}
	case errors.Is(err, contextagent.ErrCollectionTimeout):
		return mappedError{
			HTTPStatus:    http.StatusGatewayTimeout,
			Reason:        "collectionTimeout",
			Status:        "DEADLINE_EXCEEDED",
			PublicMessage: "match context collection timed out",
		}
	case errors.Is(err, contextagent.ErrUpstreamUnavailable):
		return mappedError{
			HTTPStatus:    http.StatusBadGateway,
			Reason:        "upstreamUnavailable",
			Status:        "UNAVAILABLE",
			PublicMessage: "upstream provider unavailable",
		}
	case errors.Is(err, contextagent.ErrStoreFailure):
		return mappedError{
			HTTPStatus:    http.StatusInternalServerError,
			Reason:        "storeFailure",
			Status:        "INTERNAL",
			PublicMessage: "internal server error",
		}
	default:
		return mappedError{
			HTTPStatus:    http.StatusInternalServerError,
			Reason:        "internalError",
			Status:        "INTERNAL",
			PublicMessage: "internal server error",
		}
	}
}
