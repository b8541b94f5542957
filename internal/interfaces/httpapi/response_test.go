package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/oddsdesk/matchcontext/internal/contextagent"
)

func TestMapError_FixtureNotFound(t *testing.T) {
	mapped := mapError(fmt.Errorf("wrap: %w", contextagent.ErrFixtureNotFound))
	if mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", mapped.HTTPStatus)
	}
	if mapped.Status != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND status, got %q", mapped.Status)
	}
}

func TestMapError_Busy(t *testing.T) {
	mapped := mapError(fmt.Errorf("wrap: %w", contextagent.ErrBusy))
	if mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409, got %d", mapped.HTTPStatus)
	}
}

func TestMapError_CollectionTimeout(t *testing.T) {
	mapped := mapError(fmt.Errorf("wrap: %w", contextagent.ErrCollectionTimeout))
	if mapped.HTTPStatus != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", mapped.HTTPStatus)
	}
}

func TestMapError_UpstreamUnavailable(t *testing.T) {
	mapped := mapError(fmt.Errorf("wrap: %w", contextagent.ErrUpstreamUnavailable))
	if mapped.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", mapped.HTTPStatus)
	}
}

func TestMapError_StoreFailure(t *testing.T) {
	mapped := mapError(fmt.Errorf("wrap: %w", contextagent.ErrStoreFailure))
	if mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", mapped.HTTPStatus)
	}
}

func TestMapError_UnknownDefaultsToInternal(t *testing.T) {
	mapped := mapError(fmt.Errorf("some unexpected failure"))
	if mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an unmapped error, got %d", mapped.HTTPStatus)
	}
	if mapped.Reason != "internalError" {
		t.Fatalf("expected internalError reason, got %q", mapped.Reason)
	}
}
