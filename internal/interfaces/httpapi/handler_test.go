package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oddsdesk/matchcontext/external/footballdatatest"
	"github.com/oddsdesk/matchcontext/internal/analysis"
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/contextagent"
	"github.com/oddsdesk/matchcontext/internal/platform/lock"
	"github.com/oddsdesk/matchcontext/internal/store/memstore"
)

func fixtureResponse(home, away, league, season int, status string) any {
	return map[string]any{
		"fixture": map[string]any{
			"status": map[string]any{"short": status},
			"date":   "2026-08-01T15:00:00+00:00",
		},
		"teams": map[string]any{
			"home": map[string]any{"id": float64(home), "name": "Home FC"},
			"away": map[string]any{"id": float64(away), "name": "Away FC"},
		},
		"league": map[string]any{"id": float64(league), "name": "Premier League", "season": float64(season)},
	}
}

func newTestRouter() http.Handler {
	stub := footballdatatest.New()
	stub.SetResponse(footballdatatest.KeyFixture(900), fixtureResponse(1, 2, 39, 2026, "NS"))

	col := collector.New(stub, nil, collector.Config{})
	agent := contextagent.New(memstore.New(), lock.NewInMemoryManager(), col, analysis.All(), nil, contextagent.Options{})
	return NewRouter(NewHandler(agent, nil), nil)
}

func TestHandler_Healthz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_AnalyzeFixture_Success(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"fixture_id": 900}`)
	req := httptest.NewRequest(http.MethodPost, "/analyzers/analyze", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope googleResponseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data == nil {
		t.Fatal("expected data payload on success")
	}
}

func TestHandler_AnalyzeFixture_MissingFixtureIDFailsValidation(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"force_refresh": true}`)
	req := httptest.NewRequest(http.MethodPost, "/analyzers/analyze", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected validation failures to map to 500 via the default error case, got %d", rec.Code)
	}
}

func TestHandler_AnalyzeFixture_UnknownFixtureMapsToNotFound(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`{"fixture_id": 404404}`)
	req := httptest.NewRequest(http.MethodPost, "/analyzers/analyze", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unscripted fixture, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope googleResponseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Status != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND error status, got %+v", envelope.Error)
	}
}

func TestHandler_AnalyzeFixture_MalformedJSONMapsToInternalError(t *testing.T) {
	router := newTestRouter()

	body := bytes.NewBufferString(`not json`)
	req := httptest.NewRequest(http.MethodPost, "/analyzers/analyze", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected malformed JSON to map to 500 via the default error case, got %d", rec.Code)
	}
}
