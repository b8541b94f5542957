package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	sonic "github.com/bytedance/sonic"

	"github.com/oddsdesk/matchcontext/internal/contextagent"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
)

// Handler exposes the core's one public contract endpoint over HTTP. It
// exists only so cmd/contextapi has something runnable to wire the
// contextagent.Agent into; the router/HTTP surface itself is out of scope
// per spec.md §1.
type Handler struct {
	agent     *contextagent.Agent
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(agent *contextagent.Agent, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		agent:     agent,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("invalid request: %v", err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeFixtureRequest struct {
	FixtureID    int  `json:"fixture_id" validate:"required"`
	ForceRefresh bool `json:"force_refresh"`
}

type betAnalysisResponse struct {
	Indicators       map[string]any `json:"indicators"`
	CoverageComplete bool           `json:"coverage_complete"`
	DataSources      []string       `json:"data_sources"`
}

type analyzeFixtureResponse struct {
	FixtureID int                            `json:"fixture_id"`
	Match     string                         `json:"match"`
	League    string                         `json:"league"`
	Season    int                            `json:"season"`
	Date      string                         `json:"date"`
	Status    string                         `json:"status"`
	Analyses  map[string]betAnalysisResponse `json:"analyses"`
	Source    string                         `json:"source"`
	APICalls  int                            `json:"api_calls"`
}

// AnalyzeFixture is spec.md §6's one contract endpoint: POST
// /analyzers/analyze { fixture_id, force_refresh } -> the full MatchContext
// view.
func (h *Handler) AnalyzeFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AnalyzeFixture")
	defer span.End()

	var req analyzeFixtureRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("invalid JSON payload: %v", err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.agent.GetMatchContext(ctx, req.FixtureID, req.ForceRefresh)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toAnalyzeFixtureResponse(result))
}

func toAnalyzeFixtureResponse(result contextagent.Result) analyzeFixtureResponse {
	mc := result.Context

	analyses := make(map[string]betAnalysisResponse, len(mc.Analyses))
	for betType, data := range mc.Analyses {
		analyses[string(betType)] = betAnalysisResponse{
			Indicators:       data.Indicators,
			CoverageComplete: data.CoverageComplete,
			DataSources:      data.DataSources,
		}
	}

	return analyzeFixtureResponse{
		FixtureID: mc.FixtureID,
		Match:     fmt.Sprintf("%s vs %s", mc.HomeTeam, mc.AwayTeam),
		League:    mc.League,
		Season:    mc.Season,
		Date:      mc.Date.Format("2006-01-02T15:04:05Z07:00"),
		Status:    mc.Status,
		Analyses:  analyses,
		Source:    result.Source,
		APICalls:  result.APICalls,
	}
}
