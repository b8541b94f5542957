// Package footballdata is the typed client for the upstream football data
// provider: fixtures, predictions, head-to-head history, per-fixture detail
// sections, standings, team statistics, injuries, sidelined players and
// league leader boards. Every call is wrapped in a circuit breaker and
// request de-duplication so the collector can fan calls out freely without
// thundering the provider.
package footballdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
	"github.com/oddsdesk/matchcontext/internal/platform/resilience"
)

// defaultBaseURL points at the v3 football data API; BaseURL in
// ClientConfig overrides it (e.g. to target the RapidAPI gateway instead).
const defaultBaseURL = "https://v3.football.api-sports.io"

// ErrTransient marks a failure the caller may retry: network errors,
// 5xx responses, and rate-limit rejections.
var ErrTransient = errors.New("football data provider transient failure")

// ErrCircuitOpen is returned when the breaker is rejecting calls outright.
var ErrCircuitOpen = resilience.ErrCircuitOpen

// ClientConfig configures a Client. Zero values pick sensible defaults.
type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Host           string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the typed upstream football data provider client (C1).
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	host           string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		host:           strings.TrimSpace(cfg.Host),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Envelope mirrors the provider's uniform `{response: ...}` wrapper.
type Envelope struct {
	Response any `json:"response"`
}

func (c *Client) GetFixture(ctx context.Context, fixtureID int) (any, error) {
	return c.getSingle(ctx, "/fixtures", url.Values{"id": {strconv.Itoa(fixtureID)}})
}

func (c *Client) GetPredictions(ctx context.Context, fixtureID int) (any, error) {
	return c.getEnvelope(ctx, "/predictions", url.Values{"fixture": {strconv.Itoa(fixtureID)}})
}

func (c *Client) GetHeadToHead(ctx context.Context, teamA, teamB, last int, statusFilter string) ([]any, error) {
	values := url.Values{
		"h2h":  {fmt.Sprintf("%d-%d", teamA, teamB)},
		"last": {strconv.Itoa(last)},
	}
	if statusFilter != "" {
		values.Set("status", statusFilter)
	}
	resp, err := c.getEnvelope(ctx, "/fixtures/headtohead", values)
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetFixtureStatistics(ctx context.Context, fixtureID int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, "/fixtures/statistics", url.Values{"fixture": {strconv.Itoa(fixtureID)}})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetFixturePlayers(ctx context.Context, fixtureID int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, "/fixtures/players", url.Values{"fixture": {strconv.Itoa(fixtureID)}})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetFixtureEvents(ctx context.Context, fixtureID int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, "/fixtures/events", url.Values{"fixture": {strconv.Itoa(fixtureID)}})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetFixtureLineups(ctx context.Context, fixtureID int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, "/fixtures/lineups", url.Values{"fixture": {strconv.Itoa(fixtureID)}})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetStandings(ctx context.Context, season, leagueID int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, "/standings", url.Values{
		"league": {strconv.Itoa(leagueID)},
		"season": {strconv.Itoa(season)},
	})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetTeamStatistics(ctx context.Context, teamID, season, leagueID int) (any, error) {
	return c.getSingle(ctx, "/teams/statistics", url.Values{
		"team":   {strconv.Itoa(teamID)},
		"league": {strconv.Itoa(leagueID)},
		"season": {strconv.Itoa(season)},
	})
}

func (c *Client) GetInjuries(ctx context.Context, teamID, leagueID, season int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, "/injuries", url.Values{
		"team":   {strconv.Itoa(teamID)},
		"league": {strconv.Itoa(leagueID)},
		"season": {strconv.Itoa(season)},
	})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetSidelined(ctx context.Context, teamID int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, "/sidelined", url.Values{"team": {strconv.Itoa(teamID)}})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

func (c *Client) GetTopScorers(ctx context.Context, leagueID, season int) ([]any, error) {
	return c.getLeaderBoard(ctx, "/players/topscorers", leagueID, season)
}

func (c *Client) GetTopAssists(ctx context.Context, leagueID, season int) ([]any, error) {
	return c.getLeaderBoard(ctx, "/players/topassists", leagueID, season)
}

func (c *Client) GetTopYellowCards(ctx context.Context, leagueID, season int) ([]any, error) {
	return c.getLeaderBoard(ctx, "/players/topyellowcards", leagueID, season)
}

func (c *Client) GetTopRedCards(ctx context.Context, leagueID, season int) ([]any, error) {
	return c.getLeaderBoard(ctx, "/players/topredcards", leagueID, season)
}

func (c *Client) getLeaderBoard(ctx context.Context, path string, leagueID, season int) ([]any, error) {
	resp, err := c.getEnvelope(ctx, path, url.Values{
		"league": {strconv.Itoa(leagueID)},
		"season": {strconv.Itoa(season)},
	})
	if err != nil {
		return nil, err
	}
	return asSlice(resp), nil
}

// getSingle returns the first element of the response array, or nil if empty.
func (c *Client) getSingle(ctx context.Context, path string, values url.Values) (any, error) {
	resp, err := c.getEnvelope(ctx, path, values)
	if err != nil {
		return nil, err
	}
	items := asSlice(resp)
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func (c *Client) getEnvelope(ctx context.Context, path string, values url.Values) (any, error) {
	raw, err := c.doGet(ctx, path, values)
	if err != nil {
		return nil, err
	}

	var envelope Envelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode provider payload for %s: %w", path, err)
	}
	return envelope.Response, nil
}

func (c *Client) doGet(ctx context.Context, path string, values url.Values) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football data circuit breaker rejected request", "path", path, "state", c.breaker.State())
			return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, path)
		}
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := fullURL
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && errors.Is(reqErr, ErrTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-apisports-key", c.apiKey)
		}
		if c.host != "" {
			req.Header.Set("x-rapidapi-host", c.host)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", ErrTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", ErrTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", ErrTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 250 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football data request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func asSlice(v any) []any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Scheme + "://" + parsed.Host + parsed.Path
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
