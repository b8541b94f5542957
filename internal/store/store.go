// Package store defines the persistence contract for match contexts and the
// summary view used by listing endpoints. Concrete backends live in the
// filestore, pgstore, and memstore subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/oddsdesk/matchcontext/internal/matchcontext"
)

// ErrNotFound is returned by Get and Delete when no context exists for the
// requested fixture.
var ErrNotFound = errors.New("match context not found")

// Summary is the lightweight listing view of a stored match context,
// without its analyses payload.
type Summary struct {
	FixtureID   int       `json:"fixture_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	League      string    `json:"league"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	AccessCount int       `json:"access_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the persistence contract a match context agent depends on. A
// match is analyzed once, then its complete context is stored; every
// subsequent read comes from here rather than the upstream provider.
type Store interface {
	// Has reports whether a context exists for the fixture, without
	// loading or mutating it.
	Has(ctx context.Context, fixtureID int) (bool, error)

	// Get loads a stored context, bumping its access metadata (LastAccessed,
	// AccessCount) and persisting that bump before returning. Returns
	// ErrNotFound if no context is stored for the fixture.
	Get(ctx context.Context, fixtureID int) (*matchcontext.MatchContext, error)

	// Save creates or fully replaces the stored context for a fixture.
	Save(ctx context.Context, mc *matchcontext.MatchContext) error

	// Delete removes a stored context, reporting false if none existed.
	Delete(ctx context.Context, fixtureID int) (bool, error)

	// ListAll returns every stored fixture ID.
	ListAll(ctx context.Context) ([]int, error)

	// ListByStatus returns the fixture IDs whose stored status matches.
	ListByStatus(ctx context.Context, status string) ([]int, error)

	// Summarize returns a lightweight summary of every stored context.
	Summarize(ctx context.Context) ([]Summary, error)

	// CleanupOlderThan deletes every context created before now-age,
	// returning the number of contexts removed.
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)

	// UpdateCausalCache patches only the causal-analysis fields of an
	// already-stored context, leaving its bet-type analyses untouched.
	UpdateCausalCache(ctx context.Context, fixtureID int, metrics map[string]any, findings []map[string]any, confidence, version string) error
}
