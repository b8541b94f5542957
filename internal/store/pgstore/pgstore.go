// Package pgstore is a PostgreSQL-backed store.Store implementation: one row
// per fixture in match_contexts, with the per-bet-type analyses and causal
// fields held in a JSONB column.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	qb "github.com/oddsdesk/matchcontext/internal/platform/querybuilder"
	"github.com/oddsdesk/matchcontext/internal/store"
)

// Store persists match contexts in the match_contexts table.
type Store struct {
	db *sqlx.DB
}

// New wraps an already-connected *sqlx.DB.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

type matchAnalysisRow struct {
	FixtureID        int        `db:"fixture_id"`
	HomeTeam         string     `db:"home_team"`
	AwayTeam         string     `db:"away_team"`
	League           string     `db:"league"`
	Season           int        `db:"season"`
	MatchDate        time.Time  `db:"match_date"`
	MatchStatus      string     `db:"match_status"`
	AnalysesData     []byte     `db:"analyses_data"`
	CausalMetrics    []byte     `db:"causal_metrics"`
	CausalFindings   []byte     `db:"causal_findings"`
	CausalConfidence *string    `db:"causal_confidence"`
	CausalVersion    *string    `db:"causal_version"`
	Version          string     `db:"version"`
	APICallsCount    int        `db:"api_calls_count"`
	CreatedAt        time.Time  `db:"created_at"`
	LastAccessed     *time.Time `db:"last_accessed"`
	AccessCount      int        `db:"access_count"`
}

type matchAnalysisInsertModel struct {
	FixtureID        int     `db:"fixture_id"`
	HomeTeam         string  `db:"home_team"`
	AwayTeam         string  `db:"away_team"`
	League           string  `db:"league"`
	Season           int     `db:"season"`
	MatchDate        time.Time `db:"match_date"`
	MatchStatus      string  `db:"match_status"`
	AnalysesData     []byte  `db:"analyses_data"`
	CausalMetrics    []byte  `db:"causal_metrics"`
	CausalFindings   []byte  `db:"causal_findings"`
	CausalConfidence *string `db:"causal_confidence"`
	CausalVersion    *string `db:"causal_version"`
	Version          string  `db:"version"`
	APICallsCount    int     `db:"api_calls_count"`
	CreatedAt        time.Time `db:"created_at"`
	LastAccessed     *time.Time `db:"last_accessed"`
	AccessCount      int     `db:"access_count"`
}

func rowToContext(row matchAnalysisRow) (*matchcontext.MatchContext, error) {
	analyses := map[matchcontext.BetType]matchcontext.BetAnalysisData{}
	if len(row.AnalysesData) > 0 {
		if err := sonic.Unmarshal(row.AnalysesData, &analyses); err != nil {
			return nil, fmt.Errorf("decode analyses_data: %w", err)
		}
	}

	var causalMetrics map[string]any
	if len(row.CausalMetrics) > 0 {
		if err := sonic.Unmarshal(row.CausalMetrics, &causalMetrics); err != nil {
			return nil, fmt.Errorf("decode causal_metrics: %w", err)
		}
	}

	var causalFindings []map[string]any
	if len(row.CausalFindings) > 0 {
		if err := sonic.Unmarshal(row.CausalFindings, &causalFindings); err != nil {
			return nil, fmt.Errorf("decode causal_findings: %w", err)
		}
	}

	return &matchcontext.MatchContext{
		FixtureID: row.FixtureID,
		HomeTeam:  row.HomeTeam,
		AwayTeam:  row.AwayTeam,
		League:    row.League,
		Season:    row.Season,
		Date:      row.MatchDate,
		Status:    row.MatchStatus,
		Analyses:  analyses,
		Metadata: matchcontext.Metadata{
			Version:          row.Version,
			ContextCreatedAt: row.CreatedAt,
			LastAccessed:     row.LastAccessed,
			AccessCount:      row.AccessCount,
			APICallsCount:    row.APICallsCount,
		},
		CausalMetrics:    causalMetrics,
		CausalFindings:   causalFindings,
		CausalConfidence: row.CausalConfidence,
		CausalVersion:    row.CausalVersion,
	}, nil
}

func contextToInsertModel(mc *matchcontext.MatchContext) (matchAnalysisInsertModel, error) {
	analysesData, err := sonic.Marshal(mc.Analyses)
	if err != nil {
		return matchAnalysisInsertModel{}, fmt.Errorf("encode analyses: %w", err)
	}

	var causalMetrics, causalFindings []byte
	if mc.CausalMetrics != nil {
		if causalMetrics, err = sonic.Marshal(mc.CausalMetrics); err != nil {
			return matchAnalysisInsertModel{}, fmt.Errorf("encode causal_metrics: %w", err)
		}
	}
	if mc.CausalFindings != nil {
		if causalFindings, err = sonic.Marshal(mc.CausalFindings); err != nil {
			return matchAnalysisInsertModel{}, fmt.Errorf("encode causal_findings: %w", err)
		}
	}

	return matchAnalysisInsertModel{
		FixtureID:        mc.FixtureID,
		HomeTeam:         mc.HomeTeam,
		AwayTeam:         mc.AwayTeam,
		League:           mc.League,
		Season:           mc.Season,
		MatchDate:        mc.Date,
		MatchStatus:      mc.Status,
		AnalysesData:     analysesData,
		CausalMetrics:    causalMetrics,
		CausalFindings:   causalFindings,
		CausalConfidence: mc.CausalConfidence,
		CausalVersion:    mc.CausalVersion,
		Version:          mc.Metadata.Version,
		APICallsCount:    mc.Metadata.APICallsCount,
		CreatedAt:        mc.Metadata.ContextCreatedAt,
		LastAccessed:     mc.Metadata.LastAccessed,
		AccessCount:      mc.Metadata.AccessCount,
	}, nil
}

func (s *Store) Has(ctx context.Context, fixtureID int) (bool, error) {
	query, args, err := qb.Select("1").From("match_contexts").
		Where(qb.Eq("fixture_id", fixtureID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has match context query: %w", err)
	}

	var exists int
	if err := s.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check match context existence: %w", err)
	}
	return true, nil
}

// Get reads the row and bumps its access metadata in a single transaction so
// concurrent readers never observe a context without its access_count update.
func (s *Store) Get(ctx context.Context, fixtureID int) (*matchcontext.MatchContext, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin get match context tx: %w", err)
	}
	defer tx.Rollback()

	row, err := s.getRowTx(ctx, tx, fixtureID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query, args, err := qb.Update("match_contexts").
		SetExpr("access_count", "access_count + 1").
		Set("last_accessed", now).
		Where(qb.Eq("fixture_id", fixtureID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build bump access metadata query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("bump access metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit get match context tx: %w", err)
	}

	row.AccessCount++
	row.LastAccessed = &now
	return rowToContext(row)
}

func (s *Store) getRowTx(ctx context.Context, tx *sqlx.Tx, fixtureID int) (matchAnalysisRow, error) {
	query, args, err := qb.Select("*").From("match_contexts").
		Where(qb.Eq("fixture_id", fixtureID)).
		ToSQL()
	if err != nil {
		return matchAnalysisRow{}, fmt.Errorf("build get match context query: %w", err)
	}

	var row matchAnalysisRow
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return matchAnalysisRow{}, store.ErrNotFound
		}
		return matchAnalysisRow{}, fmt.Errorf("get match context: %w", err)
	}
	return row, nil
}

func (s *Store) Save(ctx context.Context, mc *matchcontext.MatchContext) error {
	insertModel, err := contextToInsertModel(mc)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("match_contexts", insertModel, `ON CONFLICT (fixture_id)
DO UPDATE SET
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    league = EXCLUDED.league,
    season = EXCLUDED.season,
    match_date = EXCLUDED.match_date,
    match_status = EXCLUDED.match_status,
    analyses_data = EXCLUDED.analyses_data,
    causal_metrics = EXCLUDED.causal_metrics,
    causal_findings = EXCLUDED.causal_findings,
    causal_confidence = EXCLUDED.causal_confidence,
    causal_version = EXCLUDED.causal_version,
    version = EXCLUDED.version,
    api_calls_count = EXCLUDED.api_calls_count,
    created_at = EXCLUDED.created_at,
    last_accessed = EXCLUDED.last_accessed,
    access_count = EXCLUDED.access_count`)
	if err != nil {
		return fmt.Errorf("build upsert match context query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match context fixture_id=%d: %w", mc.FixtureID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, fixtureID int) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM match_contexts WHERE fixture_id = $1`, fixtureID)
	if err != nil {
		return false, fmt.Errorf("delete match context: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read delete rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) ListAll(ctx context.Context) ([]int, error) {
	var ids []int
	if err := s.db.SelectContext(ctx, &ids, `SELECT fixture_id FROM match_contexts ORDER BY fixture_id`); err != nil {
		return nil, fmt.Errorf("list match contexts: %w", err)
	}
	return ids, nil
}

func (s *Store) ListByStatus(ctx context.Context, status string) ([]int, error) {
	query, args, err := qb.Select("fixture_id").From("match_contexts").
		Where(qb.Eq("match_status", status)).
		OrderBy("fixture_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list by status query: %w", err)
	}

	var ids []int
	if err := s.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list match contexts by status: %w", err)
	}
	return ids, nil
}

func (s *Store) Summarize(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT fixture_id, home_team, away_team, league, match_date, match_status,
		access_count, created_at FROM match_contexts ORDER BY fixture_id`)
	if err != nil {
		return nil, fmt.Errorf("query match context summaries: %w", err)
	}
	defer rows.Close()

	var summaries []store.Summary
	for rows.Next() {
		var sRow struct {
			FixtureID   int       `db:"fixture_id"`
			HomeTeam    string    `db:"home_team"`
			AwayTeam    string    `db:"away_team"`
			League      string    `db:"league"`
			MatchDate   time.Time `db:"match_date"`
			MatchStatus string    `db:"match_status"`
			AccessCount int       `db:"access_count"`
			CreatedAt   time.Time `db:"created_at"`
		}
		if err := rows.StructScan(&sRow); err != nil {
			return nil, fmt.Errorf("scan match context summary: %w", err)
		}
		summaries = append(summaries, store.Summary{
			FixtureID:   sRow.FixtureID,
			HomeTeam:    sRow.HomeTeam,
			AwayTeam:    sRow.AwayTeam,
			League:      sRow.League,
			Date:        sRow.MatchDate,
			Status:      sRow.MatchStatus,
			AccessCount: sRow.AccessCount,
			CreatedAt:   sRow.CreatedAt,
		})
	}
	return summaries, rows.Err()
}

func (s *Store) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-age)
	result, err := s.db.ExecContext(ctx, `DELETE FROM match_contexts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old match contexts: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read cleanup rows affected: %w", err)
	}
	return int(affected), nil
}

func (s *Store) UpdateCausalCache(ctx context.Context, fixtureID int, metrics map[string]any, findings []map[string]any, confidence, version string) error {
	metricsJSON, err := sonic.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode causal_metrics: %w", err)
	}
	findingsJSON, err := sonic.Marshal(findings)
	if err != nil {
		return fmt.Errorf("encode causal_findings: %w", err)
	}

	query, args, err := qb.Update("match_contexts").
		Set("causal_metrics", metricsJSON).
		Set("causal_findings", findingsJSON).
		Set("causal_confidence", confidence).
		Set("causal_version", version).
		Where(qb.Eq("fixture_id", fixtureID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update causal cache query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update causal cache fixture_id=%d: %w", fixtureID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update causal cache rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
