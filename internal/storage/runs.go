package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/autocateg"
)

const (
	RunStatusRunning   = "running"
	RunStatusDone      = "done"
	RunStatusCancelled = "cancelled"

	RunSourceManual = "manual"
	RunSourceWatch  = "watch"
)

// Run is one recorded analysis pass over the catalog.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     sql.NullTime
	Status         string
	Source         string
	TotalProducts  int
	Analyzed       int
	Matched        int
	HighConfidence int
	AlreadyCorrect int
}

// Suggestion is one persisted MatchResult, annotated with whether it has
// been applied back to the catalog.
type Suggestion struct {
	RunID           string
	SKU             string
	Titulo          string
	CurrentCategory string
	SuggestedSlug   string
	SuggestedPath   string
	Confidence      int
	MatchedKeywords []string
	AlreadyCorrect  bool
	Selected        bool
	Applied         bool
}

// MatchResult converts the suggestion back into the engine's result type
// for the apply step.
func (s Suggestion) MatchResult() autocateg.MatchResult {
	return autocateg.MatchResult{
		SKU:             s.SKU,
		Titulo:          s.Titulo,
		CurrentCategory: s.CurrentCategory,
		SuggestedSlug:   s.SuggestedSlug,
		SuggestedPath:   s.SuggestedPath,
		Confidence:      s.Confidence,
		MatchedKeywords: s.MatchedKeywords,
		AlreadyCorrect:  s.AlreadyCorrect,
		Selected:        s.Selected,
	}
}

// SuggestionFilter narrows and orders what GetSuggestions returns.
type SuggestionFilter struct {
	MinConfidence      int
	OnlySelected       bool
	HideAlreadyCorrect bool
	OnlyUnapplied      bool

	// OrderBy is one of "confidence" (default, descending), "sku" or
	// "titulo".
	OrderBy string
	Limit   int
}

// CreateRun records the start of an analysis pass and returns it.
func (s *SQLiteStore) CreateRun(source string, totalProducts int) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:            uuid.New().String(),
		StartedAt:     time.Now(),
		Status:        RunStatusRunning,
		Source:        source,
		TotalProducts: totalProducts,
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, status, source, total_products) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Status, run.Source, run.TotalProducts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// FinishRun closes a run with its final status and summary counters. The
// analyzed count can be lower than the run's total when it was cancelled
// partway through.
func (s *SQLiteStore) FinishRun(id string, status string, summary autocateg.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE runs SET
			finished_at = ?,
			status = ?,
			analyzed = ?,
			matched = ?,
			high_confidence = ?,
			already_correct = ?
		WHERE id = ?
	`, time.Now(), status, summary.Total, summary.Matched, summary.HighConfidence, summary.AlreadyCorrect, id)

	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID. Returns nil, nil when it doesn't exist.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRow(
		`SELECT id, started_at, finished_at, status, source, total_products, analyzed, matched, high_confidence, already_correct
		 FROM runs WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// LatestRun retrieves the most recently started run. Returns nil, nil when
// no run has been recorded yet.
func (s *SQLiteStore) LatestRun() (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRow(
		`SELECT id, started_at, finished_at, status, source, total_products, analyzed, matched, high_confidence, already_correct
		 FROM runs ORDER BY started_at DESC LIMIT 1`,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Source,
		&r.TotalProducts, &r.Analyzed, &r.Matched, &r.HighConfidence, &r.AlreadyCorrect,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns runs newest first, up to limit (0 means no limit).
func (s *SQLiteStore) ListRuns(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, started_at, finished_at, status, source, total_products, analyzed, matched, high_confidence, already_correct
	          FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// SaveResults persists one run's results in a single transaction.
func (s *SQLiteStore) SaveResults(runID string, results []autocateg.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO suggestions (run_id, sku, titulo, current_category, suggested_slug, suggested_path, confidence, matched_keywords, already_correct, selected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, sku) DO UPDATE SET
			titulo = excluded.titulo,
			current_category = excluded.current_category,
			suggested_slug = excluded.suggested_slug,
			suggested_path = excluded.suggested_path,
			confidence = excluded.confidence,
			matched_keywords = excluded.matched_keywords,
			already_correct = excluded.already_correct,
			selected = excluded.selected
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		keywords, err := json.Marshal(r.MatchedKeywords)
		if err != nil {
			return fmt.Errorf("failed to marshal keywords for %s: %w", r.SKU, err)
		}

		_, err = stmt.Exec(
			runID, r.SKU, r.Titulo, r.CurrentCategory, r.SuggestedSlug, r.SuggestedPath,
			r.Confidence, string(keywords), r.AlreadyCorrect, r.Selected,
		)
		if err != nil {
			return fmt.Errorf("failed to save result for %s: %w", r.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSuggestions returns one run's suggestions, filtered and ordered.
func (s *SQLiteStore) GetSuggestions(runID string, filter SuggestionFilter) ([]Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT run_id, sku, titulo, current_category, suggested_slug, suggested_path, confidence, matched_keywords, already_correct, selected, applied
	          FROM suggestions WHERE run_id = ?`
	args := []any{runID}

	if filter.MinConfidence > 0 {
		query += " AND confidence >= ?"
		args = append(args, filter.MinConfidence)
	}
	if filter.OnlySelected {
		query += " AND selected = 1"
	}
	if filter.HideAlreadyCorrect {
		query += " AND already_correct = 0"
	}
	if filter.OnlyUnapplied {
		query += " AND applied = 0"
	}

	switch filter.OrderBy {
	case "", "confidence":
		query += " ORDER BY confidence DESC, sku"
	case "sku":
		query += " ORDER BY sku"
	case "titulo":
		query += " ORDER BY titulo COLLATE NOCASE, sku"
	default:
		return nil, fmt.Errorf("unknown sort order: %s", filter.OrderBy)
	}

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []Suggestion
	for rows.Next() {
		var sg Suggestion
		var keywords string
		if err := rows.Scan(
			&sg.RunID, &sg.SKU, &sg.Titulo, &sg.CurrentCategory, &sg.SuggestedSlug, &sg.SuggestedPath,
			&sg.Confidence, &keywords, &sg.AlreadyCorrect, &sg.Selected, &sg.Applied,
		); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}

		if err := json.Unmarshal([]byte(keywords), &sg.MatchedKeywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords for %s: %w", sg.SKU, err)
		}

		suggestions = append(suggestions, sg)
	}

	return suggestions, rows.Err()
}

// SetSelected toggles the review selection on specific suggestions.
func (s *SQLiteStore) SetSelected(runID string, skus []string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE suggestions SET selected = ? WHERE run_id = ? AND sku = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sku := range skus {
		if _, err := stmt.Exec(selected, runID, sku); err != nil {
			return fmt.Errorf("failed to set selection for %s: %w", sku, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SelectByConfidence selects (or deselects) every suggestion at or above
// the confidence floor that still has something to apply. Returns how many
// rows changed.
func (s *SQLiteStore) SelectByConfidence(runID string, minConfidence int, selected bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`
		UPDATE suggestions SET selected = ?
		WHERE run_id = ? AND confidence >= ? AND already_correct = 0 AND suggested_slug != '' AND applied = 0
	`, selected, runID, minConfidence)
	if err != nil {
		return 0, fmt.Errorf("failed to update selection: %w", err)
	}

	return result.RowsAffected()
}

// MarkApplied records that the catalog accepted these suggestions: the
// suggestion becomes the current category and the row is flagged applied.
func (s *SQLiteStore) MarkApplied(runID string, skus []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE suggestions SET
			applied = 1,
			current_category = suggested_slug,
			already_correct = 1
		WHERE run_id = ? AND sku = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sku := range skus {
		if _, err := stmt.Exec(runID, sku); err != nil {
			return fmt.Errorf("failed to mark %s applied: %w", sku, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// MarkProductsSeen records skus in the seen ledger in one transaction.
func (s *SQLiteStore) MarkProductsSeen(skus []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO seen_products (sku, seen_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, sku := range skus {
		if _, err := stmt.Exec(sku, now); err != nil {
			return fmt.Errorf("failed to mark %s seen: %w", sku, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SeenSKUs returns every sku in the seen ledger.
func (s *SQLiteStore) SeenSKUs() (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT sku FROM seen_products`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen products: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, fmt.Errorf("failed to scan sku: %w", err)
		}
		seen[sku] = true
	}

	return seen, rows.Err()
}

// PruneSeenProducts removes ledger entries older than the given duration so
// renamed or re-imported products get another look.
func (s *SQLiteStore) PruneSeenProducts(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	result, err := s.db.Exec(`DELETE FROM seen_products WHERE seen_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune seen products: %w", err)
	}

	return result.RowsAffected()
}
