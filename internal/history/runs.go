package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tunepull/internal/track"
)

// timeLayout keeps fractional seconds fixed-width so stored values sort.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one fetch batch.
type Run struct {
	ID         string     `json:"id"`
	SourceURL  string     `json:"source_url"`
	Kind       track.Kind `json:"kind"`
	CatalogID  string     `json:"catalog_id"`
	Collection string     `json:"collection"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Cancelled  bool       `json:"cancelled,omitempty"`
}

// Finished reports whether the run was closed.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Entry is the stored result of one record in a run.
type Entry struct {
	Position   int           `json:"position"`
	Record     track.Record  `json:"record"`
	Outcome    track.Outcome `json:"outcome"`
	OutputPath string        `json:"output_path,omitempty"`
	Skipped    bool          `json:"skipped,omitempty"`
	Detail     string        `json:"detail,omitempty"`
}

// Begin records the start of a batch for cat and returns the new run.
func (s *Store) Begin(ctx context.Context, cat track.Catalog) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		SourceURL:  cat.SourceURL,
		Kind:       cat.Kind,
		CatalogID:  cat.ID,
		Collection: cat.CollectionName,
		StartedAt:  time.Now().UTC(),
	}
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (id, source_url, kind, catalog_id, collection, started_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, run.SourceURL, string(run.Kind), run.CatalogID, run.Collection,
			run.StartedAt.Format(timeLayout),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish stores per-record results and closes the run with its tallies.
func (s *Store) Finish(ctx context.Context, run *Run, results []track.FetchResult, cancelled bool) error {
	if run == nil {
		return errors.New("finish run: nil run")
	}
	summary := track.Summarize(results)
	run.FinishedAt = time.Now().UTC()
	run.Total = summary.Total
	run.Succeeded = summary.Succeeded
	run.Skipped = summary.Skipped
	run.Failed = summary.Failed
	run.Cancelled = cancelled

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for i, res := range results {
			position := res.Position
			if position <= 0 {
				position = i + 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO results (run_id, position, title, artist, album, outcome, output_path, skipped, detail)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, position, res.Record.Title, res.Record.Artist, res.Record.Album,
				string(res.Outcome), nullableString(res.OutputPath), boolToInt(res.Skipped), nullableString(res.Detail),
			); err != nil {
				return fmt.Errorf("insert result %d: %w", position, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE runs SET finished_at = ?, total = ?, succeeded = ?, skipped = ?, failed = ?, cancelled = ?
             WHERE id = ?`,
			run.FinishedAt.Format(timeLayout), run.Total, run.Succeeded, run.Skipped, run.Failed,
			boolToInt(cancelled), run.ID,
		); err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		return tx.Commit()
	})
}

const runColumns = `id, source_url, kind, catalog_id, collection, started_at, finished_at,
    total, succeeded, skipped, failed, cancelled`

// List returns the most recent runs first. A non-positive limit lists all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns a run by id or a unique id prefix.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at DESC LIMIT 2",
		id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Entries returns the stored results of a run in record order.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, title, artist, album, outcome, output_path, skipped, detail
         FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			outcome    string
			outputPath sql.NullString
			detail     sql.NullString
			skipped    int
		)
		if err := rows.Scan(&entry.Position, &entry.Record.Title, &entry.Record.Artist, &entry.Record.Album,
			&outcome, &outputPath, &skipped, &detail); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		entry.Outcome = track.Outcome(outcome)
		entry.OutputPath = outputPath.String
		entry.Skipped = skipped != 0
		entry.Detail = detail.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear removes every run and its results.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, "DELETE FROM results"); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM runs")
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var (
		run       Run
		kind      string
		started   string
		finished  sql.NullString
		cancelled int
	)
	if err := scanner.Scan(&run.ID, &run.SourceURL, &kind, &run.CatalogID, &run.Collection, &started, &finished,
		&run.Total, &run.Succeeded, &run.Skipped, &run.Failed, &cancelled); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Kind = track.Kind(kind)
	run.Cancelled = cancelled != 0
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return &run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
