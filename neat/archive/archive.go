// Package archive persists per-generation run statistics to a sqlite
// database, one row per completed generation plus a serialized snapshot of
// the generation's champion. The archive is write-mostly during evolution;
// analysis happens offline with any sqlite client.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// GenerationRecord is one row of run history.
type GenerationRecord struct {
	Generation   int
	SpeciesCount int
	BestFitness  float64
	MeanFitness  float64
	StdevFitness float64
	Innovations  int
	Champion     []byte
}

// RunSummary aggregates the stored rows for one run.
type RunSummary struct {
	RunID       string
	Generations int
	BestFitness float64
}

// Store records generations for a single run. Every Open call starts a fresh
// run id, so multiple sessions against the same database file stay separable.
type Store struct {
	runID string

	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the archive database at path and prepares it for a
// new run.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("archive path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{runID: uuid.NewString(), db: db}, nil
}

// RunID returns the identifier assigned to this session.
func (s *Store) RunID() string {
	return s.runID
}

// RecordGeneration upserts one generation row for the current run. Re-running
// a generation (after a resume from an older save) overwrites the stale row.
func (s *Store) RecordGeneration(ctx context.Context, rec GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("archive is closed")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations
			(run_id, generation, species_count, best_fitness, mean_fitness,
			 stdev_fitness, innovations, champion, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			species_count = excluded.species_count,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			stdev_fitness = excluded.stdev_fitness,
			innovations = excluded.innovations,
			champion = excluded.champion,
			recorded_at = excluded.recorded_at
	`, s.runID, rec.Generation, rec.SpeciesCount, rec.BestFitness, rec.MeanFitness,
		rec.StdevFitness, rec.Innovations, rec.Champion, time.Now().UTC())
	return err
}

// History returns the current run's rows in generation order. The champion
// payloads are omitted.
func (s *Store) History(ctx context.Context) ([]GenerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, errors.New("archive is closed")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT generation, species_count, best_fitness, mean_fitness,
		       stdev_fitness, innovations
		FROM generations
		WHERE run_id = ?
		ORDER BY generation
	`, s.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		if err := rows.Scan(&rec.Generation, &rec.SpeciesCount, &rec.BestFitness,
			&rec.MeanFitness, &rec.StdevFitness, &rec.Innovations); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Champion returns the serialized champion genome for a generation of the
// current run.
func (s *Store) Champion(ctx context.Context, generation int) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, false, errors.New("archive is closed")
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT champion FROM generations WHERE run_id = ? AND generation = ?
	`, s.runID, generation).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, len(payload) > 0, nil
}

// Summaries lists every run stored in the database, newest first.
func (s *Store) Summaries(ctx context.Context) ([]RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, errors.New("archive is closed")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, COUNT(*), MAX(best_fitness)
		FROM generations
		GROUP BY run_id
		ORDER BY MAX(recorded_at) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var sum RunSummary
		if err := rows.Scan(&sum.RunID, &sum.Generations, &sum.BestFitness); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			species_count INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			stdev_fitness REAL NOT NULL,
			innovations INTEGER NOT NULL,
			champion BLOB,
			recorded_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
