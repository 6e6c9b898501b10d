package records

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore handles run persistence using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and creates the runs table if needed.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		room_code TEXT NOT NULL,
		seed BIGINT NOT NULL,
		wave INTEGER NOT NULL,
		score INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		players TEXT[] NOT NULL,
		ended_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS runs_score_idx ON runs (score DESC, wave DESC, ended_at DESC);
	`

	_, err := ps.db.Exec(schema)
	return err
}

func (ps *PostgresStore) SaveRun(run Run) error {
	query := `
	INSERT INTO runs (id, room_code, seed, wave, score, kills, players, ended_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := ps.db.Exec(query,
		run.ID, run.RoomCode, run.Seed, run.Wave, run.Score, run.Kills,
		pq.Array(run.Players), run.EndedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const runColumns = `id, room_code, seed, wave, score, kills, players, ended_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	err := s.Scan(&r.ID, &r.RoomCode, &r.Seed, &r.Wave, &r.Score, &r.Kills,
		pq.Array(&r.Players), &r.EndedAt)
	return r, err
}

func (ps *PostgresStore) GetRun(id string) (Run, error) {
	row := ps.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return Run{}, fmt.Errorf("failed to load run: %w", err)
	}
	return r, nil
}

func (ps *PostgresStore) TopRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultTopRuns
	}
	rows, err := ps.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY score DESC, wave DESC, ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
