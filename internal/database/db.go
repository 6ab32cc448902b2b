// Package database is the PostgreSQL storage backend: the historical draw
// table written by ingestion and the backtest run table written by the
// engine. It implements both models.DrawStore and models.ResultSink.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"megasena-analyzer/internal/source"
	"megasena-analyzer/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS megasena_draws (
			sequence BIGINT PRIMARY KEY,
			draw_date DATE NOT NULL,
			numbers INTEGER[] NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS backtest_runs (
			id SERIAL PRIMARY KEY,
			method TEXT NOT NULL,
			generated INTEGER[] NOT NULL,
			matches INTEGER[] NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Load returns every stored draw sorted by sequence ascending.
func (db *DB) Load() ([]models.Draw, error) {
	rows, err := db.Query(`
		SELECT sequence, draw_date, numbers
		FROM megasena_draws
		ORDER BY sequence ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var draws []models.Draw
	for rows.Next() {
		var (
			sequence int64
			date     time.Time
			numbers  []int64
		)
		if err := rows.Scan(&sequence, &date, pq.Array(&numbers)); err != nil {
			return nil, err
		}

		nums := make([]int, len(numbers))
		for i, n := range numbers {
			nums[i] = int(n)
		}
		draw, err := models.NewDraw(uint(sequence), date, nums)
		if err != nil {
			return nil, fmt.Errorf("stored draw %d: %w", sequence, err)
		}
		draws = append(draws, draw)
	}
	return draws, rows.Err()
}

// Fingerprint identifies the current content of the draw table without
// scanning it: row count, highest sequence and latest date together change
// whenever the table does.
func (db *DB) Fingerprint() (string, error) {
	var (
		count    int64
		maxSeq   sql.NullInt64
		lastDate sql.NullTime
	)
	err := db.QueryRow(`
		SELECT COUNT(*), MAX(sequence), MAX(draw_date)
		FROM megasena_draws
	`).Scan(&count, &maxSeq, &lastDate)
	if err != nil {
		return "", err
	}
	return source.Fingerprint(count, maxSeq.Int64, lastDate.Time.Unix()), nil
}

// LastSequence returns the highest stored draw sequence, 0 when empty.
func (db *DB) LastSequence() (uint, error) {
	var maxSeq sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(sequence) FROM megasena_draws`).Scan(&maxSeq); err != nil {
		return 0, err
	}
	if !maxSeq.Valid {
		return 0, nil
	}
	return uint(maxSeq.Int64), nil
}

// InsertDraw stores one draw, ignoring duplicates by sequence.
func (db *DB) InsertDraw(d models.Draw) error {
	numbers := make([]int64, len(d.Numbers))
	for i, n := range d.Numbers {
		numbers[i] = int64(n)
	}
	_, err := db.Exec(`
		INSERT INTO megasena_draws (sequence, draw_date, numbers)
		VALUES ($1, $2, $3)
		ON CONFLICT (sequence) DO NOTHING
	`, int64(d.Sequence), d.Date, pq.Array(numbers))
	return err
}

// SaveRuns atomically replaces every stored run for the method. Delete and
// insert share one transaction, so a concurrent Summary never observes a
// half-written history.
func (db *DB) SaveRuns(method models.Method, runs []models.BacktestRun) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM backtest_runs WHERE method = $1`, string(method)); err != nil {
		return err
	}

	for _, run := range runs {
		generated := make([]int64, len(run.Generated))
		for i, n := range run.Generated {
			generated[i] = int64(n)
		}
		matches := make([]int64, len(run.Matches))
		for i, m := range run.Matches {
			matches[i] = int64(m)
		}
		_, err := tx.Exec(`
			INSERT INTO backtest_runs (method, generated, matches, created_at)
			VALUES ($1, $2, $3, $4)
		`, string(run.Method), pq.Array(generated), pq.Array(matches), run.Timestamp)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadRuns returns every stored run for the method, oldest first. No stored
// runs is an empty slice, not an error.
func (db *DB) LoadRuns(method models.Method) ([]models.BacktestRun, error) {
	rows, err := db.Query(`
		SELECT method, generated, matches, created_at
		FROM backtest_runs
		WHERE method = $1
		ORDER BY id ASC
	`, string(method))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var runs []models.BacktestRun
	for rows.Next() {
		var (
			m         string
			generated []int64
			matches   []int64
			createdAt time.Time
		)
		if err := rows.Scan(&m, pq.Array(&generated), pq.Array(&matches), &createdAt); err != nil {
			return nil, err
		}

		run := models.BacktestRun{
			Method:    models.Method(m),
			Generated: make(models.CandidateSet, len(generated)),
			Matches:   make([]int, len(matches)),
			Timestamp: createdAt,
		}
		for i, n := range generated {
			run.Generated[i] = int(n)
		}
		for i, n := range matches {
			run.Matches[i] = int(n)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
