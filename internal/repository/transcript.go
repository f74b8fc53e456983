package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/callsift/callsift/internal/model"
)

// ErrDuplicatePath is returned by Create when a record already exists for
// the filepath. The pipeline treats it as a skip, not a failure.
var ErrDuplicatePath = errors.New("transcript already recorded for filepath")

// ErrNotFound is returned by Get when no record matches the id.
var ErrNotFound = errors.New("transcript not found")

// TranscriptRepository wraps all SQL used by the pipeline and the worker.
type TranscriptRepository struct {
	pool *pgxpool.Pool
}

// NewTranscriptRepository constructs a repository.
func NewTranscriptRepository(pool *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{pool: pool}
}

// ExistsByPath reports whether a record was already created for the path.
func (r *TranscriptRepository) ExistsByPath(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transcripts WHERE filepath=$1)`, path,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check filepath: %w", err)
	}
	return exists, nil
}

// Create inserts a new transcript record. A unique violation on filepath is
// reported as ErrDuplicatePath so two near-simultaneous events for the same
// file cannot both materialize.
func (r *TranscriptRepository) Create(ctx context.Context, t *model.Transcript) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transcripts (id, filename, filepath, raw_content, duration_minutes, call_date, context, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, t.ID, t.Filename, t.Filepath, t.RawContent, t.DurationMinutes, t.CallDate, t.Context, t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePath
		}
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// Get returns a transcript by id.
func (r *TranscriptRepository) Get(ctx context.Context, id string) (*model.Transcript, error) {
	var t model.Transcript
	row := r.pool.QueryRow(ctx, `
		SELECT id, filename, filepath, raw_content, duration_minutes, call_date, COALESCE(context,''), created_at
		FROM transcripts WHERE id=$1
	`, id)
	if err := row.Scan(&t.ID, &t.Filename, &t.Filepath, &t.RawContent, &t.DurationMinutes, &t.CallDate, &t.Context, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select transcript: %w", err)
	}
	return &t, nil
}

// List returns the most recent transcripts, newest first.
func (r *TranscriptRepository) List(ctx context.Context, limit int) ([]*model.Transcript, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, filename, filepath, raw_content, duration_minutes, call_date, COALESCE(context,''), created_at
		FROM transcripts ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()
	var out []*model.Transcript
	for rows.Next() {
		var t model.Transcript
		if err := rows.Scan(&t.ID, &t.Filename, &t.Filepath, &t.RawContent, &t.DurationMinutes, &t.CallDate, &t.Context, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
