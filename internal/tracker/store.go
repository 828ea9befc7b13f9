package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/posting"
)

// ErrNotFound is returned when an application does not exist.
var ErrNotFound = errors.New("application not found")

// ErrForbiddenTransition is returned when the status change is not allowed.
var ErrForbiddenTransition = errors.New("status transition not allowed")

// Application is a tracked job application.
type Application struct {
	ID        string
	URL       string
	Title     string
	Company   string
	Source    string
	Score     int
	Status    Status
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists applications in Postgres.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool creates and verifies a pgxpool connection pool.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// EnsureSchema creates the applications table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS applications (
			id         UUID PRIMARY KEY,
			url        TEXT NOT NULL UNIQUE,
			title      TEXT NOT NULL,
			company    TEXT NOT NULL,
			source     TEXT NOT NULL DEFAULT '',
			score      INT  NOT NULL DEFAULT 0,
			status     TEXT NOT NULL,
			notes      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Track records a posting at the found stage. Tracking the same URL twice
// returns the existing application unchanged.
func (s *Store) Track(ctx context.Context, post *posting.JobPosting, score int) (*Application, error) {
	if post == nil {
		return nil, fmt.Errorf("posting is required")
	}
	if post.URL == "" {
		return nil, fmt.Errorf("posting has no url")
	}

	id := uuid.NewString()
	var app Application
	err := s.pool.QueryRow(ctx, `
		INSERT INTO applications (id, url, title, company, source, score, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
		RETURNING id, url, title, company, source, score, status, notes, created_at, updated_at`,
		id, post.URL, post.Title, post.Company, post.Source, score, string(StatusFound),
	).Scan(
		&app.ID, &app.URL, &app.Title, &app.Company, &app.Source,
		&app.Score, &app.Status, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("track application: %w", err)
	}

	s.logger.Debug("tracked application",
		zap.String("id", app.ID),
		zap.String("url", app.URL),
		zap.String("status", app.Status.String()),
	)

	return &app, nil
}

// UpdateStatus moves an application to a new status, enforcing the
// transition rules.
func (s *Store) UpdateStatus(ctx context.Context, id string, next Status) (*Application, error) {
	var current Status
	err := s.pool.QueryRow(ctx,
		`SELECT status FROM applications WHERE id = $1`, id,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch current status: %w", err)
	}

	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrForbiddenTransition, current, next)
	}

	var app Application
	err = s.pool.QueryRow(ctx, `
		UPDATE applications SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, url, title, company, source, score, status, notes, created_at, updated_at`,
		string(next), id,
	).Scan(
		&app.ID, &app.URL, &app.Title, &app.Company, &app.Source,
		&app.Score, &app.Status, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.logger.Info("application status changed",
		zap.String("id", app.ID),
		zap.String("from", current.String()),
		zap.String("to", app.Status.String()),
	)

	return &app, nil
}

// AddNote replaces the free-text note on an application.
func (s *Store) AddNote(ctx context.Context, id, note string) (*Application, error) {
	var app Application
	err := s.pool.QueryRow(ctx, `
		UPDATE applications SET notes = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, url, title, company, source, score, status, notes, created_at, updated_at`,
		note, id,
	).Scan(
		&app.ID, &app.URL, &app.Title, &app.Company, &app.Source,
		&app.Score, &app.Status, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return &app, nil
}

// Get returns a single application by ID.
func (s *Store) Get(ctx context.Context, id string) (*Application, error) {
	var app Application
	err := s.pool.QueryRow(ctx, `
		SELECT id, url, title, company, source, score, status, notes, created_at, updated_at
		FROM applications WHERE id = $1`,
		id,
	).Scan(
		&app.ID, &app.URL, &app.Title, &app.Company, &app.Source,
		&app.Score, &app.Status, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &app, nil
}

// List returns applications, newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statusFilter Status) ([]Application, error) {
	const base = `
		SELECT id, url, title, company, source, score, status, notes, created_at, updated_at
		FROM applications`

	var (
		rows pgx.Rows
		err  error
	)
	if statusFilter != "" {
		rows, err = s.pool.Query(ctx, base+` WHERE status = $1 ORDER BY updated_at DESC`, string(statusFilter))
	} else {
		rows, err = s.pool.Query(ctx, base+` ORDER BY updated_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		var app Application
		if err := rows.Scan(
			&app.ID, &app.URL, &app.Title, &app.Company, &app.Source,
			&app.Score, &app.Status, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// AppliedURLs returns the URLs of applications at or past the applied stage.
// It lets the filtering pipeline drop postings already acted on.
func (s *Store) AppliedURLs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT url FROM applications WHERE status <> $1`, string(StatusFound))
	if err != nil {
		return nil, fmt.Errorf("applied urls: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// CountsByStatus returns how many applications sit at each status.
func (s *Store) CountsByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counts by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
