package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dshills/reel/internal/input/replay"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// actionSep joins action names in the frames.actions column.
const actionSep = "\x1f"

// Summary describes a stored recording without its frames.
type Summary struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	SavedAt    time.Time
	FrameCount int
	Duration   time.Duration
}

// SQLStore keeps recordings in a SQLite database.
type SQLStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return &VersionError{Version: version, Max: currentSchemaVersion}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Save stores rec, replacing any recording with the same ID.
func (s *SQLStore) Save(ctx context.Context, rec *replay.Recording) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save recording: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id := rec.ID().String()
	frames := rec.Frames()

	if _, err = tx.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("save recording %s: %w", id, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO recordings (id, created_at, saved_at, frame_count, duration_us)
		VALUES (?, ?, ?, ?, ?)
	`,
		id,
		rec.CreatedAt().UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		len(frames),
		rec.Duration().Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("save recording %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frames (recording_id, seq, t_us, x, y, actions)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save recording %s: %w", id, err)
	}
	defer stmt.Close()

	for i, f := range frames {
		p := toPersistedFrame(f)
		if _, err = stmt.ExecContext(ctx, id, i, p.T, p.X, p.Y, strings.Join(p.Actions, actionSep)); err != nil {
			return fmt.Errorf("save recording %s frame %d: %w", id, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save recording %s: %w", id, err)
	}
	return nil
}

// Load reads the recording with the given ID.
// Returns ErrNotFound if there is none.
func (s *SQLStore) Load(ctx context.Context, id uuid.UUID) (*replay.Recording, error) {
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM recordings WHERE id = ?`, id.String()).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", id, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w: created_at %q", id, ErrInvalidRecording, created)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t_us, x, y, actions FROM frames
		WHERE recording_id = ?
		ORDER BY seq ASC
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", id, err)
	}
	defer rows.Close()

	var frames []replay.Frame
	for rows.Next() {
		var p persistedFrame
		var actions string
		if err := rows.Scan(&p.T, &p.X, &p.Y, &actions); err != nil {
			return nil, fmt.Errorf("load recording %s: %w", id, err)
		}
		if actions != "" {
			p.Actions = strings.Split(actions, actionSep)
		}
		frames = append(frames, toFrame(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load recording %s: %w", id, err)
	}

	return restore(id, createdAt, frames)
}

// List returns summaries of all stored recordings, oldest first.
func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, saved_at, frame_count, duration_us FROM recordings
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			id, created, saved string
			sum                Summary
			durationUS         int64
		)
		if err := rows.Scan(&id, &created, &saved, &sum.FrameCount, &durationUS); err != nil {
			return nil, fmt.Errorf("list recordings: %w", err)
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list recordings: %w: id %q", ErrInvalidRecording, id)
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("list recordings: %s: %w: created_at %q", id, ErrInvalidRecording, created)
		}
		if sum.SavedAt, err = time.Parse(time.RFC3339Nano, saved); err != nil {
			return nil, fmt.Errorf("list recordings: %s: %w: saved_at %q", id, ErrInvalidRecording, saved)
		}
		sum.Duration = time.Duration(durationUS) * time.Microsecond
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return out, nil
}

// Delete removes the recording with the given ID.
// Deleting an absent recording is a no-op.
func (s *SQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete recording %s: %w", id, err)
	}
	return nil
}
