package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Save is one persisted game-state snapshot. State holds the session's
// full JSON-encoded adventure; the repository never looks inside it.
type Save struct {
	ID          uuid.UUID
	SessionKey  string
	PlayerEmail string // empty for anonymous saves
	State       []byte
	RunScore    int64
	CreatedAt   time.Time
}

// ErrSaveNotFound is returned when a save lookup yields no results.
var ErrSaveNotFound = errors.New("save not found")

// SaveRepository provides game-save persistence operations.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

const saveColumns = `id, session_key, COALESCE(player_email, ''), state, run_score, created_at`

func scanSave(row pgx.Row) (Save, error) {
	var s Save
	err := row.Scan(&s.ID, &s.SessionKey, &s.PlayerEmail, &s.State, &s.RunScore, &s.CreatedAt)
	return s, err
}

// Create inserts a new snapshot. playerEmail may be empty for a session
// that is not logged in; it is stored as NULL.
//
// Precondition: sessionKey must be non-empty; state must be valid JSON.
// Postcondition: Returns the stored Save with ID and CreatedAt set.
func (r *SaveRepository) Create(ctx context.Context, sessionKey, playerEmail string, state []byte, runScore int64) (Save, error) {
	s, err := scanSave(r.db.QueryRow(ctx,
		`INSERT INTO saves (id, session_key, player_email, state, run_score)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 RETURNING `+saveColumns,
		uuid.New(), sessionKey, playerEmail, state, runScore,
	))
	if err != nil {
		return Save{}, fmt.Errorf("inserting save: %w", err)
	}
	return s, nil
}

// GetByID retrieves one save by its identifier.
//
// Postcondition: Returns the Save or ErrSaveNotFound.
func (r *SaveRepository) GetByID(ctx context.Context, id uuid.UUID) (Save, error) {
	s, err := scanSave(r.db.QueryRow(ctx,
		`SELECT `+saveColumns+` FROM saves WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Save{}, ErrSaveNotFound
		}
		return Save{}, fmt.Errorf("querying save: %w", err)
	}
	return s, nil
}

// LatestBySession retrieves the most recent save for a session key.
//
// Postcondition: Returns the newest Save or ErrSaveNotFound.
func (r *SaveRepository) LatestBySession(ctx context.Context, sessionKey string) (Save, error) {
	s, err := scanSave(r.db.QueryRow(ctx,
		`SELECT `+saveColumns+` FROM saves
		 WHERE session_key = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		sessionKey,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Save{}, ErrSaveNotFound
		}
		return Save{}, fmt.Errorf("querying latest save: %w", err)
	}
	return s, nil
}

// LatestByPlayer retrieves the most recent save bound to a player email,
// regardless of which session wrote it. Login uses this to restore a
// returning player's adventure.
//
// Postcondition: Returns the newest Save or ErrSaveNotFound.
func (r *SaveRepository) LatestByPlayer(ctx context.Context, email string) (Save, error) {
	s, err := scanSave(r.db.QueryRow(ctx,
		`SELECT `+saveColumns+` FROM saves
		 WHERE player_email = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Save{}, ErrSaveNotFound
		}
		return Save{}, fmt.Errorf("querying player save: %w", err)
	}
	return s, nil
}

// ListBySession returns a session's saves, newest first, capped at limit.
//
// Precondition: limit must be > 0.
func (r *SaveRepository) ListBySession(ctx context.Context, sessionKey string, limit int) ([]Save, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+saveColumns+` FROM saves
		 WHERE session_key = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sessionKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	var saves []Save
	for rows.Next() {
		s, err := scanSave(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		saves = append(saves, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading save rows: %w", err)
	}
	return saves, nil
}
