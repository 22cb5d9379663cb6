package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// TokenBytes is the length of the random access token before hex encoding,
// so issued tokens are 32 hex characters.
const TokenBytes = 16

// Player represents a registered multiplayer profile in the database.
// The access token itself is never stored, only its bcrypt hash.
type Player struct {
	ID              int64
	Email           string
	Username        string
	TokenHash       string
	TotalScore      int64
	BestRunScore    int64
	EnemiesDefeated int64
	CreatedAt       time.Time
	LastActive      time.Time
}

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// ErrEmailTaken is returned when registering an already-registered email.
var ErrEmailTaken = errors.New("email already registered")

// ErrUsernameTaken is returned when registering a taken username.
var ErrUsernameTaken = errors.New("username already taken")

// ErrInvalidToken is returned when authentication fails.
var ErrInvalidToken = errors.New("invalid token")

// PlayerRepository provides player persistence operations.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `id, email, username, token_hash, total_score,
	best_run_score, enemies_defeated, created_at, last_active`

func scanPlayer(row pgx.Row) (Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.TokenHash, &p.TotalScore,
		&p.BestRunScore, &p.EnemiesDefeated, &p.CreatedAt, &p.LastActive)
	return p, err
}

// Create inserts a new player with a bcrypt-hashed access token.
//
// Precondition: email, username, and token must be non-empty.
// Postcondition: Returns the created Player with ID and timestamps set,
// or ErrEmailTaken / ErrUsernameTaken on a duplicate.
func (r *PlayerRepository) Create(ctx context.Context, email, username, token string) (Player, error) {
	hash, err := HashToken(token)
	if err != nil {
		return Player{}, fmt.Errorf("hashing token: %w", err)
	}

	p, err := scanPlayer(r.db.QueryRow(ctx,
		`INSERT INTO players (email, username, token_hash)
		 VALUES ($1, $2, $3)
		 RETURNING `+playerColumns,
		email, username, hash,
	))
	if err != nil {
		if constraint, ok := duplicateConstraint(err); ok {
			if strings.Contains(constraint, "email") {
				return Player{}, ErrEmailTaken
			}
			return Player{}, ErrUsernameTaken
		}
		return Player{}, fmt.Errorf("inserting player: %w", err)
	}
	return p, nil
}

// Authenticate verifies an email and token pair and refreshes last_active.
//
// Precondition: email and token must be non-empty.
// Postcondition: Returns the Player if the token matches,
// ErrPlayerNotFound if the email is unregistered,
// or ErrInvalidToken if the token is wrong.
func (r *PlayerRepository) Authenticate(ctx context.Context, email, token string) (Player, error) {
	p, err := r.GetByEmail(ctx, email)
	if err != nil {
		return Player{}, err
	}
	if !CheckToken(token, p.TokenHash) {
		return Player{}, ErrInvalidToken
	}

	p, err = scanPlayer(r.db.QueryRow(ctx,
		`UPDATE players SET last_active = NOW()
		 WHERE id = $1
		 RETURNING `+playerColumns,
		p.ID,
	))
	if err != nil {
		return Player{}, fmt.Errorf("touching last_active: %w", err)
	}
	return p, nil
}

// GetByEmail retrieves a player by email.
//
// Precondition: email must be non-empty.
// Postcondition: Returns the Player or ErrPlayerNotFound.
func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (Player, error) {
	p, err := scanPlayer(r.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE email = $1`,
		email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Player{}, ErrPlayerNotFound
		}
		return Player{}, fmt.Errorf("querying player: %w", err)
	}
	return p, nil
}

// RefreshToken replaces the stored token hash; the previous token stops
// authenticating immediately.
//
// Precondition: newToken must be non-empty.
// Postcondition: The player's token_hash is updated, or ErrPlayerNotFound.
func (r *PlayerRepository) RefreshToken(ctx context.Context, email, newToken string) error {
	hash, err := HashToken(newToken)
	if err != nil {
		return fmt.Errorf("hashing token: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE players SET token_hash = $1, last_active = NOW() WHERE email = $2`,
		hash, email,
	)
	if err != nil {
		return fmt.Errorf("updating token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// AddScore atomically adds points to the player's total score.
//
// Precondition: points must be >= 0.
// Postcondition: total_score increases by points, or ErrPlayerNotFound.
func (r *PlayerRepository) AddScore(ctx context.Context, email string, points int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET total_score = total_score + $1, last_active = NOW()
		 WHERE email = $2`,
		points, email,
	)
	if err != nil {
		return fmt.Errorf("adding score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// IncrementEnemiesDefeated atomically adds n to the lifetime kill counter.
//
// Precondition: n must be >= 0.
func (r *PlayerRepository) IncrementEnemiesDefeated(ctx context.Context, email string, n int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET enemies_defeated = enemies_defeated + $1
		 WHERE email = $2`,
		n, email,
	)
	if err != nil {
		return fmt.Errorf("incrementing enemies defeated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// FinalizeRun records a finished run, keeping the best single-run score.
//
// Postcondition: best_run_score only ever rises.
func (r *PlayerRepository) FinalizeRun(ctx context.Context, email string, runScore int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET best_run_score = GREATEST(best_run_score, $1)
		 WHERE email = $2`,
		runScore, email,
	)
	if err != nil {
		return fmt.Errorf("finalizing run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// Top returns the highest-scoring players in descending total-score order.
// It is the durable fallback behind the redis leaderboard.
//
// Precondition: limit must be > 0.
func (r *PlayerRepository) Top(ctx context.Context, limit int) ([]Player, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+playerColumns+` FROM players
		 ORDER BY total_score DESC, username ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading leaderboard rows: %w", err)
	}
	return players, nil
}

// Rank returns the player's 1-based position by total score.
//
// Postcondition: Returns a rank >= 1 or ErrPlayerNotFound.
func (r *PlayerRepository) Rank(ctx context.Context, email string) (int64, error) {
	var rank int64
	err := r.db.QueryRow(ctx,
		`SELECT 1 + COUNT(other.id)
		 FROM players me
		 LEFT JOIN players other ON other.total_score > me.total_score
		 WHERE me.email = $1
		 GROUP BY me.id`,
		email,
	).Scan(&rank)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrPlayerNotFound
		}
		return 0, fmt.Errorf("querying rank: %w", err)
	}
	return rank, nil
}

// NewToken generates a fresh random access token of 2*TokenBytes hex
// characters.
//
// Postcondition: Returns a 32-character lowercase hex string.
func NewToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken creates a bcrypt hash of the given access token.
//
// Precondition: token must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckToken compares a plaintext token against a bcrypt hash.
//
// Postcondition: Returns true if token matches the hash.
func CheckToken(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

// duplicateConstraint reports the violated constraint name when err is a
// unique violation (SQLSTATE 23505).
func duplicateConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}
