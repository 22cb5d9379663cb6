// Package redis provides the live leaderboard store backed by a Redis sorted set.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/integration-quest/internal/config"
)

const (
	// leaderboardKey is the sorted set holding player total scores keyed by email.
	leaderboardKey = "iq:leaderboard"
	// maxTop caps leaderboard reads regardless of the requested size.
	maxTop = 50
)

// ErrNotRanked is returned when a player has no leaderboard entry yet.
var ErrNotRanked = errors.New("player not ranked")

// Entry is a single leaderboard row.
type Entry struct {
	Email string
	Score int64
}

// Leaderboard maintains player total scores in a Redis sorted set, updated
// alongside the PostgreSQL player rows. PostgreSQL stays the durable source;
// this store serves fast rank and top-N reads.
type Leaderboard struct {
	client *redis.Client
}

// NewLeaderboard connects to Redis using the given configuration.
//
// Precondition: cfg.Addr must be a reachable Redis address.
// Postcondition: Returns a connected Leaderboard or a non-nil error.
func NewLeaderboard(ctx context.Context, cfg config.RedisConfig) (*Leaderboard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &Leaderboard{client: client}, nil
}

// NewLeaderboardFromClient wraps an existing client. Tests use this with an
// in-memory server.
func NewLeaderboardFromClient(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// AddScore adds delta to the player's total and returns the new total. A player
// without an entry starts from zero.
//
// Precondition: email must be non-empty.
// Postcondition: The player's sorted-set score increases by delta.
func (l *Leaderboard) AddScore(ctx context.Context, email string, delta int64) (int64, error) {
	total, err := l.client.ZIncrBy(ctx, leaderboardKey, float64(delta), email).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing score: %w", err)
	}
	return int64(total), nil
}

// SetScore overwrites the player's total, seeding the sorted set from the
// durable store at registration and login.
//
// Postcondition: The player's sorted-set score equals total.
func (l *Leaderboard) SetScore(ctx context.Context, email string, total int64) error {
	err := l.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(total),
		Member: email,
	}).Err()
	if err != nil {
		return fmt.Errorf("setting score: %w", err)
	}
	return nil
}

// Top returns the highest-scoring entries in descending order. Requests larger
// than 50 entries are capped; a non-positive n yields an empty slice.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > maxTop {
		n = maxTop
	}

	rows, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		email, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Email: email, Score: int64(row.Score)})
	}
	return entries, nil
}

// Rank returns the player's 1-indexed position by descending score.
//
// Postcondition: Returns a rank >= 1, or ErrNotRanked when the player has no
// entry.
func (l *Leaderboard) Rank(ctx context.Context, email string) (int64, error) {
	rank, err := l.client.ZRevRank(ctx, leaderboardKey, email).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotRanked
	}
	if err != nil {
		return 0, fmt.Errorf("ranking player: %w", err)
	}
	return rank + 1, nil
}

// Health checks that Redis is reachable within the given timeout.
//
// Postcondition: Returns nil if Redis responds within the timeout.
func (l *Leaderboard) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return l.client.Ping(ctx).Err()
}

// Close releases the client's connection resources.
//
// Postcondition: The store is no longer usable after calling Close.
func (l *Leaderboard) Close() error {
	return l.client.Close()
}
