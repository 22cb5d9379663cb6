package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient starts an in-memory Redis server and returns a client wired
// to it. Server and client both shut down when the test finishes.
//
// Postcondition: Returns a connected client backed by a fresh, empty server.
func NewRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}
