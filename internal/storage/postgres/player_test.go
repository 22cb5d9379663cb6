package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewToken(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.Regexp(t, `^[0-9a-f]{32}$`, token)
}

func TestNewToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "token %q issued twice", token)
		seen[token] = true
	}
}

func TestHashToken(t *testing.T) {
	hash, err := HashToken("a1b2c3d4e5f60718293a4b5c6d7e8f90")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "a1b2c3d4e5f60718293a4b5c6d7e8f90", hash)
}

func TestCheckToken_Correct(t *testing.T) {
	hash, err := HashToken("deadbeefdeadbeefdeadbeefdeadbeef")
	assert.NoError(t, err)
	assert.True(t, CheckToken("deadbeefdeadbeefdeadbeefdeadbeef", hash))
}

func TestCheckToken_Wrong(t *testing.T) {
	hash, err := HashToken("deadbeefdeadbeefdeadbeefdeadbeef")
	assert.NoError(t, err)
	assert.False(t, CheckToken("00000000000000000000000000000000", hash))
}

// Property: every issued token verifies against its own hash.
func TestPropertyIssueHashAndCheck(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		token := rapid.StringMatching(`[0-9a-f]{32}`).Draw(t, "token")
		hash, err := HashToken(token)
		if err != nil {
			t.Fatalf("HashToken failed: %v", err)
		}
		if !CheckToken(token, hash) {
			t.Fatalf("CheckToken failed for token %q", token)
		}
	})
}

// Property: a different token never validates against the hash.
func TestPropertyWrongTokenNeverValidates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		correct := rapid.StringMatching(`[0-9a-f]{32}`).Draw(t, "correct")
		wrong := rapid.StringMatching(`[0-9a-f]{32}`).Draw(t, "wrong")

		if correct == wrong {
			return // skip trivial case
		}

		hash, err := HashToken(correct)
		assert.NoError(t, err)
		assert.False(t, CheckToken(wrong, hash),
			"token %q should not match hash of %q", wrong, correct)
	})
}
