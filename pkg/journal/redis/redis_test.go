package redis

import (
	"os"
	"testing"

	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/casimir-one/casimir-go/pkg/journal/journaltest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// requireRedis skips the test unless REDIS_TEST_ADDRESS points at a Redis server.
func requireRedis(t *testing.T) *RedisJournal {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS not set")
	}

	rj, err := NewRedisJournal(&RedisConfig{
		Address: addr,
		DB:      15, // Use DB 15 for tests to avoid conflicts
		// isolate every test under its own prefix
		KeyPrefix: "test-" + uuid.NewString() + ":",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return rj
}

func TestRedisJournal(t *testing.T) {
	journaltest.Run(t, func(t *testing.T) journal.IJournal {
		return requireRedis(t)
	})
}

func TestNewRedisJournal_Validation(t *testing.T) {
	_, err := NewRedisJournal(nil, zaptest.NewLogger(t))
	require.Error(t, err)

	_, err = NewRedisJournal(&RedisConfig{}, zaptest.NewLogger(t))
	require.Error(t, err)

	_, err = NewRedisJournal(&RedisConfig{Address: "localhost:6379"}, nil)
	require.Error(t, err)
}
