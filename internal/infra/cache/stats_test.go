package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatsKey_ChangesWithGeneration(t *testing.T) {
	userID := uuid.MustParse("7d1c3c9e-4a55-4b9f-9a64-2f3e2c1b0a11")

	assert.Equal(t, "hourstats:7d1c3c9e-4a55-4b9f-9a64-2f3e2c1b0a11:0:all", statsKey(userID, 0, "all"))
	assert.NotEqual(t, statsKey(userID, 1, "all"), statsKey(userID, 2, "all"))
	assert.Equal(t, "hourstats:7d1c3c9e-4a55-4b9f-9a64-2f3e2c1b0a11:gen", genKey(userID))
}

func TestNewStatsCache_GenerationOutlivesValues(t *testing.T) {
	c := NewStatsCache(nil, 0)
	assert.Equal(t, 5*time.Minute, c.ttl)
	assert.Equal(t, 7*24*time.Hour, c.genTTL)

	long := NewStatsCache(nil, 10*24*time.Hour)
	assert.Equal(t, 20*24*time.Hour, long.genTTL)
}
