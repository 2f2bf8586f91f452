package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8082", cfg.Server.GRPCPort)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "redis", cfg.Lock.Backend)
	assert.Nil(t, cfg.Kafka.Brokers, "kafka is off unless brokers are set")
	assert.Nil(t, cfg.Elastic.Addresses)
	assert.False(t, cfg.Stock.AllowInactiveMovement)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("LOCK_BACKEND", "local")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("LOCK_RETRIES", "not-a-number")
	t.Setenv("ALLOW_INACTIVE_STOCK_MOVEMENT", "true")
	t.Setenv("CACHE_ITEM_TTL_SECONDS", "30")

	cfg := LoadEnv()

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "local", cfg.Lock.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 50, cfg.Lock.Retries, "unparsable values fall back")
	assert.True(t, cfg.Stock.AllowInactiveMovement)
	assert.Equal(t, 30, cfg.Redis.ItemTTLSeconds)
}
