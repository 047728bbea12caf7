package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "time/tzdata"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "Asia/Bangkok", cfg.ShopTimezone)
	assert.Equal(t, uint64(5), cfg.OrderIDMaxRetries)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", loc.String())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9000"
redis_addr: "cache:6379"
kafka_brokers: ["k1:9092", "k2:9092"]
jwt_secret: "from-file"
store_timeout: 3s
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REDIS_ADDR", "redis-env:6379")
	t.Setenv("ORDER_ID_MAX_RETRIES", "9")
	t.Setenv("CART_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "redis-env:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, uint64(9), cfg.OrderIDMaxRetries)
	assert.Equal(t, 30*time.Minute, cfg.CartTTL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=dotenv\nKAFKA_BROKERS= a:1 , b:2 ,\n"), 0o600))

	// godotenv never overrides variables already set
	t.Setenv("JWT_SECRET", "")
	t.Setenv("KAFKA_BROKERS", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	require.NoError(t, os.Unsetenv("KAFKA_BROKERS"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.JWTSecret)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.KafkaBrokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantError string
	}{
		{name: "missing secret", env: map[string]string{}, wantError: "JWT_SECRET is required"},
		{name: "bad duration", env: map[string]string{"JWT_SECRET": "x", "STORE_TIMEOUT": "soon"}, wantError: "STORE_TIMEOUT"},
		{name: "bad zone", env: map[string]string{"JWT_SECRET": "x", "SHOP_TIMEZONE": "Mars/Olympus"}, wantError: "SHOP_TIMEZONE"},
		{name: "zero retries", env: map[string]string{"JWT_SECRET": "x", "ORDER_ID_MAX_RETRIES": "0"}, wantError: "ORDER_ID_MAX_RETRIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}
