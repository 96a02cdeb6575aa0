package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "deals")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "dealsdb")
	for _, k := range []string{"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE", "POSTGRES_TIMEZONE"} {
		t.Setenv(k, "")
	}

	cfg := ConfigFromEnv()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "host=localhost user=deals password=secret dbname=dealsdb port=5432 sslmode=disable TimeZone=Asia/Kolkata", cfg.DSN())
}

func TestConnectPostgres_MissingSettings(t *testing.T) {
	_, err := ConnectPostgres(PostgresConfig{User: "deals"}, zap.NewNop())
	assert.EqualError(t, err, "POSTGRES_PASSWORD not set")
}
