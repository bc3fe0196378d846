package config_test

import (
	"testing"

	"pharmacare/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MAX_DOCUMENT_SIZE", "2048")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, int64(2048), cfg.MaxDocumentSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.SplitList(cfg.CORSAllowedOrigins))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, "@every 1m", cfg.ReminderSchedule)
}

func TestValidate_RequiresSecretInProduction(t *testing.T) {
	cfg := &config.Config{Env: "production", JWTExpirationHours: 1, MaxDocumentSize: 1}
	assert.Error(t, cfg.Validate())

	dev := &config.Config{Env: "development", JWTExpirationHours: 1, MaxDocumentSize: 1}
	require.NoError(t, dev.Validate())
	assert.NotEmpty(t, dev.JWTSecret)
}

func TestSplitList_SkipsBlanks(t *testing.T) {
	assert.Equal(t, []string{"GET", "POST"}, config.SplitList(" GET, ,POST,"))
	assert.Nil(t, config.SplitList(""))
}
