// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")

	c, err := load("")
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, c.Storage.Driver)
	assert.Equal(t, 168*time.Hour, c.JWT.TokenExpire)
	assert.Equal(t, 5*time.Second, c.Provider.Timeout)
	assert.Equal(t, "https://api.coze.com/open/v1", c.Provider.BaseURL)
	assert.Equal(t, 3001, c.Server.Port)
	assert.True(t, c.IsDevelopment())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoadProductionRules(t *testing.T) {
	t.Run("short secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", "short")

		_, err := load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 bytes")
	})

	t.Run("missing provider credentials", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

		_, err := load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "COZE_TOKEN")
	})

	t.Run("complete", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("COZE_TOKEN", "pat_x")
		t.Setenv("COZE_BOT_ID", "bot_1")

		c, err := load("")
		require.NoError(t, err)
		assert.True(t, c.IsProduction())
		assert.Equal(t, "bot_1", c.Provider.BotID)
	})
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("STORAGE_DRIVER", StoragePostgres)

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
jwt:
  secret: from-file
provider:
  timeout: 3s
  bot_id: yaml-bot
rate_limit:
  requests: 50
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	c, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", c.JWT.Secret)
	assert.Equal(t, 3*time.Second, c.Provider.Timeout)
	assert.Equal(t, "yaml-bot", c.Provider.BotID)
	assert.Equal(t, 50, c.RateLimit.Requests)
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cors:
  allowed_origins: ["*"]
  allow_credentials: true
`), 0o600))

	_, err := load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard")
}

func TestLoadRejectsNonPositiveRateLimits(t *testing.T) {
	for _, key := range []string{"RATE_LIMIT_REQUESTS", "RATE_LIMIT_LOGIN_REQUESTS"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "dev-secret")
			t.Setenv(key, "0")

			_, err := load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be positive")
		})
	}
}
