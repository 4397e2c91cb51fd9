package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setBaseEnv clears every config variable and sets the S3 settings that have
// no development default.
func setBaseEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "RELAY_POLICY",
		"MONGO_URI", "MONGO_DATABASE", "S3_PUBLIC_BASE_URL",
	} {
		t.Setenv(key, "")
	}

	t.Setenv("S3_BUCKET_NAME", "dmchat-media")
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_ACCESS_KEY_ID", "test-access-key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "test-secret-key")
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, RelayTargeted, cfg.RelayPolicy)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "dmchat", cfg.MongoDatabase)
	assert.Equal(t, "https://s3.example.com/dmchat-media", cfg.S3PublicBaseURL)
}

func TestLoadConfig_ParsesOrigins(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	setBaseEnv(t)

	t.Setenv("PORT", "not-a-number")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("PORT", "80")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017")

	_, err := LoadConfig()
	require.Error(t, err, "production must not fall back to the insecure default secret")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.JWTSecret)
}

func TestLoadConfig_ProductionRequiresMongoURI(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RelayPolicy(t *testing.T) {
	setBaseEnv(t)

	t.Setenv("RELAY_POLICY", RelayBroadcast)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, RelayBroadcast, cfg.RelayPolicy)

	t.Setenv("RELAY_POLICY", "multicast")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RequiresS3Settings(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("S3_BUCKET_NAME", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_PublicBaseURLOverride(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example.com/media/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/media", cfg.S3PublicBaseURL)
}
