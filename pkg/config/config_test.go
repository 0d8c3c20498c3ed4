package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DeletePolicyCascade, cfg.RBAC.DeletePolicy)
	assert.False(t, cfg.RBAC.StrictAppEnablement)
	assert.Equal(t, "0 */30 * * * *", cfg.RBAC.SweepCron)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "bezs:audit", cfg.Redis.Prefix)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("RBAC_STRICT_APP_ENABLEMENT", "TRUE")
	t.Setenv("RBAC_DELETE_POLICY", "Restrict")
	t.Setenv("RBAC_SWEEP_DELETE", "true")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.RBAC.StrictAppEnablement)
	assert.Equal(t, DeletePolicyRestrict, cfg.RBAC.DeletePolicy)
	assert.True(t, cfg.RBAC.SweepDelete)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
}

func TestLoadConfig_InvalidDeletePolicy(t *testing.T) {
	t.Setenv("RBAC_DELETE_POLICY", "ignore")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetEnvAsInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	assert.Equal(t, 20, getEnvAsInt("DB_MAX_OPEN_CONNS", 20))
}
