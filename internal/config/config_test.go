package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 6, cfg.OTPLength)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 9, cfg.BirthdayHour)
	assert.False(t, cfg.IsProd)
	assert.False(t, cfg.StrictOrderTransitions)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("IS_PROD", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example,https://admin.example")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")
	t.Setenv("OTP_TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd)
	assert.True(t, cfg.StrictOrderTransitions)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "shop", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "store"}
	assert.Equal(t, "shop:pw@tcp(db:3306)/store?charset=utf8mb4&parseTime=true&loc=Local", cfg.DSN())
}
