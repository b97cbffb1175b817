package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.NotNil(t, cfg)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 4, cfg.Enrollment.MaxTotalSlots)
	assert.Equal(t, 2, cfg.Enrollment.MaxSlotsPerDay)
	assert.Equal(t, 10, cfg.Enrollment.DefaultCapacity)
	assert.Equal(t, 30*time.Minute, cfg.Enrollment.SessionTTL)
	assert.Equal(t, time.UTC, cfg.Enrollment.Location())
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ENROLLMENT_MAX_TOTAL_SLOTS", 6)
	v.Set("ENROLLMENT_MAX_SLOTS_PER_DAY", 0)
	v.Set("ENROLLMENT_SESSION_TTL", "bogus")
	v.Set("ALLOWED_ORIGINS", "https://swim.example, ,https://admin.example")

	cfg := fromViper(v)
	assert.Equal(t, 6, cfg.Enrollment.MaxTotalSlots)
	assert.Equal(t, 2, cfg.Enrollment.MaxSlotsPerDay)
	assert.Equal(t, 30*time.Minute, cfg.Enrollment.SessionTTL)
	assert.Equal(t, []string{"https://swim.example", "https://admin.example"}, cfg.CORS.AllowedOrigins)
}

func TestEnrollmentLocationFallsBackOnUnknownZone(t *testing.T) {
	cfg := EnrollmentConfig{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, cfg.Location())
}
