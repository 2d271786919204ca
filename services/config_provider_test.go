package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigProviderTypedAccessors(t *testing.T) {
	tdb := setupTestDB(t)
	cfg := &ConfigProvider{db: tdb, ttl: time.Minute}

	t.Run("missing keys fall back to defaults", func(t *testing.T) {
		require.Equal(t, 3, cfg.GetInt("nonexistent", 3))
		require.True(t, cfg.GetBool("nonexistent", true))
		_, ok := cfg.GetString("nonexistent")
		require.False(t, ok)
	})

	require.NoError(t, cfg.Set(SettingMinLeaveDays, "2"))
	require.Equal(t, 2, cfg.GetInt(SettingMinLeaveDays, 0))

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, cfg.Set(SettingMinLeaveDays, "5"))
		require.Equal(t, 5, cfg.GetInt(SettingMinLeaveDays, 0))
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		require.NoError(t, cfg.Set("leave_bad_int", "not-a-number"))
		require.Equal(t, 9, cfg.GetInt("leave_bad_int", 9))
		require.NoError(t, cfg.Set("leave_bad_bool", "sometimes"))
		require.True(t, cfg.GetBool("leave_bad_bool", true))
	})

	t.Run("boolean spellings", func(t *testing.T) {
		for value, want := range map[string]bool{
			"true": true, "1": true, "yes": true, "on": true,
			"false": false, "0": false, "no": false, "off": false,
		} {
			require.NoError(t, cfg.Set("leave_flag", value))
			require.Equal(t, want, cfg.GetBool("leave_flag", !want), "value %q", value)
		}
	})
}

func TestConfigProviderEnsureDefaults(t *testing.T) {
	tdb := setupTestDB(t)
	cfg := &ConfigProvider{db: tdb, ttl: time.Minute}

	require.NoError(t, cfg.EnsureDefaults())
	require.Equal(t, 0, cfg.GetInt(SettingMinLeaveDays, -1))
	require.True(t, cfg.GetBool(SettingApprovalRequired, false))
	require.False(t, cfg.GetBool(SettingAutoRecalc, true))

	// A second run must not clobber operator changes
	require.NoError(t, cfg.Set(SettingMinLeaveDays, "4"))
	require.NoError(t, cfg.EnsureDefaults())
	require.Equal(t, 4, cfg.GetInt(SettingMinLeaveDays, -1))
}
