package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "MAX_LINKS_ALLOWED", "RESTRICTION_TYPE",
		"MUTE_DURATION", "DELETE_LINK_MESSAGES", "SEND_RESTRICTION_NOTIFICATION",
		"LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	assert := assert.New(t)
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(1, cfg.MaxLinksAllowed)
	assert.Equal(restrictMute, cfg.RestrictionType)
	assert.Equal(0, cfg.MuteDuration)
	assert.True(cfg.DeleteLinkMessages)
	assert.True(cfg.SendRestrictionNotification)
	assert.Equal("info", cfg.LogLevel)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	assert := assert.New(t)
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("MAX_LINKS_ALLOWED", "5")
	t.Setenv("RESTRICTION_TYPE", "KICK")
	t.Setenv("MUTE_DURATION", "3600")
	t.Setenv("DELETE_LINK_MESSAGES", "false")
	t.Setenv("SEND_RESTRICTION_NOTIFICATION", "false")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(5, cfg.MaxLinksAllowed)
	assert.Equal(restrictKick, cfg.RestrictionType)
	assert.Equal(3600, cfg.MuteDuration)
	assert.False(cfg.DeleteLinkMessages)
	assert.False(cfg.SendRestrictionNotification)
}

func TestLoadConfigFileLayer(t *testing.T) {
	assert := assert.New(t)
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"MaxLinksAllowed": 3,
		"RestrictionType": "kick",
		"LogLevel": "debug"
	}`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(3, cfg.MaxLinksAllowed)
	assert.Equal(restrictKick, cfg.RestrictionType)
	assert.Equal("debug", cfg.LogLevel)

	// Environment wins over the file layer.
	t.Setenv("MAX_LINKS_ALLOWED", "7")
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(7, cfg.MaxLinksAllowed)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero link limit", "MAX_LINKS_ALLOWED", "0"},
		{"negative link limit", "MAX_LINKS_ALLOWED", "-2"},
		{"non-numeric limit", "MAX_LINKS_ALLOWED", "lots"},
		{"unknown restriction", "RESTRICTION_TYPE", "banish"},
		{"negative mute duration", "MUTE_DURATION", "-1"},
		{"garbage boolean", "DELETE_LINK_MESSAGES", "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
			t.Setenv(tc.key, tc.value)

			_, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	clearEnv(t)

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")
}
