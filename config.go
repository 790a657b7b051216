package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/maxsupermanhd/lac/v2"
)

const (
	restrictMute = "mute"
	restrictKick = "kick"
)

// config is fixed for the process lifetime. Values come from an optional
// JSON file layer overridden by environment variables; anything invalid
// aborts startup.
type config struct {
	Token                       string
	MaxLinksAllowed             int
	RestrictionType             string
	MuteDuration                int // seconds, 0 = indefinite
	DeleteLinkMessages          bool
	SendRestrictionNotification bool
	LogLevel                    string
	LogFile                     string
}

// fileConfig mirrors the config file layer. Absent keys leave the
// defaults untouched.
type fileConfig struct {
	MaxLinksAllowed             *int
	RestrictionType             *string
	MuteDuration                *int
	DeleteLinkMessages          *bool
	SendRestrictionNotification *bool
	LogLevel                    *string
	LogFile                     *string
}

func loadConfig(path string) (*config, error) {
	cfg := &config{
		MaxLinksAllowed:             1,
		RestrictionType:             restrictMute,
		MuteDuration:                0,
		DeleteLinkMessages:          true,
		SendRestrictionNotification: true,
		LogLevel:                    "info",
	}

	if _, err := os.Stat(path); err == nil {
		c, err := lac.FromFileJSON(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var f fileConfig
		if err := c.GetToStruct(&f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		applyFileConfig(cfg, f)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.RestrictionType = strings.ToLower(cfg.RestrictionType)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFileConfig(cfg *config, f fileConfig) {
	if f.MaxLinksAllowed != nil {
		cfg.MaxLinksAllowed = *f.MaxLinksAllowed
	}
	if f.RestrictionType != nil {
		cfg.RestrictionType = *f.RestrictionType
	}
	if f.MuteDuration != nil {
		cfg.MuteDuration = *f.MuteDuration
	}
	if f.DeleteLinkMessages != nil {
		cfg.DeleteLinkMessages = *f.DeleteLinkMessages
	}
	if f.SendRestrictionNotification != nil {
		cfg.SendRestrictionNotification = *f.SendRestrictionNotification
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if f.LogFile != nil {
		cfg.LogFile = *f.LogFile
	}
}

func applyEnv(cfg *config) error {
	cfg.Token = envString("TELEGRAM_BOT_TOKEN", cfg.Token)
	cfg.RestrictionType = envString("RESTRICTION_TYPE", cfg.RestrictionType)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envString("LOG_FILE", cfg.LogFile)

	var err error
	if cfg.MaxLinksAllowed, err = envInt("MAX_LINKS_ALLOWED", cfg.MaxLinksAllowed); err != nil {
		return err
	}
	if cfg.MuteDuration, err = envInt("MUTE_DURATION", cfg.MuteDuration); err != nil {
		return err
	}
	if cfg.DeleteLinkMessages, err = envBool("DELETE_LINK_MESSAGES", cfg.DeleteLinkMessages); err != nil {
		return err
	}
	if cfg.SendRestrictionNotification, err = envBool("SEND_RESTRICTION_NOTIFICATION", cfg.SendRestrictionNotification); err != nil {
		return err
	}
	return nil
}

func (c *config) validate() error {
	if c.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.MaxLinksAllowed < 1 {
		return errors.New("MAX_LINKS_ALLOWED must be at least 1")
	}
	if c.RestrictionType != restrictMute && c.RestrictionType != restrictKick {
		return fmt.Errorf("RESTRICTION_TYPE must be %q or %q, got %q", restrictMute, restrictKick, c.RestrictionType)
	}
	if c.MuteDuration < 0 {
		return errors.New("MUTE_DURATION cannot be negative")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}
