package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	tb "gopkg.in/telebot.v3"

	"linkguard-bot/tracker"
)

const configFile = "config.json"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := setupLogging(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	bot, err := tb.NewBot(tb.Settings{
		Token: cfg.Token,
		Poller: &tb.LongPoller{
			Timeout:        10 * time.Second,
			AllowedUpdates: []string{"message", "edited_message"},
		},
		OnError: func(err error, c tb.Context) {
			log.Error().Err(err).Msg("handler error")
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	m := newModerator(bot, bot.Me, cfg, tracker.New())

	bot.Handle(tb.OnText, func(c tb.Context) error {
		m.handleMessage(c.Message())
		return nil
	})
	bot.Handle(tb.OnEdited, func(c tb.Context) error {
		m.handleMessage(c.Message())
		return nil
	})

	bot.Handle("/stats", func(c tb.Context) error {
		m.handleStats(c.Message())
		return nil
	})
	bot.Handle("/reset_user", func(c tb.Context) error {
		m.handleResetUser(c.Message())
		return nil
	})
	bot.Handle("/whitelist", func(c tb.Context) error {
		m.handleWhitelist(c.Message())
		return nil
	})
	bot.Handle("/unwhitelist", func(c tb.Context) error {
		m.handleUnwhitelist(c.Message())
		return nil
	})
	bot.Handle("/help", func(c tb.Context) error {
		m.handleHelp(c.Message())
		return nil
	})
	bot.Handle("/start", func(c tb.Context) error {
		m.handleHelp(c.Message())
		return nil
	})

	log.Info().
		Str("restriction", cfg.RestrictionType).
		Int("maxLinks", cfg.MaxLinksAllowed).
		Str("bot", bot.Me.Username).
		Msg("starting moderation bot")
	bot.Start()
}
