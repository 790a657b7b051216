package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tb "gopkg.in/telebot.v3"

	"linkguard-bot/linkdetect"
	"linkguard-bot/tracker"
)

// chatAPI is the slice of the bot transport the moderation flow needs.
// *tb.Bot satisfies it; tests substitute a fake.
type chatAPI interface {
	ChatMemberOf(chat, user tb.Recipient) (*tb.ChatMember, error)
	Restrict(chat *tb.Chat, member *tb.ChatMember) error
	Ban(chat *tb.Chat, member *tb.ChatMember, revokeMessages ...bool) error
	Unban(chat *tb.Chat, user *tb.User, forBanned ...bool) error
	Delete(msg tb.Editable) error
	Send(to tb.Recipient, what interface{}, opts ...interface{}) (*tb.Message, error)
}

type moderator struct {
	api      chatAPI
	self     *tb.User
	cfg      *config
	detector *linkdetect.Detector
	users    *tracker.Tracker
}

func newModerator(api chatAPI, self *tb.User, cfg *config, users *tracker.Tracker) *moderator {
	return &moderator{
		api:      api,
		self:     self,
		cfg:      cfg,
		detector: linkdetect.New(),
		users:    users,
	}
}

func senderName(u *tb.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// handleMessage inspects one message for links and restricts the sender
// once they are over the configured limit. Only group and supergroup
// chats are moderated; everything else passes through silently.
func (m *moderator) handleMessage(msg *tb.Message) {
	if msg == nil || msg.Text == "" || msg.Sender == nil || msg.Chat == nil {
		return
	}
	if msg.Chat.Type != tb.ChatGroup && msg.Chat.Type != tb.ChatSuperGroup {
		return
	}
	if m.users.IsWhitelisted(msg.Sender.ID) {
		return
	}

	links := m.detector.ExtractLinks(msg.Text)
	if len(links) == 0 {
		return
	}

	name := senderName(msg.Sender)
	count := m.users.AddLink(msg.Sender.ID, name)
	log.Info().
		Int64("user", msg.Sender.ID).
		Str("username", name).
		Int64("chat", msg.Chat.ID).
		Int("count", count).
		Strs("links", links).
		Msg("link message recorded")

	for _, l := range links {
		if linkdetect.IsSuspicious(l) {
			log.Debug().Str("link", l).Msg("link matches a shortener or throwaway domain")
		}
	}

	if count > m.cfg.MaxLinksAllowed {
		m.restrict(msg, count)
	}
}

// restrict runs the restriction flow for a user over the limit. Failures
// of the status checks or the restriction primitives end the flow for
// this event; message deletion and the notification stay best-effort.
func (m *moderator) restrict(msg *tb.Message, count int) {
	chat, user := msg.Chat, msg.Sender

	me, err := m.api.ChatMemberOf(chat, m.self)
	if err != nil {
		log.Error().Err(err).Int64("chat", chat.ID).Msg("failed to check own membership")
		return
	}
	if me.Role != tb.Administrator {
		log.Warn().Int64("chat", chat.ID).Msg("not an administrator in this chat, cannot restrict")
		return
	}

	target, err := m.api.ChatMemberOf(chat, user)
	if err != nil {
		log.Error().Err(err).Int64("user", user.ID).Msg("failed to check member status")
		return
	}
	if target.Role == tb.Administrator || target.Role == tb.Creator {
		log.Info().Int64("user", user.ID).Msg("sender is a chat admin, skipping restriction")
		return
	}

	var action string
	switch m.cfg.RestrictionType {
	case restrictKick:
		// Ban followed by unban removes the user without a lasting ban.
		if err := m.api.Ban(chat, &tb.ChatMember{User: user}); err != nil {
			log.Error().Err(err).Int64("user", user.ID).Msg("failed to ban user")
			return
		}
		if err := m.api.Unban(chat, user); err != nil {
			log.Error().Err(err).Int64("user", user.ID).Msg("failed to unban kicked user")
			return
		}
		action = "kicked"
	default:
		member := &tb.ChatMember{
			User:            user,
			RestrictedUntil: m.muteUntil(),
			Rights:          mutedRights(),
		}
		if err := m.api.Restrict(chat, member); err != nil {
			log.Error().Err(err).Int64("user", user.ID).Msg("failed to mute user")
			return
		}
		action = "muted"
	}

	if m.cfg.DeleteLinkMessages {
		if err := m.api.Delete(msg); err != nil {
			log.Warn().Err(err).Int64("chat", chat.ID).Msg("could not delete link message")
		}
	}

	if m.cfg.SendRestrictionNotification {
		text := fmt.Sprintf("⚠️ User @%s has been %s for posting %d links (limit: %d)",
			senderName(user), action, count, m.cfg.MaxLinksAllowed)
		if _, err := m.api.Send(chat, text); err != nil {
			log.Warn().Err(err).Int64("chat", chat.ID).Msg("could not send restriction notice")
		}
	}

	log.Info().
		Int64("user", user.ID).
		Int64("chat", chat.ID).
		Str("action", action).
		Int("count", count).
		Msg("user restricted")
}

func (m *moderator) muteUntil() int64 {
	if m.cfg.MuteDuration <= 0 {
		return tb.Forever()
	}
	return time.Now().Add(time.Duration(m.cfg.MuteDuration) * time.Second).Unix()
}

func mutedRights() tb.Rights {
	return tb.Rights{
		CanSendMessages: false,
		CanSendMedia:    false,
		CanSendPolls:    false,
		CanSendOther:    false,
		CanAddPreviews:  false,
		CanChangeInfo:   false,
		CanInviteUsers:  false,
		CanPinMessages:  false,
	}
}
