package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tb "gopkg.in/telebot.v3"

	"linkguard-bot/tracker"
)

const adminOnlyReply = "❌ This command is only available to administrators."

const helpText = `🤖 *Telegram Moderation Bot*

This bot automatically restricts users who post more than the allowed number of link messages.

*Admin Commands:*
• /stats - Show link posting statistics
• /reset_user <user_id|@username> - Reset link count for a user
• /whitelist <user_id|@username> - Add user to whitelist (bypass restrictions)
• /unwhitelist <user_id|@username> - Remove user from whitelist
• /help - Show this help message

*Note:* Bot must be administrator to restrict users.`

func popWord(msg string) (part, rem string) {
	part, rem, _ = strings.Cut(msg, " ")
	rem = strings.TrimSpace(rem)
	return
}

func (m *moderator) reply(chat *tb.Chat, text string, opts ...interface{}) {
	if _, err := m.api.Send(chat, text, opts...); err != nil {
		log.Warn().Err(err).Int64("chat", chat.ID).Msg("failed to send reply")
	}
}

// isChatAdmin checks the invoker's role live against the chat; admin
// status is never cached.
func (m *moderator) isChatAdmin(chat *tb.Chat, user *tb.User) bool {
	member, err := m.api.ChatMemberOf(chat, user)
	if err != nil {
		log.Error().Err(err).Int64("user", user.ID).Msg("failed to check admin status")
		return false
	}
	return member.Role == tb.Administrator || member.Role == tb.Creator
}

func (m *moderator) requireAdmin(msg *tb.Message) bool {
	if m.isChatAdmin(msg.Chat, msg.Sender) {
		return true
	}
	m.reply(msg.Chat, adminOnlyReply)
	return false
}

// resolveTarget accepts a literal user id or a username with or without
// the leading @.
func (m *moderator) resolveTarget(arg string) (int64, bool) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, true
	}
	return m.users.LookupUsername(arg)
}

func (m *moderator) handleHelp(msg *tb.Message) {
	m.reply(msg.Chat, helpText, &tb.SendOptions{ParseMode: tb.ModeMarkdown})
}

func (m *moderator) handleStats(msg *tb.Message) {
	if !m.requireAdmin(msg) {
		return
	}

	s := m.users.Stats()
	if len(s.Users) == 0 {
		m.reply(msg.Chat, "📊 No link statistics available.")
		return
	}

	type row struct {
		id  int64
		rec tracker.Record
	}
	rows := make([]row, 0, len(s.Users))
	for id, rec := range s.Users {
		rows = append(rows, row{id, rec})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].rec.Count > rows[j].rec.Count })
	if len(rows) > 10 {
		rows = rows[:10]
	}

	var b strings.Builder
	b.WriteString("📊 *Link Statistics:*\n\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. %s: %d links (last: %s)\n", i+1, r.rec.Username, r.rec.Count, r.rec.LastSeen)
	}
	fmt.Fprintf(&b, "\n*Total users tracked:* %d", s.TotalUsers)
	fmt.Fprintf(&b, "\n*Total links posted:* %d", s.TotalLinks)
	fmt.Fprintf(&b, "\n*Whitelisted users:* %d", len(s.Whitelisted))

	m.reply(msg.Chat, b.String(), &tb.SendOptions{ParseMode: tb.ModeMarkdown})
}

func (m *moderator) handleResetUser(msg *tb.Message) {
	if !m.requireAdmin(msg) {
		return
	}
	arg, _ := popWord(strings.TrimSpace(msg.Payload))
	if arg == "" {
		m.reply(msg.Chat, "Usage: /reset_user <user_id or @username>")
		return
	}
	id, ok := m.resolveTarget(arg)
	if !ok {
		m.reply(msg.Chat, fmt.Sprintf("❌ User %s not found.", arg))
		return
	}
	if m.users.Reset(id) {
		m.reply(msg.Chat, fmt.Sprintf("✅ Link count reset for user ID %d", id))
	} else {
		m.reply(msg.Chat, fmt.Sprintf("❌ User ID %d not found in tracking.", id))
	}
}

func (m *moderator) handleWhitelist(msg *tb.Message) {
	if !m.requireAdmin(msg) {
		return
	}
	arg, _ := popWord(strings.TrimSpace(msg.Payload))
	if arg == "" {
		m.reply(msg.Chat, "Usage: /whitelist <user_id or @username>")
		return
	}
	id, ok := m.resolveTarget(arg)
	if !ok {
		m.reply(msg.Chat, fmt.Sprintf("❌ User %s not found.", arg))
		return
	}
	m.users.Whitelist(id)
	m.reply(msg.Chat, fmt.Sprintf("✅ User ID %d added to whitelist", id))
}

func (m *moderator) handleUnwhitelist(msg *tb.Message) {
	if !m.requireAdmin(msg) {
		return
	}
	arg, _ := popWord(strings.TrimSpace(msg.Payload))
	if arg == "" {
		m.reply(msg.Chat, "Usage: /unwhitelist <user_id or @username>")
		return
	}
	id, ok := m.resolveTarget(arg)
	if !ok {
		m.reply(msg.Chat, fmt.Sprintf("❌ User %s not found.", arg))
		return
	}
	if m.users.Unwhitelist(id) {
		m.reply(msg.Chat, fmt.Sprintf("✅ User ID %d removed from whitelist", id))
	} else {
		m.reply(msg.Chat, fmt.Sprintf("❌ User ID %d was not in whitelist", id))
	}
}
