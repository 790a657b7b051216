// Package tracker keeps the in-memory registry of link-posting users,
// the restriction whitelist and the username index. All state is
// volatile and lives for the process lifetime.
package tracker

import (
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const timeLayout = "2006-01-02 15:04:05"

// DefaultCleanupDays is the eviction threshold Cleanup is normally
// invoked with.
const DefaultCleanupDays = 30

// Record is the tracked state of a single user. Timestamps are stored in
// their formatted form; Cleanup treats anything it cannot parse back as
// "age unknown" and keeps the record.
type Record struct {
	Username  string
	Count     int
	FirstSeen string
	LastSeen  string
}

// Tracker is safe for concurrent use. A single mutex guards all three
// maps; contention is negligible for a chat-message workload.
type Tracker struct {
	mu        sync.Mutex
	users     map[int64]*Record
	whitelist map[int64]struct{}
	usernames map[string]int64
}

func New() *Tracker {
	return &Tracker{
		users:     map[int64]*Record{},
		whitelist: map[int64]struct{}{},
		usernames: map[string]int64{},
	}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimPrefix(username, "@"))
}

// AddLink records one qualifying link message for the user, creating the
// record on first sight, and returns the post-increment count. The
// username and last-seen timestamp are overwritten on every call; a
// non-empty username also upserts the username index, last writer wins.
func (t *Tracker) AddLink(userID int64, username string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().Format(timeLayout)
	u, ok := t.users[userID]
	if !ok {
		u = &Record{FirstSeen: now}
		t.users[userID] = u
		log.Info().Int64("user", userID).Str("username", username).Msg("tracking new user")
	}
	u.Count++
	u.Username = username
	u.LastSeen = now

	if username != "" {
		t.usernames[normalize(username)] = userID
	}

	log.Debug().Int64("user", userID).Int("count", u.Count).Msg("link recorded")
	return u.Count
}

// Count returns the current link count, zero for unknown users.
func (t *Tracker) Count(userID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if u, ok := t.users[userID]; ok {
		return u.Count
	}
	return 0
}

// Reset zeroes the user's count and touches the last-seen timestamp.
// Unknown users are reported as false and nothing is created.
func (t *Tracker) Reset(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.users[userID]
	if !ok {
		return false
	}
	log.Info().Int64("user", userID).Str("username", u.Username).Int("oldCount", u.Count).Msg("reset user link count")
	u.Count = 0
	u.LastSeen = time.Now().Format(timeLayout)
	return true
}

// Whitelist exempts the user from restriction. Idempotent, and valid for
// users that have never posted a link.
func (t *Tracker) Whitelist(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.whitelist[userID] = struct{}{}
	log.Info().Int64("user", userID).Msg("user whitelisted")
}

// Unwhitelist removes the exemption and reports whether it was present.
func (t *Tracker) Unwhitelist(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.whitelist[userID]; !ok {
		return false
	}
	delete(t.whitelist, userID)
	log.Info().Int64("user", userID).Msg("user removed from whitelist")
	return true
}

func (t *Tracker) IsWhitelisted(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.whitelist[userID]
	return ok
}

// LookupUsername resolves a username, with or without the leading @ and
// in any casing, to the user id that most recently carried it.
func (t *Tracker) LookupUsername(username string) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.usernames[normalize(username)]
	return id, ok
}

// Stats is a point-in-time snapshot; mutating the tracker afterwards
// does not show through it.
type Stats struct {
	TotalUsers  int
	TotalLinks  int
	Users       map[int64]Record
	Whitelisted []int64
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{Users: make(map[int64]Record, len(t.users))}
	for id, u := range t.users {
		s.Users[id] = *u
		s.TotalLinks += u.Count
	}
	s.TotalUsers = len(t.users)
	s.Whitelisted = lo.Keys(t.whitelist)
	return s
}

// Cleanup evicts every record whose last-seen timestamp is strictly
// older than days days, then drops username index entries that point at
// an evicted user. Records with unparsable timestamps are kept. Returns
// the number of evicted records. Not wired to any scheduler; callers
// invoke it on demand.
func (t *Tracker) Cleanup(days int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0
	maps.DeleteFunc(t.users, func(id int64, u *Record) bool {
		lastSeen, err := time.ParseInLocation(timeLayout, u.LastSeen, time.Local)
		if err != nil {
			// Age unknown, never evict speculatively.
			return false
		}
		if !lastSeen.Before(cutoff) {
			return false
		}
		log.Info().Int64("user", id).Str("username", u.Username).Msg("evicting stale user record")
		removed++
		return true
	})

	if removed > 0 {
		maps.DeleteFunc(t.usernames, func(name string, id int64) bool {
			_, ok := t.users[id]
			return !ok
		})
		log.Info().Int("removed", removed).Msg("stale user records cleaned up")
	}
	return removed
}
