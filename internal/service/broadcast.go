package service

import (
	"sort"
	"time"

	"github.com/jerseyshop/storefront/internal/domain"
)

// BroadcastGroup is one broadcast as the admin sent it: the per-recipient
// copies sharing message text, type and UTC day.
type BroadcastGroup struct {
	Message     string
	Type        domain.MessageType
	Day         string // YYYY-MM-DD, UTC
	Recipients  int
	ReadCount   int
	FirstSentAt time.Time
}

type broadcastKey struct {
	message string
	typ     domain.MessageType
	day     string
}

// GroupBroadcasts folds broadcast copies into groups keyed by (message, type, day).
// Direct messages are ignored. Groups are ordered newest first.
func GroupBroadcasts(msgs []domain.Message) []BroadcastGroup {
	index := make(map[broadcastKey]int)
	var groups []BroadcastGroup
	for _, m := range msgs {
		if !m.Broadcast {
			continue
		}
		k := broadcastKey{message: m.Message, typ: m.Type, day: m.CreatedAt.UTC().Format("2006-01-02")}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, BroadcastGroup{
				Message:     m.Message,
				Type:        m.Type,
				Day:         k.day,
				FirstSentAt: m.CreatedAt,
			})
		}
		g := &groups[i]
		g.Recipients++
		if m.Read {
			g.ReadCount++
		}
		if m.CreatedAt.Before(g.FirstSentAt) {
			g.FirstSentAt = m.CreatedAt
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].FirstSentAt.After(groups[j].FirstSentAt)
	})
	return groups
}
