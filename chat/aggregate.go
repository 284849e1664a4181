package chat

import (
	"sort"
	"strings"
	"time"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
)

// Priority of a conversation in the inbox list
type Priority string

const (
	PriorityHigh   Priority = "high"   // unread messages waiting
	PriorityMedium Priority = "medium" // read but unanswered
	PriorityLow    Priority = "low"
)

// placeholderName is used when the counterpart side of a message
// carries no user record
const placeholderName = "Unknown user"

// Conversation is a per-counterpart summary derived from the flat
// message list. It is transient and rebuilt on every load; ID is the
// counterpart's user ID.
type Conversation struct {
	ID               uint      `json:"id"`
	CounterpartName  string    `json:"counterpartName"`
	CounterpartEmail string    `json:"counterpartEmail"`
	LastMessage      string    `json:"lastMessage"`
	LastMessageTime  time.Time `json:"lastMessageTime"`
	UnreadCount      int       `json:"unreadCount"`
	Priority         Priority  `json:"priority"`
}

// Aggregate groups a flat list of direct messages into one summary per
// counterpart, seen from currentUserID's side. It is a pure function:
// no stored state, no side effects.
//
// Output order is unread count descending, then latest message time
// descending, then counterpart ID ascending, so results are
// reproducible for equal inputs.
func Aggregate(messages []models.Message, currentUserID uint) []Conversation {
	type group struct {
		latest models.Message
		conv   Conversation
	}

	groups := make(map[uint]*group)

	for _, m := range messages {
		counterpartID := m.SenderID
		counterpart := m.Sender
		if m.SenderID == currentUserID {
			counterpartID = m.RecipientID
			counterpart = m.Recipient
		}

		g, ok := groups[counterpartID]
		if !ok {
			g = &group{latest: m, conv: Conversation{ID: counterpartID}}
			groups[counterpartID] = g
		}

		// first-seen non-empty metadata wins
		if g.conv.CounterpartName == "" {
			g.conv.CounterpartName = displayName(counterpart)
		}
		if g.conv.CounterpartEmail == "" {
			g.conv.CounterpartEmail = counterpart.Email
		}

		if newerThan(m, g.latest) {
			g.latest = m
		}

		if m.SenderID != currentUserID && !m.IsRead {
			g.conv.UnreadCount++
		}
	}

	conversations := make([]Conversation, 0, len(groups))
	for _, g := range groups {
		c := g.conv
		if c.CounterpartName == "" {
			c.CounterpartName = placeholderName
		}
		c.LastMessage = g.latest.Content
		c.LastMessageTime = g.latest.CreatedAt

		switch {
		case c.UnreadCount > 0:
			c.Priority = PriorityHigh
		case g.latest.SenderID != currentUserID:
			// everything read, but the counterpart spoke last
			c.Priority = PriorityMedium
		default:
			c.Priority = PriorityLow
		}

		conversations = append(conversations, c)
	}

	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		if a.UnreadCount != b.UnreadCount {
			return a.UnreadCount > b.UnreadCount
		}
		if !a.LastMessageTime.Equal(b.LastMessageTime) {
			return a.LastMessageTime.After(b.LastMessageTime)
		}
		return a.ID < b.ID
	})

	return conversations
}

// newerThan reports whether a should replace b as the latest message
// of a group. Equal timestamps fall back to the higher row ID.
func newerThan(a, b models.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func displayName(u models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return name
}
