package chat

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
)

const me uint = 1

func user(id uint, first, last, email string) models.User {
	return models.User{
		Model:     gorm.Model{ID: id},
		FirstName: first,
		LastName:  last,
		Email:     email,
	}
}

func msg(id uint, sender, recipient models.User, content string, at time.Time, read bool) models.Message {
	return models.Message{
		Model:       gorm.Model{ID: id, CreatedAt: at},
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Content:     content,
		IsRead:      read,
		Sender:      sender,
		Recipient:   recipient,
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, me)
	if got == nil {
		t.Fatal("expected non-nil slice for empty input")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d conversations", len(got))
	}
}

func TestAggregateOneConversationPerCounterpart(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	alice := user(2, "Alice", "Ames", "alice@example.com")
	bob := user(3, "Bob", "Burns", "bob@example.com")

	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	messages := []models.Message{
		msg(1, alice, self, "hi", t0, true),
		msg(2, self, alice, "hello", t0.Add(time.Minute), true),
		msg(3, bob, self, "rent question", t0.Add(2*time.Minute), true),
		msg(4, alice, self, "are you there?", t0.Add(3*time.Minute), true),
	}

	got := Aggregate(messages, me)
	if len(got) != 2 {
		t.Fatalf("expected 2 conversations for 2 counterparts, got %d", len(got))
	}
	for _, c := range got {
		if c.ID != alice.ID && c.ID != bob.ID {
			t.Fatalf("unexpected counterpart id %d", c.ID)
		}
	}
}

func TestAggregateUnreadCount(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	alice := user(2, "Alice", "Ames", "alice@example.com")

	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	messages := []models.Message{
		msg(1, alice, self, "one", t0, false),
		msg(2, alice, self, "two", t0.Add(time.Minute), false),
		msg(3, alice, self, "three", t0.Add(2*time.Minute), true),
		// own unread messages never count
		msg(4, self, alice, "mine", t0.Add(3*time.Minute), false),
	}

	got := Aggregate(messages, me)
	if len(got) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(got))
	}
	if got[0].UnreadCount != 2 {
		t.Fatalf("expected unreadCount 2, got %d", got[0].UnreadCount)
	}
	if got[0].Priority != PriorityHigh {
		t.Fatalf("expected high priority, got %q", got[0].Priority)
	}
}

func TestAggregateLatestMessageAndOrdering(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	a := user(2, "Alice", "Ames", "alice@example.com")
	b := user(3, "Bob", "Burns", "bob@example.com")
	c := user(4, "Cara", "Cole", "cara@example.com")

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	t1 := base.Add(1 * time.Hour)
	t2 := base.Add(2 * time.Hour)

	messages := []models.Message{
		msg(1, a, self, "from A, unread", t1, false),
		msg(2, a, self, "from A, read", t2, true),
		msg(3, b, self, "from B, unread", base, false),
		// zero-unread conversation, should sort last
		msg(4, c, self, "from C, read", t2.Add(time.Hour), true),
	}

	got := Aggregate(messages, me)
	if len(got) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(got))
	}

	// A and B tie at one unread; A's latest message is newer
	if got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("expected order [A B C], got [%d %d %d]", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[2].ID != c.ID {
		t.Fatalf("zero-unread conversation should sort last, got %d", got[2].ID)
	}

	if got[0].UnreadCount != 1 {
		t.Fatalf("A: expected unreadCount 1, got %d", got[0].UnreadCount)
	}
	if !got[0].LastMessageTime.Equal(t2) || got[0].LastMessage != "from A, read" {
		t.Fatalf("A: expected latest message at t2, got %q at %v", got[0].LastMessage, got[0].LastMessageTime)
	}
	if got[1].UnreadCount != 1 || !got[1].LastMessageTime.Equal(base) {
		t.Fatalf("B: expected unreadCount 1 at base time, got %d at %v", got[1].UnreadCount, got[1].LastMessageTime)
	}
	if got[0].Priority != PriorityHigh || got[1].Priority != PriorityHigh {
		t.Fatalf("A and B should be high priority, got %q and %q", got[0].Priority, got[1].Priority)
	}
}

func TestAggregateDeterministicTiebreak(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	a := user(2, "Alice", "Ames", "alice@example.com")
	b := user(3, "Bob", "Burns", "bob@example.com")

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	messages := []models.Message{
		msg(1, b, self, "b", at, true),
		msg(2, a, self, "a", at, true),
	}

	// identical unread counts and timestamps: lower counterpart ID first
	for i := 0; i < 10; i++ {
		got := Aggregate(messages, me)
		if got[0].ID != a.ID || got[1].ID != b.ID {
			t.Fatalf("run %d: expected [A B], got [%d %d]", i, got[0].ID, got[1].ID)
		}
	}
}

func TestAggregatePriorityMediumAndLow(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	alice := user(2, "Alice", "Ames", "alice@example.com")
	bob := user(3, "Bob", "Burns", "bob@example.com")

	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	messages := []models.Message{
		// read but unanswered: counterpart spoke last
		msg(1, alice, self, "ping", t0, true),
		// answered: own message is the latest
		msg(2, bob, self, "hey", t0, true),
		msg(3, self, bob, "hey back", t0.Add(time.Minute), true),
	}

	got := Aggregate(messages, me)
	byID := map[uint]Conversation{}
	for _, c := range got {
		byID[c.ID] = c
	}

	if byID[alice.ID].Priority != PriorityMedium {
		t.Fatalf("unanswered read thread should be medium, got %q", byID[alice.ID].Priority)
	}
	if byID[bob.ID].Priority != PriorityLow {
		t.Fatalf("answered thread should be low, got %q", byID[bob.ID].Priority)
	}
}

func TestAggregateCounterpartMetadata(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	alice := user(2, "Alice", "Ames", "alice@example.com")

	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	messages := []models.Message{
		msg(1, self, alice, "hi", t0, true),
	}

	got := Aggregate(messages, me)
	if got[0].CounterpartName != "Alice Ames" {
		t.Fatalf("expected counterpart name from recipient side, got %q", got[0].CounterpartName)
	}
	if got[0].CounterpartEmail != "alice@example.com" {
		t.Fatalf("expected counterpart email, got %q", got[0].CounterpartEmail)
	}
}

func TestAggregatePlaceholderMetadata(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	ghost := models.User{Model: gorm.Model{ID: 9}} // no name, no email

	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	messages := []models.Message{
		msg(1, ghost, self, "who dis", t0, false),
	}

	got := Aggregate(messages, me)
	if got[0].CounterpartName != "Unknown user" {
		t.Fatalf("expected placeholder name, got %q", got[0].CounterpartName)
	}
}

func TestAggregateEqualTimestampLatestByID(t *testing.T) {
	self := user(me, "Dana", "Hill", "dana@example.com")
	alice := user(2, "Alice", "Ames", "alice@example.com")

	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	messages := []models.Message{
		msg(2, alice, self, "second", at, true),
		msg(1, alice, self, "first", at, true),
	}

	got := Aggregate(messages, me)
	if got[0].LastMessage != "second" {
		t.Fatalf("equal timestamps should resolve by higher ID, got %q", got[0].LastMessage)
	}
}
