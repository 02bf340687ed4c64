package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ConversationIDSeparator joins the two participant ids. Firebase uids never
// contain it.
const ConversationIDSeparator = "_"

type Conversation struct {
	ID           string         `json:"id" firestore:"-"`
	Participants []string       `json:"participants" firestore:"participantsArray"`
	UnreadCounts map[string]int `json:"unread_counts" firestore:"unreadCounts"`
	LastMessage  string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastSender   string         `json:"last_sender,omitempty" firestore:"lastSender,omitempty"`
	LastUpdated  time.Time      `json:"last_updated" firestore:"lastUpdated"`
	CreatedAt    time.Time      `json:"created_at" firestore:"createdAt"`
}

// ConversationActivity is the metadata written after a message is appended.
type ConversationActivity struct {
	LastMessage string
	SenderID    string
	RecipientID string
}

// ConversationID derives the order-independent key of the conversation between
// a and b.
func ConversationID(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", fmt.Errorf("participant ids must not be empty")
	}
	if a == b {
		return "", fmt.Errorf("a conversation needs two distinct participants")
	}
	if strings.Contains(a, ConversationIDSeparator) || strings.Contains(b, ConversationIDSeparator) {
		return "", fmt.Errorf("participant ids must not contain %q", ConversationIDSeparator)
	}
	pair := SortedPair(a, b)
	return pair[0] + ConversationIDSeparator + pair[1], nil
}

// ParseConversationID splits a conversation id back into its sorted
// participant pair.
func ParseConversationID(id string) ([]string, error) {
	parts := strings.Split(id, ConversationIDSeparator)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed conversation id %q", id)
	}
	canonical, err := ConversationID(parts[0], parts[1])
	if err != nil {
		return nil, err
	}
	if canonical != id {
		return nil, fmt.Errorf("conversation id %q is not in canonical order", id)
	}
	return parts, nil
}

func SortedPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

// NewConversation builds the record created on first contact, with both unread
// counters at zero.
func NewConversation(a, b string, now time.Time) (*Conversation, error) {
	id, err := ConversationID(a, b)
	if err != nil {
		return nil, err
	}
	return &Conversation{
		ID:           id,
		Participants: SortedPair(a, b),
		UnreadCounts: ZeroUnreadCounts(a, b),
		CreatedAt:    now,
		LastUpdated:  now,
	}, nil
}

func ZeroUnreadCounts(a, b string) map[string]int {
	return map[string]int{a: 0, b: 0}
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

func (c *Conversation) UnreadFor(userID string) int {
	if c.UnreadCounts == nil {
		return 0
	}
	return c.UnreadCounts[userID]
}

// NeedsUnreadBackfill reports whether a legacy record lacks a counter for
// either participant.
func (c *Conversation) NeedsUnreadBackfill() bool {
	if c.UnreadCounts == nil {
		return true
	}
	for _, p := range c.Participants {
		if _, ok := c.UnreadCounts[p]; !ok {
			return true
		}
	}
	return false
}
