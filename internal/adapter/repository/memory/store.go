// Package memory is an in-process document store implementing the repository
// contracts. It gives the same guarantees the service relies on from
// Firestore: serializable transactions with optimistic retry, atomic counter
// updates and live query feeds.
package memory

import (
	"sort"
	"sync"
	"time"

	"campusmarket/internal/domain/entity"
)

const DefaultMaxAttempts = 5

type Option func(*Store)

// WithClock replaces time.Now. Timestamps handed out by the store are still
// forced to be strictly increasing.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.clock = now }
}

func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

type Store struct {
	mu          sync.RWMutex
	clock       func() time.Time
	last        time.Time
	maxAttempts int

	users         map[string]*entity.User
	items         map[string]*entity.Item
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message

	// versions holds a per-document write counter used to validate
	// transaction reads at commit.
	versions map[string]uint64
	// changed is closed and replaced after every write.
	changed chan struct{}

	// beforeCommit runs under no lock right before a transaction commits.
	beforeCommit func()
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:         time.Now,
		maxAttempts:   DefaultMaxAttempts,
		users:         make(map[string]*entity.User),
		items:         make(map[string]*entity.Item),
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
		versions:      make(map[string]uint64),
		changed:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func itemPath(id string) string         { return "items/" + id }
func userPath(id string) string         { return "users/" + id }
func conversationPath(id string) string { return "conversations/" + id }
func messagePath(conversationID, id string) string {
	return "conversations/" + conversationID + "/messages/" + id
}

// now must be called with mu held for writing.
func (s *Store) now() time.Time {
	t := s.clock()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

// touch bumps the versions of paths and wakes feeds. mu must be held for
// writing.
func (s *Store) touch(paths ...string) {
	for _, p := range paths {
		s.versions[p]++
	}
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Store) findMessage(conversationID, messageID string) *entity.Message {
	for _, m := range s.messages[conversationID] {
		if m.ID == messageID {
			return m
		}
	}
	return nil
}

func (s *Store) itemsByOwner(ownerID string) []*entity.Item {
	var out []*entity.Item
	for _, item := range s.items {
		if item.OwnerID == ownerID {
			out = append(out, cloneItem(item))
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(items []*entity.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func (s *Store) conversationsOf(userID string) []*entity.Conversation {
	out := make([]*entity.Conversation, 0)
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, cloneConversation(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out
}

func (s *Store) messagesOf(conversationID string) []*entity.Message {
	stored := s.messages[conversationID]
	out := make([]*entity.Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, cloneMessage(m))
	}
	return out
}

func cloneItem(in *entity.Item) *entity.Item {
	out := *in
	if in.Price != nil {
		p := *in.Price
		out.Price = &p
	}
	if in.SoldAt != nil {
		t := *in.SoldAt
		out.SoldAt = &t
	}
	if in.UpdatedAt != nil {
		t := *in.UpdatedAt
		out.UpdatedAt = &t
	}
	out.ImageURLs = append([]string(nil), in.ImageURLs...)
	out.Reports = append([]entity.Report(nil), in.Reports...)
	return &out
}

func cloneConversation(in *entity.Conversation) *entity.Conversation {
	out := *in
	out.Participants = append([]string(nil), in.Participants...)
	if in.UnreadCounts != nil {
		out.UnreadCounts = make(map[string]int, len(in.UnreadCounts))
		for k, v := range in.UnreadCounts {
			out.UnreadCounts[k] = v
		}
	}
	return &out
}

func cloneMessage(in *entity.Message) *entity.Message {
	out := *in
	if body, ok := in.Body.(entity.CardBody); ok {
		card := body.Card
		if card.AcceptedAt != nil {
			t := *card.AcceptedAt
			card.AcceptedAt = &t
		}
		out.Body = entity.CardBody{Card: card}
	}
	return &out
}

func cloneUser(in *entity.User) *entity.User {
	out := *in
	out.Favorites = append([]string(nil), in.Favorites...)
	return &out
}
