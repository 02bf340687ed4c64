package memory

import (
	"context"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type conversationRepository struct {
	store *Store
}

func NewConversationRepository(store *Store) repository.ConversationRepository {
	return &conversationRepository{store: store}
}

func (r *conversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[conversation.ID]; exists {
		return errors.Conflict("Conversation already exists")
	}
	s.conversations[conversation.ID] = cloneConversation(conversation)
	s.touch(conversationPath(conversation.ID))
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return cloneConversation(conversation), nil
}

func (r *conversationRepository) BackfillUnreadCounts(ctx context.Context, id string, participants []string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation := s.upsertConversation(id)
	for _, p := range participants {
		conversation.UnreadCounts[p] = 0
	}
	s.touch(conversationPath(id))
	return nil
}

func (r *conversationRepository) ResetUnread(ctx context.Context, id, userID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if conversation.UnreadCounts == nil {
		conversation.UnreadCounts = make(map[string]int)
	}
	conversation.UnreadCounts[userID] = 0
	s.touch(conversationPath(id))
	return nil
}

func (r *conversationRepository) RecordMessage(ctx context.Context, id string, activity entity.ConversationActivity) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation := s.upsertConversation(id)
	conversation.Participants = entity.SortedPair(activity.SenderID, activity.RecipientID)
	conversation.LastMessage = activity.LastMessage
	conversation.LastSender = activity.SenderID
	conversation.LastUpdated = s.now()
	conversation.UnreadCounts[activity.RecipientID]++
	conversation.UnreadCounts[activity.SenderID] = 0
	s.touch(conversationPath(id))
	return nil
}

func (r *conversationRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.conversationsOf(userID), nil
}

func (r *conversationRepository) SubscribeByParticipant(ctx context.Context, userID string) (repository.Feed[[]*entity.Conversation], error) {
	return newFeed(ctx, r.store, func(s *Store) []*entity.Conversation {
		return s.conversationsOf(userID)
	}), nil
}

// upsertConversation returns the stored record, creating a bare one the way
// a merge write on a missing document does. mu must be held for writing.
func (s *Store) upsertConversation(id string) *entity.Conversation {
	conversation, ok := s.conversations[id]
	if !ok {
		conversation = &entity.Conversation{ID: id}
		s.conversations[id] = conversation
	}
	if conversation.UnreadCounts == nil {
		conversation.UnreadCounts = make(map[string]int)
	}
	return conversation
}
