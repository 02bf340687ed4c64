package memory

import (
	"context"

	"github.com/google/uuid"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type messageRepository struct {
	store *Store
}

func NewMessageRepository(store *Store) repository.MessageRepository {
	return &messageRepository{store: store}
}

func (r *messageRepository) Append(ctx context.Context, message *entity.Message) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	message.ID = uuid.New().String()
	message.CreatedAt = s.now()
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], cloneMessage(message))
	s.touch(messagePath(message.ConversationID, message.ID))
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	message := s.findMessage(conversationID, messageID)
	if message == nil {
		return nil, errors.NotFound("Message", nil)
	}
	return cloneMessage(message), nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.messagesOf(conversationID), nil
}

func (r *messageRepository) SubscribeByConversation(ctx context.Context, conversationID string) (repository.Feed[[]*entity.Message], error) {
	return newFeed(ctx, r.store, func(s *Store) []*entity.Message {
		return s.messagesOf(conversationID)
	}), nil
}
