package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// BackfillUnreadCounts merges zeroed counters into a legacy record without
	// touching its other fields.
	BackfillUnreadCounts(ctx context.Context, id string, participants []string) error
	// ResetUnread sets unreadCounts.<userID> to zero.
	ResetUnread(ctx context.Context, id, userID string) error
	// RecordMessage writes the preview fields and the participant pair,
	// atomically increments the recipient's counter and zeroes the sender's.
	RecordMessage(ctx context.Context, id string, activity entity.ConversationActivity) error
	// ListByParticipant returns the user's conversations, most recently
	// updated first.
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error)
	SubscribeByParticipant(ctx context.Context, userID string) (Feed[[]*entity.Conversation], error)
}

type MessageRepository interface {
	// Append inserts message, assigning its ID and creation time.
	Append(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error)
	// ListByConversation returns messages ordered by creation time, oldest first.
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	SubscribeByConversation(ctx context.Context, conversationID string) (Feed[[]*entity.Message], error)
}
