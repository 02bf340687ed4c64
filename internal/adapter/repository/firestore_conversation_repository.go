package repository

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(conversationsCollection).Doc(id)
}

func (r *firestoreConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if _, err := r.doc(conversation.ID).Create(ctx, conversation); err != nil {
		if IsAlreadyExists(err) {
			return errors.Conflict("Conversation already exists")
		}
		return errors.Internal("Failed to create conversation", err)
	}
	return nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}
	return decodeConversation(doc)
}

func (r *firestoreConversationRepository) BackfillUnreadCounts(ctx context.Context, id string, participants []string) error {
	counts := make(map[string]interface{}, len(participants))
	for _, p := range participants {
		counts[p] = 0
	}

	_, err := r.doc(id).Set(ctx, map[string]interface{}{
		"unreadCounts": counts,
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to backfill unread counts", err)
	}
	return nil
}

func (r *firestoreConversationRepository) ResetUnread(ctx context.Context, id, userID string) error {
	_, err := r.doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCounts", userID}, Value: 0},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to reset unread count", err)
	}
	return nil
}

func (r *firestoreConversationRepository) RecordMessage(ctx context.Context, id string, activity entity.ConversationActivity) error {
	_, err := r.doc(id).Set(ctx, map[string]interface{}{
		"participantsArray": entity.SortedPair(activity.SenderID, activity.RecipientID),
		"lastMessage":       activity.LastMessage,
		"lastSender":        activity.SenderID,
		"lastUpdated":       firestore.ServerTimestamp,
		"unreadCounts": map[string]interface{}{
			activity.RecipientID: firestore.Increment(1),
			activity.SenderID:    0,
		},
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update conversation", err)
	}
	return nil
}

func (r *firestoreConversationRepository) participantQuery(userID string) firestore.Query {
	return r.client.Collection(conversationsCollection).
		Where("participantsArray", "array-contains", userID).
		OrderBy("lastUpdated", firestore.Desc)
}

func (r *firestoreConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	docs, err := r.participantQuery(userID).Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching conversations for user %s: %v", userID, err)
		return nil, errors.Internal("Failed to fetch conversations", err)
	}
	return decodeConversations(docs)
}

func (r *firestoreConversationRepository) SubscribeByParticipant(ctx context.Context, userID string) (repository.Feed[[]*entity.Conversation], error) {
	return newSnapshotFeed(ctx, r.participantQuery(userID), decodeConversations), nil
}

func decodeConversation(doc *firestore.DocumentSnapshot) (*entity.Conversation, error) {
	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	conversation.ID = doc.Ref.ID
	return &conversation, nil
}

func decodeConversations(docs []*firestore.DocumentSnapshot) ([]*entity.Conversation, error) {
	conversations := make([]*entity.Conversation, 0, len(docs))
	for _, doc := range docs {
		conversation, err := decodeConversation(doc)
		if err != nil {
			log.Printf("Error parsing conversation %s: %v", doc.Ref.ID, err)
			continue
		}
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}
