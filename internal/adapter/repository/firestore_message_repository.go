package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

// messageRecord is the stored shape of a message; exactly one of Text and
// Card is populated according to Type.
type messageRecord struct {
	SenderID  string      `firestore:"senderId"`
	CreatedAt time.Time   `firestore:"createdAt,serverTimestamp"`
	Type      string      `firestore:"type"`
	Text      string      `firestore:"text,omitempty"`
	Card      *cardRecord `firestore:"card,omitempty"`
}

type cardRecord struct {
	ItemID       string     `firestore:"itemId"`
	ImageURL     string     `firestore:"imageUrl"`
	Title        string     `firestore:"title"`
	PriceText    string     `firestore:"priceText"`
	OfferedPrice string     `firestore:"offeredPrice"`
	Accepted     bool       `firestore:"accepted"`
	AcceptedBy   string     `firestore:"acceptedBy,omitempty"`
	AcceptedAt   *time.Time `firestore:"acceptedAt,omitempty"`
}

func toMessageRecord(message *entity.Message) messageRecord {
	record := messageRecord{
		SenderID:  message.SenderID,
		CreatedAt: message.CreatedAt,
		Type:      string(message.Type()),
	}
	switch body := message.Body.(type) {
	case entity.TextBody:
		record.Text = body.Text
	case entity.CardBody:
		c := body.Card
		record.Card = &cardRecord{
			ItemID:       c.ItemID,
			ImageURL:     c.ImageURL,
			Title:        c.Title,
			PriceText:    c.PriceText,
			OfferedPrice: c.OfferedPrice,
			Accepted:     c.Accepted,
			AcceptedBy:   c.AcceptedBy,
			AcceptedAt:   c.AcceptedAt,
		}
	}
	return record
}

func (r messageRecord) toEntity(conversationID, id string) *entity.Message {
	message := &entity.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       r.SenderID,
		CreatedAt:      r.CreatedAt,
	}
	switch {
	case r.Type == string(entity.MessageTypeCard) && r.Card != nil:
		message.Body = entity.CardBody{Card: entity.Card{
			ItemID:       r.Card.ItemID,
			ImageURL:     r.Card.ImageURL,
			Title:        r.Card.Title,
			PriceText:    r.Card.PriceText,
			OfferedPrice: r.Card.OfferedPrice,
			Accepted:     r.Card.Accepted,
			AcceptedBy:   r.Card.AcceptedBy,
			AcceptedAt:   r.Card.AcceptedAt,
		}}
	case r.Type == string(entity.MessageTypeText), r.Type == "":
		message.Body = entity.TextBody{Text: r.Text}
	}
	return message
}

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) collection(conversationID string) *firestore.CollectionRef {
	return r.client.Collection(conversationsCollection).Doc(conversationID).Collection(messagesCollection)
}

func (r *firestoreMessageRepository) Append(ctx context.Context, message *entity.Message) error {
	ref := r.collection(message.ConversationID).NewDoc()

	record := toMessageRecord(message)
	record.CreatedAt = time.Time{}

	result, err := ref.Create(ctx, record)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	message.ID = ref.ID
	message.CreatedAt = result.UpdateTime
	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	doc, err := r.collection(conversationID).Doc(messageID).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}
	return decodeMessage(conversationID, doc)
}

func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	docs, err := r.orderedQuery(conversationID).Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching messages for conversation %s: %v", conversationID, err)
		return nil, errors.Internal("Failed to fetch messages", err)
	}
	return decodeMessages(conversationID, docs)
}

func (r *firestoreMessageRepository) SubscribeByConversation(ctx context.Context, conversationID string) (repository.Feed[[]*entity.Message], error) {
	decode := func(docs []*firestore.DocumentSnapshot) ([]*entity.Message, error) {
		return decodeMessages(conversationID, docs)
	}
	return newSnapshotFeed(ctx, r.orderedQuery(conversationID), decode), nil
}

func (r *firestoreMessageRepository) orderedQuery(conversationID string) firestore.Query {
	return r.collection(conversationID).OrderBy("createdAt", firestore.Asc)
}

func decodeMessage(conversationID string, doc *firestore.DocumentSnapshot) (*entity.Message, error) {
	var record messageRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return record.toEntity(conversationID, doc.Ref.ID), nil
}

func decodeMessages(conversationID string, docs []*firestore.DocumentSnapshot) ([]*entity.Message, error) {
	messages := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		message, err := decodeMessage(conversationID, doc)
		if err != nil {
			log.Printf("Error parsing message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}
