package usecase

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/metrics"
)

type ChatUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	itemRepo         repository.ItemRepository
	rateLimiter      Limiter
}

func NewChatUseCase(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	itemRepo repository.ItemRepository,
	rateLimiter Limiter,
) *ChatUseCase {
	return &ChatUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		itemRepo:         itemRepo,
		rateLimiter:      rateLimiter,
	}
}

// SendResult is returned by the send operations. Degraded is set when the
// message was stored but the conversation preview and unread counters could
// not be updated.
type SendResult struct {
	Message  *entity.Message `json:"message"`
	Degraded bool            `json:"degraded"`
}

// EnsureConversation returns the conversation between selfID and otherID,
// creating it on first contact and backfilling unread counters on legacy
// records.
func (uc *ChatUseCase) EnsureConversation(ctx context.Context, selfID, otherID string) (*entity.Conversation, error) {
	id, err := entity.ConversationID(selfID, otherID)
	if err != nil {
		return nil, invalidParticipants(err)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, id)
	if errors.Is(err, errors.CodeNotFound) {
		conversation, err = entity.NewConversation(selfID, otherID, time.Now())
		if err != nil {
			return nil, invalidParticipants(err)
		}
		err = uc.conversationRepo.Create(ctx, conversation)
		if errors.Is(err, errors.CodeConflict) {
			// created concurrently by the other participant
			return uc.conversationRepo.GetByID(ctx, id)
		}
		if err != nil {
			log.Printf("EnsureConversation Error: failed to create conversation %s: %v", id, err)
			return nil, err
		}
		return conversation, nil
	}
	if err != nil {
		log.Printf("EnsureConversation Error: failed to read conversation %s: %v", id, err)
		return nil, err
	}

	if conversation.NeedsUnreadBackfill() {
		var missing []string
		for _, p := range entity.SortedPair(selfID, otherID) {
			if _, ok := conversation.UnreadCounts[p]; !ok {
				missing = append(missing, p)
			}
		}
		if err := uc.conversationRepo.BackfillUnreadCounts(ctx, id, missing); err != nil {
			log.Printf("EnsureConversation Warning: failed to backfill unread counts on %s: %v", id, err)
			return conversation, nil
		}
		if conversation.UnreadCounts == nil {
			conversation.UnreadCounts = make(map[string]int, len(missing))
		}
		for _, p := range missing {
			conversation.UnreadCounts[p] = 0
		}
	}
	return conversation, nil
}

// MarkRead zeroes selfID's unread counter. It is idempotent.
func (uc *ChatUseCase) MarkRead(ctx context.Context, selfID, otherID string) error {
	id, err := entity.ConversationID(selfID, otherID)
	if err != nil {
		return invalidParticipants(err)
	}
	return uc.conversationRepo.ResetUnread(ctx, id, selfID)
}

// OpenConversation is what happens when a user opens a chat: the
// conversation is ensured and marked read. Store failures are logged and
// never fatal; the conversation is nil when it could not be read.
func (uc *ChatUseCase) OpenConversation(ctx context.Context, selfID, otherID string) (string, *entity.Conversation, error) {
	id, err := entity.ConversationID(selfID, otherID)
	if err != nil {
		return "", nil, invalidParticipants(err)
	}

	conversation, err := uc.EnsureConversation(ctx, selfID, otherID)
	if err != nil {
		log.Printf("OpenConversation Warning: ensure %s failed: %v", id, err)
	}

	if err := uc.MarkRead(ctx, selfID, otherID); err != nil {
		log.Printf("OpenConversation Warning: mark read on %s failed: %v", id, err)
	} else if conversation != nil && conversation.UnreadCounts != nil {
		conversation.UnreadCounts[selfID] = 0
	}

	return id, conversation, nil
}

// SendText appends a text message. Whitespace-only text is ignored and
// yields a nil result.
func (uc *ChatUseCase) SendText(ctx context.Context, conversationID, senderID, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	recipientID, err := recipientOf(conversationID, senderID)
	if err != nil {
		return nil, err
	}

	if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
		log.Printf("SendText Rate Limited: User %s must wait %v", senderID, wait)
		return nil, rateLimited(wait)
	}

	message := &entity.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           entity.TextBody{Text: text},
	}
	return uc.send(ctx, "SendText", message, recipientID, text)
}

// SendCard shares one of the other participant's unsold listings, with an
// optional offered price.
func (uc *ChatUseCase) SendCard(ctx context.Context, conversationID, senderID, itemID, offeredPrice string) (*SendResult, error) {
	recipientID, err := recipientOf(conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, validation("An item is required")
	}

	if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendCard); !allowed {
		log.Printf("SendCard Rate Limited: User %s must wait %v", senderID, wait)
		return nil, rateLimited(wait)
	}

	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, itemNotFound(err)
		}
		return nil, err
	}
	if !item.IsOwnedBy(recipientID) {
		return nil, errors.BadRequest("You can only send the other user's listings", nil)
	}
	if item.Sold {
		return nil, alreadySold()
	}

	card := entity.NewCard(item, entity.NormalizeOfferPrice(offeredPrice))
	message := &entity.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           entity.CardBody{Card: card},
	}
	return uc.send(ctx, "SendCard", message, recipientID, card.Summary())
}

func (uc *ChatUseCase) send(ctx context.Context, op string, message *entity.Message, recipientID, summary string) (*SendResult, error) {
	if err := uc.messageRepo.Append(ctx, message); err != nil {
		log.Printf("%s Error: failed to append message to %s: %v", op, message.ConversationID, err)
		return nil, err
	}
	metrics.MessagesSent.WithLabelValues(string(message.Type())).Inc()

	result := &SendResult{Message: message}
	err := uc.conversationRepo.RecordMessage(ctx, message.ConversationID, entity.ConversationActivity{
		LastMessage: summary,
		SenderID:    message.SenderID,
		RecipientID: recipientID,
	})
	if err != nil {
		log.Printf("%s Warning: message %s stored but conversation %s not updated: %v", op, message.ID, message.ConversationID, err)
		metrics.ConversationMetadataFailures.Inc()
		result.Degraded = true
	}
	return result, nil
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, conversationID, userID string) ([]*entity.Message, error) {
	if _, err := recipientOf(conversationID, userID); err != nil {
		return nil, err
	}
	return uc.messageRepo.ListByConversation(ctx, conversationID)
}

func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	return uc.conversationRepo.ListByParticipant(ctx, userID)
}

// SubscribeMessages opens a live, oldest-first view of a conversation's
// messages. The caller must Stop the feed.
func (uc *ChatUseCase) SubscribeMessages(ctx context.Context, conversationID, userID string) (repository.Feed[[]*entity.Message], error) {
	if _, err := recipientOf(conversationID, userID); err != nil {
		return nil, err
	}
	feed, err := uc.messageRepo.SubscribeByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return trackFeed[[]*entity.Message](feed, "messages"), nil
}

// SubscribeConversationList opens a live view of the user's conversations,
// most recently updated first. The caller must Stop the feed.
func (uc *ChatUseCase) SubscribeConversationList(ctx context.Context, userID string) (repository.Feed[[]*entity.Conversation], error) {
	feed, err := uc.conversationRepo.SubscribeByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	return trackFeed[[]*entity.Conversation](feed, "conversations"), nil
}

func recipientOf(conversationID, senderID string) (string, error) {
	participants, err := entity.ParseConversationID(conversationID)
	if err != nil {
		return "", invalidParticipants(err)
	}
	switch senderID {
	case participants[0]:
		return participants[1], nil
	case participants[1]:
		return participants[0], nil
	}
	return "", notParticipant()
}

type trackedFeed[T any] struct {
	repository.Feed[T]
	kind string
	once sync.Once
}

func trackFeed[T any](feed repository.Feed[T], kind string) repository.Feed[T] {
	metrics.ActiveSubscriptions.WithLabelValues(kind).Inc()
	return &trackedFeed[T]{Feed: feed, kind: kind}
}

func (f *trackedFeed[T]) Stop() {
	f.once.Do(func() {
		f.Feed.Stop()
		metrics.ActiveSubscriptions.WithLabelValues(f.kind).Dec()
	})
}
