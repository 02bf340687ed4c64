package usecase

import (
	"context"
	"log"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/metrics"
)

const offerAcceptedSummary = "Offer accepted"

type OfferUseCase struct {
	transactor repository.Transactor
	now        func() time.Time
}

func NewOfferUseCase(transactor repository.Transactor) *OfferUseCase {
	return &OfferUseCase{
		transactor: transactor,
		now:        time.Now,
	}
}

type AcceptedOffer struct {
	ItemID         string    `json:"item_id"`
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	BuyerID        string    `json:"buyer_id"`
	SoldPrice      string    `json:"sold_price"`
	SoldAt         time.Time `json:"sold_at"`
}

// AcceptOffer sells itemID to the sender of the card message, marks the card
// accepted and updates the conversation preview, all in one transaction.
// Checks run in a fixed order so that concurrent acceptances produce at most
// one sale and every loser sees a precise reason.
func (uc *OfferUseCase) AcceptOffer(ctx context.Context, conversationID, messageID, itemID, acceptingUserID string) (*AcceptedOffer, error) {
	var accepted *AcceptedOffer

	err := uc.transactor.RunInTransaction(ctx, func(tx repository.Tx) error {
		accepted = nil

		item, err := tx.GetItem(itemID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return itemNotFound(err)
			}
			return err
		}
		message, err := tx.GetMessage(conversationID, messageID)
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			return err
		}

		// Replaying an acceptance that already went through reports the
		// terminal card state, whoever retries.
		if card, ok := cardOf(message); ok && card.Accepted && card.ItemID == itemID {
			return alreadyAccepted()
		}

		if !item.IsOwnedBy(acceptingUserID) {
			return notOwner()
		}
		if item.Sold {
			return alreadySold()
		}
		if message == nil {
			return messageNotFound(err)
		}
		card, ok := message.Card()
		if !ok {
			return notACardMessage()
		}
		if card.Accepted {
			return alreadyAccepted()
		}
		if card.ItemID != itemID {
			return itemMismatch()
		}

		now := uc.now()
		sale := entity.Sale{
			BuyerID:   message.SenderID,
			SoldPrice: card.OfferedPrice,
			SoldAt:    now,
		}
		if err := tx.MarkItemSold(itemID, sale); err != nil {
			return err
		}
		if err := tx.MarkCardAccepted(conversationID, messageID, acceptingUserID, now); err != nil {
			return err
		}
		if err := tx.UpdateConversationSummary(conversationID, offerAcceptedSummary, now); err != nil {
			return err
		}

		accepted = &AcceptedOffer{
			ItemID:         itemID,
			MessageID:      messageID,
			ConversationID: conversationID,
			BuyerID:        sale.BuyerID,
			SoldPrice:      sale.SoldPrice,
			SoldAt:         now,
		}
		return nil
	})
	if err != nil {
		code := errors.Code(err)
		if code == "" {
			code = errors.CodeInternal
		}
		metrics.OfferAcceptances.WithLabelValues(code).Inc()
		log.Printf("AcceptOffer Error: conversation=%s message=%s item=%s user=%s: %v", conversationID, messageID, itemID, acceptingUserID, err)
		return nil, err
	}

	metrics.OfferAcceptances.WithLabelValues("accepted").Inc()
	return accepted, nil
}

func cardOf(message *entity.Message) (*entity.Card, bool) {
	if message == nil {
		return nil, false
	}
	return message.Card()
}
