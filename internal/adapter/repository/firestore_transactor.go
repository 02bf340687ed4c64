package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/metrics"
)

type firestoreTransactor struct {
	client      *firestore.Client
	maxAttempts int
}

func NewFirestoreTransactor(client *firestore.Client, maxAttempts int) repository.Transactor {
	if maxAttempts < 1 {
		maxAttempts = firestore.DefaultTransactionMaxAttempts
	}
	return &firestoreTransactor{
		client:      client,
		maxAttempts: maxAttempts,
	}
}

func (t *firestoreTransactor) RunInTransaction(ctx context.Context, fn func(tx repository.Tx) error) error {
	attempts := 0
	err := t.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		attempts++
		if attempts > 1 {
			metrics.TransactionAttempts.WithLabelValues("retry").Inc()
		}
		return fn(&firestoreTx{client: t.client, tx: tx})
	}, firestore.MaxAttempts(t.maxAttempts))

	if err == nil {
		metrics.TransactionAttempts.WithLabelValues("committed").Inc()
		return nil
	}
	if errors.Code(err) != "" {
		metrics.TransactionAttempts.WithLabelValues("aborted").Inc()
		return err
	}
	metrics.TransactionAttempts.WithLabelValues("failed").Inc()
	logger.LogTransactionError("RunInTransaction", "", err)
	return repository.TransactionFailed(err)
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) itemRef(id string) *firestore.DocumentRef {
	return t.client.Collection(itemsCollection).Doc(id)
}

func (t *firestoreTx) conversationRef(id string) *firestore.DocumentRef {
	return t.client.Collection(conversationsCollection).Doc(id)
}

func (t *firestoreTx) messageRef(conversationID, messageID string) *firestore.DocumentRef {
	return t.conversationRef(conversationID).Collection(messagesCollection).Doc(messageID)
}

func (t *firestoreTx) GetItem(id string) (*entity.Item, error) {
	doc, err := t.tx.Get(t.itemRef(id))
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Item", err)
		}
		return nil, err
	}
	return decodeItem(doc)
}

func (t *firestoreTx) GetMessage(conversationID, messageID string) (*entity.Message, error) {
	doc, err := t.tx.Get(t.messageRef(conversationID, messageID))
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Message", err)
		}
		return nil, err
	}
	return decodeMessage(conversationID, doc)
}

func (t *firestoreTx) MarkItemSold(itemID string, sale entity.Sale) error {
	return t.tx.Update(t.itemRef(itemID), saleUpdates(sale))
}

func (t *firestoreTx) MarkCardAccepted(conversationID, messageID, acceptedBy string, at time.Time) error {
	return t.tx.Update(t.messageRef(conversationID, messageID), acceptanceUpdates(acceptedBy))
}

func (t *firestoreTx) UpdateConversationSummary(conversationID, lastMessage string, at time.Time) error {
	return t.tx.Set(t.conversationRef(conversationID), map[string]interface{}{
		"lastMessage": lastMessage,
		"lastUpdated": firestore.ServerTimestamp,
	}, firestore.MergeAll)
}

func (t *firestoreTx) SetItemReports(itemID string, reports []entity.Report) error {
	return t.tx.Update(t.itemRef(itemID), []firestore.Update{
		{Path: "reports", Value: reports},
	})
}

// saleUpdates stamps soldAt with the server clock; sale.SoldAt is not stored.
func saleUpdates(sale entity.Sale) []firestore.Update {
	return []firestore.Update{
		{Path: "sold", Value: true},
		{Path: "buyerId", Value: sale.BuyerID},
		{Path: "soldPrice", Value: nullableString(sale.SoldPrice)},
		{Path: "soldAt", Value: firestore.ServerTimestamp},
	}
}

func acceptanceUpdates(acceptedBy string) []firestore.Update {
	return []firestore.Update{
		{Path: "card.accepted", Value: true},
		{Path: "card.acceptedBy", Value: acceptedBy},
		{Path: "card.acceptedAt", Value: firestore.ServerTimestamp},
	}
}

// nullableString stores an empty string as null.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (t *firestoreTx) DeleteItem(itemID string) error {
	return t.tx.Delete(t.itemRef(itemID))
}
