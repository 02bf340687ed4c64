package memory

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/metrics"
)

var errConflict = stderrors.New("memory: transaction conflict")

type transactor struct {
	store *Store
}

// NewTransactor returns the store's transaction runner. Reads are recorded
// with the version they saw; commit fails and the function is retried when
// any of those documents was written in the meantime.
func NewTransactor(store *Store) repository.Transactor {
	return &transactor{store: store}
}

func (t *transactor) RunInTransaction(ctx context.Context, fn func(tx repository.Tx) error) error {
	s := t.store
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return repository.TransactionFailed(err)
		}

		tx := &memoryTx{store: s, reads: make(map[string]uint64)}
		if err := fn(tx); err != nil {
			metrics.TransactionAttempts.WithLabelValues("aborted").Inc()
			return err
		}
		if tx.err != nil {
			return tx.err
		}

		if s.beforeCommit != nil {
			s.beforeCommit()
		}
		if s.commit(tx) {
			metrics.TransactionAttempts.WithLabelValues("committed").Inc()
			return nil
		}
		metrics.TransactionAttempts.WithLabelValues("retry").Inc()
	}

	metrics.TransactionAttempts.WithLabelValues("failed").Inc()
	logger.LogTransactionError("RunInTransaction", "", errConflict)
	return repository.TransactionFailed(errConflict)
}

func (s *Store) commit(tx *memoryTx) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for path, seen := range tx.reads {
		if s.versions[path] != seen {
			return false
		}
	}
	if len(tx.writes) == 0 {
		return true
	}

	paths := make([]string, 0, len(tx.writes))
	for _, w := range tx.writes {
		w.apply(s)
		paths = append(paths, w.path)
	}
	s.touch(paths...)
	return true
}

type write struct {
	path  string
	apply func(s *Store)
}

type memoryTx struct {
	store  *Store
	reads  map[string]uint64
	writes []write
	err    error
}

func (tx *memoryTx) read(path string, load func(s *Store)) error {
	if len(tx.writes) > 0 {
		tx.err = errors.Internal("Transaction read after write", fmt.Errorf("read of %s after write", path))
		return tx.err
	}
	s := tx.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx.reads[path] = s.versions[path]
	load(s)
	return nil
}

func (tx *memoryTx) GetItem(id string) (*entity.Item, error) {
	var item *entity.Item
	if err := tx.read(itemPath(id), func(s *Store) {
		if stored, ok := s.items[id]; ok {
			item = cloneItem(stored)
		}
	}); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NotFound("Item", nil)
	}
	return item, nil
}

func (tx *memoryTx) GetMessage(conversationID, messageID string) (*entity.Message, error) {
	var message *entity.Message
	if err := tx.read(messagePath(conversationID, messageID), func(s *Store) {
		if stored := s.findMessage(conversationID, messageID); stored != nil {
			message = cloneMessage(stored)
		}
	}); err != nil {
		return nil, err
	}
	if message == nil {
		return nil, errors.NotFound("Message", nil)
	}
	return message, nil
}

func (tx *memoryTx) MarkItemSold(itemID string, sale entity.Sale) error {
	soldAt := sale.SoldAt
	tx.writes = append(tx.writes, write{path: itemPath(itemID), apply: func(s *Store) {
		if item, ok := s.items[itemID]; ok {
			item.Sold = true
			item.BuyerID = sale.BuyerID
			item.SoldPrice = sale.SoldPrice
			item.SoldAt = &soldAt
		}
	}})
	return nil
}

func (tx *memoryTx) MarkCardAccepted(conversationID, messageID, acceptedBy string, at time.Time) error {
	tx.writes = append(tx.writes, write{path: messagePath(conversationID, messageID), apply: func(s *Store) {
		message := s.findMessage(conversationID, messageID)
		if message == nil {
			return
		}
		if body, ok := message.Body.(entity.CardBody); ok {
			acceptedAt := at
			body.Card.Accepted = true
			body.Card.AcceptedBy = acceptedBy
			body.Card.AcceptedAt = &acceptedAt
			message.Body = body
		}
	}})
	return nil
}

func (tx *memoryTx) UpdateConversationSummary(conversationID, lastMessage string, at time.Time) error {
	tx.writes = append(tx.writes, write{path: conversationPath(conversationID), apply: func(s *Store) {
		conversation := s.upsertConversation(conversationID)
		conversation.LastMessage = lastMessage
		conversation.LastUpdated = at
	}})
	return nil
}

func (tx *memoryTx) SetItemReports(itemID string, reports []entity.Report) error {
	stored := append([]entity.Report(nil), reports...)
	tx.writes = append(tx.writes, write{path: itemPath(itemID), apply: func(s *Store) {
		if item, ok := s.items[itemID]; ok {
			item.Reports = stored
		}
	}})
	return nil
}

func (tx *memoryTx) DeleteItem(itemID string) error {
	tx.writes = append(tx.writes, write{path: itemPath(itemID), apply: func(s *Store) {
		delete(s.items, itemID)
	}})
	return nil
}
