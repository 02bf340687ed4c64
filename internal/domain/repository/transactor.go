package repository

import (
	"context"
	"net/http"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

// Transactor runs fn as a single serializable store transaction. fn may be
// invoked more than once when the store detects a conflict, so it must not
// have side effects outside tx. An error returned by fn aborts the
// transaction and is returned unchanged.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the view of the store inside a transaction. All reads must happen
// before the first write. Stores with a server clock stamp sale, acceptance
// and summary times with it; the times passed in are used otherwise.
type Tx interface {
	GetItem(id string) (*entity.Item, error)
	GetMessage(conversationID, messageID string) (*entity.Message, error)

	MarkItemSold(itemID string, sale entity.Sale) error
	MarkCardAccepted(conversationID, messageID, acceptedBy string, at time.Time) error
	UpdateConversationSummary(conversationID, lastMessage string, at time.Time) error
	SetItemReports(itemID string, reports []entity.Report) error
	DeleteItem(itemID string) error
}

const CodeTransactionFailed = "TRANSACTION_FAILED"

// TransactionFailed reports a transaction that could not commit, usually
// because conflicts exhausted the retry budget.
func TransactionFailed(err error) *errors.AppError {
	return errors.New(CodeTransactionFailed, "The operation could not be completed, please try again", http.StatusConflict, err)
}
