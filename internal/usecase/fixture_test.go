package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/adapter/repository/memory"
	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
)

type allowAll struct{}

func (allowAll) Allow(string, string) (bool, time.Duration) { return true, 0 }

// accountsFake records deleted sign-in accounts.
type accountsFake struct {
	deleted []string
	err     error
}

func (a *accountsFake) DeleteUser(ctx context.Context, uid string) error {
	if a.err != nil {
		return a.err
	}
	a.deleted = append(a.deleted, uid)
	return nil
}

type denyAll struct{}

func (denyAll) Allow(string, string) (bool, time.Duration) { return false, 5 * time.Second }

type fixture struct {
	store         *memory.Store
	items         repository.ItemRepository
	users         repository.UserRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository

	chat      *ChatUseCase
	offers    *OfferUseCase
	reports   *ReportUseCase
	listings  *ItemUseCase
	favorites *FavoriteUseCase
	profiles  *UserUseCase
	accounts  *accountsFake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:         store,
		items:         memory.NewItemRepository(store),
		users:         memory.NewUserRepository(store),
		conversations: memory.NewConversationRepository(store),
		messages:      memory.NewMessageRepository(store),
	}
	transactor := memory.NewTransactor(store)

	f.chat = NewChatUseCase(f.conversations, f.messages, f.items, allowAll{})
	f.offers = NewOfferUseCase(transactor)
	f.reports = NewReportUseCase(transactor, f.items, allowAll{}, DefaultReportThreshold)
	f.listings = NewItemUseCase(f.items, f.users, allowAll{})
	f.favorites = NewFavoriteUseCase(f.users, f.items)
	f.accounts = &accountsFake{}
	f.profiles = NewUserUseCase(f.users, f.accounts)
	return f
}

func memoryTransactor(f *fixture) repository.Transactor {
	return memory.NewTransactor(f.store)
}

func (f *fixture) seedItem(t *testing.T, owner, title string, price float64) *entity.Item {
	t.Helper()
	item := &entity.Item{
		OwnerID:     owner,
		Title:       title,
		Description: title + " in good condition",
		Category:    "books",
		Price:       &price,
		PriceText:   "€" + title,
		ImageURLs:   []string{"https://img.example/" + title + ".jpg"},
	}
	require.NoError(t, f.items.Create(context.Background(), item))
	return item
}

func (f *fixture) conversationID(t *testing.T, a, b string) string {
	t.Helper()
	id, err := entity.ConversationID(a, b)
	require.NoError(t, err)
	return id
}

func (f *fixture) getItem(t *testing.T, id string) *entity.Item {
	t.Helper()
	item, err := f.items.GetByID(context.Background(), id)
	require.NoError(t, err)
	return item
}

func (f *fixture) getMessage(t *testing.T, conversationID, id string) *entity.Message {
	t.Helper()
	message, err := f.messages.GetByID(context.Background(), conversationID, id)
	require.NoError(t, err)
	return message
}
