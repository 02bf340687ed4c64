package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func TestEnsureConversationCreatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.chat.EnsureConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice_bob", first.ID)
	assert.Equal(t, []string{"alice", "bob"}, first.Participants)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, first.UnreadCounts)

	second, err := f.chat.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestEnsureConversationBackfillsLegacyRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := &entity.Conversation{
		ID:           "alice_bob",
		Participants: []string{"alice", "bob"},
		LastMessage:  "old message",
		LastUpdated:  time.Now(),
	}
	require.NoError(t, f.conversations.Create(ctx, legacy))

	got, err := f.chat.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, got.UnreadCounts)

	stored, err := f.conversations.GetByID(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, stored.UnreadCounts)
	assert.Equal(t, "old message", stored.LastMessage)
}

func TestEnsureConversationRejectsSelf(t *testing.T) {
	f := newFixture(t)

	_, err := f.chat.EnsureConversation(context.Background(), "alice", "alice")
	assert.True(t, errors.Is(err, CodeInvalidParticipants))
}

func TestSendTextCountsUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversationID(t, "x", "y")

	const n = 4
	for i := 0; i < n; i++ {
		res, err := f.chat.SendText(ctx, id, "x", "hello")
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.False(t, res.Degraded)
	}

	conv, err := f.conversations.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, n, conv.UnreadFor("y"))
	assert.Equal(t, 0, conv.UnreadFor("x"))
	assert.Equal(t, "hello", conv.LastMessage)
	assert.Equal(t, "x", conv.LastSender)

	_, opened, err := f.chat.OpenConversation(ctx, "y", "x")
	require.NoError(t, err)
	require.NotNil(t, opened)
	assert.Equal(t, 0, opened.UnreadFor("y"))

	conv, err = f.conversations.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadFor("y"))
}

func TestSendTextIgnoresWhitespace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversationID(t, "x", "y")

	res, err := f.chat.SendText(ctx, id, "x", "   \n\t")
	assert.NoError(t, err)
	assert.Nil(t, res)

	messages, err := f.chat.ListMessages(ctx, id, "x")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSendTextTrimsAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversationID(t, "x", "y")

	_, err := f.chat.SendText(ctx, id, "x", "  first ")
	require.NoError(t, err)
	_, err = f.chat.SendText(ctx, id, "y", "second")
	require.NoError(t, err)

	messages, err := f.chat.ListMessages(ctx, id, "y")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	text, ok := messages[0].Text()
	assert.True(t, ok)
	assert.Equal(t, "first", text)
	assert.Equal(t, "y", messages[1].SenderID)
}

func TestSendTextRequiresParticipant(t *testing.T) {
	f := newFixture(t)
	id := f.conversationID(t, "x", "y")

	_, err := f.chat.SendText(context.Background(), id, "mallory", "hi")
	assert.True(t, errors.Is(err, CodeNotParticipant))

	_, err = f.chat.SendText(context.Background(), "y_x", "x", "hi")
	assert.True(t, errors.Is(err, CodeInvalidParticipants))
}

func TestSendTextRateLimited(t *testing.T) {
	f := newFixture(t)
	f.chat = NewChatUseCase(f.conversations, f.messages, f.items, denyAll{})

	_, err := f.chat.SendText(context.Background(), f.conversationID(t, "x", "y"), "x", "hi")
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
}

func TestSendCardBuildsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "seller", "Calculus", 40)
	id := f.conversationID(t, "buyer", "seller")

	res, err := f.chat.SendCard(ctx, id, "buyer", item.ID, " 35 ")
	require.NoError(t, err)

	card, ok := res.Message.Card()
	require.True(t, ok)
	assert.Equal(t, item.ID, card.ItemID)
	assert.Equal(t, "https://img.example/Calculus.jpg", card.ImageURL)
	assert.Equal(t, "Calculus", card.Title)
	assert.Equal(t, "€40", card.PriceText)
	assert.Equal(t, "€35", card.OfferedPrice)
	assert.False(t, card.Accepted)

	conv, err := f.conversations.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "[Offer] Calculus — Offer: €35", conv.LastMessage)
	assert.Equal(t, 1, conv.UnreadFor("seller"))
}

func TestSendCardWithoutOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "seller", "Lamp", 10)
	id := f.conversationID(t, "buyer", "seller")

	res, err := f.chat.SendCard(ctx, id, "buyer", item.ID, "")
	require.NoError(t, err)
	card, _ := res.Message.Card()
	assert.Equal(t, "", card.OfferedPrice)

	conv, err := f.conversations.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "[Listing] Lamp", conv.LastMessage)
}

func TestSendCardRestrictions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversationID(t, "buyer", "seller")

	own := f.seedItem(t, "buyer", "Own", 5)
	_, err := f.chat.SendCard(ctx, id, "buyer", own.ID, "")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.chat.SendCard(ctx, id, "buyer", "missing", "")
	assert.True(t, errors.Is(err, CodeItemNotFound))

	sold := f.seedItem(t, "seller", "Sold", 5)
	res, err := f.chat.SendCard(ctx, id, "buyer", sold.ID, "5")
	require.NoError(t, err)
	_, err = f.offers.AcceptOffer(ctx, id, res.Message.ID, sold.ID, "seller")
	require.NoError(t, err)

	_, err = f.chat.SendCard(ctx, id, "buyer", sold.ID, "")
	assert.True(t, errors.Is(err, CodeAlreadySold))
}

func TestSubscribeMessagesYieldsSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversationID(t, "x", "y")

	feed, err := f.chat.SubscribeMessages(ctx, id, "x")
	require.NoError(t, err)
	defer feed.Stop()

	initial, err := feed.Next()
	require.NoError(t, err)
	assert.Empty(t, initial)

	_, err = f.chat.SendText(ctx, id, "y", "ping")
	require.NoError(t, err)

	next, err := feed.Next()
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, "y", next[0].SenderID)

	_, err = f.chat.SubscribeMessages(ctx, id, "z")
	assert.True(t, errors.Is(err, CodeNotParticipant))
}

func TestSubscribeConversationListOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chat.SendText(ctx, f.conversationID(t, "me", "a"), "a", "from a")
	require.NoError(t, err)
	_, err = f.chat.SendText(ctx, f.conversationID(t, "me", "b"), "b", "from b")
	require.NoError(t, err)

	feed, err := f.chat.SubscribeConversationList(ctx, "me")
	require.NoError(t, err)
	defer feed.Stop()

	list, err := feed.Next()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b_me", list[0].ID)
	assert.Equal(t, "a_me", list[1].ID)
}
