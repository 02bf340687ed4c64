package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/domain/entity"
)

func TestMessageRecordRoundTrip(t *testing.T) {
	sent := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	accepted := sent.Add(time.Hour)

	tests := []struct {
		name string
		body entity.Body
	}{
		{"text", entity.TextBody{Text: "still available?"}},
		{"pending card", entity.CardBody{Card: entity.Card{
			ItemID:       "item-1",
			ImageURL:     "a.jpg",
			Title:        "Desk",
			PriceText:    "€60",
			OfferedPrice: "€50",
		}}},
		{"accepted card", entity.CardBody{Card: entity.Card{
			ItemID:     "item-1",
			Title:      "Desk",
			Accepted:   true,
			AcceptedBy: "seller",
			AcceptedAt: &accepted,
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := &entity.Message{
				ID:             "m1",
				ConversationID: "buyer_seller",
				SenderID:       "buyer",
				CreatedAt:      sent,
				Body:           tt.body,
			}

			record := toMessageRecord(message)
			assert.Equal(t, string(tt.body.Type()), record.Type)

			assert.Equal(t, message, record.toEntity("buyer_seller", "m1"))
		})
	}
}

func TestMessageRecordStoredShape(t *testing.T) {
	text := toMessageRecord(&entity.Message{SenderID: "a", Body: entity.TextBody{Text: "hi"}})
	assert.Equal(t, "text", text.Type)
	assert.Equal(t, "hi", text.Text)
	assert.Nil(t, text.Card)

	card := toMessageRecord(&entity.Message{SenderID: "a", Body: entity.CardBody{Card: entity.Card{ItemID: "i"}}})
	assert.Equal(t, "card", card.Type)
	assert.Empty(t, card.Text)
	require.NotNil(t, card.Card)
	assert.Equal(t, "i", card.Card.ItemID)
}

func TestMessageRecordLegacyAndUnknownTypes(t *testing.T) {
	legacy := messageRecord{SenderID: "a", Text: "old message"}.toEntity("a_b", "m1")
	text, ok := legacy.Text()
	require.True(t, ok)
	assert.Equal(t, "old message", text)
	assert.Equal(t, entity.MessageTypeText, legacy.Type())

	cardless := messageRecord{SenderID: "a", Type: "card"}.toEntity("a_b", "m2")
	assert.Nil(t, cardless.Body)
	_, ok = cardless.Card()
	assert.False(t, ok)

	unknown := messageRecord{SenderID: "a", Type: "sticker"}.toEntity("a_b", "m3")
	assert.Nil(t, unknown.Body)
	assert.Equal(t, "a_b", unknown.ConversationID)
	assert.Equal(t, "m3", unknown.ID)
}
