package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeCard MessageType = "card"
)

// Body is the payload of a message: either a TextBody or a CardBody.
type Body interface {
	Type() MessageType
	isBody()
}

type TextBody struct {
	Text string
}

func (TextBody) Type() MessageType { return MessageTypeText }
func (TextBody) isBody()           {}

// Card is a snapshot of a listing sent into a conversation, optionally with an
// offered price. Only the acceptance fields ever change after creation.
type Card struct {
	ItemID       string     `json:"item_id"`
	ImageURL     string     `json:"image_url,omitempty"`
	Title        string     `json:"title"`
	PriceText    string     `json:"price_text,omitempty"`
	OfferedPrice string     `json:"offered_price"`
	Accepted     bool       `json:"accepted"`
	AcceptedBy   string     `json:"accepted_by,omitempty"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
}

type CardBody struct {
	Card Card
}

func (CardBody) Type() MessageType { return MessageTypeCard }
func (CardBody) isBody()           {}

type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	CreatedAt      time.Time
	Body           Body
}

// NewCard snapshots item into a pending card.
func NewCard(item *Item, offeredPrice string) Card {
	return Card{
		ItemID:       item.ID,
		ImageURL:     item.FirstImage(),
		Title:        item.DisplayTitle(),
		PriceText:    item.PriceLabel(),
		OfferedPrice: offeredPrice,
	}
}

// Summary is the conversation preview line for a card.
func (c Card) Summary() string {
	if c.OfferedPrice != "" {
		return fmt.Sprintf("[Offer] %s — Offer: %s", c.Title, c.OfferedPrice)
	}
	return fmt.Sprintf("[Listing] %s", c.Title)
}

func (m *Message) Type() MessageType {
	if m.Body == nil {
		return ""
	}
	return m.Body.Type()
}

func (m *Message) Text() (string, bool) {
	body, ok := m.Body.(TextBody)
	if !ok {
		return "", false
	}
	return body.Text, true
}

func (m *Message) Card() (*Card, bool) {
	body, ok := m.Body.(CardBody)
	if !ok {
		return nil, false
	}
	card := body.Card
	return &card, true
}

type messageJSON struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	CreatedAt      time.Time   `json:"created_at"`
	Type           MessageType `json:"type"`
	Text           string      `json:"text,omitempty"`
	Card           *Card       `json:"card,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		CreatedAt:      m.CreatedAt,
		Type:           m.Type(),
	}
	switch body := m.Body.(type) {
	case TextBody:
		out.Text = body.Text
	case CardBody:
		card := body.Card
		out.Card = &card
	}
	return json.Marshal(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Message{
		ID:             in.ID,
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		CreatedAt:      in.CreatedAt,
	}
	switch {
	case in.Type == MessageTypeText:
		m.Body = TextBody{Text: in.Text}
	case in.Type == MessageTypeCard && in.Card != nil:
		m.Body = CardBody{Card: *in.Card}
	}
	return nil
}
