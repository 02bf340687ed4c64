package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageJSONShape(t *testing.T) {
	text := Message{ID: "m1", SenderID: "a", Body: TextBody{Text: "hi"}}
	raw, err := json.Marshal(text)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "text", decoded["type"])
	assert.Equal(t, "hi", decoded["text"])
	assert.NotContains(t, decoded, "card")

	card := Message{ID: "m2", SenderID: "b", Body: CardBody{Card: Card{ItemID: "i1", Title: "Bike"}}}
	raw, err = json.Marshal(card)
	require.NoError(t, err)

	decoded = nil
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "card", decoded["type"])
	assert.NotContains(t, decoded, "text")
	assert.Equal(t, "i1", decoded["card"].(map[string]interface{})["item_id"])
}

func TestMessageBodyAccessors(t *testing.T) {
	m := &Message{Body: CardBody{Card: Card{ItemID: "i1"}}}
	_, isText := m.Text()
	assert.False(t, isText)

	c, ok := m.Card()
	require.True(t, ok)
	c.Accepted = true

	again, _ := m.Card()
	assert.False(t, again.Accepted, "Card returns a copy")
}
