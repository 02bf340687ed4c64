package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
)

type ChatHandler struct {
	chatUseCase  *usecase.ChatUseCase
	offerUseCase *usecase.OfferUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, offerUseCase *usecase.OfferUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase:  chatUseCase,
		offerUseCase: offerUseCase,
	}
}

// Missing and blank text are both a no-op, answered with 204.
type sendTextRequest struct {
	Text string `json:"text" validate:"max=2000"`
}

type sendCardRequest struct {
	ItemID       string `json:"item_id" validate:"required"`
	OfferedPrice string `json:"offered_price" validate:"max=32"`
}

type acceptOfferRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type openConversationResponse struct {
	ConversationID string               `json:"conversation_id"`
	Conversation   *entity.Conversation `json:"conversation,omitempty"`
}

// conversationWith resolves the conversation between the caller and the :uid
// path parameter.
func conversationWith(c echo.Context) (string, string, error) {
	userID := c.Get("uid").(string)
	id, err := entity.ConversationID(userID, c.Param("uid"))
	if err != nil {
		return "", "", errors.New(usecase.CodeInvalidParticipants, "Invalid chat partner", http.StatusBadRequest, err)
	}
	return userID, id, nil
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversations, err := h.chatUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	if conversations == nil {
		conversations = []*entity.Conversation{}
	}

	return response.Success(c, conversations)
}

// OpenConversation ensures the conversation with :uid exists and marks it
// read for the caller.
func (h *ChatHandler) OpenConversation(c echo.Context) error {
	userID := c.Get("uid").(string)

	id, conversation, err := h.chatUseCase.OpenConversation(c.Request().Context(), userID, c.Param("uid"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, openConversationResponse{
		ConversationID: id,
		Conversation:   conversation,
	})
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.MarkRead(c.Request().Context(), userID, c.Param("uid")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Conversation marked as read",
	})
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	userID, conversationID, err := conversationWith(c)
	if err != nil {
		return response.Error(c, err)
	}

	messages, err := h.chatUseCase.ListMessages(c.Request().Context(), conversationID, userID)
	if err != nil {
		return response.Error(c, err)
	}
	if messages == nil {
		messages = []*entity.Message{}
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) SendText(c echo.Context) error {
	var req sendTextRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, conversationID, err := conversationWith(c)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.chatUseCase.SendText(c.Request().Context(), conversationID, userID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	if result == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return sendResponse(c, result)
}

func (h *ChatHandler) SendCard(c echo.Context) error {
	var req sendCardRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, conversationID, err := conversationWith(c)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.chatUseCase.SendCard(c.Request().Context(), conversationID, userID, req.ItemID, req.OfferedPrice)
	if err != nil {
		return response.Error(c, err)
	}

	return sendResponse(c, result)
}

// sendResponse answers 202 when the message was stored but the conversation
// metadata was not.
func sendResponse(c echo.Context, result *usecase.SendResult) error {
	if result.Degraded {
		return response.Accepted(c, result)
	}
	return response.Created(c, result)
}

func (h *ChatHandler) AcceptOffer(c echo.Context) error {
	var req acceptOfferRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, conversationID, err := conversationWith(c)
	if err != nil {
		return response.Error(c, err)
	}

	accepted, err := h.offerUseCase.AcceptOffer(c.Request().Context(), conversationID, c.Param("messageId"), req.ItemID, userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, accepted)
}
