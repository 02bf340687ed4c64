package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/adapter/api"
	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/adapter/repository/memory"
	"campusmarket/internal/infrastructure/firebase"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/internal/infrastructure/storage"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	e       *echo.Echo
	store   *memory.Store
	uploads *storage.MemoryStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	transactor := memory.NewTransactor(store)
	users := memory.NewUserRepository(store)
	items := memory.NewItemRepository(store)
	conversations := memory.NewConversationRepository(store)
	messages := memory.NewMessageRepository(store)
	limiter := ratelimit.NewRateLimiter(nil)
	uploads := storage.NewMemoryStorage()

	useCases := handler.UseCases{
		Chat:     usecase.NewChatUseCase(conversations, messages, items, limiter),
		Offer:    usecase.NewOfferUseCase(transactor),
		Report:   usecase.NewReportUseCase(transactor, items, limiter, usecase.DefaultReportThreshold),
		Item:     usecase.NewItemUseCase(items, users, limiter),
		Favorite: usecase.NewFavoriteUseCase(users, items),
		User:     usecase.NewUserUseCase(users, firebase.NewDevAuthClient()),
	}
	handlers := handler.Setup(useCases, ws.NewManager(), uploads, 0, handler.NewHealthHandler("memory", "dev"))

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, handlers, middleware.NewAuthMiddleware(firebase.NewDevAuthClient(), true), limiter)

	return &testServer{e: e, store: store, uploads: uploads}
}

func (s *testServer) do(t *testing.T, method, path, user string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set(middleware.DebugUserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func (s *testServer) createItem(t *testing.T, owner, description, price string) string {
	t.Helper()
	code, res := s.do(t, http.MethodPost, "/v1/items", owner, map[string]interface{}{
		"description": description,
		"category":    "books",
		"price":       price,
	})
	require.Equal(t, http.StatusCreated, code, res.Error)

	var item struct {
		ID string `json:"id"`
	}
	decode(t, res.Data, &item)
	require.NotEmpty(t, item.ID)
	return item.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(t, http.MethodGet, "/v1/chats", "", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
}

func TestOfferFlow(t *testing.T) {
	s := newTestServer(t)
	itemID := s.createItem(t, "alice", "Calculus textbook", "45")

	code, res := s.do(t, http.MethodPost, "/v1/chats/alice", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	var opened struct {
		ConversationID string `json:"conversation_id"`
	}
	decode(t, res.Data, &opened)
	assert.Equal(t, "alice_bob", opened.ConversationID)

	code, res = s.do(t, http.MethodPost, "/v1/chats/alice/cards", "bob", map[string]string{
		"item_id":       itemID,
		"offered_price": "40",
	})
	require.Equal(t, http.StatusCreated, code, res.Error)
	var sent struct {
		Message struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			Card struct {
				OfferedPrice string `json:"offered_price"`
				Title        string `json:"title"`
			} `json:"card"`
		} `json:"message"`
		Degraded bool `json:"degraded"`
	}
	decode(t, res.Data, &sent)
	assert.Equal(t, "card", sent.Message.Type)
	assert.Equal(t, "€40", sent.Message.Card.OfferedPrice)
	assert.Equal(t, "Calculus textbook", sent.Message.Card.Title)
	assert.False(t, sent.Degraded)

	code, res = s.do(t, http.MethodGet, "/v1/chats", "alice", nil)
	require.Equal(t, http.StatusOK, code)
	var conversations []struct {
		ID           string         `json:"id"`
		UnreadCounts map[string]int `json:"unread_counts"`
		LastMessage  string         `json:"last_message"`
	}
	decode(t, res.Data, &conversations)
	require.Len(t, conversations, 1)
	assert.Equal(t, 1, conversations[0].UnreadCounts["alice"])
	assert.Equal(t, 0, conversations[0].UnreadCounts["bob"])
	assert.Equal(t, "[Offer] Calculus textbook — Offer: €40", conversations[0].LastMessage)

	acceptPath := "/v1/chats/bob/messages/" + sent.Message.ID + "/accept"
	code, res = s.do(t, http.MethodPost, acceptPath, "alice", map[string]string{"item_id": itemID})
	require.Equal(t, http.StatusOK, code, res.Error)
	var accepted struct {
		BuyerID   string `json:"buyer_id"`
		SoldPrice string `json:"sold_price"`
	}
	decode(t, res.Data, &accepted)
	assert.Equal(t, "bob", accepted.BuyerID)
	assert.Equal(t, "€40", accepted.SoldPrice)

	code, res = s.do(t, http.MethodGet, "/v1/items/"+itemID, "bob", nil)
	require.Equal(t, http.StatusOK, code)
	var item struct {
		Sold    bool   `json:"sold"`
		BuyerID string `json:"buyer_id"`
	}
	decode(t, res.Data, &item)
	assert.True(t, item.Sold)
	assert.Equal(t, "bob", item.BuyerID)

	code, res = s.do(t, http.MethodPost, acceptPath, "alice", map[string]string{"item_id": itemID})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, res.Error)
	assert.Equal(t, usecase.CodeAlreadyAccepted, res.Error.Code)
}

func TestAcceptOfferByBuyerIsRejected(t *testing.T) {
	s := newTestServer(t)
	itemID := s.createItem(t, "alice", "Desk lamp", "15")

	code, res := s.do(t, http.MethodPost, "/v1/chats/alice/cards", "bob", map[string]string{"item_id": itemID})
	require.Equal(t, http.StatusCreated, code, res.Error)
	var sent struct {
		Message struct {
			ID string `json:"id"`
		} `json:"message"`
	}
	decode(t, res.Data, &sent)

	code, res = s.do(t, http.MethodPost, "/v1/chats/alice/messages/"+sent.Message.ID+"/accept", "bob", map[string]string{"item_id": itemID})
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, res.Error)
	assert.Equal(t, usecase.CodeNotOwner, res.Error.Code)
}

func TestSendTextValidation(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []map[string]string{{}, {"text": ""}, {"text": "   "}} {
		code, _ := s.do(t, http.MethodPost, "/v1/chats/alice/messages", "bob", body)
		assert.Equal(t, http.StatusNoContent, code, "body %v", body)
	}

	code, res := s.do(t, http.MethodPost, "/v1/chats/alice/messages", "bob", map[string]string{"text": strings.Repeat("a", 2001)})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)

	code, res = s.do(t, http.MethodGet, "/v1/chats/alice/messages", "bob", nil)
	assert.Equal(t, http.StatusOK, code)
	var messages []map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Data, &messages))
	assert.Empty(t, messages)

	code, res = s.do(t, http.MethodPost, "/v1/chats/bob/messages", "bob", map[string]string{"text": "hi me"})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, res.Error)
	assert.Equal(t, usecase.CodeInvalidParticipants, res.Error.Code)
}

func TestMarkReadResetsCounter(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/v1/chats/alice/messages", "bob", map[string]string{"text": "is it still available?"})
	require.Equal(t, http.StatusCreated, code)

	code, _ = s.do(t, http.MethodPut, "/v1/chats/bob/read", "alice", nil)
	require.Equal(t, http.StatusOK, code)

	_, res := s.do(t, http.MethodGet, "/v1/chats", "alice", nil)
	var conversations []struct {
		UnreadCounts map[string]int `json:"unread_counts"`
	}
	decode(t, res.Data, &conversations)
	require.Len(t, conversations, 1)
	assert.Equal(t, 0, conversations[0].UnreadCounts["alice"])

	_, res = s.do(t, http.MethodGet, "/v1/chats/bob/messages", "alice", nil)
	var messages []struct {
		Text string `json:"text"`
	}
	decode(t, res.Data, &messages)
	require.Len(t, messages, 1)
	assert.Equal(t, "is it still available?", messages[0].Text)
}

func TestCreateItemRequiresVerifiedEmail(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(t, http.MethodPost, "/v1/items", "carol:unverified", map[string]string{
		"description": "Bike",
		"category":    "sports",
		"price":       "80",
	})

	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, res.Error)
	assert.Equal(t, usecase.CodeEmailNotVerified, res.Error.Code)
}

func TestReportThresholdRemovesItem(t *testing.T) {
	s := newTestServer(t)
	itemID := s.createItem(t, "alice", "Suspicious phone", "10")

	code, res := s.do(t, http.MethodPost, "/v1/items/"+itemID+"/reports", "bob", map[string]string{"reason": "scam"})
	require.Equal(t, http.StatusCreated, code, res.Error)

	code, res = s.do(t, http.MethodPost, "/v1/items/"+itemID+"/reports", "bob", map[string]string{"reason": "scam"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, usecase.CodeAlreadyReported, res.Error.Code)

	_, res = s.do(t, http.MethodGet, "/v1/me/reported-items", "alice", nil)
	var reported []struct {
		ID string `json:"id"`
	}
	decode(t, res.Data, &reported)
	require.Len(t, reported, 1)
	assert.Equal(t, itemID, reported[0].ID)

	code, res = s.do(t, http.MethodPost, "/v1/items/"+itemID+"/reports", "carol", map[string]string{"reason": "spam"})
	require.Equal(t, http.StatusCreated, code, res.Error)
	var result struct {
		Removed bool `json:"removed"`
	}
	decode(t, res.Data, &result)
	assert.True(t, result.Removed)

	code, res = s.do(t, http.MethodGet, "/v1/items/"+itemID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, usecase.CodeItemNotFound, res.Error.Code)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t)
	itemID := s.createItem(t, "alice", "Mini fridge", "60")

	code, _ := s.do(t, http.MethodPost, "/v1/me/favorites/"+itemID, "bob", nil)
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(t, http.MethodPost, "/v1/me/favorites/"+itemID, "bob", nil)
	require.Equal(t, http.StatusCreated, code)

	_, res := s.do(t, http.MethodGet, "/v1/me/favorites", "bob", nil)
	var favorites []struct {
		ID string `json:"id"`
	}
	decode(t, res.Data, &favorites)
	require.Len(t, favorites, 1)
	assert.Equal(t, itemID, favorites[0].ID)

	code, res = s.do(t, http.MethodPost, "/v1/me/favorites/"+itemID, "alice", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodDelete, "/v1/me/favorites", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	_, res = s.do(t, http.MethodGet, "/v1/me/favorites", "bob", nil)
	assert.JSONEq(t, `[]`, string(res.Data))
}

func TestProfileAndListings(t *testing.T) {
	s := newTestServer(t)
	s.createItem(t, "alice", "Old laptop", "300")

	code, res := s.do(t, http.MethodPut, "/v1/me", "alice", map[string]string{"name": "Alice", "bio": "CS student"})
	require.Equal(t, http.StatusOK, code, res.Error)

	code, res = s.do(t, http.MethodGet, "/v1/users/alice", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	decode(t, res.Data, &profile)
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, "CS student", profile.Bio)

	code, res = s.do(t, http.MethodGet, "/v1/users/alice/items?available=true", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	var listings []struct {
		Description string `json:"description"`
	}
	decode(t, res.Data, &listings)
	require.Len(t, listings, 1)
	assert.Equal(t, "Old laptop", listings[0].Description)

	code, res = s.do(t, http.MethodGet, "/v1/me", "dave", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Data), `"favorites":[]`)

	code, res = s.do(t, http.MethodGet, "/v1/items?page=1&limit=10", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, res.Data, &page)
	assert.Equal(t, int64(1), page.Total)
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer(t)
	itemID := s.createItem(t, "alice", "Old laptop", "300")

	code, res := s.do(t, http.MethodPut, "/v1/me", "alice", map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusOK, code, res.Error)

	code, res = s.do(t, http.MethodDelete, "/v1/me", "alice", nil)
	require.Equal(t, http.StatusOK, code, res.Error)
	assert.Contains(t, string(res.Data), "Account deleted")

	code, res = s.do(t, http.MethodGet, "/v1/users/alice", "bob", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "NOT_FOUND", res.Error.Code)

	code, _ = s.do(t, http.MethodGet, "/v1/items/"+itemID, "bob", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/items/images", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(middleware.DebugUserHeader, "alice")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	var uploaded struct {
		URL string `json:"url"`
	}
	decode(t, res.Data, &uploaded)

	data, ok := s.uploads.Object(uploaded.URL)
	require.True(t, ok)
	assert.Equal(t, "fake-png", string(data))
}

func TestMessageSubscription(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.e)
	defer server.Close()

	header := http.Header{}
	header.Set(middleware.DebugUserHeader, "alice")
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws/chats/bob"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	readSnapshot := func() []map[string]interface{} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event struct {
			Type string                   `json:"type"`
			Data []map[string]interface{} `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "messages", event.Type)
		return event.Data
	}

	assert.Empty(t, readSnapshot())

	code, _ := s.do(t, http.MethodPost, "/v1/chats/alice/messages", "bob", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, code)

	snapshot := readSnapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "hello", snapshot[0]["text"])
}

func TestSubscriptionRejectsOutsiders(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(t, http.MethodGet, "/v1/ws/chats/alice", "alice", nil)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, usecase.CodeInvalidParticipants, res.Error.Code)
}
