package handler

import (
	"campusmarket/internal/domain/service"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
)

// UseCases groups what the HTTP surface depends on.
type UseCases struct {
	Chat     *usecase.ChatUseCase
	Offer    *usecase.OfferUseCase
	Report   *usecase.ReportUseCase
	Item     *usecase.ItemUseCase
	Favorite *usecase.FavoriteUseCase
	User     *usecase.UserUseCase
}

type Handlers struct {
	Health    *HealthHandler
	Chat      *ChatHandler
	WebSocket *WebSocketHandler
	Item      *ItemHandler
	User      *UserHandler
	Favorite  *FavoriteHandler
}

func Setup(useCases UseCases, wsManager *ws.Manager, fileStorage service.FileStorage, maxUploadBytes int64, health *HealthHandler) *Handlers {
	return &Handlers{
		Health:    health,
		Chat:      NewChatHandler(useCases.Chat, useCases.Offer),
		WebSocket: NewWebSocketHandler(wsManager, useCases.Chat),
		Item:      NewItemHandler(useCases.Item, useCases.Report, fileStorage, maxUploadBytes),
		User:      NewUserHandler(useCases.User, useCases.Item, useCases.Report),
		Favorite:  NewFavoriteHandler(useCases.Favorite),
	}
}
