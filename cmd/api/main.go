package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"campusmarket/internal/adapter/api"
	"campusmarket/internal/adapter/api/handler"
	apimiddleware "campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/adapter/api/router"
	"campusmarket/internal/adapter/repository"
	"campusmarket/internal/adapter/repository/memory"
	domainrepo "campusmarket/internal/domain/repository"
	"campusmarket/internal/domain/service"
	"campusmarket/internal/infrastructure/firebase"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/internal/infrastructure/storage"
	"campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/config"
	"campusmarket/pkg/logger"
)

type repositories struct {
	users         domainrepo.UserRepository
	items         domainrepo.ItemRepository
	conversations domainrepo.ConversationRepository
	messages      domainrepo.MessageRepository
	transactor    domainrepo.Transactor
	close         func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	var firebaseApp *fbapp.App
	if cfg.UsesFirebase() {
		opts = credentialOptions(cfg)
		firebaseApp, err = fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	}

	repos, err := openStore(ctx, cfg, opts)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer repos.close()

	authClient, err := newAuthClient(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	fileStorage, err := newFileStorage(ctx, cfg, opts)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer fileStorage.Close()

	rateLimiter := ratelimit.NewRateLimiter(ratelimit.DefaultPolicies())
	rateLimiter.StartCleanupRoutine(ctx)

	useCases := handler.UseCases{
		Chat:     usecase.NewChatUseCase(repos.conversations, repos.messages, repos.items, rateLimiter),
		Offer:    usecase.NewOfferUseCase(repos.transactor),
		Report:   usecase.NewReportUseCase(repos.transactor, repos.items, rateLimiter, cfg.ReportThreshold),
		Item:     usecase.NewItemUseCase(repos.items, repos.users, rateLimiter),
		Favorite: usecase.NewFavoriteUseCase(repos.users, repos.items),
		User:     usecase.NewUserUseCase(repos.users, authClient),
	}

	wsManager := websocket.NewManager()
	handlers := handler.Setup(useCases, wsManager, fileStorage, cfg.MaxUploadBytes, handler.NewHealthHandler(cfg.StoreDriver, cfg.AuthMode))

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient, cfg.AuthMode == config.AuthDev)
	router.Setup(e, handlers, authMiddleware, rateLimiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server on port %s (store=%s, auth=%s)...", cfg.ServerPort, cfg.StoreDriver, cfg.AuthMode)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down, closing %d live subscriptions", wsManager.Count())
		wsManager.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error: %v", err)
	}
}

// credentialOptions prefers the service account JSON from the environment,
// then a key file, then application default credentials.
func credentialOptions(cfg *config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
	}

	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
	}

	logger.Info("Using application default credentials")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (*repositories, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("Using the in-memory store; data is lost on restart")
		store := memory.NewStore(memory.WithMaxAttempts(cfg.TxMaxAttempts))
		return &repositories{
			users:         memory.NewUserRepository(store),
			items:         memory.NewItemRepository(store),
			conversations: memory.NewConversationRepository(store),
			messages:      memory.NewMessageRepository(store),
			transactor:    memory.NewTransactor(store),
			close:         func() error { return nil },
		}, nil
	}

	client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:         repository.NewFirestoreUserRepository(client),
		items:         repository.NewFirestoreItemRepository(client),
		conversations: repository.NewFirestoreConversationRepository(client),
		messages:      repository.NewFirestoreMessageRepository(client),
		transactor:    repository.NewFirestoreTransactor(client, cfg.TxMaxAttempts),
		close:         client.Close,
	}, nil
}

// identityProvider verifies ID tokens and deletes accounts.
type identityProvider interface {
	apimiddleware.TokenVerifier
	usecase.AccountDeleter
}

func newAuthClient(ctx context.Context, cfg *config.Config, app *fbapp.App) (identityProvider, error) {
	if cfg.AuthMode == config.AuthDev {
		logger.Warn("AUTH_MODE=dev: requests are trusted via the %s header", apimiddleware.DebugUserHeader)
		return firebase.NewDevAuthClient(), nil
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return firebase.NewFirebaseAuthClient(client), nil
}

func newFileStorage(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (service.FileStorage, error) {
	if cfg.StorageBucket == "" {
		logger.Warn("STORAGE_BUCKET not set; uploads are kept in memory")
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
}
