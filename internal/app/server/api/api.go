//регистрация аккаунтов и вход устройств;
//хранение зашифрованного потока изменений;
//раздача изменений устройствам одного владельца по ревизиям.

//POST /api/auth/register  # Регистрация (публичный)
//POST /api/auth/login     # Вход устройства (публичный)
//POST /api/auth/refresh   # Обновление access-токена (публичный)
//POST /api/logout         # Выход устройства (auth)
//GET  /api/changes        # Изменения после ревизии (auth)
//POST /api/changes        # Приём пакета изменений (auth)
//GET  /api/health         # Liveness

package api

import (
	healthAPI "timekeeper/internal/app/server/api/http/health"
	"timekeeper/internal/app/server/api/http/middleware"
	"timekeeper/internal/app/server/api/http/middleware/auth"
	"timekeeper/internal/app/server/api/http/middleware/logger"
	syncAPI "timekeeper/internal/app/server/api/http/sync"
	userAPI "timekeeper/internal/app/server/api/http/user"
	"timekeeper/internal/domain/session"
	"timekeeper/internal/domain/sync"
	"timekeeper/internal/domain/user"
	"timekeeper/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Sync   *syncAPI.Handler
}

// New создает *chi.Mux со ВСЕМИ операциями через huma.Register
func New(storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Timekeeper Sync API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(storage, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage, log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(storage, log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage, log)
	userService := user.NewService(userRepo, user.NewCredentialValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	publicMW := middlewares.GetAllAndClear()
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, publicMW, middlewares.GetAllAndClear())

	changeRepo := postgres.NewChangeRepository(storage, log)
	syncService := sync.NewService(changeRepo, log, nil)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Sync:   syncHandler,
	}
}
