package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xGingi/SuperKagi-sub001/internal/catalog"
	"github.com/0xGingi/SuperKagi-sub001/internal/config"
	"github.com/0xGingi/SuperKagi-sub001/internal/httpapi"
	"github.com/0xGingi/SuperKagi-sub001/internal/repository"
	"github.com/0xGingi/SuperKagi-sub001/internal/server"
	"github.com/0xGingi/SuperKagi-sub001/internal/service"
	"github.com/0xGingi/SuperKagi-sub001/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.RunMigrations(ctx, db); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	chatRepo := repository.NewChatRepository(db)
	imageRepo := repository.NewImageRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, cfg.Session.Lifetime)
	userService := service.NewUserService(userRepo, logger)
	chatService := service.NewChatService(chatRepo)
	imageService := service.NewImageService(imageRepo)
	catalogClient := catalog.NewClient(cfg.Catalog, logger)

	if err := userService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Error("failed to seed admin user", slog.Any("error", err))
		os.Exit(1)
	}

	handler := httpapi.NewRouter(
		authService,
		userService,
		chatService,
		imageService,
		catalogClient,
		cfg.Session.CookieSecure,
		logger,
	)
	srv := server.New(cfg, handler, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}
