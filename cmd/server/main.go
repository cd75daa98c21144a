// Package main initializes and starts the MarketDesk server, setting up
// configuration, logging, the database connection, repositories, services
// and handlers, and bootstraps the first admin account when none exists.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/alukyanov/MarketDesk/internal/config"
	"github.com/alukyanov/MarketDesk/internal/db"
	"github.com/alukyanov/MarketDesk/internal/logger"
	"github.com/alukyanov/MarketDesk/internal/repository"
	"github.com/alukyanov/MarketDesk/internal/server/handler/http"
	"github.com/alukyanov/MarketDesk/internal/service"
	"github.com/alukyanov/MarketDesk/internal/session"
	"go.uber.org/zap"
)

// sessionTTL bounds how long a login stays valid.
const sessionTTL = 12 * time.Hour

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	zapLogger, err := logger.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// Initialize PostgreSQL: connect, create schema, seed default categories.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	categoryRepo := repository.NewPostgresCategoryRepository(postgresDB)
	itemRepo := repository.NewPostgresItemRepository(postgresDB)
	wantRepo := repository.NewPostgresWantRepository(postgresDB)
	messageRepo := repository.NewPostgresMessageRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	catalogService := service.NewCatalogService(itemRepo)
	wantService := service.NewWantService(wantRepo, itemRepo)
	messageService := service.NewMessageService(messageRepo)

	// First-run bootstrap: create the initial admin when none exists. The
	// admin account is created pre-approved.
	ctx := context.Background()
	hasAdmin, err := authService.HasAdmin(ctx)
	if err != nil {
		zapLogger.Fatal("cannot check for admin", zap.Error(err))
	}
	if !hasAdmin {
		if options.AdminPassword == "" {
			zapLogger.Fatal("no admin account exists; supply -admin-pass to bootstrap one")
		}
		if err := authService.CreateAdmin(ctx, options.AdminUsername, options.AdminPassword); err != nil {
			zapLogger.Fatal("cannot create admin", zap.Error(err))
		}
		zapLogger.Info("created bootstrap admin", zap.String("username", options.AdminUsername))
	}

	// Session store for login tokens.
	sessions := session.New(sessionTTL)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{Auth: authService, Sessions: sessions}
	categoryHandler := &http.CategoryHandler{Categories: categoryService}
	itemHandler := &http.ItemHandler{Catalog: catalogService}
	wantHandler := &http.WantHandler{Wants: wantService, Catalog: catalogService}
	messageHandler := &http.MessageHandler{Messages: messageService, Catalog: catalogService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, categoryHandler, itemHandler,
		wantHandler, messageHandler, sessions, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
