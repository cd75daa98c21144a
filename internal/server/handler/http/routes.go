package http

import (
	"net/http"

	"github.com/alukyanov/MarketDesk/internal/middleware"
	"github.com/alukyanov/MarketDesk/internal/session"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the marketplace API.
// Registration and login are public; every other endpoint requires a
// session token minted by login.
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON requests
//  2. WithRequestLogging(logger)           — logs incoming requests
//  3. SessionAuth (protected group)        — resolves the caller from the token
func NewRouter(
	authHandler *AuthHandler,
	categoryHandler *CategoryHandler,
	itemHandler *ItemHandler,
	wantHandler *WantHandler,
	messageHandler *MessageHandler,
	sessions *session.Store,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessions))

			r.Post("/logout", authHandler.Logout)

			r.Get("/users", authHandler.ListUsers)
			r.Get("/users/pending", authHandler.ListPending)
			r.Post("/users/{username}/approve", authHandler.Approve)

			r.Get("/categories", categoryHandler.List)
			r.Post("/categories", categoryHandler.Add)
			r.Put("/categories/{name}", categoryHandler.Update)
			r.Delete("/categories/{name}", categoryHandler.Delete)
			r.Get("/categories/{name}/attributes", categoryHandler.Attributes)

			r.Post("/items", itemHandler.Create)
			r.Get("/items", itemHandler.List)
			r.Get("/items/search", itemHandler.Search)
			r.Get("/items/mine", itemHandler.ListMine)
			r.Get("/items/{id}", itemHandler.Get)
			r.Patch("/items/{id}", itemHandler.Revise)
			r.Delete("/items/{id}", itemHandler.Delete)

			r.Post("/items/{id}/want", wantHandler.Add)
			r.Get("/items/{id}/wanters", wantHandler.Wanters)
			r.Post("/items/{id}/sold", wantHandler.ConfirmSold)
			r.Get("/wants/mine", wantHandler.Mine)
			r.Get("/wants/received", wantHandler.Received)

			r.Post("/items/{id}/messages", messageHandler.Post)
			r.Get("/items/{id}/messages", messageHandler.List)
		})
	})

	return r
}
