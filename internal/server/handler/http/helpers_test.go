package http

import (
	"context"
	"net/http"

	"github.com/alukyanov/MarketDesk/internal/middleware"
	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/go-chi/chi/v5"
)

// asUser stamps the request context with an authenticated caller, the way
// the session middleware does in production.
func asUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// withURLParam injects a chi route parameter for handlers called outside a
// router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var (
	admin = &models.User{ID: 1, Username: "root", Role: models.RoleAdmin, Status: models.StatusApproved}
	alice = &models.User{ID: 2, Username: "alice", Role: models.RoleUser, Status: models.StatusApproved}
	bob   = &models.User{ID: 3, Username: "bob", Role: models.RoleUser, Status: models.StatusApproved}
)
