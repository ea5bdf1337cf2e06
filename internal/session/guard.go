// Package session decides whether navigation to protected views is
// permitted based on the presence of a stored profile record.
package session

import (
	"context"
	"net/http"

	"github.com/joonhan/charchat/internal/domain"
	"github.com/joonhan/charchat/internal/repository"
)

type contextKey int

const userKey contextKey = iota

// UserFromContext extracts the profile record attached by Middleware.
func UserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(userKey).(*domain.User); ok {
		return u
	}
	return nil
}

// Guard gates protected routes on the presence of a profile record. It
// is a pure function of current storage state: every check re-reads the
// repository, so a logout performed elsewhere is observed on the next
// guarded request.
type Guard struct {
	repo *repository.Repository
}

// NewGuard creates a guard over the given repository.
func NewGuard(repo *repository.Repository) *Guard {
	return &Guard{repo: repo}
}

// Authorized reports whether a profile record is currently stored.
// Repository errors are treated as "not authorized".
func (g *Guard) Authorized(ctx context.Context) bool {
	user, err := g.repo.GetUser(ctx)
	return err == nil && user != nil
}

// Middleware rejects requests with 401 when no profile record is stored
// and otherwise attaches the record to the request context. The frontend
// turns the 401 into a redirect to the login view; this is control flow,
// not an error.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.repo.GetUser(r.Context())
		if err != nil {
			http.Error(w, `{"error":"failed to read profile"}`, http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, `{"error":"login required"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
