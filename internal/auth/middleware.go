package auth

import (
	"net/http"
	"strings"

	"github.com/granary/granary/internal/platform/httpx"
	"github.com/granary/granary/internal/shared"
)

// RequireAuth resolves the Authorization bearer token and injects the caller
// identity into the request context. Requests without a valid token get 401.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Deny(w, http.StatusUnauthorized, "未登录")
			return
		}
		user, err := s.Identify(r.Context(), token)
		if err != nil {
			httpx.Deny(w, http.StatusUnauthorized, "登录已过期，请重新登录")
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), &shared.Identity{
			UserID: user.ID,
			Name:   user.Name,
			Phone:  user.Phone,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
