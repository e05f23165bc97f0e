package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vfg2006/traffic-insights-import/internal/usecases/authenticating"
	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
)

type contextKey string

const (
	ContextKeyUser contextKey = "user"
)

// Rotas abertas (sondas de saúde e coleta de métricas)
var publicPaths = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

func AuthMiddleware(authService authenticating.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Cabeçalho Authorization é obrigatório", nil)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Token Bearer é obrigatório", nil)
				return
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				var authErr *authenticating.AuthError
				if errors.As(err, &authErr) {
					apiErrors.WriteError(w, authErr.Code, authErr.Err.Error(), nil)
					return
				}
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Token inválido", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
