package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/auth"
	"github.com/gestaozabele/gabinete/internal/permissao"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyAtor    contextKey = "ator"
)

// Auth valida o JWT de acesso e injeta a identidade do usuário no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "Token não fornecido")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "Token inválido ou expirado")
				return
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "Token inválido ou expirado")
				return
			}

			ator := permissao.Ator{
				ID:    id,
				Email: claims.Email,
				Nivel: permissao.Normalize(claims.NivelPermissao),
			}
			next.ServeHTTP(w, r.WithContext(WithAtor(r.Context(), ator)))
		})
	}
}

// WithAtor grava a identidade autenticada no contexto.
func WithAtor(ctx context.Context, ator permissao.Ator) context.Context {
	ctx = context.WithValue(ctx, ContextKeySubject, ator.ID.String())
	return context.WithValue(ctx, ContextKeyAtor, ator)
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetAtor recupera a identidade autenticada; ok=false fora das rotas protegidas.
func GetAtor(ctx context.Context) (permissao.Ator, bool) {
	val, ok := ctx.Value(ContextKeyAtor).(permissao.Ator)
	return val, ok
}
