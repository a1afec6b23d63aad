package middleware

import (
	"net/http"
	"strings"

	"ordersync/internal/identity"
)

type tokenParser interface {
	ParseToken(token string) (identity.User, error)
}

// Auth кладёт пользователя сессии в контекст запроса. Аутентификацию
// делает внешний провайдер, здесь только разбор bearer-токена.
// Запросы без токена проходят анонимно: журнал получит пустое имя.
func Auth(parser tokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := parser.ParseToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), user)))
		})
	}
}
