package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHeader передаёт общий пароль для записи результатов.
const PasswordHeader = "X-Results-Password"

// ResultsGate пропускает запросы на запись только с общим паролем.
// Это не аутентификация: пароль один на всех, он лишь отсекает случайные отправки.
// Пустой secret отключает проверку. Секрет в формате bcrypt сравнивается через bcrypt.
func ResultsGate(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	secret = strings.TrimSpace(secret)
	hashed := isBcryptHash(secret)

	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(PasswordHeader)
			if supplied == "" || !passwordMatches(secret, supplied, hashed) {
				logger.Warn("results password rejected",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid results password")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func passwordMatches(secret, supplied string, hashed bool) bool {
	if hashed {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(supplied)) == 1
}
