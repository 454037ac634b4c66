package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"ms-orders/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// Middleware verifies the Bearer token and puts the caller's account id into
// the request context. Handlers never touch tokens themselves.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("User not logged in", "missing Authorization header"))
				return
			}

			// Expect "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("User not logged in", "invalid Authorization header format"))
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("User not logged in", "invalid token"))
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("User not logged in", "token has no subject"))
				return
			}
			accountID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("User not logged in", "invalid subject"))
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountID extracts the authenticated account id in handlers.
func AccountID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(accountIDKey).(int64)
	return id, ok
}
