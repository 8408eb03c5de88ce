package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/devconnector-go/apperror"
)

// TokenHeader is the header the web client sends its session token in.
// `Authorization: Bearer <token>` is accepted as well.
const TokenHeader = "x-auth-token"

// tokenFromRequest extracts the raw token, preferring the dedicated header.
func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Middleware rejects requests without a valid session token and stores the
// token's user id on the request context for downstream handlers.
func Middleware(issuer TokenIssuer, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				apperror.Write(w, r, logger, apperror.NewAuthError("No token, authorization denied", nil))
				return
			}

			claims, err := issuer.Parse(token)
			if err != nil {
				logger.Debug("rejected token", zap.Error(err))
				apperror.Write(w, r, logger, apperror.NewAuthError("Token is not valid", err))
				return
			}
			// Every store hands out UUIDs; anything else was not issued by us.
			if _, err := uuid.Parse(claims.User.ID); err != nil {
				apperror.Write(w, r, logger, apperror.NewAuthError("Token is not valid", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUserID(r.Context(), claims.User.ID)))
		})
	}
}
