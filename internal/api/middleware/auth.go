package middleware

import (
	"context"
	"errors"
	"net/http"

	"miniblog/internal/common"
	"miniblog/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UserIDCtxKey contextKey = "userID"

// Authenticator runs after jwtauth.Verifier and finishes the token check:
// a missing token is 401, a bad signature or expired token is 403. On
// success the acting user's id is placed in the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) {
				common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
			} else {
				common.RespondWithError(w, http.StatusForbidden, common.ErrInvalidToken.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusForbidden, common.ErrInvalidToken.Error())
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusForbidden, common.ErrInvalidToken.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext returns the authenticated user's id set by Authenticator.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
