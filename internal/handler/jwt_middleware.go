package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ctxKey string

const CtxUserID ctxKey = "userId"

const AccessTokenCookie = "accessToken"

// JWTAuth valida el access token (cookie primero, Bearer como
// fallback) y mete el userId en el contexto. El 401 uniforme de acá es
// el único disparador de refresh del cliente.
func JWTAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if c, err := r.Cookie(AccessTokenCookie); err == nil {
				tokenStr = c.Value
			}
			if tokenStr == "" {
				authHeader := r.Header.Get("Authorization")
				if strings.HasPrefix(authHeader, "Bearer ") {
					tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
				}
			}
			if tokenStr == "" {
				writeErr(w, apperr.Unauthorized("missing credentials"))
				return
			}

			userID, err := auth.VerifyAccessToken(tokenStr)
			if err != nil {
				writeErr(w, apperr.Unauthorized(apperr.MsgInvalidToken))
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext helper para sacar el userId del contexto.
func UserIDFromContext(ctx context.Context) primitive.ObjectID {
	if v := ctx.Value(CtxUserID); v != nil {
		if id, ok := v.(primitive.ObjectID); ok {
			return id
		}
	}
	return primitive.NilObjectID
}
