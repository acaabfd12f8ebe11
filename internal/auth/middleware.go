package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/taskforge/internal/apperror"
	"github.com/yourusername/taskforge/internal/requestctx"
	"github.com/yourusername/taskforge/internal/response"
)

// ContextUserKey は gin.Context 上でログイン済みユーザーIDを共有するためのキーです。
const ContextUserKey = "auth.userId"

// TokenVerifier はベアラートークンを利用者情報に解決します。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// RequireToken は Authorization: Bearer <token> を検証するミドルウェアを返します。
// 成功時はユーザーIDをリクエストの context に格納します。
func RequireToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperror.New(apperror.KindUnauthorized, apperror.MsgUnauthorized))
			return
		}

		identity, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Request = c.Request.WithContext(requestctx.WithUserID(c.Request.Context(), identity.UserID))
		c.Set(ContextUserKey, identity.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
