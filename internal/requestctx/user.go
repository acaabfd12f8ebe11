// Package requestctx はリクエスト単位の認証済みユーザー情報を context で受け渡します。
package requestctx

import "context"

type userIDContextKey struct{}

// WithUserID はユーザーIDを格納した context を返します。
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext は context に格納されたユーザーIDを返します。未設定なら空文字です。
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(userIDContextKey{}).(string)
	return value
}
