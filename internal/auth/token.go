package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/taskforge/internal/apperror"
)

// Identity はトークンから復元した利用者情報です。
type Identity struct {
	UserID string
	Email  string
}

// tokenClaims は JWT に埋め込むクレームです。
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer は HS256 署名のセッショントークンを発行・検証します。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer はトークン発行器を作成します。now が nil なら time.Now を使います。
func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue はユーザーIDとメールアドレスを埋め込んだトークンを発行します。
func (i *TokenIssuer) Issue(userID, email string) (string, error) {
	now := i.now()
	claims := tokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify は署名と有効期限を検証します。
// 失敗理由（改ざん・形式不正・期限切れ）は区別せず、同じ UnauthorizedError を返します。
func (i *TokenIssuer) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperror.New(apperror.KindUnauthorized, apperror.MsgInvalidToken)
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, apperror.Wrap(apperror.KindUnauthorized, apperror.MsgInvalidToken, err)
	}
	if claims.UserID == "" {
		return Identity{}, apperror.Wrap(apperror.KindUnauthorized, apperror.MsgInvalidToken, errors.New("userId claim missing"))
	}

	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
