// Package auth は認証・認可機能を提供します。
package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/taskforge/internal/response"
)

// Authenticator はハンドラーが利用する認証処理です。
type Authenticator interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Signin(ctx context.Context, in SigninInput) (*AuthResult, error)
}

// Handler は /auth/* のハンドラーをまとめた構造体です。
type Handler struct {
	svc Authenticator
}

// NewHandler はハンドラーを作成します。
func NewHandler(svc Authenticator) *Handler {
	return &Handler{svc: svc}
}

type signupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup は POST /auth/signup のハンドラーです。
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	result, err := h.svc.Signup(c.Request.Context(), SignupInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, result, "User registered successfully")
}

// Signin は POST /auth/signin のハンドラーです。
func (h *Handler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	result, err := h.svc.Signin(c.Request.Context(), SigninInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, result, "User signed in successfully")
}
