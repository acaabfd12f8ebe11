package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/taskforge/internal/apperror"
)

type envelope struct {
	Success bool                  `json:"success"`
	Data    *AuthResult           `json:"data"`
	Message string                `json:"message"`
	Errors  []apperror.FieldError `json:"errors"`
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(newTestService(t, newMemoryUserStore()))
	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/signin", h.Signin)
	return r
}

func postJSON(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (body=%s)", path, err, rec.Body.String())
	}
	return rec, env
}

func TestSignupAndSigninHandlers(t *testing.T) {
	r := newAuthRouter(t)

	rec, env := postJSON(t, r, "/auth/signup", `{"email":"bob@example.com","fullName":"Bob Builder","password":"CanWeFix1t!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	if !env.Success || env.Message != "User registered successfully" || env.Data == nil || env.Data.Token == "" {
		t.Fatalf("unexpected signup envelope: %+v", env)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Fatalf("password leaked in response: %s", rec.Body.String())
	}
	userID := env.Data.ID

	rec, env = postJSON(t, r, "/auth/signin", `{"email":"bob@example.com","password":"CanWeFix1t!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	if env.Message != "User signed in successfully" || env.Data.ID != userID {
		t.Fatalf("unexpected signin envelope: %+v", env)
	}

	rec, env = postJSON(t, r, "/auth/signup", `{"email":"bob@example.com","fullName":"Bob Again","password":"CanWeFix1t!"}`)
	if rec.Code != http.StatusConflict || env.Message != apperror.MsgEmailExists {
		t.Fatalf("expected conflict, got %d %+v", rec.Code, env)
	}

	rec, env = postJSON(t, r, "/auth/signin", `{"email":"bob@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized || env.Message != apperror.MsgInvalidCredentials {
		t.Fatalf("expected unauthorized, got %d %+v", rec.Code, env)
	}
}

func TestSignupHandlerValidation(t *testing.T) {
	r := newAuthRouter(t)

	rec, env := postJSON(t, r, "/auth/signup", `{"email":"not-an-email","fullName":"Al","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	if env.Success || env.Message != apperror.MsgValidation {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	got := map[string]bool{}
	for _, fe := range env.Errors {
		got[fe.Field] = len(fe.Messages) > 0
	}
	for _, field := range []string{"email", "fullName", "password"} {
		if !got[field] {
			t.Fatalf("missing error for %s: %+v", field, env.Errors)
		}
	}

	rec, env = postJSON(t, r, "/auth/signin", `{"email":`)
	if rec.Code != http.StatusBadRequest || len(env.Errors) != 1 || env.Errors[0].Field != "body" {
		t.Fatalf("unexpected malformed body response: %d %+v", rec.Code, env)
	}
}

func TestAuthHandlersRequiredMessages(t *testing.T) {
	r := newAuthRouter(t)

	messages := func(env envelope) map[string]string {
		got := map[string]string{}
		for _, fe := range env.Errors {
			got[fe.Field] = fe.Messages[0]
		}
		return got
	}

	rec, env := postJSON(t, r, "/auth/signup", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("signup status = %d", rec.Code)
	}
	got := messages(env)
	if got["email"] != "Email is required" || got["fullName"] != "Full name is required" {
		t.Fatalf("unexpected signup messages: %v", got)
	}

	rec, env = postJSON(t, r, "/auth/signin", `{"email":"bob@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("signin status = %d", rec.Code)
	}
	if got := messages(env); got["password"] != "Password is required" {
		t.Fatalf("unexpected signin messages: %v", got)
	}
}
