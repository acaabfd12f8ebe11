// Package response は API の統一レスポンス形式とエラー変換の境界を提供します。
package response

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/taskforge/internal/apperror"
)

// Envelope は全レスポンス共通の形式です。
type Envelope struct {
	Success bool                  `json:"success"`
	Data    any                   `json:"data,omitempty"`
	Message string                `json:"message"`
	Errors  []apperror.FieldError `json:"errors"`
}

// successEnvelope は data を null でも必ず出力するための成功時の形式です。
type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// OK は成功レスポンスを書き込みます。
func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, successEnvelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Error はエラーを統一形式に変換して書き込み、以降のハンドラーを中断します。
// 型付きでないエラーは内容を隠して 500 にします。
func Error(c *gin.Context, err error) {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		if appErr.Kind == apperror.KindInternal {
			log.Printf("internal error method=%s path=%s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.AbortWithStatusJSON(appErr.Status(), Envelope{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
	case errors.Is(err, context.Canceled):
		c.AbortWithStatusJSON(http.StatusRequestTimeout, Envelope{
			Success: false,
			Message: "Request canceled",
		})
	default:
		log.Printf("unexpected error method=%s path=%s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
			Success: false,
			Message: apperror.MsgInternal,
		})
	}
}

// NotFoundRoute は存在しないルートへのハンドラーです。
func NotFoundRoute(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, Envelope{
		Success: false,
		Message: "Route not found",
	})
}

// BindError は ShouldBindJSON の失敗を検証エラーに変換します。
func BindError(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation([]apperror.FieldError{{
			Field:    "body",
			Messages: []string{"Request body must be valid JSON"},
		}})
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	index := make(map[string]int)
	for _, fe := range verrs {
		name := jsonFieldName(fe.Field())
		msg := fieldMessage(name, fe)
		if i, ok := index[name]; ok {
			fields[i].Messages = append(fields[i].Messages, msg)
			continue
		}
		index[name] = len(fields)
		fields = append(fields, apperror.FieldError{Field: name, Messages: []string{msg}})
	}
	return apperror.NewValidation(fields)
}

func fieldMessage(name string, fe validator.FieldError) string {
	label := fieldLabel(name)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// fieldLabel は lowerCamel の項目名を "Full name" のような表示名にします。
func fieldLabel(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// jsonFieldName は構造体のフィールド名を lowerCamel の JSON 名に揃えます。
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	runes := []rune(field)
	runes[0] = unicode.ToLower(runes[0])
	return strings.TrimSpace(string(runes))
}
