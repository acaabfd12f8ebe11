// Package apperror はドメインエラーの種別とHTTPステータスへの対応を提供します。
package apperror

import (
	"errors"
	"net/http"
)

// Kind はエラーの種別を表します。
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindConflict     Kind = "CONFLICT"
	KindNotFound     Kind = "NOT_FOUND"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// 利用者に返す共通メッセージです。
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgEmailExists        = "Email already exists"
	MsgUnauthorized       = "Unauthorized access"
	MsgInvalidToken       = "Invalid token"
	MsgTaskNotFound       = "Task not found"
	MsgValidation         = "Validation error"
	MsgInternal           = "Internal server error"
)

// FieldError は入力項目ごとの検証エラーです。
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// Error はステータスに変換可能なドメインエラーです。
// Message は利用者にそのまま返すため、内部情報は Cause に入れます。
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Cause   error
}

// Error は error インターフェースを実装します。
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap は原因となったエラーを返します。
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is は種別が一致する場合に true を返します。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Status は種別に対応するHTTPステータスコードを返します。
func (e *Error) Status() int {
	return StatusOf(e.Kind)
}

// StatusOf は種別からHTTPステータスコードを求めます。
func StatusOf(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errors.Is で種別を比較するための番兵です。
var (
	Validation   = &Error{Kind: KindValidation}
	Unauthorized = &Error{Kind: KindUnauthorized}
	Conflict     = &Error{Kind: KindConflict}
	NotFound     = &Error{Kind: KindNotFound}
	Internal     = &Error{Kind: KindInternal}
)

// New は種別とメッセージからエラーを作成します。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap は原因を保持したエラーを作成します。
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewValidation は項目別の詳細を持つ検証エラーを作成します。
func NewValidation(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: MsgValidation, Fields: fields}
}

// KindOf は err の種別を返します。型付きでないエラーは KindInternal です。
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
