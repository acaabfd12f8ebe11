// Package tasks は所有者に限定されたタスクの作成・参照・更新・削除を提供します。
package tasks

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/taskforge/internal/apperror"
)

const maxTitleLength = 255

// CreateInput はタスク作成の入力です。
type CreateInput struct {
	Title       string
	Description *string
}

// UpdateInput はタスク更新の入力です。nil の項目は変更しません。
// Description は Set が true なら null も含めて反映します。
// Completed は旧クライアント向けの別名で、IsCompleted が優先されます。
type UpdateInput struct {
	Title       *string
	Description OptionalString
	IsCompleted *bool
	Completed   *bool
}

// OptionalString は JSON で「未指定」と「null」を区別する文字列です。
type OptionalString struct {
	Set   bool
	Value *string
}

// SetString は値を指定した OptionalString を返します。
func SetString(value string) OptionalString {
	return OptionalString{Set: true, Value: &value}
}

// SetNull は null を指定した OptionalString を返します。
func SetNull() OptionalString {
	return OptionalString{Set: true}
}

// UnmarshalJSON は項目が存在したことを記録します。null は Value=nil になります。
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// completion は正規化済みの完了フラグを返します。
func (in UpdateInput) completion() *bool {
	if in.IsCompleted != nil {
		return in.IsCompleted
	}
	return in.Completed
}

func normalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	switch {
	case trimmed == "":
		return "", titleError("Title is required")
	case utf8.RuneCountInString(trimmed) > maxTitleLength:
		return "", titleError("Title must be at most 255 characters")
	}
	return trimmed, nil
}

func titleError(msg string) error {
	return apperror.NewValidation([]apperror.FieldError{{Field: "title", Messages: []string{msg}}})
}
