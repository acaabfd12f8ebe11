// Package storage はユーザーとタスクの永続化で共有するレコード型とエラーを定義します。
package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound は対象レコードが存在しない（または所有者が異なる）ことを表します。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate は一意制約違反を表します。
	ErrDuplicate = errors.New("duplicate record")
)

// User はアカウントのレコードです。PasswordHash は常にハッシュ値です。
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Task は所有者に紐づくタスクのレコードです。
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
