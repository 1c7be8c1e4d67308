// Package session はサーバー側セッションの保存先。
// CookieにはランダムなセッションIDだけを入れ、中身はRedis（なければメモリ）に置く
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// セッションに入れる値
type Data struct {
	UserID int64 `json:"userId,omitempty"`
	// ゲストカートのトークン
	CartSessionID string `json:"cartSessionId,omitempty"`
}

type Store interface {
	// 無い・期限切れはErrNotFound
	Load(ctx context.Context, id string) (Data, error)
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// 32バイトの乱数をhexにしたID
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
