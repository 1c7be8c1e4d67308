package model

import (
	"errors"
	"strings"
	"time"
)

type cartOwnerKind int

const (
	cartOwnerNone cartOwnerKind = iota
	cartOwnerUser
	cartOwnerGuest
)

var ErrInvalidCartOwner = errors.New("invalid cart owner")

// カートの持ち主。会員IDかゲストトークンのどちらか一方だけ
type CartOwner struct {
	kind   cartOwnerKind
	userID int64
	token  string
}

func UserCartOwner(userID int64) (CartOwner, error) {
	if userID <= 0 {
		return CartOwner{}, ErrInvalidCartOwner
	}
	return CartOwner{kind: cartOwnerUser, userID: userID}, nil
}

func GuestCartOwner(token string) (CartOwner, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return CartOwner{}, ErrInvalidCartOwner
	}
	return CartOwner{kind: cartOwnerGuest, token: token}, nil
}

func (o CartOwner) Valid() bool {
	return o.kind != cartOwnerNone
}

func (o CartOwner) UserID() (int64, bool) {
	return o.userID, o.kind == cartOwnerUser
}

func (o CartOwner) GuestToken() (string, bool) {
	return o.token, o.kind == cartOwnerGuest
}

func (o CartOwner) String() string {
	switch o.kind {
	case cartOwnerUser:
		return "user"
	case cartOwnerGuest:
		return "guest"
	default:
		return "none"
	}
}

// user_idとsession_tokenはどちらか一方だけが入る。
// 行はNewCart経由でしか作らない
type Cart struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *int64    `gorm:"uniqueIndex" json:"userId"`
	SessionToken *string   `gorm:"type:varchar(255);uniqueIndex" json:"sessionId"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func NewCart(owner CartOwner) (Cart, error) {
	if id, ok := owner.UserID(); ok {
		return Cart{UserID: &id}, nil
	}
	if token, ok := owner.GuestToken(); ok {
		return Cart{SessionToken: &token}, nil
	}
	return Cart{}, ErrInvalidCartOwner
}

// 行から持ち主を復元する
func (c Cart) Owner() (CartOwner, error) {
	switch {
	case c.UserID != nil && c.SessionToken == nil:
		return UserCartOwner(*c.UserID)
	case c.SessionToken != nil && c.UserID == nil:
		return GuestCartOwner(*c.SessionToken)
	default:
		return CartOwner{}, ErrInvalidCartOwner
	}
}
