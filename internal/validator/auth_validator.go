package validator

import (
	"context"
	"regexp"

	auth "acharam/internal/usecase/auth_usecase"
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.Validator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in auth.RegisterUserInput) error {
	// 必須チェック
	if in.Name == "" {
		return &auth.InputError{Message: "Name is required"}
	}
	if in.Email == "" || in.Password == "" {
		return &auth.InputError{Message: "Email and password are required"}
	}

	// email形式
	if !isEmailLike(in.Email) {
		return &auth.InputError{Message: "Invalid email address"}
	}

	// パスワード最低文字数
	if len(in.Password) < minPasswordLen {
		return &auth.InputError{Message: "Password must be at least 6 characters"}
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if email == "" || password == "" {
		return &auth.InputError{Message: "Email and password are required"}
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
