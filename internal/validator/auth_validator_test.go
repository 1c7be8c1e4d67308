package validator

import (
	"context"
	"testing"

	auth "acharam/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegister(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	tests := []struct {
		name string
		in   auth.RegisterUserInput
		want string
	}{
		{"ok", auth.RegisterUserInput{Name: "Priya", Email: "priya@example.com", Password: "secret1"}, ""},
		{"missing name", auth.RegisterUserInput{Email: "priya@example.com", Password: "secret1"}, "Name is required"},
		{"missing password", auth.RegisterUserInput{Name: "Priya", Email: "priya@example.com"}, "Email and password are required"},
		{"bad email", auth.RegisterUserInput{Name: "Priya", Email: "priya@", Password: "secret1"}, "Invalid email address"},
		{"short password", auth.RegisterUserInput{Name: "Priya", Email: "priya@example.com", Password: "12345"}, "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRegister(ctx, tt.in)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var ie *auth.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.want, ie.Message)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	assert.NoError(t, v.ValidateLogin(context.Background(), "a@example.com", "x"))
	assert.Error(t, v.ValidateLogin(context.Background(), "", "x"))
	assert.Error(t, v.ValidateLogin(context.Background(), "a@example.com", ""))
}
