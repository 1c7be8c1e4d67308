package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartOwner(t *testing.T) {
	_, err := UserCartOwner(0)
	assert.ErrorIs(t, err, ErrInvalidCartOwner)

	_, err = GuestCartOwner("   ")
	assert.ErrorIs(t, err, ErrInvalidCartOwner)

	owner, err := GuestCartOwner("guest_1_abc")
	require.NoError(t, err)
	token, ok := owner.GuestToken()
	assert.True(t, ok)
	assert.Equal(t, "guest_1_abc", token)
	_, ok = owner.UserID()
	assert.False(t, ok)
	assert.Equal(t, "guest", owner.String())
}

func TestNewCart_OwnerRoundTrip(t *testing.T) {
	owner, err := UserCartOwner(7)
	require.NoError(t, err)

	cart, err := NewCart(owner)
	require.NoError(t, err)
	assert.Nil(t, cart.SessionToken)
	require.NotNil(t, cart.UserID)
	assert.Equal(t, int64(7), *cart.UserID)

	back, err := cart.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, back)

	_, err = NewCart(CartOwner{})
	assert.ErrorIs(t, err, ErrInvalidCartOwner)

	// 両方入った行は不正
	token := "t"
	_, err = Cart{UserID: cart.UserID, SessionToken: &token}.Owner()
	assert.ErrorIs(t, err, ErrInvalidCartOwner)
}

func TestCartItem_SameLine(t *testing.T) {
	v1, v2 := int64(1), int64(2)

	assert.True(t, CartItem{ProductID: 1}.SameLine(1, nil))
	assert.True(t, CartItem{ProductID: 1, VariantID: &v1}.SameLine(1, &v1))
	assert.False(t, CartItem{ProductID: 1, VariantID: &v1}.SameLine(1, &v2))
	assert.False(t, CartItem{ProductID: 1, VariantID: &v1}.SameLine(1, nil))
	assert.False(t, CartItem{ProductID: 1}.SameLine(2, nil))
}

func TestUnitPriceAndStock(t *testing.T) {
	p := Product{BasePrice: 29900, Stock: 50}
	v := &ProductVariant{Price: 19900, Stock: 3}

	assert.Equal(t, int64(29900), UnitPrice(p, nil))
	assert.Equal(t, int64(19900), UnitPrice(p, v))
	assert.Equal(t, int64(50), AvailableStock(p, nil))
	assert.Equal(t, int64(3), AvailableStock(p, v))
}
