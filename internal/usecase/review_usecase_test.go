package usecase

import (
	"context"
	"net/http"
	"testing"

	"acharam/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewUsecase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author@example.com", model.RoleCustomer)
	other := f.user(t, "other@example.com", model.RoleCustomer)
	p := f.product(t, "mango", 29900, 10)
	uc := NewReviewUsecase(f.repos.Reviews(), f.repos.Products())

	for _, rating := range []int{0, 6} {
		_, err := uc.Create(ctx, author.ID, p.ID, ReviewInput{Rating: rating})
		requireHTTPError(t, err, http.StatusBadRequest, "rating must be between 1 and 5")
	}

	_, err := uc.Create(ctx, author.ID, 9999, ReviewInput{Rating: 5})
	requireHTTPError(t, err, http.StatusNotFound, "product not found")

	rv, err := uc.Create(ctx, author.ID, p.ID, ReviewInput{Rating: 5, Comment: " Tastes like home "})
	require.NoError(t, err)
	assert.Equal(t, "Tastes like home", rv.Comment)

	_, err = uc.Update(ctx, other.ID, rv.ID, ReviewInput{Rating: 1})
	requireHTTPError(t, err, http.StatusForbidden, "Access denied")

	updated, err := uc.Update(ctx, author.ID, rv.ID, ReviewInput{Rating: 4, Comment: "Good"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	list, err := uc.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].Rating)
}
