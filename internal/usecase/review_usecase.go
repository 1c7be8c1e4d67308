package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
)

type ReviewUsecase struct {
	reviews  repo.ReviewRepository
	products repo.ProductRepository
}

func NewReviewUsecase(reviews repo.ReviewRepository, products repo.ProductRepository) *ReviewUsecase {
	return &ReviewUsecase{reviews: reviews, products: products}
}

type ReviewInput struct {
	Rating  int
	Comment string
}

func (u *ReviewUsecase) List(ctx context.Context, productID int64) ([]model.Review, error) {
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	list, err := u.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func (u *ReviewUsecase) Create(ctx context.Context, userID, productID int64, in ReviewInput) (model.Review, error) {
	if userID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if !model.ValidRating(in.Rating) {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	if _, err := u.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Review{}, notFound("product")
		}
		return model.Review{}, dbError(err)
	}

	rv, err := u.reviews.Create(ctx, model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	})
	if err != nil {
		return model.Review{}, dbError(err)
	}
	return rv, nil
}

// 本人のレビューだけ更新できる
func (u *ReviewUsecase) Update(ctx context.Context, userID, reviewID int64, in ReviewInput) (model.Review, error) {
	if userID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !model.ValidRating(in.Rating) {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	rv, err := u.reviews.FindByID(ctx, reviewID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Review{}, notFound("review")
	}
	if err != nil {
		return model.Review{}, dbError(err)
	}
	if rv.UserID != userID {
		return model.Review{}, NewHTTPError(http.StatusForbidden, "Access denied")
	}

	rv.Rating = in.Rating
	rv.Comment = strings.TrimSpace(in.Comment)
	if err := u.reviews.Update(ctx, rv); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Review{}, notFound("review")
		}
		return model.Review{}, dbError(err)
	}
	return rv, nil
}
