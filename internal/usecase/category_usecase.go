package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
)

type CategoryUsecase struct {
	tx         repo.TransactionManager
	categories repo.CategoryRepository
}

func NewCategoryUsecase(tx repo.TransactionManager, categories repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{tx: tx, categories: categories}
}

// 更新時はnilの項目を変えない
type CategoryInput struct {
	Name        *string
	Slug        *string
	Description *string
	ImageURL    *string
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func (u *CategoryUsecase) Get(ctx context.Context, id int64) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.categories.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, notFound("category")
	}
	if err != nil {
		return model.Category{}, dbError(err)
	}
	return c, nil
}

func (u *CategoryUsecase) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	c, err := u.categories.FindBySlug(ctx, strings.TrimSpace(slug))
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, notFound("category")
	}
	if err != nil {
		return model.Category{}, dbError(err)
	}
	return c, nil
}

func (u *CategoryUsecase) AdminCreate(ctx context.Context, adminUserID int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	var c model.Category
	applyCategoryInput(&c, in)
	if c.Slug == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	var out model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Categories().Create(ctx, c)
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "category already exists")
		}
		if err != nil {
			return dbError(err)
		}
		out = created
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateCategory, model.AuditEntityCategory, created.ID, created)
	})
	if err != nil {
		return model.Category{}, err
	}
	return out, nil
}

func (u *CategoryUsecase) AdminUpdate(ctx context.Context, adminUserID int64, id int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Categories().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("category")
		}
		if err != nil {
			return dbError(err)
		}

		after := before
		applyCategoryInput(&after, in)
		if after.Name == "" {
			return NewHTTPError(http.StatusBadRequest, "name required")
		}
		if after.Slug == "" {
			return NewHTTPError(http.StatusBadRequest, "invalid slug")
		}

		if err := r.Categories().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "category already exists")
			}
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("category")
			}
			return dbError(err)
		}
		out = after
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateCategory, model.AuditEntityCategory, id, map[string]interface{}{
			"before": before,
			"after":  after,
		})
	})
	if err != nil {
		return model.Category{}, err
	}
	return out, nil
}

func applyCategoryInput(c *model.Category, in CategoryInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ImageURL != nil {
		c.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	switch {
	case in.Slug != nil:
		c.Slug = normalizeSlug(*in.Slug, c.Name)
	case c.Slug == "":
		c.Slug = slugify(c.Name)
	}
}
