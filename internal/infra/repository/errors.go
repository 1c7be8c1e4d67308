package repository

import (
	"errors"

	repo "acharam/internal/repository"

	"gorm.io/gorm"
)

// gormのエラーをrepositoryの約束に合わせる。
// 一意制約違反はgorm.Config{TranslateError: true}が前提
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repo.ErrConflict
	default:
		return err
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// 更新・削除で0件なら対象なし
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
