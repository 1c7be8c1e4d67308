package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
)

type AddressInput struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	IsDefault    bool   `json:"isDefault"`
}

type AddressUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
}

func NewAddressUsecase(tx repo.TransactionManager, addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{tx: tx, addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

// 最初の住所は自動でdefaultになる
func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	in = trimAddress(in)
	if err := validateAddress(in); err != nil {
		return model.Address{}, err
	}

	var out model.Address
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, err := r.Addresses().ListByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}

		created, err := r.Addresses().Create(ctx, model.Address{
			UserID:       userID,
			Name:         in.Name,
			Phone:        in.Phone,
			AddressLine1: in.AddressLine1,
			AddressLine2: in.AddressLine2,
			City:         in.City,
			State:        in.State,
			Pincode:      in.Pincode,
		})
		if err != nil {
			return dbError(err)
		}

		//user内でdefaultは1つ
		if in.IsDefault || len(existing) == 0 {
			if err := r.Addresses().SetDefault(ctx, userID, created.ID); err != nil {
				return dbError(err)
			}
			created.IsDefault = true
		}
		out = created
		return nil
	})
	if err != nil {
		return model.Address{}, err
	}
	return out, nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, in AddressInput) (model.Address, error) {
	in = trimAddress(in)
	if err := validateAddress(in); err != nil {
		return model.Address{}, err
	}

	var out model.Address
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//所有チェック（本人のみ）
		a, err := ownedAddress(ctx, r.Addresses(), userID, addressID)
		if err != nil {
			return err
		}

		a.Name = in.Name
		a.Phone = in.Phone
		a.AddressLine1 = in.AddressLine1
		a.AddressLine2 = in.AddressLine2
		a.City = in.City
		a.State = in.State
		a.Pincode = in.Pincode
		if err := r.Addresses().Update(ctx, a); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("address")
			}
			return dbError(err)
		}

		if in.IsDefault && !a.IsDefault {
			if err := r.Addresses().SetDefault(ctx, userID, a.ID); err != nil {
				return dbError(err)
			}
			a.IsDefault = true
		}
		out = a
		return nil
	})
	if err != nil {
		return model.Address{}, err
	}
	return out, nil
}

// 注文は住所IDだけを持つので削除しても注文は残る
func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if _, err := ownedAddress(ctx, u.addresses, userID, addressID); err != nil {
		return err
	}
	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("address")
		}
		return dbError(err)
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) (model.Address, error) {
	a, err := ownedAddress(ctx, u.addresses, userID, addressID)
	if err != nil {
		return model.Address{}, err
	}

	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Address{}, notFound("address")
		}
		return model.Address{}, dbError(err)
	}
	a.IsDefault = true
	return a, nil
}

// 他人の住所は403
func ownedAddress(ctx context.Context, addresses repo.AddressRepository, userID, addressID int64) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := addresses.FindByID(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Address{}, notFound("address")
	}
	if err != nil {
		return model.Address{}, dbError(err)
	}
	if a.UserID != userID {
		return model.Address{}, NewHTTPError(http.StatusForbidden, "Access denied")
	}
	return a, nil
}

func trimAddress(in AddressInput) AddressInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	in.AddressLine2 = strings.TrimSpace(in.AddressLine2)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Pincode = strings.TrimSpace(in.Pincode)
	return in
}

//入力チェック。PINコードは6桁
func validateAddress(in AddressInput) error {
	if in.Name == "" || in.Phone == "" || in.AddressLine1 == "" || in.City == "" || in.State == "" {
		return NewHTTPError(http.StatusBadRequest, "missing required address fields")
	}
	if len(in.Pincode) != 6 {
		return NewHTTPError(http.StatusBadRequest, "invalid pincode")
	}
	for _, c := range in.Pincode {
		if c < '0' || c > '9' {
			return NewHTTPError(http.StatusBadRequest, "invalid pincode")
		}
	}
	return nil
}
