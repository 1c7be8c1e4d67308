package seed

import (
	"context"
	"errors"
	"fmt"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
	auth "acharam/internal/usecase/auth_usecase"

	"go.uber.org/zap"
)

const (
	mangoImage  = "/attached_assets/generated_images/Mango_pickle_product_photo_23eaba3f.png"
	mixedImage  = "/attached_assets/generated_images/Mixed_vegetable_pickle_photo_97eff0bc.png"
	lemonImage  = "/attached_assets/generated_images/Lemon_pickle_product_photo_65120c52.png"
	garlicImage = "/attached_assets/generated_images/Garlic_pickle_product_photo_05c2d9d6.png"
)

type seedUser struct {
	email    string
	password string
	name     string
	role     model.Role
}

type seedVariant struct {
	name  string
	price int64
	stock int64
}

type seedProduct struct {
	categorySlug string
	product      model.Product
	image        string
	variants     []seedVariant
}

var users = []seedUser{
	{email: "admin@acharam.com", password: "admin123", name: "Admin User", role: model.RoleAdmin},
	{email: "customer@example.com", password: "customer123", name: "Priya Sharma", role: model.RoleCustomer},
}

var categories = []model.Category{
	{Name: "Mango Pickle", Slug: "mango-pickle", Description: "Traditional mango pickles made with raw mangoes and aromatic spices", ImageURL: mangoImage},
	{Name: "Mixed Pickle", Slug: "mixed-pickle", Description: "Assorted vegetable pickles with a perfect blend of flavors", ImageURL: mixedImage},
	{Name: "Lemon Pickle", Slug: "lemon-pickle", Description: "Tangy lemon pickles that add zest to every meal", ImageURL: lemonImage},
	{Name: "Garlic Pickle", Slug: "garlic-pickle", Description: "Spicy garlic pickles for garlic lovers", ImageURL: garlicImage},
}

var products = []seedProduct{
	{
		categorySlug: "mango-pickle",
		product: model.Product{
			Name:        "Traditional Mango Pickle",
			Slug:        "traditional-mango-pickle",
			Description: "Our signature mango pickle is made using the finest raw mangoes, blended with aromatic spices and aged to perfection.",
			BasePrice:   29900,
			Stock:       50,
			IsActive:    true,
			IsFeatured:  true,
		},
		image:    mangoImage,
		variants: []seedVariant{{"250g", 19900, 30}, {"500g", 29900, 50}, {"1kg", 49900, 20}},
	},
	{
		categorySlug: "mixed-pickle",
		product: model.Product{
			Name:        "Mixed Vegetable Pickle",
			Slug:        "mixed-vegetable-pickle",
			Description: "Carrots, cauliflower, green chilies and other fresh vegetables marinated in mustard oil and traditional spices.",
			BasePrice:   24900,
			Stock:       30,
			IsActive:    true,
			IsFeatured:  true,
		},
		image:    mixedImage,
		variants: []seedVariant{{"250g", 14900, 20}, {"500g", 24900, 30}},
	},
	{
		categorySlug: "lemon-pickle",
		product: model.Product{
			Name:        "Tangy Lemon Pickle",
			Slug:        "tangy-lemon-pickle",
			Description: "Bright yellow lemons preserved in a spicy red chili oil mixture.",
			BasePrice:   19900,
			Stock:       45,
			IsActive:    true,
			IsFeatured:  true,
		},
		image:    lemonImage,
		variants: []seedVariant{{"250g", 12900, 25}, {"500g", 19900, 45}},
	},
	{
		categorySlug: "garlic-pickle",
		product: model.Product{
			Name:        "Spicy Garlic Pickle",
			Slug:        "spicy-garlic-pickle",
			Description: "Whole garlic cloves marinated in fiery red chili oil and traditional spices.",
			BasePrice:   27900,
			Stock:       20,
			IsActive:    true,
		},
		image:    garlicImage,
		variants: []seedVariant{{"250g", 17900, 15}, {"500g", 27900, 20}},
	},
}

var reviews = []struct {
	productSlug string
	rating      int
	comment     string
}{
	{"traditional-mango-pickle", 5, "Absolutely amazing! Tastes just like my grandmother's recipe."},
	{"tangy-lemon-pickle", 5, "Best lemon pickle I've ever bought online. Fresh and authentic."},
}

// Runは初期データを投入する。既にあるもの（email / slug / code）は作らない
func Run(ctx context.Context, tx repo.TransactionManager, hasher auth.PasswordHasher, log *zap.Logger) error {
	return tx.WithinTx(ctx, func(r repo.TxRepos) error {
		userIDs := map[string]int64{}
		for _, su := range users {
			id, err := ensureUser(ctx, r, hasher, su)
			if err != nil {
				return err
			}
			userIDs[su.email] = id
		}

		categoryIDs := map[string]int64{}
		for _, c := range categories {
			id, err := ensureCategory(ctx, r, c)
			if err != nil {
				return err
			}
			categoryIDs[c.Slug] = id
		}

		productIDs := map[string]int64{}
		for _, sp := range products {
			id, created, err := ensureProduct(ctx, r, categoryIDs[sp.categorySlug], sp)
			if err != nil {
				return err
			}
			productIDs[sp.product.Slug] = id
			if created {
				log.Info("seed: product created", zap.String("slug", sp.product.Slug))
			}
		}

		customerID := userIDs["customer@example.com"]
		for _, rv := range reviews {
			productID := productIDs[rv.productSlug]
			existing, err := r.Reviews().ListByProductID(ctx, productID)
			if err != nil {
				return fmt.Errorf("seed: list reviews: %w", err)
			}
			if hasReviewBy(existing, customerID) {
				continue
			}
			if _, err := r.Reviews().Create(ctx, model.Review{
				ProductID: productID,
				UserID:    customerID,
				Rating:    rv.rating,
				Comment:   rv.comment,
			}); err != nil {
				return fmt.Errorf("seed: create review: %w", err)
			}
		}

		if err := ensureCoupon(ctx, r); err != nil {
			return err
		}
		return ensureAddress(ctx, r, customerID)
	})
}

func ensureUser(ctx context.Context, r repo.TxRepos, hasher auth.PasswordHasher, su seedUser) (int64, error) {
	u, err := r.Users().FindByEmail(ctx, su.email)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return 0, fmt.Errorf("seed: find user: %w", err)
	}

	hash, err := hasher.Hash(su.password)
	if err != nil {
		return 0, fmt.Errorf("seed: hash password: %w", err)
	}
	u = model.User{Email: su.email, PasswordHash: hash, Name: su.name, Role: su.role}
	if err := r.Users().Create(ctx, &u); err != nil {
		return 0, fmt.Errorf("seed: create user: %w", err)
	}
	return u.ID, nil
}

func ensureCategory(ctx context.Context, r repo.TxRepos, c model.Category) (int64, error) {
	got, err := r.Categories().FindBySlug(ctx, c.Slug)
	if err == nil {
		return got.ID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return 0, fmt.Errorf("seed: find category: %w", err)
	}
	created, err := r.Categories().Create(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("seed: create category: %w", err)
	}
	return created.ID, nil
}

func ensureProduct(ctx context.Context, r repo.TxRepos, categoryID int64, sp seedProduct) (int64, bool, error) {
	got, err := r.Products().FindBySlug(ctx, sp.product.Slug)
	if err == nil {
		return got.ID, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return 0, false, fmt.Errorf("seed: find product: %w", err)
	}

	p := sp.product
	p.CategoryID = categoryID
	created, err := r.Products().Create(ctx, p)
	if err != nil {
		return 0, false, fmt.Errorf("seed: create product: %w", err)
	}

	if _, err := r.ProductImages().Create(ctx, model.ProductImage{
		ProductID: created.ID,
		URL:       sp.image,
		AltText:   created.Name,
		IsPrimary: true,
	}); err != nil {
		return 0, false, fmt.Errorf("seed: create image: %w", err)
	}
	for _, v := range sp.variants {
		if _, err := r.ProductVariants().Create(ctx, model.ProductVariant{
			ProductID: created.ID,
			Name:      v.name,
			Price:     v.price,
			Stock:     v.stock,
			IsActive:  true,
		}); err != nil {
			return 0, false, fmt.Errorf("seed: create variant: %w", err)
		}
	}
	return created.ID, true, nil
}

func ensureCoupon(ctx context.Context, r repo.TxRepos) error {
	_, err := r.Coupons().FindByCode(ctx, "WELCOME10")
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("seed: find coupon: %w", err)
	}
	percent, maxDiscount, minOrder, limit := int64(10), int64(10000), int64(30000), int64(100)
	if _, err := r.Coupons().Create(ctx, model.Coupon{
		Code:            "WELCOME10",
		Description:     "10% off on your first order",
		DiscountPercent: &percent,
		MaxDiscount:     &maxDiscount,
		MinOrderAmount:  &minOrder,
		UsageLimit:      &limit,
		IsActive:        true,
	}); err != nil {
		return fmt.Errorf("seed: create coupon: %w", err)
	}
	return nil
}

func ensureAddress(ctx context.Context, r repo.TxRepos, userID int64) error {
	list, err := r.Addresses().ListByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("seed: list addresses: %w", err)
	}
	if len(list) > 0 {
		return nil
	}
	if _, err := r.Addresses().Create(ctx, model.Address{
		UserID:       userID,
		Name:         "Priya Sharma",
		Phone:        "+91 98765 43210",
		AddressLine1: "123 MG Road",
		AddressLine2: "Apartment 4B",
		City:         "Mumbai",
		State:        "Maharashtra",
		Pincode:      "400001",
		IsDefault:    true,
	}); err != nil {
		return fmt.Errorf("seed: create address: %w", err)
	}
	return nil
}

func hasReviewBy(list []model.Review, userID int64) bool {
	for _, rv := range list {
		if rv.UserID == userID {
			return true
		}
	}
	return false
}
