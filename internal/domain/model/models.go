package model

// マイグレーション対象のテーブル
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&ProductImage{},
		&ProductVariant{},
		&Address{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Coupon{},
		&Review{},
		&AuditLog{},
	}
}
