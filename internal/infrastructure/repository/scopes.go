package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// ShopIDKey is the context key for the shop id taken from the bearer token
	ShopIDKey ctxKey = "shop_id"
	txKey     ctxKey = "gorm_tx"
)

// ShopScope returns a GORM scope that filters by the shop in ctx.
// Without a shop the scope matches nothing.
func ShopScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		shopID, ok := GetShopID(ctx)
		if !ok {
			return db.Where("1 = 0")
		}
		return db.Where("shop_id = ?", shopID)
	}
}

// WithShop adds the shop id to context
func WithShop(ctx context.Context, shopID uuid.UUID) context.Context {
	return context.WithValue(ctx, ShopIDKey, shopID)
}

// GetShopID extracts the shop id from context
func GetShopID(ctx context.Context) (uuid.UUID, bool) {
	shopID, ok := ctx.Value(ShopIDKey).(uuid.UUID)
	if !ok || shopID == uuid.Nil {
		return uuid.Nil, false
	}
	return shopID, true
}
