package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// Order is a placed checkout. ShippingFee, AdminShippingFees and
// Metadata.ShippingDetails describe the same quote; Version guards
// administrative rewrites of those fields.
type Order struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID           *uuid.UUID               `gorm:"column:buyer_id;type:uuid"`
	CartItems         types.CartItems          `gorm:"column:cart_items;type:jsonb;not null"`
	AddressInfo       types.ShippingAddress    `gorm:"column:address_info;type:jsonb;not null"`
	Subtotal          decimal.Decimal          `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingFee       decimal.Decimal          `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	AdminShippingFees types.VendorFeeBreakdown `gorm:"column:admin_shipping_fees;type:jsonb;not null"`
	TotalAmount       decimal.Decimal          `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Metadata          types.OrderMetadata      `gorm:"column:metadata;type:jsonb;not null"`
	Version           int                      `gorm:"column:version;not null;default:1"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}
