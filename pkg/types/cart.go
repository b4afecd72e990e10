package types

import (
	"database/sql/driver"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem carries the shipping-relevant fields of a cart line.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	VendorID  *uuid.UUID      `json:"vendor_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

func (c CartItem) Vendor() VendorKey {
	return VendorKeyFromPtr(c.VendorID)
}

func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartItems is stored as a JSON array on orders.
type CartItems []CartItem

func (c CartItems) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return jsonValue([]CartItem(c))
}

func (c *CartItems) Scan(value any) error {
	if value == nil {
		*c = nil
		return nil
	}
	var decoded []CartItem
	if err := scanJSON(value, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// Subtotal sums every line total.
func (c CartItems) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ShippingAddress is the destination of an order. Only City and Region take
// part in zone matching.
type ShippingAddress struct {
	Line1      string `json:"line1,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// IsEmpty reports whether neither city nor region is usable.
func (a ShippingAddress) IsEmpty() bool {
	return strings.TrimSpace(a.City) == "" && strings.TrimSpace(a.Region) == ""
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return jsonValue(a)
}

func (a *ShippingAddress) Scan(value any) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	return scanJSON(value, a)
}
