package shipping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// vendorGroup is the cart slice owned by one vendor key with its shipping
// aggregates.
type vendorGroup struct {
	Key      types.VendorKey
	Items    []types.ItemSummary
	WeightKg decimal.Decimal
	Value    decimal.Decimal
}

// groupByVendor buckets items per vendor in first-appearance order. Each
// item's weight is its product weight, or defaultWeight when unknown, times
// quantity.
func groupByVendor(items []types.CartItem, weights map[uuid.UUID]decimal.Decimal, defaultWeight decimal.Decimal) []*vendorGroup {
	index := make(map[types.VendorKey]*vendorGroup, len(items))
	groups := make([]*vendorGroup, 0, len(items))
	for _, item := range items {
		key := item.Vendor()
		group, ok := index[key]
		if !ok {
			group = &vendorGroup{Key: key, WeightKg: decimal.Zero, Value: decimal.Zero}
			index[key] = group
			groups = append(groups, group)
		}

		unitWeight, ok := weights[item.ProductID]
		if !ok {
			unitWeight = defaultWeight
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineWeight := unitWeight.Mul(qty)

		group.WeightKg = group.WeightKg.Add(lineWeight)
		group.Value = group.Value.Add(item.LineTotal())
		group.Items = append(group.Items, types.ItemSummary{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			WeightKg:  lineWeight,
		})
	}
	return groups
}

func productIDs(items []types.CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
