package zones

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func zone(name, region string, rate int64, isDefault bool, vendorID *uuid.UUID, age int) models.ShippingZone {
	return models.ShippingZone{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Name:      name,
		Region:    region,
		BaseRate:  decimal.NewFromInt(rate),
		IsDefault: isDefault,
		CreatedAt: epoch.Add(time.Duration(age) * time.Minute),
	}
}

func TestResolveTiers(t *testing.T) {
	vendorID := uuid.New()
	accra := zone("Accra Metro", "Greater Accra", 40, false, &vendorID, 1)
	kumasi := zone("Kumasi", "Ashanti", 55, false, &vendorID, 2)
	vendorDefault := zone("Everywhere", "National", 80, true, &vendorID, 3)
	globalNorth := zone("Tamale", "Northern", 90, false, nil, 1)
	globalDefault := zone("Global", "Global", 100, true, nil, 2)

	tests := []struct {
		name        string
		city        string
		region      string
		vendorZones []models.ShippingZone
		globalZones []models.ShippingZone
		wantZone    string
		wantTier    enums.ZoneMatchTier
	}{
		{
			name:        "vendor region contains destination",
			city:        "Tema",
			region:      "  greater ACCRA ",
			vendorZones: []models.ShippingZone{kumasi, accra, vendorDefault},
			wantZone:    "Accra Metro",
			wantTier:    enums.ZoneMatchVendorRegion,
		},
		{
			name:        "region word stripped",
			city:        "Tema",
			region:      "Greater Accra Region",
			vendorZones: []models.ShippingZone{accra, vendorDefault},
			wantZone:    "Accra Metro",
			wantTier:    enums.ZoneMatchVendorRegionStripped,
		},
		{
			name:        "city matches zone name",
			city:        "kumasi",
			region:      "Somewhere Else",
			vendorZones: []models.ShippingZone{accra, kumasi, vendorDefault},
			wantZone:    "Kumasi",
			wantTier:    enums.ZoneMatchVendorCity,
		},
		{
			name:        "vendor default",
			city:        "Ho",
			region:      "Volta",
			vendorZones: []models.ShippingZone{accra, vendorDefault},
			globalZones: []models.ShippingZone{globalDefault},
			wantZone:    "Everywhere",
			wantTier:    enums.ZoneMatchVendorDefault,
		},
		{
			name:        "global match",
			city:        "Tamale",
			region:      "Northern Region",
			vendorZones: []models.ShippingZone{accra},
			globalZones: []models.ShippingZone{globalDefault, globalNorth},
			wantZone:    "Tamale",
			wantTier:    enums.ZoneMatchGlobal,
		},
		{
			name:        "global default",
			city:        "Ho",
			region:      "Volta",
			vendorZones: []models.ShippingZone{accra},
			globalZones: []models.ShippingZone{globalNorth, globalDefault},
			wantZone:    "Global",
			wantTier:    enums.ZoneMatchGlobalDefault,
		},
		{
			name:        "synthetic fallback",
			city:        "Ho",
			region:      "Volta",
			vendorZones: []models.ShippingZone{accra},
			wantZone:    FallbackZoneName,
			wantTier:    enums.ZoneMatchFallback,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(NewDestination(tc.city, tc.region), tc.vendorZones, tc.globalZones)
			assert.Equal(t, tc.wantZone, got.Zone.Name)
			assert.Equal(t, tc.wantTier, got.Tier)
		})
	}
}

func TestResolveFallbackIsZeroRate(t *testing.T) {
	got := Resolve(NewDestination("Nowhere", "Nothing"), nil, nil)
	assert.False(t, got.Configured())
	assert.True(t, got.Zone.BaseRate.IsZero())
}

func TestResolveTieBreakByCreatedAtThenID(t *testing.T) {
	vendorID := uuid.New()
	older := zone("A", "Greater Accra", 10, false, &vendorID, 1)
	newer := zone("B", "Greater Accra East", 20, false, &vendorID, 2)

	got := Resolve(NewDestination("", "greater accra"), []models.ShippingZone{newer, older}, nil)
	assert.Equal(t, older.ID, got.Zone.ID)

	sameTime := zone("C", "Greater Accra", 30, false, &vendorID, 1)
	first, second := older, sameTime
	if second.ID.String() < first.ID.String() {
		first, second = second, first
	}
	got = Resolve(NewDestination("", "greater accra"), []models.ShippingZone{second, first}, nil)
	assert.Equal(t, first.ID, got.Zone.ID)
}

func TestResolveEmptyDestinationDoesNotMatchEverything(t *testing.T) {
	vendorID := uuid.New()
	accra := zone("Accra", "Greater Accra", 40, false, &vendorID, 1)

	got := Resolve(NewDestination("", ""), []models.ShippingZone{accra}, nil)
	assert.Equal(t, enums.ZoneMatchFallback, got.Tier)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	vendorID := uuid.New()
	a := zone("A", "X", 1, false, &vendorID, 2)
	b := zone("B", "X", 1, false, &vendorID, 1)
	input := []models.ShippingZone{a, b}

	Resolve(NewDestination("", "x"), input, nil)
	require.Equal(t, a.ID, input[0].ID)
	require.Equal(t, b.ID, input[1].ID)
}

func TestDestinationStrippedRegion(t *testing.T) {
	assert.Equal(t, "greater accra", NewDestination("", "Greater Accra Region").strippedRegion())
	assert.Equal(t, "", NewDestination("", "Ashanti").strippedRegion())
	assert.Equal(t, "", NewDestination("", "Region").strippedRegion())
}

func TestRegionsMatch(t *testing.T) {
	assert.True(t, RegionsMatch("Greater Accra", "greater accra region"))
	assert.True(t, RegionsMatch(" ASHANTI ", "Ashanti"))
	assert.False(t, RegionsMatch("Ashanti", "Volta"))
	assert.False(t, RegionsMatch("", "Volta"))
}
