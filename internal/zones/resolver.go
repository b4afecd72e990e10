package zones

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
)

// FallbackZoneName names the synthetic zone returned when nothing matches.
const FallbackZoneName = "Default Zone"

const regionWord = "region"

// Destination is a normalized shipping destination.
type Destination struct {
	City   string
	Region string
}

// NewDestination trims and lower-cases city and region.
func NewDestination(city, region string) Destination {
	return Destination{City: normalize(city), Region: normalize(region)}
}

// IsEmpty reports whether neither city nor region is known.
func (d Destination) IsEmpty() bool {
	return d.City == "" && d.Region == ""
}

// strippedRegion drops the word "region" from the destination region. It
// returns "" when the region does not contain the word or nothing remains.
func (d Destination) strippedRegion() string {
	if !strings.Contains(d.Region, regionWord) {
		return ""
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(d.Region, regionWord, " ")), " ")
}

// Resolution is a zone and the tier that selected it.
type Resolution struct {
	Zone models.ShippingZone
	Tier enums.ZoneMatchTier
}

// Configured is false for the synthetic fallback zone.
func (r Resolution) Configured() bool {
	return r.Tier.IsConfigured()
}

// FallbackZone is the synthetic zero-rate zone.
func FallbackZone() Resolution {
	return Resolution{
		Zone: models.ShippingZone{Name: FallbackZoneName, BaseRate: decimal.Zero},
		Tier: enums.ZoneMatchFallback,
	}
}

// Resolve runs the full tiered lookup: the vendor's own zones, then global
// zones, then the synthetic fallback. First match wins.
func Resolve(dest Destination, vendorZones, globalZones []models.ShippingZone) Resolution {
	if res, ok := MatchVendor(dest, vendorZones); ok {
		return res
	}
	return MatchGlobal(dest, globalZones)
}

// MatchVendor applies the vendor-scoped tiers: region, region without the
// word "region", city against zone name, then the vendor default.
func MatchVendor(dest Destination, zones []models.ShippingZone) (Resolution, bool) {
	ordered := sortedZones(zones)
	if zone, ok := findRegion(ordered, dest.Region); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchVendorRegion}, true
	}
	if zone, ok := findRegion(ordered, dest.strippedRegion()); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchVendorRegionStripped}, true
	}
	if zone, ok := findCity(ordered, dest.City); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchVendorCity}, true
	}
	if zone, ok := findDefault(ordered); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchVendorDefault}, true
	}
	return Resolution{}, false
}

// MatchGlobal applies the global tiers and never fails: a global zone
// matching region or city, the global default, then FallbackZone.
func MatchGlobal(dest Destination, zones []models.ShippingZone) Resolution {
	ordered := sortedZones(zones)
	if zone, ok := findRegion(ordered, dest.Region); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchGlobal}
	}
	if zone, ok := findRegion(ordered, dest.strippedRegion()); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchGlobal}
	}
	if zone, ok := findCity(ordered, dest.City); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchGlobal}
	}
	if zone, ok := findDefault(ordered); ok {
		return Resolution{Zone: zone, Tier: enums.ZoneMatchGlobalDefault}
	}
	return FallbackZone()
}

func findRegion(zones []models.ShippingZone, needle string) (models.ShippingZone, bool) {
	if needle == "" {
		return models.ShippingZone{}, false
	}
	for _, zone := range zones {
		if strings.Contains(normalize(zone.Region), needle) {
			return zone, true
		}
	}
	return models.ShippingZone{}, false
}

func findCity(zones []models.ShippingZone, city string) (models.ShippingZone, bool) {
	if city == "" {
		return models.ShippingZone{}, false
	}
	for _, zone := range zones {
		if strings.Contains(normalize(zone.Name), city) {
			return zone, true
		}
	}
	return models.ShippingZone{}, false
}

func findDefault(zones []models.ShippingZone) (models.ShippingZone, bool) {
	for _, zone := range zones {
		if zone.IsDefault {
			return zone, true
		}
	}
	return models.ShippingZone{}, false
}

// sortedZones orders a copy of zones by (created_at, id).
func sortedZones(zones []models.ShippingZone) []models.ShippingZone {
	ordered := make([]models.ShippingZone, len(zones))
	copy(ordered, zones)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})
	return ordered
}

// RegionsMatch reports whether two free-text regions name the same place:
// after normalizing and dropping the word "region", one contains the other.
func RegionsMatch(a, b string) bool {
	na, nb := canonicalRegion(a), canonicalRegion(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func canonicalRegion(value string) string {
	dest := Destination{Region: normalize(value)}
	if stripped := dest.strippedRegion(); stripped != "" {
		return stripped
	}
	return dest.Region
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
