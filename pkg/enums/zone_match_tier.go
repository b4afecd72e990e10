package enums

// ZoneMatchTier records which lookup step produced a shipping zone. Tiers are
// listed in precedence order.
type ZoneMatchTier string

const (
	ZoneMatchVendorRegion         ZoneMatchTier = "vendor_region"
	ZoneMatchVendorRegionStripped ZoneMatchTier = "vendor_region_stripped"
	ZoneMatchVendorCity           ZoneMatchTier = "vendor_city"
	ZoneMatchVendorDefault        ZoneMatchTier = "vendor_default"
	ZoneMatchGlobal               ZoneMatchTier = "global_match"
	ZoneMatchGlobalDefault        ZoneMatchTier = "global_default"
	ZoneMatchFallback             ZoneMatchTier = "fallback"
)

func (t ZoneMatchTier) String() string {
	return string(t)
}

// IsConfigured is false only for the synthetic fallback zone.
func (t ZoneMatchTier) IsConfigured() bool {
	return t != "" && t != ZoneMatchFallback
}

// IsVendorScoped reports whether the tier matched one of the vendor's own zones.
func (t ZoneMatchTier) IsVendorScoped() bool {
	switch t {
	case ZoneMatchVendorRegion, ZoneMatchVendorRegionStripped, ZoneMatchVendorCity, ZoneMatchVendorDefault:
		return true
	default:
		return false
	}
}
