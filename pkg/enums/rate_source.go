package enums

// RateSource names where a vendor group's base rate came from.
type RateSource string

const (
	RateSourceZone              RateSource = "zone"
	RateSourceVendorDefault     RateSource = "vendor_default"
	RateSourceVendorOutOfRegion RateSource = "vendor_out_of_region"
	RateSourceNone              RateSource = "none"
)

var validRateSources = []RateSource{
	RateSourceZone,
	RateSourceVendorDefault,
	RateSourceVendorOutOfRegion,
	RateSourceNone,
}

func (r RateSource) String() string {
	return string(r)
}

func (r RateSource) IsValid() bool {
	for _, candidate := range validRateSources {
		if candidate == r {
			return true
		}
	}
	return false
}
