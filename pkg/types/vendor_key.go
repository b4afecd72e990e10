package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const unassignedVendorLabel = "unassigned"

// VendorKey identifies the vendor a cart group belongs to. The zero value is
// the unassigned bucket for items that carry no vendor at all.
type VendorKey struct {
	id       uuid.UUID
	assigned bool
}

// UnassignedVendor groups cart items with no owning vendor.
var UnassignedVendor = VendorKey{}

func VendorKeyFor(id uuid.UUID) VendorKey {
	if id == uuid.Nil {
		return UnassignedVendor
	}
	return VendorKey{id: id, assigned: true}
}

// VendorKeyFromPtr maps a nullable vendor reference onto a key.
func VendorKeyFromPtr(id *uuid.UUID) VendorKey {
	if id == nil {
		return UnassignedVendor
	}
	return VendorKeyFor(*id)
}

// VendorID returns the vendor uuid and whether the key is assigned.
func (k VendorKey) VendorID() (uuid.UUID, bool) {
	return k.id, k.assigned
}

func (k VendorKey) IsAssigned() bool {
	return k.assigned
}

func (k VendorKey) String() string {
	if !k.assigned {
		return unassignedVendorLabel
	}
	return k.id.String()
}

func (k VendorKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts a vendor uuid, "unassigned", or the legacy "unknown"
// label found on older orders.
func (k *VendorKey) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	switch strings.ToLower(raw) {
	case "", unassignedVendorLabel, "unknown":
		*k = UnassignedVendor
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid vendor key %q: %w", raw, err)
	}
	*k = VendorKeyFor(id)
	return nil
}
