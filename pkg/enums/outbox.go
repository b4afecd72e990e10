package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
	AggregateZone  OutboxAggregateType = "shipping_zone"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateZone,
}

func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is the event_type column of outbox rows.
type OutboxEventType string

const (
	EventOrderPlaced            OutboxEventType = "order_placed"
	EventShippingFeeCorrected   OutboxEventType = "shipping_fee_corrected"
	EventZoneVendorRegionHealed OutboxEventType = "zone_vendor_region_healed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventShippingFeeCorrected,
	EventZoneVendorRegionHealed,
}

func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason explains why a row was parked in the dead letter table.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)
