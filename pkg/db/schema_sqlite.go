package db

// SQLiteSchema mirrors the goose migrations with sqlite column types. It backs
// local sqlite runs and repository tests; postgres uses the goose files.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_region TEXT,
		shipping_default_base_rate NUMERIC,
		shipping_default_out_of_region_rate NUMERIC,
		shipping_regional_rates_enabled BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		name TEXT NOT NULL,
		price NUMERIC NOT NULL,
		weight_kg NUMERIC,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS shipping_zones (
		id TEXT PRIMARY KEY,
		vendor_id TEXT,
		name TEXT NOT NULL,
		region TEXT NOT NULL,
		base_rate NUMERIC NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT 0,
		vendor_region TEXT NOT NULL DEFAULT '',
		same_region_cap_fee NUMERIC,
		surcharge_rules TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		buyer_id TEXT,
		cart_items TEXT NOT NULL,
		address_info TEXT NOT NULL,
		subtotal NUMERIC NOT NULL,
		shipping_fee NUMERIC NOT NULL,
		admin_shipping_fees TEXT NOT NULL,
		total_amount NUMERIC NOT NULL,
		metadata TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload_json BLOB NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shipping_zones_vendor_id ON shipping_zones (vendor_id)`,
}
