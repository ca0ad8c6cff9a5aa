package storage

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables the service needs if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id SERIAL PRIMARY KEY,
			phone TEXT UNIQUE,
			email TEXT UNIQUE,
			first_name TEXT NOT NULL,
			last_name TEXT,
			total_orders INTEGER NOT NULL DEFAULT 0,
			total_spent NUMERIC(12,2) NOT NULL DEFAULT 0,
			loyalty_points INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id SERIAL PRIMARY KEY,
			category_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			base_price NUMERIC(12,2),
			has_variants BOOLEAN NOT NULL DEFAULT FALSE,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS menu_variants (
			id SERIAL PRIMARY KEY,
			menu_item_id INTEGER NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS addons (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS category_addons (
			category_id INTEGER NOT NULL,
			addon_id INTEGER NOT NULL REFERENCES addons(id) ON DELETE CASCADE,
			price_override NUMERIC(12,2),
			PRIMARY KEY (category_id, addon_id)
		)`,
		`CREATE TABLE IF NOT EXISTS item_addons (
			menu_item_id INTEGER NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
			addon_id INTEGER NOT NULL REFERENCES addons(id) ON DELETE CASCADE,
			price_override NUMERIC(12,2),
			PRIMARY KEY (menu_item_id, addon_id)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_order_sequences (
			day DATE PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			customer_id INTEGER REFERENCES customers(id),
			customer_name TEXT,
			customer_phone TEXT,
			subtotal NUMERIC(12,2) NOT NULL,
			tax NUMERIC(12,2) NOT NULL DEFAULT 0,
			total NUMERIC(12,2) NOT NULL,
			payment_method TEXT NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'PENDING',
			notes TEXT,
			location_id TEXT,
			created_by INTEGER NOT NULL,
			cancellation_status TEXT NOT NULL DEFAULT 'NONE',
			cancellation_reason TEXT,
			cancellation_requested_by INTEGER,
			cancellation_requested_at TIMESTAMPTZ,
			cancellation_decided_by INTEGER,
			cancellation_decided_at TIMESTAMPTZ,
			admin_notes TEXT,
			refund_method TEXT,
			refund_amount NUMERIC(12,2),
			refund_points INTEGER,
			qr_code BYTEA,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			menu_item_id INTEGER NOT NULL,
			item_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL,
			line_total NUMERIC(12,2) NOT NULL,
			instructions TEXT,
			price_override NUMERIC(12,2)
		)`,
		`CREATE TABLE IF NOT EXISTS order_item_variants (
			id SERIAL PRIMARY KEY,
			order_item_id INTEGER NOT NULL REFERENCES order_items(id) ON DELETE CASCADE,
			variant_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_item_addons (
			id SERIAL PRIMARY KEY,
			order_item_id INTEGER NOT NULL REFERENCES order_items(id) ON DELETE CASCADE,
			addon_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_status_history (
			id SERIAL PRIMARY KEY,
			order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			previous_status TEXT NOT NULL,
			new_status TEXT NOT NULL,
			reason TEXT,
			actor_id INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_cancellation_status ON orders (cancellation_status)`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history (order_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
