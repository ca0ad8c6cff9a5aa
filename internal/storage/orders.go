package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resto-pos/internal/domain"
)

// CreateOrder persists the order and all of its lines in one transaction.
// The daily sequence row is advanced inside the same transaction, so the
// generated order number is unique even under concurrent same-day creation.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	day := time.Now().UTC()
	var seq int
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO daily_order_sequences (day, value)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET value = daily_order_sequences.value + 1
		RETURNING value`, day.Format("2006-01-02")).Scan(&seq); err != nil {
		return fmt.Errorf("failed to advance daily order sequence: %w", err)
	}
	order.Number = domain.FormatOrderNumber(day, seq)

	var customerID sql.NullInt64
	if order.CustomerID != nil {
		customerID = sql.NullInt64{Int64: int64(*order.CustomerID), Valid: true}
	}

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_number, customer_id, customer_name, customer_phone,
			subtotal, tax, total, payment_method, payment_status, notes, location_id,
			created_by, cancellation_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		order.Number, customerID, order.CustomerName, order.CustomerPhone,
		order.Subtotal, order.Tax, order.Total, order.PaymentMethod, order.PaymentStatus,
		order.Notes, order.LocationID, order.CreatedBy, order.Cancellation.Status).
		Scan(&order.ID, &order.CreatedAt); err != nil {
		return err
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		var override sql.NullFloat64
		if line.PriceOverride != nil {
			override = sql.NullFloat64{Float64: *line.PriceOverride, Valid: true}
		}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, item_name, quantity, unit_price, line_total, instructions, price_override)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			order.ID, line.MenuItemID, line.ItemName, line.Quantity, line.UnitPrice, line.LineTotal, line.Instructions, override).
			Scan(&line.ID); err != nil {
			return err
		}
		for _, variant := range line.Variants {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_item_variants (order_item_id, variant_id, name, price)
				VALUES ($1, $2, $3, $4)`,
				line.ID, variant.VariantID, variant.Name, variant.Price); err != nil {
				return err
			}
		}
		for _, addon := range line.Addons {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_item_addons (order_item_id, addon_id, name, quantity, price)
				VALUES ($1, $2, $3, $4, $5)`,
				line.ID, addon.AddonID, addon.Name, addon.Quantity, addon.Price); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

const selectOrder = `
	SELECT id, order_number, customer_id, COALESCE(customer_name, ''), COALESCE(customer_phone, ''),
		subtotal, tax, total, payment_method, payment_status, COALESCE(notes, ''), COALESCE(location_id, ''),
		created_by, cancellation_status, COALESCE(cancellation_reason, ''),
		COALESCE(cancellation_requested_by, 0), cancellation_requested_at,
		COALESCE(cancellation_decided_by, 0), cancellation_decided_at,
		COALESCE(admin_notes, ''), COALESCE(refund_method, ''), refund_amount, refund_points, created_at
	FROM orders`

func (r *PostgresRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var customerID sql.NullInt64
	var requestedAt, decidedAt sql.NullTime
	var refundMethod string
	var refundAmount sql.NullFloat64
	var refundPoints sql.NullInt64

	err := row.Scan(&order.ID, &order.Number, &customerID, &order.CustomerName, &order.CustomerPhone,
		&order.Subtotal, &order.Tax, &order.Total, &order.PaymentMethod, &order.PaymentStatus,
		&order.Notes, &order.LocationID, &order.CreatedBy,
		&order.Cancellation.Status, &order.Cancellation.Reason,
		&order.Cancellation.RequestedBy, &requestedAt,
		&order.Cancellation.DecidedBy, &decidedAt,
		&order.Cancellation.AdminNotes, &refundMethod, &refundAmount, &refundPoints, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		id := int(customerID.Int64)
		order.CustomerID = &id
	}
	if requestedAt.Valid {
		order.Cancellation.RequestedAt = &requestedAt.Time
	}
	if decidedAt.Valid {
		order.Cancellation.DecidedAt = &decidedAt.Time
	}
	if refundMethod != "" {
		order.Cancellation.Refund = &domain.RefundInfo{
			PaymentMethod: domain.PaymentMethod(refundMethod),
			Amount:        refundAmount.Float64,
			LoyaltyPoints: int(refundPoints.Int64),
		}
	}
	return &order, nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id int) (*domain.Order, error) {
	order, err := r.scanOrder(r.DB.QueryRowContext(ctx, selectOrder+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, order *domain.Order) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, menu_item_id, item_name, quantity, unit_price, line_total, COALESCE(instructions, ''), price_override
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	order.Lines = []domain.OrderLine{}
	byID := map[int]*domain.OrderLine{}
	for rows.Next() {
		var line domain.OrderLine
		var override sql.NullFloat64
		if err := rows.Scan(&line.ID, &line.MenuItemID, &line.ItemName, &line.Quantity, &line.UnitPrice, &line.LineTotal, &line.Instructions, &override); err != nil {
			continue
		}
		if override.Valid {
			line.PriceOverride = &override.Float64
		}
		order.Lines = append(order.Lines, line)
	}
	for i := range order.Lines {
		byID[order.Lines[i].ID] = &order.Lines[i]
	}

	variantRows, err := r.DB.QueryContext(ctx, `
		SELECT v.order_item_id, v.variant_id, v.name, v.price
		FROM order_item_variants v
		JOIN order_items oi ON v.order_item_id = oi.id
		WHERE oi.order_id = $1
		ORDER BY v.id`, order.ID)
	if err != nil {
		return err
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var itemID int
		var variant domain.LineVariant
		if err := variantRows.Scan(&itemID, &variant.VariantID, &variant.Name, &variant.Price); err != nil {
			continue
		}
		if line, ok := byID[itemID]; ok {
			line.Variants = append(line.Variants, variant)
		}
	}

	addonRows, err := r.DB.QueryContext(ctx, `
		SELECT a.order_item_id, a.addon_id, a.name, a.quantity, a.price
		FROM order_item_addons a
		JOIN order_items oi ON a.order_item_id = oi.id
		WHERE oi.order_id = $1
		ORDER BY a.id`, order.ID)
	if err != nil {
		return err
	}
	defer addonRows.Close()

	for addonRows.Next() {
		var itemID int
		var addon domain.LineAddon
		if err := addonRows.Scan(&itemID, &addon.AddonID, &addon.Name, &addon.Quantity, &addon.Price); err != nil {
			continue
		}
		if line, ok := byID[itemID]; ok {
			line.Addons = append(line.Addons, addon)
		}
	}
	return nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, selectOrder+` ORDER BY created_at DESC`)
}

// ListCancellationRequests returns the triage queue oldest-first.
func (r *PostgresRepository) ListCancellationRequests(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, selectOrder+` WHERE cancellation_status = 'REQUESTED' ORDER BY cancellation_requested_at ASC`)
}

func (r *PostgresRepository) listOrders(ctx context.Context, query string) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// RequestCancellation flips NONE to REQUESTED with a compare-and-swap and
// records the refund snapshot and the audit row in the same transaction.
// Returns false without error when the order was not in NONE.
func (r *PostgresRepository) RequestCancellation(ctx context.Context, orderID, actorID int, reason string, refund domain.RefundInfo, at time.Time) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET cancellation_status = $2, cancellation_reason = $3,
			cancellation_requested_by = $4, cancellation_requested_at = $5,
			refund_method = $6, refund_amount = $7, refund_points = $8
		WHERE id = $1 AND cancellation_status = $9`,
		orderID, domain.CancellationRequested, reason, actorID, at,
		refund.PaymentMethod, refund.Amount, refund.LoyaltyPoints, domain.CancellationNone)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, previous_status, new_status, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		orderID, domain.CancellationNone, domain.CancellationRequested, reason, actorID, at); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// DecideCancellation flips REQUESTED to the given terminal status. When
// refundCustomerID is set the snapshotted loyalty points are credited back in
// the same transaction, so a lost race can never double-refund.
func (r *PostgresRepository) DecideCancellation(ctx context.Context, orderID, actorID int, newStatus domain.CancellationStatus, notes string, at time.Time, refundCustomerID, refundPoints int) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET cancellation_status = $2, cancellation_decided_by = $3,
			cancellation_decided_at = $4, admin_notes = $5
		WHERE id = $1 AND cancellation_status = $6`,
		orderID, newStatus, actorID, at, notes, domain.CancellationRequested)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, previous_status, new_status, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		orderID, domain.CancellationRequested, newStatus, notes, actorID, at); err != nil {
		return false, err
	}

	if refundCustomerID != 0 && refundPoints > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE customers
			SET loyalty_points = loyalty_points + $2
			WHERE id = $1`, refundCustomerID, refundPoints); err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

func (r *PostgresRepository) GetStatusHistory(ctx context.Context, orderID int) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, order_id, previous_status, new_status, COALESCE(reason, ''), actor_id, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.StatusHistoryEntry{}
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.PreviousStatus, &entry.NewStatus, &entry.Reason, &entry.ActorID, &entry.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, orderID int, status domain.PaymentStatus) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `UPDATE orders SET payment_status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, orderID int, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE orders SET qr_code = $1 WHERE id = $2`, qr, orderID)
	return err
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, orderID int) ([]byte, error) {
	var qr []byte
	err := r.DB.QueryRowContext(ctx, `SELECT qr_code FROM orders WHERE id = $1`, orderID).Scan(&qr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return qr, nil
}
