package storage

import (
	"context"
	"database/sql"
	"fmt"

	"resto-pos/internal/domain"
)

const selectCustomer = `
	SELECT id, COALESCE(phone, ''), COALESCE(email, ''), first_name, COALESCE(last_name, ''),
		total_orders, total_spent, loyalty_points, active, created_at
	FROM customers`

func (r *PostgresRepository) scanCustomer(row rowScanner) (*domain.Customer, error) {
	var customer domain.Customer
	err := row.Scan(&customer.ID, &customer.Phone, &customer.Email, &customer.FirstName, &customer.LastName,
		&customer.TotalOrders, &customer.TotalSpent, &customer.LoyaltyPoints, &customer.Active, &customer.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return r.scanCustomer(r.DB.QueryRowContext(ctx, selectCustomer+` WHERE phone = $1 AND active`, phone))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.scanCustomer(r.DB.QueryRowContext(ctx, selectCustomer+` WHERE email = $1 AND active`, email))
}

func (r *PostgresRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO customers (phone, email, first_name, last_name)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, NULLIF($4, ''))
		RETURNING id, total_orders, total_spent, loyalty_points, active, created_at`,
		customer.Phone, customer.Email, customer.FirstName, customer.LastName).
		Scan(&customer.ID, &customer.TotalOrders, &customer.TotalSpent, &customer.LoyaltyPoints, &customer.Active, &customer.CreatedAt)
}

// ApplyOrderStats applies the per-order increments in a single statement so
// concurrent orders for the same customer never lose an update.
func (r *PostgresRepository) ApplyOrderStats(ctx context.Context, customerID int, spent float64, earnedPoints int) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE customers
		SET total_orders = total_orders + 1,
			total_spent = total_spent + $2,
			loyalty_points = loyalty_points + $3
		WHERE id = $1`, customerID, spent, earnedPoints)
	return err
}

func (r *PostgresRepository) AddLoyaltyPoints(ctx context.Context, customerID, points int) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE customers
		SET loyalty_points = loyalty_points + $2
		WHERE id = $1`, customerID, points)
	return err
}

func (r *PostgresRepository) DeductLoyaltyPoints(ctx context.Context, customerID, points int) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE customers
		SET loyalty_points = loyalty_points - $2
		WHERE id = $1 AND loyalty_points >= $2`, customerID, points)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("customer %d has fewer than %d loyalty points", customerID, points)
	}
	return nil
}
