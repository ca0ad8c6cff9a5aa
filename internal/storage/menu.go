package storage

import (
	"context"
	"database/sql"

	"resto-pos/internal/domain"
)

func (r *PostgresRepository) GetItem(ctx context.Context, id int) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}
	var basePrice sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, category_id, name, COALESCE(description, ''), base_price, has_variants, available, created_at
		FROM menu_items
		WHERE id = $1`, id).
		Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &basePrice, &item.HasVariants, &item.Available, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if basePrice.Valid {
		item.BasePrice = &basePrice.Float64
	}

	if err := r.loadItemOptions(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, category_id, name, COALESCE(description, ''), base_price, has_variants, available, created_at
		FROM menu_items
		ORDER BY category_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		var basePrice sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &basePrice, &item.HasVariants, &item.Available, &item.CreatedAt); err != nil {
			continue
		}
		if basePrice.Valid {
			item.BasePrice = &basePrice.Float64
		}
		items = append(items, item)
	}

	for i := range items {
		if err := r.loadItemOptions(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// loadItemOptions fills the variants and the addon eligibility list. An addon
// is eligible when it is linked to the item's category or when an item-level
// row permits it; both link kinds may carry a price override.
func (r *PostgresRepository) loadItemOptions(ctx context.Context, item *domain.MenuItem) error {
	variantRows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, price
		FROM menu_variants
		WHERE menu_item_id = $1
		ORDER BY id`, item.ID)
	if err != nil {
		return err
	}
	defer variantRows.Close()

	for variantRows.Next() {
		variant := domain.Variant{MenuItemID: item.ID}
		if err := variantRows.Scan(&variant.ID, &variant.Name, &variant.Price); err != nil {
			continue
		}
		item.Variants = append(item.Variants, variant)
	}

	addonRows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.name, a.price, ca.price_override, ia.price_override
		FROM addons a
		LEFT JOIN category_addons ca ON ca.addon_id = a.id AND ca.category_id = $2
		LEFT JOIN item_addons ia ON ia.addon_id = a.id AND ia.menu_item_id = $1
		WHERE ca.addon_id IS NOT NULL OR ia.addon_id IS NOT NULL
		ORDER BY a.id`, item.ID, item.CategoryID)
	if err != nil {
		return err
	}
	defer addonRows.Close()

	for addonRows.Next() {
		var option domain.AddonOption
		var categoryPrice, itemPrice sql.NullFloat64
		if err := addonRows.Scan(&option.AddonID, &option.Name, &option.BasePrice, &categoryPrice, &itemPrice); err != nil {
			continue
		}
		if categoryPrice.Valid {
			option.CategoryPrice = &categoryPrice.Float64
		}
		if itemPrice.Valid {
			option.ItemPrice = &itemPrice.Float64
		}
		item.Addons = append(item.Addons, option)
	}
	return nil
}
