package service

import (
	"errors"
	"fmt"

	"resto-pos/internal/domain"
)

var (
	ErrItemUnavailable  = errors.New("menu item is not available")
	ErrInvalidSelection = errors.New("invalid item selection")
)

// PriceBreakdown is the priced decomposition of a single order line before
// quantity is applied.
type PriceBreakdown struct {
	BasePrice   float64
	Variants    []domain.LineVariant
	Addons      []domain.LineAddon
	AddonsTotal float64
	Total       float64
}

// PriceItem prices a selection against the live menu item. When the item has
// variants their prices replace the base price entirely; addon prices resolve
// item-level override, then category-level override, then the addon's own
// base price.
func PriceItem(item *domain.MenuItem, variantIDs []int, addons []domain.AddonSelection) (*PriceBreakdown, error) {
	if !item.Available {
		return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	breakdown := &PriceBreakdown{}

	if item.HasVariants {
		if len(variantIDs) == 0 {
			return nil, fmt.Errorf("%w: item %q requires a variant", ErrInvalidSelection, item.Name)
		}
		for _, id := range variantIDs {
			variant := item.Variant(id)
			if variant == nil {
				return nil, fmt.Errorf("%w: variant %d does not belong to item %q", ErrInvalidSelection, id, item.Name)
			}
			breakdown.Variants = append(breakdown.Variants, domain.LineVariant{
				VariantID: variant.ID,
				Name:      variant.Name,
				Price:     variant.Price,
			})
			breakdown.Total += variant.Price
		}
	} else {
		if len(variantIDs) > 0 {
			return nil, fmt.Errorf("%w: item %q has no variants", ErrInvalidSelection, item.Name)
		}
		if item.BasePrice == nil {
			return nil, fmt.Errorf("%w: item %q has no price", ErrInvalidSelection, item.Name)
		}
		breakdown.BasePrice = *item.BasePrice
		breakdown.Total = *item.BasePrice
	}

	for _, selection := range addons {
		if selection.Quantity < 1 {
			return nil, fmt.Errorf("%w: addon %d quantity must be at least 1", ErrInvalidSelection, selection.AddonID)
		}
		option := item.AddonOption(selection.AddonID)
		if option == nil {
			return nil, fmt.Errorf("%w: addon %d is not eligible for item %q", ErrInvalidSelection, selection.AddonID, item.Name)
		}
		price := option.EffectivePrice()
		breakdown.Addons = append(breakdown.Addons, domain.LineAddon{
			AddonID:  option.AddonID,
			Name:     option.Name,
			Quantity: selection.Quantity,
			Price:    price,
		})
		breakdown.AddonsTotal += price * float64(selection.Quantity)
	}
	breakdown.Total += breakdown.AddonsTotal

	return breakdown, nil
}
