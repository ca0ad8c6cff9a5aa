package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"resto-pos/internal/domain"
)

var (
	ErrEmptyOrder           = errors.New("order has no lines")
	ErrItemNotFound         = errors.New("menu item not found")
	ErrInvalidPrice         = errors.New("price override must be a non-negative number")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrInvalidPaymentStatus = errors.New("unknown payment status")
	ErrInsufficientPoints   = errors.New("insufficient loyalty points")
	ErrOrderNotFound        = errors.New("order not found")
)

type OrderService struct {
	menu        MenuRepository
	cache       MenuCache
	customers   CustomerRepository
	orders      OrderRepository
	publisher   OrderPublisher
	qrEncoder   QRGenerator
	earnDivisor float64
}

// NewOrderService wires the order transaction flow. earnDivisor is the spend
// needed to earn one loyalty point; values <= 0 fall back to the default 10.
func NewOrderService(menu MenuRepository, cache MenuCache, customers CustomerRepository, orders OrderRepository, publisher OrderPublisher, qr QRGenerator, earnDivisor float64) *OrderService {
	if earnDivisor <= 0 {
		earnDivisor = 10
	}
	return &OrderService{
		menu:        menu,
		cache:       cache,
		customers:   customers,
		orders:      orders,
		publisher:   publisher,
		qrEncoder:   qr,
		earnDivisor: earnDivisor,
	}
}

// Create validates and prices the request, persists the order atomically and
// then applies the customer side effects. Everything up to and including the
// insert is all-or-nothing; customer stats, QR generation and event publish
// run after commit and only log on failure.
func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.CreateOrderResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, req.PaymentMethod)
	}

	customer, isNew, err := s.resolveCustomer(ctx, req)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: domain.PaymentPending,
		Cancellation:  domain.Cancellation{Status: domain.CancellationNone},
		Notes:         req.Notes,
		LocationID:    req.LocationID,
		CreatedBy:     req.CreatedBy,
	}
	if customer != nil {
		order.CustomerID = &customer.ID
		order.CustomerName = customer.DisplayName()
		order.CustomerPhone = customer.Phone
	}

	for _, lineReq := range req.Lines {
		line, err := s.priceLine(ctx, lineReq)
		if err != nil {
			return nil, err
		}
		order.Subtotal += line.LineTotal
		order.Lines = append(order.Lines, *line)
	}
	order.Tax = 0 // the domain charges no tax
	order.Total = order.Subtotal

	if req.PaymentMethod == domain.PaymentLoyalty {
		if customer == nil || float64(customer.LoyaltyPoints) < order.Total {
			return nil, ErrInsufficientPoints
		}
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if customer != nil {
		s.applyCustomerEffects(ctx, customer, order)
	}

	if s.qrEncoder != nil {
		if qr, err := s.qrEncoder.Generate(order.Number); err == nil {
			if err := s.orders.SaveQRCode(ctx, order.ID, qr); err != nil {
				log.Printf("WARNING: failed to store QR code for order %s: %v", order.Number, err)
			}
		}
	}

	s.publish(ctx, "order_created", order)

	return &domain.CreateOrderResult{Order: order, Customer: customer, CustomerIsNew: isNew}, nil
}

func (s *OrderService) resolveCustomer(ctx context.Context, req *domain.CreateOrderRequest) (*domain.Customer, bool, error) {
	phone := strings.TrimSpace(req.CustomerPhone)
	email := strings.TrimSpace(req.CustomerEmail)
	name := strings.TrimSpace(req.CustomerName)
	if phone == "" && email == "" && name == "" {
		return nil, false, nil
	}

	if phone != "" {
		customer, err := s.customers.FindByPhone(ctx, phone)
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up customer by phone: %w", err)
		}
		if customer != nil {
			return customer, false, nil
		}
	}
	if email != "" {
		customer, err := s.customers.FindByEmail(ctx, email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up customer by email: %w", err)
		}
		if customer != nil {
			return customer, false, nil
		}
	}

	first, last := splitName(name)
	if first == "" {
		first = "Guest"
	}
	customer := &domain.Customer{
		Phone:     phone,
		Email:     email,
		FirstName: first,
		LastName:  last,
		Active:    true,
	}
	if err := s.customers.CreateCustomer(ctx, customer); err != nil {
		return nil, false, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, true, nil
}

func splitName(name string) (first, last string) {
	parts := strings.SplitN(name, " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}

func (s *OrderService) priceLine(ctx context.Context, req domain.CreateOrderLine) (*domain.OrderLine, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidSelection)
	}
	item, err := s.lookupItem(ctx, req.MenuItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %d", ErrItemNotFound, req.MenuItemID)
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	line := &domain.OrderLine{
		MenuItemID:    item.ID,
		ItemName:      item.Name,
		Quantity:      req.Quantity,
		Instructions:  req.Instructions,
		PriceOverride: req.PriceOverride,
	}

	if req.PriceOverride != nil {
		// Staff override skips the calculator but must still be sane.
		if *req.PriceOverride < 0 {
			return nil, ErrInvalidPrice
		}
		line.UnitPrice = *req.PriceOverride
	} else {
		breakdown, err := PriceItem(item, req.VariantIDs, req.Addons)
		if err != nil {
			return nil, err
		}
		line.Variants = breakdown.Variants
		line.Addons = breakdown.Addons
		line.UnitPrice = breakdown.Total
	}
	line.LineTotal = line.UnitPrice * float64(req.Quantity)
	return line, nil
}

func (s *OrderService) lookupItem(ctx context.Context, id int) (*domain.MenuItem, error) {
	if s.cache != nil {
		if item, err := s.cache.GetItem(ctx, s.cache.ItemKey(id)); err == nil && item != nil {
			return item, nil
		}
	}
	item, err := s.menu.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu item %d: %w", id, err)
	}
	if item != nil && s.cache != nil {
		if err := s.cache.SetItem(ctx, s.cache.ItemKey(id), item); err != nil {
			log.Printf("WARNING: failed to cache menu item %d: %v", id, err)
		}
	}
	return item, nil
}

// applyCustomerEffects runs after the order transaction has committed.
// Failures leave the order valid; stats are a cache of the order ledger and
// can be re-derived by a reconciliation pass.
func (s *OrderService) applyCustomerEffects(ctx context.Context, customer *domain.Customer, order *domain.Order) {
	earned := int(math.Floor(order.Total / s.earnDivisor))
	if err := s.customers.ApplyOrderStats(ctx, customer.ID, order.Total, earned); err != nil {
		log.Printf("WARNING: failed to update stats for customer %d after order %s: %v", customer.ID, order.Number, err)
		return
	}
	customer.TotalOrders++
	customer.TotalSpent += order.Total
	customer.LoyaltyPoints += earned

	// Points are earned on the spend first, then the order's own cost is
	// deducted when the order was paid with points.
	if order.PaymentMethod == domain.PaymentLoyalty {
		spent := int(math.Round(order.Total))
		if err := s.customers.DeductLoyaltyPoints(ctx, customer.ID, spent); err != nil {
			log.Printf("WARNING: failed to deduct loyalty points for customer %d after order %s: %v", customer.ID, order.Number, err)
			return
		}
		customer.LoyaltyPoints -= spent
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Timestamp:     time.Now(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for order %s: %v", eventType, order.Number, err)
	}
}

func (s *OrderService) Get(ctx context.Context, orderID int) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx)
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID int, status domain.PaymentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, status)
	}
	updated, err := s.orders.UpdatePaymentStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if !updated {
		return ErrOrderNotFound
	}
	return nil
}

func (s *OrderService) GetQRCode(ctx context.Context, orderID int) ([]byte, error) {
	qr, err := s.orders.GetQRCode(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(qr) > 0 {
		return qr, nil
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if s.qrEncoder == nil {
		return nil, nil
	}
	regenerated, err := s.qrEncoder.Generate(order.Number)
	if err != nil {
		return nil, err
	}
	if err := s.orders.SaveQRCode(ctx, orderID, regenerated); err != nil {
		log.Printf("WARNING: failed to store regenerated QR code for order %d: %v", orderID, err)
	}
	return regenerated, nil
}

type MenuService struct {
	repo MenuRepository
}

func NewMenuService(repo MenuRepository) *MenuService {
	return &MenuService{repo: repo}
}

func (s *MenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListItems(ctx)
}

func (s *MenuService) Get(ctx context.Context, id int) (*domain.MenuItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}
