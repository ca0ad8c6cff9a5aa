package service

import (
	"context"
	"time"

	"resto-pos/internal/domain"
)

// Repositories return (nil, nil) for lookups that match no row; errors are
// reserved for storage failures.

type MenuRepository interface {
	GetItem(ctx context.Context, id int) (*domain.MenuItem, error)
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
}

type CustomerRepository interface {
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	ApplyOrderStats(ctx context.Context, customerID int, spent float64, earnedPoints int) error
	AddLoyaltyPoints(ctx context.Context, customerID, points int) error
	DeductLoyaltyPoints(ctx context.Context, customerID, points int) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id int) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListCancellationRequests(ctx context.Context) ([]domain.Order, error)
	RequestCancellation(ctx context.Context, orderID, actorID int, reason string, refund domain.RefundInfo, at time.Time) (bool, error)
	DecideCancellation(ctx context.Context, orderID, actorID int, newStatus domain.CancellationStatus, notes string, at time.Time, refundCustomerID, refundPoints int) (bool, error)
	GetStatusHistory(ctx context.Context, orderID int) ([]domain.StatusHistoryEntry, error)
	UpdatePaymentStatus(ctx context.Context, orderID int, status domain.PaymentStatus) (bool, error)
	SaveQRCode(ctx context.Context, orderID int, qr []byte) error
	GetQRCode(ctx context.Context, orderID int) ([]byte, error)
}

type MenuCache interface {
	ItemKey(id int) string
	GetItem(ctx context.Context, key string) (*domain.MenuItem, error)
	SetItem(ctx context.Context, key string, item *domain.MenuItem) error
}

type OrderPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type MenuServiceInterface interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id int) (*domain.MenuItem, error)
}

type OrderServiceInterface interface {
	Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.CreateOrderResult, error)
	Get(ctx context.Context, orderID int) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int, status domain.PaymentStatus) error
	GetQRCode(ctx context.Context, orderID int) ([]byte, error)
}

type CancellationServiceInterface interface {
	Request(ctx context.Context, orderID, actorID int, reason string) (*domain.Order, error)
	Decide(ctx context.Context, orderID, actorID int, approved bool, notes string) (*domain.Order, error)
	ListRequests(ctx context.Context) ([]domain.Order, error)
	History(ctx context.Context, orderID int) ([]domain.StatusHistoryEntry, error)
}

var (
	_ MenuServiceInterface         = (*MenuService)(nil)
	_ OrderServiceInterface        = (*OrderService)(nil)
	_ CancellationServiceInterface = (*CancellationService)(nil)
)
