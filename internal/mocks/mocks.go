package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"resto-pos/internal/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type MenuRepository struct {
	mock.Mock
}

func NewMenuRepository(t testingT) *MenuRepository {
	m := &MenuRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MenuRepository) GetItem(ctx context.Context, id int) (*domain.MenuItem, error) {
	args := m.Called(ctx, id)
	var item *domain.MenuItem
	if args.Get(0) != nil {
		item = args.Get(0).(*domain.MenuItem)
	}
	return item, args.Error(1)
}

func (m *MenuRepository) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	args := m.Called(ctx)
	var items []domain.MenuItem
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.MenuItem)
	}
	return items, args.Error(1)
}

type CustomerRepository struct {
	mock.Mock
}

func NewCustomerRepository(t testingT) *CustomerRepository {
	m := &CustomerRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, phone)
	var customer *domain.Customer
	if args.Get(0) != nil {
		customer = args.Get(0).(*domain.Customer)
	}
	return customer, args.Error(1)
}

func (m *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	var customer *domain.Customer
	if args.Get(0) != nil {
		customer = args.Get(0).(*domain.Customer)
	}
	return customer, args.Error(1)
}

func (m *CustomerRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *CustomerRepository) ApplyOrderStats(ctx context.Context, customerID int, spent float64, earnedPoints int) error {
	args := m.Called(ctx, customerID, spent, earnedPoints)
	return args.Error(0)
}

func (m *CustomerRepository) AddLoyaltyPoints(ctx context.Context, customerID, points int) error {
	args := m.Called(ctx, customerID, points)
	return args.Error(0)
}

func (m *CustomerRepository) DeductLoyaltyPoints(ctx context.Context, customerID, points int) error {
	args := m.Called(ctx, customerID, points)
	return args.Error(0)
}

type OrderRepository struct {
	mock.Mock
}

func NewOrderRepository(t testingT) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepository) GetOrder(ctx context.Context, id int) (*domain.Order, error) {
	args := m.Called(ctx, id)
	var order *domain.Order
	if args.Get(0) != nil {
		order = args.Get(0).(*domain.Order)
	}
	return order, args.Error(1)
}

func (m *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	var orders []domain.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.Order)
	}
	return orders, args.Error(1)
}

func (m *OrderRepository) ListCancellationRequests(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	var orders []domain.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.Order)
	}
	return orders, args.Error(1)
}

func (m *OrderRepository) RequestCancellation(ctx context.Context, orderID, actorID int, reason string, refund domain.RefundInfo, at time.Time) (bool, error) {
	args := m.Called(ctx, orderID, actorID, reason, refund, at)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) DecideCancellation(ctx context.Context, orderID, actorID int, newStatus domain.CancellationStatus, notes string, at time.Time, refundCustomerID, refundPoints int) (bool, error) {
	args := m.Called(ctx, orderID, actorID, newStatus, notes, at, refundCustomerID, refundPoints)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) GetStatusHistory(ctx context.Context, orderID int) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, orderID)
	var entries []domain.StatusHistoryEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.StatusHistoryEntry)
	}
	return entries, args.Error(1)
}

func (m *OrderRepository) UpdatePaymentStatus(ctx context.Context, orderID int, status domain.PaymentStatus) (bool, error) {
	args := m.Called(ctx, orderID, status)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) SaveQRCode(ctx context.Context, orderID int, qr []byte) error {
	args := m.Called(ctx, orderID, qr)
	return args.Error(0)
}

func (m *OrderRepository) GetQRCode(ctx context.Context, orderID int) ([]byte, error) {
	args := m.Called(ctx, orderID)
	var qr []byte
	if args.Get(0) != nil {
		qr = args.Get(0).([]byte)
	}
	return qr, args.Error(1)
}

type MenuCache struct {
	mock.Mock
}

func NewMenuCache(t testingT) *MenuCache {
	m := &MenuCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MenuCache) ItemKey(id int) string {
	args := m.Called(id)
	return args.String(0)
}

func (m *MenuCache) GetItem(ctx context.Context, key string) (*domain.MenuItem, error) {
	args := m.Called(ctx, key)
	var item *domain.MenuItem
	if args.Get(0) != nil {
		item = args.Get(0).(*domain.MenuItem)
	}
	return item, args.Error(1)
}

func (m *MenuCache) SetItem(ctx context.Context, key string, item *domain.MenuItem) error {
	args := m.Called(ctx, key, item)
	return args.Error(0)
}

type OrderPublisher struct {
	mock.Mock
}

func NewOrderPublisher(t testingT) *OrderPublisher {
	m := &OrderPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type QRGenerator struct {
	mock.Mock
}

func NewQRGenerator(t testingT) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *QRGenerator) Generate(orderNumber string) ([]byte, error) {
	args := m.Called(orderNumber)
	var qr []byte
	if args.Get(0) != nil {
		qr = args.Get(0).([]byte)
	}
	return qr, args.Error(1)
}
