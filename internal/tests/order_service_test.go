package tests

import (
	"context"
	"testing"

	"resto-pos/internal/domain"
	"resto-pos/internal/mocks"
	"resto-pos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func stampOrder(id int, number string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		order := args.Get(1).(*domain.Order)
		order.ID = id
		order.Number = number
	}
}

func TestOrderService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *domain.CreateOrderRequest
		wantErr error
	}{
		{
			name:    "no lines",
			req:     &domain.CreateOrderRequest{PaymentMethod: domain.PaymentCash},
			wantErr: service.ErrEmptyOrder,
		},
		{
			name: "unknown payment method",
			req: &domain.CreateOrderRequest{
				PaymentMethod: "CHEQUE",
				Lines:         []domain.CreateOrderLine{{MenuItemID: 1, Quantity: 1}},
			},
			wantErr: service.ErrInvalidPaymentMethod,
		},
		{
			name: "quantity below one",
			req: &domain.CreateOrderRequest{
				PaymentMethod: domain.PaymentCash,
				Lines:         []domain.CreateOrderLine{{MenuItemID: 1, Quantity: 0}},
			},
			wantErr: service.ErrInvalidSelection,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc := service.NewOrderService(new(mocks.MenuRepository), nil, new(mocks.CustomerRepository), new(mocks.OrderRepository), nil, nil, 10)

			result, err := svc.Create(context.Background(), testCase.req)

			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Nil(t, result)
		})
	}
}

func TestOrderService_CreateWalkIn(t *testing.T) {
	mockMenu := new(mocks.MenuRepository)
	mockCustomers := new(mocks.CustomerRepository)
	mockOrders := new(mocks.OrderRepository)
	mockPublisher := new(mocks.OrderPublisher)
	mockQR := new(mocks.QRGenerator)
	svc := service.NewOrderService(mockMenu, nil, mockCustomers, mockOrders, mockPublisher, mockQR, 10)

	mockMenu.On("GetItem", mock.Anything, 1).Return(steakBowl(), nil)
	mockOrders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(stampOrder(42, "ORD-20260831-0001")).Return(nil).Once()
	mockQR.On("Generate", "ORD-20260831-0001").Return([]byte("png"), nil).Once()
	mockOrders.On("SaveQRCode", mock.Anything, 42, []byte("png")).Return(nil).Once()
	mockPublisher.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.Type == "order_created" && e.OrderNumber == "ORD-20260831-0001"
	})).Return(nil).Once()

	result, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.CreateOrderLine{
			{MenuItemID: 1, Quantity: 1, VariantIDs: []int{11}, Addons: []domain.AddonSelection{{AddonID: 21, Quantity: 2}}},
			{MenuItemID: 1, Quantity: 2, VariantIDs: []int{11}, Addons: []domain.AddonSelection{{AddonID: 21, Quantity: 2}}},
		},
	})

	assert.NoError(t, err)
	assert.Nil(t, result.Customer)
	assert.False(t, result.CustomerIsNew)
	assert.Equal(t, 1077.0, result.Order.Subtotal) // 359 + 359*2
	assert.Equal(t, 0.0, result.Order.Tax)
	assert.Equal(t, 1077.0, result.Order.Total)
	assert.Equal(t, domain.PaymentPending, result.Order.PaymentStatus)
	assert.Equal(t, domain.CancellationNone, result.Order.Cancellation.Status)
	mockOrders.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestOrderService_CreateResolvesExistingCustomer(t *testing.T) {
	mockMenu := new(mocks.MenuRepository)
	mockCustomers := new(mocks.CustomerRepository)
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockMenu, nil, mockCustomers, mockOrders, nil, nil, 10)

	existing := &domain.Customer{ID: 7, Phone: "5550001", FirstName: "Ada", LastName: "Lovelace", LoyaltyPoints: 20}
	mockCustomers.On("FindByPhone", mock.Anything, "5550001").Return(existing, nil).Once()
	mockMenu.On("GetItem", mock.Anything, 3).Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil)
	mockOrders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(stampOrder(1, "ORD-20260831-0002")).Return(nil).Once()
	mockCustomers.On("ApplyOrderStats", mock.Anything, 7, 120.0, 12).Return(nil).Once()

	result, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
		CustomerPhone: "5550001",
		PaymentMethod: domain.PaymentCard,
		Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1}},
	})

	assert.NoError(t, err)
	assert.False(t, result.CustomerIsNew)
	assert.Equal(t, 7, *result.Order.CustomerID)
	assert.Equal(t, "Ada Lovelace", result.Order.CustomerName)
	assert.Equal(t, 1, result.Customer.TotalOrders)
	assert.Equal(t, 120.0, result.Customer.TotalSpent)
	assert.Equal(t, 32, result.Customer.LoyaltyPoints)
	mockCustomers.AssertExpectations(t)
}

func TestOrderService_CreateNewCustomer(t *testing.T) {
	mockMenu := new(mocks.MenuRepository)
	mockCustomers := new(mocks.CustomerRepository)
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockMenu, nil, mockCustomers, mockOrders, nil, nil, 10)

	mockCustomers.On("FindByPhone", mock.Anything, "5550002").Return(nil, nil).Once()
	mockCustomers.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.Phone == "5550002" && c.FirstName == "Grace" && c.LastName == "Hopper" && c.Active
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Customer).ID = 9
	}).Return(nil).Once()
	mockMenu.On("GetItem", mock.Anything, 3).Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil)
	mockOrders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(stampOrder(2, "ORD-20260831-0003")).Return(nil).Once()
	mockCustomers.On("ApplyOrderStats", mock.Anything, 9, 120.0, 12).Return(nil).Once()

	result, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
		CustomerPhone: "5550002",
		CustomerName:  "Grace Hopper",
		PaymentMethod: domain.PaymentUPI,
		Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1}},
	})

	assert.NoError(t, err)
	assert.True(t, result.CustomerIsNew)
	assert.Equal(t, 9, *result.Order.CustomerID)
	mockCustomers.AssertExpectations(t)
}

func TestOrderService_CreateLoyaltyPayment(t *testing.T) {
	t.Run("insufficient points", func(t *testing.T) {
		mockMenu := new(mocks.MenuRepository)
		mockCustomers := new(mocks.CustomerRepository)
		mockOrders := new(mocks.OrderRepository)
		svc := service.NewOrderService(mockMenu, nil, mockCustomers, mockOrders, nil, nil, 10)

		mockCustomers.On("FindByPhone", mock.Anything, "5550001").
			Return(&domain.Customer{ID: 7, FirstName: "Ada", LoyaltyPoints: 100}, nil).Once()
		mockMenu.On("GetItem", mock.Anything, 3).Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil)

		result, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
			CustomerPhone: "5550001",
			PaymentMethod: domain.PaymentLoyalty,
			Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1}},
		})

		assert.ErrorIs(t, err, service.ErrInsufficientPoints)
		assert.Nil(t, result)
		mockOrders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("no customer on file", func(t *testing.T) {
		mockMenu := new(mocks.MenuRepository)
		mockOrders := new(mocks.OrderRepository)
		svc := service.NewOrderService(mockMenu, nil, new(mocks.CustomerRepository), mockOrders, nil, nil, 10)

		mockMenu.On("GetItem", mock.Anything, 3).Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil)

		_, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
			PaymentMethod: domain.PaymentLoyalty,
			Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1}},
		})

		assert.ErrorIs(t, err, service.ErrInsufficientPoints)
	})

	t.Run("earn then deduct", func(t *testing.T) {
		mockMenu := new(mocks.MenuRepository)
		mockCustomers := new(mocks.CustomerRepository)
		mockOrders := new(mocks.OrderRepository)
		svc := service.NewOrderService(mockMenu, nil, mockCustomers, mockOrders, nil, nil, 10)

		mockCustomers.On("FindByPhone", mock.Anything, "5550001").
			Return(&domain.Customer{ID: 7, FirstName: "Ada", LoyaltyPoints: 500}, nil).Once()
		mockMenu.On("GetItem", mock.Anything, 3).Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil)
		mockOrders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
			Run(stampOrder(5, "ORD-20260831-0004")).Return(nil).Once()
		mockCustomers.On("ApplyOrderStats", mock.Anything, 7, 120.0, 12).Return(nil).Once()
		mockCustomers.On("DeductLoyaltyPoints", mock.Anything, 7, 120).Return(nil).Once()

		result, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
			CustomerPhone: "5550001",
			PaymentMethod: domain.PaymentLoyalty,
			Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1}},
		})

		assert.NoError(t, err)
		assert.Equal(t, 500+12-120, result.Customer.LoyaltyPoints)
		mockCustomers.AssertExpectations(t)
	})
}

func TestOrderService_CreateSurvivesStatsFailure(t *testing.T) {
	mockMenu := new(mocks.MenuRepository)
	mockCustomers := new(mocks.CustomerRepository)
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockMenu, nil, mockCustomers, mockOrders, nil, nil, 10)

	mockCustomers.On("FindByPhone", mock.Anything, "5550001").
		Return(&domain.Customer{ID: 7, FirstName: "Ada"}, nil).Once()
	mockMenu.On("GetItem", mock.Anything, 3).Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil)
	mockOrders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(stampOrder(6, "ORD-20260831-0005")).Return(nil).Once()
	mockCustomers.On("ApplyOrderStats", mock.Anything, 7, 120.0, 12).Return(assert.AnError).Once()

	result, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
		CustomerPhone: "5550001",
		PaymentMethod: domain.PaymentCash,
		Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1}},
	})

	assert.NoError(t, err)
	assert.NotNil(t, result.Order)
	mockCustomers.AssertExpectations(t)
}

func TestOrderService_CreatePriceOverride(t *testing.T) {
	t.Run("negative override rejected", func(t *testing.T) {
		mockMenu := new(mocks.MenuRepository)
		svc := service.NewOrderService(mockMenu, nil, new(mocks.CustomerRepository), new(mocks.OrderRepository), nil, nil, 10)

		mockMenu.On("GetItem", mock.Anything, 3).Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil)

		_, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
			PaymentMethod: domain.PaymentCash,
			Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1, PriceOverride: fp(-5)}},
		})

		assert.ErrorIs(t, err, service.ErrInvalidPrice)
	})

	t.Run("override bypasses the calculator", func(t *testing.T) {
		mockMenu := new(mocks.MenuRepository)
		mockOrders := new(mocks.OrderRepository)
		svc := service.NewOrderService(mockMenu, nil, new(mocks.CustomerRepository), mockOrders, nil, nil, 10)

		// no variant selected on a variant item: the override makes that legal
		mockMenu.On("GetItem", mock.Anything, 1).Return(steakBowl(), nil)
		mockOrders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
			Run(stampOrder(8, "ORD-20260831-0006")).Return(nil).Once()

		result, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
			PaymentMethod: domain.PaymentCash,
			Lines:         []domain.CreateOrderLine{{MenuItemID: 1, Quantity: 3, PriceOverride: fp(100)}},
		})

		assert.NoError(t, err)
		assert.Equal(t, 100.0, result.Order.Lines[0].UnitPrice)
		assert.Equal(t, 300.0, result.Order.Lines[0].LineTotal)
		assert.Equal(t, 300.0, result.Order.Total)
	})
}

func TestOrderService_CreateItemLookup(t *testing.T) {
	t.Run("item not found", func(t *testing.T) {
		mockMenu := new(mocks.MenuRepository)
		svc := service.NewOrderService(mockMenu, nil, new(mocks.CustomerRepository), new(mocks.OrderRepository), nil, nil, 10)

		mockMenu.On("GetItem", mock.Anything, 404).Return(nil, nil).Once()

		_, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
			PaymentMethod: domain.PaymentCash,
			Lines:         []domain.CreateOrderLine{{MenuItemID: 404, Quantity: 1}},
		})

		assert.ErrorIs(t, err, service.ErrItemNotFound)
	})

	t.Run("cache hit skips the repository", func(t *testing.T) {
		mockMenu := new(mocks.MenuRepository)
		mockCache := new(mocks.MenuCache)
		mockOrders := new(mocks.OrderRepository)
		svc := service.NewOrderService(mockMenu, mockCache, new(mocks.CustomerRepository), mockOrders, nil, nil, 10)

		mockCache.On("ItemKey", 3).Return("menu:item:3")
		mockCache.On("GetItem", mock.Anything, "menu:item:3").
			Return(&domain.MenuItem{ID: 3, Name: "Soup", BasePrice: fp(120), Available: true}, nil).Once()
		mockOrders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
			Run(stampOrder(9, "ORD-20260831-0007")).Return(nil).Once()

		_, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
			PaymentMethod: domain.PaymentCash,
			Lines:         []domain.CreateOrderLine{{MenuItemID: 3, Quantity: 1}},
		})

		assert.NoError(t, err)
		mockMenu.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
	})
}

func TestOrderService_Get(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(new(mocks.MenuRepository), nil, new(mocks.CustomerRepository), mockOrders, nil, nil, 10)

	mockOrders.On("GetOrder", mock.Anything, 404).Return(nil, nil).Once()

	_, err := svc.Get(context.Background(), 404)

	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.PaymentStatus
		updated bool
		wantErr error
	}{
		{name: "marks paid", status: domain.PaymentPaid, updated: true},
		{name: "unknown status", status: "REFUNDED", wantErr: service.ErrInvalidPaymentStatus},
		{name: "missing order", status: domain.PaymentFailed, updated: false, wantErr: service.ErrOrderNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockOrders := new(mocks.OrderRepository)
			svc := service.NewOrderService(new(mocks.MenuRepository), nil, new(mocks.CustomerRepository), mockOrders, nil, nil, 10)

			if testCase.status.Valid() {
				mockOrders.On("UpdatePaymentStatus", mock.Anything, 1, testCase.status).Return(testCase.updated, nil).Once()
			}

			err := svc.UpdatePaymentStatus(context.Background(), 1, testCase.status)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mockOrders.AssertExpectations(t)
		})
	}
}

func TestDefaultQRGenerator(t *testing.T) {
	gen := service.DefaultQRGenerator{BaseURL: "http://localhost"}
	qr, err := gen.Generate("ORD-20260831-0001")

	assert.NoError(t, err)
	assert.NotEmpty(t, qr)
}

func TestOrderService_GetQRCodeRegenerates(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockQR := new(mocks.QRGenerator)
	svc := service.NewOrderService(new(mocks.MenuRepository), nil, new(mocks.CustomerRepository), mockOrders, nil, mockQR, 10)

	mockOrders.On("GetQRCode", mock.Anything, 42).Return(nil, nil).Once()
	mockOrders.On("GetOrder", mock.Anything, 42).Return(&domain.Order{ID: 42, Number: "ORD-20260831-0001"}, nil).Once()
	mockQR.On("Generate", "ORD-20260831-0001").Return([]byte("png"), nil).Once()
	mockOrders.On("SaveQRCode", mock.Anything, 42, []byte("png")).Return(nil).Once()

	qr, err := svc.GetQRCode(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, []byte("png"), qr)
	mockOrders.AssertExpectations(t)
	mockQR.AssertExpectations(t)
}
