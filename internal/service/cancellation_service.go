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
	ErrEmptyReason         = errors.New("cancellation reason is required")
	ErrCancellationDecided = errors.New("cancellation already requested or decided")
	ErrNotRequested        = errors.New("order has no pending cancellation request")
)

// CancellationService drives the request/approve/reject workflow. Transitions
// are compare-and-swapped in storage so two concurrent admins get exactly one
// winner; the loser sees a state-conflict error and must re-fetch.
type CancellationService struct {
	orders    OrderRepository
	publisher OrderPublisher
}

func NewCancellationService(orders OrderRepository, publisher OrderPublisher) *CancellationService {
	return &CancellationService{orders: orders, publisher: publisher}
}

// Request moves an order from NONE to REQUESTED and snapshots the refund the
// caller can promise. The snapshot is what gets applied at approval, not a
// value recomputed later.
func (s *CancellationService) Request(ctx context.Context, orderID, actorID int, reason string) (*domain.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.Cancellation.Status.CanTransitionTo(domain.CancellationRequested) {
		return nil, ErrCancellationDecided
	}

	refund := domain.RefundInfo{
		PaymentMethod: order.PaymentMethod,
		Amount:        order.Total,
	}
	if order.PaymentMethod == domain.PaymentLoyalty {
		// Loyalty payments are always full value, so the points spent at
		// creation equal the order total.
		refund.LoyaltyPoints = int(math.Round(order.Total))
	}

	now := time.Now()
	swapped, err := s.orders.RequestCancellation(ctx, orderID, actorID, reason, refund, now)
	if err != nil {
		return nil, fmt.Errorf("failed to request cancellation: %w", err)
	}
	if !swapped {
		return nil, ErrCancellationDecided
	}

	order.Cancellation = domain.Cancellation{
		Status:      domain.CancellationRequested,
		Reason:      reason,
		RequestedBy: actorID,
		RequestedAt: &now,
		Refund:      &refund,
	}
	s.publishEvent(ctx, "cancellation_requested", order)
	return order, nil
}

// Decide resolves a REQUESTED cancellation. Approval of a loyalty-paid order
// credits back exactly the snapshotted points in the same transaction as the
// status flip; monetary refunds are recorded only, handled outside the system.
func (s *CancellationService) Decide(ctx context.Context, orderID, actorID int, approved bool, notes string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Cancellation.Status != domain.CancellationRequested {
		return nil, ErrNotRequested
	}

	newStatus := domain.CancellationRejected
	refundCustomerID, refundPoints := 0, 0
	if approved {
		newStatus = domain.CancellationApproved
		refund := order.Cancellation.Refund
		if refund != nil && refund.PaymentMethod == domain.PaymentLoyalty && order.CustomerID != nil {
			refundCustomerID = *order.CustomerID
			refundPoints = refund.LoyaltyPoints
		}
	}

	now := time.Now()
	swapped, err := s.orders.DecideCancellation(ctx, orderID, actorID, newStatus, notes, now, refundCustomerID, refundPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to decide cancellation: %w", err)
	}
	if !swapped {
		return nil, ErrNotRequested
	}

	order.Cancellation.Status = newStatus
	order.Cancellation.DecidedBy = actorID
	order.Cancellation.DecidedAt = &now
	order.Cancellation.AdminNotes = notes

	if approved {
		s.publishEvent(ctx, "cancellation_approved", order)
	} else {
		s.publishEvent(ctx, "cancellation_rejected", order)
	}
	return order, nil
}

// ListRequests returns orders waiting on a decision, oldest first.
func (s *CancellationService) ListRequests(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListCancellationRequests(ctx)
}

func (s *CancellationService) History(ctx context.Context, orderID int) ([]domain.StatusHistoryEntry, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.orders.GetStatusHistory(ctx, orderID)
}

func (s *CancellationService) publishEvent(ctx context.Context, eventType string, order *domain.Order) {
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
