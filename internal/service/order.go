package service

import (
	"context"
	"errors"
	"fmt"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/utils"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderFilter narrows an order listing
type OrderFilter struct {
	Status string
	UserID uint
}

// OrderStats summarises orders for the dashboard
type OrderStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
	Revenue  float64          `json:"revenue"` // Sum over paid orders
}

// OrderService reads orders and applies staff status changes.
// With strict set, statuses must be known values and follow the transition table.
type OrderService struct {
	db     *gorm.DB
	strict bool
}

// NewOrderService creates the service
func NewOrderService(db *gorm.DB, strict bool) *OrderService {
	return &OrderService{db: db, strict: strict}
}

// List returns a page of orders, newest first, with the total match count
func (s *OrderService) List(ctx context.Context, filter OrderFilter, page utils.Page) ([]domain.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	query = query.Session(&gorm.Session{}) // Count and Find each start from the filters
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, db.Classify(err, "Failed to count orders")
	}
	var orders []domain.Order
	if err := query.Order("created_at desc").Order("id desc").
		Offset(page.Offset()).Limit(page.Size).
		Find(&orders).Error; err != nil {
		return nil, 0, db.Classify(err, "Failed to fetch orders")
	}
	return orders, total, nil
}

// Search returns a page of orders whose number, customer name or customer phone contains q
func (s *OrderService) Search(ctx context.Context, q string, page utils.Page) ([]domain.Order, int64, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, 0, domain.ValidationError("Search query is required")
	}
	like := "%" + q + "%" // Substring match
	customers := s.db.Model(&domain.User{}).Select("id").Where("name LIKE ? OR phone LIKE ?", like, like)
	query := s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("order_number LIKE ? OR user_id IN (?)", like, customers).
		Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, db.Classify(err, "Failed to search orders")
	}
	var orders []domain.Order
	// Results are shown with the customer
	if err := query.Preload("User").Order("created_at desc").Order("id desc").
		Offset(page.Offset()).Limit(page.Size).
		Find(&orders).Error; err != nil {
		return nil, 0, db.Classify(err, "Failed to search orders")
	}
	return orders, total, nil
}

// Get returns one order with its customer
func (s *OrderService) Get(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).Preload("User").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("Order not found", domain.ErrOrderNotFound)
	}
	if err != nil {
		return nil, db.Classify(err, "Failed to fetch order")
	}
	return &order, nil
}

// Stats counts orders per status
func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, db.Classify(err, "Failed to compute order stats")
	}
	stats := &OrderStats{ByStatus: make(map[string]int64)}
	for _, st := range domain.OrderStatuses() {
		stats.ByStatus[string(st)] = 0 // Every status is reported, even when empty
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		stats.Total += r.Count
	}
	if err := s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("payment_status = ?", domain.PaymentPaid).
		Select("COALESCE(SUM(total_amount), 0)"). // Zero when nothing is paid
		Scan(&stats.Revenue).Error; err != nil {
		return nil, db.Classify(err, "Failed to compute order stats")
	}
	return stats, nil
}

// UpdateStatus sets the fulfilment status of an order
func (s *OrderService) UpdateStatus(ctx context.Context, actorID uint, id uint, status string) (*domain.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, domain.ValidationError("Status is required")
	}
	next := domain.OrderStatus(status)
	if s.strict && !next.Valid() {
		return nil, domain.ValidationError(fmt.Sprintf("Unknown order status %q", status))
	}
	var order domain.Order
	var previous domain.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOrder(tx, id, &order); err != nil {
			return err
		}
		previous = order.Status // Logged below
		if s.strict && previous != next && !previous.CanTransitionTo(next) {
			return domain.NewError(domain.KindValidation,
				fmt.Sprintf("Cannot change order status from %s to %s", previous, next),
				domain.ErrIllegalTransition)
		}
		return tx.Model(&order).Update("status", next).Error
	})
	if err != nil {
		return nil, db.Classify(err, "Failed to update order status")
	}
	order.Status = next
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"actor_id": actorID,
		"from":     previous,
		"to":       next,
	}).Info("Order status updated")
	return &order, nil
}

// UpdatePaymentStatus sets the payment status of an order
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actorID uint, id uint, status string) (*domain.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, domain.ValidationError("Payment status is required")
	}
	next := domain.PaymentStatus(status)
	if s.strict && !next.Valid() {
		return nil, domain.ValidationError(fmt.Sprintf("Unknown payment status %q", status))
	}
	var order domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOrder(tx, id, &order); err != nil {
			return err
		}
		return tx.Model(&order).Update("payment_status", next).Error
	})
	if err != nil {
		return nil, db.Classify(err, "Failed to update payment status")
	}
	order.PaymentStatus = next
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"actor_id": actorID,
		"payment":  next,
	}).Info("Order payment status updated")
	return &order, nil
}

func findOrder(tx *gorm.DB, id uint, order *domain.Order) error {
	err := tx.First(order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError("Order not found", domain.ErrOrderNotFound)
	}
	return err
}
