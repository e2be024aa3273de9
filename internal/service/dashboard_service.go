package service

import (
	"context"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
)

type DashboardService struct {
	orders repository.OrderRepo
}

func NewDashboardService(orders repository.OrderRepo) *DashboardService {
	return &DashboardService{orders: orders}
}

// Stats folds over the dealer's order history. Read-only.
func (s *DashboardService) Stats(ctx context.Context, dealer *domain.Dealer) (*domain.DashboardStats, error) {
	orders, err := s.orders.ListByDealer(ctx, dealer.ID)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalOrders:     len(orders),
		CreditAvailable: dealer.AvailableCredit(),
		Outstanding:     dealer.Outstanding,
	}
	for _, o := range orders {
		switch o.OrderStatus {
		case domain.OrderPending:
			stats.PendingOrders++
		case domain.OrderDelivered:
			stats.DeliveredOrders++
		}
		stats.TotalSpent += o.TotalAmount
	}
	return stats, nil
}
