package service

import (
	"context"
	"errors"

	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"github.com/zywang/bookmart-backend/pkg/logistics/kuaidi100"
	"gorm.io/gorm"
)

var ErrNoLogisticsNo = errors.New("order has no logistics number yet")

type LogisticsService interface {
	TrackOrder(ctx context.Context, userID, orderID uint, carrierCode string) (*kuaidi100.TrackResult, error)
	ListCarriers() []kuaidi100.Carrier
}

type logisticsService struct {
	client    *kuaidi100.Client
	orderRepo repository.OrderRepository
}

func NewLogisticsService(client *kuaidi100.Client, orderRepo repository.OrderRepository) LogisticsService {
	return &logisticsService{
		client:    client,
		orderRepo: orderRepo,
	}
}

// TrackOrder queries the shipment route of a shipped order. Only the
// order's buyer or seller may look it up.
func (s *logisticsService) TrackOrder(ctx context.Context, userID, orderID uint, carrierCode string) (*kuaidi100.TrackResult, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, ErrNotOrderParticipant
	}
	if order.LogisticsNo == "" {
		return nil, ErrNoLogisticsNo
	}

	result, err := s.client.Track(ctx, kuaidi100.TrackRequest{
		CarrierCode: carrierCode,
		TrackingNo:  order.LogisticsNo,
		Phone:       order.ReceiverPhone,
	})
	if err != nil {
		logger.Error("Failed to track shipment", err, map[string]interface{}{
			"order_id":     orderID,
			"logistics_no": order.LogisticsNo,
		})
		return nil, err
	}
	return result, nil
}

func (s *logisticsService) ListCarriers() []kuaidi100.Carrier {
	return kuaidi100.Carriers()
}
