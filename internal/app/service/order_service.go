package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrBookNotOnSale        = errors.New("book is not on sale")
	ErrOwnListing           = errors.New("cannot order your own listing")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidFulfillment   = errors.New("invalid fulfillment selection")
	ErrNotOrderParticipant  = errors.New("only the buyer or seller can operate on this order")
	ErrInvalidTransition    = errors.New("order status transition not allowed")
	ErrLogisticsNoRequired  = errors.New("logistics number is required to ship this order")
)

type CreateOrderInput struct {
	ProductID        uint
	Quantity         int
	FulfillmentType  model.FulfillmentType
	PickupLocationID *uint
	ReceiverName     string
	ReceiverPhone    string
	ReceiverAddress  string
	Remark           string
}

type OrderService interface {
	CreateOrder(buyerID uint, input CreateOrderInput) (*model.Order, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
	ListOrders(userID uint, role repository.OrderRole, status *model.OrderStatus, page, pageSize int) ([]model.Order, *repository.PageInfo, error)
	UpdateOrderStatus(operatorID, orderID uint, next model.OrderStatus, logisticsNo string) (*model.Order, error)
}

type orderService struct {
	orderRepo  repository.OrderRepository
	bookRepo   repository.BookRepository
	schoolRepo repository.SchoolRepository
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	bookRepo repository.BookRepository,
	schoolRepo repository.SchoolRepository,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		bookRepo:   bookRepo,
		schoolRepo: schoolRepo,
	}
}

// generateOrderNo builds a human-readable order number: a UTC second
// timestamp plus the last four digits of the buyer ID.
func generateOrderNo(buyerID uint) string {
	return fmt.Sprintf("%s%04d", time.Now().UTC().Format("20060102150405"), buyerID%10000)
}

// nextOrderNo resolves same-second collisions (the same buyer ordering
// twice within one second) by swapping the buyer digits for random ones.
func (s *orderService) nextOrderNo(buyerID uint) (string, error) {
	orderNo := generateOrderNo(buyerID)
	for attempt := 0; attempt < 5; attempt++ {
		exists, err := s.orderRepo.ExistsByOrderNo(orderNo)
		if err != nil {
			return "", err
		}
		if !exists {
			return orderNo, nil
		}
		orderNo = fmt.Sprintf("%s%04d", time.Now().UTC().Format("20060102150405"), rand.Intn(10000))
	}
	return orderNo, nil
}

// CreateOrder writes the order first and decrements stock second. The
// decrement is guarded against oversell, and a failed decrement unwinds
// the order row rather than leaving a phantom sale.
func (s *orderService) CreateOrder(buyerID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"buyer_id":   buyerID,
		"product_id": input.ProductID,
		"quantity":   input.Quantity,
	})

	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	book, err := s.bookRepo.FindByID(input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if book.Status != model.BookStatusOnSale {
		logger.Warn("Order rejected: book not on sale", map[string]interface{}{
			"product_id": input.ProductID,
			"status":     book.Status,
		})
		return nil, ErrBookNotOnSale
	}
	if book.SellerID == buyerID {
		return nil, ErrOwnListing
	}
	if book.Stock < input.Quantity {
		return nil, ErrInsufficientStock
	}

	switch input.FulfillmentType {
	case model.FulfillmentLogistics:
		if input.ReceiverName == "" || input.ReceiverPhone == "" || input.ReceiverAddress == "" {
			return nil, ErrInvalidFulfillment
		}
	case model.FulfillmentSelfPickup:
		if input.PickupLocationID == nil {
			return nil, ErrInvalidFulfillment
		}
		school, err := s.schoolRepo.FindByID(*input.PickupLocationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSchoolNotFound
			}
			return nil, err
		}
		if !school.Active {
			return nil, ErrSchoolNotFound
		}
	default:
		return nil, ErrInvalidFulfillment
	}

	orderNo, err := s.nextOrderNo(buyerID)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNo:          orderNo,
		BuyerID:          buyerID,
		SellerID:         book.SellerID,
		ProductID:        book.ID,
		Quantity:         input.Quantity,
		TotalAmount:      book.Price * float64(input.Quantity),
		FulfillmentType:  input.FulfillmentType,
		PickupLocationID: input.PickupLocationID,
		ReceiverName:     input.ReceiverName,
		ReceiverPhone:    input.ReceiverPhone,
		ReceiverAddress:  input.ReceiverAddress,
		Remark:           input.Remark,
		Status:           model.OrderStatusPendingPay,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	affected, err := s.bookRepo.DecrementStockIfAvailable(book.ID, input.Quantity)
	if err != nil {
		s.unwindOrder(order.ID)
		return nil, err
	}
	if affected == 0 {
		logger.Warn("Order unwound: stock ran out during creation", map[string]interface{}{
			"order_id":   order.ID,
			"product_id": book.ID,
			"quantity":   input.Quantity,
		})
		s.unwindOrder(order.ID)
		return nil, ErrInsufficientStock
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"order_no":     order.OrderNo,
		"total_amount": order.TotalAmount,
	})
	return order, nil
}

func (s *orderService) unwindOrder(orderID uint) {
	if err := s.orderRepo.Delete(orderID); err != nil {
		logger.Error("Failed to unwind half-created order", err, map[string]interface{}{
			"order_id": orderID,
		})
	}
}

// maskPhone hides the middle of a phone number, keeping the first three
// and last four digits.
func maskPhone(phone string) string {
	if len(phone) < 8 {
		return phone
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}

func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindDetailByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		logger.Warn("Order detail rejected: not a participant", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrNotOrderParticipant
	}

	order.ReceiverPhone = maskPhone(order.ReceiverPhone)
	return order, nil
}

func (s *orderService) ListOrders(userID uint, role repository.OrderRole, status *model.OrderStatus, page, pageSize int) ([]model.Order, *repository.PageInfo, error) {
	return s.orderRepo.FindWithFilter(repository.OrderFilter{
		UserID: userID,
		Role:   role,
		Status: status,
	}, page, pageSize)
}

// UpdateOrderStatus drives the order through its state machine. Only the
// buyer or seller may act: shipping belongs to the seller, paying and
// confirming receipt to the buyer, cancelling to either side.
func (s *orderService) UpdateOrderStatus(operatorID, orderID uint, next model.OrderStatus, logisticsNo string) (*model.Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != operatorID && order.SellerID != operatorID {
		return nil, ErrNotOrderParticipant
	}
	if !order.Status.CanTransitionTo(next) {
		logger.Warn("Order transition rejected", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       next,
		})
		return nil, ErrInvalidTransition
	}

	// Either participant may drive any legal edge; shipping always
	// records a tracking number.
	if next == model.OrderStatusPendingReceive && logisticsNo == "" {
		return nil, ErrLogisticsNoRequired
	}

	if next != model.OrderStatusPendingReceive {
		logisticsNo = ""
	}
	if err := s.orderRepo.UpdateStatus(orderID, next, logisticsNo); err != nil {
		return nil, err
	}

	// A cancelled order returns its quantity to the shelf.
	if next == model.OrderStatusCancelled {
		if err := s.bookRepo.RestoreStock(order.ProductID, order.Quantity); err != nil {
			logger.Error("Failed to restore stock after cancellation", err, map[string]interface{}{
				"order_id":   orderID,
				"product_id": order.ProductID,
			})
		}
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       next,
	})
	return s.orderRepo.FindByID(orderID)
}
