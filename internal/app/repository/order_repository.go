package repository

import (
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

// OrderRole selects which side of an order a listing query matches.
type OrderRole string

const (
	OrderRoleBuyer  OrderRole = "buyer"
	OrderRoleSeller OrderRole = "seller"
)

type OrderFilter struct {
	UserID uint
	Role   OrderRole
	Status *model.OrderStatus
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindDetailByID(id uint) (*model.Order, error)
	FindWithFilter(filter OrderFilter, page, pageSize int) ([]model.Order, *PageInfo, error)
	UpdateStatus(id uint, status model.OrderStatus, logisticsNo string) error
	Delete(id uint) error
	CountByBuyer(buyerID uint) (int64, error)
	ExistsByOrderNo(orderNo string) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_no":   order.OrderNo,
		"buyer_id":   order.BuyerID,
		"product_id": order.ProductID,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_no": order.OrderNo,
			"buyer_id": order.BuyerID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindDetailByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Product").
		Preload("Product.Category").
		Preload("Buyer").
		Preload("Buyer.Profile").
		Preload("Seller").
		Preload("Seller.Profile").
		Preload("PickupLocation").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindWithFilter(filter OrderFilter, page, pageSize int) ([]model.Order, *PageInfo, error) {
	query := r.db.Model(&model.Order{}).Preload("Product")

	switch filter.Role {
	case OrderRoleSeller:
		query = query.Where("seller_id = ?", filter.UserID)
	default:
		query = query.Where("buyer_id = ?", filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	query = query.Order("created_at DESC")

	var orders []model.Order
	pageInfo, err := Paginate(query, page, pageSize, &orders)
	if err != nil {
		logger.Error("Failed to find orders with filter", err, map[string]interface{}{
			"user_id": filter.UserID,
			"role":    filter.Role,
		})
		return nil, nil, err
	}
	return orders, pageInfo, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus, logisticsNo string) error {
	fields := map[string]interface{}{"status": status}
	if logisticsNo != "" {
		fields["logistics_no"] = logisticsNo
	}

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an order row outright. Used only to unwind a
// half-created order whose stock decrement failed.
func (r *orderRepository) Delete(id uint) error {
	return r.db.Delete(&model.Order{}, id).Error
}

func (r *orderRepository) CountByBuyer(buyerID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Order{}).Where("buyer_id = ?", buyerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) ExistsByOrderNo(orderNo string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Order{}).Where("order_no = ?", orderNo).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
