package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	ProductID        uint                  `json:"product_id" binding:"required"`
	Quantity         int                   `json:"quantity" binding:"required,min=1"`
	FulfillmentType  model.FulfillmentType `json:"fulfillment_type" binding:"required"`
	PickupLocationID *uint                 `json:"pickup_location_id"`
	ReceiverName     string                `json:"receiver_name"`
	ReceiverPhone    string                `json:"receiver_phone"`
	ReceiverAddress  string                `json:"receiver_address"`
	Remark           string                `json:"remark" binding:"max=200"`
}

type UpdateOrderStatusRequest struct {
	Status      model.OrderStatus `json:"status" binding:"required"`
	LogisticsNo string            `json:"logistics_no"`
}

// CreateOrder places an order for one listing
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	order, err := ctrl.orderService.CreateOrder(userID, service.CreateOrderInput{
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		FulfillmentType:  req.FulfillmentType,
		PickupLocationID: req.PickupLocationID,
		ReceiverName:     req.ReceiverName,
		ReceiverPhone:    req.ReceiverPhone,
		ReceiverAddress:  req.ReceiverAddress,
		Remark:           req.Remark,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			apierrors.NotFound(c, apierrors.BookNotFound, "book not found")
		case errors.Is(err, service.ErrBookNotOnSale):
			apierrors.UnprocessableEntity(c, apierrors.BookNotOnSale, err.Error())
		case errors.Is(err, service.ErrOwnListing):
			apierrors.UnprocessableEntity(c, apierrors.BookOwnListing, err.Error())
		case errors.Is(err, service.ErrInsufficientStock):
			apierrors.UnprocessableEntity(c, apierrors.OrderInsufficientStock, err.Error())
		case errors.Is(err, service.ErrInvalidQuantity):
			apierrors.BadRequest(c, apierrors.ValidationInvalidRange, err.Error())
		case errors.Is(err, service.ErrInvalidFulfillment):
			apierrors.BadRequest(c, apierrors.OrderInvalidFulfillment, err.Error())
		case errors.Is(err, service.ErrSchoolNotFound):
			apierrors.NotFound(c, apierrors.SchoolNotFound, err.Error())
		default:
			log.Error("Failed to create order", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.Created(c, gin.H{"order": order})
}

// ListOrders returns the caller's orders as buyer or seller
// GET /api/v1/orders?role=buyer|seller&status=..
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	role := repository.OrderRoleBuyer
	if c.Query("role") == string(repository.OrderRoleSeller) {
		role = repository.OrderRoleSeller
	}

	var status *model.OrderStatus
	if v := c.Query("status"); v != "" {
		s := model.OrderStatus(v)
		if !s.Valid() {
			apierrors.BadRequest(c, apierrors.ValidationInvalidInput, "unknown order status")
			return
		}
		status = &s
	}

	page, pageSize := parsePage(c)
	orders, pageInfo, err := ctrl.orderService.ListOrders(userID, role, status, page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{
		"orders":     orders,
		"pagination": pageInfo,
	})
}

// GetOrder returns one order's detail
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid order id")
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apierrors.NotFound(c, apierrors.OrderNotFound, "order not found")
		case errors.Is(err, service.ErrNotOrderParticipant):
			apierrors.RespondWithError(c, http.StatusForbidden, apierrors.OrderNotParticipant, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{"order": order})
}

// UpdateStatus moves the order through its lifecycle
// PUT /api/v1/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(userID, id, req.Status, req.LogisticsNo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apierrors.NotFound(c, apierrors.OrderNotFound, "order not found")
		case errors.Is(err, service.ErrNotOrderParticipant):
			apierrors.RespondWithError(c, http.StatusForbidden, apierrors.OrderNotParticipant, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			apierrors.UnprocessableEntity(c, apierrors.OrderInvalidTransition, err.Error())
		case errors.Is(err, service.ErrLogisticsNoRequired):
			apierrors.BadRequest(c, apierrors.OrderTrackingRequired, err.Error())
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
				"user_id":  userID,
			})
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{"order": order})
}
