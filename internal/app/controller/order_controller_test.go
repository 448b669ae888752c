package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/app/service"
	"github.com/zywang/bookmart-backend/internal/db"
	"github.com/zywang/bookmart-backend/internal/middleware"
	"gorm.io/gorm"
)

func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set(middleware.UserIDKey, userID)
}

func setupOrderControllerTest(t *testing.T) (*OrderController, *gin.Engine, *gorm.DB, *model.User, *model.User, *model.Book) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	bookRepo := repository.NewBookRepository(testDB)
	schoolRepo := repository.NewSchoolRepository(testDB)
	orderService := service.NewOrderService(orderRepo, bookRepo, schoolRepo)
	orderController := NewOrderController(orderService)

	buyer := &model.User{
		Phone:        "13800001111",
		Email:        "buyer@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(buyer)

	seller := &model.User{
		Phone:        "13800002222",
		Email:        "seller@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(seller)

	category := &model.Category{Name: "Textbooks"}
	testDB.Create(category)

	book := &model.Book{
		Name:       "Discrete Mathematics",
		CategoryID: category.ID,
		Condition:  "used",
		Price:      18,
		Stock:      4,
		Status:     model.BookStatusOnSale,
		SellerID:   seller.ID,
	}
	testDB.Create(book)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return orderController, router, testDB, buyer, seller, book
}

func TestOrderController_CreateOrder_Success(t *testing.T) {
	controller, router, _, buyer, _, book := setupOrderControllerTest(t)

	router.POST("/orders", func(c *gin.Context) {
		setUserIDInContext(c, buyer.ID)
		controller.CreateOrder(c)
	})

	body, _ := json.Marshal(gin.H{
		"product_id":       book.ID,
		"quantity":         2,
		"fulfillment_type": "logistics",
		"receiver_name":    "Zhang San",
		"receiver_phone":   "13800001111",
		"receiver_address": "Dorm 12, Building 3",
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Code int `json:"code"`
		Data struct {
			Order model.Order `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Code)
	assert.Equal(t, float64(36), response.Data.Order.TotalAmount)
	assert.Equal(t, model.OrderStatusPendingPay, response.Data.Order.Status)
}

func TestOrderController_CreateOrder_InsufficientStock(t *testing.T) {
	controller, router, _, buyer, _, book := setupOrderControllerTest(t)

	router.POST("/orders", func(c *gin.Context) {
		setUserIDInContext(c, buyer.ID)
		controller.CreateOrder(c)
	})

	body, _ := json.Marshal(gin.H{
		"product_id":       book.ID,
		"quantity":         99,
		"fulfillment_type": "logistics",
		"receiver_name":    "Zhang San",
		"receiver_phone":   "13800001111",
		"receiver_address": "Dorm 12",
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_INSUFFICIENT_STOCK")
}

func TestOrderController_CreateOrder_MissingFields(t *testing.T) {
	controller, router, _, buyer, _, _ := setupOrderControllerTest(t)

	router.POST("/orders", func(c *gin.Context) {
		setUserIDInContext(c, buyer.ID)
		controller.CreateOrder(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_ListOrders_RoleAndPagination(t *testing.T) {
	controller, router, testDB, buyer, seller, book := setupOrderControllerTest(t)

	orderRepo := repository.NewOrderRepository(testDB)
	for i := 0; i < 3; i++ {
		require.NoError(t, orderRepo.Create(&model.Order{
			OrderNo:         fmt.Sprintf("2025010100000%d0001", i),
			BuyerID:         buyer.ID,
			SellerID:        seller.ID,
			ProductID:       book.ID,
			Quantity:        1,
			TotalAmount:     18,
			FulfillmentType: model.FulfillmentLogistics,
			Status:          model.OrderStatusPendingPay,
		}))
	}

	router.GET("/orders", func(c *gin.Context) {
		setUserIDInContext(c, seller.ID)
		controller.ListOrders(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders?role=seller&page=1&page_size=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Orders     []model.Order        `json:"orders"`
			Pagination *repository.PageInfo `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data.Orders, 2)
	assert.Equal(t, int64(3), response.Data.Pagination.Total)
	assert.Equal(t, 2, response.Data.Pagination.TotalPages)
}

func TestOrderController_ListOrders_UnknownStatus(t *testing.T) {
	controller, router, _, buyer, _, _ := setupOrderControllerTest(t)

	router.GET("/orders", func(c *gin.Context) {
		setUserIDInContext(c, buyer.ID)
		controller.ListOrders(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders?status=paid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_GetOrder_Forbidden(t *testing.T) {
	controller, router, testDB, buyer, seller, book := setupOrderControllerTest(t)

	orderRepo := repository.NewOrderRepository(testDB)
	order := &model.Order{
		OrderNo:         "202501010000010001",
		BuyerID:         buyer.ID,
		SellerID:        seller.ID,
		ProductID:       book.ID,
		Quantity:        1,
		TotalAmount:     18,
		FulfillmentType: model.FulfillmentLogistics,
		Status:          model.OrderStatusPendingPay,
	}
	require.NoError(t, orderRepo.Create(order))

	stranger := &model.User{Phone: "13800003333", Email: "x@example.com", PasswordHash: "hash"}
	testDB.Create(stranger)

	router.GET("/orders/:id", func(c *gin.Context) {
		setUserIDInContext(c, stranger.ID)
		controller.GetOrder(c)
	})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderController_UpdateStatus_Transitions(t *testing.T) {
	controller, router, testDB, buyer, seller, book := setupOrderControllerTest(t)

	orderRepo := repository.NewOrderRepository(testDB)
	order := &model.Order{
		OrderNo:         "202501010000010001",
		BuyerID:         buyer.ID,
		SellerID:        seller.ID,
		ProductID:       book.ID,
		Quantity:        1,
		TotalAmount:     18,
		FulfillmentType: model.FulfillmentLogistics,
		Status:          model.OrderStatusPendingPay,
	}
	require.NoError(t, orderRepo.Create(order))

	currentUser := buyer.ID
	router.PUT("/orders/:id/status", func(c *gin.Context) {
		setUserIDInContext(c, currentUser)
		controller.UpdateStatus(c)
	})

	putStatus := func(status, logisticsNo string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(gin.H{"status": status, "logistics_no": logisticsNo})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Buyer pays
	w := putStatus("pending_ship", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Shipping without a tracking number is rejected
	currentUser = seller.ID
	w = putStatus("pending_receive", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_TRACKING_REQUIRED")

	w = putStatus("pending_receive", "SF123")
	assert.Equal(t, http.StatusOK, w.Code)

	// Buyer confirms receipt
	currentUser = buyer.ID
	w = putStatus("completed", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Illegal jump is rejected
	w = putStatus("pending_pay", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
