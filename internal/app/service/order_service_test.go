package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/db"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *model.User, *model.User, *model.Book) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	bookRepo := repository.NewBookRepository(testDB)
	schoolRepo := repository.NewSchoolRepository(testDB)
	orderService := NewOrderService(orderRepo, bookRepo, schoolRepo)

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
		Name:       "Calculus Early Transcendentals",
		Author:     "James Stewart",
		CategoryID: category.ID,
		Condition:  "like_new",
		Price:      20,
		Stock:      3,
		Status:     model.BookStatusOnSale,
		SellerID:   seller.ID,
	}
	testDB.Create(book)

	return orderService, testDB, buyer, seller, book
}

func logisticsInput(productID uint, quantity int) CreateOrderInput {
	return CreateOrderInput{
		ProductID:       productID,
		Quantity:        quantity,
		FulfillmentType: model.FulfillmentLogistics,
		ReceiverName:    "Zhang San",
		ReceiverPhone:   "13800001111",
		ReceiverAddress: "Dorm 12, Building 3",
	}
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	orderService, testDB, buyer, seller, book := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 2))
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Len(t, order.OrderNo, 18)
	assert.Equal(t, buyer.ID, order.BuyerID)
	assert.Equal(t, seller.ID, order.SellerID)
	assert.Equal(t, float64(40), order.TotalAmount)
	assert.Equal(t, model.OrderStatusPendingPay, order.Status)

	// Verify stock decreased
	var updated model.Book
	testDB.First(&updated, book.ID)
	assert.Equal(t, 1, updated.Stock)
}

func TestOrderService_CreateOrder_SelfPickup(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	school := &model.School{Name: "Tsinghua University", City: "Beijing", Active: true}
	testDB.Create(school)

	order, err := orderService.CreateOrder(buyer.ID, CreateOrderInput{
		ProductID:        book.ID,
		Quantity:         1,
		FulfillmentType:  model.FulfillmentSelfPickup,
		PickupLocationID: &school.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, order.PickupLocationID)
	assert.Equal(t, school.ID, *order.PickupLocationID)
}

func TestOrderService_CreateOrder_SelfPickupUnknownSchool(t *testing.T) {
	orderService, _, buyer, _, book := setupOrderServiceTest(t)

	missing := uint(9999)
	order, err := orderService.CreateOrder(buyer.ID, CreateOrderInput{
		ProductID:        book.ID,
		Quantity:         1,
		FulfillmentType:  model.FulfillmentSelfPickup,
		PickupLocationID: &missing,
	})
	assert.ErrorIs(t, err, ErrSchoolNotFound)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_SelfPickupInactiveSchool(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	delisted := &model.School{Name: "Closed Campus", City: "Beijing", Active: false}
	testDB.Create(delisted)

	order, err := orderService.CreateOrder(buyer.ID, CreateOrderInput{
		ProductID:        book.ID,
		Quantity:         1,
		FulfillmentType:  model.FulfillmentSelfPickup,
		PickupLocationID: &delisted.ID,
	})
	assert.ErrorIs(t, err, ErrSchoolNotFound)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 4))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)

	// No phantom order row, stock untouched
	var count int64
	testDB.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var updated model.Book
	testDB.First(&updated, book.ID)
	assert.Equal(t, 3, updated.Stock)
}

func TestOrderService_CreateOrder_StockDrainedMidCreation(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	// Simulate a rival sale emptying the shelf after the order row is
	// written but before the conditional stock decrement runs.
	err := testDB.Callback().Create().After("gorm:create").Register("drain_stock", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*model.Order); !ok {
			return
		}
		_, execErr := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"UPDATE book SET stock = 0 WHERE id = ?", book.ID)
		require.NoError(t, execErr)
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		testDB.Callback().Create().Remove("drain_stock")
	})

	order, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)

	// The half-created order was unwound.
	var count int64
	testDB.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestOrderService_CreateOrder_OwnListing(t *testing.T) {
	orderService, _, _, seller, book := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(seller.ID, logisticsInput(book.ID, 1))
	assert.ErrorIs(t, err, ErrOwnListing)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_NotOnSale(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	testDB.Model(&model.Book{}).Where("id = ?", book.ID).
		Update("status", model.BookStatusOffSale)

	order, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	assert.ErrorIs(t, err, ErrBookNotOnSale)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_MissingReceiver(t *testing.T) {
	orderService, _, buyer, _, book := setupOrderServiceTest(t)

	input := logisticsInput(book.ID, 1)
	input.ReceiverAddress = ""

	order, err := orderService.CreateOrder(buyer.ID, input)
	assert.ErrorIs(t, err, ErrInvalidFulfillment)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_InvalidQuantity(t *testing.T) {
	orderService, _, buyer, _, book := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 0))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Nil(t, order)
}

func TestOrderService_GetOrder_MasksPhone(t *testing.T) {
	orderService, _, buyer, seller, book := setupOrderServiceTest(t)

	created, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)

	order, err := orderService.GetOrder(seller.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "138****1111", order.ReceiverPhone)
}

func TestOrderService_GetOrder_NotParticipant(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	created, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)

	stranger := &model.User{
		Phone:        "13800003333",
		Email:        "stranger@example.com",
		PasswordHash: "hash",
	}
	testDB.Create(stranger)

	order, err := orderService.GetOrder(stranger.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotOrderParticipant)
	assert.Nil(t, order)
}

func TestOrderService_UpdateOrderStatus_FullLifecycle(t *testing.T) {
	orderService, _, buyer, seller, book := setupOrderServiceTest(t)

	created, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)

	// Buyer pays
	order, err := orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusPendingShip, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPendingShip, order.Status)

	// Seller ships with a tracking number
	order, err = orderService.UpdateOrderStatus(seller.ID, created.ID, model.OrderStatusPendingReceive, "SF1234567890")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPendingReceive, order.Status)
	assert.Equal(t, "SF1234567890", order.LogisticsNo)

	// Buyer confirms receipt
	order, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, order.Status)

	// Completed is terminal
	_, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusCancelled, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateOrderStatus_ShipRequiresLogisticsNo(t *testing.T) {
	orderService, _, buyer, seller, book := setupOrderServiceTest(t)

	created, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)

	_, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusPendingShip, "")
	require.NoError(t, err)

	_, err = orderService.UpdateOrderStatus(seller.ID, created.ID, model.OrderStatusPendingReceive, "")
	assert.ErrorIs(t, err, ErrLogisticsNoRequired)
}

func TestOrderService_UpdateOrderStatus_EitherParticipantMayAct(t *testing.T) {
	orderService, _, buyer, seller, book := setupOrderServiceTest(t)

	created, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)

	// The seller may confirm payment received, and the buyer may record
	// the shipment: legal edges are open to both participants.
	order, err := orderService.UpdateOrderStatus(seller.ID, created.ID, model.OrderStatusPendingShip, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPendingShip, order.Status)

	order, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusPendingReceive, "SF1234567890")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPendingReceive, order.Status)

	order, err = orderService.UpdateOrderStatus(seller.ID, created.ID, model.OrderStatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, order.Status)
}

func TestOrderService_UpdateOrderStatus_SelfPickupStillNeedsTrackingNo(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	school := &model.School{Name: "Tsinghua University", City: "Beijing", Active: true}
	testDB.Create(school)

	created, err := orderService.CreateOrder(buyer.ID, CreateOrderInput{
		ProductID:        book.ID,
		Quantity:         1,
		FulfillmentType:  model.FulfillmentSelfPickup,
		PickupLocationID: &school.ID,
	})
	require.NoError(t, err)

	_, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusPendingShip, "")
	require.NoError(t, err)

	// The tracking requirement on pending_receive does not depend on the
	// fulfillment type.
	_, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusPendingReceive, "")
	assert.ErrorIs(t, err, ErrLogisticsNoRequired)

	order, err := orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusPendingReceive, "PICKUP-001")
	require.NoError(t, err)
	assert.Equal(t, "PICKUP-001", order.LogisticsNo)
}

func TestOrderService_UpdateOrderStatus_CancelRestoresStock(t *testing.T) {
	orderService, testDB, buyer, _, book := setupOrderServiceTest(t)

	created, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 2))
	require.NoError(t, err)

	var afterOrder model.Book
	testDB.First(&afterOrder, book.ID)
	require.Equal(t, 1, afterOrder.Stock)

	order, err := orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)

	var afterCancel model.Book
	testDB.First(&afterCancel, book.ID)
	assert.Equal(t, 3, afterCancel.Stock)
}

func TestOrderService_UpdateOrderStatus_InvalidTransition(t *testing.T) {
	orderService, _, buyer, _, book := setupOrderServiceTest(t)

	created, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)

	// pending_pay cannot jump straight to completed
	_, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Unknown status is rejected outright
	_, err = orderService.UpdateOrderStatus(buyer.ID, created.ID, model.OrderStatus("paid"), "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_ListOrders_ByRole(t *testing.T) {
	orderService, _, buyer, seller, book := setupOrderServiceTest(t)

	_, err := orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)
	_, err = orderService.CreateOrder(buyer.ID, logisticsInput(book.ID, 1))
	require.NoError(t, err)

	asBuyer, pageInfo, err := orderService.ListOrders(buyer.ID, repository.OrderRoleBuyer, nil, 1, 10)
	require.NoError(t, err)
	assert.Len(t, asBuyer, 2)
	assert.Equal(t, int64(2), pageInfo.Total)

	asSeller, _, err := orderService.ListOrders(seller.ID, repository.OrderRoleSeller, nil, 1, 10)
	require.NoError(t, err)
	assert.Len(t, asSeller, 2)

	sellerAsBuyer, _, err := orderService.ListOrders(seller.ID, repository.OrderRoleBuyer, nil, 1, 10)
	require.NoError(t, err)
	assert.Len(t, sellerAsBuyer, 0)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "138****5678", maskPhone("13812345678"))
	assert.Equal(t, "1234567", maskPhone("1234567")) // too short to mask
	assert.Equal(t, "", maskPhone(""))
}
