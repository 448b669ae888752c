package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/db"
	"gorm.io/gorm"
)

type recommendFixture struct {
	service  RecommendService
	db       *gorm.DB
	user     *model.User
	school   *model.School
	category *model.Category
}

func setupRecommendServiceTest(t *testing.T) *recommendFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	recommendRepo := repository.NewRecommendationRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	recommendService := NewRecommendService(recommendRepo, userRepo)

	school := &model.School{Name: "Zhejiang University", City: "Hangzhou", Active: true}
	testDB.Create(school)

	user := &model.User{
		Phone:        "13800001111",
		Email:        "reader@example.com",
		PasswordHash: "hash",
	}
	testDB.Create(user)
	testDB.Create(&model.Profile{UserID: user.ID, Nickname: "reader", SchoolID: &school.ID, AvgRating: 5.0})

	category := &model.Category{Name: "Textbooks"}
	testDB.Create(category)

	return &recommendFixture{
		service:  recommendService,
		db:       testDB,
		user:     user,
		school:   school,
		category: category,
	}
}

// addSeller creates a seller, optionally bound to a school, with a profile.
func (f *recommendFixture) addSeller(t *testing.T, phone, email string, schoolID *uint) *model.User {
	t.Helper()
	seller := &model.User{Phone: phone, Email: email, PasswordHash: "hash"}
	require.NoError(t, f.db.Create(seller).Error)
	require.NoError(t, f.db.Create(&model.Profile{
		UserID:    seller.ID,
		Nickname:  "seller-" + phone[len(phone)-4:],
		SchoolID:  schoolID,
		AvgRating: 5.0,
	}).Error)
	return seller
}

func (f *recommendFixture) addBook(t *testing.T, sellerID uint, name string, views int) *model.Book {
	t.Helper()
	book := &model.Book{
		Name:       name,
		CategoryID: f.category.ID,
		Price:      10,
		Stock:      1,
		Status:     model.BookStatusOnSale,
		SellerID:   sellerID,
		ViewCount:  views,
	}
	require.NoError(t, f.db.Create(book).Error)
	return book
}

func TestRecommendService_UnknownUser(t *testing.T) {
	f := setupRecommendServiceTest(t)

	books, err := f.service.Recommend(9999, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, books)
}

func TestRecommendService_SchoolListingsComeFirst(t *testing.T) {
	f := setupRecommendServiceTest(t)

	campusSeller := f.addSeller(t, "13800002222", "campus@example.com", &f.school.ID)
	outsideSeller := f.addSeller(t, "13800003333", "outside@example.com", nil)

	campusHot := f.addBook(t, campusSeller.ID, "Campus Hot", 100)
	f.addBook(t, campusSeller.ID, "Campus Quiet", 1)
	f.addBook(t, outsideSeller.ID, "Outside A", 500)
	f.addBook(t, outsideSeller.ID, "Outside B", 400)

	recs, err := f.service.Recommend(f.user.ID, 5)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	// The school quota (40% of 5, rounded down = 2) leads the feed,
	// most viewed first; trending fills the rest.
	assert.Equal(t, campusHot.ID, recs[0].ID)
	assert.Equal(t, "Campus Quiet", recs[1].Name)
	assert.Equal(t, "Outside A", recs[2].Name)
}

func TestRecommendService_SchoolQuotaRoundsDown(t *testing.T) {
	f := setupRecommendServiceTest(t)

	campusSeller := f.addSeller(t, "13800002222", "campus@example.com", &f.school.ID)
	outsideSeller := f.addSeller(t, "13800003333", "outside@example.com", nil)

	for i := 0; i < 4; i++ {
		f.addBook(t, campusSeller.ID, "Campus", 10-i)
	}
	f.addBook(t, outsideSeller.ID, "Outside", 999)

	// 40% of 4 rounds down to 1 campus slot, not 2.
	recs, err := f.service.Recommend(f.user.ID, 4)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "seller-2222", recs[0].SellerNickname)
	assert.Equal(t, "Outside", recs[1].Name)
}

func TestRecommendService_ExcludesOwnListings(t *testing.T) {
	f := setupRecommendServiceTest(t)

	other := f.addSeller(t, "13800002222", "other@example.com", nil)
	f.addBook(t, other.ID, "Someone Else's Book", 10)
	f.addBook(t, f.user.ID, "My Own Listing", 999)

	recs, err := f.service.Recommend(f.user.ID, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Someone Else's Book", recs[0].Name)
}

func TestRecommendService_NoDuplicates(t *testing.T) {
	f := setupRecommendServiceTest(t)

	// The campus seller's book is eligible for both the school stage and
	// the trending fill; it must appear only once.
	campusSeller := f.addSeller(t, "13800002222", "campus@example.com", &f.school.ID)
	f.addBook(t, campusSeller.ID, "Shared Book", 50)

	recs, err := f.service.Recommend(f.user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecommendService_PreferredCategoriesFromPurchases(t *testing.T) {
	f := setupRecommendServiceTest(t)

	seller := f.addSeller(t, "13800002222", "seller@example.com", nil)

	otherCategory := &model.Category{Name: "Literature"}
	require.NoError(t, f.db.Create(otherCategory).Error)

	bought := f.addBook(t, seller.ID, "Bought Before", 1)

	// A completed purchase in the fixture category within the window
	require.NoError(t, f.db.Create(&model.Order{
		OrderNo:         "202501010000010001",
		BuyerID:         f.user.ID,
		SellerID:        seller.ID,
		ProductID:       bought.ID,
		Quantity:        1,
		TotalAmount:     10,
		FulfillmentType: model.FulfillmentLogistics,
		Status:          model.OrderStatusCompleted,
		CreatedAt:       time.Now().Add(-24 * time.Hour),
	}).Error)

	preferred := f.addBook(t, seller.ID, "Same Category Pick", 5)

	literature := &model.Book{
		Name:       "Different Category",
		CategoryID: otherCategory.ID,
		Price:      10,
		Stock:      1,
		Status:     model.BookStatusOnSale,
		SellerID:   seller.ID,
		ViewCount:  9999,
	}
	require.NoError(t, f.db.Create(literature).Error)

	recs, err := f.service.Recommend(f.user.ID, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// The preferred-category stage fills the feed before the trending
	// stage, so both picks come from the purchased category even though
	// the literature title has far more views.
	names := []string{recs[0].Name, recs[1].Name}
	assert.Contains(t, names, preferred.Name)
	assert.NotContains(t, names, "Different Category")
}

func TestRecommendService_TrendingFillsRemainder(t *testing.T) {
	f := setupRecommendServiceTest(t)

	seller := f.addSeller(t, "13800002222", "seller@example.com", nil)
	for i := 0; i < 5; i++ {
		f.addBook(t, seller.ID, "Trending", 5-i)
	}

	recs, err := f.service.Recommend(f.user.ID, 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	// Seller identity is attached from the profile
	assert.Equal(t, "seller-2222", recs[0].SellerNickname)
}

func TestRecommendService_SkipsOffSaleBooks(t *testing.T) {
	f := setupRecommendServiceTest(t)

	seller := f.addSeller(t, "13800002222", "seller@example.com", nil)
	book := f.addBook(t, seller.ID, "Pulled Listing", 10)
	require.NoError(t, f.db.Model(&model.Book{}).Where("id = ?", book.ID).
		Update("status", model.BookStatusOffSale).Error)

	recs, err := f.service.Recommend(f.user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 0)
}
