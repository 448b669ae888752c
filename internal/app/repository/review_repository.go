package repository

import (
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *model.Review) error
	ExistsForOrder(orderID uint) (bool, error)
	ListByProduct(productID uint, page, pageSize int) ([]model.Review, *PageInfo, error)
	ListBySeller(sellerID uint, page, pageSize int) ([]model.Review, *PageInfo, error)
	SellerStats(sellerID uint) (avg float64, count int64, err error)
	ProductStats(productID uint) (avg float64, count int64, err error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"order_id":    review.OrderID,
		"reviewer_id": review.ReviewerID,
		"rating":      review.Rating,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"order_id": review.OrderID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) ExistsForOrder(orderID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Review{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reviewRepository) ListByProduct(productID uint, page, pageSize int) ([]model.Review, *PageInfo, error) {
	query := r.db.Model(&model.Review{}).
		Preload("Reviewer").
		Preload("Reviewer.Profile").
		Where("product_id = ?", productID).
		Order("created_at DESC")

	var reviews []model.Review
	pageInfo, err := Paginate(query, page, pageSize, &reviews)
	if err != nil {
		return nil, nil, err
	}
	return reviews, pageInfo, nil
}

func (r *reviewRepository) ListBySeller(sellerID uint, page, pageSize int) ([]model.Review, *PageInfo, error) {
	query := r.db.Model(&model.Review{}).
		Preload("Reviewer").
		Preload("Reviewer.Profile").
		Preload("Product").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC")

	var reviews []model.Review
	pageInfo, err := Paginate(query, page, pageSize, &reviews)
	if err != nil {
		return nil, nil, err
	}
	return reviews, pageInfo, nil
}

type ratingAggregate struct {
	Avg   float64
	Count int64
}

func (r *reviewRepository) SellerStats(sellerID uint) (float64, int64, error) {
	var agg ratingAggregate
	err := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("seller_id = ?", sellerID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}
	return agg.Avg, agg.Count, nil
}

func (r *reviewRepository) ProductStats(productID uint) (float64, int64, error) {
	var agg ratingAggregate
	err := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}
	return agg.Avg, agg.Count, nil
}
