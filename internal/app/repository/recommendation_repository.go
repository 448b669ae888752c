package repository

import (
	"time"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

// RecommendationRepository supplies the candidate queries behind the
// recommendation waterfall. Every query returns only on-sale books and
// excludes the requesting user's own listings.
type RecommendationRepository interface {
	SchoolPopular(schoolID, excludeSellerID uint, limit int) ([]model.Book, error)
	PreferredCategories(buyerID uint, since time.Time) ([]uint, error)
	PopularInCategories(categoryIDs []uint, excludeSellerID uint, limit int) ([]model.Book, error)
	SimilarBuyers(buyerID uint, limit int) ([]uint, error)
	BoughtByBuyers(buyerIDs []uint, excludeBuyerID uint, limit int) ([]model.Book, error)
	GlobalTrending(excludeSellerID uint, limit int) ([]model.Book, error)
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) onSale(excludeSellerID uint) *gorm.DB {
	query := r.db.Model(&model.Book{}).Preload("Category").
		Where("book.status = ?", model.BookStatusOnSale)
	if excludeSellerID != 0 {
		query = query.Where("book.seller_id <> ?", excludeSellerID)
	}
	return query
}

// SchoolPopular returns the most viewed on-sale books listed by sellers
// from the given school.
func (r *recommendationRepository) SchoolPopular(schoolID, excludeSellerID uint, limit int) ([]model.Book, error) {
	var books []model.Book
	err := r.onSale(excludeSellerID).
		Joins("JOIN users ON users.user_id = book.seller_id").
		Where("users.school_id = ?", schoolID).
		Order("book.view_count DESC").
		Order("book.created_at DESC").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		logger.Error("Failed to load school popular books", err, map[string]interface{}{
			"school_id": schoolID,
		})
		return nil, err
	}
	return books, nil
}

type categoryScore struct {
	CategoryID uint
	Score      int
}

// PreferredCategories scores the buyer's recent activity: each completed
// purchase counts 3, each review counts 2. Categories come back ordered
// by score.
func (r *recommendationRepository) PreferredCategories(buyerID uint, since time.Time) ([]uint, error) {
	purchases := r.db.Model(&model.Order{}).
		Select("book.category_id AS category_id, 3 AS weight").
		Joins("JOIN book ON book.id = orders.product_id").
		Where("orders.buyer_id = ? AND orders.status = ? AND orders.created_at >= ?",
			buyerID, model.OrderStatusCompleted, since)

	reviews := r.db.Model(&model.Review{}).
		Select("book.category_id AS category_id, 2 AS weight").
		Joins("JOIN book ON book.id = reviews.product_id").
		Where("reviews.reviewer_id = ? AND reviews.created_at >= ?", buyerID, since)

	var scores []categoryScore
	err := r.db.Table("(? UNION ALL ?) AS activity", purchases, reviews).
		Select("activity.category_id AS category_id, SUM(activity.weight) AS score").
		Group("activity.category_id").
		Order("score DESC").
		Scan(&scores).Error
	if err != nil {
		logger.Error("Failed to score preferred categories", err, map[string]interface{}{
			"buyer_id": buyerID,
		})
		return nil, err
	}

	ids := make([]uint, 0, len(scores))
	for _, s := range scores {
		ids = append(ids, s.CategoryID)
	}
	return ids, nil
}

// PopularInCategories returns on-sale books from the given categories,
// best sellers first and most viewed as the tiebreak.
func (r *recommendationRepository) PopularInCategories(categoryIDs []uint, excludeSellerID uint, limit int) ([]model.Book, error) {
	if len(categoryIDs) == 0 {
		return []model.Book{}, nil
	}

	salesCounts := r.db.Model(&model.Order{}).
		Select("orders.product_id, COUNT(*) AS count").
		Where("orders.status = ?", model.OrderStatusCompleted).
		Group("orders.product_id")

	var books []model.Book
	err := r.onSale(excludeSellerID).
		Joins("LEFT JOIN (?) AS sales_counts ON sales_counts.product_id = book.id", salesCounts).
		Where("book.category_id IN ?", categoryIDs).
		Order("COALESCE(sales_counts.count, 0) DESC").
		Order("book.view_count DESC").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		logger.Error("Failed to load popular books in categories", err, map[string]interface{}{
			"categories": len(categoryIDs),
		})
		return nil, err
	}
	return books, nil
}

// SimilarBuyers finds other buyers whose completed purchases overlap the
// given buyer's completed purchases.
func (r *recommendationRepository) SimilarBuyers(buyerID uint, limit int) ([]uint, error) {
	bought := r.db.Model(&model.Order{}).
		Select("product_id").
		Where("buyer_id = ? AND status = ?", buyerID, model.OrderStatusCompleted)

	var ids []uint
	err := r.db.Model(&model.Order{}).
		Distinct("buyer_id").
		Where("product_id IN (?) AND buyer_id <> ? AND status = ?",
			bought, buyerID, model.OrderStatusCompleted).
		Limit(limit).
		Pluck("buyer_id", &ids).Error
	if err != nil {
		logger.Error("Failed to find similar buyers", err, map[string]interface{}{
			"buyer_id": buyerID,
		})
		return nil, err
	}
	return ids, nil
}

// BoughtByBuyers returns on-sale books the given buyers completed
// purchases of, most purchased first. Products the requesting buyer has
// already bought are excluded.
func (r *recommendationRepository) BoughtByBuyers(buyerIDs []uint, excludeBuyerID uint, limit int) ([]model.Book, error) {
	if len(buyerIDs) == 0 {
		return []model.Book{}, nil
	}

	peerPurchases := r.db.Model(&model.Order{}).
		Select("orders.product_id, COUNT(*) AS count").
		Where("orders.buyer_id IN ? AND orders.status = ?", buyerIDs, model.OrderStatusCompleted).
		Group("orders.product_id")

	alreadyBought := r.db.Model(&model.Order{}).
		Select("product_id").
		Where("buyer_id = ? AND status = ?", excludeBuyerID, model.OrderStatusCompleted)

	var books []model.Book
	err := r.onSale(excludeBuyerID).
		Joins("JOIN (?) AS peer_purchases ON peer_purchases.product_id = book.id", peerPurchases).
		Where("book.id NOT IN (?)", alreadyBought).
		Order("peer_purchases.count DESC").
		Order("book.view_count DESC").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		logger.Error("Failed to load books bought by similar buyers", err, map[string]interface{}{
			"buyers": len(buyerIDs),
		})
		return nil, err
	}
	return books, nil
}

// GlobalTrending is the last-resort fill: most sold on-sale books
// platform-wide, most viewed as the tiebreak.
func (r *recommendationRepository) GlobalTrending(excludeSellerID uint, limit int) ([]model.Book, error) {
	salesCounts := r.db.Model(&model.Order{}).
		Select("orders.product_id, COUNT(*) AS count").
		Where("orders.status = ?", model.OrderStatusCompleted).
		Group("orders.product_id")

	var books []model.Book
	err := r.onSale(excludeSellerID).
		Joins("LEFT JOIN (?) AS sales_counts ON sales_counts.product_id = book.id", salesCounts).
		Order("COALESCE(sales_counts.count, 0) DESC").
		Order("book.view_count DESC").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		logger.Error("Failed to load trending books", err, nil)
		return nil, err
	}
	return books, nil
}
