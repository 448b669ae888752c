package service

import (
	"errors"
	"math"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotBuyer     = errors.New("only the buyer can review this order")
	ErrOrderNotCompleted  = errors.New("only completed orders can be reviewed")
	ErrReviewExists       = errors.New("order has already been reviewed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrReviewContentLong  = errors.New("review content must not exceed 500 characters")
	ErrTooManyImages      = errors.New("a review may include at most 3 images")
)

const (
	maxReviewContentLen = 500
	maxReviewImages     = 3
)

type CreateReviewInput struct {
	OrderID   uint
	Rating    int
	Content   string
	ImageURLs []string
}

type ReviewService interface {
	CreateReview(reviewerID uint, input CreateReviewInput) (*model.Review, error)
	ListByProduct(productID uint, page, pageSize int) ([]model.Review, *repository.PageInfo, error)
	ListBySeller(sellerID uint, page, pageSize int) ([]model.Review, *repository.PageInfo, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
	}
}

// roundRating keeps seller ratings at one decimal place.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func (s *reviewService) CreateReview(reviewerID uint, input CreateReviewInput) (*model.Review, error) {
	logger.Info("Creating review", map[string]interface{}{
		"order_id":    input.OrderID,
		"reviewer_id": reviewerID,
		"rating":      input.Rating,
	})

	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if len([]rune(input.Content)) > maxReviewContentLen {
		return nil, ErrReviewContentLong
	}
	if len(input.ImageURLs) > maxReviewImages {
		return nil, ErrTooManyImages
	}

	order, err := s.orderRepo.FindByID(input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != reviewerID {
		logger.Warn("Review rejected: not the buyer", map[string]interface{}{
			"order_id": input.OrderID,
			"user_id":  reviewerID,
		})
		return nil, ErrReviewNotBuyer
	}
	if order.Status != model.OrderStatusCompleted {
		return nil, ErrOrderNotCompleted
	}

	exists, err := s.reviewRepo.ExistsForOrder(input.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	review := &model.Review{
		OrderID:    input.OrderID,
		ProductID:  order.ProductID,
		ReviewerID: reviewerID,
		SellerID:   order.SellerID,
		Rating:     input.Rating,
		Content:    input.Content,
	}
	review.SetImageList(input.ImageURLs)
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	if err := s.refreshSellerRating(order.SellerID); err != nil {
		// The review itself landed; a stale aggregate self-heals on the
		// next review.
		logger.Error("Failed to refresh seller rating", err, map[string]interface{}{
			"seller_id": order.SellerID,
		})
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id": review.ID,
		"order_id":  review.OrderID,
	})
	return review, nil
}

func (s *reviewService) refreshSellerRating(sellerID uint) error {
	avg, count, err := s.reviewRepo.SellerStats(sellerID)
	if err != nil {
		return err
	}
	if count == 0 {
		// No reviews yet keeps the default rating.
		avg = 5.0
	}
	return s.userRepo.UpdateProfileRating(sellerID, roundRating(avg), int(count))
}

func (s *reviewService) ListByProduct(productID uint, page, pageSize int) ([]model.Review, *repository.PageInfo, error) {
	return s.reviewRepo.ListByProduct(productID, page, pageSize)
}

func (s *reviewService) ListBySeller(sellerID uint, page, pageSize int) ([]model.Review, *repository.PageInfo, error) {
	return s.reviewRepo.ListBySeller(sellerID, page, pageSize)
}
