package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type CreateReviewRequest struct {
	OrderID   uint     `json:"order_id" binding:"required"`
	Rating    int      `json:"rating" binding:"required,min=1,max=5"`
	Content   string   `json:"content" binding:"max=500"`
	ImageURLs []string `json:"image_urls" binding:"max=3"`
}

// reviewView flattens a review with its parsed image list.
type reviewView struct {
	*model.Review
	Images   []string `json:"images"`
	Nickname string   `json:"reviewer_nickname,omitempty"`
	Avatar   string   `json:"reviewer_avatar,omitempty"`
}

func toReviewViews(reviews []model.Review) []reviewView {
	views := make([]reviewView, 0, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		view := reviewView{
			Review: r,
			Images: r.ImageList(),
		}
		if r.Reviewer.Profile != nil {
			view.Nickname = r.Reviewer.Profile.Nickname
			view.Avatar = r.Reviewer.Profile.AvatarURL
		}
		views = append(views, view)
	}
	return views
}

// CreateReview reviews a completed order
// POST /api/v1/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	review, err := ctrl.reviewService.CreateReview(userID, service.CreateReviewInput{
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apierrors.NotFound(c, apierrors.OrderNotFound, "order not found")
		case errors.Is(err, service.ErrReviewNotBuyer):
			apierrors.RespondWithError(c, http.StatusForbidden, apierrors.ReviewNotBuyer, err.Error())
		case errors.Is(err, service.ErrOrderNotCompleted):
			apierrors.UnprocessableEntity(c, apierrors.ReviewNotCompleted, err.Error())
		case errors.Is(err, service.ErrReviewExists):
			apierrors.Conflict(c, apierrors.ReviewAlreadyExists, err.Error())
		case errors.Is(err, service.ErrInvalidRating):
			apierrors.BadRequest(c, apierrors.ReviewInvalidRating, err.Error())
		case errors.Is(err, service.ErrReviewContentLong):
			apierrors.BadRequest(c, apierrors.ValidationTooLong, err.Error())
		case errors.Is(err, service.ErrTooManyImages):
			apierrors.BadRequest(c, apierrors.ReviewTooManyImages, err.Error())
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"order_id": req.OrderID,
			})
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.Created(c, gin.H{"review": reviewView{Review: review, Images: review.ImageList()}})
}

// ListProductReviews returns reviews for one listing
// GET /api/v1/books/:id/reviews
func (ctrl *ReviewController) ListProductReviews(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid book id")
		return
	}

	page, pageSize := parsePage(c)
	reviews, pageInfo, err := ctrl.reviewService.ListByProduct(id, page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{
		"reviews":    toReviewViews(reviews),
		"pagination": pageInfo,
	})
}

// ListSellerReviews returns reviews received by one seller
// GET /api/v1/users/:id/reviews
func (ctrl *ReviewController) ListSellerReviews(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid user id")
		return
	}

	page, pageSize := parsePage(c)
	reviews, pageInfo, err := ctrl.reviewService.ListBySeller(id, page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{
		"reviews":    toReviewViews(reviews),
		"pagination": pageInfo,
	})
}
