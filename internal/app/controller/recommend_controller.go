package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type RecommendController struct {
	recommendService service.RecommendService
}

func NewRecommendController(recommendService service.RecommendService) *RecommendController {
	return &RecommendController{
		recommendService: recommendService,
	}
}

// Recommend returns the personalized book feed
// GET /api/v1/recommendations?count=..
func (ctrl *RecommendController) Recommend(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count < 1 || count > 50 {
		count = 10
	}

	books, err := ctrl.recommendService.Recommend(userID, count)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apierrors.NotFound(c, apierrors.UserNotFound, "user not found")
			return
		}
		log.Error("Failed to build recommendations", err, map[string]interface{}{
			"user_id": userID,
		})
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{
		"books": books,
		"count": len(books),
	})
}
