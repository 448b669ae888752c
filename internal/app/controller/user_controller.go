package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type UpdateProfileRequest struct {
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatar_url"`
	Gender    *int    `json:"gender" binding:"omitempty,oneof=0 1 2"`
	BirthDate *string `json:"birth_date"`
	Bio       *string `json:"bio"`
	SchoolID  *uint   `json:"school_id"`
}

type BindSchoolRequest struct {
	SchoolID uint `json:"school_id" binding:"required"`
}

// GetProfile returns the authenticated user's profile
// GET /api/v1/users/me
func (ctrl *UserController) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apierrors.NotFound(c, apierrors.UserNotFound, "user not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{"user": user})
}

// GetPublicProfile returns another user's public profile
// GET /api/v1/users/:id
func (ctrl *UserController) GetPublicProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid user id")
		return
	}

	user, err := ctrl.userService.GetProfile(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apierrors.NotFound(c, apierrors.UserNotFound, "user not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	// Only the public surface of the account.
	payload := gin.H{"user_id": user.ID}
	if user.Profile != nil {
		payload["nickname"] = user.Profile.Nickname
		payload["avatar_url"] = user.Profile.AvatarURL
		payload["bio"] = user.Profile.Bio
		payload["avg_rating"] = user.Profile.AvgRating
		payload["review_count"] = user.Profile.ReviewCount
		payload["school"] = user.Profile.School
	}
	apierrors.OK(c, payload)
}

// UpdateProfile applies a partial profile edit
// PUT /api/v1/users/me
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	profile, err := ctrl.userService.UpdateProfile(userID, service.ProfileUpdate{
		Nickname:  req.Nickname,
		AvatarURL: req.AvatarURL,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
		Bio:       req.Bio,
		SchoolID:  req.SchoolID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFieldsToSet):
			apierrors.BadRequest(c, apierrors.ValidationRequired, err.Error())
		case errors.Is(err, service.ErrInvalidBirthDate):
			apierrors.BadRequest(c, apierrors.ValidationInvalidFormat, err.Error())
		case errors.Is(err, service.ErrSchoolNotFound):
			apierrors.NotFound(c, apierrors.SchoolNotFound, err.Error())
		case errors.Is(err, service.ErrProfileNotFound):
			apierrors.NotFound(c, apierrors.ProfileNotFound, err.Error())
		default:
			log.Error("Failed to update profile", err, map[string]interface{}{
				"user_id": userID,
			})
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{"profile": profile})
}

// GetStats returns listing/order/review counters for the user
// GET /api/v1/users/me/stats
func (ctrl *UserController) GetStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stats, err := ctrl.userService.GetStats(userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			apierrors.NotFound(c, apierrors.ProfileNotFound, "profile not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{"stats": stats})
}

// BindSchool attaches the user to a school
// POST /api/v1/users/me/school
func (ctrl *UserController) BindSchool(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req BindSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	profile, err := ctrl.userService.BindSchool(userID, req.SchoolID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSchoolNotFound):
			apierrors.NotFound(c, apierrors.SchoolNotFound, err.Error())
		case errors.Is(err, service.ErrProfileNotFound):
			apierrors.NotFound(c, apierrors.ProfileNotFound, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{"profile": profile})
}
