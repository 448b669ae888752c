package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
	"github.com/zywang/bookmart-backend/pkg/util"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname"`
	SchoolID *uint  `json:"school_id"`
}

type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type authPayload struct {
	User   interface{}     `json:"user"`
	Tokens *util.TokenPair `json:"tokens"`
}

// Register creates a new user account
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	user, tokens, err := ctrl.authService.Register(service.RegisterInput{
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		SchoolID: req.SchoolID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			apierrors.BadRequest(c, apierrors.AuthInvalidPhone, err.Error())
		case errors.Is(err, service.ErrPhoneAlreadyExists):
			apierrors.Conflict(c, apierrors.AuthPhoneExists, err.Error())
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apierrors.Conflict(c, apierrors.AuthEmailExists, err.Error())
		case errors.Is(err, service.ErrSchoolNotFound):
			apierrors.NotFound(c, apierrors.SchoolNotFound, err.Error())
		default:
			log.Error("Registration failed", err, map[string]interface{}{
				"phone": req.Phone,
			})
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.Created(c, authPayload{User: user, Tokens: tokens})
}

// Login authenticates with a phone number or email plus password
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Account, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.AuthInvalidCredentials, "invalid account or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"account": req.Account,
		})
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, authPayload{User: user, Tokens: tokens})
}

// Refresh exchanges a refresh token for a new token pair
// POST /api/v1/auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	tokens, err := ctrl.authService.RefreshTokens(req.RefreshToken)
	if err != nil {
		apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.AuthTokenInvalid, "invalid refresh token")
		return
	}

	apierrors.OK(c, gin.H{"tokens": tokens})
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
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
