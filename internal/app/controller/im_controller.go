package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type IMController struct {
	imService service.IMService
}

func NewIMController(imService service.IMService) *IMController {
	return &IMController{
		imService: imService,
	}
}

// GetCredential issues the chat sign-in credential for the caller
// GET /api/v1/im/credential
func (ctrl *IMController) GetCredential(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	cred, err := ctrl.imService.IssueCredential(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apierrors.NotFound(c, apierrors.UserNotFound, "user not found")
			return
		}
		log.Error("Failed to issue chat credential", err, map[string]interface{}{
			"user_id": userID,
		})
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{"credential": cred})
}

// OpenConversation resolves the one-to-one channel with another user
// GET /api/v1/im/conversations/:peer_id
func (ctrl *IMController) OpenConversation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	peerID, ok := parseID(c, "peer_id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid peer id")
		return
	}

	conv, err := ctrl.imService.OpenConversation(userID, peerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatWithSelf):
			apierrors.BadRequest(c, apierrors.ChatSelfForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			apierrors.NotFound(c, apierrors.UserNotFound, "user not found")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{"conversation": conv})
}
