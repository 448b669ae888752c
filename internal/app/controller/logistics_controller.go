package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
	"github.com/zywang/bookmart-backend/pkg/logistics/kuaidi100"
)

type LogisticsController struct {
	logisticsService service.LogisticsService
}

func NewLogisticsController(logisticsService service.LogisticsService) *LogisticsController {
	return &LogisticsController{
		logisticsService: logisticsService,
	}
}

// TrackOrder returns the shipment route of an order
// GET /api/v1/orders/:id/logistics?carrier=..
func (ctrl *LogisticsController) TrackOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid order id")
		return
	}

	carrier := c.Query("carrier")
	if carrier == "" {
		apierrors.BadRequest(c, apierrors.ValidationRequired, "carrier is required")
		return
	}

	result, err := ctrl.logisticsService.TrackOrder(c.Request.Context(), userID, id, carrier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apierrors.NotFound(c, apierrors.OrderNotFound, "order not found")
		case errors.Is(err, service.ErrNotOrderParticipant):
			apierrors.RespondWithError(c, http.StatusForbidden, apierrors.OrderNotParticipant, err.Error())
		case errors.Is(err, service.ErrNoLogisticsNo):
			apierrors.UnprocessableEntity(c, apierrors.LogisticsNoTracking, err.Error())
		case errors.Is(err, kuaidi100.ErrUnknownCarrier):
			apierrors.BadRequest(c, apierrors.LogisticsUnknownCarrier, err.Error())
		case errors.Is(err, kuaidi100.ErrQueryFailed):
			apierrors.BadGateway(c, apierrors.LogisticsQueryFailed, err.Error())
		default:
			log.Error("Shipment tracking failed", err, map[string]interface{}{
				"order_id": id,
			})
			apierrors.BadGateway(c, apierrors.InternalExternalAPI, "tracking service unavailable")
		}
		return
	}

	apierrors.OK(c, gin.H{"tracking": result})
}

// ListCarriers returns the supported logistics companies
// GET /api/v1/logistics/carriers
func (ctrl *LogisticsController) ListCarriers(c *gin.Context) {
	apierrors.OK(c, gin.H{"carriers": ctrl.logisticsService.ListCarriers()})
}
