package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
)

type SchoolController struct {
	schoolService service.SchoolService
}

func NewSchoolController(schoolService service.SchoolService) *SchoolController {
	return &SchoolController{
		schoolService: schoolService,
	}
}

// ListSchools returns all active schools
// GET /api/v1/schools
func (ctrl *SchoolController) ListSchools(c *gin.Context) {
	schools, err := ctrl.schoolService.ListSchools()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{"schools": schools})
}

// GetSchool returns one school
// GET /api/v1/schools/:id
func (ctrl *SchoolController) GetSchool(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid school id")
		return
	}

	school, err := ctrl.schoolService.GetSchool(id)
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			apierrors.NotFound(c, apierrors.SchoolNotFound, "school not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{"school": school})
}

// NearbySchools ranks schools by distance from the given coordinates
// GET /api/v1/schools/nearby?lat=..&lon=..&limit=..
func (ctrl *SchoolController) NearbySchools(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		apierrors.BadRequest(c, apierrors.ValidationRequired, "lat and lon are required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	schools, err := ctrl.schoolService.NearbySchools(lat, lon, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCoordinates) {
			apierrors.BadRequest(c, apierrors.ValidationInvalidRange, err.Error())
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{"schools": schools})
}
