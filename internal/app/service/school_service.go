package service

import (
	"errors"
	"sort"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"github.com/zywang/bookmart-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrInvalidCoordinates = errors.New("latitude and longitude are required")

// NearbySchool pairs a school with its distance from the query point.
type NearbySchool struct {
	model.School
	DistanceKm float64 `json:"distance_km"`
}

type SchoolService interface {
	ListSchools() ([]model.School, error)
	GetSchool(id uint) (*model.School, error)
	NearbySchools(lat, lon float64, limit int) ([]NearbySchool, error)
}

type schoolService struct {
	schoolRepo repository.SchoolRepository
}

func NewSchoolService(schoolRepo repository.SchoolRepository) SchoolService {
	return &schoolService{schoolRepo: schoolRepo}
}

func (s *schoolService) ListSchools() ([]model.School, error) {
	return s.schoolRepo.FindAll()
}

func (s *schoolService) GetSchool(id uint) (*model.School, error) {
	school, err := s.schoolRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return school, nil
}

// NearbySchools ranks schools by Haversine distance from the given point.
// Schools without coordinates are skipped.
func (s *schoolService) NearbySchools(lat, lon float64, limit int) ([]NearbySchool, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}
	if limit <= 0 {
		limit = 10
	}

	schools, err := s.schoolRepo.FindAll()
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbySchool, 0, len(schools))
	for _, school := range schools {
		if school.Latitude == nil || school.Longitude == nil {
			continue
		}
		nearby = append(nearby, NearbySchool{
			School:     school,
			DistanceKm: util.CalculateDistance(lat, lon, *school.Latitude, *school.Longitude),
		})
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}

	logger.Debug("Nearby schools computed", map[string]interface{}{
		"count": len(nearby),
	})
	return nearby, nil
}
