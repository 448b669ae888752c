package service

import (
	"errors"
	"time"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrNoFieldsToSet    = errors.New("no fields to update")
	ErrInvalidBirthDate = errors.New("birth date must be formatted as YYYY-MM-DD")
)

// ProfileUpdate carries the optional profile fields. Nil pointers leave
// the stored value untouched.
type ProfileUpdate struct {
	Nickname  *string
	AvatarURL *string
	Gender    *int
	BirthDate *string
	Bio       *string
	SchoolID  *uint
}

type UserStats struct {
	ListingCount int64   `json:"listing_count"`
	OrderCount   int64   `json:"order_count"`
	AvgRating    float64 `json:"avg_rating"`
	ReviewCount  int     `json:"review_count"`
}

type UserService interface {
	GetProfile(userID uint) (*model.User, error)
	UpdateProfile(userID uint, update ProfileUpdate) (*model.Profile, error)
	GetStats(userID uint) (*UserStats, error)
	BindSchool(userID, schoolID uint) (*model.Profile, error)
}

type userService struct {
	userRepo   repository.UserRepository
	bookRepo   repository.BookRepository
	orderRepo  repository.OrderRepository
	schoolRepo repository.SchoolRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	bookRepo repository.BookRepository,
	orderRepo repository.OrderRepository,
	schoolRepo repository.SchoolRepository,
) UserService {
	return &userService{
		userRepo:   userRepo,
		bookRepo:   bookRepo,
		orderRepo:  orderRepo,
		schoolRepo: schoolRepo,
	}
}

func (s *userService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(userID uint, update ProfileUpdate) (*model.Profile, error) {
	fields := map[string]interface{}{}
	if update.Nickname != nil {
		fields["nickname"] = *update.Nickname
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if update.Gender != nil {
		fields["gender"] = *update.Gender
	}
	if update.BirthDate != nil {
		birthDate, err := time.Parse("2006-01-02", *update.BirthDate)
		if err != nil {
			return nil, ErrInvalidBirthDate
		}
		fields["birth_date"] = birthDate
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.SchoolID != nil {
		school, err := s.schoolRepo.FindByID(*update.SchoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSchoolNotFound
			}
			return nil, err
		}
		if !school.Active {
			return nil, ErrSchoolNotFound
		}
		fields["school_id"] = *update.SchoolID
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToSet
	}

	logger.Info("Updating user profile", map[string]interface{}{
		"user_id": userID,
		"fields":  len(fields),
	})

	if err := s.userRepo.UpdateProfile(userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	profile, err := s.userRepo.FindProfileByUserID(userID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *userService) GetStats(userID uint) (*UserStats, error) {
	profile, err := s.userRepo.FindProfileByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	listingCount, err := s.bookRepo.CountBySeller(userID, nil)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.orderRepo.CountByBuyer(userID)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		ListingCount: listingCount,
		OrderCount:   orderCount,
		AvgRating:    profile.AvgRating,
		ReviewCount:  profile.ReviewCount,
	}, nil
}

func (s *userService) BindSchool(userID, schoolID uint) (*model.Profile, error) {
	school, err := s.schoolRepo.FindByID(schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	// Delisted campuses behave as if they do not exist.
	if !school.Active {
		return nil, ErrSchoolNotFound
	}

	if err := s.userRepo.UpdateProfile(userID, map[string]interface{}{"school_id": schoolID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	logger.Info("User bound to school", map[string]interface{}{
		"user_id":   userID,
		"school_id": schoolID,
	})
	return s.userRepo.FindProfileByUserID(userID)
}
