package repository

import (
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByPhone(phone string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByIdentifier(identifier string) (*model.User, error)
	FindProfileByUserID(userID uint) (*model.Profile, error)
	CreateProfile(profile *model.Profile) error
	UpdateProfile(userID uint, fields map[string]interface{}) error
	UpdateProfileRating(userID uint, avgRating float64, reviewCount int) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"phone": user.Phone,
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"phone": user.Phone,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Profile").Preload("Profile.School").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByPhone(phone string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier looks up a user by phone first, then email, so the
// login form can accept either.
func (r *userRepository) FindByIdentifier(identifier string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("phone = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindProfileByUserID(userID uint) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.Preload("School").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) CreateProfile(profile *model.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		logger.Error("Failed to create profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}

func (r *userRepository) UpdateProfile(userID uint, fields map[string]interface{}) error {
	logger.Debug("Updating profile in database", map[string]interface{}{
		"user_id": userID,
		"fields":  len(fields),
	})

	result := r.db.Model(&model.Profile{}).Where("user_id = ?", userID).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update profile in database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdateProfileRating(userID uint, avgRating float64, reviewCount int) error {
	return r.db.Model(&model.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"avg_rating":   avgRating,
		"review_count": reviewCount,
	}).Error
}
