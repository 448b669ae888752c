package service

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"github.com/zywang/bookmart-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrPhoneAlreadyExists = errors.New("phone number already registered")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidPhone       = errors.New("phone number must be 11 digits")
	ErrInvalidCredentials = errors.New("invalid account or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrSchoolNotFound     = errors.New("school not found")
)

var phonePattern = regexp.MustCompile(`^\d{11}$`)

type RegisterInput struct {
	Phone    string
	Email    string
	Password string
	Nickname string
	SchoolID *uint
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, *util.TokenPair, error)
	Login(identifier, password string) (*model.User, *util.TokenPair, error)
	RefreshTokens(refreshToken string) (*util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	schoolRepo    repository.SchoolRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	schoolRepo repository.SchoolRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		schoolRepo:    schoolRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"phone": input.Phone,
		"email": input.Email,
	})

	if !phonePattern.MatchString(input.Phone) {
		logger.Warn("Registration failed: malformed phone number", map[string]interface{}{
			"phone": input.Phone,
		})
		return nil, nil, ErrInvalidPhone
	}

	existing, err := s.userRepo.FindByPhone(input.Phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing phone", err, map[string]interface{}{
			"phone": input.Phone,
		})
		return nil, nil, err
	}
	if existing != nil {
		logger.Warn("Registration failed: phone already exists", map[string]interface{}{
			"phone": input.Phone,
		})
		return nil, nil, ErrPhoneAlreadyExists
	}

	if input.Email != "" {
		existing, err = s.userRepo.FindByEmail(input.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		if existing != nil {
			logger.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": input.Email,
			})
			return nil, nil, ErrEmailAlreadyExists
		}
	}

	if input.SchoolID != nil {
		if _, err := s.schoolRepo.FindByID(*input.SchoolID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrSchoolNotFound
			}
			return nil, nil, err
		}
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"phone": input.Phone,
		})
		return nil, nil, err
	}

	user := &model.User{
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	nickname := input.Nickname
	if nickname == "" {
		nickname = fmt.Sprintf("user%s", input.Phone[len(input.Phone)-4:])
	}
	profile := &model.Profile{
		UserID:    user.ID,
		Nickname:  nickname,
		SchoolID:  input.SchoolID,
		AvgRating: 5.0,
	}
	if err := s.userRepo.CreateProfile(profile); err != nil {
		return nil, nil, err
	}
	user.Profile = profile

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		logger.Error("Failed to generate tokens after registration", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"phone":   user.Phone,
	})
	return user, tokens, nil
}

func (s *authService) Login(identifier, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user login", map[string]interface{}{
		"identifier": identifier,
	})

	user, err := s.userRepo.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: account not found", map[string]interface{}{
				"identifier": identifier,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

func (s *authService) RefreshTokens(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return util.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry, s.refreshExpiry)
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
