package service

import (
	"context"
	"errors"
	"time"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"github.com/zywang/bookmart-backend/pkg/redis"
	"gorm.io/gorm"
)

const (
	// preferenceWindow is how far back purchases and reviews count
	// toward a buyer's category preferences.
	preferenceWindow = 180 * 24 * time.Hour

	similarBuyerLimit = 10
	trendingCacheKey  = "recommend:trending"
	trendingCacheTTL  = 10 * time.Minute
	trendingPoolSize  = 50
)

// RecommendedBook is a book enriched with its seller's public identity.
// The raw seller ID stays out of the payload.
type RecommendedBook struct {
	model.Book
	SellerID       uint   `json:"-"`
	SellerNickname string `json:"seller_nickname"`
	SellerAvatar   string `json:"seller_avatar"`
}

type RecommendService interface {
	Recommend(userID uint, count int) ([]RecommendedBook, error)
	RefreshTrendingCache() error
}

type recommendService struct {
	recommendRepo repository.RecommendationRepository
	userRepo      repository.UserRepository
}

func NewRecommendService(
	recommendRepo repository.RecommendationRepository,
	userRepo repository.UserRepository,
) RecommendService {
	return &recommendService{
		recommendRepo: recommendRepo,
		userRepo:      userRepo,
	}
}

// Recommend assembles up to count books through a four-stage waterfall:
// popular at the user's school, popular in the user's preferred
// categories, bought by similar buyers, then globally trending as the
// fill. Stages never repeat a book and the user's own listings are
// excluded throughout.
func (s *recommendService) Recommend(userID uint, count int) ([]RecommendedBook, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logger.Debug("Building recommendations", map[string]interface{}{
		"user_id": userID,
		"count":   count,
	})

	seen := make(map[uint]struct{})
	picked := make([]model.Book, 0, count)
	add := func(books []model.Book) {
		for _, book := range books {
			if len(picked) >= count {
				return
			}
			if _, ok := seen[book.ID]; ok {
				continue
			}
			seen[book.ID] = struct{}{}
			picked = append(picked, book)
		}
	}

	// Stage 1: same-school listings take up to 40% of the feed,
	// rounded down.
	if user.Profile != nil && user.Profile.SchoolID != nil {
		schoolQuota := int(float64(count) * 0.4)
		books, err := s.recommendRepo.SchoolPopular(*user.Profile.SchoolID, userID, schoolQuota)
		if err != nil {
			return nil, err
		}
		add(books)
	}

	// Stage 2: categories the user recently bought from or reviewed.
	if len(picked) < count {
		since := time.Now().Add(-preferenceWindow)
		categoryIDs, err := s.recommendRepo.PreferredCategories(userID, since)
		if err != nil {
			return nil, err
		}
		if len(categoryIDs) > 0 {
			books, err := s.recommendRepo.PopularInCategories(categoryIDs, userID, count)
			if err != nil {
				return nil, err
			}
			add(books)
		}
	}

	// Stage 3: what similar buyers bought.
	if len(picked) < count {
		buyerIDs, err := s.recommendRepo.SimilarBuyers(userID, similarBuyerLimit)
		if err != nil {
			return nil, err
		}
		if len(buyerIDs) > 0 {
			books, err := s.recommendRepo.BoughtByBuyers(buyerIDs, userID, count)
			if err != nil {
				return nil, err
			}
			add(books)
		}
	}

	// Stage 4: global trending fills whatever is left.
	if len(picked) < count {
		books, err := s.trending(userID)
		if err != nil {
			return nil, err
		}
		add(books)
	}

	return s.enrich(picked)
}

// trending serves the platform-wide pool from cache when possible; the
// pool is larger than any single feed so per-user exclusions still
// leave enough to fill from.
func (s *recommendService) trending(excludeSellerID uint) ([]model.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cached []model.Book
	if err := redis.GetJSON(ctx, trendingCacheKey, &cached); err == nil {
		filtered := cached[:0:0]
		for _, book := range cached {
			if book.SellerID != excludeSellerID {
				filtered = append(filtered, book)
			}
		}
		return filtered, nil
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		logger.Warn("Trending cache unavailable, falling back to database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return s.recommendRepo.GlobalTrending(excludeSellerID, trendingPoolSize)
}

// RefreshTrendingCache recomputes the trending pool and stores it in
// Redis. Called on a schedule.
func (s *recommendService) RefreshTrendingCache() error {
	books, err := s.recommendRepo.GlobalTrending(0, trendingPoolSize)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redis.SetJSON(ctx, trendingCacheKey, books, trendingCacheTTL); err != nil {
		return err
	}

	logger.Info("Trending cache refreshed", map[string]interface{}{
		"count": len(books),
	})
	return nil
}

// enrich attaches each seller's nickname and avatar. Sellers without a
// profile show up as "unknown user".
func (s *recommendService) enrich(books []model.Book) ([]RecommendedBook, error) {
	profiles := make(map[uint]*model.Profile)
	out := make([]RecommendedBook, 0, len(books))

	for _, book := range books {
		profile, ok := profiles[book.SellerID]
		if !ok {
			loaded, err := s.userRepo.FindProfileByUserID(book.SellerID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			profile = loaded
			profiles[book.SellerID] = profile
		}

		rec := RecommendedBook{
			Book:           book,
			SellerNickname: "unknown user",
			SellerAvatar:   "",
		}
		if profile != nil {
			rec.SellerNickname = profile.Nickname
			rec.SellerAvatar = profile.AvatarURL
		}
		out = append(out, rec)
	}
	return out, nil
}
