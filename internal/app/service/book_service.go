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

const (
	defaultNearbyRadiusKm = 5.0
	maxNearbyRadiusKm     = 50.0
)

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNotBookSeller    = errors.New("only the seller can modify this listing")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvalidStock     = errors.New("stock must not be negative")
	ErrInvalidStatusChange = errors.New("listing status cannot be changed to that value")
	ErrInvalidRadius       = errors.New("radius must be between 0 and 50 km")
)

type CreateBookInput struct {
	ISBN        string
	Name        string
	Author      string
	Publisher   string
	PublishDate string
	CategoryID  uint
	Description string
	CoverImg    string
	Condition   string
	Price       float64
	Stock       int
	SellerID    uint
}

type UpdateBookInput struct {
	Name        *string
	Author      *string
	Publisher   *string
	Description *string
	CoverImg    *string
	Condition   *string
	Price       *float64
	Stock       *int
	Status      *model.BookStatus
}

// NearbyBook is a listing ranked by distance from the query point,
// carrying the seller's public identity for display.
type NearbyBook struct {
	model.Book
	DistanceKm     float64 `json:"distance_km"`
	SellerNickname string  `json:"seller_nickname"`
	SellerAvatar   string  `json:"seller_avatar"`
}

type BookService interface {
	ListBooks(filter repository.BookFilter, page, pageSize int) ([]model.Book, *repository.PageInfo, error)
	GetBook(id uint, countView bool) (*model.Book, error)
	CreateBook(input CreateBookInput) (*model.Book, error)
	UpdateBook(id, sellerID uint, input UpdateBookInput) (*model.Book, error)
	NearbyBooks(lat, lon, radiusKm float64, page, pageSize int) ([]NearbyBook, *repository.PageInfo, error)
	ListCategories() ([]model.Category, error)
	ListConditions() ([]string, error)
}

type bookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) BookService {
	return &bookService{bookRepo: bookRepo}
}

// ListBooks restricts public listings to on-sale books unless the filter
// already narrows to a seller's own listings.
func (s *bookService) ListBooks(filter repository.BookFilter, page, pageSize int) ([]model.Book, *repository.PageInfo, error) {
	if filter.Status == nil && filter.SellerID == nil {
		onSale := model.BookStatusOnSale
		filter.Status = &onSale
	}
	return s.bookRepo.FindWithFilter(filter, page, pageSize)
}

func (s *bookService) GetBook(id uint, countView bool) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if countView {
		if err := s.bookRepo.IncrementViewCount(id); err != nil {
			// A lost view count is not worth failing the read.
			logger.Warn("Failed to increment book view count", map[string]interface{}{
				"book_id": id,
				"error":   err.Error(),
			})
		} else {
			book.ViewCount++
		}
	}
	return book, nil
}

func (s *bookService) CreateBook(input CreateBookInput) (*model.Book, error) {
	logger.Info("Creating book listing", map[string]interface{}{
		"name":      input.Name,
		"seller_id": input.SellerID,
	})

	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStock
	}
	if _, err := s.bookRepo.FindCategoryByID(input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	book := &model.Book{
		ISBN:        input.ISBN,
		Name:        input.Name,
		Author:      input.Author,
		Publisher:   input.Publisher,
		PublishDate: input.PublishDate,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		CoverImg:    input.CoverImg,
		Condition:   input.Condition,
		Price:       input.Price,
		Stock:       input.Stock,
		Status:      model.BookStatusPendingAudit,
		SellerID:    input.SellerID,
	}
	if err := s.bookRepo.Create(book); err != nil {
		return nil, err
	}

	logger.Info("Book listing created", map[string]interface{}{
		"book_id":   book.ID,
		"seller_id": book.SellerID,
	})
	return book, nil
}

// UpdateBook applies a partial edit. Only the listing's seller may edit,
// and sellers can only flip status between on_sale and off_sale.
func (s *bookService) UpdateBook(id, sellerID uint, input UpdateBookInput) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if book.SellerID != sellerID {
		logger.Warn("Book update rejected: not the seller", map[string]interface{}{
			"book_id":   id,
			"seller_id": book.SellerID,
			"user_id":   sellerID,
		})
		return nil, ErrNotBookSeller
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Author != nil {
		fields["author"] = *input.Author
	}
	if input.Publisher != nil {
		fields["publisher"] = *input.Publisher
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.CoverImg != nil {
		fields["cover_img"] = *input.CoverImg
	}
	if input.Condition != nil {
		fields["condition"] = *input.Condition
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		fields["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrInvalidStock
		}
		fields["stock"] = *input.Stock
	}
	if input.Status != nil {
		// Sellers only toggle between shelved and unshelved. Moderation
		// owns the pending_audit and rejected states.
		if *input.Status != model.BookStatusOnSale && *input.Status != model.BookStatusOffSale {
			return nil, ErrInvalidStatusChange
		}
		if book.Status != model.BookStatusOnSale && book.Status != model.BookStatusOffSale {
			return nil, ErrInvalidStatusChange
		}
		fields["status"] = *input.Status
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToSet
	}

	if err := s.bookRepo.Update(id, fields); err != nil {
		return nil, err
	}
	return s.bookRepo.FindByID(id)
}

// NearbyBooks ranks on-sale listings by Haversine distance from the
// query point, using the seller's school as the pickup location. The
// page is cut from the ranked slice since distance cannot be computed
// in SQL portably across the production and test drivers.
func (s *bookService) NearbyBooks(lat, lon, radiusKm float64, page, pageSize int) ([]NearbyBook, *repository.PageInfo, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, nil, ErrInvalidCoordinates
	}
	if radiusKm == 0 {
		radiusKm = defaultNearbyRadiusKm
	}
	if radiusKm < 0 || radiusKm > maxNearbyRadiusKm {
		return nil, nil, ErrInvalidRadius
	}

	books, err := s.bookRepo.FindOnSaleWithSchoolCoords()
	if err != nil {
		return nil, nil, err
	}

	ranked := make([]NearbyBook, 0, len(books))
	for _, book := range books {
		profile := book.Seller.Profile
		if profile == nil || profile.School == nil ||
			profile.School.Latitude == nil || profile.School.Longitude == nil {
			continue
		}
		distance := util.CalculateDistance(lat, lon, *profile.School.Latitude, *profile.School.Longitude)
		if distance > radiusKm {
			continue
		}
		ranked = append(ranked, NearbyBook{
			Book:           book,
			DistanceKm:     distance,
			SellerNickname: profile.Nickname,
			SellerAvatar:   profile.AvatarURL,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	page, pageSize = repository.NormalizePage(page, pageSize)
	total := int64(len(ranked))
	start := (page - 1) * pageSize
	if start > len(ranked) {
		start = len(ranked)
	}
	end := start + pageSize
	if end > len(ranked) {
		end = len(ranked)
	}

	logger.Debug("Nearby listings computed", map[string]interface{}{
		"total":     total,
		"radius_km": radiusKm,
	})
	return ranked[start:end], &repository.PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *bookService) ListCategories() ([]model.Category, error) {
	return s.bookRepo.ListCategories()
}

func (s *bookService) ListConditions() ([]string, error) {
	return s.bookRepo.ListConditions()
}
