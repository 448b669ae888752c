package repository

import (
	"fmt"

	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

type BookSort string

const (
	BookSortCreatedAt BookSort = "created_at"
	BookSortPrice     BookSort = "price"
	BookSortViewCount BookSort = "view_count"
)

// BookFilter narrows a listing query. Zero values mean "no constraint";
// predicates are appended only for the fields actually set.
type BookFilter struct {
	CategoryID    *uint
	SellerID      *uint
	Status        *model.BookStatus
	Condition     string
	MinPrice      *float64
	MaxPrice      *float64
	Search        string
	SchoolID      *uint
	SortBy        BookSort
	SortAscending bool
}

type BookRepository interface {
	Create(book *model.Book) error
	FindByID(id uint) (*model.Book, error)
	FindWithFilter(filter BookFilter, page, pageSize int) ([]model.Book, *PageInfo, error)
	Update(id uint, fields map[string]interface{}) error
	UpdateStatus(id uint, status model.BookStatus, auditNote string) error
	IncrementViewCount(id uint) error
	DecrementStockIfAvailable(id uint, quantity int) (int64, error)
	RestoreStock(id uint, quantity int) error
	ListCategories() ([]model.Category, error)
	FindCategoryByID(id uint) (*model.Category, error)
	ListConditions() ([]string, error)
	CountBySeller(sellerID uint, status *model.BookStatus) (int64, error)
	FindOnSaleWithSchoolCoords() ([]model.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(book *model.Book) error {
	logger.Debug("Creating book in database", map[string]interface{}{
		"name":      book.Name,
		"seller_id": book.SellerID,
	})

	if err := r.db.Create(book).Error; err != nil {
		logger.Error("Failed to create book in database", err, map[string]interface{}{
			"name":      book.Name,
			"seller_id": book.SellerID,
		})
		return err
	}
	return nil
}

func (r *bookRepository) FindByID(id uint) (*model.Book, error) {
	var book model.Book
	if err := r.db.Preload("Category").
		Preload("Seller").
		Preload("Seller.Profile").
		Preload("Seller.Profile.School").
		First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindWithFilter(filter BookFilter, page, pageSize int) ([]model.Book, *PageInfo, error) {
	logger.Debug("Finding books with filter", map[string]interface{}{
		"category_id": filter.CategoryID,
		"seller_id":   filter.SellerID,
		"status":      filter.Status,
		"search":      filter.Search,
		"page":        page,
		"page_size":   pageSize,
	})

	query := r.db.Model(&model.Book{}).Preload("Category")

	if filter.CategoryID != nil {
		query = query.Where("book.category_id = ?", *filter.CategoryID)
	}
	if filter.SellerID != nil {
		query = query.Where("book.seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		query = query.Where("book.status = ?", *filter.Status)
	}
	if filter.Condition != "" {
		query = query.Where("book.condition = ?", filter.Condition)
	}
	if filter.MinPrice != nil {
		query = query.Where("book.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("book.price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("book.name LIKE ? OR book.author LIKE ? OR book.isbn LIKE ?", like, like, like)
	}
	if filter.SchoolID != nil {
		query = query.Joins("JOIN users ON users.user_id = book.seller_id").
			Where("users.school_id = ?", *filter.SchoolID)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case BookSortPrice:
		query = query.Order("book.price " + direction)
	case BookSortViewCount:
		query = query.Order("book.view_count " + direction).Order("book.created_at DESC")
	default:
		query = query.Order("book.created_at " + direction)
	}

	var books []model.Book
	pageInfo, err := Paginate(query, page, pageSize, &books)
	if err != nil {
		logger.Error("Failed to find books with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, nil, err
	}
	return books, pageInfo, nil
}

func (r *bookRepository) Update(id uint, fields map[string]interface{}) error {
	result := r.db.Model(&model.Book{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update book in database", result.Error, map[string]interface{}{
			"book_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepository) UpdateStatus(id uint, status model.BookStatus, auditNote string) error {
	return r.Update(id, map[string]interface{}{
		"status":     status,
		"audit_note": auditNote,
	})
}

func (r *bookRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&model.Book{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// DecrementStockIfAvailable atomically subtracts quantity from stock,
// guarded so it never goes negative. Returns the number of rows
// affected: 0 means stock was insufficient and nothing changed.
func (r *bookRepository) DecrementStockIfAvailable(id uint, quantity int) (int64, error) {
	result := r.db.Model(&model.Book{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		logger.Error("Failed to decrement book stock", result.Error, map[string]interface{}{
			"book_id":  id,
			"quantity": quantity,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *bookRepository) RestoreStock(id uint, quantity int) error {
	return r.db.Model(&model.Book{}).Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}

func (r *bookRepository) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *bookRepository) FindCategoryByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *bookRepository) ListConditions() ([]string, error) {
	var conditions []string
	err := r.db.Model(&model.Book{}).
		Distinct("condition").
		Where("condition <> ''").
		Order("condition ASC").
		Pluck("condition", &conditions).Error
	if err != nil {
		return nil, err
	}
	return conditions, nil
}

// FindOnSaleWithSchoolCoords loads on-sale listings whose seller is bound
// to a school that has coordinates. Distance ranking happens in the
// service layer, so no limit is applied here.
func (r *bookRepository) FindOnSaleWithSchoolCoords() ([]model.Book, error) {
	var books []model.Book
	err := r.db.Model(&model.Book{}).
		Joins("JOIN users ON users.user_id = book.seller_id").
		Joins("JOIN school ON school.id = users.school_id").
		Where("book.status = ?", model.BookStatusOnSale).
		Where("school.latitude IS NOT NULL AND school.longitude IS NOT NULL").
		Preload("Category").
		Preload("Seller.Profile.School").
		Find(&books).Error
	if err != nil {
		logger.Error("Failed to load listings with school coordinates", err, nil)
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) CountBySeller(sellerID uint, status *model.BookStatus) (int64, error) {
	query := r.db.Model(&model.Book{}).Where("seller_id = ?", sellerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
