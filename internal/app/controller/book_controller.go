package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type BookController struct {
	bookService service.BookService
}

func NewBookController(bookService service.BookService) *BookController {
	return &BookController{
		bookService: bookService,
	}
}

type CreateBookRequest struct {
	ISBN        string  `json:"isbn"`
	Name        string  `json:"name" binding:"required,max=100"`
	Author      string  `json:"author"`
	Publisher   string  `json:"publisher"`
	PublishDate string  `json:"publish_date"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Description string  `json:"description"`
	CoverImg    string  `json:"cover_img"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"omitempty,min=0"`
}

type UpdateBookRequest struct {
	Name        *string           `json:"name"`
	Author      *string           `json:"author"`
	Publisher   *string           `json:"publisher"`
	Description *string           `json:"description"`
	CoverImg    *string           `json:"cover_img"`
	Condition   *string           `json:"condition"`
	Price       *float64          `json:"price"`
	Stock       *int              `json:"stock"`
	Status      *model.BookStatus `json:"status"`
}

func parseBookFilter(c *gin.Context) repository.BookFilter {
	filter := repository.BookFilter{
		Search:    c.Query("keyword"),
		Condition: c.Query("condition"),
	}

	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			cid := uint(id)
			filter.CategoryID = &cid
		}
	}
	if v := c.Query("school_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			sid := uint(id)
			filter.SchoolID = &sid
		}
	}
	if v := c.Query("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &p
		}
	}
	if v := c.Query("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &p
		}
	}

	switch c.Query("sort_by") {
	case "price":
		filter.SortBy = repository.BookSortPrice
	case "view_count":
		filter.SortBy = repository.BookSortViewCount
	default:
		filter.SortBy = repository.BookSortCreatedAt
	}
	filter.SortAscending = c.Query("order") == "asc"

	return filter
}

// ListBooks returns a paginated listing feed
// GET /api/v1/books
func (ctrl *BookController) ListBooks(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, pageSize := parsePage(c)
	books, pageInfo, err := ctrl.bookService.ListBooks(parseBookFilter(c), page, pageSize)
	if err != nil {
		log.Error("Failed to list books", err, nil)
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{
		"books":      books,
		"pagination": pageInfo,
	})
}

// ListMyBooks returns the authenticated seller's own listings
// GET /api/v1/books/mine
func (ctrl *BookController) ListMyBooks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	filter := parseBookFilter(c)
	filter.SellerID = &userID
	if v := c.Query("status"); v != "" {
		status := model.BookStatus(v)
		filter.Status = &status
	}

	page, pageSize := parsePage(c)
	books, pageInfo, err := ctrl.bookService.ListBooks(filter, page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{
		"books":      books,
		"pagination": pageInfo,
	})
}

// ListSellerBooks returns a seller's public (on-sale) listings
// GET /api/v1/users/:id/books
func (ctrl *BookController) ListSellerBooks(c *gin.Context) {
	sellerID, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid user id")
		return
	}

	filter := parseBookFilter(c)
	filter.SellerID = &sellerID
	onSale := model.BookStatusOnSale
	filter.Status = &onSale

	page, pageSize := parsePage(c)
	books, pageInfo, err := ctrl.bookService.ListBooks(filter, page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{
		"books":      books,
		"pagination": pageInfo,
	})
}

// NearbyBooks returns on-sale listings ranked by distance from the
// caller's position
// GET /api/v1/books/nearby
func (ctrl *BookController) NearbyBooks(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lonErr != nil {
		apierrors.BadRequest(c, apierrors.ValidationRequired, "lat and lng are required")
		return
	}

	var radius float64
	if v := c.Query("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			apierrors.BadRequest(c, apierrors.ValidationInvalidRange, "invalid radius")
			return
		}
		radius = parsed
	}

	page, pageSize := parsePage(c)
	books, pageInfo, err := ctrl.bookService.NearbyBooks(lat, lon, radius, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoordinates), errors.Is(err, service.ErrInvalidRadius):
			apierrors.BadRequest(c, apierrors.ValidationInvalidRange, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{
		"books":      books,
		"pagination": pageInfo,
	})
}

// GetBook returns one listing and counts the view
// GET /api/v1/books/:id
func (ctrl *BookController) GetBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid book id")
		return
	}

	book, err := ctrl.bookService.GetBook(id, true)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			apierrors.NotFound(c, apierrors.BookNotFound, "book not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	apierrors.OK(c, gin.H{"book": book})
}

// CreateBook publishes a new listing, pending moderation
// POST /api/v1/books
func (ctrl *BookController) CreateBook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}
	if req.Stock == 0 {
		req.Stock = 1
	}

	book, err := ctrl.bookService.CreateBook(service.CreateBookInput{
		ISBN:        req.ISBN,
		Name:        req.Name,
		Author:      req.Author,
		Publisher:   req.Publisher,
		PublishDate: req.PublishDate,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		CoverImg:    req.CoverImg,
		Condition:   req.Condition,
		Price:       req.Price,
		Stock:       req.Stock,
		SellerID:    userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			apierrors.BadRequest(c, apierrors.BookCategoryInvalid, err.Error())
		case errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidStock):
			apierrors.BadRequest(c, apierrors.ValidationInvalidRange, err.Error())
		default:
			log.Error("Failed to create book", err, map[string]interface{}{
				"user_id": userID,
			})
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.Created(c, gin.H{"book": book})
}

// UpdateBook edits a listing owned by the caller
// PUT /api/v1/books/:id
func (ctrl *BookController) UpdateBook(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "invalid book id")
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	book, err := ctrl.bookService.UpdateBook(id, userID, service.UpdateBookInput{
		Name:        req.Name,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Description: req.Description,
		CoverImg:    req.CoverImg,
		Condition:   req.Condition,
		Price:       req.Price,
		Stock:       req.Stock,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			apierrors.NotFound(c, apierrors.BookNotFound, "book not found")
		case errors.Is(err, service.ErrNotBookSeller):
			apierrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrInvalidStatusChange):
			apierrors.BadRequest(c, apierrors.BookStatusInvalid, err.Error())
		case errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidStock):
			apierrors.BadRequest(c, apierrors.ValidationInvalidRange, err.Error())
		case errors.Is(err, service.ErrNoFieldsToSet):
			apierrors.BadRequest(c, apierrors.ValidationRequired, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{"book": book})
}

// ListCategories returns the category catalogue
// GET /api/v1/books/categories
func (ctrl *BookController) ListCategories(c *gin.Context) {
	categories, err := ctrl.bookService.ListCategories()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{"categories": categories})
}

// ListConditions returns the distinct conditions in use
// GET /api/v1/books/conditions
func (ctrl *BookController) ListConditions(c *gin.Context) {
	conditions, err := ctrl.bookService.ListConditions()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{"conditions": conditions})
}
