package repository

import (
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

type AuditLogFilter struct {
	TargetType string
	AdminID    *uint
}

type AuditRepository interface {
	CreateLog(log *model.AuditLog) error
	ListLogs(filter AuditLogFilter, page, pageSize int) ([]model.AuditLog, *PageInfo, error)
	AllLogs(filter AuditLogFilter) ([]model.AuditLog, error)
	ListPendingBooks(page, pageSize int) ([]model.Book, *PageInfo, error)
	ListPendingPosts(page, pageSize int) ([]model.Post, *PageInfo, error)
	FindPostByID(id uint) (*model.Post, error)
	UpdatePostStatus(id uint, status model.PostStatus, auditNote string) error
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateLog(log *model.AuditLog) error {
	if err := r.db.Create(log).Error; err != nil {
		logger.Error("Failed to create audit log in database", err, map[string]interface{}{
			"target_type": log.TargetType,
			"target_id":   log.TargetID,
		})
		return err
	}
	return nil
}

func (r *auditRepository) logQuery(filter AuditLogFilter) *gorm.DB {
	query := r.db.Model(&model.AuditLog{}).
		Preload("Admin").
		Order("created_at DESC")
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	return query
}

func (r *auditRepository) ListLogs(filter AuditLogFilter, page, pageSize int) ([]model.AuditLog, *PageInfo, error) {
	var logs []model.AuditLog
	pageInfo, err := Paginate(r.logQuery(filter), page, pageSize, &logs)
	if err != nil {
		return nil, nil, err
	}
	return logs, pageInfo, nil
}

// AllLogs loads every matching log row. Used by the spreadsheet export.
func (r *auditRepository) AllLogs(filter AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	if err := r.logQuery(filter).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditRepository) ListPendingBooks(page, pageSize int) ([]model.Book, *PageInfo, error) {
	query := r.db.Model(&model.Book{}).
		Preload("Category").
		Where("status = ?", model.BookStatusPendingAudit).
		Order("created_at ASC")

	var books []model.Book
	pageInfo, err := Paginate(query, page, pageSize, &books)
	if err != nil {
		return nil, nil, err
	}
	return books, pageInfo, nil
}

func (r *auditRepository) ListPendingPosts(page, pageSize int) ([]model.Post, *PageInfo, error) {
	query := r.db.Model(&model.Post{}).
		Where("status = ?", model.PostStatusPendingAudit).
		Order("created_at ASC")

	var posts []model.Post
	pageInfo, err := Paginate(query, page, pageSize, &posts)
	if err != nil {
		return nil, nil, err
	}
	return posts, pageInfo, nil
}

func (r *auditRepository) FindPostByID(id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *auditRepository) UpdatePostStatus(id uint, status model.PostStatus, auditNote string) error {
	result := r.db.Model(&model.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"audit_note": auditNote,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
