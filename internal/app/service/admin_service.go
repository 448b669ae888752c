package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAuditTargetUnknown  = errors.New("unknown audit target type")
	ErrAuditTargetNotFound = errors.New("audit target not found")
	ErrNotPendingAudit     = errors.New("target is not pending audit")
	ErrAuditNoteRequired   = errors.New("a note is required when rejecting")
	ErrAuditNoteTooLong    = errors.New("audit note must not exceed 200 characters")
)

const maxAuditNoteLen = 200

const (
	AuditTargetProduct = "product"
	AuditTargetPost    = "post"
)

type AdminService interface {
	ListPendingBooks(page, pageSize int) ([]model.Book, *repository.PageInfo, error)
	ListPendingPosts(page, pageSize int) ([]model.Post, *repository.PageInfo, error)
	Audit(adminID uint, targetType string, targetID uint, action model.AuditAction, note string) error
	ListLogs(filter repository.AuditLogFilter, page, pageSize int) ([]model.AuditLog, *repository.PageInfo, error)
	ExportLogs(filter repository.AuditLogFilter) ([]byte, error)
}

type adminService struct {
	auditRepo repository.AuditRepository
	bookRepo  repository.BookRepository
}

func NewAdminService(auditRepo repository.AuditRepository, bookRepo repository.BookRepository) AdminService {
	return &adminService{
		auditRepo: auditRepo,
		bookRepo:  bookRepo,
	}
}

func (s *adminService) ListPendingBooks(page, pageSize int) ([]model.Book, *repository.PageInfo, error) {
	return s.auditRepo.ListPendingBooks(page, pageSize)
}

func (s *adminService) ListPendingPosts(page, pageSize int) ([]model.Post, *repository.PageInfo, error) {
	return s.auditRepo.ListPendingPosts(page, pageSize)
}

// Audit applies a moderation decision. Products move from pending_audit
// to on_sale or rejected; posts from pending_audit to visible or hidden.
// Rejections always carry a note, and every decision is logged.
func (s *adminService) Audit(adminID uint, targetType string, targetID uint, action model.AuditAction, note string) error {
	logger.Info("Applying audit decision", map[string]interface{}{
		"admin_id":    adminID,
		"target_type": targetType,
		"target_id":   targetID,
		"action":      action,
	})

	if action != model.AuditActionPass && action != model.AuditActionReject {
		return ErrAuditTargetUnknown
	}
	if action == model.AuditActionReject && note == "" {
		return ErrAuditNoteRequired
	}
	if len([]rune(note)) > maxAuditNoteLen {
		return ErrAuditNoteTooLong
	}

	switch targetType {
	case AuditTargetProduct:
		if err := s.auditBook(targetID, action, note); err != nil {
			return err
		}
	case AuditTargetPost:
		if err := s.auditPost(targetID, action, note); err != nil {
			return err
		}
	default:
		return ErrAuditTargetUnknown
	}

	log := &model.AuditLog{
		AdminID:    adminID,
		TargetType: targetType,
		TargetID:   targetID,
		Action:     action,
		Note:       note,
	}
	if err := s.auditRepo.CreateLog(log); err != nil {
		// The decision already landed; report but do not roll back.
		logger.Error("Failed to record audit log", err, map[string]interface{}{
			"target_type": targetType,
			"target_id":   targetID,
		})
		return err
	}
	return nil
}

func (s *adminService) auditBook(id uint, action model.AuditAction, note string) error {
	book, err := s.bookRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuditTargetNotFound
		}
		return err
	}
	if book.Status != model.BookStatusPendingAudit {
		return ErrNotPendingAudit
	}

	next := model.BookStatusOnSale
	if action == model.AuditActionReject {
		next = model.BookStatusRejected
	}
	return s.bookRepo.UpdateStatus(id, next, note)
}

func (s *adminService) auditPost(id uint, action model.AuditAction, note string) error {
	post, err := s.auditRepo.FindPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuditTargetNotFound
		}
		return err
	}
	if post.Status != model.PostStatusPendingAudit {
		return ErrNotPendingAudit
	}

	next := model.PostStatusVisible
	if action == model.AuditActionReject {
		next = model.PostStatusHidden
	}
	return s.auditRepo.UpdatePostStatus(id, next, note)
}

func (s *adminService) ListLogs(filter repository.AuditLogFilter, page, pageSize int) ([]model.AuditLog, *repository.PageInfo, error) {
	return s.auditRepo.ListLogs(filter, page, pageSize)
}

// ExportLogs renders the matching audit logs as an xlsx workbook.
func (s *adminService) ExportLogs(filter repository.AuditLogFilter) ([]byte, error) {
	logs, err := s.auditRepo.AllLogs(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Audit Logs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Admin ID", "Target Type", "Target ID", "Action", "Note", "Decided At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, log := range logs {
		values := []interface{}{
			log.ID,
			log.AdminID,
			log.TargetType,
			log.TargetID,
			string(log.Action),
			log.Note,
			log.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Audit logs exported", map[string]interface{}{
		"rows": len(logs),
	})
	return buf.Bytes(), nil
}
