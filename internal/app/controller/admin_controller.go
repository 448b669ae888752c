package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/app/service"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

type AuditRequest struct {
	TargetType string            `json:"target_type" binding:"required,oneof=product post"`
	TargetID   uint              `json:"target_id" binding:"required"`
	Action     model.AuditAction `json:"action" binding:"required,oneof=pass reject"`
	Note       string            `json:"note" binding:"max=200"`
}

// ListPendingBooks returns listings waiting for moderation
// GET /api/v1/admin/audit/books
func (ctrl *AdminController) ListPendingBooks(c *gin.Context) {
	page, pageSize := parsePage(c)
	books, pageInfo, err := ctrl.adminService.ListPendingBooks(page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{
		"books":      books,
		"pagination": pageInfo,
	})
}

// ListPendingPosts returns posts waiting for moderation
// GET /api/v1/admin/audit/posts
func (ctrl *AdminController) ListPendingPosts(c *gin.Context) {
	page, pageSize := parsePage(c)
	posts, pageInfo, err := ctrl.adminService.ListPendingPosts(page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{
		"posts":      posts,
		"pagination": pageInfo,
	})
}

// Audit applies a moderation decision
// POST /api/v1/admin/audit
func (ctrl *AdminController) Audit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	err := ctrl.adminService.Audit(adminID, req.TargetType, req.TargetID, req.Action, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuditTargetUnknown):
			apierrors.BadRequest(c, apierrors.AuditTargetUnknown, err.Error())
		case errors.Is(err, service.ErrAuditTargetNotFound):
			apierrors.NotFound(c, apierrors.AuditTargetNotFound, err.Error())
		case errors.Is(err, service.ErrNotPendingAudit):
			apierrors.Conflict(c, apierrors.AuditNotPending, err.Error())
		case errors.Is(err, service.ErrAuditNoteRequired):
			apierrors.BadRequest(c, apierrors.AuditNoteRequired, err.Error())
		case errors.Is(err, service.ErrAuditNoteTooLong):
			apierrors.BadRequest(c, apierrors.ValidationTooLong, err.Error())
		default:
			log.Error("Failed to apply audit decision", err, map[string]interface{}{
				"target_type": req.TargetType,
				"target_id":   req.TargetID,
			})
			apierrors.InternalError(c, "")
		}
		return
	}

	apierrors.OK(c, gin.H{
		"target_type": req.TargetType,
		"target_id":   req.TargetID,
		"action":      req.Action,
	})
}

func parseLogFilter(c *gin.Context) repository.AuditLogFilter {
	filter := repository.AuditLogFilter{
		TargetType: c.Query("target_type"),
	}
	if v := c.Query("admin_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			aid := uint(id)
			filter.AdminID = &aid
		}
	}
	return filter
}

// ListLogs returns the moderation history
// GET /api/v1/admin/audit/logs
func (ctrl *AdminController) ListLogs(c *gin.Context) {
	page, pageSize := parsePage(c)
	logs, pageInfo, err := ctrl.adminService.ListLogs(parseLogFilter(c), page, pageSize)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	apierrors.OK(c, gin.H{
		"logs":       logs,
		"pagination": pageInfo,
	})
}

// ExportLogs downloads the moderation history as a spreadsheet
// GET /api/v1/admin/audit/logs/export
func (ctrl *AdminController) ExportLogs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.adminService.ExportLogs(parseLogFilter(c))
	if err != nil {
		log.Error("Failed to export audit logs", err, nil)
		apierrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("audit-logs-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
