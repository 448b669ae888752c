package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/zywang/bookmart-backend/internal/errors"
	"github.com/zywang/bookmart-backend/internal/middleware"
	"github.com/zywang/bookmart-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // covers, reviews or avatars; defaults to covers
}

var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// GeneratePresignedURL issues a pre-signed S3 upload URL
// POST /api/v1/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, err.Error())
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		log.Warn("Invalid upload content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apierrors.BadRequest(c, apierrors.UploadInvalidFileType, "only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = storage.FolderCovers
	}
	if !storage.IsValidFolder(folder) {
		apierrors.BadRequest(c, apierrors.ValidationInvalidInput, "unknown upload folder")
		return
	}

	response, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename": req.Filename,
			"folder":   folder,
		})
		apierrors.RespondWithError(c, http.StatusInternalServerError, apierrors.UploadFailed, "failed to generate upload URL")
		return
	}

	apierrors.OK(c, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
	})
}
