package file

import (
	"errors"
	"net/http"

	"github.com/abduss/filegate/internal/auth"
	"github.com/abduss/filegate/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRoutes mounts file operations under the provided (authenticated) router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &httpHandler{service: service, log: log}
	group.POST("/upload-url", handler.requestUploadURL)
	group.POST("/files", handler.registerFile)
	group.GET("/list-files", handler.listFiles)
	group.POST("/download-url", handler.requestDownloadURL)
	group.DELETE("/files/:id", handler.deleteFile)
}

type httpHandler struct {
	service *Service
	log     *zap.Logger
}

type uploadURLRequest struct {
	FileName string `json:"fileName" binding:"required"`
	FileType string `json:"fileType" binding:"required"`
}

type registerFileRequest struct {
	ObjectKey    string `json:"objectKey" binding:"required"`
	OriginalName string `json:"originalName" binding:"required"`
	MimeType     string `json:"mimeType" binding:"required"`
	Size         *int64 `json:"size"`
}

type downloadURLRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

func (h *httpHandler) requestUploadURL(c *gin.Context) {
	uid, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName and fileType are required"})
		return
	}

	ticket, err := h.service.RequestUpload(c.Request.Context(), uid, req.FileName, req.FileType)
	if err != nil {
		h.writeError(c, err, "failed to create upload url")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *httpHandler) registerFile(c *gin.Context) {
	uid, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req registerFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "objectKey, originalName and mimeType are required"})
		return
	}

	record, err := h.service.Register(c.Request.Context(), uid, RegisterInput{
		ObjectKey:    req.ObjectKey,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		Size:         req.Size,
	})
	if err != nil {
		h.writeError(c, err, "failed to save file metadata")
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) listFiles(c *gin.Context) {
	uid, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	records, err := h.service.List(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err, "failed to list files")
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": uid, "files": records})
}

func (h *httpHandler) requestDownloadURL(c *gin.Context) {
	uid, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req downloadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "objectKey is required"})
		return
	}

	ticket, err := h.service.RequestDownload(c.Request.Context(), uid, req.ObjectKey)
	if err != nil {
		h.writeError(c, err, "failed to create download url")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	uid, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uid, id); err != nil {
		h.writeError(c, err, "failed to delete file")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// writeError converts a service error into its HTTP status and JSON body.
func (h *httpHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrObjectKeyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "objectKey already registered"})
	case errors.Is(err, ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this file"})
	case errors.Is(err, ErrInconsistentRecord):
		logger.For(h.log, c).Error("inconsistent file record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "file record is missing its object key"})
	default:
		_ = c.Error(err)
		logger.For(h.log, c).Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
