package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rwa-portal/rwa-backend/internal/file/biz"
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
	"go.uber.org/zap"
)

const defaultPageSize = 12

// uploadFormOverhead leaves room for the multipart framing and the text
// fields that ride along with the file part.
const uploadFormOverhead = 1 << 20

// FileService exposes the file pipeline over HTTP.
type FileService struct {
	uc     *biz.FileUseCase
	logger *logger.Logger
}

func NewFileService(uc *biz.FileUseCase, log *logger.Logger) *FileService {
	if log == nil {
		log = logger.L()
	}
	return &FileService{uc: uc, logger: log}
}

// RegisterRoutes mounts the file endpoints on the given group; the caller
// supplies the upload rate limiter so tests can run without Redis.
func (s *FileService) RegisterRoutes(r *gin.RouterGroup, uploadLimiter gin.HandlerFunc) {
	files := r.Group("/files")
	{
		if uploadLimiter != nil {
			files.POST("", uploadLimiter, s.Upload)
		} else {
			files.POST("", s.Upload)
		}
		files.GET("", s.List)
		files.GET("/stats", s.Stats)
		files.GET("/:id", s.Get)
		files.GET("/:id/download", s.Download)
		files.DELETE("/:id", s.Delete)
	}
}

// Upload handles POST /api/files: multipart body with a single "file" field
// plus optional description and comma-separated tags.
func (s *FileService) Upload(c *gin.Context) {
	// Cap the request body before any of it is parsed; without this the
	// multipart parser would drain an arbitrarily large body to a temp file
	// before the per-file limit applies.
	if max := s.uc.MaxFileSize(); max > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+uploadFormOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusBadRequest, apperrors.CodeFileTooLarge, "File size exceeds limit")
			return
		}
		response.Error(c, http.StatusBadRequest, apperrors.CodeNoFile, "No file uploaded")
		return
	}
	defer file.Close()

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	uploaded, err := s.uc.Upload(c.Request.Context(), &biz.UploadRequest{
		OriginalName: header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Content:      file,
		Description:  c.PostForm("description"),
		Tags:         tags,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp := toUploadedResponse(uploaded)
	response.Created(c, gin.H{"file": resp})
}

// List handles GET /api/files?page=&limit=&mimeType=&search=.
func (s *FileService) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))

	list, err := s.uc.List(c.Request.Context(), &biz.ListFilesRequest{
		Page:     page,
		PageSize: limit,
		MimeType: c.Query("mimeType"),
		Search:   c.Query("search"),
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	data := make([]FileResponse, len(list.Items))
	for i, f := range list.Items {
		data[i] = toFileResponse(f)
	}

	response.JSON(c, FileListResponse{
		Data:       data,
		Page:       list.Page,
		Limit:      list.PageSize,
		TotalItems: list.TotalItems,
		TotalPages: list.TotalPages,
	})
}

// Get handles GET /api/files/:id.
func (s *FileService) Get(c *gin.Context) {
	f, err := s.uc.GetMetadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.OK(c, gin.H{"file": toFileResponse(f)})
}

// Download handles GET /api/files/:id/download. The bytes are streamed with
// the record's content type, an attachment disposition carrying the original
// name, and the stored size. The download counter is bumped only after the
// copy finished without error; an abort mid-stream leaves it untouched.
func (s *FileService) Download(c *gin.Context) {
	id := c.Param("id")

	f, rc, err := s.uc.Download(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", f.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.OriginalName))
	c.Header("Content-Length", strconv.FormatInt(f.Size, 10))

	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Once bytes are on the wire the response cannot be repaired;
		// log and terminate. Before that, a JSON error is still possible.
		if c.Writer.Written() {
			s.logger.Warn("file stream aborted",
				zap.String("id", id), zap.Error(err))
			c.Abort()
			return
		}
		s.logger.Error("file stream failed before any bytes were sent",
			zap.String("id", id), zap.Error(err))
		// the attachment headers were set for the file body; drop them so the
		// JSON envelope goes out with its own length and type
		h := c.Writer.Header()
		h.Del("Content-Type")
		h.Del("Content-Disposition")
		h.Del("Content-Length")
		response.Error(c, http.StatusInternalServerError, apperrors.CodeStreamError, "Error streaming file")
		return
	}

	s.uc.ConfirmDownload(c.Request.Context(), id)
}

// Delete handles DELETE /api/files/:id.
func (s *FileService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "File deleted successfully"})
}

// Stats handles GET /api/files/stats.
func (s *FileService) Stats(c *gin.Context) {
	stats, err := s.uc.Stats(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.OK(c, gin.H{"stats": toStatsResponse(stats)})
}
