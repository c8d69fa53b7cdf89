package service

import (
	"time"

	"github.com/rwa-portal/rwa-backend/internal/file/biz"
)

// UploadedFileResponse is the projection returned from a successful upload.
type UploadedFileResponse struct {
	ID           string `json:"_id"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

// FileResponse is the full public projection of a file record. StoragePath
// and StoredName are deliberately absent.
type FileResponse struct {
	ID           string    `json:"_id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Downloads    int64     `json:"downloads"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
}

// FileListResponse is the bare pagination envelope of GET /api/files.
type FileListResponse struct {
	Data       []FileResponse `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int64          `json:"totalPages"`
}

// TypeStatResponse keys the MIME type as _id, matching the grouped
// aggregation shape the client expects.
type TypeStatResponse struct {
	MimeType  string `json:"_id"`
	Count     int64  `json:"count"`
	TotalSize int64  `json:"totalSize"`
}

// StatsResponse is the payload of GET /api/files/stats.
type StatsResponse struct {
	TotalFiles     int64              `json:"totalFiles"`
	TotalSize      int64              `json:"totalSize"`
	AvgSize        float64            `json:"avgSize"`
	TotalDownloads int64              `json:"totalDownloads"`
	FilesByType    []TypeStatResponse `json:"filesByType"`
}

func toUploadedResponse(f *biz.File) UploadedFileResponse {
	return UploadedFileResponse{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		URL:          f.URL,
		Size:         f.Size,
		MimeType:     f.MimeType,
	}
}

func toFileResponse(f *biz.File) FileResponse {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return FileResponse{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		URL:          f.URL,
		UploadedAt:   f.CreatedAt,
		Downloads:    f.Downloads,
		Description:  f.Description,
		Tags:         tags,
	}
}

func toStatsResponse(s *biz.Stats) StatsResponse {
	byType := make([]TypeStatResponse, len(s.FilesByType))
	for i, t := range s.FilesByType {
		byType[i] = TypeStatResponse{
			MimeType:  t.MimeType,
			Count:     t.Count,
			TotalSize: t.TotalSize,
		}
	}
	return StatsResponse{
		TotalFiles:     s.TotalFiles,
		TotalSize:      s.TotalSize,
		AvgSize:        s.AvgSize,
		TotalDownloads: s.TotalDownloads,
		FilesByType:    byType,
	}
}
