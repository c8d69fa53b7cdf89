package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rwa-portal/rwa-backend/internal/file/biz"
	"gorm.io/gorm"
)

// FilePO is the database model for file records.
type FilePO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	StoredName   string    `gorm:"column:stored_name;size:255;not null;uniqueIndex:idx_files_stored_name"`
	OriginalName string    `gorm:"column:original_name;size:512;not null;index:idx_files_original_name"`
	MimeType     string    `gorm:"column:mime_type;size:100;not null;index:idx_files_mime_type"`
	Size         int64     `gorm:"column:size;not null"`
	StoragePath  string    `gorm:"column:storage_path;size:1024;not null"`
	URL          string    `gorm:"column:url;size:512;not null"`
	Description  string    `gorm:"column:description;size:500"`
	Tags         string    `gorm:"column:tags;type:text"`
	Downloads    int64     `gorm:"column:downloads;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;index:idx_files_created_at,sort:desc"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (FilePO) TableName() string {
	return "files"
}

// FileRepo is the gorm-backed record store.
type FileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) *FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, f *biz.File) error {
	po := toPO(f)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (*biz.File, error) {
	var po FilePO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return toDomain(&po), nil
}

func (r *FileRepo) List(ctx context.Context, req *biz.ListFilesRequest) ([]*biz.File, int64, error) {
	query := r.db.WithContext(ctx).Model(&FilePO{})

	if req.MimeType != "" {
		query = query.Where("mime_type = ?", req.MimeType)
	}
	if req.Search != "" {
		query = query.Where("original_name ILIKE ?", "%"+escapeLike(req.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count file records: %w", err)
	}

	var pos []FilePO
	offset := (req.Page - 1) * req.PageSize
	err := query.Order("created_at DESC").
		Limit(req.PageSize).
		Offset(offset).
		Find(&pos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list file records: %w", err)
	}

	files := make([]*biz.File, len(pos))
	for i := range pos {
		files[i] = toDomain(&pos[i])
	}
	return files, total, nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&FilePO{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete file record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrFileNotFound
	}
	return nil
}

// IncrementDownloads runs a single atomic UPDATE so concurrent downloads
// never lose counts.
func (r *FileRepo) IncrementDownloads(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&FilePO{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment downloads: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrFileNotFound
	}
	return nil
}

func (r *FileRepo) Stats(ctx context.Context) (*biz.Stats, error) {
	var agg struct {
		TotalFiles     int64
		TotalSize      int64
		AvgSize        float64
		TotalDownloads int64
	}

	err := r.db.WithContext(ctx).Model(&FilePO{}).
		Select("COUNT(*) AS total_files, COALESCE(SUM(size), 0) AS total_size, COALESCE(AVG(size), 0) AS avg_size, COALESCE(SUM(downloads), 0) AS total_downloads").
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate file stats: %w", err)
	}

	var byType []biz.TypeStat
	err = r.db.WithContext(ctx).Model(&FilePO{}).
		Select("mime_type, COUNT(*) AS count, COALESCE(SUM(size), 0) AS total_size").
		Group("mime_type").
		Order("count DESC").
		Scan(&byType).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate file stats by type: %w", err)
	}

	return &biz.Stats{
		TotalFiles:     agg.TotalFiles,
		TotalSize:      agg.TotalSize,
		AvgSize:        agg.AvgSize,
		TotalDownloads: agg.TotalDownloads,
		FilesByType:    byType,
	}, nil
}

func toPO(f *biz.File) *FilePO {
	return &FilePO{
		ID:           f.ID,
		StoredName:   f.StoredName,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		StoragePath:  f.StoragePath,
		URL:          f.URL,
		Description:  f.Description,
		Tags:         joinTags(f.Tags),
		Downloads:    f.Downloads,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toDomain(po *FilePO) *biz.File {
	return &biz.File{
		ID:           po.ID,
		StoredName:   po.StoredName,
		OriginalName: po.OriginalName,
		MimeType:     po.MimeType,
		Size:         po.Size,
		StoragePath:  po.StoragePath,
		URL:          po.URL,
		Description:  po.Description,
		Tags:         splitTags(po.Tags),
		Downloads:    po.Downloads,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

// Tags are normalized once here, at the boundary: stored comma-joined,
// exposed as a slice of trimmed strings.
func joinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
