package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"time"

	"github.com/anoixa/depicts-editor/database/models"
	"github.com/anoixa/depicts-editor/database/repo/images"
	"github.com/anoixa/depicts-editor/storage"
	"github.com/anoixa/depicts-editor/utils"
)

const (
	// DefaultPerPage 列表默认每页条数
	DefaultPerPage = 20
	// MaxPerPage 列表每页条数上限
	MaxPerPage = 100
)

// UploadedImage 上传成功后的图片信息
type UploadedImage struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	OriginalURL  string `json:"original_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// ImageEntry 图库列表中的一条记录
type ImageEntry struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	OriginalURL  string    `json:"original_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListMeta 列表分页信息
type ListMeta struct {
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	HasNext     bool  `json:"has_next"`
	TotalItems  int64 `json:"total_items"`
}

// Service 本地图库服务：上传重编码 + 分页列表
type Service struct {
	repo    *images.Repository
	storage storage.Provider
	encoder *Encoder
	baseURL string
}

// NewService 创建图库服务
func NewService(repo *images.Repository, provider storage.Provider, encoder *Encoder, baseURL string) *Service {
	return &Service{
		repo:    repo,
		storage: provider,
		encoder: encoder,
		baseURL: baseURL,
	}
}

// Upload 接收一个上传文件，重编码为 WebP 原图和缩略图，
// 写入存储并插入一条记录。
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader, title string) (*UploadedImage, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	encoded, err := s.encoder.Encode(data)
	if err != nil {
		return nil, err
	}

	identifier := utils.GenerateStorageName()
	storedName := identifier + ".webp"
	thumbName := identifier + "_thumb.webp"

	if err := s.storage.SaveWithContext(ctx, storedName, bytes.NewReader(encoded.Original)); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	if err := s.storage.SaveWithContext(ctx, thumbName, bytes.NewReader(encoded.Thumbnail)); err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}

	image := &models.Image{
		Identifier:    identifier,
		StoredName:    storedName,
		ThumbnailName: thumbName,
		Title:         title,
		MimeType:      "image/webp",
		FileSize:      int64(len(encoded.Original)),
		Width:         encoded.Width,
		Height:        encoded.Height,
	}
	if err := s.repo.SaveImage(image); err != nil {
		return nil, fmt.Errorf("save image record: %w", err)
	}

	log.Printf("[Gallery] uploaded %s (%dx%d, %d bytes)", identifier, encoded.Width, encoded.Height, image.FileSize)

	return &UploadedImage{
		ID:           image.ID,
		Title:        image.Title,
		OriginalURL:  utils.BuildMediaURL(s.baseURL, storedName),
		ThumbnailURL: utils.BuildMediaURL(s.baseURL, thumbName),
	}, nil
}

// List 返回第 page 页的图片和分页信息。
func (s *Service) List(page, perPage int) ([]ImageEntry, *ListMeta, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	records, total, err := s.repo.ListImages(page, perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list images: %w", err)
	}

	entries := make([]ImageEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, ImageEntry{
			ID:           r.ID,
			Title:        r.Title,
			OriginalURL:  utils.BuildMediaURL(s.baseURL, r.StoredName),
			ThumbnailURL: utils.BuildMediaURL(s.baseURL, r.ThumbnailName),
			CreatedAt:    r.CreatedAt,
		})
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return entries, &ListMeta{
		TotalPages:  totalPages,
		CurrentPage: page,
		HasNext:     int64(page*perPage) < total,
		TotalItems:  total,
	}, nil
}
