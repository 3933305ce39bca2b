package images

import (
	"fmt"
	"testing"

	"github.com/anoixa/depicts-editor/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// 自动迁移
	err = db.AutoMigrate(&models.Image{})
	require.NoError(t, err)

	return db
}

func seedImages(t *testing.T, repo *Repository, n int) {
	for i := 0; i < n; i++ {
		err := repo.SaveImage(&models.Image{
			Identifier:    fmt.Sprintf("img%03d", i),
			StoredName:    fmt.Sprintf("img%03d.webp", i),
			ThumbnailName: fmt.Sprintf("img%03d_thumb.webp", i),
			Title:         fmt.Sprintf("title %d", i),
			MimeType:      "image/webp",
			FileSize:      100,
		})
		require.NoError(t, err)
	}
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	image := &models.Image{
		Identifier:    "abc123",
		StoredName:    "abc123.webp",
		ThumbnailName: "abc123_thumb.webp",
		Title:         "a cat",
		MimeType:      "image/webp",
		FileSize:      1234,
	}
	require.NoError(t, repo.SaveImage(image))

	got, err := repo.GetImageByIdentifier("abc123")
	require.NoError(t, err)
	assert.Equal(t, "a cat", got.Title)
	assert.Equal(t, "abc123_thumb.webp", got.ThumbnailName)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.GetImageByIdentifier("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListImages_Pagination(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedImages(t, repo, 25)

	page1, total, err := repo.ListImages(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page1, 10)

	page3, total, err := repo.ListImages(3, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page3, 5)

	// 不同页之间无重复
	seen := make(map[uint]bool)
	for _, img := range page1 {
		seen[img.ID] = true
	}
	for _, img := range page3 {
		assert.False(t, seen[img.ID], "image %d returned on two pages", img.ID)
	}
}

func TestRepository_ListImages_EmptyPage(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedImages(t, repo, 3)

	images, total, err := repo.ListImages(5, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, images)
}
