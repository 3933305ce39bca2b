package gallery

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anoixa/depicts-editor/database/models"
	"github.com/anoixa/depicts-editor/database/repo/images"
)

func newTestService(t *testing.T, count int) *Service {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Image{}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("img%03d", i)
		require.NoError(t, db.Create(&models.Image{
			Model:         gorm.Model{CreatedAt: base.Add(time.Duration(i) * time.Minute)},
			Identifier:    id,
			StoredName:    id + ".webp",
			ThumbnailName: id + "_thumb.webp",
			Title:         fmt.Sprintf("image %d", i),
			MimeType:      "image/webp",
			FileSize:      123,
		}).Error)
	}

	return NewService(images.NewRepository(db), nil, nil, "http://localhost:8080")
}

func TestList(t *testing.T) {
	svc := newTestService(t, 25)

	entries, meta, err := svc.List(1, 10)
	require.NoError(t, err)

	assert.Len(t, entries, 10)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.True(t, meta.HasNext)
	assert.Equal(t, int64(25), meta.TotalItems)

	assert.Equal(t, "http://localhost:8080/media/img025.webp", entries[0].OriginalURL)
	assert.Equal(t, "http://localhost:8080/media/img025_thumb.webp", entries[0].ThumbnailURL)
}

func TestList_LastPage(t *testing.T) {
	svc := newTestService(t, 25)

	entries, meta, err := svc.List(3, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.False(t, meta.HasNext)
	assert.Equal(t, 3, meta.CurrentPage)
}

func TestList_Empty(t *testing.T) {
	svc := newTestService(t, 0)

	entries, meta, err := svc.List(1, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.Equal(t, int64(0), meta.TotalItems)
}

func TestList_ClampsParams(t *testing.T) {
	svc := newTestService(t, 5)

	// 非法页码退回第一页，per_page 超限被截断
	entries, meta, err := svc.List(0, 1000)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Equal(t, 1, meta.CurrentPage)

	_, meta, err = svc.List(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.TotalPages)
}
