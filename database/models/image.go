package models

import "gorm.io/gorm"

// Image 本地图库图片记录
// 记录创建后不可变，磁盘文件由本地存储独占管理
type Image struct {
	gorm.Model
	Identifier    string `gorm:"uniqueIndex:idx_identifier;not null"`
	StoredName    string `gorm:"not null"`
	ThumbnailName string `gorm:"not null"`
	Title         string
	MimeType      string `gorm:"not null"`
	FileSize      int64  `gorm:"not null"`
	Width         int
	Height        int
}
