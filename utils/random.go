package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateStorageName 生成随机存储文件名（不含扩展名）
func GenerateStorageName() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
