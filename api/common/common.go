package common

import (
	"github.com/gin-gonic/gin"
)

// RespondError 按统一的 {"error": ...} 形式返回错误
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}
