package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/anoixa/depicts-editor/config"
	"github.com/anoixa/depicts-editor/storage"
)

var startTime = time.Now()

func healthHandler(deps *RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{
			"database": checkDatabaseHealth(deps.DB),
			"storage":  checkStorageHealth(c, deps.Storage),
		}

		httpStatus := http.StatusOK
		for _, result := range checks {
			if result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(httpStatus, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks":  checks,
		})
	}
}

func checkDatabaseHealth(db *gorm.DB) string {
	if db == nil {
		return "not initialized"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(c *gin.Context, provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(c.Request.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
