package core

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handlerClaims "github.com/anoixa/depicts-editor/api/handler/claims"
	handlerGallery "github.com/anoixa/depicts-editor/api/handler/gallery"
	handlerSearch "github.com/anoixa/depicts-editor/api/handler/search"
	"github.com/anoixa/depicts-editor/api/middleware"
	"github.com/anoixa/depicts-editor/config"
	gallerySvc "github.com/anoixa/depicts-editor/internal/services/gallery"
	searchSvc "github.com/anoixa/depicts-editor/internal/services/search"
	"github.com/anoixa/depicts-editor/internal/wikimedia"
	"github.com/anoixa/depicts-editor/storage"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	DB             *gorm.DB
	SearchService  *searchSvc.Service
	GalleryService *gallerySvc.Service
	ClaimWriter    *wikimedia.ClaimWriter
	Storage        storage.Provider
	APIRateLimiter *middleware.IPRateLimiter
	Config         *config.Config
}

// SetupRouter 创建 gin 引擎并注册所有路由
func SetupRouter(deps *RouterDependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// 仅开发版本启用 gin 日志
	if config.CommitHash != "n/a" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	registerBasicRoutes(router, deps)
	registerMediaRoutes(router, deps)
	registerAPIRoutes(router, deps)

	return router
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	router.GET("/health", healthHandler(deps))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
}

// registerMediaRoutes 注册本地图片静态访问
func registerMediaRoutes(router *gin.Engine, deps *RouterDependencies) {
	mediaGroup := router.Group("/media")
	mediaGroup.Use(func(c *gin.Context) {
		// 文件名随机且记录不可变，可以长期缓存
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Next()
	})
	mediaGroup.Static("/", deps.Config.ContentDir)
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	searchHandler := handlerSearch.NewHandler(deps.SearchService)
	claimsHandler := handlerClaims.NewHandler(deps.ClaimWriter, deps.Config.HasBotCredentials())
	galleryHandler := handlerGallery.NewHandler(deps.GalleryService)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	if deps.APIRateLimiter != nil {
		apiGroup.Use(deps.APIRateLimiter.Middleware())
	}
	{
		apiGroup.GET("/search", searchHandler.Search)                  // GET /api/search?q=&page=
		apiGroup.GET("/file/:pageid", searchHandler.FileDepicts)       // GET /api/file/{pageid}
		apiGroup.GET("/wikidata_search", searchHandler.WikidataSearch) // GET /api/wikidata_search?q=
		apiGroup.POST("/add_claim", claimsHandler.AddClaim)            // POST /api/add_claim
		apiGroup.POST("/upload", galleryHandler.Upload)                // POST /api/upload
		apiGroup.GET("/images", galleryHandler.List)                   // GET /api/images?page=&per_page=
	}
}
