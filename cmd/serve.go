package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/spf13/cobra"

	"github.com/anoixa/depicts-editor/api/core"
	"github.com/anoixa/depicts-editor/api/middleware"
	"github.com/anoixa/depicts-editor/config"
	"github.com/anoixa/depicts-editor/database/dbcore"
	"github.com/anoixa/depicts-editor/database/repo/images"
	gallerySvc "github.com/anoixa/depicts-editor/internal/services/gallery"
	searchSvc "github.com/anoixa/depicts-editor/internal/services/search"
	"github.com/anoixa/depicts-editor/internal/wikimedia"
	"github.com/anoixa/depicts-editor/storage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// libvips 生命周期跟随进程
	vips.Startup(nil)
	defer vips.Shutdown()

	db, err := dbcore.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := dbcore.Close(db); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := dbcore.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	localStorage, err := storage.NewLocalStorage(cfg.ContentDir)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}

	// Wikimedia 客户端
	requester := wikimedia.NewRequester(cfg.UserAgent, cfg.HTTPTimeout)
	commonsClient := wikimedia.NewCommonsClient(requester, cfg.CommonsAPI)
	wikidataClient := wikimedia.NewWikidataClient(requester, cfg.WikidataAPI)
	claimWriter := wikimedia.NewClaimWriter(requester, cfg.CommonsAPI, cfg.BotUsername, cfg.BotPassword)

	if !cfg.HasBotCredentials() {
		log.Println("[Warning] Bot credentials not configured, /api/add_claim will be unavailable")
	}

	// 服务
	imageRepo := images.NewRepository(db)
	encoder := gallerySvc.NewEncoder(cfg.WebPQuality, cfg.ThumbnailMaxDim)
	galleryService := gallerySvc.NewService(imageRepo, localStorage, encoder, cfg.BaseURL())
	searchService := searchSvc.NewService(commonsClient, wikidataClient)

	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)

	server := core.NewServer(&core.RouterDependencies{
		DB:             db,
		SearchService:  searchService,
		GalleryService: galleryService,
		ClaimWriter:    claimWriter,
		Storage:        localStorage,
		APIRateLimiter: apiRateLimiter,
		Config:         cfg,
	})

	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	apiRateLimiter.StopCleanup()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
