package gallery

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/depicts-editor/api/common"
	gallerySvc "github.com/anoixa/depicts-editor/internal/services/gallery"
)

// Handler 本地图库接口
type Handler struct {
	service *gallerySvc.Service
}

// NewHandler 创建图库处理器
func NewHandler(service *gallerySvc.Service) *Handler {
	return &Handler{service: service}
}

// Upload 处理 POST /api/upload（multipart：file + 可选 title）
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "missing file")
		return
	}
	title := c.PostForm("title")

	image, err := h.service.Upload(c.Request.Context(), fileHeader, title)
	if err != nil {
		if errors.Is(err, gallerySvc.ErrInvalidImage) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[Gallery] upload failed: %v", err)
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"image":   image,
	})
}

// List 处理 GET /api/images?page=&per_page=
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	entries, meta, err := h.service.List(page, perPage)
	if err != nil {
		log.Printf("[Gallery] list failed: %v", err)
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images": entries,
		"meta":   meta,
	})
}
