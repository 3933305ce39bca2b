package search

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/depicts-editor/api/common"
	searchSvc "github.com/anoixa/depicts-editor/internal/services/search"
	"github.com/anoixa/depicts-editor/internal/wikimedia"
)

// Handler 搜索相关接口
type Handler struct {
	service *searchSvc.Service
}

// NewHandler 创建搜索处理器
func NewHandler(service *searchSvc.Service) *Handler {
	return &Handler{service: service}
}

// Search 处理 GET /api/search?q=&page=
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		common.RespondError(c, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.service.Search(c.Request.Context(), query, page)
	if err != nil {
		log.Printf("[Search] search %q page %d failed: %v", query, page, err)
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// FileDepicts 处理 GET /api/file/:pageid
func (h *Handler) FileDepicts(c *gin.Context) {
	pageID, err := strconv.ParseInt(c.Param("pageid"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid pageid")
		return
	}

	mid, depicts, err := h.service.FileDepicts(c.Request.Context(), pageID)
	if err != nil {
		if errors.Is(err, wikimedia.ErrEntityNotFound) {
			common.RespondError(c, http.StatusNotFound, "entity not found")
			return
		}
		log.Printf("[Search] file %d depicts failed: %v", pageID, err)
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mid":     mid,
		"depicts": depicts,
	})
}

// WikidataSearch 处理 GET /api/wikidata_search?q=
func (h *Handler) WikidataSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, []wikimedia.EntityResult{})
		return
	}

	results, err := h.service.SearchEntities(c.Request.Context(), query)
	if err != nil {
		log.Printf("[Search] wikidata search %q failed: %v", query, err)
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []wikimedia.EntityResult{}
	}

	c.JSON(http.StatusOK, results)
}
