package claims

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/depicts-editor/api/common"
	"github.com/anoixa/depicts-editor/internal/wikimedia"
)

// Handler depicts 声明写入接口
type Handler struct {
	writer         *wikimedia.ClaimWriter
	hasCredentials bool
}

// NewHandler 创建声明写入处理器
func NewHandler(writer *wikimedia.ClaimWriter, hasCredentials bool) *Handler {
	return &Handler{
		writer:         writer,
		hasCredentials: hasCredentials,
	}
}

type addClaimRequest struct {
	MID string `json:"mid"`
	QID string `json:"qid"`
}

// AddClaim 处理 POST /api/add_claim
//
// 参数缺失直接 400，不发起任何上游请求；凭据未配置视为
// 服务配置错误返回 500；上游 API 报错以 400 转发其消息。
func (h *Handler) AddClaim(c *gin.Context) {
	var req addClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MID == "" || req.QID == "" {
		common.RespondError(c, http.StatusBadRequest, "missing mid or qid")
		return
	}

	if !h.hasCredentials {
		common.RespondError(c, http.StatusInternalServerError, "bot credentials not configured")
		return
	}

	data, err := h.writer.AddDepicts(c.Request.Context(), req.MID, req.QID)
	if err != nil {
		var apiErr *wikimedia.APIError
		if errors.As(err, &apiErr) {
			common.RespondError(c, http.StatusBadRequest, apiErr.Info)
			return
		}
		log.Printf("[Claims] add claim %s -> %s failed: %v", req.MID, req.QID, err)
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    json.RawMessage(data),
	})
}
