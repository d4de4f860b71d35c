package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"malldash/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Malls          int              `json:"malls"`          // 商城数
	Orders         int              `json:"orders"`         // 订单数
	Categories     int              `json:"categories"`     // 全局分类数
	UnlinkedOrders int              `json:"unlinkedOrders"` // 未关联商城的订单
	LastImport     *store.ImportLog `json:"lastImport"`     // 最近一次导入
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	col, err := h.store.Load(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := StatusResponse{
		Malls:      len(col.Malls),
		Orders:     len(col.Orders),
		Categories: len(col.Categories),
	}
	for _, o := range col.Orders {
		if o.MallID == "" {
			resp.UnlinkedOrders++
		}
	}

	if logs, err := h.store.ListImports(ctx, 1); err == nil && len(logs) > 0 {
		resp.LastImport = &logs[0]
	}

	c.JSON(http.StatusOK, resp)
}
