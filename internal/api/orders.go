package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"malldash/internal/exporter"
	"malldash/internal/service/dashboard"
	"malldash/internal/service/ledger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListOrders 订单列表
// GET /api/orders?from=&to=&mallId=&category=
func (h *Handler) ListOrders(c *gin.Context) {
	var filter dashboard.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	orders, err := h.ledger.Orders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	items := filter.Apply(orders)
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// TodayOrders 某天的订单，默认今天
// GET /api/orders/today?date=&mallId=
func (h *Handler) TodayOrders(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	orders, err := h.ledger.Orders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	items := dashboard.Today(orders, date, c.Query("mallId"))
	c.JSON(http.StatusOK, gin.H{
		"date":    date,
		"items":   items,
		"summary": dashboard.Summarize(items),
	})
}

// CreateOrder 手工录入订单
// POST /api/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var req ledger.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, err := h.ledger.AddOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// DeleteOrder 删除订单
// DELETE /api/orders/:id
func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.ledger.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats 统计
// GET /api/stats?from=&to=&mallId=&category=
func (h *Handler) GetStats(c *gin.Context) {
	var filter dashboard.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	orders, err := h.ledger.Orders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard.Summarize(filter.Apply(orders)))
}

// ExportOrders 导出筛选后的订单
// GET /api/orders/export?from=&to=&mallId=&category=
func (h *Handler) ExportOrders(c *gin.Context) {
	var filter dashboard.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	ctx := c.Request.Context()
	col, err := h.store.Load(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	f, err := exporter.New(col.Malls, nil).Export(filter.Apply(col.Orders))
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", exportContentDisposition(time.Now()))
	if err := f.Write(c.Writer); err != nil {
		h.opts.Logger.Error().Err(err).Msg("write export failed")
	}
}

// exportContentDisposition 下载文件名（ASCII 兜底 + UTF-8 文件名）
func exportContentDisposition(now time.Time) string {
	day := now.Format("20060102")
	ascii := fmt.Sprintf("orders-%s.xlsx", day)
	utf := url.PathEscape(fmt.Sprintf("주문내역_%s.xlsx", day))
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", ascii, utf)
}
