package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"malldash/internal/importer"
	"malldash/internal/service/ledger"
	"malldash/internal/store"
)

// Options 处理器选项
type Options struct {
	MaxUploadBytes int64  // 上传大小上限，0 表示 20MB
	DefaultSheet   string // 预览未指定 Sheet 时使用
	Logger         zerolog.Logger
}

// Handler API 处理器
type Handler struct {
	store    *store.Store
	ledger   *ledger.Service
	importer *importer.Coordinator
	opts     Options
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, coordinator *importer.Coordinator, ledgerSvc *ledger.Service, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	return &Handler{
		store:    st,
		ledger:   ledgerSvc,
		importer: coordinator,
		opts:     opts,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 商城
	router.GET("/malls", h.ListMalls)
	router.POST("/malls", h.CreateMall)
	router.PUT("/malls/:id/categories", h.UpdateMallCategories)
	router.DELETE("/malls/:id", h.DeleteMall)
	router.POST("/malls/:id/link", h.LinkMall)

	// 分类
	router.GET("/categories", h.ListCategories)
	router.POST("/categories", h.CreateCategory)
	router.DELETE("/categories/:name", h.DeleteCategory)

	// 订单
	router.GET("/orders", h.ListOrders)
	router.GET("/orders/today", h.TodayOrders)
	router.GET("/orders/export", h.ExportOrders)
	router.POST("/orders", h.CreateOrder)
	router.DELETE("/orders/:id", h.DeleteOrder)

	// 统计
	router.GET("/stats", h.GetStats)

	// 导入
	router.POST("/import/preview", h.PreviewImport)
	router.POST("/import/preview/stream", h.PreviewImportStream)
	router.POST("/import/commit", h.CommitImport)
	router.GET("/imports", h.ListImports)
}

// writeError 按错误类型映射状态码
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrMallNotFound), errors.Is(err, ledger.ErrOrderNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidName),
		errors.Is(err, ledger.ErrInvalidOrder),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrSheetNotFound),
		errors.Is(err, importer.ErrInvalidWorkbook),
		errors.Is(err, importer.ErrEmptySelection),
		errors.Is(err, importer.ErrNoValidOrders):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
