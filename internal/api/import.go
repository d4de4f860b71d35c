package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"malldash/internal/importer"
	"malldash/internal/model"
	"malldash/internal/parser"
)

// CommitRequest 提交导入请求
type CommitRequest struct {
	Filename string        `json:"filename"`
	Sheet    string        `json:"sheet"`
	Layout   parser.Layout `json:"layout"`
	Orders   []model.Order `json:"orders"`
}

// PreviewImport 解析上传文件，返回预览（不写入）
// POST /api/import/preview  multipart: file, sheet
func (h *Handler) PreviewImport(c *gin.Context) {
	header, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := h.importer.Preview(c.Request.Context(), importer.PreviewRequest{
		Filename: header.Filename,
		Reader:   file,
		Sheet:    h.sheetParam(c),
	}, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// PreviewImportStream 解析上传文件 (SSE 流式响应)
// POST /api/import/preview/stream
func (h *Handler) PreviewImportStream(c *gin.Context) {
	header, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progress := make(chan importer.ProgressEvent, 100)
	req := importer.PreviewRequest{
		Filename: header.Filename,
		Reader:   file,
		Sheet:    h.sheetParam(c),
	}
	ctx := c.Request.Context()
	go func() {
		defer close(progress)
		// 错误已经作为 error 事件发出
		_, _ = h.importer.Preview(ctx, req, progress)
	}()

	for event := range progress {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// CommitImport 导入选中的订单
// POST /api/import/commit
func (h *Handler) CommitImport(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.importer.Commit(c.Request.Context(), importer.CommitRequest{
		Filename: req.Filename,
		Sheet:    req.Sheet,
		Layout:   req.Layout,
		Orders:   req.Orders,
	}, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListImports 导入历史
// GET /api/imports?limit=
func (h *Handler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.store.ListImports(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

func (h *Handler) openUpload(c *gin.Context) (*multipart.FileHeader, multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, nil, false
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return nil, nil, false
	}
	return header, file, true
}

func (h *Handler) sheetParam(c *gin.Context) string {
	if s := c.PostForm("sheet"); s != "" {
		return s
	}
	return h.opts.DefaultSheet
}
