package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type mallRequest struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

type categoriesRequest struct {
	Categories []string `json:"categories"`
}

type linkRequest struct {
	MallName string `json:"mallName"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListMalls 商城列表
// GET /api/malls
func (h *Handler) ListMalls(c *gin.Context) {
	malls, err := h.ledger.Malls(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": malls})
}

// CreateMall 登记商城
// POST /api/malls
func (h *Handler) CreateMall(c *gin.Context) {
	var req mallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	mall, err := h.ledger.AddMall(c.Request.Context(), req.Name, req.Categories)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mall)
}

// UpdateMallCategories 修改商城分类
// PUT /api/malls/:id/categories
func (h *Handler) UpdateMallCategories(c *gin.Context) {
	var req categoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	mall, err := h.ledger.UpdateMallCategories(c.Request.Context(), c.Param("id"), req.Categories)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mall)
}

// DeleteMall 删除商城（连同订单）
// DELETE /api/malls/:id
func (h *Handler) DeleteMall(c *gin.Context) {
	removed, err := h.ledger.DeleteMall(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removedOrders": removed})
}

// LinkMall 关联未匹配商城的订单
// POST /api/malls/:id/link
func (h *Handler) LinkMall(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	linked, err := h.ledger.LinkMall(c.Request.Context(), req.MallName, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"linked": linked})
}

// ListCategories 分类列表；带 mallId 时返回该商城可用的分类
// GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	items, err := h.ledger.CategoriesFor(c.Request.Context(), c.Query("mallId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateCategory 新增全局分类
// POST /api/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	items, err := h.ledger.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": items})
}

// DeleteCategory 删除全局分类
// DELETE /api/categories/:name
func (h *Handler) DeleteCategory(c *gin.Context) {
	items, err := h.ledger.DeleteCategory(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
