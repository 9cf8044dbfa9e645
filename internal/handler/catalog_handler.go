package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yuimhosin/datadashboard/internal/catalog"
	"github.com/yuimhosin/datadashboard/pkg/response"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// ListSources 获取数据源列表
// GET /api/sources?category=Economy
func (h *CatalogHandler) ListSources(c *gin.Context) {
	category := c.Query("category")
	sources, err := h.catalog.Sources(category)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownCategory) {
			response.UnknownCategory(c, category)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, sources)
}

// ListCategories 获取分类筛选标签
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	response.Success(c, h.catalog.Categories())
}

// ListCompliance 获取数据出境合规路径
func (h *CatalogHandler) ListCompliance(c *gin.Context) {
	response.Success(c, h.catalog.Compliance())
}
