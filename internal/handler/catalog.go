package handler

import (
	"net/http"

	"b2bportal/internal/middleware"
	"b2bportal/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// View godoc
// @Summary      Product catalog
// @Description  Guests see the whole catalog with five recommendations and a login prompt.
// @Description  Customers see only what their profile allows, with their curated recommendations.
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CatalogResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/catalog [get]
func (h *CatalogHandler) View(c *gin.Context) {
	resp, err := h.svc.View(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
