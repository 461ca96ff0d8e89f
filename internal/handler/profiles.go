package handler

import (
	"net/http"

	"b2bportal/internal/dto"
	"b2bportal/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfilesHandler struct{ svc service.ProfileService }

func NewProfilesHandler(svc service.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{svc: svc}
}

// Get godoc
// @Summary      Customer visibility profile
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Param        account_id path int true "Account ID"
// @Success      200 {object} dto.ProfileResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/staff/profiles/{account_id} [get]
func (h *ProfilesHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "account_id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Edit region, warehouse and keyword rules
// @Description  Omitted fields are left unchanged. An empty warehouse list means ALL.
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account_id path int                      true "Account ID"
// @Param        body       body dto.UpdateProfileRequest true "Rules"
// @Success      200 {object} dto.ProfileResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/staff/profiles/{account_id} [put]
func (h *ProfilesHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "account_id")
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRules(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetRecommendations godoc
// @Summary      Replace the curated recommendations
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account_id path int                           true "Account ID"
// @Param        body       body dto.SetRecommendationsRequest true "Product IDs"
// @Success      200 {object} dto.ProfileResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/staff/profiles/{account_id}/recommendations [put]
func (h *ProfilesHandler) SetRecommendations(c *gin.Context) {
	id, ok := uintParam(c, "account_id")
	if !ok {
		return
	}
	var req dto.SetRecommendationsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetRecommendations(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
