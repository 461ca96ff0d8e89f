package handler

import (
	"errors"
	"net/http"

	"b2bportal/internal/apierror"
	"b2bportal/internal/dto"
	"b2bportal/internal/middleware"
	"b2bportal/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogPath is where an empty preview sends the client back to.
const CatalogPath = "/v1/catalog"

type CheckoutHandler struct{ svc service.OrderService }

func NewCheckoutHandler(svc service.OrderService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Preview godoc
// @Summary      Price a selection
// @Description  Reads qty_<id> form fields. Nothing is stored. An empty selection answers 303 to the catalog.
// @Tags         checkout
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Success      200 {object} dto.PreviewResponse
// @Success      303 {object} dto.RedirectResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/checkout/preview [post]
func (h *CheckoutHandler) Preview(c *gin.Context) {
	fields, err := formFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid form body"))
		return
	}

	resp, err := h.svc.Preview(c.Request.Context(), fields)
	if errors.Is(err, service.ErrNothingSelected) {
		c.Header("Location", CatalogPath)
		c.JSON(http.StatusSeeOther, dto.RedirectResponse{Redirect: CatalogPath})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary      Place an order
// @Description  Reads name, phone, email and final_qty_<id> form fields. Staff are notified after commit.
// @Tags         checkout
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} dto.ConfirmResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/checkout/confirm [post]
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var contact dto.ContactForm
	if !bindForm(c, &contact) {
		return
	}
	fields, err := formFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid form body"))
		return
	}

	resp, err := h.svc.Confirm(c.Request.Context(), middleware.AccountID(c), contact, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
