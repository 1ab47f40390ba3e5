package payment

import (
	"errors"
	"net/http"
	"strconv"

	"gymdesk/internal/api"
	"gymdesk/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Record a payment
// @Tags         admin,payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.RecordPaymentRequest true "Payment payload"
// @Success      201 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/payments [post]
func (h *Handler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			api.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrPayerNotFound):
			api.Fail(c, http.StatusNotFound, "Payer not found")
		case errors.Is(err, ErrSubscriptionMismatch):
			api.Fail(c, http.StatusBadRequest, "Subscription does not belong to the payer")
		default:
			api.Fail(c, http.StatusInternalServerError, "Failed to record payment")
		}
		return
	}

	api.Message(c, http.StatusCreated, p, "Payment recorded successfully")
}

// @Summary      List payments
// @Tags         admin,payments
// @Produce      json
// @Security     BearerAuth
// @Param        user_id query int false "Filter by payer"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} api.Response
// @Router       /admin/payments [get]
func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{}
	filter.UserID, _ = strconv.Atoi(c.Query("user_id"))
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPageSize)))

	payments, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}

	api.OK(c, http.StatusOK, api.Page{
		Items: payments,
		Pagination: api.Pagination{
			Page:    filter.Page,
			PerPage: filter.PerPage,
			Total:   total,
		},
	})
}

// @Summary      List own payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Router       /payments [get]
func (h *Handler) ListOwn(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	payments, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}

	api.OK(c, http.StatusOK, payments)
}

// @Summary      Monthly revenue report
// @Tags         admin,payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Router       /admin/payments/revenue [get]
func (h *Handler) Revenue(c *gin.Context) {
	revenue, err := h.service.MonthlyRevenue(c.Request.Context())
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch revenue report")
		return
	}

	api.OK(c, http.StatusOK, revenue)
}
