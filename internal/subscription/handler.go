package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"gymdesk/internal/access"
	"gymdesk/internal/api"
	"gymdesk/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	checker *access.Checker
}

func NewHandler(service Service, checker *access.Checker) *Handler {
	return &Handler{service: service, checker: checker}
}

// @Summary      List subscriptions
// @Description  Admins see everything with filters; members see their own history; coaches are denied
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        user_id query int false "Filter by member (admin only)"
// @Param        membership_id query int false "Filter by membership (admin only)"
// @Param        status query string false "active or expired (admin only)"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} api.Response
// @Failure      403 {object} api.Response
// @Router       /subscriptions [get]
func (h *Handler) List(c *gin.Context) {
	callerID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := auth.GetUserRole(c)

	switch access.Role(role) {
	case access.RoleAdmin:
		filter := ListFilter{
			Status: c.Query("status"),
		}
		filter.UserID, _ = strconv.Atoi(c.Query("user_id"))
		filter.MembershipID, _ = strconv.Atoi(c.Query("membership_id"))
		filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		filter.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPageSize)))

		items, total, err := h.service.List(c.Request.Context(), filter)
		if err != nil {
			api.Fail(c, http.StatusInternalServerError, "Failed to fetch subscriptions")
			return
		}

		api.OK(c, http.StatusOK, api.Page{
			Items: items,
			Pagination: api.Pagination{
				Page:    filter.Page,
				PerPage: filter.PerPage,
				Total:   total,
			},
		})
	case access.RoleMember:
		items, err := h.service.History(c.Request.Context(), callerID)
		if err != nil {
			api.Fail(c, http.StatusInternalServerError, "Failed to fetch subscriptions")
			return
		}
		api.OK(c, http.StatusOK, items)
	default:
		api.Fail(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// @Summary      Get a subscription
// @Description  Admins see any; members their own; coaches those of assigned members
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subscription ID"
// @Success      200 {object} api.Response
// @Failure      403 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /subscriptions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	callerID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := auth.GetUserRole(c)

	sub, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			api.Fail(c, http.StatusNotFound, "Subscription not found")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch subscription")
		return
	}

	allowed, err := h.checker.CanAccess(c.Request.Context(), access.Role(role), callerID, access.OpSubscriptionView, sub.UserID)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to check access")
		return
	}
	if !allowed {
		api.Fail(c, http.StatusForbidden, "Insufficient permissions")
		return
	}

	api.OK(c, http.StatusOK, sub)
}

// @Summary      Get own current subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /subscriptions/current [get]
func (h *Handler) GetCurrent(c *gin.Context) {
	callerID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sub, err := h.service.GetCurrentForUser(c.Request.Context(), callerID)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch subscription")
		return
	}
	if sub == nil {
		api.Fail(c, http.StatusNotFound, "No current subscription")
		return
	}

	api.OK(c, http.StatusOK, sub)
}

// @Summary      Get own subscription history
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Router       /subscriptions/history [get]
func (h *Handler) History(c *gin.Context) {
	callerID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	items, err := h.service.History(c.Request.Context(), callerID)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch subscription history")
		return
	}

	api.OK(c, http.StatusOK, items)
}

// @Summary      Create a subscription
// @Description  Admin-only; a member can hold at most one current subscription
// @Tags         admin,subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body subscription.CreateSubscriptionRequest true "Subscription payload"
// @Success      201 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /admin/subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDateRange):
			api.Fail(c, http.StatusBadRequest, "Invalid date range")
		case errors.Is(err, ErrMemberNotFound):
			api.Fail(c, http.StatusNotFound, "Member not found")
		case errors.Is(err, ErrNotAMember):
			api.Fail(c, http.StatusBadRequest, "Subscriptions can only be created for members")
		case errors.Is(err, ErrMembershipNotFound):
			api.Fail(c, http.StatusNotFound, "Membership not found")
		case errors.Is(err, ErrActiveSubscriptionExists):
			api.Fail(c, http.StatusConflict, "User already has an active subscription")
		default:
			api.Fail(c, http.StatusInternalServerError, "Failed to create subscription")
		}
		return
	}

	api.Message(c, http.StatusCreated, sub, "Subscription created successfully")
}

// @Summary      Renew a subscription
// @Description  Extends from the stored end date or moves it to a later absolute date; never shortens
// @Tags         admin,subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subscription ID"
// @Param        request body subscription.RenewSubscriptionRequest true "Renewal payload"
// @Success      200 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/subscriptions/{id}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	var req RenewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.service.Renew(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubscriptionNotFound):
			api.Fail(c, http.StatusNotFound, "Subscription not found")
		case errors.Is(err, ErrInvalidRenewal), errors.Is(err, ErrInvalidDateRange):
			api.Fail(c, http.StatusBadRequest, err.Error())
		default:
			api.Fail(c, http.StatusInternalServerError, "Failed to renew subscription")
		}
		return
	}

	api.Message(c, http.StatusOK, sub, "Subscription renewed successfully")
}

// @Summary      Cancel a subscription
// @Description  Sets the end date to today; cancelling twice is a no-op
// @Tags         admin,subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subscription ID"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/subscriptions/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	sub, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			api.Fail(c, http.StatusNotFound, "Subscription not found")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to cancel subscription")
		return
	}

	api.Message(c, http.StatusOK, sub, "Subscription cancelled successfully")
}

// @Summary      Update a subscription
// @Tags         admin,subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subscription ID"
// @Param        request body subscription.UpdateSubscriptionRequest true "Fields to update"
// @Success      200 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/subscriptions/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubscriptionNotFound):
			api.Fail(c, http.StatusNotFound, "Subscription not found")
		case errors.Is(err, ErrInvalidDateRange):
			api.Fail(c, http.StatusBadRequest, "Invalid date range")
		default:
			api.Fail(c, http.StatusInternalServerError, "Failed to update subscription")
		}
		return
	}

	api.Message(c, http.StatusOK, sub, "Subscription updated successfully")
}

// @Summary      Delete a subscription
// @Tags         admin,subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subscription ID"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/subscriptions/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			api.Fail(c, http.StatusNotFound, "Subscription not found")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to delete subscription")
		return
	}

	api.Message(c, http.StatusOK, nil, "Subscription deleted successfully")
}

// @Summary      Subscription statistics
// @Description  Counts, active revenue and per-month volume; expiring window is 30 days
// @Tags         admin,subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Router       /admin/subscriptions/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch subscription stats")
		return
	}

	api.OK(c, http.StatusOK, stats)
}
