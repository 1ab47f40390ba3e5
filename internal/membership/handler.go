package membership

import (
	"errors"
	"net/http"
	"strconv"

	"gymdesk/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      List membership catalog
// @Description  Ordered by price ascending; filter with active_only and search
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        active_only query bool false "Only active memberships"
// @Param        search query string false "Name/description search"
// @Success      200 {object} api.Response
// @Router       /memberships [get]
func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		ActiveOnly: c.Query("active_only") == "true",
		Search:     c.Query("search"),
	}

	memberships, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch memberships")
		return
	}

	api.OK(c, http.StatusOK, memberships)
}

// @Summary      Get a membership
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /memberships/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid membership ID")
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			api.Fail(c, http.StatusNotFound, "Membership not found")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch membership")
		return
	}

	api.OK(c, http.StatusOK, m)
}

// @Summary      Create a membership
// @Description  Admin-only: add a plan to the catalog
// @Tags         admin,memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.CreateMembershipRequest true "Membership payload"
// @Success      201 {object} api.Response
// @Failure      400 {object} api.Response
// @Router       /admin/memberships [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to create membership")
		return
	}

	api.Message(c, http.StatusCreated, m, "Membership created successfully")
}

// @Summary      Update a membership
// @Tags         admin,memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Param        request body membership.UpdateMembershipRequest true "Fields to update"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/memberships/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid membership ID")
		return
	}

	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			api.Fail(c, http.StatusNotFound, "Membership not found")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to update membership")
		return
	}

	api.Message(c, http.StatusOK, m, "Membership updated successfully")
}

// @Summary      Delete a membership
// @Description  Fails with 409 while any subscription references the plan
// @Tags         admin,memberships
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /admin/memberships/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid membership ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrMembershipNotFound):
			api.Fail(c, http.StatusNotFound, "Membership not found")
		case errors.Is(err, ErrMembershipInUse):
			api.Fail(c, http.StatusConflict, "Cannot delete membership that has subscriptions")
		default:
			api.Fail(c, http.StatusInternalServerError, "Failed to delete membership")
		}
		return
	}

	api.Message(c, http.StatusOK, nil, "Membership deleted successfully")
}

// @Summary      Membership statistics
// @Tags         admin,memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Router       /admin/memberships/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch membership stats")
		return
	}

	api.OK(c, http.StatusOK, stats)
}
