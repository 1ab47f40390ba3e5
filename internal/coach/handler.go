package coach

import (
	"errors"
	"net/http"
	"strconv"

	"gymdesk/internal/api"
	"gymdesk/internal/auth"
	"gymdesk/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Assign a member to a coach
// @Tags         admin,coaches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body coach.AssignRequest true "Assignment payload"
// @Success      201 {object} api.Response
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /admin/coach-members [post]
func (h *Handler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.service.Assign(c.Request.Context(), req.CoachID, req.MemberID)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			api.Fail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrNotACoach), errors.Is(err, ErrNotAMember):
			api.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrAlreadyAssigned):
			api.Fail(c, http.StatusConflict, "Member is already assigned to this coach")
		default:
			api.Fail(c, http.StatusInternalServerError, "Failed to assign member")
		}
		return
	}

	api.Message(c, http.StatusCreated, assignment, "Member assigned successfully")
}

// @Summary      Unassign a member from a coach
// @Tags         admin,coaches
// @Produce      json
// @Security     BearerAuth
// @Param        coach_id query int true "Coach ID"
// @Param        member_id query int true "Member ID"
// @Success      200 {object} api.Response
// @Failure      404 {object} api.Response
// @Router       /admin/coach-members [delete]
func (h *Handler) Unassign(c *gin.Context) {
	coachID, err := strconv.Atoi(c.Query("coach_id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid coach_id")
		return
	}
	memberID, err := strconv.Atoi(c.Query("member_id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid member_id")
		return
	}

	if err := h.service.Unassign(c.Request.Context(), coachID, memberID); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			api.Fail(c, http.StatusNotFound, "Assignment not found")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to unassign member")
		return
	}

	api.Message(c, http.StatusOK, nil, "Member unassigned successfully")
}

// @Summary      List a coach's members
// @Tags         admin,coaches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Coach ID"
// @Success      200 {object} api.Response
// @Router       /admin/coaches/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	coachID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid coach ID")
		return
	}

	members, err := h.service.ListMembersForCoach(c.Request.Context(), coachID)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch assigned members")
		return
	}

	api.OK(c, http.StatusOK, members)
}

// @Summary      List own assigned members
// @Description  Coach-only view of the members assigned to the caller
// @Tags         coaches
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Router       /coach/members [get]
func (h *Handler) ListOwnMembers(c *gin.Context) {
	coachID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	members, err := h.service.ListMembersForCoach(c.Request.Context(), coachID)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch assigned members")
		return
	}

	api.OK(c, http.StatusOK, members)
}
