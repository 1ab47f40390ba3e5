package attendance

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

// @Summary      Check in
// @Description  Requires a current subscription and no open session
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} api.Response
// @Failure      403 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /attendance/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	a, err := h.service.CheckIn(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoCurrentSubscription):
			api.Fail(c, http.StatusForbidden, "An active subscription is required to check in")
		case errors.Is(err, ErrAlreadyCheckedIn):
			api.Fail(c, http.StatusConflict, "Already checked in")
		default:
			api.Fail(c, http.StatusInternalServerError, "Failed to check in")
		}
		return
	}

	api.Message(c, http.StatusCreated, a, "Checked in successfully")
}

// @Summary      Check out
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Response
// @Failure      409 {object} api.Response
// @Router       /attendance/check-out [post]
func (h *Handler) CheckOut(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	a, err := h.service.CheckOut(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoOpenSession) {
			api.Fail(c, http.StatusConflict, "No open session to check out of")
			return
		}
		api.Fail(c, http.StatusInternalServerError, "Failed to check out")
		return
	}

	api.Message(c, http.StatusOK, a, "Checked out successfully")
}

// @Summary      Own attendance history
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max rows"
// @Success      200 {object} api.Response
// @Router       /attendance/history [get]
func (h *Handler) History(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	attendances, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch attendance history")
		return
	}

	api.OK(c, http.StatusOK, attendances)
}

// @Summary      A member's attendance history
// @Description  Admins see any member; coaches only assigned members
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Param        limit query int false "Max rows"
// @Success      200 {object} api.Response
// @Failure      403 {object} api.Response
// @Router       /attendance/users/{id} [get]
func (h *Handler) MemberHistory(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid member ID")
		return
	}

	callerID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := auth.GetUserRole(c)

	allowed, err := h.checker.CanAccess(c.Request.Context(), access.Role(role), callerID, access.OpAttendanceView, memberID)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to check access")
		return
	}
	if !allowed {
		api.Fail(c, http.StatusForbidden, "Insufficient permissions")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	attendances, err := h.service.History(c.Request.Context(), memberID, limit)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch attendance history")
		return
	}

	api.OK(c, http.StatusOK, attendances)
}

// @Summary      Daily check-in counts
// @Tags         admin,attendance
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "Window in days"
// @Success      200 {object} api.Response
// @Router       /admin/attendance/daily [get]
func (h *Handler) DailyCounts(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	counts, err := h.service.DailyCounts(c.Request.Context(), days)
	if err != nil {
		api.Fail(c, http.StatusInternalServerError, "Failed to fetch attendance counts")
		return
	}

	api.OK(c, http.StatusOK, counts)
}
