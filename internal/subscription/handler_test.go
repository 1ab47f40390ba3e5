package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gymdesk/internal/access"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req CreateSubscriptionRequest) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id int) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) Renew(ctx context.Context, id int, req RenewSubscriptionRequest) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) Cancel(ctx context.Context, id int) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, id int, req UpdateSubscriptionRequest) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) List(ctx context.Context, filter ListFilter) ([]SubscriptionWithDetails, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]SubscriptionWithDetails), args.Int(1), args.Error(2)
}

func (m *MockService) History(ctx context.Context, userID int) ([]SubscriptionWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) GetCurrentForUser(ctx context.Context, userID int) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) ListExpiringWithin(ctx context.Context, days int) ([]SubscriptionWithDetails, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SubscriptionWithDetails), args.Error(1)
}

func (m *MockService) Stats(ctx context.Context) (*Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

type stubAssignments struct {
	assigned map[[2]int]bool
}

func (s *stubAssignments) IsAssigned(_ context.Context, coachID, memberID int) (bool, error) {
	return s.assigned[[2]int{coachID, memberID}], nil
}

func setIdentity(userID int, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

func newTestRouter(svc Service, assignments *stubAssignments, userID int, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	if assignments == nil {
		assignments = &stubAssignments{assigned: map[[2]int]bool{}}
	}
	handler := NewHandler(svc, access.NewChecker(assignments))

	router := gin.New()
	router.Use(setIdentity(userID, role))
	router.GET("/subscriptions", handler.List)
	router.GET("/subscriptions/current", handler.GetCurrent)
	router.GET("/subscriptions/:id", handler.Get)
	router.POST("/admin/subscriptions", handler.Create)
	router.POST("/admin/subscriptions/:id/cancel", handler.Cancel)
	return router
}

func TestHandler_List_RoleScoping(t *testing.T) {
	t.Run("admin sees the paginated list", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, mock.Anything).
			Return([]SubscriptionWithDetails{*detailsFixture(1, date(2024, 1, 1), date(2024, 3, 1), true)}, 1, nil)

		router := newTestRouter(svc, nil, 1, "admin")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("member gets own history", func(t *testing.T) {
		svc := new(MockService)
		svc.On("History", mock.Anything, 7).
			Return([]SubscriptionWithDetails{}, nil)

		router := newTestRouter(svc, nil, 7, "member")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertCalled(t, "History", mock.Anything, 7)
		svc.AssertNotCalled(t, "List")
	})

	t.Run("coach is denied", func(t *testing.T) {
		svc := new(MockService)

		router := newTestRouter(svc, nil, 2, "coach")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertNotCalled(t, "List")
		svc.AssertNotCalled(t, "History")
	})
}

func TestHandler_Get_Ownership(t *testing.T) {
	sub := detailsFixture(1, date(2024, 1, 1), date(2024, 3, 1), true) // owned by user 7

	t.Run("member reads own subscription", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, 1).Return(sub, nil)

		router := newTestRouter(svc, nil, 7, "member")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions/1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("member cannot read someone else's subscription", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, 1).Return(sub, nil)

		router := newTestRouter(svc, nil, 8, "member")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions/1", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("assigned coach can read", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, 1).Return(sub, nil)

		assignments := &stubAssignments{assigned: map[[2]int]bool{{2, 7}: true}}
		router := newTestRouter(svc, assignments, 2, "coach")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions/1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unassigned coach is denied", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, 1).Return(sub, nil)

		router := newTestRouter(svc, nil, 2, "coach")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions/1", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_GetCurrent_None(t *testing.T) {
	svc := new(MockService)
	svc.On("GetCurrentForUser", mock.Anything, 7).Return(nil, nil)

	router := newTestRouter(svc, nil, 7, "member")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/subscriptions/current", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Create(t *testing.T) {
	body := map[string]interface{}{
		"user_id":       7,
		"membership_id": 3,
		"start_date":    "2024-01-10",
		"end_date":      "2024-02-09",
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(detailsFixture(1, date(2024, 1, 10), date(2024, 2, 9), true), nil)

		router := newTestRouter(svc, nil, 1, "admin")
		payload, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/admin/subscriptions", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("conflict when a current subscription exists", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, ErrActiveSubscriptionExists)

		router := newTestRouter(svc, nil, 1, "admin")
		payload, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/admin/subscriptions", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing fields fail binding", func(t *testing.T) {
		svc := new(MockService)

		router := newTestRouter(svc, nil, 1, "admin")
		req := httptest.NewRequest("POST", "/admin/subscriptions", bytes.NewBufferString(`{"user_id": 7}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create")
	})
}

func TestHandler_Cancel_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("Cancel", mock.Anything, 99).Return(nil, ErrSubscriptionNotFound)

	router := newTestRouter(svc, nil, 1, "admin")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/admin/subscriptions/99/cancel", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
