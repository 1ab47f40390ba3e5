package server

import (
	"context"
	"net/http"

	"gymdesk/internal/access"
	"gymdesk/internal/attendance"
	"gymdesk/internal/auth"
	"gymdesk/internal/coach"
	"gymdesk/internal/config"
	"gymdesk/internal/email"
	"gymdesk/internal/membership"
	"gymdesk/internal/payment"
	"gymdesk/internal/subscription"
	"gymdesk/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret, emailService)
	userHandler := user.NewHandler(userService)

	coachRepo := coach.NewRepository(db)
	coachService := coach.NewService(coachRepo, userRepo)
	coachHandler := coach.NewHandler(coachService)

	checker := access.NewChecker(coachRepo)

	membershipRepo := membership.NewRepository(db)
	membershipService := membership.NewService(membershipRepo)
	membershipHandler := membership.NewHandler(membershipService)

	subscriptionRepo := subscription.NewRepository(db)
	subscriptionService := subscription.NewService(subscriptionRepo, emailService)
	subscriptionHandler := subscription.NewHandler(subscriptionService, checker)

	paymentRepo := payment.NewRepository(db)
	paymentService := payment.NewService(paymentRepo)
	paymentHandler := payment.NewHandler(paymentService)

	attendanceRepo := attendance.NewRepository(db)
	attendanceService := attendance.NewService(attendanceRepo, subscriptionService)
	attendanceHandler := attendance.NewHandler(attendanceService, checker)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/memberships", membershipHandler.List)
		protected.GET("/memberships/:id", membershipHandler.Get)

		protected.GET("/subscriptions", subscriptionHandler.List)
		protected.GET("/subscriptions/current", subscriptionHandler.GetCurrent)
		protected.GET("/subscriptions/history", subscriptionHandler.History)
		protected.GET("/subscriptions/:id", subscriptionHandler.Get)

		protected.POST("/attendance/check-in", attendanceHandler.CheckIn)
		protected.POST("/attendance/check-out", attendanceHandler.CheckOut)
		protected.GET("/attendance/history", attendanceHandler.History)
		protected.GET("/attendance/users/:id", attendanceHandler.MemberHistory)

		protected.GET("/payments", paymentHandler.ListOwn)
	}

	coachOnly := router.Group("/coach")
	coachOnly.Use(authMiddleware, auth.RequireRole("coach"))
	{
		coachOnly.GET("/members", coachHandler.ListOwnMembers)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin"))
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.POST("/users", userHandler.CreateUser)
		admin.GET("/users/:id", userHandler.GetUser)
		admin.DELETE("/users/:id", userHandler.DeleteUser)

		admin.POST("/memberships", membershipHandler.Create)
		admin.PUT("/memberships/:id", membershipHandler.Update)
		admin.DELETE("/memberships/:id", membershipHandler.Delete)
		admin.GET("/memberships/stats", membershipHandler.Stats)

		admin.POST("/subscriptions", subscriptionHandler.Create)
		admin.POST("/subscriptions/:id/renew", subscriptionHandler.Renew)
		admin.POST("/subscriptions/:id/cancel", subscriptionHandler.Cancel)
		admin.PUT("/subscriptions/:id", subscriptionHandler.Update)
		admin.DELETE("/subscriptions/:id", subscriptionHandler.Delete)
		admin.GET("/subscriptions/stats", subscriptionHandler.Stats)

		admin.POST("/coach-members", coachHandler.Assign)
		admin.DELETE("/coach-members", coachHandler.Unassign)
		admin.GET("/coaches/:id/members", coachHandler.ListMembers)

		admin.POST("/payments", paymentHandler.Record)
		admin.GET("/payments", paymentHandler.List)
		admin.GET("/payments/revenue", paymentHandler.Revenue)

		admin.GET("/attendance/daily", attendanceHandler.DailyCounts)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
