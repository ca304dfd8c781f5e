package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classhub/internal/attendance"
	"classhub/internal/auth"
	"classhub/internal/classroom"
	"classhub/internal/community"
	"classhub/internal/config"
	"classhub/internal/handler"
	"classhub/internal/httpmiddleware"
	"classhub/internal/reminder"
	"classhub/internal/store"
	"classhub/internal/upload"
	"classhub/internal/user"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	// Repositories and services
	classroomRepo := classroom.NewRepository(db.Client)
	classrooms := classroom.NewService(classroomRepo)

	communityRepo := community.NewRepository(db.Client)
	communities := community.NewService(communityRepo)

	userRepo := user.NewRepository(db.Client)
	users := user.NewService(userRepo, communities)

	reminderRepo := reminder.NewRepository(db.Client)
	reminders := reminder.NewService(reminderRepo)

	attendanceRepo := attendance.NewRepository(db.Client)
	att := attendance.NewService(attendanceRepo, classroomRepo)

	// Attachment storage (nil when not configured)
	var uploads *upload.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		uploads = upload.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("attachment storage configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("attachment storage not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	h := handler.New(cfg, users, classrooms, communities, reminders, att, uploads)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	api := r.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", auth.RequireAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authed.GET("/me", h.Me)

	admin := authed.Group("/user", auth.RequireRoles(user.RoleAdmin))
	admin.GET("", h.ListUsers)
	admin.GET("/students", h.ListStudents)
	admin.GET("/teachers", h.ListTeachers)
	admin.DELETE("/:id", h.DeleteUser)

	cls := authed.Group("/classrooms")
	cls.POST("", auth.RequireRoles(user.RoleTeacher, user.RoleAdmin), h.CreateClassroom)
	cls.GET("/all", auth.RequireRoles(user.RoleAdmin), h.AllClassrooms)
	cls.POST("/join", auth.RequireRoles(user.RoleStudent), h.JoinClassroom)
	cls.GET("", h.ListClassrooms)
	cls.GET("/:id", h.GetClassroom)
	cls.PUT("/:id", auth.RequireRoles(user.RoleTeacher, user.RoleAdmin), h.UpdateClassroom)
	cls.DELETE("/:id", auth.RequireRoles(user.RoleTeacher, user.RoleAdmin), h.DeleteClassroom)
	cls.POST("/:id/leave", auth.RequireRoles(user.RoleStudent), h.LeaveClassroom)

	com := authed.Group("/communities")
	com.GET("", h.ListCommunities)
	com.GET("/:id", h.GetCommunity)
	com.DELETE("/:id", auth.RequireRoles(user.RoleAdmin), h.DeleteCommunity)
	com.POST("/:id/join", h.JoinCommunity)
	com.POST("/:id/leave", h.LeaveCommunity)
	com.GET("/:id/messages", h.CommunityMessages)
	com.POST("/:id/message", h.PostMessage)
	com.PUT("/:id/message/:messageId", h.UpdateMessage)
	com.DELETE("/:id/message/:messageId", h.DeleteMessage)

	rem := authed.Group("/reminders")
	rem.GET("", h.ListReminders)
	rem.POST("", h.CreateReminder)
	rem.GET("/:id", h.GetReminder)
	rem.PUT("/:id", h.UpdateReminder)
	rem.DELETE("/:id", h.DeleteReminder)

	attGroup := authed.Group("/attendance")
	attGroup.POST("/start", auth.RequireRoles(user.RoleTeacher, user.RoleAdmin), h.StartAttendance)
	attGroup.POST("/mark", auth.RequireRoles(user.RoleStudent), h.MarkAttendance)
	attGroup.GET("/records/:classroomId", h.AttendanceRecords)
	attGroup.GET("/score/:classroomId", auth.RequireRoles(user.RoleStudent), h.AttendanceScore)
	attGroup.GET("/classroom-score/:classroomId", auth.RequireRoles(user.RoleTeacher, user.RoleAdmin), h.ClassroomScores)
	attGroup.GET("/export/:classroomId", auth.RequireRoles(user.RoleTeacher, user.RoleAdmin), h.ExportAttendance)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
