package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roomly-dev/roomly/internal/config"
	"github.com/roomly-dev/roomly/internal/models"
)

// Server is the development API server. It implements the same HTTP
// contract the production backend exposes (cookie sessions plus CSRF
// double submit under /api/v1) so the CLI and client SDK can be
// exercised locally.
type Server struct {
	router *gin.Engine
	db     *gorm.DB
	config *config.Config
	logger zerolog.Logger
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger) (*Server, error) {
	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Seed the amenity/category lookup tables on first boot
	if err := seed(db); err != nil {
		return nil, err
	}

	server := &Server{
		db:     db,
		config: cfg,
		logger: zlog,
	}

	server.setupRouter()

	return server, nil
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())

	// The browser frontend lives on a separate origin in development and
	// sends credentialed (cookie-bearing) requests.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.config.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-CSRFToken", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(s.csrfMiddleware())
	router.Use(s.sessionMiddleware())

	api := router.Group("/api/v1")
	{
		api.GET("/rooms", s.listRooms)
		api.GET("/rooms/amenities", s.listAmenities)
		api.GET("/rooms/:pk", s.getRoom)
		api.GET("/rooms/:pk/reviews", s.listRoomReviews)
		api.POST("/rooms", s.uploadRoom)
		api.GET("/categories", s.listCategories)

		api.GET("/users/me", s.me)
		api.POST("/users/log-in", s.logIn)
		api.POST("/users/signup", s.signUp)
		api.POST("/users/logout", s.logOut)
		api.POST("/users/github", s.githubLogIn)
		api.POST("/users/kakao", s.kakaoLogIn)
	}

	s.router = router
}

// Router exposes the handler for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// DB exposes the database handle for tests and seeding tools
func (s *Server) DB() *gorm.DB {
	return s.db
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Msg("HTTP request")
	}
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	s.logger.Info().Str("addr", s.config.Server.Addr).Msg("Roomly API server listening")

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		s.logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
