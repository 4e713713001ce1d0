package ui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"impactdash/app"
	"impactdash/internal"
	"impactdash/internal/auth"
	"impactdash/internal/usage"
	"impactdash/ui/middleware"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Dependencies are the services the HTTP layer needs
type Dependencies struct {
	Chat       *app.ChatService
	News       *app.NewsService
	Newsletter *app.NewsletterService
	Dashboard  *app.DashboardService
	Usage      *usage.Service

	// Auth guards every non-public route. Nil leaves the server open.
	Auth         *auth.Authenticator
	SecureCookie bool
	Logger       *internal.Logger
}

// Server is the dashboard HTTP server
type Server struct {
	router    *gin.Engine
	deps      Dependencies
	logger    *internal.Logger
	templates *template.Template
	http      *http.Server
}

// NewServer builds the router with middleware and routes
func NewServer(deps Dependencies) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = internal.NewNopLogger()
	}

	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		deps:      deps,
		logger:    deps.Logger,
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	zl := s.logger.Zap()
	s.router.Use(
		middleware.RequestID(),
		middleware.AccessLog(zl),
		middleware.Recovery(zl),
		middleware.ClientID(s.deps.SecureCookie),
	)
	if s.deps.Auth != nil {
		s.router.Use(s.deps.Auth.Middleware())
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/login", s.handleLoginPage)

	api := s.router.Group("/api")

	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/logout", s.handleLogout)

	api.POST("/chat", s.handleChat)
	api.GET("/chat/quota", s.handleChatQuota)

	api.GET("/news", s.handleNews)
	api.GET("/news/stats", s.handleNewsStats)

	api.POST("/newsletter/subscribe", s.handleSubscribe)
	api.POST("/newsletter/unsubscribe", s.handleUnsubscribe)

	api.GET("/startups", s.handleStartups)
	api.GET("/startups/export", s.handleExport)
	api.GET("/startups/:id", s.handleStartup)
	api.GET("/facets", s.handleFacets)
	api.GET("/kpis", s.handleKPIs)
	api.GET("/charts", s.handleCharts)
	api.GET("/quality", s.handleQuality)
	api.GET("/sdgs", s.handleSDGs)
	api.GET("/crawl-runs", s.handleCrawlRuns)
	api.GET("/usage", s.handleUsage)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting dashboard on http://%s", addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down dashboard")
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleIndex(c *gin.Context) {
	body := gin.H{"name": "impactdash", "status": "ok"}
	if claims, ok := currentClaims(c); ok {
		body["user"] = claims.Username
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderTemplate writes an html template
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := s.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		s.logger.Error("Template error: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func currentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(auth.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
