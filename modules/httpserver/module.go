package httpserver

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/example/upload-staging-demo/events"
	"github.com/example/upload-staging-demo/modules/staging"
	"github.com/gin-gonic/gin"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module implements an HTTP server using the Gin framework.
type Module struct {
	port          int
	mode          Mode
	mu            sync.RWMutex
	server        *http.Server
	engine        *gin.Engine
	handlers      *Handlers
	staging       staging.StagingPort
	hub           *Hub
	cancelHub     context.CancelFunc
	logger        types.Logger
	maxUploadSize int64
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new HTTP server module.
func NewModule(port int, mode Mode, maxUploadSize int64, logger types.Logger) *Module {
	return &Module{
		port:          port,
		mode:          mode,
		maxUploadSize: maxUploadSize,
		hub:           NewHub(logger),
		logger:        logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "http-server"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"staging"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "staging":
		m.staging = staging.NewStagingAdapter(container)
	}
}

// RegisterEventConsumers subscribes to staging events and forwards them to
// progress-feed subscribers.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.FilesOfferedV1, m.handleFilesOffered, m,
	); err != nil {
		return fmt.Errorf("failed to register FilesOffered consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UploadStartedV1, m.handleUploadStarted, m,
	); err != nil {
		return fmt.Errorf("failed to register UploadStarted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UploadProgressedV1, m.handleUploadProgressed, m,
	); err != nil {
		return fmt.Errorf("failed to register UploadProgressed consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UploadCompletedV1, m.handleUploadCompleted, m,
	); err != nil {
		return fmt.Errorf("failed to register UploadCompleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"FilesOffered.v1", "UploadStarted.v1", "UploadProgressed.v1", "UploadCompleted.v1"})
	return nil
}

// Start initializes and starts the HTTP server.
func (m *Module) Start(ctx context.Context) error {
	if m.staging == nil {
		return fmt.Errorf("staging dependency not set")
	}

	engine, err := m.buildEngine()
	if err != nil {
		return err
	}
	m.engine = engine

	hubCtx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(hubCtx)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", m.port),
		Handler:           m.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	m.mu.Lock()
	m.server = server
	m.mu.Unlock()

	// Start server in a goroutine
	go func() {
		m.logger.Info("HTTP server starting", "port", m.port, "mode", m.mode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server and the progress hub.
func (m *Module) Stop(ctx context.Context) error {
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.mu.RLock()
	server := m.server
	m.mu.RUnlock()
	if server != nil {
		m.logger.Info("Shutting down HTTP server")
		return server.Shutdown(ctx)
	}
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	started := m.server != nil
	m.mu.RUnlock()

	return mono.HealthStatus{
		Healthy: started,
		Message: "operational",
		Details: map[string]any{
			"port":        m.port,
			"mode":        m.mode,
			"subscribers": m.hub.SubscriberCount(),
		},
	}
}

// buildEngine creates the Gin engine with middleware, templates and routes.
// No write timeout is set on the server because the progress feed is long-lived.
func (m *Module) buildEngine() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(m.loggingMiddleware())
	engine.Use(m.corsMiddleware())

	// Set max multipart memory; handlers also cap offer bodies at this size
	engine.MaxMultipartMemory = m.maxUploadSize

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	assets, err := staticFS()
	if err != nil {
		return nil, fmt.Errorf("failed to load static assets: %w", err)
	}
	engine.StaticFS("/static", http.FS(assets))

	m.handlers = NewHandlers(m.staging, m.hub, upload.DefaultPolicy(), m.mode, m.maxUploadSize)
	m.registerRoutes(engine)
	return engine, nil
}

// registerRoutes sets up all HTTP routes.
func (m *Module) registerRoutes(engine *gin.Engine) {
	// Health check
	engine.GET("/health", m.handlers.HealthCheck)

	// Views
	if m.mode == ModeRouted {
		engine.GET("/", m.handlers.Home)
	}
	base := m.mode.WidgetPath()
	engine.GET(base, m.handlers.UploadView)
	engine.POST(joinPath(base, "files"), m.handlers.OfferFilesForm)
	engine.POST(joinPath(base, "upload"), m.handlers.StartUploadForm)

	// API v1 routes
	v1 := engine.Group("/api/v1")
	{
		stagingRoutes := v1.Group("/staging")
		{
			stagingRoutes.GET("", m.handlers.GetState)
			stagingRoutes.POST("/files", m.handlers.OfferFiles)
			stagingRoutes.POST("/upload", m.handlers.StartUpload)
			stagingRoutes.GET("/events", m.handlers.ProgressEvents)
		}
	}
}

// loggingMiddleware provides request logging.
func (m *Module) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		m.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers for development.
func (m *Module) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (m *Module) handleFilesOffered(_ context.Context, event events.FilesOfferedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(MessageOffered, event)
	return nil
}

func (m *Module) handleUploadStarted(_ context.Context, event events.UploadStartedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(MessageStarted, event)
	return nil
}

func (m *Module) handleUploadProgressed(_ context.Context, event events.UploadProgressedEvent, _ *mono.Msg) error {
	m.logger.Debug("Broadcasting upload progress",
		"cycleID", event.CycleID,
		"file", event.File,
		"percent", event.Percent)
	m.hub.Broadcast(MessageProgress, event)
	return nil
}

func (m *Module) handleUploadCompleted(_ context.Context, event events.UploadCompletedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(MessageCompleted, event)
	return nil
}
