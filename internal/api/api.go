// internal/api/api.go
package api

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/rcanovic/restaurant-reviews/internal/conf"
	"github.com/rcanovic/restaurant-reviews/internal/datastore"
	"github.com/rcanovic/restaurant-reviews/internal/logging"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	apiLogger      *slog.Logger   // Structured logger for API operations
	apiLevelVar    *slog.LevelVar // Dynamic level control
	apiLoggerClose func() error   // Function to close the log file

	projectionCache *cache.Cache // Cache for the list-all projection
	startTime       time.Time
}

// cache keys and lifetimes for the read-model cache
const (
	cacheKeyAllRestaurants = "projection:all-restaurants"
	cacheTTL               = 5 * time.Minute
	cacheSweepInterval     = 10 * time.Minute
)

// New creates a new API controller, registering all routes on the given or a
// fresh echo instance.
func New(settings *conf.Settings, ds datastore.Interface) (*Controller, error) {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())

	c := &Controller{
		Echo:            e,
		DS:              ds,
		Settings:        settings,
		projectionCache: cache.New(cacheTTL, cacheSweepInterval),
		startTime:       time.Now(),
	}

	// Initialize structured logger for API requests
	c.apiLevelVar = new(slog.LevelVar)
	if settings.WebServer.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	} else {
		c.apiLevelVar.Set(slog.LevelInfo)
	}

	apiLogger, closeFunc, err := logging.NewFileLogger("logs/web.log", "api", c.apiLevelVar)
	if err != nil {
		// Fall back to the process default logger rather than failing startup
		c.apiLogger = slog.Default().With("service", "api")
		c.apiLoggerClose = func() error { return nil }
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
	}

	c.Group = e.Group("/api/v1")
	c.initRoutes()

	return c, nil
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.Health)

	c.initRestaurantRoutes()
	c.initReviewRoutes()
	c.initReviewerRoutes()
}

// Start runs the HTTP server until the context is cancelled.
func (c *Controller) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := c.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the HTTP server and releases the API logger.
func (c *Controller) Shutdown(ctx context.Context) error {
	err := c.Echo.Shutdown(ctx)
	if c.apiLoggerClose != nil {
		_ = c.apiLoggerClose()
	}
	return err
}

// Health handles GET /health
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(c.startTime).String(),
	})
}

// invalidateProjections drops cached read models after any mutation.
func (c *Controller) invalidateProjections() {
	c.projectionCache.Flush()
}

// Error response structure
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	c.apiLogger.Error("API Error",
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorStr,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	)

	return ctx.JSON(code, errorResp)
}

// Debug logs debug messages when debug mode is enabled
func (c *Controller) Debug(msg string, args ...any) {
	if c.Settings.WebServer.Debug {
		c.apiLogger.Debug(msg, args...)
	}
}

// logAPIRequest is a helper to log API requests with common context fields.
func (c *Controller) logAPIRequest(ctx echo.Context, level slog.Level, msg string, args ...any) {
	baseAttrs := []any{
		"path", ctx.Request().URL.Path,
		"ip", ctx.RealIP(),
	}
	c.apiLogger.Log(ctx.Request().Context(), level, msg, append(baseAttrs, args...)...)
}
