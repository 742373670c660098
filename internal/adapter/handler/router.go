package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/adapter/dto/common"
	httpmw "github.com/johnquangdev/meeting-sync/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-sync/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg      *config.Config
	webhook  *Webhook
	meetings *Meetings
	accounts *Accounts
	authMW   echo.MiddlewareFunc
	metrics  http.Handler
	logger   *zap.Logger
}

// NewRouter creates a new router with all handlers. metrics may be nil.
func NewRouter(cfg *config.Config, webhook *Webhook, meetings *Meetings, accounts *Accounts, authMW echo.MiddlewareFunc, metrics http.Handler, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:      cfg,
		webhook:  webhook,
		meetings: meetings,
		accounts: accounts,
		authMW:   authMW,
		metrics:  metrics,
		logger:   logger,
	}
}

// Setup configures CORS, request ids and all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.Pre(httpmw.Preflight(rt.cfg.Server.AllowedOrigins))
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(httpmw.CORS(rt.cfg.Server.AllowedOrigins))

	e.GET("/health", rt.healthCheck)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics))
	}

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupWebhookRoutes(v1)
	rt.setupMeetingRoutes(v1)
	rt.setupAccountRoutes(v1)
}

// setupWebhookRoutes mounts the transcript webhook. Every method reaches the
// handler so that non-POST requests get the 405 body.
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	if rt.webhook == nil {
		return
	}
	limit := rt.cfg.Ingestion.MaxBodyBytes
	if limit == "" {
		limit = "1M"
	}
	mws := []echo.MiddlewareFunc{echomw.BodyLimit(limit)}
	if secret := rt.cfg.Ingestion.WebhookSecret; secret != "" {
		header := rt.cfg.Ingestion.SignatureHeader
		if header == "" {
			header = "X-Webhook-Signature"
		}
		mws = append(mws, httpmw.WebhookSignature(secret, header, AuthErrorHandler(rt.logger)))
	}
	g.Any("/webhooks/transcripts", rt.webhook.Transcripts, mws...)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	if rt.meetings == nil {
		return
	}
	g.Any("/meetings", rt.meetings.Meetings, rt.protected()...)
}

func (rt *Router) setupAccountRoutes(g *echo.Group) {
	if rt.accounts == nil {
		return
	}
	g.POST("/accounts/me/registration", rt.accounts.RetryRegistration, rt.protected()...)
}

func (rt *Router) protected() []echo.MiddlewareFunc {
	if rt.authMW == nil {
		return nil
	}
	return []echo.MiddlewareFunc{rt.authMW}
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, common.HealthResponse{
		Status:      "ok",
		Environment: rt.cfg.Server.Environment,
	})
}

// AuthErrorHandler renders authentication failures with the shared error body
func AuthErrorHandler(logger *zap.Logger) func(c echo.Context, err error) error {
	return func(c echo.Context, err error) error {
		return HandleError(logger, c, err)
	}
}
