// Package echo registers the billing routes on an Echo router
package echo

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaimyh/billingview/internal/ratelimit"
	"github.com/mihaimyh/billingview/pkg/api"
	"github.com/mihaimyh/billingview/pkg/billing"
)

// directIP keys the limiter on the socket peer, never on forwarding headers.
var directIP = echo.ExtractIPDirect()

// CallerExtractor extracts the authenticated caller from an Echo context.
// Return a Caller with an empty UserID if the user is not authenticated
type CallerExtractor func(c echo.Context) billing.Caller

// Router is satisfied by *echo.Echo and *echo.Group
type Router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Config holds transport configuration
type Config struct {
	// Service performs the billing operations (required)
	Service api.Service

	// GetCaller extracts the caller from context (required)
	GetCaller CallerExtractor

	// PortalRateLimit caps portal-session requests per minute per client IP (0 disables)
	PortalRateLimit int

	// OnError is called when an operation fails.
	// If nil, responds with api.StatusFor(err) and {"error": "..."}
	OnError func(c echo.Context, err error) error

	// Logger is optional
	Logger billing.Logger

	// Metrics is optional; records rate-limit rejections
	Metrics billing.Metrics
}

type handlers struct {
	config  Config
	limiter *ratelimit.Limiter
}

// Register mounts the three billing routes on r.
func Register(r Router, config Config) error {
	if config.Service == nil {
		return errors.New("service is required")
	}
	if config.GetCaller == nil {
		return errors.New("getCaller is required")
	}
	if config.Logger == nil {
		config.Logger = &billing.NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &billing.NoopMetrics{}
	}

	h := &handlers{config: config}
	if config.PortalRateLimit > 0 {
		h.limiter = ratelimit.New(config.PortalRateLimit, time.Minute)
	}

	r.GET(api.PathSubscription, h.subscription)
	r.POST(api.PathPortalSession, h.portalSession)
	r.GET(api.PathPortalSession, h.portalSession)
	r.GET(api.PathHistory, h.history)
	return nil
}

// FromHeader returns a CallerExtractor reading the user id from a header
func FromHeader(headerName string) CallerExtractor {
	return func(c echo.Context) billing.Caller {
		return billing.Caller{UserID: c.Request().Header.Get(headerName)}
	}
}

// FromContext returns a CallerExtractor reading a user id string or billing.Caller
// stored with c.Set(key, ...)
func FromContext(key string) CallerExtractor {
	return func(c echo.Context) billing.Caller {
		switch v := c.Get(key).(type) {
		case billing.Caller:
			return v
		case string:
			return billing.Caller{UserID: v}
		}
		return billing.Caller{}
	}
}

func (h *handlers) subscription(c echo.Context) error {
	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}

	subs, err := h.config.Service.GetSubscription(c.Request().Context(), caller)
	if err != nil {
		return h.fail(c, err)
	}
	if subs == nil {
		subs = []billing.Subscription{}
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *handlers) portalSession(c echo.Context) error {
	ip := directIP(c.Request())
	if !h.limiter.Allow(ip) {
		h.config.Metrics.RecordRateLimited(api.PathPortalSession)
		h.config.Logger.Warn("portal session rate limit exceeded",
			billing.Field{Key: "client_ip", Value: ip})
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
	}

	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}

	session, err := h.config.Service.CreatePortalSession(c.Request().Context(), caller)
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, session)
}

func (h *handlers) history(c echo.Context) error {
	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}

	invoices, err := h.config.Service.GetBillingHistory(c.Request().Context(), caller)
	if err != nil {
		return h.fail(c, err)
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	return c.JSON(http.StatusOK, invoices)
}

func (h *handlers) fail(c echo.Context, err error) error {
	if h.config.OnError != nil {
		return h.config.OnError(c, err)
	}

	status := api.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.config.Logger.Error("billing request failed",
			billing.Field{Key: "path", Value: c.Path()},
			billing.Field{Key: "status", Value: status},
			billing.Field{Key: "error", Value: err.Error()})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
