// Package gin registers the billing routes on a Gin router
package gin

import (
	"errors"
	"net/http"
	"time"

	gongin "github.com/gin-gonic/gin"

	"github.com/mihaimyh/billingview/internal/ratelimit"
	"github.com/mihaimyh/billingview/pkg/api"
	"github.com/mihaimyh/billingview/pkg/billing"
)

// CallerExtractor extracts the authenticated caller from a Gin context.
// Return a Caller with an empty UserID if the user is not authenticated
type CallerExtractor func(c *gongin.Context) billing.Caller

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
	OnError func(c *gongin.Context, err error)

	// Logger is optional
	Logger billing.Logger

	// Metrics is optional; records rate-limit rejections
	Metrics billing.Metrics
}

type handlers struct {
	config  Config
	limiter *ratelimit.Limiter
}

// Register mounts GET /billing/subscription, POST|GET /billing/portal-session
// and GET /billing/history on r.
func Register(r gongin.IRoutes, config Config) error {
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
	return func(c *gongin.Context) billing.Caller {
		return billing.Caller{UserID: c.GetHeader(headerName)}
	}
}

// FromContext returns a CallerExtractor reading a user id string or billing.Caller
// set with c.Set(key, ...) by an upstream auth middleware
func FromContext(key string) CallerExtractor {
	return func(c *gongin.Context) billing.Caller {
		v, ok := c.Get(key)
		if !ok {
			return billing.Caller{}
		}
		switch v := v.(type) {
		case billing.Caller:
			return v
		case string:
			return billing.Caller{UserID: v}
		}
		return billing.Caller{}
	}
}

func (h *handlers) subscription(c *gongin.Context) {
	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	subs, err := h.config.Service.GetSubscription(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, err)
		return
	}
	if subs == nil {
		subs = []billing.Subscription{}
	}
	c.JSON(http.StatusOK, subs)
}

func (h *handlers) portalSession(c *gongin.Context) {
	if !h.limiter.Allow(c.RemoteIP()) {
		h.config.Metrics.RecordRateLimited(api.PathPortalSession)
		h.config.Logger.Warn("portal session rate limit exceeded",
			billing.Field{Key: "client_ip", Value: c.RemoteIP()})
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gongin.H{"error": "rate limit exceeded"})
		return
	}

	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	session, err := h.config.Service.CreatePortalSession(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, session)
}

func (h *handlers) history(c *gongin.Context) {
	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	invoices, err := h.config.Service.GetBillingHistory(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, err)
		return
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *handlers) fail(c *gongin.Context, err error) {
	if h.config.OnError != nil {
		h.config.OnError(c, err)
		return
	}

	status := api.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.config.Logger.Error("billing request failed",
			billing.Field{Key: "path", Value: c.FullPath()},
			billing.Field{Key: "status", Value: status},
			billing.Field{Key: "error", Value: err.Error()})
	}
	c.AbortWithStatusJSON(status, gongin.H{"error": err.Error()})
}
