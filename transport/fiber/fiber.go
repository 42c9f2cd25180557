// Package fiber registers the billing routes on a Fiber router
package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mihaimyh/billingview/pkg/api"
	"github.com/mihaimyh/billingview/pkg/billing"
)

// CallerExtractor extracts the authenticated caller from a Fiber context.
// Return a Caller with an empty UserID if the user is not authenticated
type CallerExtractor func(c *fiber.Ctx) billing.Caller

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
	OnError func(c *fiber.Ctx, err error) error

	// Logger is optional
	Logger billing.Logger

	// Metrics is optional; records rate-limit rejections
	Metrics billing.Metrics
}

type handlers struct {
	config Config
}

// Register mounts the three billing routes on r (an *fiber.App or a group).
func Register(r fiber.Router, config Config) error {
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

	portal := []fiber.Handler{h.portalSession}
	if config.PortalRateLimit > 0 {
		portal = append([]fiber.Handler{limiter.New(limiter.Config{
			Max:          config.PortalRateLimit,
			Expiration:   time.Minute,
			LimitReached: h.rateLimited,
		})}, portal...)
	}

	r.Get(api.PathSubscription, h.subscription)
	r.Post(api.PathPortalSession, portal...)
	r.Get(api.PathPortalSession, portal...)
	r.Get(api.PathHistory, h.history)
	return nil
}

// FromHeader returns a CallerExtractor reading the user id from a header
func FromHeader(headerName string) CallerExtractor {
	return func(c *fiber.Ctx) billing.Caller {
		return billing.Caller{UserID: c.Get(headerName)}
	}
}

// FromLocals returns a CallerExtractor reading a user id string or billing.Caller
// stored with c.Locals(key, ...)
func FromLocals(key string) CallerExtractor {
	return func(c *fiber.Ctx) billing.Caller {
		switch v := c.Locals(key).(type) {
		case billing.Caller:
			return v
		case string:
			return billing.Caller{UserID: v}
		}
		return billing.Caller{}
	}
}

func (h *handlers) subscription(c *fiber.Ctx) error {
	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}

	subs, err := h.config.Service.GetSubscription(c.UserContext(), caller)
	if err != nil {
		return h.fail(c, err)
	}
	if subs == nil {
		subs = []billing.Subscription{}
	}
	return c.Status(http.StatusOK).JSON(subs)
}

func (h *handlers) rateLimited(c *fiber.Ctx) error {
	h.config.Metrics.RecordRateLimited(api.PathPortalSession)
	h.config.Logger.Warn("portal session rate limit exceeded",
		billing.Field{Key: "client_ip", Value: c.IP()})
	return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
}

func (h *handlers) portalSession(c *fiber.Ctx) error {
	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}

	session, err := h.config.Service.CreatePortalSession(c.UserContext(), caller)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(http.StatusOK).JSON(session)
}

func (h *handlers) history(c *fiber.Ctx) error {
	caller, err := api.CheckCaller(h.config.GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}

	invoices, err := h.config.Service.GetBillingHistory(c.UserContext(), caller)
	if err != nil {
		return h.fail(c, err)
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	return c.Status(http.StatusOK).JSON(invoices)
}

func (h *handlers) fail(c *fiber.Ctx, err error) error {
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
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
