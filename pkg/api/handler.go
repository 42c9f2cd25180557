package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mihaimyh/billingview/internal/httputil"
	"github.com/mihaimyh/billingview/internal/ratelimit"
	"github.com/mihaimyh/billingview/pkg/billing"
)

// Route paths served by Routes and the framework transports.
const (
	PathSubscription  = "/billing/subscription"
	PathPortalSession = "/billing/portal-session"
	PathHistory       = "/billing/history"

	maxUserIDLen = 255
)

var errInvalidUserID = errors.New("invalid user ID format")

// Handler provides HTTP endpoints for the billing operations
type Handler struct {
	config  Config
	logger  billing.Logger
	metrics billing.Metrics
	limiter *ratelimit.Limiter
}

// NewHandler creates a new billing API handler with the given configuration
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := &Handler{
		config:  config,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
	if h.logger == nil {
		h.logger = &billing.NoopLogger{}
	}
	if h.metrics == nil {
		h.metrics = &billing.NoopMetrics{}
	}
	if config.PortalRateLimit > 0 {
		h.limiter = ratelimit.New(config.PortalRateLimit, time.Minute)
	}
	return h, nil
}

// GetSubscription returns the caller's subscriptions as a JSON array
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	subs, err := h.config.Service.GetSubscription(r.Context(), caller)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if subs == nil {
		subs = []billing.Subscription{}
	}
	_ = httputil.WriteJSON(w, http.StatusOK, subs)
}

// CreatePortalSession returns {"url": "..."} for a fresh billing portal session
func (h *Handler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	session, err := h.config.Service.CreatePortalSession(r.Context(), caller)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	_ = httputil.WriteJSON(w, http.StatusOK, session)
}

// GetBillingHistory returns the caller's recent invoices as a JSON array
func (h *Handler) GetBillingHistory(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	invoices, err := h.config.Service.GetBillingHistory(r.Context(), caller)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	_ = httputil.WriteJSON(w, http.StatusOK, invoices)
}

// Routes returns a mux serving the three billing routes.
// The portal-session route accepts POST and GET and is rate limited per client IP.
func (h *Handler) Routes() http.Handler {
	portal := h.PortalSessionHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathSubscription, h.GetSubscription)
	mux.Handle("POST "+PathPortalSession, portal)
	mux.Handle("GET "+PathPortalSession, portal)
	mux.HandleFunc("GET "+PathHistory, h.GetBillingHistory)
	return mux
}

// PortalSessionHandler returns CreatePortalSession wrapped with the configured rate limiter.
func (h *Handler) PortalSessionHandler() http.Handler {
	next := http.HandlerFunc(h.CreatePortalSession)
	if h.limiter == nil {
		return next
	}
	return h.limiter.Middleware(next, h.rateLimited)
}

func (h *Handler) rateLimited(r *http.Request) {
	h.metrics.RecordRateLimited(PathPortalSession)
	h.logger.Warn("portal session rate limit exceeded",
		billing.Field{Key: "client_ip", Value: httputil.ClientIP(r)})
}

func (h *Handler) caller(r *http.Request) (billing.Caller, error) {
	return CheckCaller(h.config.GetCaller(r))
}

// CheckCaller trims the caller's user id and rejects a missing or oversized one.
func CheckCaller(caller billing.Caller) (billing.Caller, error) {
	caller.UserID = strings.TrimSpace(caller.UserID)
	if caller.UserID == "" {
		return caller, billing.ErrUnauthenticated
	}
	if len(caller.UserID) > maxUserIDLen {
		return caller, errInvalidUserID
	}
	return caller, nil
}

// StatusFor maps a billing error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, billing.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, billing.ErrCustomerNotFound):
		return http.StatusNotFound
	case billing.IsConfigError(err):
		return http.StatusServiceUnavailable
	case billing.IsProviderError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError handles errors with appropriate HTTP status codes
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if h.config.OnError != nil {
		h.config.OnError(w, r, err)
		return
	}

	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("billing request failed",
			billing.Field{Key: "path", Value: r.URL.Path},
			billing.Field{Key: "status", Value: status},
			billing.Field{Key: "error", Value: err.Error()})
	}
	_ = httputil.WriteError(w, status, err.Error())
}
