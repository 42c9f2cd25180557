package billing

// Sentinels substituted at the normalization boundary when the provider omits a value.
const (
	// UnknownPlan is used when the product display name cannot be resolved.
	UnknownPlan = "Unknown Plan"

	// NoRenewalDate is used when a subscription has neither a period end nor an end date.
	NoRenewalDate = "N/A"

	// UnknownInvoiceStatus is used when an invoice carries no status.
	UnknownInvoiceStatus = "unknown"

	// NoInvoiceURL is used when an invoice has no viewable document.
	NoInvoiceURL = "#"
)

// Caller identifies the authenticated end user. It is produced by the identity
// layer in front of this package and is never validated here beyond presence.
type Caller struct {
	UserID string
	Email  string
}

// Subscription is the normalized view of a provider subscription.
type Subscription struct {
	// Status is the provider lifecycle state (active, trialing, past_due, canceled, ...)
	// passed through verbatim.
	Status string `json:"status"`

	// PlanName is the product display name or UnknownPlan.
	PlanName string `json:"planName"`

	// RenewalDate is the current period end (or end date) or NoRenewalDate.
	RenewalDate string `json:"renewalDate"`
}

// Invoice is the normalized view of a provider invoice.
type Invoice struct {
	ID       string `json:"id"`
	Date     string `json:"date"`     // ISO-8601, UTC
	Amount   string `json:"amount"`   // major units, two fraction digits
	Currency string `json:"currency"` // uppercase ISO code
	Status   string `json:"status"`
	PDFURL   string `json:"pdfUrl"`
}

// PortalSession carries a one-time billing portal URL. It is issued per request
// and must not be cached.
type PortalSession struct {
	URL string `json:"url"`
}
