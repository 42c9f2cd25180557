package billing

import (
	"strconv"
	"strings"
	"time"
)

const (
	// PortalReturnParam is appended to the portal return URL so the front end can
	// tell that the browser came back from the billing portal.
	PortalReturnParam = "billing_return"

	// DefaultDateLayout formats subscription renewal dates.
	DefaultDateLayout = "2006-01-02"

	// InvoiceDateLayout is ISO-8601 with millisecond precision, always in UTC.
	InvoiceDateLayout = "2006-01-02T15:04:05.000Z07:00"
)

// PortalReturnURL strips exactly one trailing "/" from base and appends the
// billing_return marker, so "https://app.example.com/" becomes
// "https://app.example.com?billing_return=true".
func PortalReturnURL(base string) string {
	base = strings.TrimSpace(base)
	base = strings.TrimSuffix(base, "/")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + PortalReturnParam + "=true"
}

// FormatMinorUnits renders an amount in minor units (cents) as a major-unit string
// with exactly two fraction digits. Negative totals clamp to "0.00".
func FormatMinorUnits(total int64) string {
	if total < 0 {
		total = 0
	}
	cents := total % 100
	frac := strconv.FormatInt(cents, 10)
	if cents < 10 {
		frac = "0" + frac
	}
	return strconv.FormatInt(total/100, 10) + "." + frac
}

// FormatRenewalDate renders a unix-seconds timestamp with layout in UTC.
// Non-positive timestamps yield NoRenewalDate.
func FormatRenewalDate(unix int64, layout string) string {
	if unix <= 0 {
		return NoRenewalDate
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return time.Unix(unix, 0).UTC().Format(layout)
}

// FormatInvoiceDate renders a unix-seconds creation timestamp as ISO-8601 UTC.
func FormatInvoiceDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(InvoiceDateLayout)
}

// InvoiceStatusOrDefault returns status, or UnknownInvoiceStatus when it is empty.
func InvoiceStatusOrDefault(status string) string {
	if strings.TrimSpace(status) == "" {
		return UnknownInvoiceStatus
	}
	return status
}

// FirstURL returns the first non-empty candidate, or NoInvoiceURL.
func FirstURL(candidates ...string) string {
	for _, u := range candidates {
		if strings.TrimSpace(u) != "" {
			return u
		}
	}
	return NoInvoiceURL
}
