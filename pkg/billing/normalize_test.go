package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortalReturnURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{"trailing slash", "https://app.example.com/", "https://app.example.com?billing_return=true"},
		{"no trailing slash", "https://app.example.com", "https://app.example.com?billing_return=true"},
		{"only one slash stripped", "https://app.example.com//", "https://app.example.com/?billing_return=true"},
		{"path", "https://app.example.com/settings/billing/", "https://app.example.com/settings/billing?billing_return=true"},
		{"existing query", "https://app.example.com/settings?tab=billing", "https://app.example.com/settings?tab=billing&billing_return=true"},
		{"default dev origin", "https://localhost:5173", "https://localhost:5173?billing_return=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PortalReturnURL(tt.base))
		})
	}
}

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		total int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{999, "9.99"},
		{1999, "19.99"},
		{100000, "1000.00"},
		{-250, "0.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinorUnits(tt.total), "total %d", tt.total)
	}
}

func TestFormatRenewalDate(t *testing.T) {
	assert.Equal(t, NoRenewalDate, FormatRenewalDate(0, ""))
	assert.Equal(t, NoRenewalDate, FormatRenewalDate(-1, DefaultDateLayout))
	assert.Equal(t, "2025-01-01", FormatRenewalDate(1735689600, ""))
	assert.Equal(t, "01/01/2025", FormatRenewalDate(1735689600, "01/02/2006"))
}

func TestFormatInvoiceDate(t *testing.T) {
	assert.Equal(t, "2024-06-01T09:30:00.000Z", FormatInvoiceDate(1717234200))
	assert.Equal(t, "1970-01-01T00:00:00.000Z", FormatInvoiceDate(0))
}

func TestInvoiceStatusOrDefault(t *testing.T) {
	assert.Equal(t, "paid", InvoiceStatusOrDefault("paid"))
	assert.Equal(t, UnknownInvoiceStatus, InvoiceStatusOrDefault(""))
	assert.Equal(t, UnknownInvoiceStatus, InvoiceStatusOrDefault("  "))
}

func TestFirstURL(t *testing.T) {
	assert.Equal(t, "https://a", FirstURL("https://a", "https://b"))
	assert.Equal(t, "https://b", FirstURL("", "https://b"))
	assert.Equal(t, NoInvoiceURL, FirstURL("", " "))
	assert.Equal(t, NoInvoiceURL, FirstURL())
}
