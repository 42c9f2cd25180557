package stripe

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/mihaimyh/billingview/pkg/billing"
)

// BillingHistory returns the customer's five most recent invoices, newest first.
// There is no per-item enrichment: the call either returns every invoice or fails.
func (p *Provider) BillingHistory(ctx context.Context, customerID string) ([]billing.Invoice, error) {
	api, err := p.client()
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	raw, err := api.ListInvoices(ctx, customerID, invoiceLimit)
	p.record("/invoices", startTime, err)
	if err != nil {
		return nil, newProviderError(opRetrieveBillingHistory, err)
	}

	invoices := make([]billing.Invoice, 0, len(raw))
	for _, inv := range raw {
		if len(invoices) == invoiceLimit {
			break
		}
		if inv == nil || inv.ID == "" {
			continue
		}
		invoices = append(invoices, normalizeInvoice(inv))
	}
	return invoices, nil
}

func normalizeInvoice(inv *stripe.Invoice) billing.Invoice {
	return billing.Invoice{
		ID:       inv.ID,
		Date:     billing.FormatInvoiceDate(inv.Created),
		Amount:   billing.FormatMinorUnits(inv.Total),
		Currency: strings.ToUpper(string(inv.Currency)),
		Status:   billing.InvoiceStatusOrDefault(string(inv.Status)),
		PDFURL:   billing.FirstURL(inv.HostedInvoiceURL, inv.InvoicePDF),
	}
}
