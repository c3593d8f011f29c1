package domain_test

import (
	"testing"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeEstimateFlags(t *testing.T) {
	tests := []struct {
		po, inv domain.DocStatus
		want    domain.EstimateFlags
	}{
		{domain.DocPending, domain.DocPending, domain.EstimateFlags{ToBeInvoiced: 1}},
		{domain.DocReceived, domain.DocPending, domain.EstimateFlags{Invoice: 1}},
		{domain.DocReceived, domain.DocReceived, domain.EstimateFlags{Invoiced: 1}},
		{domain.DocPending, domain.DocReceived, domain.EstimateFlags{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.po)+"/"+string(tt.inv), func(t *testing.T) {
			got := domain.ComputeEstimateFlags(tt.po, tt.inv)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.ToBeInvoiced+got.Invoice+got.Invoiced, 1)
		})
	}
}

func TestComputeEstimateFlags_EmptyIsPending(t *testing.T) {
	assert.Equal(t, domain.EstimateFlags{ToBeInvoiced: 1}, domain.ComputeEstimateFlags("", ""))
}

func TestEstimate_ApplyFlags(t *testing.T) {
	e := domain.Estimate{CEPOStatus: domain.DocReceived, CEInvoiceStatus: domain.DocPending, ToBeInvoiced: 1}
	e.ApplyFlags()
	assert.Equal(t, 0, e.ToBeInvoiced)
	assert.Equal(t, 1, e.InvoiceFlag)
	assert.Equal(t, 0, e.Invoiced)
}

func TestComputeInvoiceFlags(t *testing.T) {
	assert.Equal(t, domain.InvoiceFlags{ToBePaid: true}, domain.ComputeInvoiceFlags("Active", "Unpaid"))
	assert.Equal(t, domain.InvoiceFlags{ToBePaid: true}, domain.ComputeInvoiceFlags("Active", ""))
	assert.Equal(t, domain.InvoiceFlags{Paid: true}, domain.ComputeInvoiceFlags("Active", "Paid"))
	assert.Equal(t, domain.InvoiceFlags{}, domain.ComputeInvoiceFlags("Cancelled", "Unpaid"))
}

func TestComputePurchaseOrderFlags(t *testing.T) {
	assert.Equal(t, domain.PurchaseOrderFlags{ToBeInvoiced: 1}, domain.ComputePurchaseOrderFlags(domain.DocReceived, domain.DocPending))
	assert.Equal(t, domain.PurchaseOrderFlags{Invoiced: 1}, domain.ComputePurchaseOrderFlags(domain.DocReceived, domain.DocReceived))
	assert.Equal(t, domain.PurchaseOrderFlags{}, domain.ComputePurchaseOrderFlags(domain.DocPending, domain.DocPending))
}
