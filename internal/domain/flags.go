package domain

// DocStatus is the pending/received status used on estimates
type DocStatus string

const (
	DocPending  DocStatus = "pending"
	DocReceived DocStatus = "received"
)

// Invoice and payment status values with derived-flag meaning
const (
	InvoiceStatusActive = "Active"
	PaymentUnpaid       = "Unpaid"
	PaymentPaid         = "Paid"
)

// Estimate status values written by the sync paths
const (
	EstimateStatusActive    = "Active"
	EstimateStatusCompleted = "Completed"
	EstimateStatusDraft     = "Draft"
)

// EstimateFlags are the receivable flags shown on estimates (0 or 1)
type EstimateFlags struct {
	ToBeInvoiced int `json:"to_be_invoiced"`
	Invoice      int `json:"invoice"`
	Invoiced     int `json:"invoiced"`
}

// InvoiceFlags are the payment flags shown on invoices
type InvoiceFlags struct {
	ToBePaid bool `json:"to_be_paid"`
	Paid     bool `json:"paid"`
}

// PurchaseOrderFlags are the receivable flags shown on purchase orders (0 or 1)
type PurchaseOrderFlags struct {
	ToBeInvoiced int `json:"to_be_invoiced"`
	Invoiced     int `json:"invoiced"`
}

func normalizeDocStatus(s DocStatus) DocStatus {
	if s == "" {
		return DocPending
	}
	return s
}

// ComputeEstimateFlags derives the estimate flags; empty statuses count as pending.
func ComputeEstimateFlags(poStatus, invoiceStatus DocStatus) EstimateFlags {
	po, inv := normalizeDocStatus(poStatus), normalizeDocStatus(invoiceStatus)
	var f EstimateFlags
	switch {
	case po == DocPending && inv == DocPending:
		f.ToBeInvoiced = 1
	case po == DocReceived && inv == DocPending:
		f.Invoice = 1
	case po == DocReceived && inv == DocReceived:
		f.Invoiced = 1
	}
	return f
}

// ComputeInvoiceFlags derives the invoice flags; an empty payment status is Unpaid.
func ComputeInvoiceFlags(invoiceStatus, paymentStatus string) InvoiceFlags {
	if paymentStatus == "" {
		paymentStatus = PaymentUnpaid
	}
	return InvoiceFlags{
		ToBePaid: invoiceStatus == InvoiceStatusActive && paymentStatus == PaymentUnpaid,
		Paid:     paymentStatus == PaymentPaid,
	}
}

// ComputePurchaseOrderFlags derives the PO flags from the linked estimate's statuses.
func ComputePurchaseOrderFlags(poStatus, invoiceStatus DocStatus) PurchaseOrderFlags {
	var f PurchaseOrderFlags
	if poStatus == DocReceived && invoiceStatus == DocPending {
		f.ToBeInvoiced = 1
	}
	if poStatus == DocReceived && invoiceStatus == DocReceived {
		f.Invoiced = 1
	}
	return f
}
