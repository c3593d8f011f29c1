package domain

// Request payloads. Required fields whose error text is part of the public
// contract ("Required fields missing", "Line items required", ...) are checked
// in the services; validate tags cover the rest.

// LineItemInput is a line item as received from a client. Quantity and rate
// may arrive as JSON numbers or as locale formatted strings.
type LineItemInput struct {
	Description string `json:"description"`
	Quantity    any    `json:"quantity"`
	Rate        any    `json:"rate"`
}

// CreateJobRequest is the body of POST /jobs
type CreateJobRequest struct {
	ProjectID   *int64 `json:"project_id"`
	ProjectName string `json:"project_name" validate:"max=255"`
	BrandID     *int64 `json:"brand_id"`
	SubBrandID  *int64 `json:"sub_brand_id"`
	FlavourID   *int64 `json:"flavour_id"`
	PackTypeID  *int64 `json:"pack_type_id"`
	PackCode    string `json:"pack_code" validate:"max=100"`
	PackSize    string `json:"pack_size" validate:"max=100"`
	Priority    string `json:"priority"`
	EANBarcode  string `json:"ean_barcode" validate:"max=100"`
}

// UpdateJobRequest is the body of PUT /jobs/{id}
type UpdateJobRequest struct {
	CreateJobRequest
	JobStatus JobStatus `json:"job_status"`
}

// AssignJobRequest is the body of POST /assignjobs
type AssignJobRequest struct {
	ProjectID       *int64  `json:"project_id"`
	JobIDs          []int64 `json:"job_ids"`
	EmployeeID      *int64  `json:"employee_id"`
	ProductionID    *int64  `json:"production_id"`
	TaskDescription *string `json:"task_description"`
	TimeBudget      *string `json:"time_budget"`
}

// ProductionAssignRequest is the body of PUT /assignjobs/production-assign
type ProductionAssignRequest struct {
	AssignJobIDs []int64 `json:"assign_job_ids"`
	EmployeeID   *int64  `json:"employee_id"`
}

// AssignJobIDsRequest carries a batch of assignment ids for the production
// return and reject endpoints. Clients send "ids"; "assign_job_ids" is also
// accepted.
type AssignJobIDsRequest struct {
	IDs          []int64 `json:"ids"`
	AssignJobIDs []int64 `json:"assign_job_ids"`
}

// Batch returns the requested assignment ids, preferring "ids"
func (r *AssignJobIDsRequest) Batch() []int64 {
	if len(r.IDs) > 0 {
		return r.IDs
	}
	return r.AssignJobIDs
}

// ProjectRequest is the body of POST and PUT /projects
type ProjectRequest struct {
	ProjectName            string     `json:"project_name" validate:"max=255"`
	ClientName             string     `json:"client_name" validate:"max=255"`
	StartDate              Date       `json:"start_date"`
	ExpectedCompletionDate Date       `json:"expected_completion_date"`
	Priority               string     `json:"priority"`
	Status                 string     `json:"status"`
	ProjectDescription     string     `json:"project_description"`
	ProjectRequirements    StringList `json:"project_requirements"`
	Budget                 any        `json:"budget"`
	Currency               string     `json:"currency" validate:"max=10"`
}

// EstimateRequest is the body of POST and PUT /costestimates
type EstimateRequest struct {
	ClientID        *int64          `json:"client_id"`
	ProjectID       *int64          `json:"project_id"`
	EstimateDate    Date            `json:"estimate_date"`
	ValidUntil      Date            `json:"valid_until"`
	Currency        string          `json:"currency" validate:"max=10"`
	CEStatus        string          `json:"ce_status"`
	CEPOStatus      DocStatus       `json:"ce_po_status" validate:"omitempty,oneof=pending received"`
	CEInvoiceStatus DocStatus       `json:"ce_invoice_status" validate:"omitempty,oneof=pending received"`
	VATRate         float64         `json:"vat_rate" validate:"gte=0"`
	LineItems       []LineItemInput `json:"line_items"`
	Notes           *string         `json:"notes"`
}

// InvoiceRequest is the body of POST and PUT /invoices
type InvoiceRequest struct {
	ClientID        *int64          `json:"client_id"`
	ProjectID       *int64          `json:"project_id"`
	EstimateID      *int64          `json:"estimate_id"`
	PurchaseOrderID *int64          `json:"purchase_order_id"`
	InvoiceDate     Date            `json:"invoice_date"`
	DueDate         Date            `json:"due_date"`
	Currency        string          `json:"currency" validate:"max=10"`
	DocumentType    string          `json:"document_type"`
	InvoiceStatus   string          `json:"invoice_status"`
	PaymentStatus   string          `json:"payment_status"`
	VATRate         float64         `json:"vat_rate" validate:"gte=0"`
	LineItems       []LineItemInput `json:"line_items"`
	Notes           *string         `json:"notes"`
}

// PurchaseOrderRequest is decoded from the multipart form of
// POST and PUT /purchaseorders
type PurchaseOrderRequest struct {
	PONumber         string
	ProjectID        *int64
	ClientID         *int64
	CostEstimationID *int64
	POAmount         string
	PODate           Date
	Currency         string
}

// Upload is a file received with a request
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TimeLogRequest is the body of POST /time-logs
type TimeLogRequest struct {
	Date         Date    `json:"date"`
	EmployeeID   *int64  `json:"employee_id"`
	ProductionID *int64  `json:"production_id"`
	JobID        int64   `json:"job_id" validate:"required"`
	ProjectID    int64   `json:"project_id" validate:"required"`
	Time         *string `json:"time"`
	Overtime     *string `json:"overtime"`
}

// UpdateTimeLogRequest is the body of PUT /time-logs/{id}. Missing fields keep
// their stored values.
type UpdateTimeLogRequest struct {
	Date         *Date   `json:"date"`
	EmployeeID   *int64  `json:"employee_id"`
	ProductionID *int64  `json:"production_id"`
	JobID        *int64  `json:"job_id"`
	ProjectID    *int64  `json:"project_id"`
	Time         *string `json:"time"`
	Overtime     *string `json:"overtime"`
}

// UserRequest is the body of POST and PUT /users
type UserRequest struct {
	FirstName   string `json:"first_name" validate:"max=100"`
	LastName    string `json:"last_name" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"max=50"`
	Password    string `json:"password"`
	State       string `json:"state"`
	Country     string `json:"country"`
	RoleName    string `json:"role_name" validate:"omitempty,oneof=admin production employee"`
	Image       string `json:"image"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the body of PUT /users/change-password/{id}
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ClientSupplierRequest is the body of POST and PUT /clientsuppliers
type ClientSupplierRequest struct {
	Type           string   `json:"type"`
	Name           string   `json:"name" validate:"max=255"`
	Industry       string   `json:"industry"`
	Website        string   `json:"website"`
	Address        string   `json:"address"`
	TaxID          string   `json:"tax_id"`
	Phone          string   `json:"phone"`
	Status         string   `json:"status"`
	ContactPersons RawJSON  `json:"contact_persons"`
	PaymentTerms   string   `json:"payment_terms"`
	CreditLimit    *float64 `json:"credit_limit"`
	Notes          string   `json:"notes"`
}

// CompanyRequest is the body of POST and PUT /company
type CompanyRequest struct {
	CompanyName     string  `json:"company_name" validate:"required,max=255"`
	CompanyLogo     string  `json:"company_logo"`
	CompanyStamp    string  `json:"company_stamp"`
	Address         string  `json:"address"`
	TRN             string  `json:"trn"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Phone           string  `json:"phone"`
	BankAccountName string  `json:"bank_account_name"`
	BankName        string  `json:"bank_name"`
	IBAN            string  `json:"iban"`
	SwiftCode       string  `json:"swift_code"`
	TaxCategories   RawJSON `json:"tax_categories"`
}

// CatalogRequest is the body of POST on every catalog router
type CatalogRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// BulkDeleteRequest is the body of DELETE /{catalog}/bulk-delete
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// TaxCategoryRequest is the body of POST /taxcategories
type TaxCategoryRequest struct {
	CategoryName string   `json:"category_name"`
	TaxRate      *float64 `json:"tax_rate"`
}
