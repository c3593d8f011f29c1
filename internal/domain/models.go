package domain

import (
	"time"
)

// Sentinel stored in jobs.assigned when nobody holds the job
const Unassigned = "Unassigned"

// Role names stored in users.role_name
const (
	RoleAdmin      = "admin"
	RoleProduction = "production"
	RoleEmployee   = "employee"
)

// Project is a client engagement that owns jobs and financial documents
type Project struct {
	ID                     int64      `gorm:"primaryKey" json:"id"`
	ProjectNo              int64      `gorm:"not null;uniqueIndex" json:"project_no"`
	ProjectName            string     `gorm:"type:varchar(255);not null" json:"project_name"`
	ClientName             string     `gorm:"type:varchar(255)" json:"client_name"`
	StartDate              Date       `gorm:"type:date" json:"start_date"`
	ExpectedCompletionDate Date       `gorm:"type:date" json:"expected_completion_date"`
	Priority               string     `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Status                 string     `gorm:"type:varchar(50);not null;default:'active';index" json:"status"`
	ProjectDescription     string     `gorm:"type:text" json:"project_description"`
	ProjectRequirements    StringList `gorm:"type:text" json:"project_requirements"`
	Budget                 *float64   `json:"budget"`
	Currency               string     `gorm:"type:varchar(10)" json:"currency"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// Job is a single deliverable within a project
type Job struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	JobNo       int64     `gorm:"not null;uniqueIndex" json:"job_no"`
	ProjectID   int64     `gorm:"not null;index" json:"project_id"`
	ProjectName string    `gorm:"type:varchar(255)" json:"project_name"`
	BrandID     *int64    `json:"brand_id"`
	SubBrandID  *int64    `json:"sub_brand_id"`
	FlavourID   *int64    `json:"flavour_id"`
	PackTypeID  *int64    `json:"pack_type_id"`
	PackCode    string    `gorm:"type:varchar(100)" json:"pack_code"`
	PackSize    string    `gorm:"type:varchar(100)" json:"pack_size"`
	Priority    string    `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	EANBarcode  string    `gorm:"column:ean_barcode;type:varchar(100)" json:"ean_barcode"`
	JobStatus   JobStatus `gorm:"type:varchar(30);not null;default:'Active';index" json:"job_status"`
	Assigned    string    `gorm:"type:varchar(100);index" json:"assigned"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssignJob is one assignment event binding a project, a set of jobs and
// the production and/or employee user working on them.
type AssignJob struct {
	ID               int64            `gorm:"primaryKey" json:"id"`
	ProjectID        int64            `gorm:"not null;index" json:"project_id"`
	JobIDs           JobIDs           `gorm:"column:job_ids;type:text;not null" json:"job_ids"`
	EmployeeID       *int64           `gorm:"index" json:"employee_id"`
	ProductionID     *int64           `gorm:"index" json:"production_id"`
	TaskDescription  *string          `gorm:"type:text" json:"task_description"`
	TimeBudget       *string          `gorm:"type:varchar(20)" json:"time_budget"`
	AdminStatus      AdminStatus      `gorm:"type:varchar(30);not null" json:"admin_status"`
	ProductionStatus ProductionStatus `gorm:"type:varchar(30);not null" json:"production_status"`
	EmployeeStatus   EmployeeStatus   `gorm:"type:varchar(30);not null" json:"employee_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TableName overrides the default pluralization
func (AssignJob) TableName() string { return "assign_jobs" }

// Statuses returns the current status triple
func (a *AssignJob) Statuses() AssignmentState {
	return AssignmentState{Admin: a.AdminStatus, Production: a.ProductionStatus, Employee: a.EmployeeStatus}
}

// Apply copies a status triple onto the row
func (a *AssignJob) Apply(s AssignmentState) {
	a.AdminStatus = s.Admin
	a.ProductionStatus = s.Production
	a.EmployeeStatus = s.Employee
}

// TimeLog records time spent on a job. The snapshot fields are copied from the
// assignment in effect when the log was created and never change afterwards.
type TimeLog struct {
	ID                      int64     `gorm:"primaryKey" json:"id"`
	Date                    Date      `gorm:"type:date" json:"date"`
	EmployeeID              *int64    `gorm:"index" json:"employee_id"`
	ProductionID            *int64    `gorm:"index" json:"production_id"`
	JobID                   int64     `gorm:"not null;index" json:"job_id"`
	ProjectID               int64     `gorm:"not null;index" json:"project_id"`
	Time                    *string   `gorm:"type:varchar(20)" json:"time"`
	Overtime                *string   `gorm:"type:varchar(20)" json:"overtime"`
	TaskDescriptionSnapshot *string   `gorm:"type:text" json:"task_description_snapshot"`
	TimeBudgetSnapshot      *string   `gorm:"type:varchar(20)" json:"time_budget_snapshot"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// TableName overrides the default pluralization
func (TimeLog) TableName() string { return "time_work_logs" }

// Total returns time plus overtime
func (t *TimeLog) Total() time.Duration {
	return ClockSum(t.Time, t.Overtime)
}

// Estimate is a priced quote. The flag columns are always written from
// ComputeEstimateFlags.
type Estimate struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	EstimateNo      int64     `gorm:"not null;uniqueIndex" json:"estimate_no"`
	ClientID        int64     `gorm:"not null;index" json:"client_id"`
	ProjectID       *int64    `gorm:"index" json:"project_id"`
	EstimateDate    Date      `gorm:"type:date" json:"estimate_date"`
	ValidUntil      Date      `gorm:"type:date" json:"valid_until"`
	Currency        string    `gorm:"type:varchar(10);not null" json:"currency"`
	CEStatus        string    `gorm:"column:ce_status;type:varchar(50)" json:"ce_status"`
	CEPOStatus      DocStatus `gorm:"column:ce_po_status;type:varchar(20);not null;default:'pending'" json:"ce_po_status"`
	CEInvoiceStatus DocStatus `gorm:"column:ce_invoice_status;type:varchar(20);not null;default:'pending'" json:"ce_invoice_status"`
	ToBeInvoiced    int       `gorm:"not null;default:0" json:"to_be_invoiced"`
	InvoiceFlag     int       `gorm:"column:invoice;not null;default:0" json:"invoice"`
	Invoiced        int       `gorm:"not null;default:0" json:"invoiced"`
	LineItems       LineItems `gorm:"type:text" json:"line_items"`
	VATRate         float64   `gorm:"column:vat_rate" json:"vat_rate"`
	Subtotal        float64   `json:"subtotal"`
	VATAmount       float64   `gorm:"column:vat_amount" json:"vat_amount"`
	TotalAmount     float64   `json:"total_amount"`
	Notes           *string   `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplyFlags writes the derived flag columns from the two status dimensions
func (e *Estimate) ApplyFlags() EstimateFlags {
	f := ComputeEstimateFlags(e.CEPOStatus, e.CEInvoiceStatus)
	e.ToBeInvoiced, e.InvoiceFlag, e.Invoiced = f.ToBeInvoiced, f.Invoice, f.Invoiced
	return f
}

// ApplyTotals copies computed totals onto the estimate
func (e *Estimate) ApplyTotals(t Totals) {
	e.LineItems = t.Items
	e.VATRate = t.VATRate
	e.Subtotal = t.Subtotal
	e.VATAmount = t.VATAmount
	e.TotalAmount = t.Total
}

// Totals returns the stored priced fields
func (e *Estimate) Totals() Totals {
	return Totals{Items: e.LineItems, VATRate: e.VATRate, Subtotal: e.Subtotal, VATAmount: e.VATAmount, Total: e.TotalAmount}
}

// PurchaseOrder is the client's commitment against an estimate
type PurchaseOrder struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	PONumber         string    `gorm:"column:po_number;type:varchar(100);not null" json:"po_number"`
	ProjectID        int64     `gorm:"not null;index" json:"project_id"`
	ClientID         int64     `gorm:"not null;index" json:"client_id"`
	CostEstimationID *int64    `gorm:"index" json:"cost_estimation_id"`
	POAmount         float64   `gorm:"column:po_amount" json:"po_amount"`
	PODate           Date      `gorm:"column:po_date;type:date" json:"po_date"`
	PODocument       *string   `gorm:"column:po_document;type:varchar(500)" json:"po_document"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Invoice is a billing document. ToBePaid and Paid are written from
// ComputeInvoiceFlags.
type Invoice struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	InvoiceNo       int64     `gorm:"not null;uniqueIndex" json:"invoice_no"`
	ClientID        int64     `gorm:"not null;index" json:"client_id"`
	ProjectID       *int64    `gorm:"index" json:"project_id"`
	EstimateID      *int64    `gorm:"index" json:"estimate_id"`
	PurchaseOrderID *int64    `gorm:"index" json:"purchase_order_id"`
	InvoiceDate     Date      `gorm:"type:date" json:"invoice_date"`
	DueDate         Date      `gorm:"type:date" json:"due_date"`
	Currency        string    `gorm:"type:varchar(10);not null" json:"currency"`
	DocumentType    string    `gorm:"type:varchar(50);not null;default:'Tax Invoice'" json:"document_type"`
	InvoiceStatus   string    `gorm:"type:varchar(30)" json:"invoice_status"`
	PaymentStatus   string    `gorm:"type:varchar(30);not null;default:'Unpaid'" json:"payment_status"`
	ToBePaid        bool      `gorm:"not null;default:false" json:"to_be_paid"`
	Paid            bool      `gorm:"not null;default:false" json:"paid"`
	LineItems       LineItems `gorm:"type:text" json:"line_items"`
	VATRate         float64   `gorm:"column:vat_rate" json:"vat_rate"`
	Subtotal        float64   `json:"subtotal"`
	VATAmount       float64   `gorm:"column:vat_amount" json:"vat_amount"`
	TotalAmount     float64   `json:"total_amount"`
	Notes           *string   `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplyFlags writes to_be_paid and paid from the two statuses
func (i *Invoice) ApplyFlags() InvoiceFlags {
	f := ComputeInvoiceFlags(i.InvoiceStatus, i.PaymentStatus)
	i.ToBePaid, i.Paid = f.ToBePaid, f.Paid
	return f
}

// ApplyTotals copies computed totals onto the invoice
func (i *Invoice) ApplyTotals(t Totals) {
	i.LineItems = t.Items
	i.VATRate = t.VATRate
	i.Subtotal = t.Subtotal
	i.VATAmount = t.VATAmount
	i.TotalAmount = t.Total
}

// Totals returns the stored priced fields
func (i *Invoice) Totals() Totals {
	return Totals{Items: i.LineItems, VATRate: i.VATRate, Subtotal: i.Subtotal, VATAmount: i.VATAmount, Total: i.TotalAmount}
}

// Totals is the result of pricing a set of line items
type Totals struct {
	Items     LineItems
	VATRate   float64
	Subtotal  float64
	VATAmount float64
	Total     float64
}

// ClientSupplier is a counterparty; Type is "client" or "supplier"
type ClientSupplier struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Type           string    `gorm:"type:varchar(20);not null;index" json:"type"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Industry       string    `gorm:"type:varchar(255)" json:"industry"`
	Website        string    `gorm:"type:varchar(255)" json:"website"`
	Address        string    `gorm:"type:text" json:"address"`
	TaxID          string    `gorm:"column:tax_id;type:varchar(100)" json:"tax_id"`
	Phone          string    `gorm:"type:varchar(50)" json:"phone"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ContactPersons RawJSON   `gorm:"type:text" json:"contact_persons"`
	PaymentTerms   string    `gorm:"type:varchar(100)" json:"payment_terms"`
	CreditLimit    *float64  `json:"credit_limit"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides the default pluralization
func (ClientSupplier) TableName() string { return "clients_suppliers" }

// CompanyInformation is the agency's own letterhead and bank details
type CompanyInformation struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	CompanyName     string    `gorm:"type:varchar(255);not null" json:"company_name"`
	CompanyLogo     string    `gorm:"type:varchar(500)" json:"company_logo"`
	CompanyStamp    string    `gorm:"type:varchar(500)" json:"company_stamp"`
	Address         string    `gorm:"type:text" json:"address"`
	TRN             string    `gorm:"column:trn;type:varchar(100)" json:"trn"`
	Email           string    `gorm:"type:varchar(255)" json:"email"`
	Phone           string    `gorm:"type:varchar(50)" json:"phone"`
	BankAccountName string    `gorm:"type:varchar(255)" json:"bank_account_name"`
	BankName        string    `gorm:"type:varchar(255)" json:"bank_name"`
	IBAN            string    `gorm:"column:iban;type:varchar(100)" json:"iban"`
	SwiftCode       string    `gorm:"type:varchar(50)" json:"swift_code"`
	TaxCategories   RawJSON   `gorm:"type:text" json:"tax_categories"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides the default pluralization
func (CompanyInformation) TableName() string { return "company_information" }

// User is an admin, production or employee account
type User struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	FirstName   string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName    string    `gorm:"type:varchar(100)" json:"last_name"`
	Email       string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PhoneNumber string    `gorm:"type:varchar(50)" json:"phone_number"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	State       string    `gorm:"type:varchar(100)" json:"state"`
	Country     string    `gorm:"type:varchar(100)" json:"country"`
	RoleName    string    `gorm:"type:varchar(30);not null;index" json:"role_name"`
	Image       string    `gorm:"type:varchar(500)" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName joins first and last name the way listings display them
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CatalogItem is a named lookup row (brand, flavour, pack type, ...)
type CatalogItem struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TaxCategory is a named VAT rate
type TaxCategory struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CategoryName string    `gorm:"type:varchar(255);not null" json:"category_name"`
	TaxRate      float64   `gorm:"not null" json:"tax_rate"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides the default pluralization
func (TaxCategory) TableName() string { return "tax_category" }

// NumberSequence stores the last issued value of a document number series
type NumberSequence struct {
	Name      string    `gorm:"type:varchar(50);primaryKey" json:"name"`
	LastValue int64     `gorm:"not null" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllModels lists every persisted model for AutoMigrate
func AllModels() []any {
	return []any{
		&Project{},
		&Job{},
		&AssignJob{},
		&TimeLog{},
		&Estimate{},
		&PurchaseOrder{},
		&Invoice{},
		&ClientSupplier{},
		&CompanyInformation{},
		&User{},
		&TaxCategory{},
		&NumberSequence{},
		&AuditLog{},
	}
}
