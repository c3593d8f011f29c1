package domain

import (
	"strconv"
	"time"
)

// SyncFailure is one linked document that could not be brought in line
type SyncFailure struct {
	Target string `json:"target"`
	ID     int64  `json:"id"`
	Error  string `json:"error"`
}

// SyncReport lists what a best-effort fan-out updated and what it could not
type SyncReport struct {
	PurchaseOrdersSynced []int64       `json:"purchase_orders_synced"`
	InvoicesSynced       []int64       `json:"invoices_synced"`
	EstimateSynced       bool          `json:"estimate_synced"`
	Failures             []SyncFailure `json:"failures"`
}

// NewSyncReport returns a report with empty, non-nil lists
func NewSyncReport() *SyncReport {
	return &SyncReport{
		PurchaseOrdersSynced: []int64{},
		InvoicesSynced:       []int64{},
		Failures:             []SyncFailure{},
	}
}

// Fail records a failed target
func (r *SyncReport) Fail(target string, id int64, err error) {
	r.Failures = append(r.Failures, SyncFailure{Target: target, ID: id, Error: err.Error()})
}

// OK reports whether every target synced
func (r *SyncReport) OK() bool { return len(r.Failures) == 0 }

// Sync targets used in SyncFailure.Target and in metrics
const (
	SyncTargetPurchaseOrder = "purchase_order"
	SyncTargetEstimate      = "estimate"
	SyncTargetInvoice       = "invoice"
)

// JobView is a job with its project's number and name
type JobView struct {
	Job
	ProjectNo int64 `json:"project_no"`
}

// JobWithAssignment is a row of GET /jobs/project/{projectId}: the job plus
// its current assignment and the time booked on it.
type JobWithAssignment struct {
	Job
	ProjectNo        int64            `json:"project_no"`
	AssignID         *int64           `json:"assign_id"`
	AdminStatus      AdminStatus      `json:"admin_status"`
	ProductionStatus ProductionStatus `json:"production_status"`
	EmployeeStatus   EmployeeStatus   `json:"employee_status"`
	AssignedName     string           `json:"assigned_name"`
	TotalTime        string           `json:"total_time"`
}

// JobHistoryEntry is one job worked on by a production or employee user
type JobHistoryEntry struct {
	AssignJobID            int64     `json:"assign_job_id"`
	JobID                  int64     `json:"job_id"`
	JobNo                  int64     `json:"job_no"`
	ProjectID              int64     `json:"project_id"`
	ProjectNo              int64     `json:"project_no"`
	ProjectName            string    `json:"project_name"`
	PackCode               string    `json:"pack_code"`
	PackSize               string    `json:"pack_size"`
	Priority               string    `json:"priority"`
	AssignedTo             string    `json:"assignedTo"`
	TotalTime              *string   `json:"totalTime"`
	Status                 string    `json:"status"`
	ExpectedCompletionDate Date      `json:"expected_completion_date"`
	CreatedAt              time.Time `json:"created_at"`
}

// BatchResult lists what a batch production transition touched
type BatchResult struct {
	AssignJobIDs   []int64 `json:"assignJobIds"`
	AffectedJobIDs []int64 `json:"affectedJobIds"`
}

// UserSummary is the public part of a user shown next to assignments
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	RoleName  string `json:"role_name"`
}

// SummaryOf returns the listing view of u, or nil
func SummaryOf(u *User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, RoleName: u.RoleName}
}

// AssignmentGroup is one assignment with its user, project and jobs
type AssignmentGroup struct {
	AssignJob AssignJob    `json:"assign_job"`
	User      *UserSummary `json:"user"`
	Project   *Project     `json:"project"`
	Jobs      []Job        `json:"jobs"`
}

// AssignedJobRow is a flat row of the per-status listings
type AssignedJobRow struct {
	Job
	AssignJobID      int64            `json:"assign_job_id"`
	ProjectNo        int64            `json:"project_no"`
	EmployeeID       *int64           `json:"employee_id"`
	ProductionID     *int64           `json:"production_id"`
	TaskDescription  *string          `json:"task_description"`
	TimeBudget       *string          `json:"time_budget"`
	AdminStatus      AdminStatus      `json:"admin_status"`
	ProductionStatus ProductionStatus `json:"production_status"`
	EmployeeStatus   EmployeeStatus   `json:"employee_status"`
	AssignedAt       time.Time        `json:"assigned_at"`
}

// LogID identifies a time-log row. Persisted rows encode as numbers, pending
// instructions as "pending_{assignId}..." strings.
type LogID struct {
	ID      int64
	Pending string
}

// MarshalJSON implements json.Marshaler
func (l LogID) MarshalJSON() ([]byte, error) {
	if l.Pending != "" {
		return []byte(strconv.Quote(l.Pending)), nil
	}
	return []byte(strconv.FormatInt(l.ID, 10)), nil
}

// TimeLogView is a time log as listed to clients, or a pending instruction
type TimeLogView struct {
	ID              LogID   `json:"id"`
	Date            Date    `json:"date"`
	EmployeeID      *int64  `json:"employee_id"`
	ProductionID    *int64  `json:"production_id"`
	JobID           int64   `json:"job_id"`
	JobNo           *int64  `json:"JobID"`
	ProjectID       int64   `json:"project_id"`
	ProjectName     string  `json:"project_name"`
	Time            string  `json:"time"`
	Overtime        string  `json:"overtime"`
	TotalTime       string  `json:"total_time"`
	TaskDescription *string `json:"task_description"`
	TimeBudget      *string `json:"time_budget"`
	EmployeeName    string  `json:"employee_name"`
	AssignStatus    string  `json:"assign_status"`
	IsPending       bool    `json:"is_pending"`
}

// LogOwner is the header of an employee or production job-log view
type LogOwner struct {
	UserID               int64     `json:"-"`
	Name                 string    `json:"name"`
	AssignedEmployeeName string    `json:"assigned_employee_name"`
	TimeBudget           string    `json:"time_budget"`
	TaskDescription      *string   `json:"task_description"`
	CreatedAt            time.Time `json:"created_at"`
}

// ProductionLogGroup groups an admin job-log view by assignee
type ProductionLogGroup struct {
	ProductionID    *int64        `json:"production_id"`
	EmployeeID      *int64        `json:"employee_id,omitempty"`
	ProductionName  string        `json:"production_name"`
	TimeBudget      string        `json:"time_budget"`
	TaskDescription *string       `json:"task_description"`
	CreatedAt       time.Time     `json:"created_at"`
	Logs            []TimeLogView `json:"logs"`
}

// JobLogsView is the role scoped result of the employee+job lookup
type JobLogsView struct {
	Role        string
	Owner       *LogOwner
	Logs        []TimeLogView
	JobID       int64
	JobNo       int64
	Productions []ProductionLogGroup
}

// EstimateView is an estimate with display names and fresh flags
type EstimateView struct {
	Estimate
	ClientName  string `json:"client_name"`
	ProjectName string `json:"project_name"`
	ProjectNo   *int64 `json:"project_no"`
}

// InvoiceView is an invoice with its PO number and estimate number
type InvoiceView struct {
	Invoice
	PONumber    *string `json:"po_number"`
	CENo        *int64  `json:"ce_no"`
	ClientName  string  `json:"client_name"`
	ProjectName string  `json:"project_name"`
	ProjectNo   *int64  `json:"project_no"`
}

// PurchaseOrderView is a PO with its estimate's status and receivable flags
type PurchaseOrderView struct {
	PurchaseOrder
	PurchaseOrderFlags
	EstimateID      *int64    `json:"estimate_id"`
	EstimateNo      *int64    `json:"estimate_no"`
	Currency        string    `json:"currency"`
	CEStatus        string    `json:"ce_status"`
	CEPOStatus      DocStatus `json:"ce_po_status"`
	CEInvoiceStatus DocStatus `json:"ce_invoice_status"`
	ClientName      string    `json:"client_name"`
	ProjectName     string    `json:"project_name"`
}

// PDFClient is the addressee block of a printable document
type PDFClient struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	TaxID   string `json:"tax_id,omitempty"`
}

// PDFProject is the project block of a printable document
type PDFProject struct {
	ProjectName string `json:"project_name"`
	ProjectNo   *int64 `json:"project_no"`
}

// PDFSummary is the totals block of a printable document
type PDFSummary struct {
	Currency  string  `json:"currency"`
	Subtotal  float64 `json:"subtotal"`
	VATRate   float64 `json:"vat_rate"`
	VATAmount float64 `json:"vat_amount"`
	Total     float64 `json:"total_amount"`
}

// EstimatePDF is the data a client renders a cost estimate from
type EstimatePDF struct {
	CompanyName  string     `json:"company_name"`
	CompanyLogo  string     `json:"company_logo"`
	EstimateNo   int64      `json:"estimate_no"`
	EstimateDate Date       `json:"estimate_date"`
	ValidUntil   Date       `json:"valid_until"`
	Client       PDFClient  `json:"client"`
	Project      PDFProject `json:"project"`
	Items        LineItems  `json:"items"`
	Summary      PDFSummary `json:"summary"`
	Notes        *string    `json:"notes"`
}

// PDFCompany is the letterhead block of an invoice
type PDFCompany struct {
	Name    string `json:"name"`
	Stamp   string `json:"stamp"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	TRN     string `json:"trn"`
	Logo    string `json:"logo"`
}

// PDFBank is the payment block of an invoice
type PDFBank struct {
	AccountName string `json:"account_name"`
	BankName    string `json:"bank_name"`
	IBAN        string `json:"iban"`
	SwiftCode   string `json:"swift_code"`
}

// InvoicePDF is the data a client renders an invoice from
type InvoicePDF struct {
	InvoiceNo    int64      `json:"invoice_no"`
	InvoiceDate  Date       `json:"invoice_date"`
	DueDate      Date       `json:"due_date"`
	DocumentType string     `json:"document_type"`
	CENo         *int64     `json:"ce_no"`
	PONo         string     `json:"po_no"`
	Project      PDFProject `json:"project"`
	Currency     string     `json:"currency"`
	Company      PDFCompany `json:"company"`
	Client       PDFClient  `json:"client"`
	Bank         PDFBank    `json:"bank"`
	Items        LineItems  `json:"items"`
	Summary      PDFSummary `json:"summary"`
	Notes        *string    `json:"notes"`
}

// POStats summarizes a project's purchase orders
type POStats struct {
	TotalPOs   int    `json:"total_pos"`
	Received   int    `json:"received"`
	Issued     int    `json:"issued"`
	TotalValue string `json:"total_value"`
	Currency   string `json:"currency"`
}

// Activity is one entry of a project's recent activity feed
type Activity struct {
	Activity  string    `json:"activity"`
	Type      string    `json:"type"`
	RefID     int64     `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectOverview is the project detail page summary
type ProjectOverview struct {
	Project        Project    `json:"project"`
	JobsInProgress int64      `json:"in_progress"`
	TotalJobs      int64      `json:"total_jobs"`
	DaysRemaining  *int       `json:"days_remaining"`
	DueDate        Date       `json:"due_date"`
	TotalHours     string     `json:"total_hours"`
	PurchaseOrders POStats    `json:"purchase_orders"`
	RecentActivity []Activity `json:"recent_activity"`
	JobsDueToday   int        `json:"jobs_due_today"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	User  User   `json:"data"`
}

// WorkerTopCards are the counters on a production or employee dashboard
type WorkerTopCards struct {
	InProgress        int64 `json:"inProgress"`
	Active            int64 `json:"active"`
	Completed         int64 `json:"completed"`
	PendingAssignment int64 `json:"pendingAssignment"`
}

// WeeklyPerformance counts job movements over the last seven days
type WeeklyPerformance struct {
	JobsCompleted int64 `json:"jobsCompleted"`
	JobsCreated   int64 `json:"jobsCreated"`
	OverdueJobs   int64 `json:"overdueJobs"`
}

// Workload is the number of jobs handed to the user
type Workload struct {
	TotalJobsAssigned int64 `json:"totalJobsAssigned"`
}

// WorkerDashboard is the production and employee dashboard
type WorkerDashboard struct {
	TopCards          WorkerTopCards    `json:"topCards"`
	WeeklyPerformance WeeklyPerformance `json:"weeklyPerformance"`
	EmployeeWorkload  Workload          `json:"employeeWorkload"`
}

// CurrencyAmount is a sum of documents in one currency
type CurrencyAmount struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// AdminTopCards are the headline counters of the admin report
type AdminTopCards struct {
	TotalProjects           int64            `json:"totalProjects"`
	TotalJobs               int64            `json:"totalJobs"`
	ActiveJobs              int64            `json:"activeJobs"`
	CompletedJobs           int64            `json:"completedJobs"`
	InvoiceAmountByCurrency []CurrencyAmount `json:"invoiceAmountByCurrency"`
	POAmountByCurrency      []CurrencyAmount `json:"poAmountByCurrency"`
}

// JobAnalytics counts job movements in the current week
type JobAnalytics struct {
	CreatedThisWeek   int64 `json:"createdThisWeek"`
	CompletedThisWeek int64 `json:"completedThisWeek"`
	DueThisWeek       int64 `json:"dueThisWeek"`
	OverdueJobs       int64 `json:"overdueJobs"`
}

// FinanceSummary is the money section of the admin report
type FinanceSummary struct {
	InvoiceThisMonthByCurrency []CurrencyAmount `json:"invoiceThisMonthByCurrency"`
	POThisMonthByCurrency      []CurrencyAmount `json:"poThisMonthByCurrency"`
	PaidAmount                 float64          `json:"paidAmount"`
	UnpaidAmount               float64          `json:"unpaidAmount"`
}

// Productivity sums booked hours
type Productivity struct {
	TotalHours  string `json:"totalHours"`
	WeeklyHours string `json:"weeklyHours"`
}

// AdminReport is the admin reports page
type AdminReport struct {
	TopCards     AdminTopCards  `json:"topCards"`
	JobAnalytics JobAnalytics   `json:"jobAnalytics"`
	Finance      FinanceSummary `json:"finance"`
	Productivity Productivity   `json:"productivity"`
}

// AdminCards are the counters of the company admin dashboard
type AdminCards struct {
	ProjectsInProgress int64 `json:"projectsInProgress"`
	JobsInProgress     int64 `json:"jobsInProgress"`
	JobsDueToday       int64 `json:"jobsDueToday"`
	CostEstimates      int64 `json:"costEstimates"`
	ReceivablePO       int64 `json:"receivablePO"`
	CompletedProjects  int64 `json:"completedProjects"`
}

// StatusCount is one bar of the project status chart
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ProjectActivity is one recently created project
type ProjectActivity struct {
	ProjectName string    `json:"project_name"`
	ClientName  string    `json:"client_name"`
	Budget      *float64  `json:"budget"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminDashboard is the company admin landing page
type AdminDashboard struct {
	Cards          AdminCards        `json:"cards"`
	ProjectStatus  []StatusCount     `json:"projectStatus"`
	RecentActivity []ProjectActivity `json:"recentActivity"`
}
