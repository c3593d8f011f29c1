package service

import (
	"errors"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// Service errors. Each wraps one of the domain error kinds so handlers can
// pick a status code with errors.Is.
var (
	ErrRequiredFieldsMissing = domain.Validation("Required fields missing")
	ErrLineItemsRequired     = domain.Validation("Line items required")
	ErrNoAssignJobIDs        = domain.Validation("No assign job ids provided")
	ErrNoJobsToUpdate        = domain.Validation("No jobs found to update")
	ErrJobIDRequired         = domain.Validation("job_id is required")
	ErrIDsRequired           = domain.Validation("ids array is required")
	ErrProjectIDRequired     = domain.Validation("project_id is required")
	ErrProjectNameRequired   = domain.Validation("Project name is required")
	ErrTypeAndNameRequired   = domain.Validation("Type and Name are required")
	ErrPasswordRequired      = domain.Validation("Password is required")
	ErrNewPasswordRequired   = domain.Validation("New password is required")
	ErrEmailRequired         = domain.Validation("Email is required")

	ErrProjectNotFound       = domain.NotFound("Project not found")
	ErrJobNotFound           = domain.NotFound("Job not found")
	ErrAssignJobNotFound     = domain.NotFound("Assign job not found")
	ErrEstimateNotFound      = domain.NotFound("Estimate not found")
	ErrInvoiceNotFound       = domain.NotFound("Invoice not found")
	ErrPurchaseOrderNotFound = domain.NotFound("Purchase Order not found")
	ErrTimeLogNotFound       = domain.NotFound("Record not found")
	ErrClientNotFound        = domain.NotFound("Client not found")
	ErrCompanyNotFound       = domain.NotFound("Company not found")
	ErrUserNotFound          = domain.NotFound("User not found")
	ErrTaxCategoryNotFound   = domain.NotFound("Tax category not found")

	ErrDuplicateInvoice = domain.Conflict("Invoice already exists for this Cost Estimate")
	ErrUserExists       = domain.Conflict("User already exists")

	// ErrInvalidCredentials is returned by Login for a wrong password
	ErrInvalidCredentials = errors.New("Invalid password")
	// ErrLoginUnknownUser is returned by Login for an unknown email
	ErrLoginUnknownUser = domain.NotFound("User not found, please contact admin")
)

// notFound maps gorm.ErrRecordNotFound to sentinel and returns other errors
// unchanged
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
