package domain

import (
	"strconv"
)

// AdminStatus is the admin axis of an assignment
type AdminStatus string

const (
	AdminInProgress AdminStatus = "in_progress"
	AdminComplete   AdminStatus = "complete"
	AdminReturn     AdminStatus = "return"
	AdminReject     AdminStatus = "reject"
)

// ProductionStatus is the production axis of an assignment
type ProductionStatus string

const (
	ProductionNotApplicable ProductionStatus = "not_applicable"
	ProductionInProgress    ProductionStatus = "in_progress"
	ProductionComplete      ProductionStatus = "complete"
	ProductionReturn        ProductionStatus = "return"
	ProductionReject        ProductionStatus = "reject"
)

// EmployeeStatus is the employee axis of an assignment
type EmployeeStatus string

const (
	EmployeeNotApplicable EmployeeStatus = "not_applicable"
	EmployeeInProgress    EmployeeStatus = "in_progress"
	EmployeeComplete      EmployeeStatus = "complete"
	EmployeeReject        EmployeeStatus = "reject"
)

// JobStatus is the status column of a job
type JobStatus string

const (
	JobActive     JobStatus = "Active"
	JobInProgress JobStatus = "in_progress"
	JobComplete   JobStatus = "complete"
	JobReject     JobStatus = "reject"
	JobReturn     JobStatus = "return"
)

// AssignmentState is the joint value of the three status axes
type AssignmentState struct {
	Admin      AdminStatus
	Production ProductionStatus
	Employee   EmployeeStatus
}

// JobEffect is what a transition writes to the affected jobs.
// An empty Assigned leaves the column untouched.
type JobEffect struct {
	Status   JobStatus
	Assigned string
}

// Transition is the outcome of one workflow use case
type Transition struct {
	Name  string
	State AssignmentState
	Job   JobEffect
}

// Workflow use case names, also used as metric and event labels
const (
	TransitionAssign              = "assign"
	TransitionProductionDelegate  = "production_delegate"
	TransitionEmployeeComplete    = "employee_complete"
	TransitionEmployeeReject      = "employee_reject"
	TransitionProductionComplete  = "production_complete"
	TransitionProductionReturn    = "production_return"
	TransitionProductionReturnJob = "production_return_job_status"
	TransitionProductionReject    = "production_reject"
)

// EmployeeLabel is the jobs.assigned value for a job handed straight to an employee
func EmployeeLabel(employeeID int64) string {
	return "Employee-" + strconv.FormatInt(employeeID, 10)
}

// AssignTransition computes the initial state of a new or re-issued assignment.
//
//   - production only: admin and production in progress, label = production id
//   - employee only: admin and employee complete, label = Employee-{id}
//   - both: only the admin axis is in progress, the other axes are not
//     applicable and the job stays Unassigned until production delegates
func AssignTransition(employeeID, productionID *int64) (Transition, error) {
	t := Transition{Name: TransitionAssign, Job: JobEffect{Status: JobInProgress}}

	switch {
	case employeeID == nil && productionID == nil:
		return Transition{}, Validation("Required fields missing")
	case productionID != nil && employeeID == nil:
		t.State = AssignmentState{Admin: AdminInProgress, Production: ProductionInProgress, Employee: EmployeeNotApplicable}
		t.Job.Assigned = strconv.FormatInt(*productionID, 10)
	case employeeID != nil && productionID == nil:
		t.State = AssignmentState{Admin: AdminComplete, Production: ProductionNotApplicable, Employee: EmployeeComplete}
		t.Job.Assigned = EmployeeLabel(*employeeID)
	default:
		t.State = AssignmentState{Admin: AdminInProgress, Production: ProductionNotApplicable, Employee: EmployeeNotApplicable}
		t.Job.Assigned = Unassigned
	}
	return t, nil
}

// ProductionDelegateTransition hands the assignment to an employee. Only the
// employee axis changes.
func ProductionDelegateTransition(current AssignmentState, employeeID int64) Transition {
	next := current
	next.Employee = EmployeeInProgress
	return Transition{
		Name:  TransitionProductionDelegate,
		State: next,
		Job:   JobEffect{Status: JobInProgress, Assigned: strconv.FormatInt(employeeID, 10)},
	}
}

// EmployeeCompleteTransition marks the employee's work done. The job stays in
// progress until production finalizes it, and keeps its assignee.
func EmployeeCompleteTransition(current AssignmentState) Transition {
	next := current
	next.Employee = EmployeeComplete
	next.Production = ProductionComplete
	return Transition{
		Name:  TransitionEmployeeComplete,
		State: next,
		Job:   JobEffect{Status: JobInProgress},
	}
}

// EmployeeRejectTransition hands the job back unassigned
func EmployeeRejectTransition(current AssignmentState) Transition {
	next := current
	next.Employee = EmployeeReject
	next.Production = ProductionReject
	return Transition{
		Name:  TransitionEmployeeReject,
		State: next,
		Job:   JobEffect{Status: JobReject, Assigned: Unassigned},
	}
}

// ProductionCompleteTransition closes the assignment and all of its jobs
func ProductionCompleteTransition(current AssignmentState) Transition {
	next := current
	next.Production = ProductionComplete
	next.Admin = AdminComplete
	return Transition{
		Name:  TransitionProductionComplete,
		State: next,
		Job:   JobEffect{Status: JobComplete, Assigned: Unassigned},
	}
}

// ProductionReturnTransition returns the assignment to admin. With
// markJobsReturned the jobs carry the return status, otherwise they are
// closed as complete.
func ProductionReturnTransition(current AssignmentState, markJobsReturned bool) Transition {
	next := current
	next.Production = ProductionReturn
	next.Admin = AdminReturn
	t := Transition{
		Name:  TransitionProductionReturn,
		State: next,
		Job:   JobEffect{Status: JobComplete, Assigned: Unassigned},
	}
	if markJobsReturned {
		t.Name = TransitionProductionReturnJob
		t.Job.Status = JobReturn
	}
	return t
}

// ProductionRejectTransition rejects the assignment and its jobs
func ProductionRejectTransition(current AssignmentState) Transition {
	next := current
	next.Production = ProductionReject
	next.Admin = AdminReject
	return Transition{
		Name:  TransitionProductionReject,
		State: next,
		Job:   JobEffect{Status: JobReject, Assigned: Unassigned},
	}
}
