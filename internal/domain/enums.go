package domain

// Role identifies the authenticated actor's role as carried in the
// identity context. The core never authenticates; it only checks roles.
type Role string

const (
	RoleStudent      Role = "student"
	RoleSupervisor   Role = "supervisor"
	RoleCompanyAdmin Role = "company_admin"
	RoleLecturer     Role = "lecturer"
	RoleSuperAdmin   Role = "super_admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleCompanyAdmin, RoleLecturer, RoleSuperAdmin:
		return true
	}
	return false
}

// InternshipStatus represents the lifecycle state of an internship.
// The core reads it but never writes it.
type InternshipStatus string

const (
	InternshipStatusOngoing   InternshipStatus = "ongoing"
	InternshipStatusCompleted InternshipStatus = "completed"
	InternshipStatusCancelled InternshipStatus = "cancelled"
)

func (s InternshipStatus) String() string { return string(s) }

func (s InternshipStatus) IsValid() bool {
	switch s {
	case InternshipStatusOngoing, InternshipStatusCompleted, InternshipStatusCancelled:
		return true
	}
	return false
}

// ApprovalStatus is shared by logbooks and weekly logs.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending_approval"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) String() string { return string(s) }

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// SupervisorStatus represents the verification state of a supervisor account.
type SupervisorStatus string

const (
	SupervisorStatusPending  SupervisorStatus = "pending"
	SupervisorStatusApproved SupervisorStatus = "approved"
)

func (s SupervisorStatus) String() string { return string(s) }

func (s SupervisorStatus) IsValid() bool {
	switch s {
	case SupervisorStatusPending, SupervisorStatusApproved:
		return true
	}
	return false
}
