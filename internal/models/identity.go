package models

// Role is the closed set of account roles known to SOIN.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// ApprovalStatus tracks the admin review state of a doctor account.
// Patients and admins never carry one.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Identity is the authenticated account as returned by the auth endpoints.
type Identity struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Role           Role           `json:"role"`
	Age            *int           `json:"age,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approval_status,omitempty"`
}

// IsApprovedDoctor reports whether the identity may use the doctor dashboard.
func (i *Identity) IsApprovedDoctor() bool {
	return i != nil && i.Role == RoleDoctor && i.ApprovalStatus == ApprovalApproved
}
