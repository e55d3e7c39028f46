package models

import "time"

// Role tags a user with what they do on the floor. Roles are plain data
// with a capability lookup; there is no per-role behavior.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWaiter Role = "waiter"
	RoleChef   Role = "chef"
)

// Capability names one operation a role may perform.
type Capability string

const (
	CapCreateOrder  Capability = "create_order"
	CapEditItems    Capability = "edit_items"
	CapSubmitOrder  Capability = "submit_order"
	CapAdvanceOrder Capability = "advance_order"
	CapCancelOrder  Capability = "cancel_order"
	CapIssueReceipt Capability = "issue_receipt"
	CapViewReports  Capability = "view_reports"
	CapResetStore   Capability = "reset_store"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapCreateOrder:  true,
		CapEditItems:    true,
		CapSubmitOrder:  true,
		CapAdvanceOrder: true,
		CapCancelOrder:  true,
		CapIssueReceipt: true,
		CapViewReports:  true,
		CapResetStore:   true,
	},
	RoleWaiter: {
		CapCreateOrder: true,
		CapEditItems:   true,
		CapSubmitOrder: true,
		CapCancelOrder: true,
	},
	RoleChef: {
		CapAdvanceOrder: true,
		CapIssueReceipt: true,
		CapCancelOrder:  true,
	},
}

// Can reports whether the role is entitled to the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// User is an account record loaded from the users file.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Session carries the authenticated user through every service
// operation. There is no process-wide current user.
type Session struct {
	User      User
	StartedAt time.Time
}

// Can reports whether the session's role holds the capability.
func (s *Session) Can(c Capability) bool {
	if s == nil {
		return false
	}
	return s.User.Role.Can(c)
}
