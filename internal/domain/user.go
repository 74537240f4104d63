package domain

import "time"

type Role string

const (
	RoleAgent    Role = "AGENT"
	RoleManager  Role = "MANAGER"
	RoleOwner    Role = "OWNER"
	RoleAdmin    Role = "ADMIN"
	RoleDesigner Role = "DESIGNER"
	RoleFitter   Role = "FITTER"
)

// Management reports whether the role belongs to the supervisory tier that
// receives escalation notices and may cancel or finalize on behalf of agents.
func (r Role) Management() bool {
	return r == RoleOwner || r == RoleManager || r == RoleAdmin
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedOn time.Time `json:"created_on"`
}
