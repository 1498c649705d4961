// Package model contains the mailroom domain models. They carry JSON tags for the HTTP
// layer but no persistence concerns.
package model

// Role is the access level of a profile.
type Role string

const (
	RoleUser     Role = "USER"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleOperator || r == RoleAdmin
}

// Rank orders roles by privilege; unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleOperator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// Dimensions are the outer measurements of a mailbox or a piece of mail, in centimetres.
type Dimensions struct {
	Width  float64 `json:"width_cm" validate:"gt=0"`
	Height float64 `json:"height_cm" validate:"gt=0"`
	Depth  float64 `json:"depth_cm" validate:"gt=0"`
}

// Valid reports whether all sides are strictly positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0 && d.Depth > 0
}
