package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID            int32     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Phone         string    `json:"phone"`
	Role          Role      `json:"role"`
	LoyaltyPoints int32     `json:"loyalty_points"`
	TotalBookings int32     `json:"total_bookings"`
	IsActive      bool      `json:"is_active"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

// Actor is the verified identity performing an operation. It is derived from
// token claims at the transport boundary and passed explicitly into services,
// which never re-read roles from request payloads.
type Actor struct {
	ID   int32
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
