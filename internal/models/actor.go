package models

// Role identifies the kind of authenticated actor.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Vendor is vendor entity. Registration and profile editing live in the
// external identity service; only the fields the order flow needs are here.
type Vendor struct {
	ID    string
	Name  string
	Email string
}

// Customer is customer entity
type Customer struct {
	ID    string
	Name  string
	Email string
}

// TokenPayload is the verified content of an auth token.
type TokenPayload struct {
	Role    Role
	ActorID string
}
