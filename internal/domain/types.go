package domain

// Roles accepted on operator routes.
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)
