package domain

// Identity is the authenticated caller passed into every ledger operation.
type Identity struct {
	UserID   UserID
	Username string
	Role     Role
}
