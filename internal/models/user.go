package models

// User is a read-only mirror of the identity provider's record. Identity owns it;
// this service only hydrates display data from it.
type User struct {
	ID          string `db:"id" json:"id"`
	Username    string `db:"username" json:"username"`
	DisplayName string `db:"display_name" json:"display_name,omitempty"`
}
