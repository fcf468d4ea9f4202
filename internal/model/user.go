// Package model defines the data structures used throughout the application.
package model

// User is a registered account as held by the credential store.
//
// PasswordHash is a bcrypt hash; it is persisted but never leaves the store
// boundary. Use Public to get the shape returned to callers.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// PublicUser is a User without its password hash.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Public strips the password hash.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Username: u.Username}
}
