// Package models defines the data exchanged with the yamaphone backend.
package models

// Identity is the user record resolved from a bearer credential.
// The backend spells the admin flag adm_bool.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"adm_bool"`
}

// Credentials is the body of /api/login and /api/register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by /api/login and /api/register.
type AuthResponse struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

// MeResponse is returned by /api/me.
type MeResponse struct {
	User *Identity `json:"user"`
}
