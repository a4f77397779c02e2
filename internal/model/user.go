package model

import "time"

// User represents an application user record as stored in the
// `users` table plus the roles joined in from `user_roles`.
// The password hash never crosses the API boundary; the `json:"-"`
// tag keeps it out of every response that serializes a User.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name shown in receipts and admin views.
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hashed password.
//  Roles        – full role set (diner/franchisee/admin).
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        Roles     `json:"roles"`
	CreatedAt    time.Time `json:"-"`
}

// UserRef is the weak reference form of a user embedded in
// franchise responses: identity and display fields only.
type UserRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
