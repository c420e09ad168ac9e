package models

import "time"

// User is the identity exposed by the session provider. Email is the tenant key.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Account is a registered local user
type Account struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User returns the public identity of the account
func (a Account) User() User {
	return User{Email: a.Email, Name: a.Name}
}
