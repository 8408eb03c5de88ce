package users

import "time"

// User is a registered account as persisted by a Store.
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
	// PasswordHash is the bcrypt output; the plaintext password is never stored.
	PasswordHash string
	// Date is the registration time, assigned by the store on insert.
	Date time.Time
}
