package domain

import "time"

// User is an identity principal able to authenticate. The order core never
// reads users directly; handlers resolve a token to a user id and pass it
// down explicitly.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
}
