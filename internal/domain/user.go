package domain

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Actor is the authenticated identity acting on a request.
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// CanAccess reports whether the actor may read or delete a resource owned by ownerID.
func CanAccess(actor Actor, ownerID int64) bool {
	return actor.IsAdmin || actor.UserID == ownerID
}
