package entity

import (
	"time"
)

// User is the aggregate root for the credential store.
// Password holds the bcrypt digest, never the plain text.
type User struct {
	ID        int64
	Username  string
	Password  string
	Role      Role
	CreatedAt time.Time
}
