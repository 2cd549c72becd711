package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an administrator account with a bcrypt-hashed password. Whether the
// account may use admin routes is decided by ADMIN_USERS.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Username  string    `bun:"username,notnull,unique" json:"username"`
	Password  string    `bun:"password,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
