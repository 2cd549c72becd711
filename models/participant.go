package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Participant is a registered runner keyed by parkrun barcode.
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	Barcode     string    `bun:"barcode,pk" json:"barcode"`
	FirstName   string    `bun:"first_name,notnull" json:"first_name"`
	LastName    string    `bun:"last_name,notnull" json:"last_name"`
	Gender      string    `bun:"gender,notnull" json:"gender"`
	DateOfBirth string    `bun:"date_of_birth,notnull" json:"date_of_birth"`
	Club        string    `bun:"club,notnull" json:"club"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// SameDetails reports whether o carries the same editable fields as p.
func (p *Participant) SameDetails(o *Participant) bool {
	return p.FirstName == o.FirstName &&
		p.LastName == o.LastName &&
		p.Gender == o.Gender &&
		p.DateOfBirth == o.DateOfBirth &&
		p.Club == o.Club
}
