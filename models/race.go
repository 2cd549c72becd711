package models

import "github.com/uptrace/bun"

// Race is a single event within a season. Dates are stored as YYYY-MM-DD text.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	ID              int64    `bun:"id,pk,autoincrement" json:"-"`
	Season          string   `bun:"season,notnull,unique:races_no_dupes" json:"season,omitempty"`
	Name            string   `bun:"name,notnull,unique:races_no_dupes" json:"name"`
	Date            string   `bun:"date,notnull" json:"date"`
	OrganisingClubs []string `bun:"organising_clubs,array" json:"organising_clubs"`
}
