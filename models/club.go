package models

import "github.com/uptrace/bun"

// Club is a running club. Short names are the aliases accepted in CSV uploads.
type Club struct {
	bun.BaseModel `bun:"table:clubs,alias:cl"`

	Name       string   `bun:"name,pk" json:"name" yaml:"name"`
	ShortNames []string `bun:"short_names,array" json:"short_names" yaml:"short_names"`
}
