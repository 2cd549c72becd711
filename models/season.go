package models

import "github.com/uptrace/bun"

// Season groups races for one championship year.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:s"`

	Name                    string  `bun:"name,pk" json:"name"`
	AgeCategorySize         int     `bun:"age_category_size,notnull,default:5" json:"age_category_size"`
	IsDefault               bool    `bun:"is_default,notnull,default:false" json:"is_default"`
	StartDate               *string `bun:"start_date" json:"start_date,omitempty"`
	IndividualResultsBestOf *int    `bun:"individual_results_best_of" json:"individual_results_best_of,omitempty"`
}
