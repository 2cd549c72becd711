package models

import "github.com/uptrace/bun"

// Result is one finish record. Position is the numeric part of the finish
// token and defines finishing order within the race.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID          int64             `bun:"id,pk,autoincrement" json:"-"`
	Season      string            `bun:"season,notnull,unique:results_no_dupes" json:"season,omitempty"`
	RaceName    string            `bun:"race_name,notnull,unique:results_no_dupes" json:"race_name,omitempty"`
	FinishToken string            `bun:"finish_token,notnull,unique:results_no_dupes" json:"finish_token"`
	Position    int               `bun:"position,notnull" json:"position"`
	Participant ResultParticipant `bun:"embed:participant_" json:"participant"`
}

// ResultParticipant is the participant snapshot taken when the result was
// entered. Unmatched barcodes leave everything but ParkrunBarcodeID empty.
type ResultParticipant struct {
	FirstName        string `bun:"first_name" json:"first_name,omitempty"`
	LastName         string `bun:"last_name" json:"last_name,omitempty"`
	Gender           string `bun:"gender" json:"gender,omitempty"`
	Club             string `bun:"club" json:"club,omitempty"`
	AgeCategory      string `bun:"age_category" json:"age_category,omitempty"`
	ParkrunBarcodeID string `bun:"parkrun_barcode_id" json:"parkrun_barcode_id,omitempty"`
}

// ParticipantResult is a result joined with its season, race and race date.
type ParticipantResult struct {
	Season      string            `bun:"season" json:"season"`
	RaceName    string            `bun:"race_name" json:"race_name"`
	RaceDate    string            `bun:"race_date" json:"race_date"`
	FinishToken string            `bun:"finish_token" json:"finish_token"`
	Participant ResultParticipant `bun:"embed:participant_" json:"participant"`
}
