// Package championship turns a season's per-race finishing orders into team and
// individual championship standings.
//
// Everything in this package is pure: callers load the season, its races and
// their results first and pass them in. Results are never cached or stored.
package championship

import (
	"errors"
	"strings"
)

var (
	ErrMissingGender = errors.New("gender is required")
	ErrNoRaces       = errors.New("no races found for season")
	ErrNoResults     = errors.New("no qualifying results found for season")
)

const (
	// DefaultBestOf is used when a season has no individual_results_best_of.
	DefaultBestOf = 3

	defaultScoringFinishers = 3
)

// scoringFinishers is how many finishers of one gender a club must field in a
// race to be scored. Genders not listed use defaultScoringFinishers.
var scoringFinishers = map[string]int{
	"Male": 4,
}

// ScoringFinishers returns the number of counting finishers for gender.
func ScoringFinishers(gender string) int {
	if n, ok := scoringFinishers[gender]; ok {
		return n
	}
	return defaultScoringFinishers
}

// Season carries the season settings the calculators need.
type Season struct {
	Name            string
	AgeCategorySize int
	BestOf          int
}

func (s Season) bestOf() int {
	if s.BestOf > 0 {
		return s.BestOf
	}
	return DefaultBestOf
}

// Race is one event of a season.
type Race struct {
	Name            string   `json:"name"`
	Date            string   `json:"date,omitempty"`
	OrganisingClubs []string `json:"organising_clubs"`
}

func (r Race) organisedBy(club string) bool {
	for _, c := range r.OrganisingClubs {
		if c == club {
			return true
		}
	}
	return false
}

// Finisher is the participant snapshot stored with a finish record at the time
// the result was entered. Unknown finishers have no first name.
type Finisher struct {
	FirstName   string
	LastName    string
	Gender      string
	Club        string
	AgeCategory string
	BarcodeID   string
}

// Known reports whether the finisher was matched to a registered participant.
func (f Finisher) Known() bool {
	return f.FirstName != ""
}

// FullName is the key individual standings are accumulated under.
func (f Finisher) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// RaceResults pairs a race with its finishers in finishing order.
type RaceResults struct {
	Race      Race
	Finishers []Finisher
}

// filter keeps known finishers of gender, and of category when it is set,
// preserving finishing order.
func filter(finishers []Finisher, gender, category string) []Finisher {
	out := make([]Finisher, 0, len(finishers))
	for _, f := range finishers {
		if f.Gender != gender || !f.Known() {
			continue
		}
		if category != "" && f.AgeCategory != category {
			continue
		}
		out = append(out, f)
	}
	return out
}

func racesOf(results []RaceResults) []Race {
	races := make([]Race, len(results))
	for i, rr := range results {
		races[i] = rr.Race
	}
	return copyRaces(races)
}

// copyRaces returns races with nil organiser lists replaced by empty ones so
// they serialise as [].
func copyRaces(races []Race) []Race {
	out := make([]Race, len(races))
	for i, r := range races {
		out[i] = r
		if out[i].OrganisingClubs == nil {
			out[i].OrganisingClubs = []string{}
		}
	}
	return out
}
