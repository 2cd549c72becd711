package championship

import (
	"fmt"
	"sort"
)

// IndividualStanding is one row of the individual championship table.
type IndividualStanding struct {
	Name          string         `json:"name"`
	Club          string         `json:"club"`
	AgeCategory   string         `json:"age_category"`
	ParticipantID string         `json:"participant_id,omitempty"`
	TotalPoints   int            `json:"total_points"`
	RacePositions map[string]int `json:"race_positions"`
}

// IndividualResult is the individual championship table for one season,
// gender and optional age category.
type IndividualResult struct {
	Season           string               `json:"season"`
	Gender           string               `json:"gender"`
	Category         string               `json:"category,omitempty"`
	ChampionshipType string               `json:"championship_type"`
	ChampionshipName string               `json:"championship_name"`
	Races            []Race               `json:"races"`
	Standings        []IndividualStanding `json:"standings"`
	BestOf           int                  `json:"best_of"`
}

// Individual computes the individual championship for gender, restricted to
// category when it is not empty.
//
// Positions are taken within each race's filtered finishers. Only races with
// at least one qualifying finisher count, and the season's best-of is capped
// at that number. Individuals with fewer appearances than the best-of are left
// out; the rest are totalled on their best finishes.
func Individual(season Season, results []RaceResults, gender, category string) (*IndividualResult, error) {
	if gender == "" {
		return nil, ErrMissingGender
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("season %q: %w", season.Name, ErrNoRaces)
	}

	var order []string
	people := map[string]*IndividualStanding{}
	var raced []Race

	for _, rr := range results {
		finishers := filter(rr.Finishers, gender, category)
		if len(finishers) == 0 {
			continue
		}
		raced = append(raced, rr.Race)

		for i, f := range finishers {
			name := f.FullName()
			if name == "" {
				continue
			}
			p, ok := people[name]
			if !ok {
				p = &IndividualStanding{
					Name:          name,
					Club:          f.Club,
					AgeCategory:   f.AgeCategory,
					ParticipantID: f.BarcodeID,
					RacePositions: map[string]int{},
				}
				people[name] = p
				order = append(order, name)
			}
			p.RacePositions[rr.Race.Name] = i + 1
		}
	}

	if len(raced) == 0 {
		return nil, fmt.Errorf("season %q, %s %s: %w", season.Name, gender, category, ErrNoResults)
	}

	bestOf := season.bestOf()
	if len(raced) < bestOf {
		bestOf = len(raced)
	}

	standings := make([]IndividualStanding, 0, len(order))
	for _, name := range order {
		p := people[name]
		if len(p.RacePositions) < bestOf {
			continue
		}
		p.TotalPoints = bestTotal(p.RacePositions, bestOf)
		standings = append(standings, *p)
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalPoints < standings[j].TotalPoints
	})

	name := gender + " Individual Championship"
	if category != "" {
		name = gender + " " + category + " Individual Championship"
	}

	return &IndividualResult{
		Season:           season.Name,
		Gender:           gender,
		Category:         category,
		ChampionshipType: "individual",
		ChampionshipName: name,
		Races:            copyRaces(raced),
		Standings:        standings,
		BestOf:           bestOf,
	}, nil
}

// bestTotal sums the n smallest positions.
func bestTotal(positions map[string]int, n int) int {
	all := make([]int, 0, len(positions))
	for _, p := range positions {
		all = append(all, p)
	}
	sort.Ints(all)
	total := 0
	for _, p := range all[:n] {
		total += p
	}
	return total
}
