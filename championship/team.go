package championship

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Outcome is what a club achieved in a single race.
type Outcome int

const (
	Scored Outcome = iota + 1
	Disqualified
	Organising
)

func (o Outcome) String() string {
	switch o {
	case Scored:
		return "scored"
	case Disqualified:
		return "DQ"
	case Organising:
		return "ORG"
	}
	return "unknown"
}

// RacePoints is a club's entry for one race. Points, Positions and Rank are
// only set when Outcome is Scored.
type RacePoints struct {
	Outcome   Outcome
	Points    int
	Positions []int
	Rank      int
}

type scoredJSON struct {
	Points    int   `json:"points"`
	Positions []int `json:"positions"`
	Rank      int   `json:"rank"`
}

// MarshalJSON renders disqualified and organising races as the "DQ" and "ORG"
// markers and scored races as {points, positions, rank}.
func (p RacePoints) MarshalJSON() ([]byte, error) {
	switch p.Outcome {
	case Disqualified:
		return []byte(`"DQ"`), nil
	case Organising:
		return []byte(`"ORG"`), nil
	case Scored:
		return json.Marshal(scoredJSON{Points: p.Points, Positions: p.Positions, Rank: p.Rank})
	}
	return nil, fmt.Errorf("championship: cannot marshal race outcome %d", p.Outcome)
}

// Total is a club's season total: either disqualified or a ranking sum.
type Total struct {
	DQ     bool
	Points float64
}

func (t Total) MarshalJSON() ([]byte, error) {
	if t.DQ {
		return []byte(`"DQ"`), nil
	}
	return json.Marshal(t.Points)
}

func (t Total) String() string {
	if t.DQ {
		return "DQ"
	}
	return fmt.Sprintf("%g", t.Points)
}

// ClubStanding is one row of the team championship table.
type ClubStanding struct {
	Name        string                `json:"name"`
	TotalPoints Total                 `json:"total_points"`
	RacePoints  map[string]RacePoints `json:"race_points"`
}

// TeamResult is the team championship table for one season and gender.
type TeamResult struct {
	Season           string         `json:"season"`
	Gender           string         `json:"gender"`
	ChampionshipType string         `json:"championship_type"`
	ChampionshipName string         `json:"championship_name"`
	Races            []Race         `json:"races"`
	Standings        []ClubStanding `json:"standings"`
}

// clubTable accumulates race entries per club in first-seen order.
type clubTable struct {
	order  []string
	points map[string]map[string]RacePoints
}

func newClubTable() *clubTable {
	return &clubTable{points: map[string]map[string]RacePoints{}}
}

func (t *clubTable) set(club, race string, p RacePoints) {
	rp, ok := t.points[club]
	if !ok {
		rp = map[string]RacePoints{}
		t.points[club] = rp
		t.order = append(t.order, club)
	}
	rp[race] = p
}

// Team computes the team championship for gender.
//
// A club is scored in a race on the sum of its best ScoringFinishers(gender)
// positions among known finishers of that gender. Clubs present in the race
// without enough such finishers are disqualified for it, and organising clubs
// are marked ORG. Per-race ranks are summed over the season. Clubs that
// organised nothing have their sum scaled by (races-1)/races. Any
// disqualification makes the season total DQ.
func Team(season Season, results []RaceResults, gender string) (*TeamResult, error) {
	if gender == "" {
		return nil, ErrMissingGender
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("season %q: %w", season.Name, ErrNoRaces)
	}

	top := ScoringFinishers(gender)
	clubs := newClubTable()
	for _, rr := range results {
		scoreRace(clubs, rr, gender, top)
	}
	for _, rr := range results {
		rankRace(clubs, rr.Race.Name)
	}

	return &TeamResult{
		Season:           season.Name,
		Gender:           gender,
		ChampionshipType: "team",
		ChampionshipName: gender + " Team Championship",
		Races:            racesOf(results),
		Standings:        clubStandings(clubs, len(results)),
	}, nil
}

func scoreRace(clubs *clubTable, rr RaceResults, gender string, top int) {
	race := rr.Race
	for _, club := range race.OrganisingClubs {
		clubs.set(club, race.Name, RacePoints{Outcome: Organising})
	}

	positions := map[string][]int{}
	for i, f := range filter(rr.Finishers, gender, "") {
		if f.Club != "" {
			positions[f.Club] = append(positions[f.Club], i+1)
		}
	}

	seen := map[string]bool{}
	for _, f := range rr.Finishers {
		club := f.Club
		if club == "" || seen[club] || race.organisedBy(club) {
			continue
		}
		seen[club] = true

		pos := positions[club]
		if len(pos) < top {
			clubs.set(club, race.Name, RacePoints{Outcome: Disqualified})
			continue
		}
		best := make([]int, len(pos))
		copy(best, pos)
		sort.Ints(best)
		best = best[:top]
		sum := 0
		for _, p := range best {
			sum += p
		}
		clubs.set(club, race.Name, RacePoints{Outcome: Scored, Points: sum, Positions: best})
	}
}

func rankRace(clubs *clubTable, race string) {
	var scores []Score
	for _, club := range clubs.order {
		if p, ok := clubs.points[club][race]; ok && p.Outcome == Scored {
			scores = append(scores, Score{Key: club, Value: float64(p.Points)})
		}
	}
	for _, r := range Rank(scores) {
		p := clubs.points[r.Key][race]
		p.Rank = r.Rank
		clubs.points[r.Key][race] = p
	}
}

func clubStandings(clubs *clubTable, totalRaces int) []ClubStanding {
	var qualified, disqualified []ClubStanding
	for _, club := range clubs.order {
		rp := clubs.points[club]

		var dq, active bool
		ranks, organised := 0, 0
		for _, p := range rp {
			switch p.Outcome {
			case Disqualified:
				dq = true
			case Scored:
				active = active || p.Points > 0
				ranks += p.Rank
			case Organising:
				active = true
				organised++
			}
		}
		if !active {
			continue
		}

		total := float64(ranks)
		if organised == 0 && ranks > 0 && totalRaces > 1 {
			total *= float64(totalRaces-1) / float64(totalRaces)
		}

		s := ClubStanding{
			Name:        club,
			TotalPoints: Total{DQ: dq, Points: round2(total)},
			RacePoints:  rp,
		}
		if dq {
			s.TotalPoints.Points = 0
			disqualified = append(disqualified, s)
		} else {
			qualified = append(qualified, s)
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].TotalPoints.Points < qualified[j].TotalPoints.Points
	})
	sort.Slice(disqualified, func(i, j int) bool {
		return disqualified[i].Name < disqualified[j].Name
	})

	out := make([]ClubStanding, 0, len(qualified)+len(disqualified))
	out = append(out, qualified...)
	return append(out, disqualified...)
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
