package championship

import (
	"errors"
	"testing"
)

func person(first, last, club, category string) Finisher {
	return Finisher{FirstName: first, LastName: last, Gender: "Female", Club: club, AgeCategory: category}
}

func TestIndividual_Errors(t *testing.T) {
	if _, err := Individual(Season{}, []RaceResults{{Race: Race{Name: "R1"}}}, "", ""); !errors.Is(err, ErrMissingGender) {
		t.Errorf("empty gender: got %v", err)
	}
	if _, err := Individual(Season{}, nil, "Female", ""); !errors.Is(err, ErrNoRaces) {
		t.Errorf("no races: got %v", err)
	}

	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{male("Jo", "A")}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{{Gender: "Female", Club: "A"}}},
	}
	if _, err := Individual(Season{}, races, "Female", ""); !errors.Is(err, ErrNoResults) {
		t.Errorf("no qualifying races: got %v", err)
	}
}

func TestIndividual_BestOf(t *testing.T) {
	jo := person("Jo", "Bloggs", "A", "Senior")
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{person("X", "One", "B", "Senior"), person("X", "Two", "B", "Senior"), jo}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{jo}},
		{Race: Race{Name: "R3"}, Finishers: []Finisher{
			person("Y", "One", "C", "Senior"), person("Y", "Two", "C", "Senior"),
			person("Y", "Three", "C", "Senior"), person("Y", "Four", "C", "Senior"), jo,
		}},
	}

	res, err := Individual(Season{Name: "2025", BestOf: 2}, races, "Female", "")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if res.BestOf != 2 {
		t.Errorf("BestOf = %d, want 2", res.BestOf)
	}
	if len(res.Standings) != 1 {
		t.Fatalf("got %d standings, want 1: %+v", len(res.Standings), res.Standings)
	}
	s := res.Standings[0]
	if s.Name != "Jo Bloggs" || s.TotalPoints != 4 {
		t.Errorf("standing = %s %d, want Jo Bloggs 4", s.Name, s.TotalPoints)
	}
	want := map[string]int{"R1": 3, "R2": 1, "R3": 5}
	for race, pos := range want {
		if s.RacePositions[race] != pos {
			t.Errorf("%s position = %d, want %d", race, s.RacePositions[race], pos)
		}
	}
	if res.ChampionshipName != "Female Individual Championship" || res.ChampionshipType != "individual" {
		t.Errorf("unexpected header %q / %q", res.ChampionshipName, res.ChampionshipType)
	}
}

func TestIndividual_QualifyingThreshold(t *testing.T) {
	a := person("Ann", "A", "A", "Senior")
	b := person("Bea", "B", "B", "Senior")
	c := person("Cat", "C", "C", "Senior")
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{a, b, c}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{b, a}},
		{Race: Race{Name: "R3"}, Finishers: []Finisher{a, c}},
		{Race: Race{Name: "R4"}, Finishers: []Finisher{b}},
	}

	res, err := Individual(Season{BestOf: 3}, races, "Female", "")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}

	// Ann raced 3 (1,2,1 = 4), Bea 3 (2,1,1 = 4), Cat only 2.
	if len(res.Standings) != 2 {
		t.Fatalf("got %d standings, want 2: %+v", len(res.Standings), res.Standings)
	}
	if res.Standings[0].Name != "Ann A" || res.Standings[1].Name != "Bea B" {
		t.Errorf("order = %s, %s; ties keep encounter order", res.Standings[0].Name, res.Standings[1].Name)
	}
	for _, s := range res.Standings {
		if s.TotalPoints != 4 {
			t.Errorf("%s total = %d, want 4", s.Name, s.TotalPoints)
		}
	}
}

func TestIndividual_BestOfCappedByRacesWithResults(t *testing.T) {
	a := person("Ann", "A", "A", "Senior")
	b := person("Bea", "B", "B", "Senior")
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{a, b}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{male("Max", "M")}},
		{Race: Race{Name: "R3"}, Finishers: []Finisher{b, a}},
	}

	res, err := Individual(Season{}, races, "Female", "")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if res.BestOf != 2 {
		t.Errorf("BestOf = %d, want 2", res.BestOf)
	}
	if len(res.Races) != 2 || res.Races[0].Name != "R1" || res.Races[1].Name != "R3" {
		t.Errorf("races = %+v, want R1 and R3 only", res.Races)
	}
	if len(res.Standings) != 2 {
		t.Fatalf("got %d standings, want 2", len(res.Standings))
	}
	for _, s := range res.Standings {
		if s.TotalPoints != 3 {
			t.Errorf("%s total = %d, want 3", s.Name, s.TotalPoints)
		}
	}
}

func TestIndividual_NameFiltering(t *testing.T) {
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{{LastName: "Doe", Gender: "Male", Club: "A"}}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{{FirstName: "John", Gender: "Male", Club: "A"}}},
		{Race: Race{Name: "R3"}, Finishers: []Finisher{{FirstName: "John", LastName: "Doe", Gender: "Male", Club: "A"}}},
	}

	res, err := Individual(Season{}, races, "Male", "")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if res.BestOf != 2 {
		t.Errorf("BestOf = %d, want 2", res.BestOf)
	}
	if len(res.Standings) != 0 {
		t.Errorf("got %d standings, want none: %+v", len(res.Standings), res.Standings)
	}
}

func TestIndividual_CategoryFilter(t *testing.T) {
	vet := person("Val", "Vet", "A", "V40")
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{person("Sen", "One", "B", "Senior"), vet, person("Vic", "Two", "C", "V40")}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{person("Vic", "Two", "C", "V40"), person("Sen", "One", "B", "Senior"), vet}},
	}

	res, err := Individual(Season{BestOf: 2}, races, "Female", "V40")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if res.ChampionshipName != "Female V40 Individual Championship" || res.Category != "V40" {
		t.Errorf("header = %q category %q", res.ChampionshipName, res.Category)
	}
	if len(res.Standings) != 2 {
		t.Fatalf("got %d standings, want 2", len(res.Standings))
	}
	for _, s := range res.Standings {
		if s.AgeCategory != "V40" {
			t.Errorf("%s category = %s", s.Name, s.AgeCategory)
		}
		// each is 1st and 2nd among V40s
		if s.TotalPoints != 3 {
			t.Errorf("%s total = %d, want 3", s.Name, s.TotalPoints)
		}
	}
}

func TestIndividual_FirstOccurrenceWins(t *testing.T) {
	first := Finisher{FirstName: " Ann", LastName: "Lee ", Gender: "Female", Club: "Old Club", AgeCategory: "Senior", BarcodeID: "A123"}
	later := Finisher{FirstName: "Ann", LastName: "Lee", Gender: "Female", Club: "New Club", AgeCategory: "V40", BarcodeID: "A999"}
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{first}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{later}},
	}

	res, err := Individual(Season{BestOf: 2}, races, "Female", "")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if len(res.Standings) != 1 {
		t.Fatalf("got %d standings, want 1", len(res.Standings))
	}
	s := res.Standings[0]
	if s.Name != "Ann Lee" || s.Club != "Old Club" || s.AgeCategory != "Senior" || s.ParticipantID != "A123" {
		t.Errorf("standing = %+v", s)
	}
}

func TestIndividual_OneFewerThanBestOfExcluded(t *testing.T) {
	a := person("Ann", "A", "A", "Senior")
	b := person("Bea", "B", "B", "Senior")
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{a, b}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{a, b}},
		{Race: Race{Name: "R3"}, Finishers: []Finisher{a}},
	}

	res, err := Individual(Season{BestOf: 3}, races, "Female", "")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}
	if len(res.Standings) != 1 || res.Standings[0].Name != "Ann A" {
		t.Errorf("standings = %+v, want only Ann A", res.Standings)
	}
}
