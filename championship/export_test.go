package championship

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteTeamCSV(t *testing.T) {
	races := []RaceResults{
		{Race: Race{Name: "R1", OrganisingClubs: []string{"Hosts"}}, Finishers: concat(clubRun("A", 4), clubRun("B", 4))},
		{Race: Race{Name: "R2"}, Finishers: concat(clubRun("A", 4), clubRun("B", 2))},
	}
	res, err := Team(Season{}, races, "Male")
	if err != nil {
		t.Fatalf("Team: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTeamCSV(&buf, res); err != nil {
		t.Fatalf("WriteTeamCSV: %v", err)
	}

	want := strings.Join([]string{
		"Position,Club,Total,R1,R2",
		"1,Hosts,0,ORG,",
		"2,A,1,1,1",
		"-,B,DQ,2,DQ",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteIndividualCSV(t *testing.T) {
	a := person("Ann", "Lee", "A", "V40")
	races := []RaceResults{
		{Race: Race{Name: "R1"}, Finishers: []Finisher{a}},
		{Race: Race{Name: "R2"}, Finishers: []Finisher{person("Bea", "Ray", "B", "Senior"), a}},
	}
	res, err := Individual(Season{BestOf: 1}, races, "Female", "")
	if err != nil {
		t.Fatalf("Individual: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteIndividualCSV(&buf, res); err != nil {
		t.Fatalf("WriteIndividualCSV: %v", err)
	}

	want := strings.Join([]string{
		"Position,Name,Club,Category,Total,R1,R2",
		"1,Ann Lee,A,V40,1,1,2",
		"2,Bea Ray,B,Senior,1,,1",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}
