package championship

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteTeamCSV writes the team table with one column per race. Scored races
// show the club's rank for that race.
func WriteTeamCSV(w io.Writer, r *TeamResult) error {
	cw := csv.NewWriter(w)

	header := []string{"Position", "Club", "Total"}
	for _, race := range r.Races {
		header = append(header, race.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, s := range r.Standings {
		pos := strconv.Itoa(i + 1)
		if s.TotalPoints.DQ {
			pos = "-"
		}
		row := []string{pos, s.Name, s.TotalPoints.String()}
		for _, race := range r.Races {
			row = append(row, raceCell(s.RacePoints, race.Name))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func raceCell(points map[string]RacePoints, race string) string {
	p, ok := points[race]
	if !ok {
		return ""
	}
	if p.Outcome == Scored {
		return strconv.Itoa(p.Rank)
	}
	return p.Outcome.String()
}

// WriteIndividualCSV writes the individual table with each runner's finishing
// position per race.
func WriteIndividualCSV(w io.Writer, r *IndividualResult) error {
	cw := csv.NewWriter(w)

	header := []string{"Position", "Name", "Club", "Category", "Total"}
	for _, race := range r.Races {
		header = append(header, race.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, s := range r.Standings {
		row := []string{strconv.Itoa(i + 1), s.Name, s.Club, s.AgeCategory, strconv.Itoa(s.TotalPoints)}
		for _, race := range r.Races {
			cell := ""
			if p, ok := s.RacePositions[race.Name]; ok {
				cell = strconv.Itoa(p)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
