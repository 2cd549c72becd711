// Package ingest validates and parses the participant and race-result CSV
// files uploaded by administrators.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/padraicbc/cc6api/models"
)

const dateLayout = "2006-01-02"

var (
	barcodeRe = regexp.MustCompile(`^A\d{2,8}$`)
	tokenRe   = regexp.MustCompile(`^P\d{1,4}$`)
)

// Genders accepted on registration and upload.
var Genders = []string{"Male", "Female"}

// ValidGender reports whether g is one of Genders.
func ValidGender(g string) bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// NormalizeBarcode trims and upper-cases a parkrun barcode.
func NormalizeBarcode(s string) string {
	return strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

// ValidBarcode reports whether s is a parkrun barcode: A followed by 2-8 digits.
func ValidBarcode(s string) bool {
	return barcodeRe.MatchString(strings.ToUpper(s))
}

// TokenPosition returns the finishing position encoded in a finish token such
// as P0012.
func TokenPosition(token string) (int, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if !tokenRe.MatchString(token) {
		return 0, fmt.Errorf("invalid finish token %q", token)
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil {
		return 0, fmt.Errorf("invalid finish token %q: %w", token, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid finish token %q: position must be positive", token)
	}
	return n, nil
}

// AgeCategory returns the category for someone born on dob racing on day:
// Senior under 40, otherwise V40 and up in bands of size years, capped at V80.
func AgeCategory(day, dob time.Time, size int) string {
	if size <= 0 {
		size = 5
	}
	age := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		age--
	}
	if age < 40 {
		return "Senior"
	}
	for base := 40; base <= 80; base += size {
		if age < base+size {
			return fmt.Sprintf("V%d", base)
		}
	}
	return "V80"
}

// AgeCategoryOn parses ISO dates and returns AgeCategory, or "Unknown" when
// either date is unreadable.
func AgeCategoryOn(day, dob string, size int) string {
	d, err := time.Parse(dateLayout, day)
	if err != nil {
		return "Unknown"
	}
	b, err := time.Parse(dateLayout, dob)
	if err != nil {
		return "Unknown"
	}
	return AgeCategory(d, b, size)
}

// ResolveClub matches input against club names and then short names.
func ResolveClub(input string, clubs []models.Club) (string, bool) {
	input = strings.TrimSpace(input)
	for _, c := range clubs {
		if c.Name == input {
			return c.Name, true
		}
		for _, short := range c.ShortNames {
			if short == input {
				return c.Name, true
			}
		}
	}
	return "", false
}

// Snapshot copies the participant fields stored with a result.
func Snapshot(p *models.Participant, raceDate string, ageCategorySize int) models.ResultParticipant {
	return models.ResultParticipant{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Gender:           p.Gender,
		Club:             p.Club,
		AgeCategory:      AgeCategoryOn(raceDate, p.DateOfBirth, ageCategorySize),
		ParkrunBarcodeID: p.Barcode,
	}
}
