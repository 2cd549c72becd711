package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/models"
)

// ParticipantUpload is the outcome of parsing a participant CSV.
type ParticipantUpload struct {
	Participants []models.Participant
	Duplicates   int
	Invalid      []string
}

// ParseParticipants reads rows of barcode, first name, last name, gender,
// date of birth (DD/MM/YYYY) and club. The first row is a header. Invalid rows
// are described in Invalid and skipped; repeated barcodes keep the first row.
func ParseParticipants(r io.Reader, clubs []models.Club) (*ParticipantUpload, error) {
	cr := newReader(r)
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return &ParticipantUpload{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	out := &ParticipantUpload{}
	seen := map[string]bool{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read participants: %w", err)
		}
		line, _ := cr.FieldPos(0)

		p, problem := participantRow(row, clubs)
		if problem != "" {
			out.Invalid = append(out.Invalid, fmt.Sprintf("Row %d: %s", line, problem))
			continue
		}
		if seen[p.Barcode] {
			out.Duplicates++
			continue
		}
		seen[p.Barcode] = true
		out.Participants = append(out.Participants, *p)
	}

	zap.L().Debug("parsed participant csv",
		zap.Int("valid", len(out.Participants)),
		zap.Int("duplicates", out.Duplicates),
		zap.Int("invalid", len(out.Invalid)),
	)
	return out, nil
}

func participantRow(row []string, clubs []models.Club) (*models.Participant, string) {
	if len(row) < 6 {
		return nil, fmt.Sprintf("Expected 6 columns, got %d", len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	barcode := NormalizeBarcode(row[0])
	if !ValidBarcode(barcode) {
		return nil, fmt.Sprintf("Invalid barcode '%s'", barcode)
	}

	dob := row[4]
	if dob != "" {
		d, err := time.Parse("02/01/2006", dob)
		if err != nil {
			return nil, fmt.Sprintf("Invalid date '%s'", dob)
		}
		dob = d.Format(dateLayout)
	}

	first, last, gender, club := row[1], row[2], row[3], row[5]
	if first == "" || last == "" || gender == "" || dob == "" || club == "" {
		return nil, "Missing required fields"
	}
	if !ValidGender(gender) {
		return nil, fmt.Sprintf("Invalid gender '%s'", gender)
	}
	name, ok := ResolveClub(club, clubs)
	if !ok {
		return nil, fmt.Sprintf("Invalid club '%s'", club)
	}

	return &models.Participant{
		Barcode:     barcode,
		FirstName:   first,
		LastName:    last,
		Gender:      gender,
		DateOfBirth: dob,
		Club:        name,
	}, ""
}

// ResultRow is one line of a results upload.
type ResultRow struct {
	Barcode     string
	FinishToken string
	Position    int
}

// ResultUpload is the outcome of parsing a results CSV.
type ResultUpload struct {
	Rows       []ResultRow
	Duplicates []string
	Invalid    []string
}

// ParseResults reads rows of barcode and finish token. There is no header;
// rows without a token are ignored and repeated tokens keep the first row.
func ParseResults(r io.Reader) (*ResultUpload, error) {
	cr := newReader(r)

	out := &ResultUpload{}
	seen := map[string]bool{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read results: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		line, _ := cr.FieldPos(0)

		barcode := NormalizeBarcode(row[0])
		token := strings.ToUpper(strings.TrimSpace(row[1]))
		if token == "" {
			continue
		}
		if seen[token] {
			out.Duplicates = append(out.Duplicates, token)
			continue
		}
		pos, err := TokenPosition(token)
		if err != nil {
			out.Invalid = append(out.Invalid, fmt.Sprintf("Row %d: Invalid finish token '%s'", line, token))
			continue
		}
		seen[token] = true
		out.Rows = append(out.Rows, ResultRow{Barcode: barcode, FinishToken: token, Position: pos})
	}
	return out, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr
}
