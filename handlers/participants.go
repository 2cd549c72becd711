package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/ingest"
	"github.com/padraicbc/cc6api/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type participantsPage struct {
	Participants []models.Participant `json:"participants"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	TotalPages   int                  `json:"total_pages"`
}

func intQuery(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Participants returns one page of participants, optionally filtered by search.
func (h *Handler) Participants(c echo.Context) error {
	page := intQuery(c, "page", 1)
	size := min(intQuery(c, "page_size", defaultPageSize), maxPageSize)

	ps, total, err := h.store.Participants(c.Request().Context(), page, size, c.QueryParam("search"))
	if err != nil {
		return storeError(err, "participants")
	}
	return c.JSON(http.StatusOK, participantsPage{
		Participants: ps,
		Total:        total,
		Page:         page,
		PageSize:     size,
		TotalPages:   (total + size - 1) / size,
	})
}

// bindParticipant reads and validates a participant, resolving the club
// against full and short club names.
func (h *Handler) bindParticipant(c echo.Context) (*models.Participant, error) {
	p := &models.Participant{}
	if err := c.Bind(p); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.Barcode = ingest.NormalizeBarcode(p.Barcode)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.DateOfBirth = strings.TrimSpace(p.DateOfBirth)

	switch {
	case p.FirstName == "":
		return nil, echo.NewHTTPError(http.StatusBadRequest, "first name is required")
	case p.LastName == "":
		return nil, echo.NewHTTPError(http.StatusBadRequest, "last name is required")
	case !ingest.ValidGender(p.Gender):
		return nil, echo.NewHTTPError(http.StatusBadRequest, "gender must be Male or Female")
	case p.DateOfBirth == "":
		return nil, echo.NewHTTPError(http.StatusBadRequest, "date of birth is required")
	}
	if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "date of birth must be YYYY-MM-DD")
	}

	clubs, err := h.store.Clubs(c.Request().Context())
	if err != nil {
		return nil, storeError(err, "clubs")
	}
	club, ok := ingest.ResolveClub(p.Club, clubs)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "please select a valid running club")
	}
	p.Club = club
	return p, nil
}

// CreateParticipant registers a new participant.
func (h *Handler) CreateParticipant(c echo.Context) error {
	p, err := h.bindParticipant(c)
	if err != nil {
		return err
	}
	if !ingest.ValidBarcode(p.Barcode) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid barcode format (should be A followed by 2-8 digits)")
	}

	ctx := c.Request().Context()
	if _, err := h.store.Participant(ctx, p.Barcode); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "this barcode is already registered")
	}
	if err := h.store.CreateParticipant(ctx, p); err != nil {
		return storeError(err, "participant")
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateParticipant replaces a participant's details. The barcode is fixed.
func (h *Handler) UpdateParticipant(c echo.Context) error {
	p, err := h.bindParticipant(c)
	if err != nil {
		return err
	}
	barcode := ingest.NormalizeBarcode(c.Param("barcode"))
	p.Barcode = barcode
	if err := h.store.UpdateParticipant(c.Request().Context(), barcode, p); err != nil {
		return storeError(err, "participant "+barcode)
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteParticipant removes a participant. Their stored results keep the
// snapshot taken when they were entered.
func (h *Handler) DeleteParticipant(c echo.Context) error {
	barcode := ingest.NormalizeBarcode(c.Param("barcode"))
	if err := h.store.DeleteParticipant(c.Request().Context(), barcode); err != nil {
		return storeError(err, "participant "+barcode)
	}
	return c.NoContent(http.StatusNoContent)
}

type uploadParticipantsResponse struct {
	Added      int      `json:"added"`
	Updated    int      `json:"updated"`
	Unchanged  int      `json:"unchanged"`
	Duplicates int      `json:"duplicates"`
	Invalid    []string `json:"invalid"`
}

// UploadParticipants registers or updates participants from a CSV file.
func (h *Handler) UploadParticipants(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file selected")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	clubs, err := h.store.Clubs(ctx)
	if err != nil {
		return storeError(err, "clubs")
	}
	up, err := ingest.ParseParticipants(f, clubs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to process CSV file: "+err.Error())
	}

	barcodes := make([]string, len(up.Participants))
	for i, p := range up.Participants {
		barcodes[i] = p.Barcode
	}
	existing, err := h.store.ParticipantsByBarcode(ctx, barcodes)
	if err != nil {
		return storeError(err, "participants")
	}

	resp := uploadParticipantsResponse{Duplicates: up.Duplicates, Invalid: nonNil(up.Invalid)}
	var created, updated []models.Participant
	for _, p := range up.Participants {
		old, ok := existing[p.Barcode]
		switch {
		case !ok:
			created = append(created, p)
		case old.SameDetails(&p):
			resp.Unchanged++
		default:
			updated = append(updated, p)
		}
	}

	if len(created) > 0 || len(updated) > 0 {
		if err := h.store.SaveParticipants(ctx, created, updated); err != nil {
			return storeError(err, "participants")
		}
	}
	resp.Added, resp.Updated = len(created), len(updated)

	zap.L().Info("participants uploaded",
		zap.Int("added", resp.Added),
		zap.Int("updated", resp.Updated),
		zap.Int("unchanged", resp.Unchanged),
		zap.Int("invalid", len(resp.Invalid)),
	)
	return c.JSON(http.StatusOK, resp)
}

// ExportParticipants writes every participant as CSV in the upload format.
func (h *Handler) ExportParticipants(c echo.Context) error {
	ctx := c.Request().Context()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Fname", "LName", "Gender", "DOB", "Club"}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for page := 1; ; page++ {
		ps, total, err := h.store.Participants(ctx, page, maxPageSize, "")
		if err != nil {
			return storeError(err, "participants")
		}
		for _, p := range ps {
			dob := p.DateOfBirth
			if d, err := time.Parse("2006-01-02", dob); err == nil {
				dob = d.Format("02/01/2006")
			}
			if err := w.Write([]string{p.Barcode, p.FirstName, p.LastName, p.Gender, dob, p.Club}); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
		if len(ps) == 0 || page*maxPageSize >= total {
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="participants.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
