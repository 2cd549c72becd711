package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/ingest"
	"github.com/padraicbc/cc6api/models"
)

// raceContext loads the race and the age category size its results use.
func (h *Handler) raceContext(ctx context.Context, season, race string) (*models.Race, int, error) {
	s, err := h.store.Season(ctx, season)
	if err != nil {
		return nil, 0, storeError(err, "season "+season)
	}
	r, err := h.store.Race(ctx, season, race)
	if err != nil {
		return nil, 0, storeError(err, "race "+race)
	}
	size := s.AgeCategorySize
	if size <= 0 {
		size = h.cfg.DefaultAgeCategorySize
	}
	return r, size, nil
}

// AdminRaceResults lists every result of a race, unknown finishers included.
func (h *Handler) AdminRaceResults(c echo.Context) error {
	results, err := h.store.RaceResults(c.Request().Context(), c.Param("season"), c.Param("race"))
	if err != nil {
		return storeError(err, "race results")
	}
	return c.JSON(http.StatusOK, results)
}

type uploadResultsResponse struct {
	Uploaded   int      `json:"uploaded"`
	Unknown    []string `json:"unknown"`
	Duplicates []string `json:"duplicates"`
	Invalid    []string `json:"invalid"`
}

// UploadResults stores a CSV of barcode,finish token rows for a race.
// Barcodes with no registered participant are kept as unknown finishers.
func (h *Handler) UploadResults(c echo.Context) error {
	season, raceName := c.Param("season"), c.Param("race")
	ctx := c.Request().Context()

	race, size, err := h.raceContext(ctx, season, raceName)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file selected")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	up, err := ingest.ParseResults(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to process CSV file: "+err.Error())
	}

	barcodes := make([]string, 0, len(up.Rows))
	for _, row := range up.Rows {
		if row.Barcode != "" {
			barcodes = append(barcodes, row.Barcode)
		}
	}
	known, err := h.store.ParticipantsByBarcode(ctx, barcodes)
	if err != nil {
		return storeError(err, "participants")
	}

	resp := uploadResultsResponse{
		Unknown:    []string{},
		Duplicates: nonNil(up.Duplicates),
		Invalid:    nonNil(up.Invalid),
	}
	results := make([]models.Result, 0, len(up.Rows))
	for _, row := range up.Rows {
		res := models.Result{
			Season:      season,
			RaceName:    raceName,
			FinishToken: row.FinishToken,
			Position:    row.Position,
		}
		if p, ok := known[row.Barcode]; ok {
			res.Participant = ingest.Snapshot(p, race.Date, size)
		} else {
			res.Participant = models.ResultParticipant{ParkrunBarcodeID: row.Barcode}
			resp.Unknown = append(resp.Unknown, row.Barcode)
		}
		results = append(results, res)
	}

	if len(results) > 0 {
		if err := h.store.SaveResults(ctx, results); err != nil {
			return storeError(err, "results")
		}
	}
	resp.Uploaded = len(results)

	zap.L().Info("results uploaded",
		zap.String("season", season),
		zap.String("race", raceName),
		zap.Int("uploaded", resp.Uploaded),
		zap.Int("unknown", len(resp.Unknown)),
		zap.Int("duplicates", len(resp.Duplicates)),
	)
	return c.JSON(http.StatusOK, resp)
}

type manualResult struct {
	Barcode     string `json:"barcode"`
	FinishToken string `json:"finish_token"`
}

// AddResult records a single finish for a registered participant.
func (h *Handler) AddResult(c echo.Context) error {
	season, raceName := c.Param("season"), c.Param("race")

	var in manualResult
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	barcode := ingest.NormalizeBarcode(in.Barcode)
	token := strings.ToUpper(strings.TrimSpace(in.FinishToken))

	var missing []string
	if barcode == "" {
		missing = append(missing, "barcode")
	}
	if token == "" {
		missing = append(missing, "finish_token")
	}
	if len(missing) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
	}
	pos, err := ingest.TokenPosition(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	race, size, err := h.raceContext(ctx, season, raceName)
	if err != nil {
		return err
	}
	p, err := h.store.Participant(ctx, barcode)
	if err != nil {
		return storeError(err, "participant")
	}

	res := models.Result{
		Season:      season,
		RaceName:    raceName,
		FinishToken: token,
		Position:    pos,
		Participant: ingest.Snapshot(p, race.Date, size),
	}
	if err := h.store.SaveResults(ctx, []models.Result{res}); err != nil {
		return storeError(err, "result")
	}
	return c.JSON(http.StatusCreated, res)
}

// DeleteResult removes one finish token from a race.
func (h *Handler) DeleteResult(c echo.Context) error {
	token := c.Param("token")
	if err := h.store.DeleteResult(c.Request().Context(), c.Param("season"), c.Param("race"), token); err != nil {
		return storeError(err, "result "+token)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteRaceResults removes every result of a race.
func (h *Handler) DeleteRaceResults(c echo.Context) error {
	n, err := h.store.DeleteRaceResults(c.Request().Context(), c.Param("season"), c.Param("race"))
	if err != nil {
		return storeError(err, "race results")
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": n})
}

// ParticipantResults lists every recorded finish for a barcode.
func (h *Handler) ParticipantResults(c echo.Context) error {
	barcode := ingest.NormalizeBarcode(c.Param("barcode"))
	results, err := h.store.ParticipantResults(c.Request().Context(), barcode)
	if err != nil {
		return storeError(err, "participant results")
	}
	h.cache(c)
	return c.JSON(http.StatusOK, results)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
