package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/championship"
	"github.com/padraicbc/cc6api/models"
)

// loadSeason reads a season snapshot and converts it to engine input.
func (h *Handler) loadSeason(ctx context.Context, name string) (championship.Season, []championship.RaceResults, error) {
	season, races, results, err := h.store.SeasonResults(ctx, name)
	if err != nil {
		return championship.Season{}, nil, storeError(err, "season "+name)
	}

	cs := championship.Season{
		Name:            season.Name,
		AgeCategorySize: season.AgeCategorySize,
		BestOf:          h.cfg.DefaultBestOf,
	}
	if season.IndividualResultsBestOf != nil {
		cs.BestOf = *season.IndividualResultsBestOf
	}

	rr := make([]championship.RaceResults, 0, len(races))
	for _, race := range races {
		rr = append(rr, championship.RaceResults{
			Race: championship.Race{
				Name:            race.Name,
				Date:            race.Date,
				OrganisingClubs: race.OrganisingClubs,
			},
			Finishers: finishers(results[race.Name]),
		})
	}
	return cs, rr, nil
}

func finishers(results []models.Result) []championship.Finisher {
	out := make([]championship.Finisher, len(results))
	for i, r := range results {
		p := r.Participant
		out[i] = championship.Finisher{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Gender:      p.Gender,
			Club:        p.Club,
			AgeCategory: p.AgeCategory,
			BarcodeID:   p.ParkrunBarcodeID,
		}
	}
	return out
}

// engineError maps a calculator failure to an HTTP error.
func engineError(err error) error {
	switch {
	case errors.Is(err, championship.ErrMissingGender):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, championship.ErrNoRaces), errors.Is(err, championship.ErrNoResults):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	zap.L().Error("championship failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// TeamChampionship returns the club standings for a season and gender, as
// JSON or, with format=csv, as a CSV table.
func (h *Handler) TeamChampionship(c echo.Context) error {
	season, results, err := h.loadSeason(c.Request().Context(), c.Param("season"))
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := championship.Team(season, results, c.Param("gender"))
	h.metrics.ObserveCalculation("team", time.Since(start))
	if err != nil {
		return engineError(err)
	}

	h.cache(c)
	if c.QueryParam("format") == "csv" {
		var buf bytes.Buffer
		if err := championship.WriteTeamCSV(&buf, res); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return csvBlob(c, fmt.Sprintf("%s-%s-team.csv", res.Season, res.Gender), buf.Bytes())
	}
	return c.JSON(http.StatusOK, res)
}

// IndividualChampionship returns the individual standings for a season and
// gender, optionally narrowed to one age category.
func (h *Handler) IndividualChampionship(c echo.Context) error {
	season, results, err := h.loadSeason(c.Request().Context(), c.Param("season"))
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := championship.Individual(season, results, c.Param("gender"), c.QueryParam("category"))
	h.metrics.ObserveCalculation("individual", time.Since(start))
	if err != nil {
		return engineError(err)
	}

	h.cache(c)
	if c.QueryParam("format") == "csv" {
		var buf bytes.Buffer
		if err := championship.WriteIndividualCSV(&buf, res); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return csvBlob(c, fmt.Sprintf("%s-%s-individual.csv", res.Season, res.Gender), buf.Bytes())
	}
	return c.JSON(http.StatusOK, res)
}

func csvBlob(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
