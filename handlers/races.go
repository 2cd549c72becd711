package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/cc6api/models"
)

// AllRaces lists the races of every season.
func (h *Handler) AllRaces(c echo.Context) error {
	races, err := h.store.AllRaces(c.Request().Context())
	if err != nil {
		return storeError(err, "races")
	}
	return c.JSON(http.StatusOK, races)
}

// CreateRace adds a race to an existing season.
func (h *Handler) CreateRace(c echo.Context) error {
	race := &models.Race{}
	if err := c.Bind(race); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	race.Name = strings.TrimSpace(race.Name)
	race.Season = strings.TrimSpace(race.Season)

	switch {
	case race.Name == "":
		return echo.NewHTTPError(http.StatusBadRequest, "race name is required")
	case race.Date == "":
		return echo.NewHTTPError(http.StatusBadRequest, "race date is required")
	case race.Season == "":
		return echo.NewHTTPError(http.StatusBadRequest, "season is required")
	}
	if _, err := time.Parse("2006-01-02", race.Date); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "race date must be YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	if _, err := h.store.Season(ctx, race.Season); err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusBadRequest, "selected season does not exist")
		}
		return storeError(err, "season")
	}
	if _, err := h.store.Race(ctx, race.Season, race.Name); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "race already exists")
	} else if !isNotFound(err) {
		return storeError(err, "race")
	}
	for _, club := range race.OrganisingClubs {
		ok, err := h.store.ClubExists(ctx, club)
		if err != nil {
			return storeError(err, "club")
		}
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown organising club '"+club+"'")
		}
	}

	if err := h.store.CreateRace(ctx, race); err != nil {
		return storeError(err, "race")
	}
	return c.JSON(http.StatusCreated, race)
}

type raceWithResults struct {
	Season  string          `json:"season"`
	Name    string          `json:"name"`
	Results []models.Result `json:"results"`
}

// RaceResults returns a race's results in finishing order. Unknown finishers
// are hidden unless showMissingData=true; category and gender narrow the list.
func (h *Handler) RaceResults(c echo.Context) error {
	season, name := c.Param("season"), c.Param("race")
	results, err := h.store.RaceResults(c.Request().Context(), season, name)
	if err != nil {
		return storeError(err, "race results")
	}

	showMissing := strings.EqualFold(c.QueryParam("showMissingData"), "true")
	category := c.QueryParam("category")
	gender := c.QueryParam("gender")

	out := make([]models.Result, 0, len(results))
	for _, r := range results {
		p := r.Participant
		switch {
		case !showMissing && p.FirstName == "":
		case category != "" && p.AgeCategory != category:
		case gender != "" && p.Gender != gender:
		default:
			out = append(out, r)
		}
	}

	h.cache(c)
	return c.JSON(http.StatusOK, raceWithResults{Season: season, Name: name, Results: out})
}
