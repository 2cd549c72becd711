package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/cc6api/models"
)

type seasonsResponse struct {
	Seasons       []string `json:"seasons"`
	DefaultSeason *string  `json:"default_season"`
	DefaultRace   *string  `json:"default_race"`
}

// Seasons lists season names with the default season and its most recent
// race held on or before today.
func (h *Handler) Seasons(c echo.Context) error {
	ctx := c.Request().Context()
	seasons, err := h.store.Seasons(ctx)
	if err != nil {
		return storeError(err, "seasons")
	}
	resp := seasonsResponse{Seasons: make([]string, 0, len(seasons))}
	for _, s := range seasons {
		resp.Seasons = append(resp.Seasons, s.Name)
	}

	def, err := h.store.DefaultSeason(ctx)
	if err != nil {
		return storeError(err, "default season")
	}
	if def != "" {
		resp.DefaultSeason = &def
		races, err := h.store.Races(ctx, def)
		if err != nil {
			return storeError(err, "races")
		}
		resp.DefaultRace = latestRace(races, h.now())
	}

	h.cache(c)
	return c.JSON(http.StatusOK, resp)
}

// latestRace returns the name of the most recent race dated on or before
// today. Races with unreadable dates are ignored.
func latestRace(races []models.Race, today time.Time) *string {
	cutoff := today.Format("2006-01-02")
	var best *models.Race
	for i := range races {
		r := &races[i]
		if _, err := time.Parse("2006-01-02", r.Date); err != nil || r.Date > cutoff {
			continue
		}
		if best == nil || r.Date > best.Date {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	return &best.Name
}

type seasonWithRaces struct {
	*models.Season
	Races []models.Race `json:"races"`
}

// Season returns one season with its races in date order.
func (h *Handler) Season(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("season")
	season, err := h.store.Season(ctx, name)
	if err != nil {
		return storeError(err, "season")
	}
	races, err := h.store.Races(ctx, name)
	if err != nil {
		return storeError(err, "races")
	}
	h.cache(c)
	return c.JSON(http.StatusOK, seasonWithRaces{Season: season, Races: races})
}

func (h *Handler) bindSeason(c echo.Context) (*models.Season, error) {
	season := &models.Season{}
	if err := c.Bind(season); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if season.AgeCategorySize == 0 {
		season.AgeCategorySize = h.cfg.DefaultAgeCategorySize
	}
	if season.AgeCategorySize < 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "age_category_size must be positive")
	}
	if season.IndividualResultsBestOf != nil && *season.IndividualResultsBestOf <= 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "individual_results_best_of must be positive")
	}
	if season.StartDate != nil {
		if _, err := time.Parse("2006-01-02", *season.StartDate); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
	}
	return season, nil
}

// CreateSeason adds a season. Marking it default clears the flag on the others.
func (h *Handler) CreateSeason(c echo.Context) error {
	season, err := h.bindSeason(c)
	if err != nil {
		return err
	}
	season.Name = strings.TrimSpace(season.Name)
	if season.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "season name is required")
	}
	if strings.Contains(season.Name, "/") {
		return echo.NewHTTPError(http.StatusBadRequest, "season name cannot contain forward slashes (/)")
	}

	ctx := c.Request().Context()
	if _, err := h.store.Season(ctx, season.Name); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "season already exists")
	}
	if err := h.store.CreateSeason(ctx, season); err != nil {
		return storeError(err, "season")
	}
	return c.JSON(http.StatusCreated, season)
}

// UpdateSeason replaces a season's settings.
func (h *Handler) UpdateSeason(c echo.Context) error {
	season, err := h.bindSeason(c)
	if err != nil {
		return err
	}
	season.Name = c.Param("season")
	if err := h.store.UpdateSeason(c.Request().Context(), season); err != nil {
		return storeError(err, "season "+season.Name)
	}
	return c.JSON(http.StatusOK, season)
}

// DeleteSeason removes a season with its races and results.
func (h *Handler) DeleteSeason(c echo.Context) error {
	name := c.Param("season")
	if err := h.store.DeleteSeason(c.Request().Context(), name); err != nil {
		return storeError(err, "season "+name)
	}
	return c.NoContent(http.StatusNoContent)
}
