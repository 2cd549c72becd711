package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/cc6api/models"
)

// Clubs lists every club.
func (h *Handler) Clubs(c echo.Context) error {
	clubs, err := h.store.Clubs(c.Request().Context())
	if err != nil {
		return storeError(err, "clubs")
	}
	h.cache(c)
	return c.JSON(http.StatusOK, clubs)
}

func bindClub(c echo.Context) (*models.Club, error) {
	club := &models.Club{}
	if err := c.Bind(club); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	club.Name = strings.TrimSpace(club.Name)
	if club.Name == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "club name is required")
	}
	short := make([]string, 0, len(club.ShortNames))
	for _, s := range club.ShortNames {
		if s = strings.TrimSpace(s); s != "" {
			short = append(short, s)
		}
	}
	club.ShortNames = short
	return club, nil
}

// CreateClub adds a club. Names must be unique.
func (h *Handler) CreateClub(c echo.Context) error {
	club, err := bindClub(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	exists, err := h.store.ClubExists(ctx, club.Name)
	if err != nil {
		return storeError(err, "club")
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict, "club already exists")
	}
	if err := h.store.CreateClub(ctx, club); err != nil {
		return storeError(err, "club")
	}
	return c.JSON(http.StatusCreated, club)
}

// UpdateClub renames a club or replaces its short names.
func (h *Handler) UpdateClub(c echo.Context) error {
	name := c.Param("name")
	club, err := bindClub(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if club.Name != name {
		exists, err := h.store.ClubExists(ctx, club.Name)
		if err != nil {
			return storeError(err, "club")
		}
		if exists {
			return echo.NewHTTPError(http.StatusConflict, "club already exists")
		}
	}
	if err := h.store.UpdateClub(ctx, name, club); err != nil {
		return storeError(err, "club "+name)
	}
	return c.JSON(http.StatusOK, club)
}

// DeleteClub removes a club.
func (h *Handler) DeleteClub(c echo.Context) error {
	name := c.Param("name")
	if err := h.store.DeleteClub(c.Request().Context(), name); err != nil {
		return storeError(err, "club "+name)
	}
	return c.NoContent(http.StatusNoContent)
}
