package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/config"
	"github.com/padraicbc/cc6api/metrics"
	"github.com/padraicbc/cc6api/models"
)

// Store is the persistence the handlers need. Lookups that find nothing
// return an error wrapping sql.ErrNoRows.
type Store interface {
	UserByName(ctx context.Context, username string) (*models.User, error)

	Clubs(ctx context.Context) ([]models.Club, error)
	Club(ctx context.Context, name string) (*models.Club, error)
	ClubExists(ctx context.Context, name string) (bool, error)
	CreateClub(ctx context.Context, club *models.Club) error
	UpdateClub(ctx context.Context, name string, club *models.Club) error
	DeleteClub(ctx context.Context, name string) error

	Participants(ctx context.Context, page, pageSize int, search string) ([]models.Participant, int, error)
	Participant(ctx context.Context, barcode string) (*models.Participant, error)
	ParticipantsByBarcode(ctx context.Context, barcodes []string) (map[string]*models.Participant, error)
	CreateParticipant(ctx context.Context, p *models.Participant) error
	UpdateParticipant(ctx context.Context, barcode string, p *models.Participant) error
	DeleteParticipant(ctx context.Context, barcode string) error
	SaveParticipants(ctx context.Context, created, updated []models.Participant) error

	Seasons(ctx context.Context) ([]models.Season, error)
	DefaultSeason(ctx context.Context) (string, error)
	Season(ctx context.Context, name string) (*models.Season, error)
	CreateSeason(ctx context.Context, season *models.Season) error
	UpdateSeason(ctx context.Context, season *models.Season) error
	DeleteSeason(ctx context.Context, name string) error

	Races(ctx context.Context, season string) ([]models.Race, error)
	AllRaces(ctx context.Context) ([]models.Race, error)
	Race(ctx context.Context, season, name string) (*models.Race, error)
	CreateRace(ctx context.Context, race *models.Race) error

	RaceResults(ctx context.Context, season, race string) ([]models.Result, error)
	SeasonResults(ctx context.Context, name string) (*models.Season, []models.Race, map[string][]models.Result, error)
	SaveResults(ctx context.Context, results []models.Result) error
	DeleteResult(ctx context.Context, season, race, token string) error
	DeleteRaceResults(ctx context.Context, season, race string) (int64, error)
	ParticipantResults(ctx context.Context, barcode string) ([]models.ParticipantResult, error)
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	store   Store
	cfg     *config.Config
	metrics *metrics.Registry
	JWTKey  []byte

	now func() time.Time
}

// New creates a Handler over store using the signing key and defaults in cfg.
// reg may be nil.
func New(store Store, cfg *config.Config, reg *metrics.Registry) *Handler {
	return &Handler{store: store, cfg: cfg, metrics: reg, JWTKey: cfg.JWTKey(), now: time.Now}
}

// cache marks a public response as cacheable for CACHE_MAX_AGE seconds.
func (h *Handler) cache(c echo.Context) {
	c.Response().Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cfg.CacheMaxAge))
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// storeError maps a store failure to an HTTP error, 404 for missing rows.
func storeError(err error, what string) error {
	if isNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	zap.L().Error("store failure", zap.String("what", what), zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
