package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"github.com/padraicbc/cc6api/models"
)

// Store wraps the database with the queries the API needs. Lookups that find
// nothing return an error wrapping sql.ErrNoRows.
type Store struct {
	db *bun.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// batchSize caps rows per insert statement.
const batchSize = 500

// --- users ---

// UserByName returns the user with the given username.
func (s *Store) UserByName(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().Model(user).Where("username = ?", username).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SaveUser creates a user or replaces the password of an existing one.
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	_, err := s.db.NewInsert().Model(user).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password").
		Exec(ctx)
	return err
}

// --- clubs ---

// Clubs returns all clubs ordered by name.
func (s *Store) Clubs(ctx context.Context) ([]models.Club, error) {
	clubs := []models.Club{}
	err := s.db.NewSelect().Model(&clubs).OrderExpr("name ASC").Scan(ctx)
	return clubs, err
}

// Club returns a single club.
func (s *Store) Club(ctx context.Context, name string) (*models.Club, error) {
	club := &models.Club{}
	if err := s.db.NewSelect().Model(club).Where("name = ?", name).Scan(ctx); err != nil {
		return nil, err
	}
	return club, nil
}

// ClubExists reports whether a club with this exact name exists.
func (s *Store) ClubExists(ctx context.Context, name string) (bool, error) {
	return s.db.NewSelect().Model((*models.Club)(nil)).Where("name = ?", name).Exists(ctx)
}

// CreateClub inserts a new club.
func (s *Store) CreateClub(ctx context.Context, club *models.Club) error {
	_, err := s.db.NewInsert().Model(club).Exec(ctx)
	return err
}

// UpdateClub renames a club and replaces its short names.
func (s *Store) UpdateClub(ctx context.Context, name string, club *models.Club) error {
	res, err := s.db.NewUpdate().Model(club).
		Column("name", "short_names").
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRows(res, "club "+name)
}

// SyncClubs upserts clubs by name, replacing their short names. Clubs
// missing from the list are left alone.
func (s *Store) SyncClubs(ctx context.Context, clubs []models.Club) error {
	if len(clubs) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&clubs).
		On("CONFLICT (name) DO UPDATE").
		Set("short_names = EXCLUDED.short_names").
		Exec(ctx)
	return err
}

// DeleteClub removes a club.
func (s *Store) DeleteClub(ctx context.Context, name string) error {
	res, err := s.db.NewDelete().Model((*models.Club)(nil)).Where("name = ?", name).Exec(ctx)
	if err != nil {
		return err
	}
	return expectRows(res, "club "+name)
}

// --- participants ---

// Participants returns one page of participants matching search on name,
// barcode or club, along with the total number of matches.
func (s *Store) Participants(ctx context.Context, page, pageSize int, search string) ([]models.Participant, int, error) {
	participants := []models.Participant{}
	q := s.db.NewSelect().Model(&participants).
		OrderExpr("last_name ASC, first_name ASC, barcode ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize)

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("first_name ILIKE ?", like).
				WhereOr("last_name ILIKE ?", like).
				WhereOr("barcode ILIKE ?", like).
				WhereOr("club ILIKE ?", like)
		})
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return participants, total, nil
}

// Participant returns the participant with the given barcode.
func (s *Store) Participant(ctx context.Context, barcode string) (*models.Participant, error) {
	p := &models.Participant{}
	if err := s.db.NewSelect().Model(p).Where("barcode = ?", barcode).Scan(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// ParticipantsByBarcode returns the participants among barcodes, keyed by barcode.
func (s *Store) ParticipantsByBarcode(ctx context.Context, barcodes []string) (map[string]*models.Participant, error) {
	out := map[string]*models.Participant{}
	if len(barcodes) == 0 {
		return out, nil
	}
	var found []models.Participant
	if err := s.db.NewSelect().Model(&found).Where("barcode IN (?)", bun.In(barcodes)).Scan(ctx); err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].Barcode] = &found[i]
	}
	return out, nil
}

// CreateParticipant inserts a new participant.
func (s *Store) CreateParticipant(ctx context.Context, p *models.Participant) error {
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.db.NewInsert().Model(p).Exec(ctx)
	return err
}

// UpdateParticipant replaces the details of the participant stored under
// barcode. p.Barcode may differ to change the barcode.
func (s *Store) UpdateParticipant(ctx context.Context, barcode string, p *models.Participant) error {
	p.UpdatedAt = time.Now()
	res, err := s.db.NewUpdate().Model(p).
		Column("barcode", "first_name", "last_name", "gender", "date_of_birth", "club", "updated_at").
		Where("barcode = ?", barcode).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRows(res, "participant "+barcode)
}

// DeleteParticipant removes a participant. Their stored results are kept.
func (s *Store) DeleteParticipant(ctx context.Context, barcode string) error {
	res, err := s.db.NewDelete().Model((*models.Participant)(nil)).Where("barcode = ?", barcode).Exec(ctx)
	if err != nil {
		return err
	}
	return expectRows(res, "participant "+barcode)
}

// SaveParticipants inserts created and updates updated in one transaction.
func (s *Store) SaveParticipants(ctx context.Context, created, updated []models.Participant) error {
	now := time.Now()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for start := 0; start < len(created); start += batchSize {
			chunk := created[start:min(start+batchSize, len(created))]
			for i := range chunk {
				chunk[i].CreatedAt, chunk[i].UpdatedAt = now, now
			}
			if _, err := tx.NewInsert().Model(&chunk).Exec(ctx); err != nil {
				return fmt.Errorf("insert participants: %w", err)
			}
		}
		for i := range updated {
			updated[i].UpdatedAt = now
			_, err := tx.NewUpdate().Model(&updated[i]).
				Column("first_name", "last_name", "gender", "date_of_birth", "club", "updated_at").
				WherePK().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("update participant %s: %w", updated[i].Barcode, err)
			}
		}
		return nil
	})
}

// --- seasons ---

// Seasons returns all seasons ordered by name.
func (s *Store) Seasons(ctx context.Context) ([]models.Season, error) {
	seasons := []models.Season{}
	err := s.db.NewSelect().Model(&seasons).OrderExpr("name ASC").Scan(ctx)
	return seasons, err
}

// DefaultSeason returns the name of the default season, or "" when none is set.
func (s *Store) DefaultSeason(ctx context.Context) (string, error) {
	var names []string
	err := s.db.NewSelect().Model((*models.Season)(nil)).
		Column("name").
		Where("is_default").
		Limit(1).
		Scan(ctx, &names)
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}

// Season returns a single season.
func (s *Store) Season(ctx context.Context, name string) (*models.Season, error) {
	season := &models.Season{}
	if err := s.db.NewSelect().Model(season).Where("name = ?", name).Scan(ctx); err != nil {
		return nil, err
	}
	return season, nil
}

// CreateSeason inserts a season. A default season clears the flag on all others.
func (s *Store) CreateSeason(ctx context.Context, season *models.Season) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if season.IsDefault {
			if err := clearDefault(ctx, tx); err != nil {
				return err
			}
		}
		_, err := tx.NewInsert().Model(season).Exec(ctx)
		return err
	})
}

// UpdateSeason replaces a season's settings.
func (s *Store) UpdateSeason(ctx context.Context, season *models.Season) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if season.IsDefault {
			if err := clearDefault(ctx, tx); err != nil {
				return err
			}
		}
		res, err := tx.NewUpdate().Model(season).
			Column("age_category_size", "is_default", "start_date", "individual_results_best_of").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		return expectRows(res, "season "+season.Name)
	})
}

// DeleteSeason removes a season with all of its races and results.
func (s *Store) DeleteSeason(ctx context.Context, name string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Result)(nil)).Where("season = ?", name).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Race)(nil)).Where("season = ?", name).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Season)(nil)).Where("name = ?", name).Exec(ctx)
		if err != nil {
			return err
		}
		return expectRows(res, "season "+name)
	})
}

func clearDefault(ctx context.Context, tx bun.Tx) error {
	_, err := tx.NewUpdate().Model((*models.Season)(nil)).
		Set("is_default = false").
		Where("is_default").
		Exec(ctx)
	return err
}

// --- races ---

// Races returns a season's races in date order.
func (s *Store) Races(ctx context.Context, season string) ([]models.Race, error) {
	return races(ctx, s.db, season)
}

func races(ctx context.Context, db bun.IDB, season string) ([]models.Race, error) {
	out := []models.Race{}
	err := db.NewSelect().Model(&out).
		Where("season = ?", season).
		OrderExpr("date ASC, name ASC").
		Scan(ctx)
	return out, err
}

// AllRaces returns every race of every season.
func (s *Store) AllRaces(ctx context.Context) ([]models.Race, error) {
	out := []models.Race{}
	err := s.db.NewSelect().Model(&out).OrderExpr("season ASC, date ASC, name ASC").Scan(ctx)
	return out, err
}

// Race returns a single race.
func (s *Store) Race(ctx context.Context, season, name string) (*models.Race, error) {
	race := &models.Race{}
	err := s.db.NewSelect().Model(race).Where("season = ? AND name = ?", season, name).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return race, nil
}

// CreateRace inserts a race.
func (s *Store) CreateRace(ctx context.Context, race *models.Race) error {
	if race.OrganisingClubs == nil {
		race.OrganisingClubs = []string{}
	}
	_, err := s.db.NewInsert().Model(race).Exec(ctx)
	return err
}

// --- results ---

// RaceResults returns a race's results in finishing order.
func (s *Store) RaceResults(ctx context.Context, season, race string) ([]models.Result, error) {
	return raceResults(ctx, s.db, season, race)
}

func raceResults(ctx context.Context, db bun.IDB, season, race string) ([]models.Result, error) {
	out := []models.Result{}
	err := db.NewSelect().Model(&out).
		Where("season = ? AND race_name = ?", season, race).
		OrderExpr("position ASC, finish_token ASC").
		Scan(ctx)
	return out, err
}

// SeasonResults loads a season, its races and every race's results from a
// single consistent snapshot.
func (s *Store) SeasonResults(ctx context.Context, name string) (*models.Season, []models.Race, map[string][]models.Result, error) {
	var (
		season  models.Season
		rcs     []models.Race
		results = map[string][]models.Result{}
	)
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&season).Where("name = ?", name).Scan(ctx); err != nil {
			return err
		}
		var err error
		if rcs, err = races(ctx, tx, name); err != nil {
			return err
		}
		for _, race := range rcs {
			rr, err := raceResults(ctx, tx, name, race.Name)
			if err != nil {
				return err
			}
			results[race.Name] = rr
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return &season, rcs, results, nil
}

// SaveResults upserts results by finish token.
func (s *Store) SaveResults(ctx context.Context, results []models.Result) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for start := 0; start < len(results); start += batchSize {
			chunk := results[start:min(start+batchSize, len(results))]
			_, err := tx.NewInsert().Model(&chunk).
				On("CONFLICT (season, race_name, finish_token) DO UPDATE").
				Set("position = EXCLUDED.position").
				Set("participant_first_name = EXCLUDED.participant_first_name").
				Set("participant_last_name = EXCLUDED.participant_last_name").
				Set("participant_gender = EXCLUDED.participant_gender").
				Set("participant_club = EXCLUDED.participant_club").
				Set("participant_age_category = EXCLUDED.participant_age_category").
				Set("participant_parkrun_barcode_id = EXCLUDED.participant_parkrun_barcode_id").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("save results: %w", err)
			}
		}
		return nil
	})
}

// DeleteResult removes one finish token from a race.
func (s *Store) DeleteResult(ctx context.Context, season, race, token string) error {
	res, err := s.db.NewDelete().Model((*models.Result)(nil)).
		Where("season = ? AND race_name = ? AND finish_token = ?", season, race, token).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRows(res, "result "+token)
}

// DeleteRaceResults removes all results of a race and returns how many went.
func (s *Store) DeleteRaceResults(ctx context.Context, season, race string) (int64, error) {
	res, err := s.db.NewDelete().Model((*models.Result)(nil)).
		Where("season = ? AND race_name = ?", season, race).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ParticipantResults returns every result recorded against a barcode, most
// recent race first.
func (s *Store) ParticipantResults(ctx context.Context, barcode string) ([]models.ParticipantResult, error) {
	out := []models.ParticipantResult{}
	err := s.db.NewRaw(`
		SELECT r.season, r.race_name, COALESCE(rc.date, '') AS race_date, r.finish_token,
		       r.participant_first_name, r.participant_last_name, r.participant_gender,
		       r.participant_club, r.participant_age_category, r.participant_parkrun_barcode_id
		FROM results r
		LEFT JOIN races rc ON rc.season = r.season AND rc.name = r.race_name
		WHERE r.participant_parkrun_barcode_id = ?
		ORDER BY race_date DESC, r.season DESC, r.race_name ASC`,
		barcode,
	).Scan(ctx, &out)
	return out, err
}

// All loads every row of every table, for backups.
func (s *Store) All(ctx context.Context) (*Dump, error) {
	d := &Dump{BackupTimestamp: time.Now().UTC()}
	var users []models.User

	g, gctx := errgroup.WithContext(ctx)
	for _, dst := range []interface{}{&users, &d.Clubs, &d.Participants, &d.Seasons, &d.Races, &d.Results} {
		g.Go(func() error {
			if err := s.db.NewSelect().Model(dst).Scan(gctx); err != nil {
				return fmt.Errorf("dump %T: %w", dst, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, u := range users {
		d.Users = append(d.Users, UserRow{Username: u.Username, Password: u.Password})
	}
	return d, nil
}

func expectRows(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, sql.ErrNoRows)
	}
	return nil
}
