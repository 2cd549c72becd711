package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/padraicbc/cc6api/models"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	users        map[string]*models.User
	clubs        []models.Club
	participants map[string]*models.Participant
	seasons      []models.Season
	races        []models.Race
	results      []models.Result

	saved []models.Result

	// raceErr, when set, is returned by Race.
	raceErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[string]*models.User{},
		participants: map[string]*models.Participant{},
	}
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, sql.ErrNoRows)
}

func (m *memStore) UserByName(_ context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, notFound("user")
}

func (m *memStore) Clubs(context.Context) ([]models.Club, error) {
	return append([]models.Club{}, m.clubs...), nil
}

func (m *memStore) Club(_ context.Context, name string) (*models.Club, error) {
	for i := range m.clubs {
		if m.clubs[i].Name == name {
			return &m.clubs[i], nil
		}
	}
	return nil, notFound("club")
}

func (m *memStore) ClubExists(ctx context.Context, name string) (bool, error) {
	_, err := m.Club(ctx, name)
	return err == nil, nil
}

func (m *memStore) CreateClub(_ context.Context, club *models.Club) error {
	m.clubs = append(m.clubs, *club)
	return nil
}

func (m *memStore) UpdateClub(_ context.Context, name string, club *models.Club) error {
	for i := range m.clubs {
		if m.clubs[i].Name == name {
			m.clubs[i] = *club
			return nil
		}
	}
	return notFound("club")
}

func (m *memStore) DeleteClub(_ context.Context, name string) error {
	for i := range m.clubs {
		if m.clubs[i].Name == name {
			m.clubs = append(m.clubs[:i], m.clubs[i+1:]...)
			return nil
		}
	}
	return notFound("club")
}

func (m *memStore) sortedParticipants(search string) []models.Participant {
	out := []models.Participant{}
	search = strings.ToLower(search)
	for _, p := range m.participants {
		hay := strings.ToLower(p.FirstName + " " + p.LastName + " " + p.Barcode + " " + p.Club)
		if search == "" || strings.Contains(hay, search) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out
}

func (m *memStore) Participants(_ context.Context, page, pageSize int, search string) ([]models.Participant, int, error) {
	all := m.sortedParticipants(search)
	start := min((page-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	return all[start:end], len(all), nil
}

func (m *memStore) Participant(_ context.Context, barcode string) (*models.Participant, error) {
	if p, ok := m.participants[barcode]; ok {
		return p, nil
	}
	return nil, notFound("participant")
}

func (m *memStore) ParticipantsByBarcode(_ context.Context, barcodes []string) (map[string]*models.Participant, error) {
	out := map[string]*models.Participant{}
	for _, b := range barcodes {
		if p, ok := m.participants[b]; ok {
			out[b] = p
		}
	}
	return out, nil
}

func (m *memStore) CreateParticipant(_ context.Context, p *models.Participant) error {
	cp := *p
	m.participants[p.Barcode] = &cp
	return nil
}

func (m *memStore) UpdateParticipant(_ context.Context, barcode string, p *models.Participant) error {
	if _, ok := m.participants[barcode]; !ok {
		return notFound("participant")
	}
	cp := *p
	m.participants[barcode] = &cp
	return nil
}

func (m *memStore) DeleteParticipant(_ context.Context, barcode string) error {
	if _, ok := m.participants[barcode]; !ok {
		return notFound("participant")
	}
	delete(m.participants, barcode)
	return nil
}

func (m *memStore) SaveParticipants(_ context.Context, created, updated []models.Participant) error {
	for _, list := range [][]models.Participant{created, updated} {
		for i := range list {
			p := list[i]
			m.participants[p.Barcode] = &p
		}
	}
	return nil
}

func (m *memStore) Seasons(context.Context) ([]models.Season, error) {
	return append([]models.Season{}, m.seasons...), nil
}

func (m *memStore) DefaultSeason(context.Context) (string, error) {
	for _, s := range m.seasons {
		if s.IsDefault {
			return s.Name, nil
		}
	}
	return "", nil
}

func (m *memStore) Season(_ context.Context, name string) (*models.Season, error) {
	for i := range m.seasons {
		if m.seasons[i].Name == name {
			s := m.seasons[i]
			return &s, nil
		}
	}
	return nil, notFound("season")
}

func (m *memStore) clearDefault() {
	for i := range m.seasons {
		m.seasons[i].IsDefault = false
	}
}

func (m *memStore) CreateSeason(_ context.Context, season *models.Season) error {
	if season.IsDefault {
		m.clearDefault()
	}
	m.seasons = append(m.seasons, *season)
	return nil
}

func (m *memStore) UpdateSeason(_ context.Context, season *models.Season) error {
	for i := range m.seasons {
		if m.seasons[i].Name == season.Name {
			if season.IsDefault {
				m.clearDefault()
			}
			m.seasons[i] = *season
			return nil
		}
	}
	return notFound("season")
}

func (m *memStore) DeleteSeason(_ context.Context, name string) error {
	for i := range m.seasons {
		if m.seasons[i].Name == name {
			m.seasons = append(m.seasons[:i], m.seasons[i+1:]...)
			return nil
		}
	}
	return notFound("season")
}

func (m *memStore) Races(_ context.Context, season string) ([]models.Race, error) {
	out := []models.Race{}
	for _, r := range m.races {
		if r.Season == season {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memStore) AllRaces(context.Context) ([]models.Race, error) {
	return append([]models.Race{}, m.races...), nil
}

func (m *memStore) Race(_ context.Context, season, name string) (*models.Race, error) {
	if m.raceErr != nil {
		return nil, m.raceErr
	}
	for i := range m.races {
		if m.races[i].Season == season && m.races[i].Name == name {
			r := m.races[i]
			return &r, nil
		}
	}
	return nil, notFound("race")
}

func (m *memStore) CreateRace(_ context.Context, race *models.Race) error {
	m.races = append(m.races, *race)
	return nil
}

func (m *memStore) RaceResults(_ context.Context, season, race string) ([]models.Result, error) {
	out := []models.Result{}
	for _, r := range m.results {
		if r.Season == season && r.RaceName == race {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memStore) SeasonResults(ctx context.Context, name string) (*models.Season, []models.Race, map[string][]models.Result, error) {
	season, err := m.Season(ctx, name)
	if err != nil {
		return nil, nil, nil, err
	}
	races, _ := m.Races(ctx, name)
	results := map[string][]models.Result{}
	for _, r := range races {
		results[r.Name], _ = m.RaceResults(ctx, name, r.Name)
	}
	return season, races, results, nil
}

func (m *memStore) SaveResults(_ context.Context, results []models.Result) error {
	m.saved = append(m.saved, results...)
	m.results = append(m.results, results...)
	return nil
}

func (m *memStore) DeleteResult(_ context.Context, season, race, token string) error {
	for i, r := range m.results {
		if r.Season == season && r.RaceName == race && r.FinishToken == token {
			m.results = append(m.results[:i], m.results[i+1:]...)
			return nil
		}
	}
	return notFound("result")
}

func (m *memStore) DeleteRaceResults(_ context.Context, season, race string) (int64, error) {
	kept := m.results[:0]
	var n int64
	for _, r := range m.results {
		if r.Season == season && r.RaceName == race {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.results = kept
	return n, nil
}

func (m *memStore) ParticipantResults(_ context.Context, barcode string) ([]models.ParticipantResult, error) {
	out := []models.ParticipantResult{}
	for _, r := range m.results {
		if r.Participant.ParkrunBarcodeID == barcode {
			out = append(out, models.ParticipantResult{
				Season:      r.Season,
				RaceName:    r.RaceName,
				FinishToken: r.FinishToken,
				Participant: r.Participant,
			})
		}
	}
	return out, nil
}
