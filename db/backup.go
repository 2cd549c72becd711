package db

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/cc6api/models"
)

// Dump is the on-disk backup format.
type Dump struct {
	BackupTimestamp time.Time            `json:"backup_timestamp"`
	Users           []UserRow            `json:"users"`
	Clubs           []models.Club        `json:"clubs"`
	Participants    []models.Participant `json:"participants"`
	Seasons         []models.Season      `json:"seasons"`
	Races           []models.Race        `json:"races"`
	Results         []models.Result      `json:"results"`
}

// UserRow is a user as written to a backup. Password is the bcrypt hash.
type UserRow struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Counts summarises a dump per table.
func (d *Dump) Counts() map[string]int {
	return map[string]int{
		"users":        len(d.Users),
		"clubs":        len(d.Clubs),
		"participants": len(d.Participants),
		"seasons":      len(d.Seasons),
		"races":        len(d.Races),
		"results":      len(d.Results),
	}
}

// Restore loads d into the database, skipping rows that already exist so the
// same backup can be applied more than once.
func (s *Store) Restore(ctx context.Context, d *Dump) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		steps := []struct {
			name string
			fn   func() error
		}{
			{"users", func() error { return bulkInsert(ctx, tx, usersOf(d.Users)) }},
			{"clubs", func() error { return bulkInsert(ctx, tx, d.Clubs) }},
			{"participants", func() error { return bulkInsert(ctx, tx, d.Participants) }},
			{"seasons", func() error { return bulkInsert(ctx, tx, d.Seasons) }},
			{"races", func() error { return bulkInsert(ctx, tx, d.Races) }},
			{"results", func() error { return bulkInsert(ctx, tx, d.Results) }},
		}
		for _, st := range steps {
			if err := st.fn(); err != nil {
				return fmt.Errorf("restore %s: %w", st.name, err)
			}
		}
		return nil
	})
}

// bulkInsert inserts rows in batches, skipping rows that already exist.
func bulkInsert[T any](ctx context.Context, db bun.IDB, rows []T) error {
	for start := 0; start < len(rows); start += batchSize {
		chunk := rows[start:min(start+batchSize, len(rows))]
		if _, err := db.NewInsert().Model(&chunk).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func usersOf(rows []UserRow) []models.User {
	users := make([]models.User, len(rows))
	for i, r := range rows {
		users[i] = models.User{Username: r.Username, Password: r.Password}
	}
	return users
}
