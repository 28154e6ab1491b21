package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	selectPreferences = `SELECT city, preferred_date FROM volunteer_profiles WHERE volunteer_id = $1`

	selectVolunteerSkills = `
SELECT s.name
FROM volunteer_skills vs
JOIN skills s ON s.id = vs.skill_id
WHERE vs.volunteer_id = $1
ORDER BY s.name`

	selectEventsWithSkills = `
SELECT e.id, e.title, e.location, e.event_date, e.description, e.urgency,
       COALESCE(array_agg(s.name ORDER BY s.name) FILTER (WHERE s.name IS NOT NULL), '{}') AS skill_names
FROM events e
LEFT JOIN event_skills es ON es.event_id = e.id
LEFT JOIN skills s ON s.id = es.skill_id
GROUP BY e.id
ORDER BY e.id`

	upsertVolunteer = `
INSERT INTO volunteer_profiles (volunteer_id, city, preferred_date)
VALUES ($1, $2, $3)
ON CONFLICT (volunteer_id) DO UPDATE
SET city = EXCLUDED.city, preferred_date = EXCLUDED.preferred_date, updated_at = NOW()`

	upsertEvent = `
INSERT INTO events (id, title, location, event_date, description, urgency)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title, location = EXCLUDED.location, event_date = EXCLUDED.event_date,
    description = EXCLUDED.description, urgency = EXCLUDED.urgency`

	// The no-op update makes RETURNING yield the id of an existing skill too.
	upsertSkill = `
INSERT INTO skills (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

	deleteVolunteerSkills = `DELETE FROM volunteer_skills WHERE volunteer_id = $1`
	insertVolunteerSkill  = `INSERT INTO volunteer_skills (volunteer_id, skill_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	deleteEventSkills     = `DELETE FROM event_skills WHERE event_id = $1`
	insertEventSkill      = `INSERT INTO event_skills (event_id, skill_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
)

// PostgresStore implements Store and Writer on top of database/sql with lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens and pings a PostgreSQL connection.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// GetVolunteerPreferences implements Store.
func (s *PostgresStore) GetVolunteerPreferences(ctx context.Context, volunteerID string) (PreferenceRow, error) {
	var (
		city sql.NullString
		date sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, selectPreferences, volunteerID).Scan(&city, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return PreferenceRow{}, ErrNotFound
	}
	if err != nil {
		return PreferenceRow{}, fmt.Errorf("failed to get volunteer preferences: %w", err)
	}
	row := PreferenceRow{VolunteerID: volunteerID}
	if city.Valid {
		row.PreferredCity = &city.String
	}
	if date.Valid {
		row.PreferredDate = &date.Time
	}
	return row, nil
}

// GetVolunteerSkillNames implements Store.
func (s *PostgresStore) GetVolunteerSkillNames(ctx context.Context, volunteerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectVolunteerSkills, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer skills: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan volunteer skill: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate volunteer skills: %w", err)
	}
	return names, nil
}

// ListEventsWithSkills implements Store.
func (s *PostgresStore) ListEventsWithSkills(ctx context.Context) ([]EventRow, error) {
	rows, err := s.db.QueryContext(ctx, selectEventsWithSkills)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []EventRow{}
	for rows.Next() {
		var (
			row                            EventRow
			location, description, urgency sql.NullString
			date                           sql.NullTime
			skills                         []string
		)
		if err := rows.Scan(&row.ID, &row.Title, &location, &date, &description, &urgency, pq.Array(&skills)); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		row.Location = location.String
		row.Description = description.String
		row.Urgency = urgency.String
		if date.Valid {
			row.Date = &date.Time
		}
		if skills == nil {
			skills = []string{}
		}
		row.SkillNames = skills
		events = append(events, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// PutVolunteer upserts a volunteer profile and replaces its skills.
func (s *PostgresStore) PutVolunteer(ctx context.Context, rec VolunteerRecord) error {
	if err := validateVolunteer(rec); err != nil {
		return err
	}
	p := rec.Preferences
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertVolunteer, p.VolunteerID, nullString(p.PreferredCity), nullDate(p.PreferredDate)); err != nil {
			return fmt.Errorf("failed to upsert volunteer: %w", err)
		}
		return replaceSkills(ctx, tx, p.VolunteerID, rec.SkillNames, deleteVolunteerSkills, insertVolunteerSkill)
	})
}

// PutEvent upserts an event and replaces its required skills.
func (s *PostgresStore) PutEvent(ctx context.Context, row EventRow) error {
	if err := validateEvent(row); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertEvent,
			row.ID, row.Title, emptyAsNull(row.Location), nullDate(row.Date),
			emptyAsNull(row.Description), emptyAsNull(row.Urgency),
		); err != nil {
			return fmt.Errorf("failed to upsert event: %w", err)
		}
		return replaceSkills(ctx, tx, row.ID, row.SkillNames, deleteEventSkills, insertEventSkill)
	})
}

// Ping implements Pinger.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func replaceSkills(ctx context.Context, tx *sql.Tx, ownerID string, names []string, deleteQuery, insertQuery string) error {
	if _, err := tx.ExecContext(ctx, deleteQuery, ownerID); err != nil {
		return fmt.Errorf("failed to clear skills: %w", err)
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		var skillID int64
		if err := tx.QueryRowContext(ctx, upsertSkill, name).Scan(&skillID); err != nil {
			return fmt.Errorf("failed to upsert skill %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, ownerID, skillID); err != nil {
			return fmt.Errorf("failed to link skill %q: %w", name, err)
		}
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func emptyAsNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
