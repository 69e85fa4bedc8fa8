package team

import (
	"context"
	"database/sql"
	"time"

	"spark/internal/adapters/storage"
	domain "spark/internal/domain/team"
)

const (
	dateLayout = "2006-01-02T15:04:05.999999999Z07:00"
	dobLayout  = "2006-01-02"
)

const teamColumns = `id, team_name, organization, city, tier, gender,
	coach_name, coach_email, coach_phone,
	emergency_name, emergency_phone, emergency_relationship,
	registration_fee, payment_method, payment_status, registration_status,
	special_requirements, comments, created_at`

// SQLiteStore implements the team Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new team store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a team with its full roster.
// PRE: id is non-empty
// POST: Returns the team or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Team, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM team WHERE id = ?`, id)
	t, err := scanTeam(row)
	if err != nil {
		return domain.Team{}, err
	}
	t.Players, err = s.loadPlayers(ctx, t.ID)
	if err != nil {
		return domain.Team{}, err
	}
	return t, nil
}

// Save persists a team and its roster atomically.
// PRE: entity has been validated
// POST: Team row and player rows are persisted (insert or update)
// INVARIANT: Roster rows always match the aggregate; stale rows are replaced
func (s *SQLiteStore) Save(ctx context.Context, t domain.Team) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO team (`+teamColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   team_name=excluded.team_name, organization=excluded.organization, city=excluded.city,
		   tier=excluded.tier, gender=excluded.gender,
		   coach_name=excluded.coach_name, coach_email=excluded.coach_email, coach_phone=excluded.coach_phone,
		   emergency_name=excluded.emergency_name, emergency_phone=excluded.emergency_phone,
		   emergency_relationship=excluded.emergency_relationship,
		   registration_fee=excluded.registration_fee, payment_method=excluded.payment_method,
		   payment_status=excluded.payment_status, registration_status=excluded.registration_status,
		   special_requirements=excluded.special_requirements, comments=excluded.comments`,
		t.ID, t.TeamName, t.Organization, t.City, t.Tier, t.Gender,
		t.CoachName, t.CoachEmail, t.CoachPhone,
		t.Emergency.Name, t.Emergency.Phone, t.Emergency.Relationship,
		t.RegistrationFee, t.PaymentMethod, t.PaymentStatus, t.RegistrationStatus,
		t.SpecialRequirements, t.Comments, t.CreatedAt.Format(dateLayout))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_player WHERE team_id = ?`, t.ID); err != nil {
		return err
	}
	for i, p := range t.Players {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO team_player (team_id, position, name, date_of_birth, photo_path, photo_original_name, age_at_registration)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, p.Name, p.DateOfBirth.Format(dobLayout),
			p.PhotoPath, p.PhotoOriginalName, p.AgeAtRegistration)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ExistsActive reports whether the coach already has an active
// registration under the same team name.
// PRE: coachEmail is lowercase, teamName is non-empty
// POST: Returns true when a pending, approved, or waitlisted row matches
func (s *SQLiteStore) ExistsActive(ctx context.Context, coachEmail, teamName string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team
		 WHERE coach_email = ? AND team_name = ?
		   AND registration_status IN (?, ?, ?)`,
		coachEmail, teamName,
		domain.StatusPending, domain.StatusApproved, domain.StatusWaitlisted).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all teams with rosters, newest first.
// PRE: none
// POST: Returns every team ordered by created_at desc
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM team ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeamFromRows(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range teams {
		teams[i].Players, err = s.loadPlayers(ctx, teams[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// loadPlayers fetches the roster for one team ordered by position.
func (s *SQLiteStore) loadPlayers(ctx context.Context, teamID string) ([]domain.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, date_of_birth, photo_path, photo_original_name, age_at_registration
		 FROM team_player WHERE team_id = ? ORDER BY position ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		var dob string
		if err := rows.Scan(&p.Name, &dob, &p.PhotoPath, &p.PhotoOriginalName, &p.AgeAtRegistration); err != nil {
			return nil, err
		}
		p.DateOfBirth, _ = time.Parse(dobLayout, dob)
		players = append(players, p)
	}
	return players, rows.Err()
}

// scanTeam scans a single row into a Team without its roster.
func scanTeam(row *sql.Row) (domain.Team, error) {
	var t domain.Team
	var createdAt string
	err := row.Scan(&t.ID, &t.TeamName, &t.Organization, &t.City, &t.Tier, &t.Gender,
		&t.CoachName, &t.CoachEmail, &t.CoachPhone,
		&t.Emergency.Name, &t.Emergency.Phone, &t.Emergency.Relationship,
		&t.RegistrationFee, &t.PaymentMethod, &t.PaymentStatus, &t.RegistrationStatus,
		&t.SpecialRequirements, &t.Comments, &createdAt)
	if err != nil {
		return domain.Team{}, err
	}
	t.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return t, nil
}

// scanTeamFromRows scans a single row from Rows into a Team without its roster.
func scanTeamFromRows(rows *sql.Rows) (domain.Team, error) {
	var t domain.Team
	var createdAt string
	err := rows.Scan(&t.ID, &t.TeamName, &t.Organization, &t.City, &t.Tier, &t.Gender,
		&t.CoachName, &t.CoachEmail, &t.CoachPhone,
		&t.Emergency.Name, &t.Emergency.Phone, &t.Emergency.Relationship,
		&t.RegistrationFee, &t.PaymentMethod, &t.PaymentStatus, &t.RegistrationStatus,
		&t.SpecialRequirements, &t.Comments, &createdAt)
	if err != nil {
		return domain.Team{}, err
	}
	t.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return t, nil
}
