package sponsor

import (
	"context"
	"database/sql"
	"time"

	"spark/internal/adapters/storage"
	domain "spark/internal/domain/sponsor"
)

const (
	dateLayout = "2006-01-02T15:04:05.999999999Z07:00"
)

const sponsorColumns = `id, company_name, contact_name, contact_email, contact_phone,
	level, amount_cents, website, comments,
	payment_method, payment_status, status, created_at`

// SQLiteStore implements the sponsor Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new sponsor store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a sponsor by its ID.
// PRE: id is non-empty
// POST: Returns the sponsor or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Sponsor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sponsorColumns+` FROM sponsor WHERE id = ?`, id)
	return scanSponsor(row)
}

// Save persists a sponsor to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, sp domain.Sponsor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sponsor (`+sponsorColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   company_name=excluded.company_name, contact_name=excluded.contact_name,
		   contact_email=excluded.contact_email, contact_phone=excluded.contact_phone,
		   level=excluded.level, amount_cents=excluded.amount_cents,
		   website=excluded.website, comments=excluded.comments,
		   payment_method=excluded.payment_method, payment_status=excluded.payment_status,
		   status=excluded.status`,
		sp.ID, sp.CompanyName, sp.ContactName, sp.ContactEmail, sp.ContactPhone,
		sp.Level, sp.AmountCents, sp.Website, sp.Comments,
		sp.PaymentMethod, sp.PaymentStatus, sp.Status, sp.CreatedAt.Format(dateLayout))
	return err
}

// ExistsActive reports whether the contact already has an active
// sponsorship under the same company name.
// PRE: contactEmail is lowercase, companyName is non-empty
// POST: Returns true when a pending or approved row matches
func (s *SQLiteStore) ExistsActive(ctx context.Context, contactEmail, companyName string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sponsor
		 WHERE contact_email = ? AND company_name = ? AND status IN (?, ?)`,
		contactEmail, companyName,
		domain.StatusPending, domain.StatusApproved).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all sponsors, newest first.
// PRE: none
// POST: Returns every sponsor ordered by created_at desc
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Sponsor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sponsorColumns+` FROM sponsor ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sponsors []domain.Sponsor
	for rows.Next() {
		sp, err := scanSponsorFromRows(rows)
		if err != nil {
			return nil, err
		}
		sponsors = append(sponsors, sp)
	}
	return sponsors, rows.Err()
}

// scanSponsor scans a single row into a Sponsor.
func scanSponsor(row *sql.Row) (domain.Sponsor, error) {
	var sp domain.Sponsor
	var createdAt string
	err := row.Scan(&sp.ID, &sp.CompanyName, &sp.ContactName, &sp.ContactEmail, &sp.ContactPhone,
		&sp.Level, &sp.AmountCents, &sp.Website, &sp.Comments,
		&sp.PaymentMethod, &sp.PaymentStatus, &sp.Status, &createdAt)
	if err != nil {
		return domain.Sponsor{}, err
	}
	sp.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return sp, nil
}

// scanSponsorFromRows scans a single row from Rows into a Sponsor.
func scanSponsorFromRows(rows *sql.Rows) (domain.Sponsor, error) {
	var sp domain.Sponsor
	var createdAt string
	err := rows.Scan(&sp.ID, &sp.CompanyName, &sp.ContactName, &sp.ContactEmail, &sp.ContactPhone,
		&sp.Level, &sp.AmountCents, &sp.Website, &sp.Comments,
		&sp.PaymentMethod, &sp.PaymentStatus, &sp.Status, &createdAt)
	if err != nil {
		return domain.Sponsor{}, err
	}
	sp.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return sp, nil
}
