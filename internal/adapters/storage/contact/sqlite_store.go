package contact

import (
	"context"
	"time"

	"spark/internal/adapters/storage"
	domain "spark/internal/domain/contact"
)

const (
	dateLayout = "2006-01-02T15:04:05.999999999Z07:00"
)

// SQLiteStore implements the contact Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new contact message store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a contact message to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, m domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_message (id, name, email, subject, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email,
		   subject=excluded.subject, body=excluded.body`,
		m.ID, m.Name, m.Email, m.Subject, m.Body, m.CreatedAt.Format(dateLayout))
	return err
}

// List returns all contact messages, newest first.
// PRE: none
// POST: Returns every message ordered by created_at desc
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, subject, body, created_at
		 FROM contact_message ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
