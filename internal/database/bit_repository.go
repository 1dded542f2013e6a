package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidBits = errors.New("bits amount must be positive")

// Bit is one stored cheer. Unlike follows, a user may cheer any number of
// times.
type Bit struct {
	ID          string
	UserID      string
	DisplayName string
	Amount      int
	Message     string
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// BitRepository reads and writes the bits table.
type BitRepository struct {
	db      *sql.DB
	retries uint
}

// AddBit stores b, assigning an ID when it has none.
func (r *BitRepository) AddBit(b *Bit) error {
	if b.Amount <= 0 {
		return ErrInvalidBits
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.OccurredAt.IsZero() {
		b.OccurredAt = time.Now()
	}
	b.OccurredAt = b.OccurredAt.UTC().Truncate(time.Millisecond)
	b.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	err := withBusyRetry(r.retries, func() error {
		_, err := r.db.Exec(`INSERT INTO bits (id, user_id, display_name, amount, message, occurred_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, b.DisplayName, b.Amount, b.Message,
			b.OccurredAt.UnixMilli(), b.CreatedAt.UnixMilli())
		return err
	})
	if err != nil {
		return fmt.Errorf("insert bits: %w", err)
	}
	return nil
}

// ListBits returns cheers matching opts.
func (r *BitRepository) ListBits(opts ListOptions) ([]Bit, error) {
	query, args := opts.clauses(`SELECT id, user_id, display_name, amount, message, occurred_at, created_at
		FROM bits WHERE 1 = 1`, nil)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bits: %w", err)
	}
	defer rows.Close()

	bits := make([]Bit, 0)
	for rows.Next() {
		var (
			b                   Bit
			occurred, createdAt int64
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.DisplayName, &b.Amount, &b.Message, &occurred, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bits: %w", err)
		}
		b.OccurredAt = time.UnixMilli(occurred).UTC()
		b.CreatedAt = time.UnixMilli(createdAt).UTC()
		bits = append(bits, b)
	}
	return bits, rows.Err()
}
