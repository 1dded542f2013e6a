package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"eosthanks/models"
)

var (
	ErrDuplicateEvent = errors.New("event already recorded")
	ErrEventNotFound  = errors.New("event not found")
)

// Event is a stored follow or subscription.
type Event struct {
	ID          string
	Kind        models.EventKind
	UserID      string
	DisplayName string
	Months      int
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// EventRepository reads and writes the events table.
type EventRepository struct {
	db      *sql.DB
	retries uint
}

func newEventRepository(db *sql.DB, retries uint) *EventRepository {
	return &EventRepository{db: db, retries: retries}
}

// AddEvent stores e. A repeated follow from the same user is rejected with
// ErrDuplicateEvent; a repeated subscription replaces the stored months,
// name and time, keeping the original ID.
func (r *EventRepository) AddEvent(e *Event) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid event kind %q", e.Kind)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	e.OccurredAt = e.OccurredAt.UTC().Truncate(time.Millisecond)
	e.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	query := `INSERT INTO events (id, kind, user_id, display_name, months, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if e.Kind == models.EventKindSubscribed {
		query += ` ON CONFLICT (kind, user_id) DO UPDATE SET
			display_name = excluded.display_name,
			months = excluded.months,
			occurred_at = excluded.occurred_at`
	}

	err := withBusyRetry(r.retries, func() error {
		_, err := r.db.Exec(query,
			e.ID, string(e.Kind), e.UserID, e.DisplayName, e.Months,
			e.OccurredAt.UnixMilli(), e.CreatedAt.UnixMilli())
		return err
	})
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%s %s: %w", e.Kind, e.UserID, ErrDuplicateEvent)
		}
		return fmt.Errorf("insert event: %w", err)
	}

	if e.Kind == models.EventKindSubscribed {
		stored, err := r.GetEvent(e.Kind, e.UserID)
		if err != nil {
			return err
		}
		e.ID = stored.ID
		e.CreatedAt = stored.CreatedAt
	}
	return nil
}

// GetEvent returns the stored event for a user.
func (r *EventRepository) GetEvent(kind models.EventKind, userID string) (*Event, error) {
	row := r.db.QueryRow(`SELECT id, kind, user_id, display_name, months, occurred_at, created_at
		FROM events WHERE kind = ? AND user_id = ?`, string(kind), userID)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListOptions narrows and pages a list query.
type ListOptions struct {
	// Since keeps events that occurred at or after it. Zero keeps everything.
	Since time.Time
	// Limit caps the result. Zero returns every match.
	Limit  int
	Offset int
	// NewestFirst reverses the default oldest-first order.
	NewestFirst bool
}

// clauses appends the time filter, ordering and paging to query.
func (o ListOptions) clauses(query string, args []any) (string, []any) {
	if !o.Since.IsZero() {
		query += ` AND occurred_at >= ?`
		args = append(args, o.Since.UnixMilli())
	}
	if o.NewestFirst {
		query += ` ORDER BY occurred_at DESC, created_at DESC, id DESC`
	} else {
		query += ` ORDER BY occurred_at ASC, created_at ASC, id ASC`
	}
	if o.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, o.Limit, max(o.Offset, 0))
	} else if o.Offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, o.Offset)
	}
	return query, args
}

// ListEvents returns events of kind matching opts, oldest first unless
// opts.NewestFirst is set.
func (r *EventRepository) ListEvents(kind models.EventKind, opts ListOptions) ([]Event, error) {
	query, args := opts.clauses(`SELECT id, kind, user_id, display_name, months, occurred_at, created_at
		FROM events WHERE kind = ?`, []any{string(kind)})

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// CountEvents returns how many events of kind are stored.
func (r *EventRepository) CountEvents(kind models.EventKind) (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, string(kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// DeleteEvent removes a user's event, as on unfollow.
func (r *EventRepository) DeleteEvent(kind models.EventKind, userID string) error {
	var affected int64
	err := withBusyRetry(r.retries, func() error {
		res, err := r.db.Exec(`DELETE FROM events WHERE kind = ? AND user_id = ?`, string(kind), userID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*Event, error) {
	var (
		e                   Event
		kind                string
		occurred, createdAt int64
	)
	if err := s.Scan(&e.ID, &kind, &e.UserID, &e.DisplayName, &e.Months, &occurred, &createdAt); err != nil {
		return nil, err
	}
	e.Kind = models.EventKind(kind)
	e.OccurredAt = time.UnixMilli(occurred).UTC()
	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &e, nil
}
