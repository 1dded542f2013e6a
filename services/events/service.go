// Package events records follows, subscriptions and cheers and serves them
// back to the outro.
package events

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"eosthanks/internal/clock"
	"eosthanks/internal/database"
	"eosthanks/models"
	"eosthanks/utils"
)

var (
	ErrUserIDRequired      = errors.New("user id is required")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrInvalidMonths       = errors.New("months must be at least 1")
	ErrInvalidBits         = errors.New("bits must be at least 1")
)

// Store is the persistence the service needs.
type Store interface {
	AddEvent(e *database.Event) error
	ListEvents(kind models.EventKind, opts database.ListOptions) ([]database.Event, error)
	DeleteEvent(kind models.EventKind, userID string) error
}

// BitStore persists cheers.
type BitStore interface {
	AddBit(b *database.Bit) error
	ListBits(opts database.ListOptions) ([]database.Bit, error)
}

// Page selects a window of a list. The zero Page lists everything oldest
// first, which is what the outro reads. A positive Limit pages newest first.
type Page struct {
	Limit  int
	Offset int
	// Latest keeps only events strictly after this instant.
	Latest time.Time
}

// FollowRequest is the POST /follow body.
type FollowRequest struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	FollowedAt  *time.Time `json:"followed_at,omitempty"`
}

// SubscribeRequest is the POST /subscribe body.
type SubscribeRequest struct {
	UserID       string     `json:"user_id"`
	DisplayName  string     `json:"display_name"`
	Months       int        `json:"months"`
	SubscribedAt *time.Time `json:"subscribed_at,omitempty"`
}

// CheerRequest is the POST /bits body.
type CheerRequest struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Bits        int        `json:"bits"`
	Message     string     `json:"message,omitempty"`
	CheeredAt   *time.Time `json:"cheered_at,omitempty"`
}

// Service validates, normalizes and stores incoming events.
type Service struct {
	store       Store
	bits        BitStore
	clock       clock.Clock
	streamStart time.Time
}

// NewService creates the ingest service. The stream is considered to have
// started when the service is created.
func NewService(store Store, bits BitStore, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		store:       store,
		bits:        bits,
		clock:       clk,
		streamStart: clk.Now(),
	}
}

// StreamStart is the lower bound applied when only the current stream's
// events are listed.
func (s *Service) StreamStart() time.Time {
	return s.streamStart
}

// Follow records a follow.
func (s *Service) Follow(req FollowRequest) (*models.Follower, error) {
	userID, name, err := s.validate(req.UserID, req.DisplayName)
	if err != nil {
		return nil, err
	}

	e := &database.Event{
		ID:          uuid.NewString(),
		Kind:        models.EventKindFollowed,
		UserID:      userID,
		DisplayName: name,
		OccurredAt:  s.occurredAt(req.FollowedAt),
	}
	if err := s.store.AddEvent(e); err != nil {
		return nil, fmt.Errorf("record follow: %w", err)
	}

	log.Printf("[events] follow from %s (%s)", name, userID)
	f := toFollower(*e)
	return &f, nil
}

// Subscribe records a subscription or resubscription.
func (s *Service) Subscribe(req SubscribeRequest) (*models.Subscriber, error) {
	userID, name, err := s.validate(req.UserID, req.DisplayName)
	if err != nil {
		return nil, err
	}
	months := req.Months
	if months == 0 {
		months = 1
	}
	if months < 1 {
		return nil, ErrInvalidMonths
	}

	e := &database.Event{
		ID:          uuid.NewString(),
		Kind:        models.EventKindSubscribed,
		UserID:      userID,
		DisplayName: name,
		Months:      months,
		OccurredAt:  s.occurredAt(req.SubscribedAt),
	}
	if err := s.store.AddEvent(e); err != nil {
		return nil, fmt.Errorf("record subscription: %w", err)
	}

	log.Printf("[events] subscription from %s (%s), %d months", name, userID, months)
	sub := toSubscriber(*e)
	return &sub, nil
}

// Unfollow removes a stored follow.
func (s *Service) Unfollow(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	return s.store.DeleteEvent(models.EventKindFollowed, userID)
}

// Cheer records a bits cheer. Every cheer is kept, including repeats from
// the same user.
func (s *Service) Cheer(req CheerRequest) (*models.Cheer, error) {
	userID, name, err := s.validate(req.UserID, req.DisplayName)
	if err != nil {
		return nil, err
	}
	if req.Bits < 1 {
		return nil, ErrInvalidBits
	}

	b := &database.Bit{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: name,
		Amount:      req.Bits,
		Message:     strings.TrimSpace(req.Message),
		OccurredAt:  s.occurredAt(req.CheeredAt),
	}
	if err := s.bits.AddBit(b); err != nil {
		return nil, fmt.Errorf("record cheer: %w", err)
	}

	log.Printf("[events] %d bits from %s (%s)", b.Amount, name, userID)
	c := toCheer(*b)
	return &c, nil
}

// Followers lists stored follows.
func (s *Service) Followers(currentStreamOnly bool, page Page) ([]models.Follower, error) {
	events, err := s.store.ListEvents(models.EventKindFollowed, s.options(currentStreamOnly, page))
	if err != nil {
		return nil, err
	}
	out := make([]models.Follower, 0, len(events))
	for _, e := range events {
		out = append(out, toFollower(e))
	}
	return out, nil
}

// Subscribers lists stored subscriptions.
func (s *Service) Subscribers(currentStreamOnly bool, page Page) ([]models.Subscriber, error) {
	events, err := s.store.ListEvents(models.EventKindSubscribed, s.options(currentStreamOnly, page))
	if err != nil {
		return nil, err
	}
	out := make([]models.Subscriber, 0, len(events))
	for _, e := range events {
		out = append(out, toSubscriber(e))
	}
	return out, nil
}

// Cheers lists stored cheers.
func (s *Service) Cheers(currentStreamOnly bool, page Page) ([]models.Cheer, error) {
	bits, err := s.bits.ListBits(s.options(currentStreamOnly, page))
	if err != nil {
		return nil, err
	}
	out := make([]models.Cheer, 0, len(bits))
	for _, b := range bits {
		out = append(out, toCheer(b))
	}
	return out, nil
}

func (s *Service) validate(userID, displayName string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", "", ErrUserIDRequired
	}
	name := utils.NormalizeDisplayName(displayName)
	if name == "" {
		return "", "", ErrDisplayNameRequired
	}
	return userID, name, nil
}

func (s *Service) occurredAt(at *time.Time) time.Time {
	if at == nil || at.IsZero() {
		return s.clock.Now()
	}
	return *at
}

func (s *Service) options(currentStreamOnly bool, page Page) database.ListOptions {
	var since time.Time
	if currentStreamOnly {
		since = s.streamStart
	}
	if !page.Latest.IsZero() {
		// stored times have millisecond precision
		after := page.Latest.Truncate(time.Millisecond).Add(time.Millisecond)
		if after.After(since) {
			since = after
		}
	}
	return database.ListOptions{
		Since:       since,
		Limit:       page.Limit,
		Offset:      page.Offset,
		NewestFirst: page.Limit > 0,
	}
}

func toFollower(e database.Event) models.Follower {
	return models.Follower{
		ID:          e.ID,
		UserID:      e.UserID,
		DisplayName: e.DisplayName,
		FollowedAt:  e.OccurredAt,
	}
}

func toSubscriber(e database.Event) models.Subscriber {
	return models.Subscriber{
		ID:           e.ID,
		UserID:       e.UserID,
		DisplayName:  e.DisplayName,
		Months:       e.Months,
		SubscribedAt: e.OccurredAt,
	}
}

func toCheer(b database.Bit) models.Cheer {
	return models.Cheer{
		ID:          b.ID,
		UserID:      b.UserID,
		DisplayName: b.DisplayName,
		Bits:        b.Amount,
		Message:     b.Message,
		CheeredAt:   b.OccurredAt,
	}
}
