// Package domain defines the business logic for the activity directory.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrActivityNotFound is returned when no activity carries the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp is returned when the email is already on the roster.
	ErrAlreadySignedUp = errors.New("already signed up")
	// ErrNotRegistered is returned when unregistering an email that is not on the roster.
	ErrNotRegistered = errors.New("not registered")
)

// Registry captures roster storage. Implementations must apply the membership
// check and the mutation atomically and return the sentinel errors above.
type Registry interface {
	List(ctx context.Context) ([]Activity, error)
	Get(ctx context.Context, name string) (Activity, error)
	AddParticipant(ctx context.Context, name, email string) (Activity, error)
	RemoveParticipant(ctx context.Context, name, email string) (Activity, error)
}

// RosterChangeType names the kind of roster mutation.
type RosterChangeType string

const (
	RosterChangeSignedUp     RosterChangeType = "participant.signed_up"
	RosterChangeUnregistered RosterChangeType = "participant.unregistered"
)

// RosterChange describes a roster mutation that has already been applied.
type RosterChange struct {
	Type       RosterChangeType
	Activity   string
	Email      string
	RosterSize int
	OccurredAt time.Time
}

// EventPublisher notifies downstream consumers about roster changes.
type EventPublisher interface {
	PublishRosterChange(ctx context.Context, change RosterChange) error
}

type noopPublisher struct{}

func (noopPublisher) PublishRosterChange(context.Context, RosterChange) error { return nil }

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithPublisher sets the publisher notified after each successful mutation.
func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithLogger overrides the logger used to report publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source stamped on roster changes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service orchestrates directory queries and roster changes.
type Service struct {
	registry  Registry
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(registry Registry, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		publisher: noopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns every activity in directory order.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	return s.registry.List(ctx)
}

// GetActivity fetches a single activity by exact name.
func (s *Service) GetActivity(ctx context.Context, name string) (Activity, error) {
	activity, err := s.registry.Get(ctx, name)
	if err != nil {
		return Activity{}, describe(err, name, "")
	}
	return activity, nil
}

// SignUp appends email to the roster of the named activity and returns a
// confirmation message. MaxParticipants is not enforced.
func (s *Service) SignUp(ctx context.Context, name, email string) (string, error) {
	activity, err := s.registry.AddParticipant(ctx, name, email)
	if err != nil {
		return "", describe(err, name, email)
	}

	s.publish(ctx, RosterChange{
		Type:       RosterChangeSignedUp,
		Activity:   activity.Name,
		Email:      email,
		RosterSize: len(activity.Participants),
		OccurredAt: s.now().UTC(),
	})
	return fmt.Sprintf("Signed up %s for %s", email, name), nil
}

// Unregister removes email from the roster of the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) (string, error) {
	activity, err := s.registry.RemoveParticipant(ctx, name, email)
	if err != nil {
		return "", describe(err, name, email)
	}

	s.publish(ctx, RosterChange{
		Type:       RosterChangeUnregistered,
		Activity:   activity.Name,
		Email:      email,
		RosterSize: len(activity.Participants),
		OccurredAt: s.now().UTC(),
	})
	return fmt.Sprintf("Unregistered %s from %s", email, name), nil
}

// publish is best-effort: the roster change has already been applied.
func (s *Service) publish(ctx context.Context, change RosterChange) {
	if err := s.publisher.PublishRosterChange(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "roster change not published",
			slog.String("event_type", string(change.Type)),
			slog.String("activity", change.Activity),
			slog.Any("error", err),
		)
	}
}

// describe turns registry sentinels into caller-facing errors that still
// satisfy errors.Is.
func describe(err error, name, email string) error {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		return fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	case errors.Is(err, ErrAlreadySignedUp):
		return fmt.Errorf("%s is %w for %s", email, ErrAlreadySignedUp, name)
	case errors.Is(err, ErrNotRegistered):
		return fmt.Errorf("%s is %w for %s", email, ErrNotRegistered, name)
	default:
		return err
	}
}
