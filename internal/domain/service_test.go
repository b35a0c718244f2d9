package domain_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/activitydirectory/internal/domain"
	"example.com/activitydirectory/internal/registry"
)

func newService(t *testing.T, opts ...domain.Option) *domain.Service {
	t.Helper()
	return domain.NewService(registry.NewInMemoryRegistry(domain.SeedActivities()), opts...)
}

func TestSeedValuesAreListed(t *testing.T) {
	expected := []struct {
		name            string
		description     string
		schedule        string
		maxParticipants int
	}{
		{"Soccer Team", "Join the school soccer team and compete in matches", "Tuesdays and Thursdays, 4:00 PM - 5:30 PM", 22},
		{"Basketball Club", "Practice basketball skills and play friendly games", "Wednesdays, 3:30 PM - 5:00 PM", 15},
		{"Chess Club", "Learn strategies and compete in chess tournaments", "Fridays, 3:30 PM - 5:00 PM", 12},
		{"Programming Class", "Learn programming fundamentals and build software projects", "Tuesdays and Thursdays, 3:30 PM - 4:30 PM", 20},
		{"Gym Class", "Physical education and sports activities", "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM", 30},
		{"Art Club", "Explore your creativity through painting and drawing", "Thursdays, 3:30 PM - 5:00 PM", 15},
		{"Drama Society", "Act, direct, and produce plays and performances", "Mondays and Wednesdays, 4:00 PM - 5:30 PM", 20},
		{"Mathletes", "Solve challenging problems and participate in math competitions", "Tuesdays, 3:30 PM - 4:30 PM", 10},
		{"Debate Club", "Develop public speaking and argumentation skills", "Fridays, 4:00 PM - 5:30 PM", 12},
	}

	activities, err := newService(t).ListActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, len(expected))

	for i, want := range expected {
		got := activities[i]
		require.Equal(t, want.name, got.Name, "position %d", i)
		require.Equal(t, want.description, got.Description, want.name)
		require.Equal(t, want.schedule, got.Schedule, want.name)
		require.Equal(t, want.maxParticipants, got.MaxParticipants, want.name)
		require.Empty(t, got.Participants, want.name)
	}
}

func TestSignUpTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	msg, err := service.SignUp(ctx, "Art Club", "duplicate@mergington.edu")
	require.NoError(t, err)
	require.Contains(t, msg, "duplicate@mergington.edu")
	require.Contains(t, msg, "Art Club")

	_, err = service.SignUp(ctx, "Art Club", "duplicate@mergington.edu")
	require.ErrorIs(t, err, domain.ErrAlreadySignedUp)
	require.Contains(t, err.Error(), "already signed up")
	require.Contains(t, err.Error(), "duplicate@mergington.edu")
	require.Contains(t, err.Error(), "Art Club")
}

func TestUnknownActivityIsNotFound(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	for _, email := range []string{"test@mergington.edu", "", "whatever"} {
		_, err := service.SignUp(ctx, "Nonexistent Activity", email)
		require.ErrorIs(t, err, domain.ErrActivityNotFound)
		require.Contains(t, err.Error(), "not found")
		require.Contains(t, err.Error(), "Nonexistent Activity")

		_, err = service.Unregister(ctx, "Nonexistent Activity", email)
		require.ErrorIs(t, err, domain.ErrActivityNotFound)
	}

	_, err := service.GetActivity(ctx, "chess club")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestSignUpUnregisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	_, err := service.SignUp(ctx, "Mathletes", "remove@mergington.edu")
	require.NoError(t, err)
	activity, err := service.GetActivity(ctx, "Mathletes")
	require.NoError(t, err)
	require.Contains(t, activity.Participants, "remove@mergington.edu")

	msg, err := service.Unregister(ctx, "Mathletes", "remove@mergington.edu")
	require.NoError(t, err)
	require.Contains(t, msg, "Unregistered")
	require.Contains(t, msg, "remove@mergington.edu")
	require.Contains(t, msg, "Mathletes")

	activity, err = service.GetActivity(ctx, "Mathletes")
	require.NoError(t, err)
	require.NotContains(t, activity.Participants, "remove@mergington.edu")
}

func TestUnregisterWithoutSignupIsRejected(t *testing.T) {
	service := newService(t)

	_, err := service.Unregister(context.Background(), "Debate Club", "not_registered@mergington.edu")
	require.ErrorIs(t, err, domain.ErrNotRegistered)
	require.Contains(t, err.Error(), "not registered")
	require.Contains(t, err.Error(), "not_registered@mergington.edu")
	require.Contains(t, err.Error(), "Debate Club")
}

func TestMaxParticipantsIsNotEnforced(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	chess, err := service.GetActivity(ctx, "Chess Club")
	require.NoError(t, err)
	require.Equal(t, 12, chess.MaxParticipants)

	for i := 0; i < chess.MaxParticipants+5; i++ {
		_, err := service.SignUp(ctx, "Chess Club", fmt.Sprintf("student%d@mergington.edu", i))
		require.NoError(t, err)
	}

	chess, err = service.GetActivity(ctx, "Chess Club")
	require.NoError(t, err)
	require.Len(t, chess.Participants, 17)
}

func TestPublisherReceivesOnlyAppliedChanges(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, time.September, 1, 15, 30, 0, 0, time.FixedZone("EDT", -4*60*60))
	publisher := &recordingPublisher{}
	service := newService(t, domain.WithPublisher(publisher), domain.WithClock(func() time.Time { return fixed }))

	_, err := service.SignUp(ctx, "Soccer Team", "a@mergington.edu")
	require.NoError(t, err)
	_, err = service.SignUp(ctx, "Soccer Team", "a@mergington.edu")
	require.Error(t, err)
	_, err = service.Unregister(ctx, "Soccer Team", "b@mergington.edu")
	require.Error(t, err)
	_, err = service.Unregister(ctx, "Soccer Team", "a@mergington.edu")
	require.NoError(t, err)

	require.Equal(t, []domain.RosterChange{
		{
			Type:       domain.RosterChangeSignedUp,
			Activity:   "Soccer Team",
			Email:      "a@mergington.edu",
			RosterSize: 1,
			OccurredAt: fixed.UTC(),
		},
		{
			Type:       domain.RosterChangeUnregistered,
			Activity:   "Soccer Team",
			Email:      "a@mergington.edu",
			RosterSize: 0,
			OccurredAt: fixed.UTC(),
		},
	}, publisher.changes)
}

func TestPublishFailureDoesNotFailSignup(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	service := newService(t,
		domain.WithPublisher(&recordingPublisher{err: errors.New("broker unavailable")}),
		domain.WithLogger(logger),
	)

	_, err := service.SignUp(ctx, "Basketball Club", "student@mergington.edu")
	require.NoError(t, err)

	activity, err := service.GetActivity(ctx, "Basketball Club")
	require.NoError(t, err)
	require.Equal(t, []string{"student@mergington.edu"}, activity.Participants)
	require.Contains(t, logs.String(), "broker unavailable")
}

type recordingPublisher struct {
	changes []domain.RosterChange
	err     error
}

func (p *recordingPublisher) PublishRosterChange(_ context.Context, change domain.RosterChange) error {
	p.changes = append(p.changes, change)
	return p.err
}
