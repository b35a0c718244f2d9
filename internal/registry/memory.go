// Package registry holds activity rosters for the directory service.
package registry

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"example.com/activitydirectory/internal/domain"
	"example.com/activitydirectory/internal/observability"
)

// InMemoryRegistry keeps the directory in process memory. State lasts for the
// lifetime of the value; nothing is persisted.
type InMemoryRegistry struct {
	mu         sync.RWMutex
	order      []string
	activities map[string]*domain.Activity
}

// NewInMemoryRegistry constructs a registry populated with seed, preserving
// its order. A repeated name replaces the earlier record in place.
func NewInMemoryRegistry(seed []domain.Activity) *InMemoryRegistry {
	r := &InMemoryRegistry{
		order:      make([]string, 0, len(seed)),
		activities: make(map[string]*domain.Activity, len(seed)),
	}
	for _, activity := range seed {
		if _, exists := r.activities[activity.Name]; !exists {
			r.order = append(r.order, activity.Name)
		}
		stored := activity.Clone()
		r.activities[activity.Name] = &stored
		observability.RecordRosterSize(stored.Name, len(stored.Participants))
	}
	return r
}

// List implements domain.Registry.
func (r *InMemoryRegistry) List(ctx context.Context) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(name string, _ int) domain.Activity {
		return r.activities[name].Clone()
	}), nil
}

// Get implements domain.Registry.
func (r *InMemoryRegistry) Get(ctx context.Context, name string) (domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	return activity.Clone(), nil
}

// AddParticipant implements domain.Registry.
func (r *InMemoryRegistry) AddParticipant(ctx context.Context, name, email string) (domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if activity.HasParticipant(email) {
		return domain.Activity{}, domain.ErrAlreadySignedUp
	}

	activity.Participants = append(activity.Participants, email)
	observability.RecordRosterSize(name, len(activity.Participants))
	return activity.Clone(), nil
}

// RemoveParticipant implements domain.Registry.
func (r *InMemoryRegistry) RemoveParticipant(ctx context.Context, name, email string) (domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if !activity.HasParticipant(email) {
		return domain.Activity{}, domain.ErrNotRegistered
	}

	activity.Participants = lo.Without(activity.Participants, email)
	observability.RecordRosterSize(name, len(activity.Participants))
	return activity.Clone(), nil
}
