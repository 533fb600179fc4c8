// Package runtime persists named configuration predicates. Predicates are
// stored as their canonical text and re-parsed on load, so the database never
// holds a representation the parser cannot reproduce.
package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	cfgpred "github.com/cfgpred/cfgpred-go"
)

// StoredPredicate is one registry record. Source is canonical predicate text;
// Predicate is its parsed form, populated on store and load.
type StoredPredicate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Predicate cfgpred.Predicate `json:"-"`
}

// ChangeEvent describes a registry mutation.
type ChangeEvent struct {
	Op          string    `json:"op"` // "stored" or "deleted"
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChangePublisher receives registry change events. Implementations must not
// block the registry; publish failures are the publisher's problem to report.
type ChangePublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Registry stores named predicates.
type Registry interface {
	Store(ctx context.Context, name, source string) (*StoredPredicate, error)
	Get(ctx context.Context, name string) (*StoredPredicate, error)
	List(ctx context.Context) ([]*StoredPredicate, error)
	Delete(ctx context.Context, name string) error
	HealthCheck(ctx context.Context) error
}

// ErrNotFound is returned when a named predicate does not exist.
var ErrNotFound = fmt.Errorf("predicate not found")

// prepare parses and canonicalizes incoming source text. Storing an
// unparseable predicate is refused outright.
func prepare(name, source string) (string, string, cfgpred.Predicate, error) {
	if name == "" {
		return "", "", nil, fmt.Errorf("predicate name is required")
	}
	p, err := cfgpred.Parse(source)
	if err != nil {
		return "", "", nil, fmt.Errorf("parsing predicate %q: %w", name, err)
	}
	canonical := cfgpred.Format(p)
	return canonical, cfgpred.Fingerprint(p), p, nil
}

// InMemoryRegistry is a Registry for tests and single-process use.
type InMemoryRegistry struct {
	mu         sync.RWMutex
	predicates map[string]*StoredPredicate
	publisher  ChangePublisher
}

// NewInMemoryRegistry creates an empty in-memory registry. publisher may be
// nil.
func NewInMemoryRegistry(publisher ChangePublisher) *InMemoryRegistry {
	return &InMemoryRegistry{
		predicates: make(map[string]*StoredPredicate),
		publisher:  publisher,
	}
}

func (r *InMemoryRegistry) Store(ctx context.Context, name, source string) (*StoredPredicate, error) {
	canonical, fingerprint, parsed, err := prepare(name, source)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	now := time.Now().UTC()
	stored, ok := r.predicates[name]
	if ok {
		stored.Source = canonical
		stored.Fingerprint = fingerprint
		stored.Predicate = parsed
		stored.UpdatedAt = now
	} else {
		stored = &StoredPredicate{
			ID:          uuid.NewString(),
			Name:        name,
			Source:      canonical,
			Fingerprint: fingerprint,
			CreatedAt:   now,
			UpdatedAt:   now,
			Predicate:   parsed,
		}
		r.predicates[name] = stored
	}
	result := *stored
	r.mu.Unlock()

	r.publish(ctx, ChangeEvent{Op: "stored", Name: name, Fingerprint: fingerprint, Timestamp: now})
	return &result, nil
}

func (r *InMemoryRegistry) Get(ctx context.Context, name string) (*StoredPredicate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.predicates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	result := *stored
	return &result, nil
}

func (r *InMemoryRegistry) List(ctx context.Context) ([]*StoredPredicate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*StoredPredicate, 0, len(r.predicates))
	for _, stored := range r.predicates {
		result := *stored
		list = append(list, &result)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *InMemoryRegistry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	_, ok := r.predicates[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.predicates, name)
	r.mu.Unlock()

	r.publish(ctx, ChangeEvent{Op: "deleted", Name: name, Timestamp: time.Now().UTC()})
	return nil
}

func (r *InMemoryRegistry) HealthCheck(ctx context.Context) error {
	return nil
}

func (r *InMemoryRegistry) publish(ctx context.Context, event ChangeEvent) {
	if r.publisher == nil {
		return
	}
	// Best effort; the registry state has already changed.
	_ = r.publisher.Publish(ctx, event)
}
