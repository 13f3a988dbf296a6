package preference

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/jsonfile"
)

// Rating bounds accepted by AddFeedback.
const (
	MinRating = 1
	MaxRating = 5
)

// repository loads and saves whole profiles; Store serialises access.
type repository interface {
	load(userID string) (*core.UserProfile, error)
	save(userID string, p *core.UserProfile) error
}

// Store is a PreferenceStore over a profile repository. Every operation is a
// read-modify-write of the user's profile under a store-wide mutex.
type Store struct {
	mu   sync.Mutex
	repo repository
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for feedback timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func newStore(repo repository, opts []Option) *Store {
	s := &Store{repo: repo, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryStore returns a volatile preference store.
func NewInMemoryStore(opts ...Option) *Store {
	return newStore(&memoryRepo{profiles: map[string]*core.UserProfile{}}, opts)
}

// NewFileStore returns a store writing <dir>/<user_id>.json profiles.
func NewFileStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preference directory: %w", err)
	}
	return newStore(&fileRepo{dir: dir}, opts), nil
}

func (s *Store) read(userID string) (*core.UserProfile, error) {
	if userID == "" {
		return nil, core.NewValidationError("user_id", "required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.load(userID)
}

func (s *Store) modify(userID string, fn func(p *core.UserProfile) (bool, error)) error {
	if userID == "" {
		return core.NewValidationError("user_id", "required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.repo.load(userID)
	if err != nil {
		return err
	}
	changed, err := fn(p)
	if err != nil || !changed {
		return err
	}
	return s.repo.save(userID, p)
}

// SavePreference sets key to value in the user's preferences.
func (s *Store) SavePreference(_ context.Context, userID, key string, value any) error {
	if key == "" {
		return core.NewValidationError("key", "required")
	}
	return s.modify(userID, func(p *core.UserProfile) (bool, error) {
		p.Preferences[key] = value
		return true, nil
	})
}

// GetPreference returns the value for key and whether it was set.
func (s *Store) GetPreference(_ context.Context, userID, key string) (any, bool, error) {
	p, err := s.read(userID)
	if err != nil {
		return nil, false, err
	}
	v, ok := p.Preferences[key]
	return v, ok, nil
}

// GetAllPreferences returns a copy of the user's preferences, empty if none.
func (s *Store) GetAllPreferences(_ context.Context, userID string) (map[string]any, error) {
	p, err := s.read(userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(p.Preferences))
	for k, v := range p.Preferences {
		out[k] = v
	}
	return out, nil
}

// AddFeedback appends a rating for itemID.
func (s *Store) AddFeedback(_ context.Context, userID, itemID string, rating float64) error {
	if itemID == "" {
		return core.NewValidationError("item_id", "required")
	}
	if rating < MinRating || rating > MaxRating {
		return core.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
	}
	return s.modify(userID, func(p *core.UserProfile) (bool, error) {
		p.Feedback = append(p.Feedback, core.Feedback{ItemID: itemID, Rating: rating, Timestamp: s.now()})
		return true, nil
	})
}

// FeedbackHistory returns the user's ratings in insertion order.
func (s *Store) FeedbackHistory(_ context.Context, userID string) ([]core.Feedback, error) {
	p, err := s.read(userID)
	if err != nil {
		return nil, err
	}
	return append([]core.Feedback{}, p.Feedback...), nil
}

// SetPantry replaces the pantry, dropping blanks and duplicates.
func (s *Store) SetPantry(_ context.Context, userID string, items []string) error {
	return s.modify(userID, func(p *core.UserProfile) (bool, error) {
		p.Pantry = p.Pantry[:0]
		for _, item := range items {
			p.Pantry = addUnique(p.Pantry, item)
		}
		return true, nil
	})
}

// Pantry returns the user's pantry items.
func (s *Store) Pantry(_ context.Context, userID string) ([]string, error) {
	p, err := s.read(userID)
	if err != nil {
		return nil, err
	}
	return append([]string{}, p.Pantry...), nil
}

// AddPantryItem adds item unless already present.
func (s *Store) AddPantryItem(_ context.Context, userID, item string) error {
	if strings.TrimSpace(item) == "" {
		return core.NewValidationError("item", "required")
	}
	return s.modify(userID, func(p *core.UserProfile) (bool, error) {
		before := len(p.Pantry)
		p.Pantry = addUnique(p.Pantry, item)
		return len(p.Pantry) != before, nil
	})
}

// RemovePantryItem removes item if present.
func (s *Store) RemovePantryItem(_ context.Context, userID, item string) error {
	return s.modify(userID, func(p *core.UserProfile) (bool, error) {
		for i, have := range p.Pantry {
			if have == strings.TrimSpace(item) {
				p.Pantry = append(p.Pantry[:i], p.Pantry[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
}

func addUnique(items []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return items
	}
	for _, have := range items {
		if have == item {
			return items
		}
	}
	return append(items, item)
}

type memoryRepo struct {
	profiles map[string]*core.UserProfile
}

func (r *memoryRepo) load(userID string) (*core.UserProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return core.NewUserProfile(), nil
	}
	return cloneProfile(p), nil
}

func (r *memoryRepo) save(userID string, p *core.UserProfile) error {
	r.profiles[userID] = cloneProfile(p)
	return nil
}

func cloneProfile(p *core.UserProfile) *core.UserProfile {
	c := core.NewUserProfile()
	for k, v := range p.Preferences {
		c.Preferences[k] = v
	}
	c.Feedback = append(c.Feedback, p.Feedback...)
	c.Pantry = append(c.Pantry, p.Pantry...)
	return c
}

type fileRepo struct {
	dir string
}

func (r *fileRepo) load(userID string) (*core.UserProfile, error) {
	p := core.NewUserProfile()
	if _, err := jsonfile.Read(jsonfile.Name(r.dir, userID), p); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", userID, err)
	}
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}
	return p, nil
}

func (r *fileRepo) save(userID string, p *core.UserProfile) error {
	if err := jsonfile.Write(jsonfile.Name(r.dir, userID), p); err != nil {
		return fmt.Errorf("write profile %s: %w", userID, err)
	}
	return nil
}

// ProfilePath returns the file a FileStore-backed Store writes for userID.
func ProfilePath(dir, userID string) string {
	return filepath.Clean(jsonfile.Name(dir, userID))
}
