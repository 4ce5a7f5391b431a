package products

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"
)

// MaxRows caps how many review rows a single load ingests.
const MaxRows = 100

type Stats struct {
	Products int        `json:"products"`
	Reviews  int        `json:"reviews"`
	Source   Descriptor `json:"source"`
	LoadedAt time.Time  `json:"loaded_at"`
}

// Repository serves product queries from the most recently loaded snapshot.
// Loads build a new snapshot without touching the current one and publish
// it with a single pointer store, so readers never wait on a load and never
// see a half-built snapshot. Concurrent loads are not serialized: the last
// successful store wins.
//
// The zero value is ready to use and starts cleared.
type Repository struct {
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{now: time.Now}
}

// Load replaces the current snapshot with one built from src. On error the
// current snapshot is left as it was.
func (r *Repository) Load(ctx context.Context, src Source) error {
	_, err := r.load(ctx, src)
	return err
}

// load returns the snapshot it stored, which may already have been replaced
// by the time the caller looks at the repository again.
func (r *Repository) load(ctx context.Context, src Source) (*Snapshot, error) {
	reviews, err := src.ReadReviews(ctx, MaxRows)
	if err != nil {
		if errors.Is(err, ErrMalformedRecord) || errors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}
		return nil, unavailable("read reviews", err)
	}
	if len(reviews) > MaxRows {
		reviews = reviews[:MaxRows]
	}

	for i := range reviews {
		if err := validateReview(i+1, reviews[i]); err != nil {
			return nil, err
		}
	}

	s := newSnapshot(reviews, src.Descriptor(), r.clock())
	r.current.Store(s)
	return s, nil
}

func (r *Repository) Clear() {
	r.current.Store(nil)
}

func (r *Repository) Get(id string) (Product, error) {
	if s := r.current.Load(); s != nil {
		if p, ok := s.product(id); ok {
			return p, nil
		}
	}
	return Product{}, &ProductNotFoundError{ID: id}
}

func (r *Repository) HasProduct(id string) bool {
	s := r.current.Load()
	if s == nil {
		return false
	}
	_, ok := s.products[id]
	return ok
}

// AvailableProducts lists product ids in the order they first appeared in
// the source.
func (r *Repository) AvailableProducts() []string {
	s := r.current.Load()
	if s == nil {
		return []string{}
	}
	return slices.Clone(s.order)
}

// MostCommented ranks products by review count, highest first. Products tied
// with the n-th entry are all returned, so the result can be longer than n.
func (r *Repository) MostCommented(n int) ([]ProductCount, error) {
	s, err := r.ranked()
	if err != nil {
		return nil, err
	}
	return firstN(s.mostFirst, n), nil
}

// LeastCommented is MostCommented with the lowest counts first.
func (r *Repository) LeastCommented(n int) ([]ProductCount, error) {
	s, err := r.ranked()
	if err != nil {
		return nil, err
	}
	return firstN(s.leastFirst, n), nil
}

func (r *Repository) Stats() (Stats, bool) {
	s := r.current.Load()
	if s == nil {
		return Stats{}, false
	}
	return s.stats(), true
}

func (r *Repository) ranked() (*Snapshot, error) {
	s := r.current.Load()
	if s == nil || len(s.order) == 0 {
		return nil, ErrRepositoryEmpty
	}
	return s, nil
}

func (r *Repository) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}
