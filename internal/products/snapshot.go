package products

import (
	"cmp"
	"slices"
	"time"
)

// Snapshot is a fully built, immutable view of one load. The repository
// publishes snapshots whole and never edits one after construction.
type Snapshot struct {
	products    map[string]Product
	order       []string
	ranking     map[string]int
	mostFirst   []ProductCount
	leastFirst  []ProductCount
	reviewCount int
	source      Descriptor
	loadedAt    time.Time
}

func newSnapshot(reviews []Review, source Descriptor, loadedAt time.Time) *Snapshot {
	grouped := make(map[string][]Review)
	order := make([]string, 0)
	for _, r := range reviews {
		if _, seen := grouped[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}
		grouped[r.ProductID] = append(grouped[r.ProductID], r)
	}

	s := &Snapshot{
		products:    make(map[string]Product, len(order)),
		order:       order,
		ranking:     make(map[string]int, len(order)),
		reviewCount: len(reviews),
		source:      source,
		loadedAt:    loadedAt,
	}

	counts := make([]ProductCount, 0, len(order))
	for _, id := range order {
		rs := grouped[id]
		s.products[id] = Product{ProductID: id, Reviews: rs, NumberOfReviews: len(rs)}
		s.ranking[id] = len(rs)
		counts = append(counts, ProductCount{ProductID: id, NumberOfReviews: len(rs)})
	}

	// Stable sorts keep first-seen order among equal counts.
	s.mostFirst = slices.Clone(counts)
	slices.SortStableFunc(s.mostFirst, func(a, b ProductCount) int {
		return cmp.Compare(b.NumberOfReviews, a.NumberOfReviews)
	})
	s.leastFirst = counts
	slices.SortStableFunc(s.leastFirst, func(a, b ProductCount) int {
		return cmp.Compare(a.NumberOfReviews, b.NumberOfReviews)
	})

	return s
}

func (s *Snapshot) stats() Stats {
	return Stats{
		Products: len(s.order),
		Reviews:  s.reviewCount,
		Source:   s.source,
		LoadedAt: s.loadedAt,
	}
}

func (s *Snapshot) product(id string) (Product, bool) {
	p, ok := s.products[id]
	if !ok {
		return Product{}, false
	}
	p.Reviews = slices.Clone(p.Reviews)
	return p, true
}

// firstN returns the first n entries of sorted plus every following entry
// tied with the n-th one.
func firstN(sorted []ProductCount, n int) []ProductCount {
	if n <= 0 {
		return []ProductCount{}
	}
	if n >= len(sorted) {
		return slices.Clone(sorted)
	}

	cut := n
	boundary := sorted[n-1].NumberOfReviews
	for cut < len(sorted) && sorted[cut].NumberOfReviews == boundary {
		cut++
	}
	return slices.Clone(sorted[:cut])
}
