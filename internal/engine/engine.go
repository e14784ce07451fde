// Package engine implements the combination-sum search: given an ordered pool of
// numeric cells, it enumerates every duplicate-free subset whose sum falls inside an
// inclusive tolerance window around a target value.
//
// The engine is a pure function of its inputs. It holds no state between calls, never
// mutates the caller's slices, and never reorders the pool. Callers who want the fast
// path should supply items sorted descending by value (see SortDescending); correctness
// does not depend on input order, only pruning efficiency does.
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Epsilon is the comparison slack used when Tolerance is zero, so that exact-match
// searches absorb floating-point accumulation error across many additions.
const Epsilon = 1e-9

// cancelCheckInterval bounds how many recursion steps may pass between context polls.
const cancelCheckInterval = 4096

// Item is one candidate cell: a numeric value plus the caller's opaque identifier.
// The engine never interprets IDs; it only guarantees each ID is used at most once
// per combination.
type Item struct {
	Value float64
	ID    string
}

// Request describes a single search invocation. MaxLength and MaxResults of zero mean
// unbounded; negative values are rejected.
type Request struct {
	Items      []Item
	Target     float64
	Tolerance  float64
	MaxLength  int
	MaxResults int
}

// Combination is one qualifying subset. Items appear in ascending pool-index order.
// Exact reports whether the sum matched the target to within Epsilon, as opposed to
// merely falling inside a non-zero tolerance window.
type Combination struct {
	Items []Item
	Sum   float64
	Exact bool
}

// IDs returns the identifiers of the combination's items, in item order.
func (c Combination) IDs() []string {
	ids := make([]string, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ID
	}
	return ids
}

// InvalidParameterError reports a malformed Request. It is returned before any search
// work begins.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// SortDescending sorts items in place by value, largest first. The sort is stable, so
// equal values keep their input order and search results stay deterministic. Sorting
// is the caller's job; Search itself never reorders the pool.
func SortDescending(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Value > items[j].Value
	})
}

// within is the single comparison routine deciding whether a sum qualifies. A zero
// tolerance compares with Epsilon rather than bit-exact equality.
func within(sum, target, tolerance float64) bool {
	diff := math.Abs(sum - target)
	if tolerance == 0 {
		return diff <= Epsilon
	}
	return diff <= tolerance
}

// Search enumerates qualifying combinations in deterministic discovery order.
//
// Items whose ID appears in excluded are removed from consideration before the search
// begins. The search stops when the pool is exhausted, when MaxResults combinations
// have been found, or when ctx is cancelled; in the cancelled case the combinations
// found so far are returned together with ctx.Err().
func Search(ctx context.Context, req Request, excluded map[string]struct{}) ([]Combination, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	pool := make([]Item, 0, len(req.Items))
	for _, it := range req.Items {
		if _, skip := excluded[it.ID]; skip {
			continue
		}
		pool = append(pool, it)
	}

	s := &searcher{
		ctx:        ctx,
		pool:       pool,
		target:     req.Target,
		tolerance:  req.Tolerance,
		maxLength:  req.MaxLength,
		maxResults: req.MaxResults,
	}
	s.prepareBounds()

	err := s.walk(0, 0)
	return s.results, err
}

// validate enforces the Request preconditions.
func validate(req Request) error {
	if math.IsNaN(req.Target) || math.IsInf(req.Target, 0) {
		return &InvalidParameterError{Param: "target", Reason: "must be a finite number"}
	}
	if math.IsNaN(req.Tolerance) || math.IsInf(req.Tolerance, 0) {
		return &InvalidParameterError{Param: "tolerance", Reason: "must be a finite number"}
	}
	if req.Tolerance < 0 {
		return &InvalidParameterError{Param: "tolerance", Reason: "must not be negative"}
	}
	if req.MaxLength < 0 {
		return &InvalidParameterError{Param: "max_length", Reason: "must be positive when set"}
	}
	if req.MaxResults < 0 {
		return &InvalidParameterError{Param: "max_results", Reason: "must be positive when set"}
	}
	for _, it := range req.Items {
		if math.IsNaN(it.Value) || math.IsInf(it.Value, 0) {
			return &InvalidParameterError{Param: "items", Reason: fmt.Sprintf("value for %q must be a finite number", it.ID)}
		}
	}
	return nil
}

type searcher struct {
	ctx        context.Context
	pool       []Item
	target     float64
	tolerance  float64
	maxLength  int
	maxResults int

	// prunable is true when every pool value is non-negative; only then are the
	// window bounds and suffix sums sound regardless of input order. Pools with
	// negative values fall back to the exhaustive scan.
	prunable bool
	upper    float64
	lower    float64
	suffix   []float64

	partial []Item
	results []Combination
	steps   int
}

// prepareBounds precomputes the pruning data: the inclusive window edges (widened by
// Epsilon so pruning can never discard a sum that within would accept) and the suffix
// sums used for the lower-bound feasibility check.
func (s *searcher) prepareBounds() {
	s.prunable = true
	for _, it := range s.pool {
		if it.Value < 0 {
			s.prunable = false
			break
		}
	}

	win := s.tolerance
	if win == 0 {
		win = Epsilon
	}
	s.upper = s.target + win + Epsilon
	s.lower = s.target - win - Epsilon

	if s.prunable {
		s.suffix = make([]float64, len(s.pool)+1)
		for i := len(s.pool) - 1; i >= 0; i-- {
			s.suffix[i] = s.suffix[i+1] + s.pool[i].Value
		}
	}
}

func (s *searcher) done() bool {
	return s.maxResults > 0 && len(s.results) >= s.maxResults
}

// tick polls the context once every cancelCheckInterval steps.
func (s *searcher) tick() error {
	s.steps++
	if s.steps%cancelCheckInterval == 0 {
		return s.ctx.Err()
	}
	return nil
}

func (s *searcher) emit(sum float64) {
	items := make([]Item, len(s.partial))
	copy(items, s.partial)
	s.results = append(s.results, Combination{
		Items: items,
		Sum:   sum,
		Exact: math.Abs(sum-s.target) <= Epsilon,
	})
}

// walk is the depth-first backtracking search. Candidates are chosen by scanning
// forward from the last-chosen index, so every ID-subset is visited exactly once and
// discovery order is deterministic.
func (s *searcher) walk(start int, sum float64) error {
	if err := s.tick(); err != nil {
		return err
	}

	// A qualifying partial combination is emitted immediately; extensions of it may
	// still qualify independently and are explored below.
	if len(s.partial) > 0 && within(sum, s.target, s.tolerance) {
		s.emit(sum)
		if s.done() {
			return nil
		}
	}

	if s.maxLength > 0 && len(s.partial) >= s.maxLength {
		return nil
	}

	for i := start; i < len(s.pool); i++ {
		next := sum + s.pool[i].Value

		if s.prunable {
			// Any superset containing item i sums to at least next.
			if next > s.upper {
				continue
			}
			// Even taking every remaining item cannot reach the window.
			if sum+s.suffix[i] < s.lower {
				return nil
			}
		}

		s.partial = append(s.partial, s.pool[i])
		err := s.walk(i+1, next)
		s.partial = s.partial[:len(s.partial)-1]
		if err != nil {
			return err
		}
		if s.done() {
			return nil
		}
	}

	return nil
}
