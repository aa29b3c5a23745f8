// Package skeleton implements the log skeleton declarative model: six
// independent constraint families over activities and activity pairs.
package skeleton

// Pair is an ordered activity pair of a binary constraint.
type Pair struct {
	A, B string
}

// Skeleton is a declarative rule set. Each family is evaluated independently
// during conformance checking:
//
//   - DirectlyFollows: every occurrence of A must be immediately followed by B.
//   - AlwaysBefore: if A occurs, B must occur somewhere strictly before it.
//   - AlwaysAfter: if A occurs, B must occur somewhere strictly after it.
//   - Equivalence: A and B must occur equally often within a case.
//   - NeverTogether: a case must not contain both A and B.
//   - ActivOccurrences: the case-level occurrence count of an activity must be
//     a member of its allowed-count set.
type Skeleton struct {
	DirectlyFollows  map[Pair]struct{}
	AlwaysBefore     map[Pair]struct{}
	AlwaysAfter      map[Pair]struct{}
	Equivalence      map[Pair]struct{}
	NeverTogether    map[Pair]struct{}
	ActivOccurrences map[string]map[int]struct{}
}

// New creates an empty skeleton.
func New() *Skeleton {
	return &Skeleton{
		DirectlyFollows:  make(map[Pair]struct{}),
		AlwaysBefore:     make(map[Pair]struct{}),
		AlwaysAfter:      make(map[Pair]struct{}),
		Equivalence:      make(map[Pair]struct{}),
		NeverTogether:    make(map[Pair]struct{}),
		ActivOccurrences: make(map[string]map[int]struct{}),
	}
}

// RequireDirectlyFollows adds a directly-follows constraint.
func (s *Skeleton) RequireDirectlyFollows(a, b string) *Skeleton {
	s.DirectlyFollows[Pair{a, b}] = struct{}{}
	return s
}

// RequireBefore adds an always-before constraint: a requires an earlier b.
func (s *Skeleton) RequireBefore(a, b string) *Skeleton {
	s.AlwaysBefore[Pair{a, b}] = struct{}{}
	return s
}

// RequireAfter adds an always-after constraint: a requires a later b.
func (s *Skeleton) RequireAfter(a, b string) *Skeleton {
	s.AlwaysAfter[Pair{a, b}] = struct{}{}
	return s
}

// RequireEquivalence adds an equal-occurrence-count constraint.
func (s *Skeleton) RequireEquivalence(a, b string) *Skeleton {
	s.Equivalence[Pair{a, b}] = struct{}{}
	return s
}

// ForbidTogether adds a never-together constraint.
func (s *Skeleton) ForbidTogether(a, b string) *Skeleton {
	s.NeverTogether[Pair{a, b}] = struct{}{}
	return s
}

// AllowOccurrences sets the allowed case-level occurrence counts of an
// activity. An activity with no stated constraint is unconstrained.
func (s *Skeleton) AllowOccurrences(activity string, counts ...int) *Skeleton {
	set := make(map[int]struct{}, len(counts))
	for _, c := range counts {
		set[c] = struct{}{}
	}
	s.ActivOccurrences[activity] = set
	return s
}
