package conformance

import (
	"context"
	"fmt"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/skeleton"
)

// ConstraintFamily names one of the six log skeleton constraint families.
type ConstraintFamily string

const (
	FamilyDirectlyFollows  ConstraintFamily = "directly_follows"
	FamilyAlwaysBefore     ConstraintFamily = "always_before"
	FamilyAlwaysAfter      ConstraintFamily = "always_after"
	FamilyEquivalence      ConstraintFamily = "equivalence"
	FamilyNeverTogether    ConstraintFamily = "never_together"
	FamilyActivOccurrences ConstraintFamily = "activ_occurrences"
)

// Violation identifies one violated constraint instance: the family plus the
// specific activity or activity pair.
type Violation struct {
	Family ConstraintFamily
	A      string
	B      string // empty for activ_occurrences
}

// String renders the violation marker.
func (v Violation) String() string {
	if v.B == "" {
		return fmt.Sprintf("%s(%s)", v.Family, v.A)
	}
	return fmt.Sprintf("%s(%s,%s)", v.Family, v.A, v.B)
}

// ViolationSet is the set of constraint instances one case violates. A case
// with an empty set is fully compliant.
type ViolationSet map[Violation]struct{}

// Has reports whether the set contains the violation.
func (s ViolationSet) Has(v Violation) bool {
	_, ok := s[v]
	return ok
}

func (s ViolationSet) add(family ConstraintFamily, a, b string) {
	s[Violation{Family: family, A: a, B: b}] = struct{}{}
}

// skeletonViolations evaluates the six constraint families independently for
// every case and returns one violation set per case, in log order.
func skeletonViolations(ctx context.Context, log *model.EventLog, skel *skeleton.Skeleton, p Properties) ([]ViolationSet, error) {
	results := make([]ViolationSet, len(log.Cases))
	for ci, c := range log.Cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeContextCanceled, "skeleton check aborted")
		}

		acts := c.Events.Activities(p.ActivityKey)
		counts := make(map[string]int)
		firstAt := make(map[string]int)
		lastAt := make(map[string]int)
		for i, a := range acts {
			counts[a]++
			if _, ok := firstAt[a]; !ok {
				firstAt[a] = i
			}
			lastAt[a] = i
		}

		vs := make(ViolationSet)

		// directly_follows: every occurrence of A immediately followed by B.
		for pair := range skel.DirectlyFollows {
			if counts[pair.A] == 0 {
				continue
			}
			for i, a := range acts {
				if a != pair.A {
					continue
				}
				if i+1 >= len(acts) || acts[i+1] != pair.B {
					vs.add(FamilyDirectlyFollows, pair.A, pair.B)
					break
				}
			}
		}

		// always_before: A requires a B strictly before its first occurrence.
		for pair := range skel.AlwaysBefore {
			if counts[pair.A] == 0 {
				continue
			}
			if b, ok := firstAt[pair.B]; !ok || b >= firstAt[pair.A] {
				vs.add(FamilyAlwaysBefore, pair.A, pair.B)
			}
		}

		// always_after: A requires a B strictly after its last occurrence.
		for pair := range skel.AlwaysAfter {
			if counts[pair.A] == 0 {
				continue
			}
			if b, ok := lastAt[pair.B]; !ok || b <= lastAt[pair.A] {
				vs.add(FamilyAlwaysAfter, pair.A, pair.B)
			}
		}

		// equivalence: equal occurrence counts.
		for pair := range skel.Equivalence {
			if counts[pair.A] != counts[pair.B] {
				vs.add(FamilyEquivalence, pair.A, pair.B)
			}
		}

		// never_together: the case must not contain both.
		for pair := range skel.NeverTogether {
			if counts[pair.A] > 0 && counts[pair.B] > 0 {
				vs.add(FamilyNeverTogether, pair.A, pair.B)
			}
		}

		// activ_occurrences: count must be in the allowed set; absence is
		// compliant only if 0 is allowed.
		for activity, allowed := range skel.ActivOccurrences {
			if _, ok := allowed[counts[activity]]; !ok {
				vs.add(FamilyActivOccurrences, activity, "")
			}
		}

		results[ci] = vs
	}
	return results, nil
}
