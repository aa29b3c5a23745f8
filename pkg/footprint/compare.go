package footprint

import "sort"

// Comparison is the result of checking an observed footprint against a model
// footprint. Violations lists the observed directly-follows pairs the model
// forbids, in deterministic order.
type Comparison struct {
	IsFit      bool
	Violations []Pair
}

// Compare checks every directly-follows observation of the observed footprint
// against the model footprint. A reported violation is conclusive evidence of
// non-fitness; an empty violation list is only evidence the observation might
// fit, since footprints abstract away ordering constraints beyond adjacent
// pairs.
func Compare(observed, mod *Footprint) Comparison {
	var violations []Pair
	for p := range observed.Sequence {
		if !mod.Allows(p.A, p.B) {
			violations = append(violations, p)
		}
	}
	for p := range observed.Parallel {
		if !mod.Allows(p.A, p.B) {
			violations = append(violations, p)
		}
	}
	for a := range observed.Activities {
		if _, ok := mod.Activities[a]; !ok {
			violations = append(violations, Pair{A: a})
		}
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].A != violations[j].A {
			return violations[i].A < violations[j].A
		}
		return violations[i].B < violations[j].B
	})
	return Comparison{IsFit: len(violations) == 0, Violations: violations}
}

// Fitness computes the share of observed directly-follows pairs the model
// allows, in [0,1]. An observation with no pairs is fully fit.
func Fitness(observed, mod *Footprint) float64 {
	total := len(observed.Sequence) + len(observed.Parallel)
	if total == 0 {
		return 1.0
	}
	cmp := Compare(observed, mod)
	violating := 0
	for _, v := range cmp.Violations {
		if v.B != "" {
			violating++
		}
	}
	if violating > total {
		violating = total
	}
	return 1.0 - float64(violating)/float64(total)
}

// Precision computes the share of model-allowed pairs actually observed, in
// [0,1]. A model allowing nothing is perfectly precise.
func Precision(observed, mod *Footprint) float64 {
	allowed := len(mod.Sequence) + len(mod.Parallel)
	if allowed == 0 {
		return 1.0
	}
	seen := 0
	for p := range mod.Sequence {
		if _, ok := observed.Sequence[p]; ok {
			seen++
		} else if _, ok := observed.Parallel[p]; ok {
			seen++
		}
	}
	for p := range mod.Parallel {
		if _, ok := observed.Parallel[p]; ok {
			seen++
		} else if _, ok := observed.Sequence[p]; ok {
			seen++
		} else if _, ok := observed.Sequence[Pair{p.B, p.A}]; ok {
			seen++
		}
	}
	return float64(seen) / float64(allowed)
}
