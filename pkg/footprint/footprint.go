// Package footprint implements the relation-footprint representation used
// for cheap approximate conformance comparison: every ordered activity pair
// is classified as directly-follows, parallel, or never-follows.
package footprint

import (
	"github.com/conformly/conformly/internal/model"
)

// Pair is an ordered activity pair.
type Pair struct {
	A, B string
}

// Footprint is the pairwise relation over activities derived from a log, a
// trace, or a model. Sequence holds pairs observed (or allowed) in exactly
// one direction; Parallel holds unordered pairs observed in both directions.
// Any pair in neither set is never-follows.
type Footprint struct {
	Activities map[string]struct{}
	Sequence   map[Pair]struct{}
	Parallel   map[Pair]struct{}
	Start      map[string]struct{}
	End        map[string]struct{}
}

// New creates an empty footprint.
func New() *Footprint {
	return &Footprint{
		Activities: make(map[string]struct{}),
		Sequence:   make(map[Pair]struct{}),
		Parallel:   make(map[Pair]struct{}),
		Start:      make(map[string]struct{}),
		End:        make(map[string]struct{}),
	}
}

// Allows reports whether the footprint permits b to directly follow a.
func (f *Footprint) Allows(a, b string) bool {
	if _, ok := f.Sequence[Pair{a, b}]; ok {
		return true
	}
	if _, ok := f.Parallel[Pair{a, b}]; ok {
		return true
	}
	if _, ok := f.Parallel[Pair{b, a}]; ok {
		return true
	}
	return false
}

// FromActivities discovers the footprint of a single activity sequence.
func FromActivities(activities []string) *Footprint {
	f := New()
	addSequence(f, activities)
	normalize(f)
	return f
}

// FromTrace discovers the footprint of one trace.
func FromTrace(tr model.Trace, activityKey string) *Footprint {
	return FromActivities(tr.Activities(activityKey))
}

// FromLog discovers the footprint of a whole structured log.
func FromLog(log *model.EventLog, activityKey string) *Footprint {
	f := New()
	for _, c := range log.Cases {
		addSequence(f, c.Events.Activities(activityKey))
	}
	normalize(f)
	return f
}

// addSequence records the directly-follows observations of one sequence into
// Sequence without normalizing the parallel relation yet.
func addSequence(f *Footprint, activities []string) {
	for _, a := range activities {
		f.Activities[a] = struct{}{}
	}
	if len(activities) > 0 {
		f.Start[activities[0]] = struct{}{}
		f.End[activities[len(activities)-1]] = struct{}{}
	}
	for i := 0; i+1 < len(activities); i++ {
		f.Sequence[Pair{activities[i], activities[i+1]}] = struct{}{}
	}
}

// normalize moves pairs observed in both directions from Sequence into
// Parallel, keeping the two relations disjoint.
func normalize(f *Footprint) {
	for p := range f.Sequence {
		rev := Pair{p.B, p.A}
		if _, ok := f.Sequence[rev]; ok {
			f.Parallel[p] = struct{}{}
		}
	}
	for p := range f.Parallel {
		delete(f.Sequence, p)
	}
}
