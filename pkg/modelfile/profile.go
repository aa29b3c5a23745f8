package modelfile

import (
	"encoding/json"
	"os"

	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/skeleton"
	"github.com/conformly/conformly/pkg/temporal"
)

type profileSpec struct {
	Pairs []profilePair `json:"pairs"`
}

type profilePair struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// LoadTemporalProfile reads a temporal profile definition file.
func LoadTemporalProfile(path string) (temporal.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidFormat, "reading profile file %s", path)
	}

	var spec profileSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidFormat, "parsing profile file %s", path)
	}

	profile := temporal.Profile{}
	for _, p := range spec.Pairs {
		profile.Set(p.Source, p.Target, p.Mean, p.StdDev)
	}
	return profile, nil
}

type skeletonSpec struct {
	DirectlyFollows     [][2]string      `json:"directly_follows,omitempty"`
	AlwaysBefore        [][2]string      `json:"always_before,omitempty"`
	AlwaysAfter         [][2]string      `json:"always_after,omitempty"`
	Equivalence         [][2]string      `json:"equivalence,omitempty"`
	NeverTogether       [][2]string      `json:"never_together,omitempty"`
	ActivityOccurrences map[string][]int `json:"activity_occurrences,omitempty"`
}

// LoadSkeleton reads a log skeleton definition file.
func LoadSkeleton(path string) (*skeleton.Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidFormat, "reading skeleton file %s", path)
	}

	var spec skeletonSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidFormat, "parsing skeleton file %s", path)
	}

	skel := skeleton.New()
	for _, p := range spec.DirectlyFollows {
		skel.RequireDirectlyFollows(p[0], p[1])
	}
	for _, p := range spec.AlwaysBefore {
		skel.RequireBefore(p[0], p[1])
	}
	for _, p := range spec.AlwaysAfter {
		skel.RequireAfter(p[0], p[1])
	}
	for _, p := range spec.Equivalence {
		skel.RequireEquivalence(p[0], p[1])
	}
	for _, p := range spec.NeverTogether {
		skel.ForbidTogether(p[0], p[1])
	}
	for activity, counts := range spec.ActivityOccurrences {
		skel.AllowOccurrences(activity, counts...)
	}
	return skel, nil
}
