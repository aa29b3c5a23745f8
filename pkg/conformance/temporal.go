package conformance

import (
	"context"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/temporal"
)

// TemporalDeviation is one statistically anomalous activity pair occurrence
// within a case: the source activity occurred, the target activity completed
// later, and the elapsed gap fell outside mean ± zeta·stdev.
type TemporalDeviation struct {
	Source string
	Target string

	// ObservedGap is the elapsed time between the two events, in seconds.
	ObservedGap float64

	// ExpectedMean and ExpectedStdDev are the profile statistics, in seconds.
	ExpectedMean   float64
	ExpectedStdDev float64

	// AllowedBound is zeta times the expected standard deviation: the maximum
	// tolerated distance from the mean.
	AllowedBound float64
}

// temporalDeviations runs the temporal profile check over every case. Case
// order follows the log; within a case, deviations are reported in the order
// the qualifying pair completes (later event first, earlier event breaking
// ties). Pairs without a profile entry carry no expectation and are skipped.
func temporalDeviations(ctx context.Context, log *model.EventLog, profile temporal.Profile, p Properties) ([][]TemporalDeviation, error) {
	results := make([][]TemporalDeviation, len(log.Cases))
	for ci, c := range log.Cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeContextCanceled, "temporal check aborted")
		}

		type occ struct {
			activity string
			at       float64 // seconds since epoch
		}
		occs := make([]occ, 0, len(c.Events))
		for _, e := range c.Events {
			act, okA := e.String(p.ActivityKey)
			ts, okT := e.Time(p.TimestampKey)
			if !okA || !okT {
				continue
			}
			occs = append(occs, occ{activity: act, at: float64(ts.UnixNano()) / 1e9})
		}

		var deviations []TemporalDeviation
		for j := 1; j < len(occs); j++ {
			for i := 0; i < j; i++ {
				stats, ok := profile.Lookup(occs[i].activity, occs[j].activity)
				if !ok {
					continue
				}
				gap := occs[j].at - occs[i].at
				diff := gap - stats.Mean
				if diff < 0 {
					diff = -diff
				}
				if diff > p.Zeta*stats.StdDev {
					deviations = append(deviations, TemporalDeviation{
						Source:         occs[i].activity,
						Target:         occs[j].activity,
						ObservedGap:    gap,
						ExpectedMean:   stats.Mean,
						ExpectedStdDev: stats.StdDev,
						AllowedBound:   p.Zeta * stats.StdDev,
					})
				}
			}
		}
		results[ci] = deviations
	}
	return results, nil
}
