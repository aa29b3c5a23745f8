package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/conformly/conformly/internal/model"
)

// AnalyzeLog profiles an already-parsed event log in memory.
func AnalyzeLog(log *model.EventLog, keys Keys) *Summary {
	summary := &Summary{TotalCases: int64(len(log.Cases))}

	activityCounts := make(map[string]int64)
	variantCounts := make(map[string]int64)
	var minTS, maxTS time.Time

	for _, c := range log.Cases {
		n := int64(len(c.Events))
		summary.TotalEvents += n
		if summary.CaseStats.MinEventsPerCase == 0 || n < summary.CaseStats.MinEventsPerCase {
			summary.CaseStats.MinEventsPerCase = n
		}
		if n > summary.CaseStats.MaxEventsPerCase {
			summary.CaseStats.MaxEventsPerCase = n
		}

		activities := make([]string, 0, len(c.Events))
		for _, e := range c.Events {
			act, _ := e.String(keys.Activity)
			activities = append(activities, act)
			activityCounts[act]++
			if ts, ok := e.Time(keys.Timestamp); ok {
				if minTS.IsZero() || ts.Before(minTS) {
					minTS = ts
				}
				if ts.After(maxTS) {
					maxTS = ts
				}
			}
		}
		variantCounts[strings.Join(activities, " -> ")]++
	}

	summary.UniqueActivities = int64(len(activityCounts))
	if summary.TotalCases > 0 {
		summary.CaseStats.AvgEventsPerCase = float64(summary.TotalEvents) / float64(summary.TotalCases)
	}
	if !minTS.IsZero() {
		summary.TimeRange = TimeRange{Start: minTS, End: maxTS, Duration: maxTS.Sub(minTS)}
	}

	summary.TopActivities = topActivities(activityCounts, summary.TotalEvents, 10)
	summary.TopVariants = topVariants(variantCounts, summary.TotalCases, 10)
	return summary
}

func topActivities(counts map[string]int64, total int64, limit int) []ActivityCount {
	out := make([]ActivityCount, 0, len(counts))
	for act, cnt := range counts {
		out = append(out, ActivityCount{Activity: act, Count: cnt, Percent: percent(cnt, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Activity < out[j].Activity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topVariants(counts map[string]int64, total int64, limit int) []VariantCount {
	out := make([]VariantCount, 0, len(counts))
	for v, cnt := range counts {
		out = append(out, VariantCount{Variant: v, Count: cnt, Percent: percent(cnt, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Variant < out[j].Variant
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func percent(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}
