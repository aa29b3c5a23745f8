// Package align implements the alignment diagnostic engine: a minimal-cost
// pairing of trace moves and model moves explaining the observed behavior
// against a procedural model. Alignment results are the ground truth for
// fitness.
package align

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/cache"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/petri"
)

// Standard move costs, scaled so silent model moves stay negligible against
// genuine deviations.
const (
	costSync    = 0
	costTau     = 1
	costVisible = 10000
)

// MoveType classifies an alignment move.
type MoveType uint8

const (
	// MoveSync pairs a trace event with a model transition of equal label.
	MoveSync MoveType = iota
	// MoveModel fires a model transition with no trace counterpart.
	MoveModel
	// MoveLog consumes a trace event the model cannot mirror.
	MoveLog
)

// String returns the move type symbol.
func (m MoveType) String() string {
	switch m {
	case MoveSync:
		return "sync"
	case MoveModel:
		return "model"
	default:
		return "log"
	}
}

// Move is one step of an alignment.
type Move struct {
	Type       MoveType `json:"type"`
	Activity   string   `json:"activity,omitempty"`
	Transition string   `json:"transition,omitempty"`
}

// Result is the per-trace alignment record.
type Result struct {
	Moves []Move `json:"moves"`

	// Cost is the scaled search cost of the alignment.
	Cost int `json:"cost"`

	// Fitness is 1 minus the deviation cost relative to the worst case. It is
	// exactly 1.0 iff the trace needed no visible deviation.
	Fitness float64 `json:"fitness"`
}

// FiredTransitions returns the model-side transition names in firing order.
func (r Result) FiredTransitions() []string {
	var out []string
	for _, m := range r.Moves {
		if m.Type != MoveLog {
			out = append(out, m.Transition)
		}
	}
	return out
}

// Options controls log-level alignment.
type Options struct {
	// Parallel distributes traces across workers. Results keep log order.
	Parallel bool

	// NumWorkers caps the worker count; 0 means GOMAXPROCS.
	NumWorkers int

	// Cache memoizes alignments by (model hash, variant) across calls.
	Cache cache.Store
}

// Apply aligns every case of the log against the model, one result per case
// in log order. In parallel mode the unique variants are distributed across
// workers; the first error aborts the whole batch.
func Apply(ctx context.Context, log *model.EventLog, sys *petri.System, activityKey string, opts Options) ([]Result, error) {
	variants := make([][]string, len(log.Cases))
	keys := make([]string, len(log.Cases))
	unique := make(map[string][]string)
	for i, c := range log.Cases {
		acts := c.Events.Activities(activityKey)
		variants[i] = acts
		keys[i] = strings.Join(acts, "\x00")
		if _, ok := unique[keys[i]]; !ok {
			unique[keys[i]] = acts
		}
	}

	modelKey := hashSystem(sys)
	worst, err := worstCaseCost(sys)
	if err != nil {
		return nil, err
	}

	computed := make(map[string]Result, len(unique))
	uniqueKeys := make([]string, 0, len(unique))
	for k := range unique {
		uniqueKeys = append(uniqueKeys, k)
	}
	sort.Strings(uniqueKeys)

	if opts.Parallel && len(uniqueKeys) > 1 {
		results := make([]Result, len(uniqueKeys))
		g, gctx := errgroup.WithContext(ctx)
		workers := opts.NumWorkers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		g.SetLimit(workers)
		for i, k := range uniqueKeys {
			i, k := i, k
			g.Go(func() error {
				r, err := alignCached(gctx, unique[k], sys, worst, modelKey, opts.Cache)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, k := range uniqueKeys {
			computed[k] = results[i]
		}
	} else {
		for _, k := range uniqueKeys {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, errors.CodeContextCanceled, "alignment aborted")
			}
			r, err := alignCached(ctx, unique[k], sys, worst, modelKey, opts.Cache)
			if err != nil {
				return nil, err
			}
			computed[k] = r
		}
	}

	out := make([]Result, len(log.Cases))
	for i := range log.Cases {
		out[i] = computed[keys[i]]
	}
	return out, nil
}

// ApplyTrace aligns a single trace.
func ApplyTrace(tr model.Trace, sys *petri.System, activityKey string) (Result, error) {
	worst, err := worstCaseCost(sys)
	if err != nil {
		return Result{}, err
	}
	return alignVariant(tr.Activities(activityKey), sys, worst)
}

func alignCached(ctx context.Context, acts []string, sys *petri.System, worst int, modelKey string, store cache.Store) (Result, error) {
	if store == nil {
		return alignVariant(acts, sys, worst)
	}
	key := modelKey + "|" + strings.Join(acts, "\x00")
	if raw, ok, err := store.Get(ctx, key); err == nil && ok {
		var r Result
		if json.Unmarshal(raw, &r) == nil {
			return r, nil
		}
	}
	r, err := alignVariant(acts, sys, worst)
	if err != nil {
		return Result{}, err
	}
	if raw, err := json.Marshal(r); err == nil {
		// Best effort: a failed cache write never fails the alignment.
		_ = store.Set(ctx, key, raw)
	}
	return r, nil
}

// alignVariant computes the optimal alignment of one activity sequence.
func alignVariant(acts []string, sys *petri.System, worst int) (Result, error) {
	final, err := search(sys, acts)
	if err != nil {
		return Result{}, err
	}
	worstTotal := worst + costVisible*len(acts)
	fitness := 1.0
	if worstTotal > 0 {
		fitness = 1.0 - float64(final.fitCost)/float64(worstTotal)
	}
	if fitness < 0 {
		fitness = 0
	}
	return Result{Moves: final.moves(), Cost: final.cost, Fitness: fitness}, nil
}

// worstCaseCost is the deviation cost of aligning the empty trace: the
// cheapest pure-model path from the initial to the final marking, counting
// visible moves only.
func worstCaseCost(sys *petri.System) (int, error) {
	final, err := search(sys, nil)
	if err != nil {
		return 0, err
	}
	return final.fitCost, nil
}

// hashSystem fingerprints the model structure for cache keys.
func hashSystem(sys *petri.System) string {
	h := fnv.New64a()
	var lines []string
	for _, t := range sys.Net.Transitions() {
		line := t.Name + "/" + t.Label + "<-" + sys.Net.Pre(t).Key() + "->" + sys.Net.Post(t).Key()
		lines = append(lines, line)
	}
	sort.Strings(lines)
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{0})
	}
	h.Write([]byte(sys.InitialMarking.Key()))
	h.Write([]byte{0})
	h.Write([]byte(sys.FinalMarking.Key()))
	return fmt.Sprintf("%016x", h.Sum64())
}
