package conformance

import (
	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/cache"
	"github.com/conformly/conformly/pkg/errors"
)

// XES standard attribute keys, used as defaults everywhere.
const (
	DefaultActivityKey  = "concept:name"
	DefaultTimestampKey = "time:timestamp"
	DefaultCaseIDKey    = "case:concept:name"
)

// Properties is the immutable configuration record shared by every checking
// strategy: the three configurable field names plus algorithm extras.
type Properties struct {
	ActivityKey  string
	TimestampKey string
	CaseIDKey    string

	// Parallel requests the parallel variant of the alignment engine.
	// Replay and frequency-graph alignment ignore it.
	Parallel bool

	// NumWorkers caps parallel alignment workers; 0 means GOMAXPROCS.
	NumWorkers int

	// Zeta is the tolerance multiplier of the temporal deviation check.
	Zeta float64

	// AlignmentCache memoizes alignments across calls.
	AlignmentCache cache.Store

	// FootprintsOnPetriNets enables the footprint tier of the fitness cascade
	// for procedural models too. Off by default: footprint discovery over a
	// procedural model costs more than its verdicts save.
	FootprintsOnPetriNets bool
}

// Option customizes Properties.
type Option func(*Properties)

// WithActivityKey sets the activity attribute name.
func WithActivityKey(key string) Option {
	return func(p *Properties) { p.ActivityKey = key }
}

// WithTimestampKey sets the timestamp attribute name.
func WithTimestampKey(key string) Option {
	return func(p *Properties) { p.TimestampKey = key }
}

// WithCaseIDKey sets the case identifier attribute name.
func WithCaseIDKey(key string) Option {
	return func(p *Properties) { p.CaseIDKey = key }
}

// WithParallel enables the parallel alignment variant.
func WithParallel(parallel bool) Option {
	return func(p *Properties) { p.Parallel = parallel }
}

// WithNumWorkers caps the parallel alignment worker count.
func WithNumWorkers(n int) Option {
	return func(p *Properties) { p.NumWorkers = n }
}

// WithZeta sets the temporal tolerance multiplier.
func WithZeta(zeta float64) Option {
	return func(p *Properties) { p.Zeta = zeta }
}

// WithAlignmentCache sets the alignment variant cache.
func WithAlignmentCache(store cache.Store) Option {
	return func(p *Properties) { p.AlignmentCache = store }
}

// WithFootprintsOnPetriNets enables the footprint cascade tier for
// procedural models.
func WithFootprintsOnPetriNets(enabled bool) Option {
	return func(p *Properties) { p.FootprintsOnPetriNets = enabled }
}

// newProperties builds the configuration record and validates the log shape
// before any computation: unsupported shapes fail with an input shape error,
// table logs must carry the three configured columns.
func newProperties(log model.Log, opts ...Option) (Properties, error) {
	p := Properties{
		ActivityKey:  DefaultActivityKey,
		TimestampKey: DefaultTimestampKey,
		CaseIDKey:    DefaultCaseIDKey,
		Zeta:         1.0,
	}
	for _, opt := range opts {
		opt(&p)
	}

	switch l := log.(type) {
	case *model.EventLog:
		if l == nil {
			return Properties{}, errors.InputShape(log)
		}
	case *model.Table:
		if l == nil {
			return Properties{}, errors.InputShape(log)
		}
		for _, col := range []string{p.ActivityKey, p.TimestampKey, p.CaseIDKey} {
			if !l.HasColumn(col) {
				return Properties{}, errors.MissingColumn(col, l.ColumnNames())
			}
		}
	default:
		return Properties{}, errors.InputShape(log)
	}
	return p, nil
}

// asEventLog normalizes the validated log to its structured form.
func asEventLog(log model.Log, p Properties) (*model.EventLog, error) {
	switch l := log.(type) {
	case *model.EventLog:
		return l, nil
	case *model.Table:
		el, err := l.ToEventLog(p.ActivityKey, p.TimestampKey, p.CaseIDKey)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidFormat, "table conversion failed")
		}
		return el, nil
	default:
		return nil, errors.InputShape(log)
	}
}

// NormalizeLog validates a log and returns it in structured case form.
// Callers that need case identifiers for reporting use this to see the
// same normalization the verification entry points apply.
func NormalizeLog(log model.Log, opts ...Option) (*model.EventLog, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return nil, err
	}
	return asEventLog(log, p)
}
