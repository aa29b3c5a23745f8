// Package temporal implements the temporal profile model: elapsed-time
// statistics for ordered activity pairs, learned from historical data.
package temporal

// Pair is an ordered activity pair: Source occurs, Target completes later.
type Pair struct {
	Source, Target string
}

// Stats holds the expected elapsed-time statistics of a pair, in seconds.
type Stats struct {
	Mean   float64
	StdDev float64
}

// Profile maps ordered activity pairs to their gap statistics. Pairs absent
// from the profile carry no expectation and are never flagged.
type Profile map[Pair]Stats

// Set records the statistics for a pair.
func (p Profile) Set(source, target string, mean, stdDev float64) Profile {
	p[Pair{Source: source, Target: target}] = Stats{Mean: mean, StdDev: stdDev}
	return p
}

// Lookup returns the statistics for a pair.
func (p Profile) Lookup(source, target string) (Stats, bool) {
	s, ok := p[Pair{Source: source, Target: target}]
	return s, ok
}
