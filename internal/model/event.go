// Package model defines the core event log structures for Conformly.
package model

import "time"

// Event is a single activity occurrence: a mapping from attribute name to
// value. Every event must carry at least the configured activity attribute;
// temporal checks additionally require the timestamp attribute.
type Event struct {
	Attributes map[string]any
}

// NewEvent creates an event with the given activity under the given key.
func NewEvent(activityKey, activity string) Event {
	return Event{Attributes: map[string]any{activityKey: activity}}
}

// String returns the attribute value as a string.
func (e Event) String(key string) (string, bool) {
	v, ok := e.Attributes[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Time returns the attribute value as a timestamp. String values are parsed
// with the supported layouts, so flat tables with textual timestamp columns
// work without a prior conversion pass.
func (e Event) Time(key string) (time.Time, bool) {
	v, ok := e.Attributes[key]
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := ParseTimestamp(t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// Trace is an ordered sequence of events. The sequence order is the ground
// truth ordering for control-flow checks; timestamps are informative only.
type Trace []Event

// Activities projects the trace onto its activity labels under the given key.
// Events missing the key are skipped.
func (t Trace) Activities(activityKey string) []string {
	acts := make([]string, 0, len(t))
	for _, e := range t {
		if a, ok := e.String(activityKey); ok {
			acts = append(acts, a)
		}
	}
	return acts
}

// Case groups one trace under a case identifier.
type Case struct {
	ID     string
	Events Trace
}

// EventLog is a structured collection of cases.
type EventLog struct {
	Cases []Case
}

// NewEventLog creates an event log from the given cases.
func NewEventLog(cases ...Case) *EventLog {
	return &EventLog{Cases: cases}
}

// Append adds a case to the log.
func (l *EventLog) Append(c Case) {
	l.Cases = append(l.Cases, c)
}

// NumCases returns the number of cases in the log.
func (l *EventLog) NumCases() int {
	return len(l.Cases)
}

func (l *EventLog) isLog() {}

// TraceFromActivities promotes a plain activity sequence (a variant) to a
// trace with one event per activity.
func TraceFromActivities(activityKey string, activities []string) Trace {
	tr := make(Trace, 0, len(activities))
	for _, a := range activities {
		tr = append(tr, NewEvent(activityKey, a))
	}
	return tr
}

// Log is the closed set of supported log shapes: a structured EventLog or a
// flat Table. Anything else is rejected before computation.
type Log interface {
	isLog()
}
