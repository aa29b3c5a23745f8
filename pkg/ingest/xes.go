package ingest

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/conformance"
)

// XES attribute key constants (byte slices for allocation-free comparison).
var (
	xesConceptName = []byte(conformance.DefaultActivityKey)
	xesTimeStamp   = []byte(conformance.DefaultTimestampKey)
)

// XML element names.
var (
	xmlTrace  = []byte("trace")
	xmlEvent  = []byte("event")
	xmlString = []byte("string")
	xmlDate   = []byte("date")
	xmlInt    = []byte("int")
	xmlFloat  = []byte("float")
	xmlBool   = []byte("boolean")
)

// XES parser states.
type xesState uint8

const (
	stateInit xesState = iota
	stateTrace
	stateEvent
)

// ParseXES parses an XES stream into a structured event log using a
// streaming state machine over the XML tags. Trace-level concept:name
// becomes the case id; event attributes carry over typed.
func ParseXES(ctx context.Context, r io.Reader) (*model.EventLog, error) {
	reader := bufio.NewReaderSize(r, 256*1024)
	log := &model.EventLog{}

	state := stateInit
	var current model.Case
	var currentEvent *model.Event

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('>')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) == 0 && err == io.EOF {
			break
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err == io.EOF {
				break
			}
			continue
		}

		switch {
		case isOpenTag(line, xmlTrace):
			state = stateTrace
			current = model.Case{}

		case isCloseTag(line, xmlTrace):
			log.Append(current)
			state = stateInit

		case isOpenTag(line, xmlEvent):
			state = stateEvent
			currentEvent = &model.Event{Attributes: make(map[string]any)}

		case isCloseTag(line, xmlEvent):
			if currentEvent != nil {
				current.Events = append(current.Events, *currentEvent)
				currentEvent = nil
			}
			state = stateTrace

		case state == stateTrace && isAttributeTag(line):
			key, value := extractAttribute(line)
			if bytes.Equal(key, xesConceptName) {
				current.ID = string(value)
			}

		case state == stateEvent && isAttributeTag(line):
			if currentEvent != nil {
				setEventAttribute(line, currentEvent)
			}
		}

		if err == io.EOF {
			break
		}
	}
	return log, nil
}

func isOpenTag(line, element []byte) bool {
	if len(line) < len(element)+2 || line[0] != '<' {
		return false
	}
	if !bytes.HasPrefix(line[1:], element) {
		return false
	}
	next := 1 + len(element)
	if next >= len(line) {
		return true
	}
	c := line[next]
	return c == '>' || c == ' ' || c == '\t'
}

func isCloseTag(line, element []byte) bool {
	if len(line) < len(element)+3 || line[0] != '<' {
		return false
	}
	if line[1] == '/' {
		return bytes.HasPrefix(line[2:], element)
	}
	// Self-closing <element ... />
	return bytes.HasPrefix(line[1:], element) &&
		line[len(line)-2] == '/' && line[len(line)-1] == '>'
}

func isAttributeTag(line []byte) bool {
	if len(line) < 3 || line[0] != '<' {
		return false
	}
	return bytes.HasPrefix(line[1:], xmlString) ||
		bytes.HasPrefix(line[1:], xmlDate) ||
		bytes.HasPrefix(line[1:], xmlInt) ||
		bytes.HasPrefix(line[1:], xmlFloat) ||
		bytes.HasPrefix(line[1:], xmlBool)
}

func extractAttribute(line []byte) (key, value []byte) {
	return extractAttrValue(line, []byte(`key="`)), extractAttrValue(line, []byte(`value="`))
}

func extractAttrValue(line, prefix []byte) []byte {
	idx := bytes.Index(line, prefix)
	if idx < 0 {
		return nil
	}
	start := idx + len(prefix)
	end := bytes.IndexByte(line[start:], '"')
	if end < 0 {
		return nil
	}
	return line[start : start+end]
}

// setEventAttribute stores an XES attribute on the event with its declared
// type: dates parse to time.Time, ints and floats to their Go types.
func setEventAttribute(line []byte, ev *model.Event) {
	key, value := extractAttribute(line)
	if key == nil || value == nil {
		return
	}
	keyStr := string(key)
	valueStr := string(value)

	switch {
	case bytes.Equal(key, xesTimeStamp) || bytes.HasPrefix(line[1:], xmlDate):
		if ts, err := model.ParseTimestamp(valueStr); err == nil {
			ev.Attributes[keyStr] = ts
		} else {
			ev.Attributes[keyStr] = valueStr
		}
	case bytes.HasPrefix(line[1:], xmlInt):
		if v, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			ev.Attributes[keyStr] = v
		} else {
			ev.Attributes[keyStr] = valueStr
		}
	case bytes.HasPrefix(line[1:], xmlFloat):
		if v, err := strconv.ParseFloat(valueStr, 64); err == nil {
			ev.Attributes[keyStr] = v
		} else {
			ev.Attributes[keyStr] = valueStr
		}
	case bytes.HasPrefix(line[1:], xmlBool):
		ev.Attributes[keyStr] = valueStr == "true"
	default:
		ev.Attributes[keyStr] = valueStr
	}
}
