// Package telemetry appends an audit trail of committed tracker mutations to a
// JSONL file. Every saved change, cascade delete, import and rejected
// operation is recorded as one structured JSON event per line.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of audit event.
const (
	KindCommit   = "commit"
	KindCascade  = "cascade"
	KindImport   = "import"
	KindRejected = "rejected"
)

// Event is a single audit record. Op names the tracker operation, such as
// "add requirement" or "move node"; EntityID is the entity it targeted when
// one is known.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Op        string    `json:"op,omitempty"`
	EntityID  string    `json:"entity,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes audit events to a JSONL file. It is safe for concurrent use
// by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter opens the JSONL file at path for appending, creating it if
// needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close closes the underlying file. Calling Close on a nil Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

// ReadEvents decodes a JSONL audit trail. Blank lines are skipped; a
// malformed line is an error naming its line number.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			return nil, fmt.Errorf("telemetry: line %d: %w", line, err)
		}
		events = append(events, evt)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("telemetry: read: %w", err)
	}
	return events, nil
}

// Tail returns the last n events, or all of them when n <= 0.
func Tail(events []Event, n int) []Event {
	if n <= 0 || n >= len(events) {
		return events
	}
	return events[len(events)-n:]
}
