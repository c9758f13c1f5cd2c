package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/gravity/pkg/model"
)

// ErrCorrupt marks stored data that could not be decoded in full.
// Saving over it would lose whatever failed to decode.
var ErrCorrupt = errors.New("stored tasks are corrupt")

// RecordError describes one stored record that could not be decoded.
type RecordError struct {
	Index int
	// ID is the record's id when it could still be read.
	ID  string
	Err error
}

// DecodeError is returned by Load alongside the records that did decode.
type DecodeError struct {
	Records []RecordError
}

func (e *DecodeError) Error() string {
	parts := make([]string, len(e.Records))
	for i, r := range e.Records {
		parts[i] = fmt.Sprintf("record %d (%s): %v", r.Index, r.ID, r.Err)
	}
	return fmt.Sprintf("%d undecodable record(s): %s", len(e.Records), strings.Join(parts, "; "))
}

func (e *DecodeError) Unwrap() error { return ErrCorrupt }

// decodeTasks decodes the stored array one record at a time. A record that
// fails is reported in a *DecodeError and the rest are still returned. Data
// that is not an array at all fails with ErrCorrupt and no tasks.
func decodeTasks(data []byte) ([]model.Task, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	tasks := make([]model.Task, 0, len(raw))
	var bad []RecordError
	for i, rec := range raw {
		var t model.Task
		if err := json.Unmarshal(rec, &t); err != nil {
			var head struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(rec, &head)
			bad = append(bad, RecordError{Index: i, ID: head.ID, Err: err})
			continue
		}
		tasks = append(tasks, t)
	}
	if len(bad) > 0 {
		return tasks, &DecodeError{Records: bad}
	}
	return tasks, nil
}
