package store

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/gravity/pkg/model"
)

// DefaultSlot is the name the task array is stored under.
const DefaultSlot = "gravity_v1"

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Store persists the whole task collection as a single array under one slot.
// Load returns an empty collection when nothing has been saved yet. When some
// records fail to decode it returns the others with an error wrapping a
// *DecodeError; both that and unreadable data wrap ErrCorrupt.
type Store interface {
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is the JSON file (file backend) or database file (sqlite backend).
	Path string
	// DSN is the connection string for the postgres backend.
	DSN  string
	Slot string
}

// Open returns the backend named by opts.Backend.
func Open(opts Options) (Store, error) {
	slot := opts.Slot
	if slot == "" {
		slot = DefaultSlot
	}
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path), nil
	case BackendSQLite:
		s, err := OpenSQLite(opts.Path, slot)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := OpenPostgres(opts.DSN, slot)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
