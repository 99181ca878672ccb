// Package checkpoint persists the last observed timestamp per water body,
// keyed by polygon identifier.
package checkpoint

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNoCheckpoint is returned when a polygon has no recorded checkpoint.
var ErrNoCheckpoint = eris.New("checkpoint: no checkpoint for polygon")

// Store maps a polygon identifier to the timestamp of its newest retained
// observation.
type Store interface {
	LastObserved(ctx context.Context, id string) (time.Time, error)
	SetLastObserved(ctx context.Context, id string, t time.Time) error
	Close() error
}
