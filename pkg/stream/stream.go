// Package stream turns the cursor-paged listing API into lazily
// evaluated, potentially infinite sequences of entities.
//
// Streams are pull-based: realizing the next element may block on a
// throttled network call, and nothing is fetched ahead of consumption.
// Cancellation is the consumer ceasing to pull (or cancelling the
// context passed to Next); a request already dispatched runs to
// completion and its result is simply discarded.
package stream

import (
	"context"
	"errors"
	"net/url"

	"github.com/clumsyjedi/mynx/pkg/things"
)

// ErrEndOfStream signals clean termination of a finite stream.
var ErrEndOfStream = errors.New("end of stream")

// Stream is a pull-based lazy sequence of entities. Streams are
// single-consumer; share entities, not streams, across goroutines.
type Stream interface {
	// Next returns the next entity, ErrEndOfStream on clean
	// termination, or the error that aborted the continuation.
	// Already-yielded entities stay valid either way.
	Next(ctx context.Context) (things.Entity, error)
}

// Lister fetches and decodes one listing page. *client.Client implements
// it; tests substitute fakes.
type Lister interface {
	Listing(ctx context.Context, path string, query url.Values) ([]things.Entity, error)
}

// Collect pulls up to max elements from s (all remaining when max <= 0).
// Elements pulled before an error are returned alongside it.
func Collect(ctx context.Context, s Stream, max int) ([]things.Entity, error) {
	var out []things.Entity
	for max <= 0 || len(out) < max {
		entity, err := s.Next(ctx)
		if errors.Is(err, ErrEndOfStream) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, entity)
	}
	return out, nil
}
