package stream

import (
	"context"
	"errors"

	"github.com/clumsyjedi/mynx/pkg/things"
)

// DefaultWindow is the lookahead used to tolerate locally out-of-order
// source items.
const DefaultWindow = 10

// ChunkedFilter is a windowed take-while: it examines non-overlapping
// windows of source elements, emits the ones passing the predicate, and
// terminates only when an entire window fails. A strict stop-at-first-
// failure would truncate early on sources that are mostly but not
// strictly ordered by the filtering criterion.
type ChunkedFilter struct {
	src    Stream
	pred   func(things.Entity) bool
	window int

	buf  []things.Entity
	idx  int
	done bool
}

// FilterChunked wraps src with a chunked tolerant filter using
// DefaultWindow.
func FilterChunked(src Stream, pred func(things.Entity) bool) *ChunkedFilter {
	return FilterChunkedN(src, pred, DefaultWindow)
}

// FilterChunkedN is FilterChunked with an explicit window size.
func FilterChunkedN(src Stream, pred func(things.Entity) bool, window int) *ChunkedFilter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ChunkedFilter{
		src:    src,
		pred:   pred,
		window: window,
	}
}

// Next implements Stream.
func (f *ChunkedFilter) Next(ctx context.Context) (things.Entity, error) {
	for {
		if f.idx < len(f.buf) {
			entity := f.buf[f.idx]
			f.idx++
			return entity, nil
		}
		if f.done {
			return nil, ErrEndOfStream
		}

		window := make([]things.Entity, 0, f.window)
		for len(window) < f.window {
			entity, err := f.src.Next(ctx)
			if errors.Is(err, ErrEndOfStream) {
				f.done = true
				break
			}
			if err != nil {
				f.done = true
				return nil, err
			}
			window = append(window, entity)
		}
		if len(window) == 0 {
			f.done = true
			return nil, ErrEndOfStream
		}

		var passing []things.Entity
		for _, entity := range window {
			if f.pred(entity) {
				passing = append(passing, entity)
			}
		}
		if len(passing) == 0 {
			// A whole window without a single pass: the stream is over.
			f.done = true
			return nil, ErrEndOfStream
		}

		f.buf = passing
		f.idx = 0
	}
}
