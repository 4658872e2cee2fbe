package stream

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/clumsyjedi/mynx/pkg/things"
)

// timestamped matches entities that carry a creation time; comments and
// links do, more markers do not.
type timestamped interface {
	Created() time.Time
}

// ItemsSince returns the finite stream of items created after since,
// newest-first, from the given listing endpoint. Local disorder in the
// source is tolerated through the chunked filter.
func ItemsSince(lister Lister, path string, query url.Values, since time.Time, logger zerolog.Logger) Stream {
	pred := func(entity things.Entity) bool {
		ts, ok := entity.(timestamped)
		return ok && ts.Created().After(since)
	}
	return FilterChunked(NewPaginator(lister, path, query, logger), pred)
}

// Poller is an unbounded live feed: each cycle materializes everything
// newer than the watermark, yields it oldest-first, advances the
// watermark, and polls again. Every cycle crosses the throttle gate at
// least once, which is what paces an otherwise busy loop when nothing
// new has arrived.
type Poller struct {
	lister Lister
	path   string
	query  url.Values
	logger zerolog.Logger

	watermark time.Time
	batch     []things.Entity
	idx       int
}

// NewPoller creates a live stream of items created after since.
func NewPoller(lister Lister, path string, query url.Values, since time.Time, logger zerolog.Logger) *Poller {
	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}

	return &Poller{
		lister:    lister,
		path:      path,
		query:     q,
		logger:    logger,
		watermark: since,
	}
}

// Watermark returns the newest creation time observed so far. It never
// moves backwards.
func (p *Poller) Watermark() time.Time {
	return p.watermark
}

// Next implements Stream. It never returns ErrEndOfStream: a live feed
// has no natural end, only cancellation or a failed poll.
func (p *Poller) Next(ctx context.Context) (things.Entity, error) {
	for p.idx >= len(p.batch) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.refill(ctx); err != nil {
			return nil, err
		}
	}

	entity := p.batch[p.idx]
	p.idx++
	return entity, nil
}

// refill runs one polling cycle: fetch everything past the watermark,
// reverse it to oldest-first, and advance the watermark.
func (p *Poller) refill(ctx context.Context) error {
	items, err := Collect(ctx, ItemsSince(p.lister, p.path, p.query, p.watermark, p.logger), 0)
	if err != nil {
		return err
	}

	// Newest-first from the API; consumers of a live feed want arrival
	// order.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	for _, entity := range items {
		if ts, ok := entity.(timestamped); ok && ts.Created().After(p.watermark) {
			p.watermark = ts.Created()
		}
	}

	p.logger.Debug().
		Str("endpoint", p.path).
		Int("new_items", len(items)).
		Time("watermark", p.watermark).
		Msg("Poll cycle complete")

	p.batch = items
	p.idx = 0
	return nil
}
