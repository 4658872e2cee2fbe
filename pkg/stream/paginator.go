package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/clumsyjedi/mynx/pkg/things"
)

// Default listing query parameters, applied when the caller left them
// unset.
const (
	DefaultLimit = "1000"
	DefaultSort  = "new"
)

// ErrMissingCursor is returned when the last item of a page carries no
// fullname. Paginating past it would loop on the same page forever, so
// this fails loudly instead.
var ErrMissingCursor = errors.New("page item missing fullname cursor")

// Paginator walks a listing endpoint page by page, presenting all pages
// as one lazy stream. The cursor for each page is the fullname of the
// previous page's last entity; an empty page terminates the stream. At
// most one page is ever fetched ahead of what the consumer demanded.
type Paginator struct {
	lister Lister
	path   string
	query  url.Values
	logger zerolog.Logger

	buf   []things.Entity
	idx   int
	done  bool
	pages int
}

// NewPaginator creates a stream over all pages of the given listing
// endpoint. The query is copied; limit and sort are defaulted if unset.
func NewPaginator(lister Lister, path string, query url.Values, logger zerolog.Logger) *Paginator {
	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	if q.Get("limit") == "" {
		q.Set("limit", DefaultLimit)
	}
	if q.Get("sort") == "" {
		q.Set("sort", DefaultSort)
	}

	return &Paginator{
		lister: lister,
		path:   path,
		query:  q,
		logger: logger,
	}
}

// Next implements Stream. Page boundaries are the blocking points: a new
// page is fetched only once the previous one is fully consumed.
func (p *Paginator) Next(ctx context.Context) (things.Entity, error) {
	if p.idx < len(p.buf) {
		entity := p.buf[p.idx]
		p.idx++
		return entity, nil
	}
	if p.done {
		return nil, ErrEndOfStream
	}

	page, err := p.lister.Listing(ctx, p.path, p.query)
	if err != nil {
		// The failed page aborts the continuation; entities already
		// yielded from earlier pages remain valid.
		p.done = true
		return nil, err
	}
	p.pages++

	if len(page) == 0 {
		p.done = true
		p.logger.Debug().
			Str("endpoint", p.path).
			Int("pages", p.pages).
			Msg("Pagination complete")
		return nil, ErrEndOfStream
	}

	cursor := page[len(page)-1].Fullname()
	if cursor == "" {
		p.done = true
		return nil, fmt.Errorf("%w: endpoint %s page %d", ErrMissingCursor, p.path, p.pages)
	}
	p.query.Set("after", cursor)

	p.buf = page
	p.idx = 1
	return page[0], nil
}
