package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clumsyjedi/mynx/pkg/things"
)

// fakeLister serves scripted pages keyed by the "after" cursor and
// records every call it sees.
type fakeLister struct {
	pages   map[string][]things.Entity
	calls   []url.Values
	failOn  string
	failErr error
}

func (f *fakeLister) Listing(_ context.Context, _ string, query url.Values) ([]things.Entity, error) {
	copied := url.Values{}
	for k, vs := range query {
		copied[k] = append([]string(nil), vs...)
	}
	f.calls = append(f.calls, copied)

	after := query.Get("after")
	if f.failErr != nil && after == f.failOn {
		return nil, f.failErr
	}
	return f.pages[after], nil
}

func link(id string, created time.Time) *things.Link {
	return &things.Link{
		ID:        id,
		Name:      "t3_" + id,
		CreatedAt: created,
	}
}

func fullnames(entities []things.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Fullname()
	}
	return out
}

func TestPaginator_WalksAllPages(t *testing.T) {
	now := time.Now()
	lister := &fakeLister{
		pages: map[string][]things.Entity{
			"":     {link("a", now), link("b", now)},
			"t3_b": {link("c", now), link("d", now)},
			"t3_d": {},
		},
	}

	p := NewPaginator(lister, "/r/test/new.json", nil, zerolog.Nop())
	entities, err := Collect(context.Background(), p, 0)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(entities) != 4 {
		t.Fatalf("Expected 4 entities, got %d: %v", len(entities), fullnames(entities))
	}
	for i, want := range []string{"t3_a", "t3_b", "t3_c", "t3_d"} {
		if entities[i].Fullname() != want {
			t.Errorf("Entity %d: got %s, want %s", i, entities[i].Fullname(), want)
		}
	}

	// Exactly 3 fetches: the third returned empty and ended the stream.
	if len(lister.calls) != 3 {
		t.Errorf("Expected exactly 3 fetch calls, got %d", len(lister.calls))
	}

	// No fourth call even if the consumer keeps pulling.
	if _, err := p.Next(context.Background()); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("Expected ErrEndOfStream after termination, got %v", err)
	}
	if len(lister.calls) != 3 {
		t.Errorf("Terminated stream fetched again: %d calls", len(lister.calls))
	}
}

func TestPaginator_CursorAdvancesFromLastItem(t *testing.T) {
	now := time.Now()
	lister := &fakeLister{
		pages: map[string][]things.Entity{
			"":     {link("a", now), link("b", now)},
			"t3_b": {},
		},
	}

	p := NewPaginator(lister, "/r/test/new.json", nil, zerolog.Nop())
	if _, err := Collect(context.Background(), p, 0); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if got := lister.calls[0].Get("after"); got != "" {
		t.Errorf("First call should carry no cursor, got %q", got)
	}
	if got := lister.calls[1].Get("after"); got != "t3_b" {
		t.Errorf("Second call cursor: got %q, want t3_b", got)
	}
}

func TestPaginator_DefaultsLimitAndSort(t *testing.T) {
	lister := &fakeLister{pages: map[string][]things.Entity{}}

	p := NewPaginator(lister, "/r/test/new.json", nil, zerolog.Nop())
	if _, err := p.Next(context.Background()); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("Expected clean end, got %v", err)
	}

	call := lister.calls[0]
	if call.Get("limit") != DefaultLimit {
		t.Errorf("limit: got %q, want %q", call.Get("limit"), DefaultLimit)
	}
	if call.Get("sort") != DefaultSort {
		t.Errorf("sort: got %q, want %q", call.Get("sort"), DefaultSort)
	}
}

func TestPaginator_CallerQueryPreserved(t *testing.T) {
	lister := &fakeLister{pages: map[string][]things.Entity{}}
	query := url.Values{"limit": {"25"}, "t": {"week"}}

	p := NewPaginator(lister, "/r/test/top.json", query, zerolog.Nop())
	if _, err := p.Next(context.Background()); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("Expected clean end, got %v", err)
	}

	call := lister.calls[0]
	if call.Get("limit") != "25" {
		t.Errorf("Caller limit overridden: got %q", call.Get("limit"))
	}
	if call.Get("t") != "week" {
		t.Errorf("Caller filter dropped: got %q", call.Get("t"))
	}

	// The paginator must not mutate the caller's values.
	if query.Get("sort") != "" || query.Get("after") != "" {
		t.Errorf("Caller query mutated: %v", query)
	}
}

func TestPaginator_LazyFetching(t *testing.T) {
	now := time.Now()
	lister := &fakeLister{
		pages: map[string][]things.Entity{
			"":     {link("a", now), link("b", now)},
			"t3_b": {link("c", now)},
		},
	}

	p := NewPaginator(lister, "/r/test/new.json", nil, zerolog.Nop())
	ctx := context.Background()

	if _, err := p.Next(ctx); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(lister.calls) != 1 {
		t.Errorf("One element demanded, %d pages fetched", len(lister.calls))
	}

	if _, err := p.Next(ctx); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(lister.calls) != 1 {
		t.Errorf("Second element was on the buffered page, %d pages fetched", len(lister.calls))
	}

	if _, err := p.Next(ctx); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(lister.calls) != 2 {
		t.Errorf("Third element needed page two, %d pages fetched", len(lister.calls))
	}
}

func TestPaginator_MissingCursorFailsLoudly(t *testing.T) {
	lister := &fakeLister{
		pages: map[string][]things.Entity{
			"": {&things.Link{ID: "a"}}, // no Name
		},
	}

	p := NewPaginator(lister, "/r/test/new.json", nil, zerolog.Nop())
	_, err := p.Next(context.Background())
	if !errors.Is(err, ErrMissingCursor) {
		t.Fatalf("Expected ErrMissingCursor, got %v", err)
	}

	// The stream is dead; it must not loop on the same page.
	if _, err := p.Next(context.Background()); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("Expected ErrEndOfStream after cursor failure, got %v", err)
	}
	if len(lister.calls) != 1 {
		t.Errorf("Expected no further fetches, got %d", len(lister.calls))
	}
}

func TestPaginator_FetchErrorAbortsContinuation(t *testing.T) {
	now := time.Now()
	boom := fmt.Errorf("server exploded")
	lister := &fakeLister{
		pages: map[string][]things.Entity{
			"": {link("a", now), link("b", now)},
		},
		failOn:  "t3_b",
		failErr: boom,
	}

	p := NewPaginator(lister, "/r/test/new.json", nil, zerolog.Nop())
	entities, err := Collect(context.Background(), p, 0)

	// Elements yielded before the failure stay valid.
	if len(entities) != 2 {
		t.Errorf("Expected the first page's entities, got %d", len(entities))
	}
	if !errors.Is(err, boom) {
		t.Errorf("Expected fetch error to propagate, got %v", err)
	}
}
