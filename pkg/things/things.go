// Package things defines the typed Reddit entities and the decoder that
// normalizes the API's tagged JSON envelopes into them.
package things

import (
	"strings"
	"time"
)

// Kind discriminates the decoded entity variants.
type Kind string

const (
	// KindComment is a comment on a link (wire kind "t1").
	KindComment Kind = "comment"

	// KindAccount is a user account (wire kind "t2").
	KindAccount Kind = "account"

	// KindLink is a submitted link or self post (wire kind "t3").
	KindLink Kind = "link"

	// KindMore marks replies that were truncated from the current page
	// and can be resolved with a follow-up fetch (wire kind "more").
	KindMore Kind = "more"
)

// Wire discriminants as they appear in the JSON envelopes.
const (
	wireListing = "Listing"
	wireComment = "t1"
	wireAccount = "t2"
	wireLink    = "t3"
	wireMore    = "more"
)

// DeletedBody is the sentinel Reddit substitutes for the body of a
// deleted comment.
const DeletedBody = "[deleted]"

// Entity is a decoded Reddit object. Entities are immutable after
// decoding; derived views are produced as new values, never in place.
type Entity interface {
	// EntityKind returns the variant discriminant.
	EntityKind() Kind

	// Fullname returns the API fullname (e.g. "t3_abc123"). The last
	// fullname of a page is the cursor for the next page.
	Fullname() string
}

// Comment is a decoded "t1" entity.
type Comment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Author    string `json:"author"`
	Subreddit string `json:"subreddit"`
	LinkID    string `json:"link_id"`
	ParentID  string `json:"parent_id"`
	Body      string `json:"body"`
	BodyHTML  string `json:"body_html"`
	Ups       int    `json:"ups"`
	Downs     int    `json:"downs"`

	// CreatedUTC is the wire timestamp in epoch seconds.
	CreatedUTC float64 `json:"created_utc"`

	// Derived by the decoder.
	Score     int       `json:"-"` // Ups - Downs
	CreatedAt time.Time `json:"-"`
	Permalink string    `json:"-"`
	Replies   []Entity  `json:"-"`
}

// EntityKind implements Entity.
func (c *Comment) EntityKind() Kind { return KindComment }

// Fullname implements Entity.
func (c *Comment) Fullname() string { return c.Name }

// Created returns the comment's creation time.
func (c *Comment) Created() time.Time { return c.CreatedAt }

// IsDeleted reports whether the comment was deleted. Reddit replaces the
// body of deleted comments with a sentinel; an absent body counts too.
func (c *Comment) IsDeleted() bool {
	return c.Body == "" || c.Body == DeletedBody
}

// Link is a decoded "t3" entity.
type Link struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	Subreddit   string `json:"subreddit"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	Ups         int    `json:"ups"`
	Downs       int    `json:"downs"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Over18      bool   `json:"over_18"`

	CreatedUTC float64 `json:"created_utc"`

	// Derived by the decoder.
	Body      string    `json:"-"` // wire "selftext"
	Permalink string    `json:"-"` // absolute, base URL prefixed
	CreatedAt time.Time `json:"-"`
}

// EntityKind implements Entity.
func (l *Link) EntityKind() Kind { return KindLink }

// Fullname implements Entity.
func (l *Link) Fullname() string { return l.Name }

// Created returns the link's creation time.
func (l *Link) Created() time.Time { return l.CreatedAt }

// Account is a decoded "t2" entity. The session-sensitive modhash field
// is dropped during decoding and never retained.
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CommentKarma int    `json:"comment_karma"`
	LinkKarma    int    `json:"link_karma"`
	IsGold       bool   `json:"is_gold"`
	IsMod        bool   `json:"is_mod"`

	CreatedUTC float64 `json:"created_utc"`

	CreatedAt time.Time `json:"-"`
}

// EntityKind implements Entity.
func (a *Account) EntityKind() Kind { return KindAccount }

// Fullname implements Entity.
func (a *Account) Fullname() string { return a.Name }

// More is a decoded "more" entity. It carries the IDs of replies that
// were truncated from the current page; callers may resolve them with a
// follow-up fetch.
type More struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parent_id"`
	Count    int      `json:"count"`
	Children []string `json:"children"`
}

// EntityKind implements Entity.
func (m *More) EntityKind() Kind { return KindMore }

// Fullname implements Entity.
func (m *More) Fullname() string { return m.Name }

// StripKindPrefix removes the "tN_" type prefix from a fullname,
// returning the opaque ID. Values without a prefix come back unchanged.
func StripKindPrefix(fullname string) string {
	if _, id, ok := strings.Cut(fullname, "_"); ok {
		return id
	}
	return fullname
}

// epochToTime converts an epoch-seconds wire timestamp to a time.Time.
func epochToTime(seconds float64) time.Time {
	return time.UnixMilli(int64(seconds * 1000)).UTC()
}
