package things

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Decoder turns raw tagged JSON from the listing API into typed entities.
// It holds no state beyond configuration and performs no I/O.
type Decoder struct {
	baseURL string
	logger  zerolog.Logger
}

// NewDecoder creates a decoder. baseURL is prefixed onto relative
// permalinks (e.g. "https://www.reddit.com").
func NewDecoder(baseURL string, logger zerolog.Logger) *Decoder {
	return &Decoder{
		baseURL: trimTrailingSlash(baseURL),
		logger:  logger,
	}
}

// Decode normalizes a raw JSON node into its entities, in source order.
//
// Arrays decode element-wise. Listing envelopes unwrap to their children.
// Scalars and null carry no entities (Reddit sends "" for an empty reply
// tree). An unrecognized kind is reported and skipped so that sibling
// nodes still decode; only malformed JSON is an error.
func (d *Decoder) Decode(raw json.RawMessage) ([]Entity, error) {
	node := bytes.TrimSpace(raw)
	if len(node) == 0 || bytes.Equal(node, []byte("null")) {
		return nil, nil
	}

	switch node[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(node, &elems); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		var out []Entity
		for _, elem := range elems {
			decoded, err := d.Decode(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, decoded...)
		}
		return out, nil

	case '{':
		return d.decodeEnvelope(node)

	default:
		// Scalar node, nothing to decode.
		return nil, nil
	}
}

// decodeEnvelope dispatches an object node on its kind discriminant.
func (d *Decoder) decodeEnvelope(node []byte) ([]Entity, error) {
	var envelope struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(node, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch envelope.Kind {
	case wireListing:
		return d.decodeListing(envelope.Data)

	case wireComment:
		comment, err := d.decodeComment(envelope.Data)
		if err != nil {
			return nil, err
		}
		return []Entity{comment}, nil

	case wireAccount:
		account, err := d.decodeAccount(envelope.Data)
		if err != nil {
			return nil, err
		}
		return []Entity{account}, nil

	case wireLink:
		link, err := d.decodeLink(envelope.Data)
		if err != nil {
			return nil, err
		}
		return []Entity{link}, nil

	case wireMore:
		var more More
		if err := json.Unmarshal(envelope.Data, &more); err != nil {
			return nil, fmt.Errorf("decode more: %w", err)
		}
		return []Entity{&more}, nil

	default:
		d.logger.Warn().
			Str("kind", envelope.Kind).
			Msg("Unrecognized kind, skipping node")
		return nil, nil
	}
}

// decodeListing unwraps a Listing envelope into its decoded children.
// The Listing itself never materializes as an entity.
func (d *Decoder) decodeListing(data json.RawMessage) ([]Entity, error) {
	var listing struct {
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	var out []Entity
	for _, child := range listing.Children {
		decoded, err := d.Decode(child)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded...)
	}
	return out, nil
}

func (d *Decoder) decodeComment(data json.RawMessage) (*Comment, error) {
	var comment Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return nil, fmt.Errorf("decode comment: %w", err)
	}

	// The replies field is a nested Listing, or "" when there are none.
	var aux struct {
		Replies json.RawMessage `json:"replies"`
	}
	if err := json.Unmarshal(data, &aux); err == nil && len(aux.Replies) > 0 {
		replies, err := d.Decode(aux.Replies)
		if err != nil {
			return nil, fmt.Errorf("decode replies: %w", err)
		}
		comment.Replies = replies
	}

	comment.Score = comment.Ups - comment.Downs
	comment.CreatedAt = epochToTime(comment.CreatedUTC)
	comment.Permalink = fmt.Sprintf("%s/r/%s/comments/%s/_/%s",
		d.baseURL, comment.Subreddit, StripKindPrefix(comment.LinkID), comment.ID)

	return &comment, nil
}

func (d *Decoder) decodeLink(data json.RawMessage) (*Link, error) {
	var link Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("decode link: %w", err)
	}

	var aux struct {
		SelfText  string `json:"selftext"`
		Permalink string `json:"permalink"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("decode link: %w", err)
	}

	link.Body = aux.SelfText
	link.Permalink = d.baseURL + aux.Permalink
	link.CreatedAt = epochToTime(link.CreatedUTC)

	return &link, nil
}

func (d *Decoder) decodeAccount(data json.RawMessage) (*Account, error) {
	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	account.CreatedAt = epochToTime(account.CreatedUTC)
	return &account, nil
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
