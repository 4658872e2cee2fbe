package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/clumsyjedi/mynx/pkg/things"
)

// moreChildrenResponse is the wire shape of /api/morechildren with
// api_type=json: the loaded things live under json.data.things.
type moreChildrenResponse struct {
	JSON struct {
		Data struct {
			Things json.RawMessage `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// MoreComments resolves a More marker: it loads the truncated replies
// identified by ids for the given link fullname. This is the follow-up
// fetch a caller may choose to run when the decoder yields a More.
func (c *Client) MoreComments(ctx context.Context, linkFullname string, ids []string) ([]things.Entity, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := url.Values{
		"link_id":  {linkFullname},
		"children": {strings.Join(ids, ",")},
		"api_type": {"json"},
	}

	body, err := c.Fetch(ctx, http.MethodGet, "/api/morechildren.json", query)
	if err != nil {
		return nil, err
	}

	var parsed moreChildrenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode morechildren response: %w", err)
	}

	entities, err := c.decoder.Decode(parsed.JSON.Data.Things)
	if err != nil {
		return nil, fmt.Errorf("decode morechildren things: %w", err)
	}
	return entities, nil
}
