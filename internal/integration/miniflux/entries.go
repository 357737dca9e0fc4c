package miniflux

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tombee/conductor-miniflux/internal/operation"
)

// entriesQuery builds the getEntries query string. status is omitted when
// empty and the id filters when not positive.
func entriesQuery(p GetEntriesParams) url.Values {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.FeedID > 0 {
		q.Set("feed_id", strconv.FormatInt(p.FeedID, 10))
	}
	if p.CategoryID > 0 {
		q.Set("category_id", strconv.FormatInt(p.CategoryID, 10))
	}
	q.Set("limit", strconv.FormatInt(p.Limit, 10))
	q.Set("order", p.Order)
	q.Set("direction", p.Direction)
	return q
}

// getEntries lists entries matching the filters. The API response object is
// returned as is.
func (c *MinifluxIntegration) getEntries(ctx context.Context, p GetEntriesParams) (*operation.Result, error) {
	resp, err := c.send(ctx, OpGetEntries, "/v1/entries?"+entriesQuery(p).Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	var entries map[string]interface{}
	if err := c.ParseJSONResponse(resp, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = map[string]interface{}{}
	}

	return c.ToResult(resp, entries), nil
}

// getEntry fetches one entry.
func (c *MinifluxIntegration) getEntry(ctx context.Context, p GetEntryParams) (*operation.Result, error) {
	resp, err := c.send(ctx, OpGetEntry, fmt.Sprintf("/v1/entries/%d", p.EntryID), "", nil)
	if err != nil {
		return nil, err
	}

	entry, err := c.decodeAny(resp)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"entry": entry,
	}), nil
}

// updateEntryStatus changes the status of a single entry. The API takes a
// list of ids; one is always sent.
func (c *MinifluxIntegration) updateEntryStatus(ctx context.Context, p UpdateEntryStatusParams) (*operation.Result, error) {
	payload := map[string]interface{}{
		"entry_ids": []int64{p.EntryID},
		"status":    p.Status,
	}

	resp, err := c.sendJSON(ctx, OpUpdateEntryStatus, "/v1/entries", payload)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success": true,
		"entryId": p.EntryID,
		"status":  p.Status,
	}), nil
}

// toggleBookmark flips the bookmark flag of an entry.
func (c *MinifluxIntegration) toggleBookmark(ctx context.Context, p ToggleBookmarkParams) (*operation.Result, error) {
	resp, err := c.send(ctx, OpToggleBookmark, fmt.Sprintf("/v1/entries/%d/bookmark", p.EntryID), "", nil)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success":         true,
		"entryId":         p.EntryID,
		"bookmarkToggled": true,
	}), nil
}
