package miniflux

import (
	"context"
	"fmt"

	"github.com/tombee/conductor-miniflux/internal/operation"
)

// getFeeds lists all subscribed feeds.
func (c *MinifluxIntegration) getFeeds(ctx context.Context) (*operation.Result, error) {
	resp, err := c.send(ctx, OpGetFeeds, "/v1/feeds", "", nil)
	if err != nil {
		return nil, err
	}

	feeds, err := c.decodeAny(resp)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"feeds": feeds,
	}), nil
}

// createFeed subscribes to a feed URL. category_id is sent only when set.
func (c *MinifluxIntegration) createFeed(ctx context.Context, p CreateFeedParams) (*operation.Result, error) {
	payload := map[string]interface{}{
		"feed_url": p.FeedURL,
	}
	if p.CategoryID > 0 {
		payload["category_id"] = p.CategoryID
	}

	resp, err := c.sendJSON(ctx, OpCreateFeed, "/v1/feeds", payload)
	if err != nil {
		return nil, err
	}

	feed, err := c.decodeAny(resp)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success": true,
		"feed":    feed,
	}), nil
}

// refreshFeed asks Miniflux to poll one feed now.
func (c *MinifluxIntegration) refreshFeed(ctx context.Context, p RefreshFeedParams) (*operation.Result, error) {
	resp, err := c.send(ctx, OpRefreshFeed, fmt.Sprintf("/v1/feeds/%d/refresh", p.FeedID), "", nil)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success":   true,
		"feedId":    p.FeedID,
		"refreshed": true,
	}), nil
}

// refreshAllFeeds asks Miniflux to poll every feed now.
func (c *MinifluxIntegration) refreshAllFeeds(ctx context.Context) (*operation.Result, error) {
	resp, err := c.send(ctx, OpRefreshAllFeeds, "/v1/feeds/refresh", "", nil)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success":      true,
		"refreshedAll": true,
	}), nil
}

// deleteFeed removes a feed subscription.
func (c *MinifluxIntegration) deleteFeed(ctx context.Context, p DeleteFeedParams) (*operation.Result, error) {
	resp, err := c.send(ctx, OpDeleteFeed, fmt.Sprintf("/v1/feeds/%d", p.FeedID), "", nil)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success": true,
		"feedId":  p.FeedID,
		"deleted": true,
	}), nil
}
