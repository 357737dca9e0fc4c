package miniflux

import (
	"context"

	"github.com/tombee/conductor-miniflux/internal/operation"
)

// getCategories lists all categories.
func (c *MinifluxIntegration) getCategories(ctx context.Context) (*operation.Result, error) {
	resp, err := c.send(ctx, OpGetCategories, "/v1/categories", "", nil)
	if err != nil {
		return nil, err
	}

	categories, err := c.decodeAny(resp)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"categories": categories,
	}), nil
}

// createCategory creates a category with the given title.
func (c *MinifluxIntegration) createCategory(ctx context.Context, p CreateCategoryParams) (*operation.Result, error) {
	resp, err := c.sendJSON(ctx, OpCreateCategory, "/v1/categories", map[string]interface{}{
		"title": p.Title,
	})
	if err != nil {
		return nil, err
	}

	category, err := c.decodeAny(resp)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success":  true,
		"category": category,
	}), nil
}
