package miniflux

import (
	"context"

	"github.com/tombee/conductor-miniflux/internal/operation"
)

// exportOPML returns the subscription list as OPML text. The body is not
// parsed.
func (c *MinifluxIntegration) exportOPML(ctx context.Context) (*operation.Result, error) {
	resp, err := c.send(ctx, OpExportOPML, "/v1/export", "", nil)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success": true,
		"opml":    string(resp.Body),
	}), nil
}

// importOPML uploads a raw OPML document.
func (c *MinifluxIntegration) importOPML(ctx context.Context, p ImportOPMLParams) (*operation.Result, error) {
	resp, err := c.send(ctx, OpImportOPML, "/v1/import", contentTypeXML, []byte(p.Data))
	if err != nil {
		return nil, err
	}

	result, err := c.decodeAny(resp)
	if err != nil {
		return nil, err
	}

	return c.ToResult(resp, map[string]interface{}{
		"success": true,
		"result":  result,
	}), nil
}
