package miniflux

import (
	"net/http"

	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
)

// Operation names one of the Miniflux API calls the integration can make.
type Operation string

const (
	// Feeds
	OpGetFeeds        Operation = "getFeeds"
	OpCreateFeed      Operation = "createFeed"
	OpRefreshFeed     Operation = "refreshFeed"
	OpRefreshAllFeeds Operation = "refreshAllFeeds"
	OpDeleteFeed      Operation = "deleteFeed"

	// Entries
	OpGetEntries        Operation = "getEntries"
	OpGetEntry          Operation = "getEntry"
	OpUpdateEntryStatus Operation = "updateEntryStatus"
	OpToggleBookmark    Operation = "toggleBookmark"

	// Categories
	OpGetCategories  Operation = "getCategories"
	OpCreateCategory Operation = "createCategory"

	// OPML
	OpExportOPML Operation = "exportOpml"
	OpImportOPML Operation = "importOpml"
)

// DefaultOperation is used when no operation parameter is present.
const DefaultOperation = OpGetEntries

// operationDef is the static description of one operation.
type operationDef struct {
	description string
	// action prefixes HTTP failure messages, e.g. "delete feed failed (HTTP 404)"
	action   string
	category string
	method   string
	path     string
	tags     []string
}

var operationDefs = map[Operation]operationDef{
	OpGetFeeds:          {"List subscribed feeds", "list feeds", "feeds", http.MethodGet, "/v1/feeds", []string{"read"}},
	OpCreateFeed:        {"Subscribe to a new feed", "create feed", "feeds", http.MethodPost, "/v1/feeds", []string{"write"}},
	OpRefreshFeed:       {"Refresh a feed immediately", "refresh feed", "feeds", http.MethodPut, "/v1/feeds/{feedId}/refresh", []string{"write"}},
	OpRefreshAllFeeds:   {"Refresh all feeds immediately", "refresh all feeds", "feeds", http.MethodPut, "/v1/feeds/refresh", []string{"write"}},
	OpDeleteFeed:        {"Delete a feed", "delete feed", "feeds", http.MethodDelete, "/v1/feeds/{feedId}", []string{"write", "destructive"}},
	OpGetEntries:        {"List entries with filters", "list entries", "entries", http.MethodGet, "/v1/entries", []string{"read"}},
	OpGetEntry:          {"Get a single entry", "get entry", "entries", http.MethodGet, "/v1/entries/{entryId}", []string{"read"}},
	OpUpdateEntryStatus: {"Change the status of an entry", "update entry status", "entries", http.MethodPut, "/v1/entries", []string{"write"}},
	OpToggleBookmark:    {"Toggle the bookmark flag of an entry", "toggle bookmark", "entries", http.MethodPut, "/v1/entries/{entryId}/bookmark", []string{"write"}},
	OpGetCategories:     {"List categories", "list categories", "categories", http.MethodGet, "/v1/categories", []string{"read"}},
	OpCreateCategory:    {"Create a category", "create category", "categories", http.MethodPost, "/v1/categories", []string{"write"}},
	OpExportOPML:        {"Export all feeds as OPML", "export OPML", "opml", http.MethodGet, "/v1/export", []string{"read"}},
	OpImportOPML:        {"Import feeds from an OPML document", "import OPML", "opml", http.MethodPost, "/v1/import", []string{"write"}},
}

// allOperations fixes the listing order.
var allOperations = []Operation{
	OpGetFeeds, OpCreateFeed, OpRefreshFeed, OpRefreshAllFeeds, OpDeleteFeed,
	OpGetEntries, OpGetEntry, OpUpdateEntryStatus, OpToggleBookmark,
	OpGetCategories, OpCreateCategory,
	OpExportOPML, OpImportOPML,
}

// AllOperations returns every operation in listing order.
func AllOperations() []Operation {
	return append([]Operation(nil), allOperations...)
}

// ParseOperation resolves an operation name. Names are case sensitive.
func ParseOperation(name string) (Operation, error) {
	op := Operation(name)
	if _, ok := operationDefs[op]; !ok {
		return "", operation.NewUnknownOperationError(name)
	}
	return op, nil
}

// String returns the operation name.
func (o Operation) String() string {
	return string(o)
}

// Description returns the human-readable description of the operation.
func (o Operation) Description() string {
	return operationDefs[o].description
}

func (o Operation) action() string {
	if def, ok := operationDefs[o]; ok {
		return def.action
	}
	return string(o)
}

// Info returns the operation metadata.
func (o Operation) Info() api.OperationInfo {
	def := operationDefs[o]
	return api.OperationInfo{
		Name:        string(o),
		Description: def.description,
		Category:    def.category,
		Method:      def.method,
		Path:        def.path,
		Tags:        def.tags,
	}
}
