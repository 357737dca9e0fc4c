package miniflux

import (
	"github.com/tombee/conductor-miniflux/internal/operation/api"
)

var (
	feedIDParam = api.ParameterInfo{
		Name: ParamFeedID, Type: "integer", Required: true,
		Description: "ID of the feed to operate on",
	}
	entryIDParam = api.ParameterInfo{
		Name: ParamEntryID, Type: "integer", Required: true,
		Description: "ID of the entry to operate on",
	}
)

var operationParams = map[Operation][]api.ParameterInfo{
	OpCreateFeed: {
		{Name: ParamFeedURL, Type: "string", Required: true, Description: "URL of the feed to subscribe to"},
		{Name: ParamCategoryID, Type: "integer", Default: 0, Description: "Category to add the feed to (0 for the default category)"},
	},
	OpRefreshFeed: {feedIDParam},
	OpDeleteFeed:  {feedIDParam},
	OpGetEntries: {
		{Name: ParamStatus, Type: "string", Default: DefaultStatus, Enum: entryFilterStatuses, Description: "Only return entries with this status (empty for any)"},
		{Name: ParamFilterFeedID, Type: "integer", Default: 0, Description: "Only return entries of this feed (0 for all feeds)"},
		{Name: ParamFilterCategoryID, Type: "integer", Default: 0, Description: "Only return entries of this category (0 for all categories)"},
		{Name: ParamLimit, Type: "integer", Default: DefaultLimit, Description: "Maximum number of entries to return"},
		{Name: ParamOrder, Type: "string", Default: DefaultOrder, Description: "Field to sort by (id, status, published_at, category_title, category_id)"},
		{Name: ParamDirection, Type: "string", Default: DefaultDirection, Enum: sortDirections, Description: "Sort direction"},
	},
	OpGetEntry: {entryIDParam},
	OpUpdateEntryStatus: {
		entryIDParam,
		{Name: ParamNewStatus, Type: "string", Default: DefaultNewStatus, Enum: entryStatuses, Description: "Status to set"},
	},
	OpToggleBookmark: {entryIDParam},
	OpCreateCategory: {
		{Name: ParamCategoryTitle, Type: "string", Required: true, Description: "Title of the new category"},
	},
	OpImportOPML: {
		{Name: ParamOPMLData, Type: "string", Required: true, Description: "OPML XML document to import"},
	},
}

// Schema returns the description and parameters of the operation.
func (o Operation) Schema() *api.OperationSchema {
	def, ok := operationDefs[o]
	if !ok {
		return nil
	}
	return &api.OperationSchema{
		Description: def.description,
		Parameters:  operationParams[o],
	}
}
