package miniflux

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tombee/conductor-miniflux/internal/operation"
)

// Parameter names as supplied by the host.
const (
	ParamOperation        = "operation"
	ParamFeedURL          = "feedUrl"
	ParamCategoryID       = "categoryId"
	ParamFeedID           = "feedId"
	ParamStatus           = "status"
	ParamFilterFeedID     = "filterFeedId"
	ParamFilterCategoryID = "filterCategoryId"
	ParamLimit            = "limit"
	ParamOrder            = "order"
	ParamDirection        = "direction"
	ParamEntryID          = "entryId"
	ParamNewStatus        = "newStatus"
	ParamCategoryTitle    = "categoryTitle"
	ParamOPMLData         = "opmlData"
)

// Defaults applied when an optional parameter is absent.
const (
	DefaultStatus    = "unread"
	DefaultLimit     = 100
	DefaultOrder     = "published_at"
	DefaultDirection = "desc"
	DefaultNewStatus = "read"
)

var (
	entryFilterStatuses = []string{"", "unread", "read", "removed"}
	entryStatuses       = []string{"read", "unread", "removed"}
	sortDirections      = []string{"asc", "desc"}
)

// Params is the typed parameter set of one operation.
type Params interface {
	Operation() Operation
}

type GetFeedsParams struct{}

type CreateFeedParams struct {
	FeedURL string
	// CategoryID is sent only when greater than zero.
	CategoryID int64
}

type RefreshFeedParams struct {
	FeedID int64
}

type RefreshAllFeedsParams struct{}

type DeleteFeedParams struct {
	FeedID int64
}

// GetEntriesParams filters an entry listing. Zero ids and an empty status
// leave the corresponding filter off.
type GetEntriesParams struct {
	Status     string
	FeedID     int64
	CategoryID int64
	Limit      int64
	Order      string
	Direction  string
}

type GetEntryParams struct {
	EntryID int64
}

type UpdateEntryStatusParams struct {
	EntryID int64
	Status  string
}

type ToggleBookmarkParams struct {
	EntryID int64
}

type GetCategoriesParams struct{}

type CreateCategoryParams struct {
	Title string
}

type ExportOPMLParams struct{}

// ImportOPMLParams carries a raw OPML document.
type ImportOPMLParams struct {
	Data string
}

func (GetFeedsParams) Operation() Operation          { return OpGetFeeds }
func (CreateFeedParams) Operation() Operation        { return OpCreateFeed }
func (RefreshFeedParams) Operation() Operation       { return OpRefreshFeed }
func (RefreshAllFeedsParams) Operation() Operation   { return OpRefreshAllFeeds }
func (DeleteFeedParams) Operation() Operation        { return OpDeleteFeed }
func (GetEntriesParams) Operation() Operation        { return OpGetEntries }
func (GetEntryParams) Operation() Operation          { return OpGetEntry }
func (UpdateEntryStatusParams) Operation() Operation { return OpUpdateEntryStatus }
func (ToggleBookmarkParams) Operation() Operation    { return OpToggleBookmark }
func (GetCategoriesParams) Operation() Operation     { return OpGetCategories }
func (CreateCategoryParams) Operation() Operation    { return OpCreateCategory }
func (ExportOPMLParams) Operation() Operation        { return OpExportOPML }
func (ImportOPMLParams) Operation() Operation        { return OpImportOPML }

// Lookup returns the raw value of a named parameter and whether it is set.
type Lookup func(name string) (interface{}, bool)

// MapLookup reads parameters from a map.
func MapLookup(inputs map[string]interface{}) Lookup {
	return func(name string) (interface{}, bool) {
		v, ok := inputs[name]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}
}

// DecodeParams reads the parameters of op through lookup, applies defaults
// and validates them. Nothing is sent when an error is returned.
func DecodeParams(op Operation, lookup Lookup) (Params, error) {
	r := paramReader{lookup: lookup}

	var p Params
	switch op {
	case OpGetFeeds:
		p = GetFeedsParams{}
	case OpCreateFeed:
		p = CreateFeedParams{
			FeedURL:    r.requiredString(ParamFeedURL),
			CategoryID: r.optionalInt(ParamCategoryID, 0),
		}
	case OpRefreshFeed:
		p = RefreshFeedParams{FeedID: r.requiredInt(ParamFeedID)}
	case OpRefreshAllFeeds:
		p = RefreshAllFeedsParams{}
	case OpDeleteFeed:
		p = DeleteFeedParams{FeedID: r.requiredInt(ParamFeedID)}
	case OpGetEntries:
		p = GetEntriesParams{
			Status:     r.enum(ParamStatus, DefaultStatus, entryFilterStatuses),
			FeedID:     r.optionalInt(ParamFilterFeedID, 0),
			CategoryID: r.optionalInt(ParamFilterCategoryID, 0),
			Limit:      r.optionalInt(ParamLimit, DefaultLimit),
			Order:      r.optionalString(ParamOrder, DefaultOrder),
			Direction:  r.enum(ParamDirection, DefaultDirection, sortDirections),
		}
	case OpGetEntry:
		p = GetEntryParams{EntryID: r.requiredInt(ParamEntryID)}
	case OpUpdateEntryStatus:
		p = UpdateEntryStatusParams{
			EntryID: r.requiredInt(ParamEntryID),
			Status:  r.enum(ParamNewStatus, DefaultNewStatus, entryStatuses),
		}
	case OpToggleBookmark:
		p = ToggleBookmarkParams{EntryID: r.requiredInt(ParamEntryID)}
	case OpGetCategories:
		p = GetCategoriesParams{}
	case OpCreateCategory:
		p = CreateCategoryParams{Title: r.requiredString(ParamCategoryTitle)}
	case OpExportOPML:
		p = ExportOPMLParams{}
	case OpImportOPML:
		p = ImportOPMLParams{Data: r.requiredString(ParamOPMLData)}
	default:
		return nil, operation.NewUnknownOperationError(string(op))
	}

	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

// paramReader keeps the first decoding error so DecodeParams can read all
// fields of a struct literal before checking.
type paramReader struct {
	lookup Lookup
	err    error
}

func (r *paramReader) fail(name, format string, args ...interface{}) {
	if r.err == nil {
		r.err = operation.NewValidationError(name, fmt.Sprintf(format, args...))
	}
}

func (r *paramReader) requiredString(name string) string {
	v, ok := r.lookup(name)
	if !ok {
		r.fail(name, "%s is required", name)
		return ""
	}
	s, err := toString(v)
	if err != nil {
		r.fail(name, "%s %v", name, err)
		return ""
	}
	if s == "" {
		r.fail(name, "%s is required", name)
	}
	return s
}

func (r *paramReader) optionalString(name, def string) string {
	v, ok := r.lookup(name)
	if !ok {
		return def
	}
	s, err := toString(v)
	if err != nil {
		r.fail(name, "%s %v", name, err)
		return def
	}
	return s
}

func (r *paramReader) enum(name, def string, allowed []string) string {
	s := r.optionalString(name, def)
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = strconv.Quote(a)
	}
	r.fail(name, "%s must be one of %s, got %q", name, strings.Join(quoted, ", "), s)
	return def
}

func (r *paramReader) requiredInt(name string) int64 {
	v, ok := r.lookup(name)
	if !ok {
		r.fail(name, "%s is required", name)
		return 0
	}
	n, err := toInt64(v)
	if err != nil {
		r.fail(name, "%s %v", name, err)
	}
	return n
}

func (r *paramReader) optionalInt(name string, def int64) int64 {
	v, ok := r.lookup(name)
	if !ok {
		return def
	}
	n, err := toInt64(v)
	if err != nil {
		r.fail(name, "%s %v", name, err)
		return def
	}
	return n
}

// toString accepts strings and formats integer, integral float and boolean
// scalars, so a YAML title of 2024 reads as "2024".
func toString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case bool:
		return strconv.FormatBool(s), nil
	case json.Number:
		return s.String(), nil
	case float32, float64:
		n, err := toInt64(s)
		if err != nil {
			return "", fmt.Errorf("must be a string, got %v", s)
		}
		return strconv.FormatInt(n, 10), nil
	case uint:
		return strconv.FormatUint(uint64(s), 10), nil
	case uint64:
		return strconv.FormatUint(s, 10), nil
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		n, err := toInt64(s)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return "", fmt.Errorf("must be a string, got %T", v)
	}
}

// toInt64 accepts Go integers, integral floats, json.Number and decimal
// strings.
func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return checkedUint(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return checkedUint(n)
	case float32:
		return integralFloat(float64(n))
	case float64:
		return integralFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %q", n.String())
		}
		return integralFloat(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("must be an integer, got %T", v)
	}
}

func checkedUint(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("is out of range: %d", n)
	}
	return int64(n), nil
}

func integralFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("must be an integer, got %v", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("is out of range: %v", f)
	}
	return int64(f), nil
}
