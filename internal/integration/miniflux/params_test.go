package miniflux

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-miniflux/internal/operation"
	minifluxerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

func TestDecodeParams_Defaults(t *testing.T) {
	p, err := DecodeParams(OpGetEntries, MapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, GetEntriesParams{
		Status:    "unread",
		Limit:     100,
		Order:     "published_at",
		Direction: "desc",
	}, p)

	p, err = DecodeParams(OpUpdateEntryStatus, MapLookup(map[string]interface{}{"entryId": 1}))
	require.NoError(t, err)
	assert.Equal(t, UpdateEntryStatusParams{EntryID: 1, Status: "read"}, p)

	p, err = DecodeParams(OpCreateFeed, MapLookup(map[string]interface{}{"feedUrl": "https://example.com/rss"}))
	require.NoError(t, err)
	assert.Equal(t, CreateFeedParams{FeedURL: "https://example.com/rss"}, p)
}

func TestDecodeParams_NilValueIsAbsent(t *testing.T) {
	p, err := DecodeParams(OpGetEntries, MapLookup(map[string]interface{}{"limit": nil}))
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultLimit), p.(GetEntriesParams).Limit)
}

func TestDecodeParams_Operation(t *testing.T) {
	for _, op := range allOperations {
		inputs := map[string]interface{}{
			"feedUrl": "https://example.com/rss", "feedId": 1, "entryId": 2,
			"categoryTitle": "News", "opmlData": "<opml/>",
		}
		p, err := DecodeParams(op, MapLookup(inputs))
		require.NoError(t, err, op)
		assert.Equal(t, op, p.Operation())
	}

	_, err := DecodeParams(Operation("nope"), MapLookup(nil))
	var opErr *operation.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operation.ErrorTypeNotFound, opErr.Type)
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    int64
		wantErr bool
	}{
		{name: "int", in: 42, want: 42},
		{name: "int64", in: int64(42), want: 42},
		{name: "uint8", in: uint8(7), want: 7},
		{name: "integral float", in: float64(42), want: 42},
		{name: "json number", in: json.Number("42"), want: 42},
		{name: "json number float", in: json.Number("42.0"), want: 42},
		{name: "decimal string", in: "42", want: 42},
		{name: "padded string", in: " 42 ", want: 42},
		{name: "negative string", in: "-3", want: -3},
		{name: "fractional float", in: 4.5, wantErr: true},
		{name: "non-numeric string", in: "forty-two", wantErr: true},
		{name: "bool", in: true, wantErr: true},
		{name: "huge uint64", in: uint64(1 << 63), wantErr: true},
		{name: "huge float", in: 1e19, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toInt64(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeParams_ValidationNamesField(t *testing.T) {
	tests := []struct {
		name   string
		op     Operation
		inputs map[string]interface{}
		field  string
	}{
		{name: "missing feedUrl", op: OpCreateFeed, field: ParamFeedURL},
		{name: "empty feedUrl", op: OpCreateFeed, inputs: map[string]interface{}{"feedUrl": ""}, field: ParamFeedURL},
		{name: "non-scalar feedUrl", op: OpCreateFeed, inputs: map[string]interface{}{"feedUrl": []interface{}{"a"}}, field: ParamFeedURL},
		{name: "fractional title", op: OpCreateCategory, inputs: map[string]interface{}{"categoryTitle": 20.5}, field: ParamCategoryTitle},
		{name: "bad categoryId", op: OpCreateFeed, inputs: map[string]interface{}{"feedUrl": "u", "categoryId": "x"}, field: ParamCategoryID},
		{name: "bad status", op: OpGetEntries, inputs: map[string]interface{}{"status": "starred"}, field: ParamStatus},
		{name: "bad limit", op: OpGetEntries, inputs: map[string]interface{}{"limit": 1.5}, field: ParamLimit},
		{name: "missing entryId", op: OpToggleBookmark, field: ParamEntryID},
		{name: "missing feedId", op: OpRefreshFeed, field: ParamFeedID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeParams(tt.op, MapLookup(tt.inputs))
			require.Error(t, err)

			var verr *minifluxerrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDecodeParams_ScalarStrings(t *testing.T) {
	tests := []struct {
		name  string
		op    Operation
		input map[string]interface{}
		want  Params
	}{
		{
			name:  "integer title",
			op:    OpCreateCategory,
			input: map[string]interface{}{"categoryTitle": 2024},
			want:  CreateCategoryParams{Title: "2024"},
		},
		{
			name:  "json number title",
			op:    OpCreateCategory,
			input: map[string]interface{}{"categoryTitle": float64(2024)},
			want:  CreateCategoryParams{Title: "2024"},
		},
		{
			name:  "boolean title",
			op:    OpCreateCategory,
			input: map[string]interface{}{"categoryTitle": true},
			want:  CreateCategoryParams{Title: "true"},
		},
		{
			name:  "integer order",
			op:    OpGetEntries,
			input: map[string]interface{}{"order": 7},
			want: GetEntriesParams{
				Status: DefaultStatus, Limit: DefaultLimit, Order: "7", Direction: DefaultDirection,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeParams(tt.op, MapLookup(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("exportOpml")
	require.NoError(t, err)
	assert.Equal(t, OpExportOPML, op)
	assert.Equal(t, "Export all feeds as OPML", op.Description())

	_, err = ParseOperation("ExportOpml")
	assert.EqualError(t, err, "unknown operation: ExportOpml")
}
