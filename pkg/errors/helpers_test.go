// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	minifluxerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

type hintedError struct{ hint string }

func (e *hintedError) Error() string { return "hinted" }
func (e *hintedError) IsUserVisible() bool { return true }
func (e *hintedError) UserMessage() string { return "hinted" }
func (e *hintedError) Suggestion() string { return e.hint }

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := minifluxerrors.Wrap(original, "additional context")

		require.Error(t, wrapped)
		assert.Equal(t, "additional context: original error", wrapped.Error())
		assert.True(t, errors.Is(wrapped, original))
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, minifluxerrors.Wrap(nil, "context"))
	})
}

func TestWrapf(t *testing.T) {
	original := errors.New("file not found")
	wrapped := minifluxerrors.Wrapf(original, "loading items from %s", "items.yaml")

	assert.Equal(t, "loading items from items.yaml: file not found", wrapped.Error())
	assert.Nil(t, minifluxerrors.Wrapf(nil, "ignored %d", 1))
}

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation with field",
			err:  &minifluxerrors.ValidationError{Field: "entryId", Message: "must be an integer"},
			want: "validation failed on entryId: must be an integer",
		},
		{
			name: "validation without field",
			err:  &minifluxerrors.ValidationError{Message: "no items"},
			want: "validation failed: no items",
		},
		{
			name: "not found",
			err:  &minifluxerrors.NotFoundError{Resource: "operation", ID: "getFoo"},
			want: "operation not found: getFoo",
		},
		{
			name: "config with key",
			err:  &minifluxerrors.ConfigError{Key: "base_url", Reason: "is required"},
			want: "config error at base_url: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := minifluxerrors.Wrap(&minifluxerrors.ConfigError{Reason: "unreadable", Cause: cause}, "loading")

	var cfgErr *minifluxerrors.ConfigError
	require.True(t, minifluxerrors.As(err, &cfgErr))
	assert.Equal(t, "unreadable", cfgErr.Reason)
	assert.True(t, minifluxerrors.Is(err, cause))
}

func TestHint(t *testing.T) {
	err := minifluxerrors.Wrap(&hintedError{hint: "check the token"}, "running")
	assert.Equal(t, "check the token", minifluxerrors.Hint(err))
	assert.Empty(t, minifluxerrors.Hint(errors.New("plain")))
}
