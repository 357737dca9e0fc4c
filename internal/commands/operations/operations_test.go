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

package operations

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-miniflux/internal/commands/shared"
)

func run(t *testing.T, jsonOut bool, args ...string) (string, error) {
	t.Helper()
	shared.SetJSONForTest(jsonOut)
	t.Cleanup(func() { shared.SetJSONForTest(false) })

	cmd := NewCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestOperations_Table(t *testing.T) {
	out, err := run(t, false)
	require.NoError(t, err)
	assert.Contains(t, out, "getFeeds")
	assert.Contains(t, out, "DELETE")
	assert.Contains(t, out, "/v1/entries/{entryId}/bookmark")
}

func TestOperations_JSON(t *testing.T) {
	out, err := run(t, true)
	require.NoError(t, err)

	var ops []OperationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &ops), out)
	require.Len(t, ops, 13)
	assert.Equal(t, "getFeeds", ops[0].Name)
	assert.Equal(t, "importOpml", ops[12].Name)
}

func TestOperations_Detail(t *testing.T) {
	out, err := run(t, false, "updateEntryStatus")
	require.NoError(t, err)
	assert.Contains(t, out, "PUT /v1/entries")
	assert.Contains(t, out, "entryId")
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "default read")
}

func TestOperations_DetailJSON(t *testing.T) {
	out, err := run(t, true, "createFeed")
	require.NoError(t, err)

	var op OperationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &op), out)
	assert.Equal(t, "POST", op.Method)
	require.Len(t, op.Parameters, 2)
	assert.Equal(t, "feedUrl", op.Parameters[0].Name)
	assert.True(t, op.Parameters[0].Required)
}

func TestOperations_NoParameters(t *testing.T) {
	out, err := run(t, false, "refreshAllFeeds")
	require.NoError(t, err)
	assert.Contains(t, out, "No parameters.")
}

func TestOperations_Unknown(t *testing.T) {
	_, err := run(t, false, "frobnicate")
	require.Error(t, err)

	var exitErr *shared.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, shared.ExitInvalidInput, exitErr.Code)
}
