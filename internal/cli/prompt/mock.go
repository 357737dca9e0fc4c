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

package prompt

import (
	"context"
	"fmt"
)

// MockPrompter implements Prompter with scripted responses for testing.
// A response that is an error is returned as the prompt's error.
type MockPrompter struct {
	responses    []interface{}
	currentIndex int
	interactive  bool
	callLog      []string
}

// NewMockPrompter creates a new mock prompter with pre-scripted responses.
func NewMockPrompter(interactive bool, responses ...interface{}) *MockPrompter {
	return &MockPrompter{
		responses:   responses,
		interactive: interactive,
	}
}

func (mp *MockPrompter) next(call string) (interface{}, bool, error) {
	mp.callLog = append(mp.callLog, call)
	if !mp.interactive {
		return nil, false, ErrNonInteractive
	}
	if mp.currentIndex >= len(mp.responses) {
		return nil, false, nil
	}
	resp := mp.responses[mp.currentIndex]
	mp.currentIndex++
	if err, ok := resp.(error); ok {
		return nil, true, err
	}
	return resp, true, nil
}

// PromptString returns the next string response, or def when exhausted.
func (mp *MockPrompter) PromptString(ctx context.Context, name, desc, def string) (string, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptString(%s)", name))
	if err != nil || !ok {
		return def, err
	}
	if str, ok := resp.(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("mock response is not a string")
}

// PromptInteger returns the next integer response, or def when exhausted.
func (mp *MockPrompter) PromptInteger(ctx context.Context, name, desc string, def int64) (int64, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptInteger(%s)", name))
	if err != nil || !ok {
		return def, err
	}
	switch n := resp.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fmt.Errorf("mock response is not an integer")
}

// PromptEnum returns the next string response, or def when exhausted.
func (mp *MockPrompter) PromptEnum(ctx context.Context, name, desc string, options []string, def string) (string, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptEnum(%s)", name))
	if err != nil || !ok {
		return def, err
	}
	if str, ok := resp.(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("mock response is not a string")
}

// Confirm returns the next boolean response, or def when exhausted.
func (mp *MockPrompter) Confirm(ctx context.Context, msg string, def bool) (bool, error) {
	resp, ok, err := mp.next(fmt.Sprintf("Confirm(%s)", msg))
	if err != nil || !ok {
		return def, err
	}
	if b, ok := resp.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("mock response is not a boolean")
}

// IsInteractive returns the configured interactive state.
func (mp *MockPrompter) IsInteractive() bool {
	return mp.interactive
}

// GetCallLog returns the log of all prompt calls made.
func (mp *MockPrompter) GetCallLog() []string {
	return mp.callLog
}
