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

package secrets

import (
	"context"
	"fmt"
)

// StaticBackendPriority is the priority for values read from the config file.
const StaticBackendPriority = 25

// StaticBackend serves a fixed, read-only set of values, typically the
// plain token found in the config file. Empty values count as absent.
type StaticBackend struct {
	name   string
	values map[string]string
}

// NewStaticBackend creates a read-only backend over values.
func NewStaticBackend(name string, values map[string]string) *StaticBackend {
	return &StaticBackend{name: name, values: values}
}

func (s *StaticBackend) Name() string {
	return s.name
}

func (s *StaticBackend) Get(ctx context.Context, key string) (string, error) {
	if value := s.values[key]; value != "" {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
}

func (s *StaticBackend) Set(ctx context.Context, key string, value string) error {
	return ErrReadOnlyBackend
}

func (s *StaticBackend) Delete(ctx context.Context, key string) error {
	return ErrReadOnlyBackend
}

func (s *StaticBackend) Available() bool {
	return true
}

func (s *StaticBackend) Priority() int {
	return StaticBackendPriority
}
