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
	"errors"
	"fmt"
	"sort"

	minifluxerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

// Resolver manages a chain of SecretBackends and resolves secrets
// by querying backends in priority order.
type Resolver struct {
	backends []SecretBackend
}

// NewResolver creates a new secret resolver with the given backends.
// Unavailable backends are dropped; the rest are sorted by priority
// (highest first).
func NewResolver(backends ...SecretBackend) *Resolver {
	available := make([]SecretBackend, 0, len(backends))
	for _, b := range backends {
		if b != nil && b.Available() {
			available = append(available, b)
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Priority() > available[j].Priority()
	})

	return &Resolver{
		backends: available,
	}
}

// Get retrieves a secret by querying backends in priority order and
// returns the value with the name of the backend that supplied it.
// When no backend has the key the error wraps ErrSecretNotFound and a
// *errors.NotFoundError.
func (r *Resolver) Get(ctx context.Context, key string) (string, string, error) {
	var lastErr error
	for _, backend := range r.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, backend.Name(), nil
		}

		if !errors.Is(err, ErrSecretNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("failed to get secret %q: %w", key, lastErr)
	}

	return "", "", &notFound{
		NotFoundError: minifluxerrors.NotFoundError{Resource: "credential", ID: key},
	}
}

// Set stores a secret in the named backend.
func (r *Resolver) Set(ctx context.Context, key, value, backendName string) error {
	backend, err := r.backend(backendName)
	if err != nil {
		return err
	}
	if err := backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set secret in %s: %w", backendName, err)
	}
	return nil
}

// Delete removes a secret from the named backend.
func (r *Resolver) Delete(ctx context.Context, key, backendName string) error {
	backend, err := r.backend(backendName)
	if err != nil {
		return err
	}
	if err := backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete secret from %s: %w", backendName, err)
	}
	return nil
}

func (r *Resolver) backend(name string) (SecretBackend, error) {
	for _, backend := range r.backends {
		if backend.Name() == name {
			return backend, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrBackendUnavailable, name)
}

// notFound lets errors.Is match ErrSecretNotFound on the typed error.
type notFound struct {
	minifluxerrors.NotFoundError
}

func (e *notFound) Is(target error) bool {
	return target == ErrSecretNotFound
}

func (e *notFound) Unwrap() error {
	return &e.NotFoundError
}

// IsUserVisible implements errors.UserVisibleError.
func (e *notFound) IsUserVisible() bool {
	return true
}

// UserMessage implements errors.UserVisibleError.
func (e *notFound) UserMessage() string {
	return e.Error()
}

// Suggestion implements errors.UserVisibleError.
func (e *notFound) Suggestion() string {
	return fmt.Sprintf("Set %s or run 'miniflux credentials set'", EnvVar(e.ID))
}
