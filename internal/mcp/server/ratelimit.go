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

package server

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter caps the rate of MCP tool calls.
type RateLimiter struct {
	calls *rate.Limiter
}

// NewRateLimiter allows callsPerMinute calls per minute with a burst of the
// same size. Non-positive values select DefaultCallsPerMinute.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		callsPerMinute = DefaultCallsPerMinute
	}
	every := time.Minute / time.Duration(callsPerMinute)
	return &RateLimiter{
		calls: rate.NewLimiter(rate.Every(every), callsPerMinute),
	}
}

// AllowCall checks if a tool call is allowed
func (rl *RateLimiter) AllowCall() bool {
	return rl.calls.Allow()
}
