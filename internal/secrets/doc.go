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

/*
Package secrets resolves the Miniflux API token for the CLI host.

Secrets are resolved through a priority-ordered chain of backends:

	env      - MINIFLUX_<KEY> environment variables (priority 100)
	keychain - OS keychain, service "conductor-miniflux" (priority 50)
	config   - plain values from the config file (priority 25)

The dispatcher itself never stores credentials; it receives them from
whoever resolved them.

# Usage

	resolver := secrets.NewResolver(
	    secrets.NewEnvBackend(),
	    secrets.NewKeychainBackend(),
	    secrets.NewStaticBackend("config", map[string]string{secrets.KeyAPIToken: cfg.APIToken}),
	)

	token, source, err := resolver.Get(ctx, secrets.KeyAPIToken)
*/
package secrets
