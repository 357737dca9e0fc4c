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

// Package credentials implements the 'miniflux credentials' commands.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tombee/conductor-miniflux/internal/cli/prompt"
	"github.com/tombee/conductor-miniflux/internal/commands/shared"
	"github.com/tombee/conductor-miniflux/internal/config"
	"github.com/tombee/conductor-miniflux/internal/log"
	"github.com/tombee/conductor-miniflux/internal/secrets"
	pkgerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

// Deps are the collaborators of the credentials commands.
type Deps struct {
	// Store holds the API token. Nil uses the system keychain.
	Store secrets.SecretBackend

	// Prompter confirms deletions. Nil uses the terminal.
	Prompter prompt.Prompter
}

func (d *Deps) store() secrets.SecretBackend {
	if d.Store == nil {
		d.Store = secrets.NewKeychainBackend()
	}
	return d.Store
}

func (d *Deps) prompter() prompt.Prompter {
	if d.Prompter == nil {
		d.Prompter = prompt.NewTerminalPrompter()
	}
	return d.Prompter
}

// NewCommand creates the credentials command group.
func NewCommand() *cobra.Command {
	return NewCommandWithDeps(&Deps{})
}

// NewCommandWithDeps creates the command group with explicit collaborators.
func NewCommandWithDeps(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the Miniflux API token",
		Long: `Store, inspect or remove the Miniflux API token.

The token is resolved in this order:
  1. MINIFLUX_API_TOKEN environment variable
  2. System keychain (macOS Keychain, Secret Service, Windows Credential Manager)
  3. api_token in the config file`,
	}

	cmd.AddCommand(newSetCommand(deps))
	cmd.AddCommand(newStatusCommand(deps))
	cmd.AddCommand(newDeleteCommand(deps))
	return cmd
}

func newSetCommand(deps *Deps) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API token in the system keychain",
		Long: `Store the API token in the system keychain.

The token is read from stdin when piped, otherwise it is prompted for with
hidden input. Use --base-url to also save the instance URL to the config file.`,
		Example: `  miniflux credentials set --base-url https://reader.example.com
  echo "$TOKEN" | miniflux credentials set`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			store := deps.store()
			if !store.Available() {
				return shared.NewConfigError("system keychain is not available", secrets.ErrBackendUnavailable)
			}

			token, err := readToken(cmd)
			if err != nil {
				return shared.NewInvalidInputError("failed to read API token", err)
			}
			if token == "" {
				return shared.NewInvalidInputError("API token cannot be empty", nil)
			}

			if err := store.Set(ctx, secrets.KeyAPIToken, token); err != nil {
				return shared.NewConfigError("failed to store API token", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("API token stored in %s (%s)", store.Name(), log.SanitizeAPIKey(token))))

			if baseURL != "" {
				path, err := saveBaseURL(baseURL)
				if err != nil {
					return shared.NewConfigError("failed to save base URL", err)
				}
				fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Base URL saved to %s", path)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Miniflux instance URL to save in the config file")
	return cmd
}

func newStatusCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API token is resolved from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			rt, err := shared.LoadRuntime(cmd.ErrOrStderr(), shared.WithBackends(secrets.NewEnvBackend(), deps.store()))
			if err != nil {
				return err
			}

			status := Status{BaseURL: rt.Config.BaseURL}
			token, source, err := rt.Resolver.Get(ctx, secrets.KeyAPIToken)
			switch {
			case err == nil:
				status.Configured = true
				status.Source = source
				status.Token = log.SanitizeAPIKey(token)
			case errors.Is(err, secrets.ErrSecretNotFound):
			default:
				return shared.NewConfigError("failed to resolve API token", err)
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.WriteJSON(out, status)
			}

			fmt.Fprintf(out, "%s %s\n", shared.Muted.Render("Base URL:"), status.BaseURL)
			if !status.Configured {
				fmt.Fprintln(out, shared.RenderWarn("No API token configured. Run 'miniflux credentials set'."))
				return nil
			}
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("API token %s from %s", status.Token, status.Source)))
			return nil
		},
	}
}

// Status is the output of 'credentials status'.
type Status struct {
	BaseURL    string `json:"base_url"`
	Configured bool   `json:"configured"`
	Source     string `json:"source,omitempty"`
	Token      string `json:"token,omitempty"`
}

func newDeleteCommand(deps *Deps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the API token from the system keychain",
		Long: `Remove the API token from the system keychain.

Requires confirmation unless --force is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()

			if !force {
				ok, err := deps.prompter().Confirm(ctx, "Delete the Miniflux API token from the keychain?", false)
				if errors.Is(err, prompt.ErrNonInteractive) {
					return shared.NewInvalidInputError("refusing to delete without confirmation", pkgerrors.New("use --force in non-interactive mode"))
				}
				if err != nil {
					return shared.NewExecutionError("confirmation failed", err)
				}
				if !ok {
					fmt.Fprintln(out, "Deletion canceled")
					return nil
				}
			}

			if err := deps.store().Delete(ctx, secrets.KeyAPIToken); err != nil {
				if errors.Is(err, secrets.ErrSecretNotFound) {
					fmt.Fprintln(out, shared.RenderWarn("No API token stored in the keychain"))
					return nil
				}
				return shared.NewConfigError("failed to delete API token", err)
			}

			fmt.Fprintln(out, shared.RenderOK("API token deleted"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	return cmd
}

// readToken reads the token from piped stdin, or prompts with hidden input
// when stdin is a terminal.
func readToken(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter API token (hidden): ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	data, err := io.ReadAll(io.LimitReader(in, 4096))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func saveBaseURL(baseURL string) (string, error) {
	cfg, path, err := config.LoadFile(shared.GetConfigPath())
	if err != nil {
		return "", err
	}
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := cfg.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
