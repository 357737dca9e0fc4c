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

package run

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-miniflux/internal/cli/prompt"
	"github.com/tombee/conductor-miniflux/internal/commands/shared"
	"github.com/tombee/conductor-miniflux/internal/integration/miniflux"
	"github.com/tombee/conductor-miniflux/internal/jq"
	"github.com/tombee/conductor-miniflux/internal/node"
	"github.com/tombee/conductor-miniflux/internal/operation"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
	"github.com/tombee/conductor-miniflux/internal/secrets"
)

// Options holds the flags of the run command.
type Options struct {
	ItemsFile      string
	Params         []string
	ContinueOnFail bool
	JQ             string
	NoInteractive  bool

	// Prompter collects missing parameters. Nil uses the terminal.
	Prompter prompt.Prompter

	// Backends replaces the credential backends. Used by tests.
	Backends []secrets.SecretBackend
}

// NewCommand creates the run command.
func NewCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "run <operation>",
		Short: "Run an operation over a batch of items",
		Long: `Run an operation against Miniflux once per item and print one JSON
record per item.

Items are read from --items as a YAML or JSON list of parameter maps. Without
--items a single item is built from --param. Values given with --param apply
to every item that does not set them. A value of @file reads the file, and
@- reads stdin.

When running in a terminal, missing required parameters are prompted for.`,
		Example: `  miniflux run getFeeds
  miniflux run createFeed --param feedUrl=https://example.com/feed.xml
  miniflux run updateEntryStatus --items entries.yaml --param newStatus=read --continue-on-fail
  miniflux run importOpml --param opmlData=@subscriptions.opml
  miniflux run getEntries --param status=unread --jq '.[0].entries[].title'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ItemsFile, "items", "i", "", "YAML or JSON file of items (- for stdin)")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Parameter applied to every item, as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.ContinueOnFail, "continue-on-fail", false, "Record failed items as {\"error\": ...} instead of stopping")
	cmd.Flags().StringVar(&opts.JQ, "jq", "", "jq expression applied to the array of records")
	cmd.Flags().BoolVar(&opts.NoInteractive, "no-interactive", false, "Never prompt for missing parameters")

	return cmd
}

// Run executes opName with the given options.
func Run(cmd *cobra.Command, opName string, opts *Options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	jqExec := jq.NewExecutor(jq.DefaultTimeout, jq.DefaultMaxInputSize)
	if err := jqExec.Validate(opts.JQ); err != nil {
		return shared.NewInvalidInputError("invalid --jq expression", err)
	}

	var schema *api.OperationSchema
	if op, err := miniflux.ParseOperation(opName); err == nil {
		schema = op.Schema()
	}

	defaults, err := parseParams(opts.Params, cmd.InOrStdin(), schema)
	if err != nil {
		return shared.NewInvalidInputError("invalid --param", err)
	}

	items := node.MapItems{{}}
	if opts.ItemsFile != "" {
		items, err = loadItems(opts.ItemsFile, cmd.InOrStdin())
		if err != nil {
			return shared.NewInvalidInputError("failed to read items", err)
		}
	}
	// The command line names the operation for the whole batch.
	for _, item := range items {
		item[miniflux.ParamOperation] = opName
	}
	reader := node.WithDefaults(items, defaults)

	if opts.ItemsFile == "" && !opts.NoInteractive {
		if err := promptMissing(ctx, cmd, opName, reader, defaults, opts.Prompter); err != nil {
			return err
		}
	}

	rtOpts := []shared.RuntimeOption{}
	if opts.Backends != nil {
		rtOpts = append(rtOpts, shared.WithBackends(opts.Backends...))
	}
	rt, err := shared.LoadRuntime(cmd.ErrOrStderr(), rtOpts...)
	if err != nil {
		return err
	}
	creds, err := rt.Credentials(ctx)
	if err != nil {
		return err
	}
	transport, err := rt.NewTransport()
	if err != nil {
		return err
	}

	executor, err := node.NewExecutor(node.ExecutorConfig{
		Transport: transport,
		Logger:    rt.Logger,
	})
	if err != nil {
		return shared.NewExecutionError("failed to create executor", err)
	}

	records, err := executor.Execute(ctx, reader, creds, node.Options{ContinueOnFail: opts.ContinueOnFail})
	if err != nil {
		return classify(err)
	}

	var output interface{} = records
	if opts.JQ != "" {
		output, err = jqExec.Execute(ctx, opts.JQ, records)
		if err != nil {
			return shared.NewExecutionError("jq filter failed", err)
		}
	}
	return shared.WriteJSON(cmd.OutOrStdout(), output)
}

// promptMissing asks for required parameters that neither the item nor
// --param supplies. Unknown operations are left for the executor to report.
func promptMissing(ctx context.Context, cmd *cobra.Command, opName string, reader node.ParameterReader, defaults map[string]interface{}, p prompt.Prompter) error {
	op, err := miniflux.ParseOperation(opName)
	if err != nil {
		return nil
	}

	missing := prompt.Missing(op.Schema(), func(name string) bool {
		_, ok := reader.Parameter(name, 0)
		return ok
	})
	if len(missing) == 0 {
		return nil
	}

	if p == nil {
		p = prompt.NewTerminalPrompter()
	}
	if !p.IsInteractive() {
		return nil
	}

	values, err := prompt.NewCollector(p, cmd.ErrOrStderr()).Collect(ctx, missing)
	if err != nil {
		return shared.NewInvalidInputError("failed to collect parameters", err)
	}
	for k, v := range values {
		defaults[k] = v
	}
	return nil
}

// classify maps executor errors to exit codes.
func classify(err error) error {
	var opErr *operation.Error
	if errors.As(err, &opErr) {
		return shared.NewInvalidInputError("invalid input", err)
	}
	var apiErr *miniflux.APIError
	if errors.As(err, &apiErr) {
		return shared.NewAPIError("request rejected", err)
	}
	return shared.NewExecutionError("execution failed", err)
}
