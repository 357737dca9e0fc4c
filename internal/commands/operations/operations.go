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
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-miniflux/internal/commands/shared"
	"github.com/tombee/conductor-miniflux/internal/integration/miniflux"
)

// OperationOutput is the JSON form of an operation.
type OperationOutput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Tags        []string          `json:"tags,omitempty"`
	Parameters  []ParameterOutput `json:"parameters,omitempty"`
}

// ParameterOutput is the JSON form of an operation parameter.
type ParameterOutput struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
}

// NewCommand creates the operations command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operations [operation]",
		Short: "List operations and their parameters",
		Long: `List every operation with its HTTP method and API path.

Pass an operation name to see its parameters.`,
		Example: `  miniflux operations
  miniflux operations createFeed
  miniflux operations --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := miniflux.AllOperations()
			if len(args) == 1 {
				op, err := miniflux.ParseOperation(args[0])
				if err != nil {
					return shared.NewInvalidInputError("unknown operation", err)
				}
				ops = []miniflux.Operation{op}
			}

			outputs := make([]OperationOutput, len(ops))
			for i, op := range ops {
				outputs[i] = describe(op)
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				if len(args) == 1 {
					return shared.WriteJSON(out, outputs[0])
				}
				return shared.WriteJSON(out, outputs)
			}
			if len(args) == 1 {
				return writeDetail(out, outputs[0])
			}
			return writeTable(out, outputs)
		},
	}
}

func describe(op miniflux.Operation) OperationOutput {
	info := op.Info()
	o := OperationOutput{
		Name:        info.Name,
		Description: info.Description,
		Category:    info.Category,
		Method:      info.Method,
		Path:        info.Path,
		Tags:        info.Tags,
	}
	for _, p := range op.Schema().Parameters {
		o.Parameters = append(o.Parameters, ParameterOutput{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
			Default:     p.Default,
			Enum:        p.Enum,
		})
	}
	return o
}

func writeTable(w io.Writer, ops []OperationOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, shared.Header.Render("OPERATION")+"\tMETHOD\tPATH\tDESCRIPTION")
	for _, o := range ops {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Name, o.Method, o.Path, o.Description)
	}
	return tw.Flush()
}

func writeDetail(w io.Writer, o OperationOutput) error {
	fmt.Fprintf(w, "%s  %s %s\n", shared.Header.Render(o.Name), o.Method, o.Path)
	fmt.Fprintf(w, "%s\n", o.Description)
	if len(o.Tags) > 0 {
		fmt.Fprintf(w, "%s\n", shared.Muted.Render("tags: "+strings.Join(o.Tags, ", ")))
	}
	if len(o.Parameters) == 0 {
		fmt.Fprintln(w, "\nNo parameters.")
		return nil
	}

	fmt.Fprintln(w, "\nParameters:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range o.Parameters {
		var notes []string
		switch {
		case p.Required:
			notes = append(notes, "required")
		case p.Default != nil:
			notes = append(notes, fmt.Sprintf("default %v", p.Default))
		}
		if len(p.Enum) > 0 {
			notes = append(notes, "one of "+strings.Join(p.Enum, "|"))
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.Name, p.Type, strings.Join(notes, "; "), p.Description)
	}
	return tw.Flush()
}
