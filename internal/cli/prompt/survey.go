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
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

// SurveyPrompter implements Prompter using the survey library.
type SurveyPrompter struct {
	interactive bool
}

// NewSurveyPrompter creates a new survey-based prompter.
func NewSurveyPrompter(interactive bool) *SurveyPrompter {
	return &SurveyPrompter{interactive: interactive}
}

// NewTerminalPrompter returns a prompter that is interactive only when both
// stdin and stdout are terminals.
func NewTerminalPrompter() *SurveyPrompter {
	return NewSurveyPrompter(IsTerminal())
}

// IsTerminal reports whether stdin and stdout are attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func message(name, desc string) string {
	if desc == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, desc)
}

// PromptString collects a string input using survey.Input.
func (sp *SurveyPrompter) PromptString(ctx context.Context, name, desc, def string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}

	var result string
	prompt := &survey.Input{Message: message(name, desc), Default: def}
	err := survey.AskOne(prompt, &result, survey.WithValidator(func(ans interface{}) error {
		if str, ok := ans.(string); ok {
			return ValidateRequired(str)
		}
		return nil
	}))
	return result, err
}

// PromptInteger collects an integer using survey.Input with validation.
func (sp *SurveyPrompter) PromptInteger(ctx context.Context, name, desc string, def int64) (int64, error) {
	if !sp.interactive {
		return 0, ErrNonInteractive
	}

	var input string
	defaultStr := ""
	if def != 0 {
		defaultStr = strconv.FormatInt(def, 10)
	}

	prompt := &survey.Input{Message: message(name, desc), Default: defaultStr}
	err := survey.AskOne(prompt, &input, survey.WithValidator(func(ans interface{}) error {
		if str, ok := ans.(string); ok {
			_, err := ValidateInteger(str)
			return err
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}

	return ValidateInteger(input)
}

// PromptEnum collects a selection using survey.Select.
func (sp *SurveyPrompter) PromptEnum(ctx context.Context, name, desc string, options []string, def string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided for %s", name)
	}

	var result string
	prompt := &survey.Select{Message: message(name, desc), Options: options}
	for _, o := range options {
		if o == def {
			prompt.Default = def
			break
		}
	}
	err := survey.AskOne(prompt, &result)
	return result, err
}

// Confirm asks a yes/no question using survey.Confirm.
func (sp *SurveyPrompter) Confirm(ctx context.Context, msg string, def bool) (bool, error) {
	if !sp.interactive {
		return false, ErrNonInteractive
	}

	var result bool
	err := survey.AskOne(&survey.Confirm{Message: msg, Default: def}, &result)
	return result, err
}

// IsInteractive returns whether the prompter can display interactive prompts.
func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}
