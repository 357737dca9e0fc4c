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
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-miniflux/internal/node"
	"github.com/tombee/conductor-miniflux/internal/operation/api"
	pkgerrors "github.com/tombee/conductor-miniflux/pkg/errors"
)

// maxItemsFileSize bounds items files and @file parameter values.
const maxItemsFileSize = 10 * 1024 * 1024

// loadItems reads items from path, or from stdin when path is "-". The
// document is YAML or JSON holding either a list of parameter maps or a
// single map.
func loadItems(path string, stdin io.Reader) (node.MapItems, error) {
	data, err := readSource(path, stdin)
	if err != nil {
		return nil, err
	}
	return parseItems(data)
}

func parseItems(data []byte) (node.MapItems, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return node.MapItems{}, nil
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse items")
	}

	switch v := doc.(type) {
	case map[string]interface{}:
		return node.MapItems{v}, nil
	case []interface{}:
		items := make(node.MapItems, len(v))
		for i, entry := range v {
			switch m := entry.(type) {
			case map[string]interface{}:
				items[i] = m
			case nil:
				items[i] = map[string]interface{}{}
			default:
				return nil, fmt.Errorf("item %d must be a map of parameters, got %T", i, entry)
			}
		}
		return items, nil
	case nil:
		return node.MapItems{}, nil
	default:
		return nil, fmt.Errorf("items must be a list of parameter maps, got %T", doc)
	}
}

// parseParams turns k=v pairs into parameter values. Values are converted
// only for parameters the schema declares as integer or boolean; everything
// else stays a string. A value of @path reads the file at path.
func parseParams(pairs []string, stdin io.Reader, schema *api.OperationSchema) (map[string]interface{}, error) {
	types := make(map[string]string)
	if schema != nil {
		for _, p := range schema.Parameters {
			types[p.Name] = p.Type
		}
	}

	params := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}

		if path, isFile := strings.CutPrefix(raw, "@"); isFile {
			data, err := readSource(path, stdin)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "parameter %s", key)
			}
			params[key] = string(data)
			continue
		}

		switch types[key] {
		case "integer", "boolean":
			params[key] = scalar(raw)
		default:
			params[key] = raw
		}
	}
	return params, nil
}

// scalar interprets raw the way YAML would when it is a plain integer or
// boolean and returns it unchanged otherwise.
func scalar(raw string) interface{} {
	var v interface{}
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case int, bool:
		return v
	default:
		return raw
	}
}

func readSource(path string, stdin io.Reader) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxItemsFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxItemsFileSize {
		return nil, fmt.Errorf("input exceeds maximum size of %d bytes", maxItemsFileSize)
	}
	return data, nil
}
