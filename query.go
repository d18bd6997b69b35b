// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// GetValueByPath returns the value of a given path in a JSON document.
func GetValueByPath(doc []byte, path string) ([]byte, error) {
	d, err := ParseDocument(doc)
	if err != nil {
		return nil, err
	}
	return d.GetValue(path)
}

// GetValue returns the JSON encoding of the value at path.
func (d *Document) GetValue(path string) (json.RawMessage, error) {
	p, err := ParsePointer(path)
	if err != nil {
		return nil, err
	}
	v, ok := d.Get(p)
	if !ok {
		return nil, fmt.Errorf("unable to get value by %s: %w", strconv.Quote(path), ErrMissing)
	}
	return json.Marshal(v)
}

// PV represents a node with a path and a JSON value.
type PV struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// PVs represents a list of PV.
type PVs []*PV

type nodePV struct {
	path string
	node any
}

// FindChildren returns the sub-trees of the document, including the root,
// that pass all the given tests. Each test path is relative to the candidate
// sub-tree and the value at it must equal the test value. Results are in
// depth-first order with object keys sorted.
func (d *Document) FindChildren(tests []*PV) (PVs, error) {
	if len(tests) == 0 {
		return nil, nil
	}

	type check struct {
		path  Pointer
		value any
	}
	checks := make([]check, len(tests))
	for i, t := range tests {
		p, err := ParsePointer(t.Path)
		if err != nil || len(p) == 0 {
			return nil, fmt.Errorf("invalid query path: %s", t.Path)
		}
		// an empty value matches null
		var v any
		if len(t.Value) > 0 {
			if v, err = decodeJSON(t.Value); err != nil {
				return nil, fmt.Errorf("invalid query value for %s: %w", t.Path, err)
			}
		}
		checks[i] = check{p, v}
	}

	var candidates []nodePV
	walkContainers(d.Value(), "", func(path string, node any) {
		for _, c := range checks {
			v, ok := getIn(node, c.path)
			if !ok || !equalValues(v, c.value) {
				return
			}
		}
		candidates = append(candidates, nodePV{path, node})
	})

	result := make(PVs, 0, len(candidates))
	for _, c := range candidates {
		data, err := json.Marshal(c.node)
		if err != nil {
			return nil, err
		}
		result = append(result, &PV{Path: c.path, Value: data})
	}
	return result, nil
}

func walkContainers(node any, path string, fn func(path string, node any)) {
	switch v := node.(type) {
	case []any:
		fn(path, node)
		for i, child := range v {
			walkContainers(child, path+"/"+strconv.Itoa(i), fn)
		}
	case map[string]any:
		fn(path, node)
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkContainers(v[k], path+"/"+rfc6901Encoder.Replace(k), fn)
		}
	}
}
