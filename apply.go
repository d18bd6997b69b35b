// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
//
// This file is a derived work, based on the github.com/evanphx/json-patch whose original
// notices appear below.
//
// It is distributed under a license compatible with the licensing terms of the
// original code from which it is derived.
//
// Much love to the original authors for their work.
// **********
// Copyright (c) 2014, Evan Phoenix
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
//
// * Redistributions of source code must retain the above copyright notice, this
//   list of conditions and the following disclaimer.
// * Redistributions in binary form must reproduce the above copyright notice,
//   this list of conditions and the following disclaimer in the documentation
//   and/or other materials provided with the distribution.
// * Neither the name of the Evan Phoenix nor the names of its contributors
//   may be used to endorse or promote products derived from this software
//   without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE LIABLE
// FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
// DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
// CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
// OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package jsonpatch

import (
	"encoding/json"
	"errors"
	"fmt"
)

type container interface {
	get(key string, options *Options) (any, error)
	set(key string, val any, options *Options) error
	add(key string, val any, options *Options) error
	remove(key string, options *Options) error
	child(key string, options *Options) (container, error)
	len() int
}

// objectNode is a JSON object. Maps are reference values, so changes are
// visible through the parent without writing back.
type objectNode map[string]any

// arrayNode is a JSON array. Inserting or removing elements allocates a new
// slice, which is stored back into the parent with store.
type arrayNode struct {
	ary   []any
	store func([]any)
}

func containerOf(v any, store func([]any)) (container, error) {
	switch cv := v.(type) {
	case map[string]any:
		return objectNode(cv), nil
	case []any:
		return &arrayNode{ary: cv, store: store}, nil
	}
	return nil, ErrInvalid
}

func (d objectNode) get(key string, options *Options) (any, error) {
	v, ok := d[key]
	if !ok {
		return nil, fmt.Errorf("unable to get nonexistent key %q, %w", key, ErrMissing)
	}
	return v, nil
}

func (d objectNode) set(key string, val any, options *Options) error {
	d[key] = val
	return nil
}

func (d objectNode) add(key string, val any, options *Options) error {
	return d.set(key, val, options)
}

func (d objectNode) remove(key string, options *Options) error {
	if _, ok := d[key]; !ok {
		if options.AllowMissingPathOnRemove {
			return nil
		}
		return fmt.Errorf("unable to remove nonexistent key %q, %w", key, ErrMissing)
	}
	delete(d, key)
	return nil
}

func (d objectNode) child(key string, options *Options) (container, error) {
	v, err := d.get(key, options)
	if err != nil {
		return nil, err
	}
	return containerOf(v, func(ary []any) { d[key] = ary })
}

func (d objectNode) len() int {
	return len(d)
}

// index resolves key to an existing element position.
func (d *arrayNode) index(key string, options *Options) (int, error) {
	idx, err := toIndex(key)
	if err != nil {
		return -1, err
	}

	sz := len(d.ary)
	if idx < 0 {
		if !options.SupportNegativeIndices || idx < -sz {
			return -1, fmt.Errorf("unable to access invalid index %d, %w", idx, ErrInvalidIndex)
		}
		idx += sz
	}
	if idx >= sz {
		return -1, fmt.Errorf("unable to access invalid index %d, %w", idx, ErrInvalidIndex)
	}
	return idx, nil
}

func (d *arrayNode) get(key string, options *Options) (any, error) {
	idx, err := d.index(key, options)
	if err != nil {
		return nil, err
	}
	return d.ary[idx], nil
}

// set should only be used to implement the "replace" operation, so "key" must
// be an already existing index in "d".
func (d *arrayNode) set(key string, val any, options *Options) error {
	idx, err := d.index(key, options)
	if err != nil {
		return err
	}
	d.ary[idx] = val
	return nil
}

func (d *arrayNode) add(key string, val any, options *Options) error {
	if key == appendToken {
		d.ary = append(d.ary, val)
		d.store(d.ary)
		return nil
	}

	idx, err := toIndex(key)
	if err != nil {
		return err
	}

	sz := len(d.ary) + 1
	if idx >= sz {
		return fmt.Errorf("unable to access invalid index %d, %w", idx, ErrInvalidIndex)
	}
	if idx < 0 {
		if !options.SupportNegativeIndices || idx < -sz {
			return fmt.Errorf("unable to access invalid index %d, %w", idx, ErrInvalidIndex)
		}
		idx += sz
	}

	ary := make([]any, sz)
	copy(ary[:idx], d.ary[:idx])
	ary[idx] = val
	copy(ary[idx+1:], d.ary[idx:])

	d.ary = ary
	d.store(ary)
	return nil
}

func (d *arrayNode) remove(key string, options *Options) error {
	idx, err := d.index(key, options)
	if err != nil {
		if options.AllowMissingPathOnRemove && errors.Is(err, ErrInvalidIndex) {
			return nil
		}
		return err
	}

	ary := make([]any, len(d.ary)-1)
	copy(ary[:idx], d.ary[:idx])
	copy(ary[idx:], d.ary[idx+1:])

	d.ary = ary
	d.store(ary)
	return nil
}

func (d *arrayNode) child(key string, options *Options) (container, error) {
	idx, err := d.index(key, options)
	if err != nil {
		return nil, err
	}
	ary := d.ary
	return containerOf(ary[idx], func(n []any) { ary[idx] = n })
}

func (d *arrayNode) len() int {
	return len(d.ary)
}

func (d *Document) rootContainer() (container, error) {
	return containerOf(d.root, func(ary []any) { d.root = ary })
}

// findObject walks to the parent of path and returns it with the last token.
func (d *Document) findObject(path Pointer, options *Options) (container, string, error) {
	if len(path) == 0 {
		return nil, "", fmt.Errorf("root has no parent, %w", ErrMissing)
	}

	con, err := d.rootContainer()
	if err != nil {
		return nil, "", fmt.Errorf("unexpected document %s, %w", d, err)
	}
	for _, token := range path[:len(path)-1] {
		if con, err = con.child(token, options); err != nil {
			return nil, "", err
		}
	}
	return con, path.Last(), nil
}

// get returns the value at path, resolving array indices the same way the
// mutating operations do.
func (d *Document) get(path Pointer, options *Options) (any, error) {
	if len(path) == 0 {
		return d.root, nil
	}
	con, key, err := d.findObject(path, options)
	if err != nil {
		return nil, err
	}
	return con.get(key, options)
}

func (d *Document) add(op *Operation, options *Options) error {
	val, err := op.value()
	if err != nil {
		return fmt.Errorf("add operation does not apply for %q, %w", op.Path.String(), err)
	}
	if len(op.Path) == 0 {
		d.root = val
		return nil
	}

	if options.EnsurePathExistsOnAdd {
		if err := d.ensurePathExists(op.Path, options); err != nil {
			return fmt.Errorf("add operation does not apply for %q, %w", op.Path.String(), err)
		}
	}

	con, key, err := d.findObject(op.Path, options)
	if err != nil {
		return fmt.Errorf("add operation does not apply for %q, %w", op.Path.String(), err)
	}
	if err = con.add(key, val, options); err != nil {
		return fmt.Errorf("add operation does not apply for %q, %w", op.Path.String(), err)
	}
	return nil
}

func (d *Document) remove(op *Operation, options *Options) error {
	if len(op.Path) == 0 {
		return fmt.Errorf("remove operation does not apply for the root, %w", ErrInvalidOperation)
	}

	con, key, err := d.findObject(op.Path, options)
	if err != nil {
		if options.AllowMissingPathOnRemove {
			return nil
		}
		return fmt.Errorf("remove operation does not apply for %q, %w", op.Path.String(), err)
	}
	if err = con.remove(key, options); err != nil {
		return fmt.Errorf("remove operation does not apply for %q, %w", op.Path.String(), err)
	}
	return nil
}

func (d *Document) replace(op *Operation, options *Options) error {
	val, err := op.value()
	if err != nil {
		return fmt.Errorf("replace operation does not apply for %q, %w", op.Path.String(), err)
	}
	if len(op.Path) == 0 {
		d.root = val
		return nil
	}

	con, key, err := d.findObject(op.Path, options)
	if err != nil {
		return fmt.Errorf("replace operation does not apply for %q, %w", op.Path.String(), err)
	}
	if _, err = con.get(key, options); err != nil {
		return fmt.Errorf("replace operation does not apply for %q, %w", op.Path.String(), err)
	}
	if err = con.set(key, val, options); err != nil {
		return fmt.Errorf("replace operation does not apply for %q, %w", op.Path.String(), err)
	}
	return nil
}

func (d *Document) move(op *Operation, options *Options) error {
	if op.From.Equal(op.Path) {
		if _, err := d.get(op.From, options); err != nil {
			return fmt.Errorf("move operation does not apply for from %q, %w", op.From.String(), err)
		}
		return nil
	}
	if op.Path.HasPrefix(op.From) {
		return fmt.Errorf("move operation can not move %q into its own child %q, %w",
			op.From.String(), op.Path.String(), ErrInvalidOperation)
	}

	con, key, err := d.findObject(op.From, options)
	if err != nil {
		return fmt.Errorf("move operation does not apply for from %q, %w", op.From.String(), err)
	}
	val, err := con.get(key, options)
	if err != nil {
		return fmt.Errorf("move operation does not apply for from %q, %w", op.From.String(), err)
	}
	if err = con.remove(key, options); err != nil {
		return fmt.Errorf("move operation does not apply for from %q, %w", op.From.String(), err)
	}

	if len(op.Path) == 0 {
		d.root = val
		return nil
	}
	con, key, err = d.findObject(op.Path, options)
	if err != nil {
		return fmt.Errorf("move operation does not apply for path %q, %w", op.Path.String(), err)
	}
	if err = con.add(key, val, options); err != nil {
		return fmt.Errorf("move operation does not apply for path %q, %w", op.Path.String(), err)
	}
	return nil
}

func (d *Document) copy(op *Operation, accumulatedCopySize *int64, options *Options) error {
	val, err := d.get(op.From, options)
	if err != nil {
		return fmt.Errorf("copy operation does not apply for from path %q, %w", op.From.String(), err)
	}

	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("copy operation does not apply for path %q while performing deep copy, %w",
			op.Path.String(), err)
	}
	*accumulatedCopySize += int64(len(data))
	if options.AccumulatedCopySizeLimit > 0 && *accumulatedCopySize > options.AccumulatedCopySizeLimit {
		return NewAccumulatedCopySizeError(options.AccumulatedCopySizeLimit, *accumulatedCopySize)
	}

	valCopy := deepCopy(val)
	if len(op.Path) == 0 {
		d.root = valCopy
		return nil
	}
	con, key, err := d.findObject(op.Path, options)
	if err != nil {
		return fmt.Errorf("copy operation does not apply for path %q, %w", op.Path.String(), err)
	}
	if err = con.add(key, valCopy, options); err != nil {
		return fmt.Errorf("copy operation does not apply for path %q while adding value during copy, %w",
			op.Path.String(), err)
	}
	return nil
}

func (d *Document) test(op *Operation, options *Options) error {
	expected, err := op.value()
	if err != nil {
		return fmt.Errorf("test operation for path %q failed, %w", op.Path.String(), err)
	}

	actual, err := d.get(op.Path, options)
	if err != nil {
		if expected == nil {
			return nil
		}
		return &TestFailedError{Path: op.Path, Expected: string(op.Value), Actual: "nothing"}
	}
	if equalValues(actual, expected) {
		return nil
	}

	got, _ := json.Marshal(actual)
	return &TestFailedError{Path: op.Path, Expected: string(canonicalJSON(op.Value)), Actual: string(got)}
}

// ensurePathExists walks path and creates all missing containers except the
// last one, choosing arrays where the following token is an index. Arrays are
// padded with nulls up to the addressed index.
func (d *Document) ensurePathExists(path Pointer, options *Options) error {
	con, err := d.rootContainer()
	if err != nil {
		return err
	}

	for pi, key := range path[:len(path)-1] {
		next, err := con.child(key, options)
		if err == nil {
			con = next
			continue
		}
		if !errors.Is(err, ErrMissing) && !errors.Is(err, ErrInvalidIndex) {
			return fmt.Errorf("unable to ensure path for invalid target %q, %w", path[:pi+1].String(), err)
		}

		if arr, ok := con.(*arrayNode); ok {
			if key == appendToken {
				key = fmt.Sprint(arr.len())
			}
			arrIndex, err := toIndex(key)
			if err != nil {
				return err
			}
			// Pad the array with null values up to the required index.
			for i := arr.len(); i < arrIndex; i++ {
				if err = arr.add(appendToken, nil, options); err != nil {
					return err
				}
			}
		}

		var node any = map[string]any{}
		nextToken := path[pi+1]
		if isIndex(nextToken) {
			arrIndex := 0
			if nextToken != appendToken {
				if arrIndex, err = toIndex(nextToken); err != nil {
					return err
				}
			}
			if arrIndex < 0 {
				if !options.SupportNegativeIndices || arrIndex < -1 {
					return fmt.Errorf("unable to ensure path for invalid index %d, %w", arrIndex, ErrInvalidIndex)
				}
				arrIndex = 0
			}
			// Pad the new array with null values up to the required index.
			node = make([]any, arrIndex)
		}

		if err = con.add(key, node, options); err != nil {
			return err
		}
		if con, err = con.child(key, options); err != nil {
			return err
		}
	}
	return nil
}
