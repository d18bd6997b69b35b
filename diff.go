// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wI2L/jsondiff"
)

// Diff returns the patch that turns the source JSON document into target.
// Applying the result to source yields a document equal to target.
func Diff(source, target []byte) (Patch, error) {
	ops, err := jsondiff.CompareJSON(source, target, jsondiff.UnmarshalFunc(unmarshalNumbers))
	if err != nil {
		return nil, fmt.Errorf("unable to diff documents, %w", err)
	}
	if len(ops) == 0 {
		return Patch{}, nil
	}

	data, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	return DecodePatch(data)
}

// DiffDocuments is like Diff for decoded documents.
func DiffDocuments(source, target *Document) (Patch, error) {
	a, err := source.MarshalJSON()
	if err != nil {
		return nil, err
	}
	b, err := target.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return Diff(a, b)
}

// unmarshalNumbers decodes numbers as json.Number so integers beyond float64
// precision are diffed and emitted exactly.
func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
