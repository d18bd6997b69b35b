// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/copystructure"
)

// Document is a decoded JSON document. Its tree is made of map[string]any,
// []any, json.Number, string, bool and nil values.
//
// Documents are not modified by this package: applying a patch produces a
// new Document.
type Document struct {
	root any
}

// ParseDocument decodes a JSON document. Empty input is the null document.
func ParseDocument(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{}, nil
	}
	v, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return &Document{root: v}, nil
}

// MustParseDocument is like ParseDocument but panics on error.
func MustParseDocument(s string) *Document {
	d, err := ParseDocument([]byte(s))
	if err != nil {
		panic(err)
	}
	return d
}

// NewDocument builds a Document from any value that can be marshaled to JSON.
func NewDocument(v any) (*Document, error) {
	data, err := marshalValue(v)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// Value returns the root of the tree. The result shares memory with the
// document and must be treated as read-only.
func (d *Document) Value() any {
	if d == nil {
		return nil
	}
	return d.root
}

// Get returns the value at p and whether it exists. Array tokens must be
// plain indices; "-" never exists.
func (d *Document) Get(p Pointer) (any, bool) {
	return getIn(d.Value(), p)
}

// GetWithOptions is like Get but resolves array tokens the way patch
// operations do, so negative indices follow options.
func (d *Document) GetWithOptions(p Pointer, options *Options) (any, error) {
	if d == nil {
		d = &Document{}
	}
	if options == nil {
		options = NewOptions()
	}
	return d.get(p, options)
}

// Has reports whether a value exists at p.
func (d *Document) Has(p Pointer) bool {
	_, ok := d.Get(p)
	return ok
}

func getIn(v any, p Pointer) (any, bool) {
	if p == nil {
		return nil, false
	}
	for _, token := range p {
		switch cv := v.(type) {
		case map[string]any:
			next, ok := cv[token]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			idx, err := toIndex(token)
			if err != nil || idx < 0 || idx >= len(cv) {
				return nil, false
			}
			v = cv[idx]
		default:
			return nil, false
		}
	}
	return v, true
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	return &Document{root: deepCopy(d.Value())}
}

func deepCopy(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return copystructure.Must(copystructure.Copy(v))
	}
	return v
}

// Equal reports whether two documents are structurally equal. Numbers are
// compared by value and object key order does not matter.
func (d *Document) Equal(o *Document) bool {
	return equalValues(d.Value(), o.Value())
}

var numberComparer = cmp.Comparer(func(a, b json.Number) bool {
	if a == b {
		return true
	}
	x, ok := new(big.Rat).SetString(string(a))
	if !ok {
		return false
	}
	y, ok := new(big.Rat).SetString(string(b))
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
})

func equalValues(a, b any) bool {
	return cmp.Equal(a, b, numberComparer)
}

// Equal indicates if 2 JSON documents have the same structural equality.
// Invalid documents are never equal.
func Equal(a, b []byte) bool {
	da, err := ParseDocument(a)
	if err != nil {
		return false
	}
	db, err := ParseDocument(b)
	if err != nil {
		return false
	}
	return da.Equal(db)
}

// MarshalJSON implements the json.Marshaler interface.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Document) UnmarshalJSON(data []byte) error {
	if d == nil {
		return errors.New("nil document")
	}
	nd, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*d = *nd
	return nil
}

// String returns the document as compact JSON.
func (d *Document) String() string {
	data, err := d.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("invalid document: %v", err)
	}
	return string(data)
}

// Apply applies p to a copy of d and returns the copy.
func (d *Document) Apply(p Patch) (*Document, error) {
	return d.ApplyWithOptions(p, NewOptions())
}

// ApplyWithOptions applies p to a copy of d according to options and returns
// the copy. Operations are applied in order and each one sees the effect of
// the previous ones. On error d is left as it was.
func (d *Document) ApplyWithOptions(p Patch, options *Options) (*Document, error) {
	if options == nil {
		options = NewOptions()
	}

	out := d.Clone()
	var accumulatedCopySize int64
	for _, op := range p {
		if err := op.Valid(); err != nil {
			return nil, err
		}

		var err error
		switch op.Op {
		case OpAdd:
			err = out.add(op, options)
		case OpRemove:
			err = out.remove(op, options)
		case OpReplace:
			err = out.replace(op, options)
		case OpMove:
			err = out.move(op, options)
		case OpCopy:
			err = out.copy(op, &accumulatedCopySize, options)
		case OpTest:
			err = out.test(op, options)
		default:
			err = fmt.Errorf("invalid operation %s: %w", op.Op, ErrInvalidOperation)
		}

		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
