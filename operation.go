// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Op int

const (
	OpReserved Op = iota
	OpAdd
	OpRemove
	OpReplace
	OpMove
	OpCopy
	OpTest
)

// String returns a string representation of the Op.
func (op Op) String() string {
	switch op {
	default:
		return fmt.Sprintf("reserved(%d)", op)
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpReplace:
		return "replace"
	case OpMove:
		return "move"
	case OpCopy:
		return "copy"
	case OpTest:
		return "test"
	}
}

// ParseOp maps the textual form of an operation kind to an Op, ignoring case.
// Unknown text fails with ErrUnknownOp.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "add":
		return OpAdd, nil
	case "remove":
		return OpRemove, nil
	case "replace":
		return OpReplace, nil
	case "move":
		return OpMove, nil
	case "copy":
		return OpCopy, nil
	case "test":
		return OpTest, nil
	}
	return OpReserved, fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// MustParseOp is like ParseOp but panics on unknown text.
func MustParseOp(s string) Op {
	op, err := ParseOp(s)
	if err != nil {
		panic(err)
	}
	return op
}

// MarshalText implements the encoding.TextMarshaler interface.
func (op Op) MarshalText() ([]byte, error) {
	if op < OpAdd || op > OpTest {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, op)
	}
	return []byte(op.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (op *Op) UnmarshalText(text []byte) error {
	v, err := ParseOp(string(text))
	if err != nil {
		return err
	}
	*op = v
	return nil
}

// Null is the JSON null value. Use it to add or replace with null, since a
// nil value means "no value" to the constructors.
var Null = json.RawMessage("null")

// Operation is a single JSON Patch step, such as a single 'add' operation.
// Operations are immutable once constructed.
type Operation struct {
	Op    Op
	From  Pointer
	Path  Pointer
	Value json.RawMessage
}

// NewAdd returns an "add" operation. value must not be nil.
func NewAdd(path string, value any) (*Operation, error) {
	return newOperation(OpAdd, "", path, value)
}

// NewRemove returns a "remove" operation.
func NewRemove(path string) (*Operation, error) {
	return newOperation(OpRemove, "", path, nil)
}

// NewReplace returns a "replace" operation. value must not be nil.
func NewReplace(path string, value any) (*Operation, error) {
	return newOperation(OpReplace, "", path, value)
}

// NewMove returns a "move" operation.
func NewMove(from, path string) (*Operation, error) {
	return newOperation(OpMove, from, path, nil)
}

// NewCopy returns a "copy" operation.
func NewCopy(from, path string) (*Operation, error) {
	return newOperation(OpCopy, from, path, nil)
}

// NewTest returns a "test" operation. value must not be nil.
func NewTest(path string, value any) (*Operation, error) {
	return newOperation(OpTest, "", path, value)
}

// MustOperation panics if err is non-nil and returns op otherwise.
//
//	op := jsonpatch.MustOperation(jsonpatch.NewAdd("/favorites/-", "Bread"))
func MustOperation(op *Operation, err error) *Operation {
	if err != nil {
		panic(err)
	}
	return op
}

func newOperation(kind Op, from, path string, value any) (*Operation, error) {
	o := &Operation{Op: kind}
	var err error

	if kind == OpMove || kind == OpCopy {
		if o.From, err = ParsePointer(from); err != nil {
			return nil, fmt.Errorf("%s operation: from: %w", kind, err)
		}
	}
	if o.Path, err = ParsePointer(path); err != nil {
		return nil, fmt.Errorf("%s operation: path: %w", kind, err)
	}
	if o.Value, err = marshalValue(value); err != nil {
		return nil, fmt.Errorf("%s operation: value: %w", kind, err)
	}

	if err = o.Valid(); err != nil {
		return nil, err
	}
	return o, nil
}

// marshalValue encodes v as compact JSON. A nil v yields a nil message,
// json.RawMessage values are validated and compacted.
func marshalValue(v any) (json.RawMessage, error) {
	switch rv := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if rv == nil {
			return nil, nil
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, rv); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case *Document:
		return rv.MarshalJSON()
	}
	return json.Marshal(v)
}

// Valid checks the fields required by the operation kind.
func (o *Operation) Valid() error {
	if o == nil {
		return fmt.Errorf("nil operation: %w", ErrInvalidOperation)
	}
	if o.Path == nil {
		return fmt.Errorf(`"path" must be non-nil for %q operation: %w`, o.Op.String(), ErrInvalidOperation)
	}

	switch o.Op {
	default:
		return fmt.Errorf("invalid operation %s: %w", o.Op, ErrInvalidOperation)

	case OpAdd, OpReplace, OpTest:
		if o.From != nil {
			return fmt.Errorf(`"from" must be nil for %q operation: %w`, o.Op.String(), ErrInvalidOperation)
		}
		if o.Value == nil {
			return fmt.Errorf(`"value" must be non-nil for %q operation: %w`, o.Op.String(), ErrInvalidOperation)
		}

	case OpRemove:
		if o.From != nil {
			return fmt.Errorf(`"from" must be nil for "remove" operation: %w`, ErrInvalidOperation)
		}
		if o.Value != nil {
			return fmt.Errorf(`"value" must be nil for "remove" operation: %w`, ErrInvalidOperation)
		}

	case OpMove, OpCopy:
		if o.From == nil {
			return fmt.Errorf(`"from" must be non-nil for %q operation: %w`, o.Op.String(), ErrInvalidOperation)
		}
		if o.Value != nil {
			return fmt.Errorf(`"value" must be nil for %q operation: %w`, o.Op.String(), ErrInvalidOperation)
		}
	}

	return nil
}

// Equal reports whether o and other are structurally equal: same kind,
// pointers and value. Values are compared semantically, so object key order
// and insignificant whitespace do not matter.
func (o *Operation) Equal(other *Operation) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.key() == other.key()
}

// key returns the structural identity of o, used for set semantics in Patch
// and Builder.
func (o *Operation) key() string {
	var sb strings.Builder
	sb.WriteString(o.Op.String())
	sb.WriteByte(0)
	sb.WriteString(o.Path.String())
	sb.WriteByte(0)
	if o.From == nil {
		sb.WriteByte(1)
	} else {
		sb.WriteString(o.From.String())
	}
	sb.WriteByte(0)
	sb.Write(canonicalJSON(o.Value))
	return sb.String()
}

// canonicalJSON re-encodes data with sorted object keys. Invalid input is
// returned unchanged.
func canonicalJSON(data json.RawMessage) []byte {
	if data == nil {
		return nil
	}
	v, err := decodeJSON(data)
	if err != nil {
		return data
	}
	out, err := json.Marshal(v)
	if err != nil {
		return data
	}
	return out
}

// value decodes the operation value into a fresh tree.
func (o *Operation) value() (any, error) {
	return decodeJSON(o.Value)
}

// String returns the operation as JSON.
func (o *Operation) String() string {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf("%s %s", o.Op, o.Path)
	}
	return string(data)
}

type operationJSON struct {
	Op    Op              `json:"op"`
	From  *string         `json:"from,omitempty"`
	Path  *string         `json:"path,omitempty"`
	To    *string         `json:"to,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (o *Operation) MarshalJSON() ([]byte, error) {
	if err := o.Valid(); err != nil {
		return nil, err
	}

	path := o.Path.String()
	w := operationJSON{Op: o.Op, Path: &path, Value: o.Value}
	if o.From != nil {
		from := o.From.String()
		w.From = &from
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements the json.Unmarshaler interface. For "move" and
// "copy" a "to" member is accepted in place of "path".
func (o *Operation) UnmarshalJSON(data []byte) error {
	if o == nil {
		return errors.New("nil operation")
	}

	var w operationJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	no := Operation{Op: w.Op, Value: w.Value}
	var err error
	path := w.Path
	if path == nil && (w.Op == OpMove || w.Op == OpCopy) {
		path = w.To
	}
	if path != nil {
		if no.Path, err = ParsePointer(*path); err != nil {
			return err
		}
	}
	if w.From != nil {
		if no.From, err = ParsePointer(*w.From); err != nil {
			return err
		}
	}
	if no.Value != nil {
		if no.Value, err = marshalValue(no.Value); err != nil {
			return err
		}
	}

	if err = no.Valid(); err != nil {
		return err
	}
	*o = no
	return nil
}
