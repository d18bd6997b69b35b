// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"encoding/json"
	"fmt"
)

var (
	// SupportNegativeIndices decides whether to support non-standard practice of
	// allowing negative indices to mean indices starting at the end of an array.
	// Default to true.
	SupportNegativeIndices bool = true
	// AccumulatedCopySizeLimit limits the total size increase in bytes caused by
	// "copy" operations in a patch.
	AccumulatedCopySizeLimit int64 = 0
)

// Options specifies options for calls to ApplyWithOptions.
// Use NewOptions to obtain default values for Options.
type Options struct {
	// SupportNegativeIndices decides whether to support non-standard practice of
	// allowing negative indices to mean indices starting at the end of an array.
	SupportNegativeIndices bool
	// AccumulatedCopySizeLimit limits the total size increase in bytes caused by
	// "copy" operations in a patch. Zero means no limit.
	AccumulatedCopySizeLimit int64
	// AllowMissingPathOnRemove makes "remove" of a missing path a no-op.
	AllowMissingPathOnRemove bool
	// EnsurePathExistsOnAdd recursively creates the missing parts of the path
	// on "add" operations.
	EnsurePathExistsOnAdd bool
}

// NewOptions creates a default set of options for calls to ApplyWithOptions.
func NewOptions() *Options {
	return &Options{
		SupportNegativeIndices:   SupportNegativeIndices,
		AccumulatedCopySizeLimit: AccumulatedCopySizeLimit,
		AllowMissingPathOnRemove: false,
		EnsurePathExistsOnAdd:    false,
	}
}

// Patch is an ordered collection of distinct Operations. Operations keep the
// order in which they were first added; structurally equal duplicates are
// dropped. A Patch returned by this package must not be modified in place.
type Patch []*Operation

// NewPatch validates ops and returns them as a Patch, dropping structural
// duplicates while keeping first-insertion order.
func NewPatch(ops ...*Operation) (Patch, error) {
	p := make(Patch, 0, len(ops))
	seen := make(map[string]struct{}, len(ops))
	for i, op := range ops {
		if err := op.Valid(); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		k := op.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		p = append(p, op)
	}
	return p, nil
}

// DecodePatch decodes the passed JSON document as an RFC 6902 patch.
func DecodePatch(doc []byte) (Patch, error) {
	var ops []*Operation
	if err := json.Unmarshal(doc, &ops); err != nil {
		return nil, err
	}
	return NewPatch(ops...)
}

// MustDecodePatch is like DecodePatch but panics on error.
func MustDecodePatch(doc string) Patch {
	p, err := DecodePatch([]byte(doc))
	if err != nil {
		panic(err)
	}
	return p
}

// Valid checks every operation of the patch.
func (p Patch) Valid() error {
	for i, op := range p {
		if err := op.Valid(); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// Len returns the number of operations.
func (p Patch) Len() int {
	return len(p)
}

// Operations returns a copy of the operation list.
func (p Patch) Operations() []*Operation {
	ops := make([]*Operation, len(p))
	copy(ops, p)
	return ops
}

// Contains reports whether an operation structurally equal to op is part of
// the patch.
func (p Patch) Contains(op *Operation) bool {
	for _, o := range p {
		if o.Equal(op) {
			return true
		}
	}
	return false
}

// MarshalJSON implements the json.Marshaler interface. A nil Patch encodes
// as an empty array.
func (p Patch) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]*Operation(p))
}

// String returns the patch as JSON.
func (p Patch) String() string {
	data, err := p.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("invalid patch: %v", err)
	}
	return string(data)
}

// Apply applies the patch to a JSON document and returns the new document.
func (p Patch) Apply(doc []byte) ([]byte, error) {
	return p.ApplyWithOptions(doc, NewOptions())
}

// ApplyWithOptions applies the patch to a JSON document according to the
// passed in Options and returns the new document.
func (p Patch) ApplyWithOptions(doc []byte, options *Options) ([]byte, error) {
	d, err := ParseDocument(doc)
	if err != nil {
		return nil, err
	}
	out, err := d.ApplyWithOptions(p, options)
	if err != nil {
		return nil, err
	}
	return out.MarshalJSON()
}
