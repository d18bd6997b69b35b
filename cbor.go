// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
//
// This file is a derived work, based on the github.com/fxamacker/cbor whose original
// notices appear below.
//
// It is distributed under a license compatible with the licensing terms of the
// original code from which it is derived.
//
// Much love to the original authors for their work.
// **********
// MIT License
//
// Copyright (c) 2019-present Faye Amacker
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package jsonpatch

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// Predefined CBORTypes.
const (
	CBORTypePositiveInt CBORType = 0x00
	CBORTypeNegativeInt CBORType = 0x20
	CBORTypeByteString  CBORType = 0x40
	CBORTypeTextString  CBORType = 0x60
	CBORTypeArray       CBORType = 0x80
	CBORTypeMap         CBORType = 0xa0
	CBORTypeTag         CBORType = 0xc0
	CBORTypePrimitives  CBORType = 0xe0
	CBORTypeInvalid     CBORType = 0xff
)

var (
	decMode, _ = cbor.DecOptions{
		DupMapKey:      cbor.DupMapKeyQuiet,
		IndefLength:    cbor.IndefLengthForbidden,
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()

	encMode, _ = cbor.EncOptions{
		Sort:          cbor.SortLengthFirst,
		Time:          cbor.TimeRFC3339Nano,
		ShortestFloat: cbor.ShortestFloat16,
		NaNConvert:    cbor.NaNConvert7e00,
		InfConvert:    cbor.InfConvertFloat16,
		IndefLength:   cbor.IndefLengthForbidden,
		BigIntConvert: cbor.BigIntConvertShortest,
	}.EncMode()

	cborUnmarshal = decMode.Unmarshal
	cborMarshal   = encMode.Marshal
)

// SetCBOR set the underlying global CBOR Marshal and Unmarshal functions used
// by the CBOR wire format of patches.
//
//	func init() {
//		var EncMode, _ = cbor.CanonicalEncOptions().EncMode()
//		var DecMode, _ = cbor.DecOptions{
//			DefaultMapType: reflect.TypeOf(map[string]any(nil)),
//		}.DecMode()
//
//		jsonpatch.SetCBOR(EncMode.Marshal, DecMode.Unmarshal)
//	}
func SetCBOR(
	marshal func(v interface{}) ([]byte, error),
	unmarshal func(data []byte, v interface{}) error,
) {
	cborMarshal = marshal
	cborUnmarshal = unmarshal
}

// CBORType is the type of a raw encoded CBOR value.
type CBORType uint8

// String returns a string representation of CBORType.
func (t CBORType) String() string {
	switch t {
	case CBORTypePositiveInt:
		return "positive integer"
	case CBORTypeNegativeInt:
		return "negative integer"
	case CBORTypeByteString:
		return "byte string"
	case CBORTypeTextString:
		return "UTF-8 text string"
	case CBORTypeArray:
		return "array"
	case CBORTypeMap:
		return "map"
	case CBORTypeTag:
		return "tag"
	case CBORTypePrimitives:
		return "primitives"
	default:
		return "invalid type " + strconv.Itoa(int(t))
	}
}

// ReadCBORType returns the type of a raw encoded CBOR value.
func ReadCBORType(data []byte) CBORType {
	if len(data) == 0 {
		return CBORTypeInvalid
	}
	return CBORType(data[0] & 0xe0)
}

// cborOperation is the CBOR shape of an Operation. The value is the CBOR
// encoding of the JSON value.
type cborOperation struct {
	Op    string          `cbor:"op"`
	From  *string         `cbor:"from,omitempty"`
	Path  string          `cbor:"path"`
	Value cbor.RawMessage `cbor:"value,omitempty"`
}

// MarshalCBOR encodes the patch as a CBOR array of operation maps.
func (p Patch) MarshalCBOR() ([]byte, error) {
	ops := make([]cborOperation, len(p))
	for i, op := range p {
		if err := op.Valid(); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		co := cborOperation{Op: op.Op.String(), Path: op.Path.String()}
		if op.From != nil {
			from := op.From.String()
			co.From = &from
		}
		if op.Value != nil {
			v, err := JSONToCBOR(op.Value, nil)
			if err != nil {
				return nil, fmt.Errorf("operation %d: %w", i, err)
			}
			co.Value = v
		}
		ops[i] = co
	}
	return cborMarshal(ops)
}

// DecodeCBORPatch decodes a patch encoded with Patch.MarshalCBOR.
func DecodeCBORPatch(data []byte) (Patch, error) {
	if ty := ReadCBORType(data); ty != CBORTypeArray {
		return nil, fmt.Errorf("expected CBOR array, got %s", ty)
	}

	var cops []cborOperation
	if err := cborUnmarshal(data, &cops); err != nil {
		return nil, err
	}

	ops := make([]*Operation, len(cops))
	for i, co := range cops {
		kind, err := ParseOp(co.Op)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		op := &Operation{Op: kind}
		if op.Path, err = ParsePointer(co.Path); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		if co.From != nil {
			if op.From, err = ParsePointer(*co.From); err != nil {
				return nil, fmt.Errorf("operation %d: %w", i, err)
			}
		}
		if co.Value != nil {
			if op.Value, err = CBORToJSON(co.Value, nil); err != nil {
				return nil, fmt.Errorf("operation %d: %w", i, err)
			}
		}
		ops[i] = op
	}
	return NewPatch(ops...)
}
