// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	rfc6901Encoder = strings.NewReplacer("~", "~0", "/", "~1")
	rfc6901Decoder = strings.NewReplacer("~1", "/", "~0", "~")
)

// Pointer is a parsed RFC 6901 JSON Pointer. The empty, non-nil Pointer
// refers to the whole document. A nil Pointer means "no pointer", which is
// how an absent "from" is represented.
type Pointer []string

// ParsePointer parses s as a JSON Pointer.
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("%q must start with '/': %w", s, ErrInvalidPointer)
	}

	parts := strings.Split(s[1:], "/")
	p := make(Pointer, len(parts))
	for i, part := range parts {
		if !validEscapes(part) {
			return nil, fmt.Errorf("%q has an invalid escape sequence: %w", s, ErrInvalidPointer)
		}
		p[i] = rfc6901Decoder.Replace(part)
	}
	return p, nil
}

// MustParsePointer is like ParsePointer but panics on error.
func MustParsePointer(s string) Pointer {
	p, err := ParsePointer(s)
	if err != nil {
		panic(err)
	}
	return p
}

func validEscapes(token string) bool {
	for i := 0; i < len(token); i++ {
		if token[i] != '~' {
			continue
		}
		if i+1 >= len(token) || (token[i+1] != '0' && token[i+1] != '1') {
			return false
		}
	}
	return true
}

// String returns the escaped textual form of the pointer.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, token := range p {
		sb.WriteByte('/')
		sb.WriteString(rfc6901Encoder.Replace(token))
	}
	return sb.String()
}

// IsRoot reports whether p refers to the whole document.
func (p Pointer) IsRoot() bool {
	return p != nil && len(p) == 0
}

// Parent returns the pointer without its last token. It returns false for
// the root pointer, which has no parent.
func (p Pointer) Parent() (Pointer, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[:len(p)-1:len(p)-1], true
}

// Last returns the last token of p, or "" for the root pointer.
func (p Pointer) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Append returns a new pointer with tokens added to the end of p.
func (p Pointer) Append(tokens ...string) Pointer {
	np := make(Pointer, len(p), len(p)+len(tokens))
	copy(np, p)
	return append(np, tokens...)
}

// AppendIndex returns a new pointer with the array index i added to p.
func (p Pointer) AppendIndex(i int) Pointer {
	return p.Append(strconv.Itoa(i))
}

// Equal reports whether p and o refer to the same location.
func (p Pointer) Equal(o Pointer) bool {
	if (p == nil) != (o == nil) || len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether o is p itself or one of its ancestors.
func (p Pointer) HasPrefix(o Pointer) bool {
	if o == nil || len(o) > len(p) {
		return false
	}
	return p[:len(o)].Equal(o)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (p Pointer) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (p *Pointer) UnmarshalText(text []byte) error {
	np, err := ParsePointer(string(text))
	if err != nil {
		return err
	}
	*p = np
	return nil
}

// appendToken is the "-" token, which addresses the position after the last
// element of an array.
const appendToken = "-"

// isIndex reports whether token looks like an array index.
func isIndex(token string) bool {
	if token == appendToken {
		return true
	}
	_, err := toIndex(token)
	return err == nil
}

// toIndex parses an array index token. Leading zeros are rejected, a leading
// minus sign is accepted for the negative index extension.
func toIndex(token string) (int, error) {
	digits := strings.TrimPrefix(token, "-")
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return 0, fmt.Errorf("invalid index %q, %w", token, ErrInvalidIndex)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("invalid index %q, %w", token, ErrInvalidIndex)
		}
	}

	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q, %w", token, ErrInvalidIndex)
	}
	return i, nil
}
