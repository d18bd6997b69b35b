// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"encoding/json"
	"fmt"
)

// Builder accumulates operations into a Patch. Structurally equal operations
// are kept once, in the order they were first added.
//
// The first error encountered is sticky: later calls are ignored and Build
// reports it. A Builder is not safe for concurrent use.
type Builder struct {
	ops  []*Operation
	seen map[string]struct{}
	err  error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

func (b *Builder) push(op *Operation, err error) *Builder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = err
		return b
	}
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}

	k := op.key()
	if _, ok := b.seen[k]; ok {
		return b
	}
	b.seen[k] = struct{}{}
	b.ops = append(b.ops, op)
	return b
}

// Add queues an "add" operation.
func (b *Builder) Add(path string, value any) *Builder {
	return b.push(NewAdd(path, value))
}

// Remove queues a "remove" operation.
func (b *Builder) Remove(path string) *Builder {
	return b.push(NewRemove(path))
}

// Replace queues a "replace" operation.
func (b *Builder) Replace(path string, value any) *Builder {
	return b.push(NewReplace(path, value))
}

// Move queues a "move" operation.
func (b *Builder) Move(from, path string) *Builder {
	return b.push(NewMove(from, path))
}

// Copy queues a "copy" operation.
func (b *Builder) Copy(from, path string) *Builder {
	return b.push(NewCopy(from, path))
}

// Test queues a "test" operation.
func (b *Builder) Test(path string, value any) *Builder {
	return b.push(NewTest(path, value))
}

// Operation queues an already constructed operation.
func (b *Builder) Operation(op *Operation) *Builder {
	return b.push(op, op.Valid())
}

// AddValue queues the operations that set value at path in destination,
// taking into account what is already queued.
//
// The first "-" token of path is resolved to the lowest array index that is
// neither targeted by a queued operation nor present in destination; any
// further "-" token becomes "0". Missing parent containers are created first,
// as arrays when the following token is numeric and objects otherwise. The
// value itself is queued as "add" when the target is missing or holds an
// array, and as "replace" otherwise.
func (b *Builder) AddValue(destination *Document, path string, value any) *Builder {
	if b.err != nil {
		return b
	}

	raw, err := marshalValue(value)
	if err != nil {
		b.err = fmt.Errorf("add value at %q: %w", path, err)
		return b
	}
	if raw == nil {
		b.err = fmt.Errorf(`add value at %q: "value" must be non-nil: %w`, path, ErrInvalidOperation)
		return b
	}

	ptr, err := ParsePointer(path)
	if err != nil {
		b.err = err
		return b
	}
	if ptr, err = b.resolveAppend(destination, ptr); err != nil {
		b.err = err
		return b
	}

	b.addValue(destination, ptr, raw)
	return b
}

func (b *Builder) addValue(destination *Document, path Pointer, value json.RawMessage) {
	if parent, ok := path.Parent(); ok && len(parent) > 0 {
		if _, found := b.lookup(destination, parent, len(b.ops)); !found {
			node := json.RawMessage(`{}`)
			if isIndex(path.Last()) {
				node = json.RawMessage(`[]`)
			}
			b.addValue(destination, parent, node)
		}
	}

	cur, found := b.lookup(destination, path, len(b.ops))
	if _, isArray := cur.([]any); !found || isArray {
		b.push(&Operation{Op: OpAdd, Path: path, Value: value}, nil)
		return
	}
	b.push(&Operation{Op: OpReplace, Path: path, Value: value}, nil)
}

// resolveAppend replaces the first "-" token of path with a concrete index
// and every later "-" token with "0".
//
// Candidates are probed upwards from 0. At most len(array)+len(queued)+1
// candidates exist before one is guaranteed free, so the search is bounded.
func (b *Builder) resolveAppend(destination *Document, path Pointer) (Pointer, error) {
	at := -1
	for i, token := range path {
		if token == appendToken {
			at = i
			break
		}
	}
	if at < 0 {
		return path, nil
	}

	prefix := path[:at:at]
	size := 0
	if ary, ok := destination.Get(prefix); ok {
		if a, ok := ary.([]any); ok {
			size = len(a)
		}
	}

	limit := size + len(b.ops)
	for idx := 0; idx <= limit; idx++ {
		candidate := prefix.AppendIndex(idx)
		if b.targets(candidate) || destination.Has(candidate) {
			continue
		}

		resolved := candidate
		for _, token := range path[at+1:] {
			if token == appendToken {
				token = "0"
			}
			resolved = append(resolved, token)
		}
		return resolved, nil
	}
	return nil, fmt.Errorf("%q after %d candidates: %w", path.String(), limit+1, ErrAppendIndexExhausted)
}

// targets reports whether a queued operation writes exactly at path.
func (b *Builder) targets(path Pointer) bool {
	for _, op := range b.ops {
		if op.Path.Equal(path) {
			return true
		}
	}
	return false
}

// lookup returns the value at path as it would be after applying the first n
// queued operations to destination. Only the effects needed for AddValue are
// tracked: the latest queued write at or above path wins, removals and
// moves hide their source, otherwise destination is consulted.
func (b *Builder) lookup(destination *Document, path Pointer, n int) (any, bool) {
	for i := n - 1; i >= 0; i-- {
		op := b.ops[i]
		switch op.Op {
		case OpAdd, OpReplace:
			if path.HasPrefix(op.Path) {
				v, err := op.value()
				if err != nil {
					return nil, false
				}
				return getIn(v, path[len(op.Path):])
			}
		case OpCopy, OpMove:
			if path.HasPrefix(op.Path) {
				src, ok := b.lookup(destination, op.From, i)
				if !ok {
					return nil, false
				}
				return getIn(src, path[len(op.Path):])
			}
			if op.Op == OpMove && path.HasPrefix(op.From) {
				return nil, false
			}
		case OpRemove:
			if path.HasPrefix(op.Path) {
				return nil, false
			}
		}
	}
	return destination.Get(path)
}

// Len returns the number of queued operations.
func (b *Builder) Len() int {
	return len(b.ops)
}

// Err returns the first error encountered by the builder.
func (b *Builder) Err() error {
	return b.err
}

// Build freezes the queued operations into a Patch. The builder can keep
// being used; the returned Patch is not affected by it.
func (b *Builder) Build() (Patch, error) {
	if b.err != nil {
		return nil, b.err
	}
	p := make(Patch, len(b.ops))
	copy(p, b.ops)
	return p, nil
}
