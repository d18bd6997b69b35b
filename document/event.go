// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package document

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/valtimo-go/jsonpatch"
)

// FieldChange describes the effect of one patch operation on a document.
type FieldChange struct {
	Op       string          `json:"op"`
	Path     string          `json:"path"`
	From     string          `json:"from,omitempty"`
	OldValue json.RawMessage `json:"oldValue,omitempty"`
	NewValue json.RawMessage `json:"newValue,omitempty"`
}

// ModifiedEvent is published after the content of a document changed.
type ModifiedEvent struct {
	DocumentID uuid.UUID       `json:"documentId"`
	Version    int64           `json:"version"`
	ModifiedOn time.Time       `json:"modifiedOn"`
	Patch      jsonpatch.Patch `json:"patch"`
	Changes    []FieldChange   `json:"changes"`
}

// Publisher receives modification events.
type Publisher interface {
	Publish(ctx context.Context, event *ModifiedEvent) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, event *ModifiedEvent) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, event *ModifiedEvent) error {
	return f(ctx, event)
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, *ModifiedEvent) error { return nil }

// fieldChanges describes p against the content it was applied to. Each
// operation is described against the result of the operations before it.
func fieldChanges(before *jsonpatch.Document, p jsonpatch.Patch, options *jsonpatch.Options) []FieldChange {
	changes := make([]FieldChange, 0, len(p))
	cur := before
	for _, op := range p {
		if op.Op == jsonpatch.OpTest {
			continue
		}

		c := FieldChange{Op: op.Op.String(), Path: op.Path.String()}
		switch op.Op {
		case jsonpatch.OpAdd:
			c.NewValue = op.Value
			c.OldValue = overwrittenValue(cur, op.Path, options)
		case jsonpatch.OpReplace:
			c.NewValue = op.Value
			c.OldValue = valueAt(cur, op.Path, options)
		case jsonpatch.OpRemove:
			c.OldValue = valueAt(cur, op.Path, options)
		case jsonpatch.OpMove, jsonpatch.OpCopy:
			c.From = op.From.String()
			c.NewValue = valueAt(cur, op.From, options)
			c.OldValue = overwrittenValue(cur, op.Path, options)
		}
		changes = append(changes, c)

		next, err := cur.ApplyWithOptions(jsonpatch.Patch{op}, options)
		if err != nil {
			break
		}
		cur = next
	}
	return changes
}

// overwrittenValue returns the value an add-like operation at p replaces.
// Adding into an array inserts, so nothing is overwritten there.
func overwrittenValue(d *jsonpatch.Document, p jsonpatch.Pointer, options *jsonpatch.Options) json.RawMessage {
	if parent, ok := p.Parent(); ok {
		if v, err := d.GetWithOptions(parent, options); err == nil {
			if _, isArray := v.([]any); isArray {
				return nil
			}
		}
	}
	return valueAt(d, p, options)
}

func valueAt(d *jsonpatch.Document, p jsonpatch.Pointer, options *jsonpatch.Options) json.RawMessage {
	v, err := d.GetWithOptions(p, options)
	if err != nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
