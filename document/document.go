// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package document keeps JSON business documents and records every
// modification of their content as a patch, published as a ModifiedEvent.
package document

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrConflict       = errors.New("document was modified concurrently")
	ErrInvalidContent = errors.New("document content must be a JSON object")
)

// Document is a JSON business record of a given definition.
type Document struct {
	ID                uuid.UUID       `json:"id"`
	DefinitionName    string          `json:"definitionName"`
	DefinitionVersion int             `json:"definitionVersion"`
	Content           json.RawMessage `json:"content"`
	Version           int64           `json:"version"`
	CreatedOn         time.Time       `json:"createdOn"`
	ModifiedOn        time.Time       `json:"modifiedOn"`
}

// Clone returns a copy of d that shares no memory with it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	nd := *d
	nd.Content = append(json.RawMessage(nil), d.Content...)
	return &nd
}
