// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package document

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Repository stores documents.
type Repository interface {
	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	// Save stores doc if the stored version equals expectedVersion, zero
	// meaning the document must not exist yet. Otherwise it fails with
	// ErrConflict.
	Save(ctx context.Context, doc *Document, expectedVersion int64) error
}

// MemoryRepository is an in-memory Repository. It is safe for concurrent use.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*Document
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[uuid.UUID]*Document)}
}

// Get implements Repository.
func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return doc.Clone(), nil
}

// Save implements Repository.
func (r *MemoryRepository) Save(ctx context.Context, doc *Document, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var current int64
	if old, ok := r.docs[doc.ID]; ok {
		current = old.Version
	}
	if current != expectedVersion {
		return fmt.Errorf("%s: expected version %d, stored %d: %w", doc.ID, expectedVersion, current, ErrConflict)
	}
	r.docs[doc.ID] = doc.Clone()
	return nil
}

// Len returns the number of stored documents.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
