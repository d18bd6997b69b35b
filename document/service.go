// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valtimo-go/jsonpatch"
)

// Service creates documents and applies modifications to their content.
type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	options   *jsonpatch.Options
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the receiver of modification events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPatchOptions sets the options used when applying patches.
func WithPatchOptions(o *jsonpatch.Options) Option {
	return func(s *Service) { s.options = o }
}

// NewService returns a Service storing documents in repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: discardPublisher{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		options:   jsonpatch.NewOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new document with the given content, which must be a JSON
// object.
func (s *Service) Create(ctx context.Context, definitionName string, definitionVersion int, content json.RawMessage) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := parseContent(content)
	if err != nil {
		return nil, err
	}
	normalized, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}

	doc := &Document{
		ID:                uuid.New(),
		DefinitionName:    definitionName,
		DefinitionVersion: definitionVersion,
		Content:           normalized,
		Version:           1,
		CreatedOn:         s.now(),
	}
	if err = s.repo.Save(ctx, doc, 0); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "document created",
		slog.String("id", doc.ID.String()),
		slog.String("definition", definitionName),
		slog.Int("definitionVersion", definitionVersion))
	return doc, nil
}

// Get returns the document with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// ApplyModifiedContent replaces the content of a document, recording the
// difference as a patch. When the content is unchanged nothing is stored and
// the returned event is nil.
func (s *Service) ApplyModifiedContent(ctx context.Context, id uuid.UUID, content json.RawMessage) (*Document, *ModifiedEvent, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	target, err := parseContent(content)
	if err != nil {
		return nil, nil, err
	}
	before, err := parseContent(doc.Content)
	if err != nil {
		return nil, nil, err
	}

	p, err := jsonpatch.DiffDocuments(before, target)
	if err != nil {
		return nil, nil, err
	}
	return s.modify(ctx, doc, before, p)
}

// ApplyPatch applies p to the content of a document. The result must still
// be a JSON object.
func (s *Service) ApplyPatch(ctx context.Context, id uuid.UUID, p jsonpatch.Patch) (*Document, *ModifiedEvent, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	before, err := parseContent(doc.Content)
	if err != nil {
		return nil, nil, err
	}
	return s.modify(ctx, doc, before, p)
}

func (s *Service) modify(ctx context.Context, doc *Document, before *jsonpatch.Document, p jsonpatch.Patch) (*Document, *ModifiedEvent, error) {
	if p.Len() == 0 {
		s.logger.DebugContext(ctx, "document unchanged", slog.String("id", doc.ID.String()))
		return doc, nil, nil
	}

	after, err := before.ApplyWithOptions(p, s.options)
	if err != nil {
		s.logger.WarnContext(ctx, "unable to modify document",
			slog.String("id", doc.ID.String()),
			slog.Any("error", err))
		return nil, nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	if _, ok := after.Value().(map[string]any); !ok {
		return nil, nil, fmt.Errorf("document %s: %w", doc.ID, ErrInvalidContent)
	}
	content, err := after.MarshalJSON()
	if err != nil {
		return nil, nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, nil, err
	}
	modified := doc.Clone()
	modified.Content = content
	modified.Version = doc.Version + 1
	modified.ModifiedOn = s.now()
	if err = s.repo.Save(ctx, modified, doc.Version); err != nil {
		return nil, nil, err
	}

	event := &ModifiedEvent{
		DocumentID: modified.ID,
		Version:    modified.Version,
		ModifiedOn: modified.ModifiedOn,
		Patch:      p,
		Changes:    fieldChanges(before, p, s.options),
	}
	s.logger.InfoContext(ctx, "document modified",
		slog.String("id", modified.ID.String()),
		slog.Int64("version", modified.Version),
		slog.Int("changes", len(event.Changes)))

	if err = s.publisher.Publish(ctx, event); err != nil {
		return modified, event, fmt.Errorf("publish modification of document %s: %w", modified.ID, err)
	}
	return modified, event, nil
}

func parseContent(content json.RawMessage) (*jsonpatch.Document, error) {
	d, err := jsonpatch.ParseDocument(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if _, ok := d.Value().(map[string]any); !ok {
		return nil, ErrInvalidContent
	}
	return d, nil
}
