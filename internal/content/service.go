package content

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/content"
	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	"github.com/compositor-cms/compositor/schema"
)

// Option mutates the content service.
type Option func(*service)

// WithClock overrides the clock used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator for new items.
func WithIDGenerator(generator IDGenerator) Option {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger attaches a logger to the service.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs the collection item service. Item data is stored
// as-is: the owning collection's fields describe the payload for editing
// surfaces but writes are not schema-gated. Page component data takes the
// strict path instead.
func NewService(repo Repository, schemas schema.Service, opts ...Option) content.Service {
	svc := &service{
		repo:    repo,
		schemas: schemas,
		now:     func() time.Time { return time.Now().UTC() },
		id:      uuid.New,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

type service struct {
	repo    Repository
	schemas schema.Service
	now     func() time.Time
	id      IDGenerator
	logger  interfaces.Logger
}

func (s *service) Create(ctx context.Context, req content.CreateItemRequest) (*content.Item, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("content service unavailable")
	}
	if req.CollectionID == uuid.Nil {
		return nil, content.ErrCollectionRequired
	}

	if err := s.checkCollection(ctx, req.CollectionID); err != nil {
		return nil, err
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		count, err := s.repo.CountByCollection(ctx, req.CollectionID)
		if err != nil {
			return nil, err
		}
		order = count
	}

	now := s.now()
	item := &content.Item{
		ID:           s.id(),
		CollectionID: req.CollectionID,
		Data:         req.Data,
		IsPublished:  req.IsPublished,
		Order:        order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection item created", "collection_id", created.CollectionID, "order", created.Order)
	return created, nil
}

func (s *service) Update(ctx context.Context, req content.UpdateItemRequest) (*content.Item, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("content service unavailable")
	}
	if req.ID == uuid.Nil {
		return nil, content.ErrItemRequired
	}

	item, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Data != nil {
		item.Data = req.Data
	}
	if req.IsPublished != nil {
		item.IsPublished = *req.IsPublished
	}
	if req.Order != nil {
		item.Order = *req.Order
	}
	item.UpdatedAt = s.now()

	return s.repo.Update(ctx, item)
}

func (s *service) Delete(ctx context.Context, req content.DeleteItemRequest) error {
	if s == nil || s.repo == nil {
		return errors.New("content service unavailable")
	}
	if req.ID == uuid.Nil {
		return content.ErrItemRequired
	}
	return s.repo.Delete(ctx, req.ID, req.HardDelete)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*content.Item, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("content service unavailable")
	}
	if id == uuid.Nil {
		return nil, content.ErrItemRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, collectionID uuid.UUID) ([]*content.Item, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("content service unavailable")
	}
	if collectionID == uuid.Nil {
		return nil, content.ErrCollectionRequired
	}
	return s.repo.ListByCollection(ctx, collectionID, false)
}

func (s *service) ListPublished(ctx context.Context, collectionID uuid.UUID) ([]*content.Item, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("content service unavailable")
	}
	if collectionID == uuid.Nil {
		return nil, content.ErrCollectionRequired
	}
	return s.repo.ListByCollection(ctx, collectionID, true)
}

func (s *service) checkCollection(ctx context.Context, collectionID uuid.UUID) error {
	if s.schemas == nil {
		return nil
	}
	definition, err := s.schemas.Get(ctx, collectionID)
	if err != nil {
		var notFound *schema.NotFoundError
		if errors.As(err, &notFound) {
			return &content.NotFoundError{Resource: "collection", Key: collectionID.String()}
		}
		return err
	}
	if definition.Kind != schema.KindCollection {
		return content.ErrNotACollection
	}
	return nil
}
