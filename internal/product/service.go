package product

import (
	"context"
	"io"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imageFolder = "products"

// ImageStore persists uploaded bytes and hands back a public URL.
type ImageStore interface {
	Save(ctx context.Context, folder, nameHint string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Image is an optional upload accompanying a create or update.
type Image struct {
	Filename string
	Body     io.Reader
}

type Service interface {
	List(ctx context.Context, filter ListFilter) (ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, caller auth.Identity, in Input, img *Image) (*Product, error)
	Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in Input, img *Image) (*Product, error)
	Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error
}

type service struct {
	repo   Repository
	images ImageStore
}

func NewService(repo Repository, images ImageStore) Service {
	return &service{repo: repo, images: images}
}

func (s *service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return s.repo.List(ctx, filter.Normalize())
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, caller auth.Identity, in Input, img *Image) (*Product, error) {
	log := logger.ForLayer(ctx, "service", "Create")

	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	if err := in.Validate(); err != nil {
		log.Warn("invalid product input", zap.Error(err))
		return nil, err
	}

	p := &Product{}
	in.apply(p)

	if img != nil {
		url, err := s.images.Save(ctx, imageFolder, in.Name, img.Body)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.discard(ctx, p.ImageURL)
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID.String()))
	return p, nil
}

func (s *service) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in Input, img *Image) (*Product, error) {
	log := logger.ForLayer(ctx, "service", "Update").With(zap.String("product_id", id.String()))

	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	if err := in.Validate(); err != nil {
		log.Warn("invalid product input", zap.Error(err))
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)

	oldImage := p.ImageURL
	if img != nil {
		url, err := s.images.Save(ctx, imageFolder, in.Name, img.Body)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if p.ImageURL != oldImage {
			s.discard(ctx, p.ImageURL)
		}
		return nil, err
	}

	if p.ImageURL != oldImage {
		s.discard(ctx, oldImage)
	}

	log.Info("product updated")
	return p, nil
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if !caller.IsStaff() {
		return ErrForbidden
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, p.ImageURL)

	logger.ForLayer(ctx, "service", "Delete").Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

// discard removes a stored image; failures are logged and otherwise ignored.
func (s *service) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logger.FromCtx(ctx).Warn("failed to remove product image", zap.String("url", url), zap.Error(err))
	}
}
