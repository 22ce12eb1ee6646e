package services

import (
	"context"
	"errors"
	"strings"

	"stockroom/internal/logger"
	"stockroom/internal/models"

	"go.uber.org/zap"
)

// ErrForbidden marks an ownership mismatch; handlers map it to 403.
var ErrForbidden = errors.New("not authorized to access this product")

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListByOwner(ctx context.Context, userID int64) ([]*models.Product, error)
	UpdateFields(ctx context.Context, id int64, input *models.UpdateProductRequest, image *models.FileInfo) error
	Delete(ctx context.Context, id int64) error
}

type ProductService struct {
	repo ProductRepo
}

func NewProductService(repo ProductRepo) *ProductService {
	return &ProductService{repo: repo}
}

// canAccess is the single ownership predicate shared by every product
// operation: the owner reference must match the requesting principal.
func canAccess(principal *models.User, p *models.Product) bool {
	return p.UserID == principal.ID
}

type CreateProductInput struct {
	Name        string
	SKU         string
	Category    string
	Quantity    string
	Price       string
	Description string
	Image       *models.FileInfo
}

func (s *ProductService) Create(ctx context.Context, principal *models.User, input CreateProductInput) (*models.Product, error) {
	logger.Log.Info("creating product (service)", zap.Int64("user_id", principal.ID), zap.String("name", input.Name))

	if input.SKU == "" {
		input.SKU = "SKU"
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", input.Name},
		{"category", input.Category},
		{"quantity", input.Quantity},
		{"price", input.Price},
		{"description", input.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ErrValidation{Missing: missing}
	}

	p := &models.Product{
		UserID:      principal.ID,
		Name:        strings.TrimSpace(input.Name),
		SKU:         strings.TrimSpace(input.SKU),
		Category:    strings.TrimSpace(input.Category),
		Quantity:    strings.TrimSpace(input.Quantity),
		Price:       strings.TrimSpace(input.Price),
		Description: strings.TrimSpace(input.Description),
		Image:       input.Image,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns only the requester's products, newest first.
func (s *ProductService) List(ctx context.Context, principal *models.User) ([]*models.Product, error) {
	return s.repo.ListByOwner(ctx, principal.ID)
}

func (s *ProductService) Get(ctx context.Context, principal *models.User, id int64) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(principal, p) {
		logger.Log.Warn("ownership mismatch on product get",
			zap.Int64("product_id", id), zap.Int64("user_id", principal.ID), zap.Int64("owner_id", p.UserID))
		return nil, ErrForbidden
	}
	return p, nil
}

// Update applies a presence-based patch. A nil field keeps the stored value;
// so does a present but empty value, since required fields cannot be blanked.
func (s *ProductService) Update(ctx context.Context, principal *models.User, id int64, input *models.UpdateProductRequest, image *models.FileInfo) (*models.Product, error) {
	logger.Log.Info("updating product (service)", zap.Int64("product_id", id), zap.Int64("user_id", principal.ID))

	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}

	dropEmpty := func(v **string) {
		if *v != nil && strings.TrimSpace(**v) == "" {
			*v = nil
		}
	}
	dropEmpty(&input.Name)
	dropEmpty(&input.SKU)
	dropEmpty(&input.Category)
	dropEmpty(&input.Quantity)
	dropEmpty(&input.Price)
	dropEmpty(&input.Description)

	if err := s.repo.UpdateFields(ctx, id, input, image); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, principal *models.User, id int64) error {
	logger.Log.Info("deleting product (service)", zap.Int64("product_id", id), zap.Int64("user_id", principal.ID))

	if _, err := s.Get(ctx, principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
