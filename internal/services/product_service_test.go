package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"stockroom/internal/models"
	"stockroom/internal/repository"
)

type mockProductRepo struct {
	products map[int64]*models.Product
	nextID   int64
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[int64]*models.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, p *models.Product) error {
	m.nextID++
	p.ID = m.nextID
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) ListByOwner(_ context.Context, userID int64) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range m.products {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockProductRepo) UpdateFields(_ context.Context, id int64, input *models.UpdateProductRequest, image *models.FileInfo) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.SKU != nil {
		p.SKU = *input.SKU
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Quantity != nil {
		p.Quantity = *input.Quantity
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if image != nil {
		p.Image = image
	}
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

var (
	owner  = &models.User{ID: 1, Name: "Ana", Email: "a@x.com"}
	other  = &models.User{ID: 2, Name: "Boris", Email: "b@x.com"}
	sample = CreateProductInput{
		Name:        "Widget",
		Category:    "tools",
		Quantity:    "10",
		Price:       "99.90",
		Description: "a widget",
	}
)

func TestCreateProduct(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	p, err := service.Create(context.Background(), owner, sample)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.UserID != owner.ID {
		t.Fatalf("product not bound to creator: %d", p.UserID)
	}
	if p.SKU != "SKU" {
		t.Fatalf("missing SKU must default to SKU, got %q", p.SKU)
	}
}

func TestCreateProduct_MissingFields(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	input := sample
	input.Name = ""
	input.Price = "  "

	_, err := service.Create(context.Background(), owner, input)
	var vErr *ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(vErr.Missing) != 2 {
		t.Fatalf("expected name and price reported missing, got %v", vErr.Missing)
	}
}

func TestGetProduct_Ownership(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	p, _ := service.Create(context.Background(), owner, sample)

	if _, err := service.Get(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("owner must read own product: %v", err)
	}
	if _, err := service.Get(context.Background(), other, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign read must be forbidden, got %v", err)
	}
	if _, err := service.Get(context.Background(), owner, 999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing product must report not found, got %v", err)
	}
}

func TestUpdateProduct_ForeignForbidden(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	p, _ := service.Create(context.Background(), owner, sample)

	name := "Stolen"
	_, err := service.Update(context.Background(), other, p.ID, &models.UpdateProductRequest{Name: &name}, nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update must be forbidden, got %v", err)
	}
	if repo.products[p.ID].Name != "Widget" {
		t.Fatal("forbidden update must leave the product unchanged")
	}

	if err := service.Delete(context.Background(), other, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete must be forbidden, got %v", err)
	}
	if _, ok := repo.products[p.ID]; !ok {
		t.Fatal("forbidden delete must leave the product in place")
	}
}

func TestUpdateProduct_PresencePatch(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	p, _ := service.Create(context.Background(), owner, sample)

	// Empty price stays as stored; description changes.
	empty := ""
	desc := "new description"
	updated, err := service.Update(context.Background(), owner, p.ID, &models.UpdateProductRequest{
		Price:       &empty,
		Description: &desc,
	}, nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price != "99.90" {
		t.Fatalf("empty price must keep stored value, got %q", updated.Price)
	}
	if updated.Description != "new description" {
		t.Fatalf("description not updated: %q", updated.Description)
	}

	// "0" is a real value, not absence.
	zero := "0"
	updated, err = service.Update(context.Background(), owner, p.ID, &models.UpdateProductRequest{Quantity: &zero}, nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Quantity != "0" {
		t.Fatalf("zero quantity must be stored, got %q", updated.Quantity)
	}
}

func TestUpdateProduct_ImageReplaced(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	p, _ := service.Create(context.Background(), owner, sample)

	img := &models.FileInfo{FileName: "a.png", FilePath: "/uploads/a.png", FileType: "image/png", FileSize: "1.20 KB"}
	updated, err := service.Update(context.Background(), owner, p.ID, &models.UpdateProductRequest{}, img)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Image == nil || updated.Image.FileName != "a.png" {
		t.Fatal("image metadata not attached")
	}

	// A patch without a new upload keeps the existing image.
	name := "Widget v2"
	updated, err = service.Update(context.Background(), owner, p.ID, &models.UpdateProductRequest{Name: &name}, nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Image == nil {
		t.Fatal("existing image must survive a metadata-only patch")
	}
}

func TestListProducts_OwnerScoped(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	service.Create(context.Background(), owner, sample)
	service.Create(context.Background(), owner, sample)
	foreign := sample
	foreign.Name = "Gadget"
	service.Create(context.Background(), other, foreign)

	list, err := service.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 products for owner, got %d", len(list))
	}
	for _, p := range list {
		if p.UserID != owner.ID {
			t.Fatalf("foreign product leaked into listing: %+v", p)
		}
	}
}

func TestDeleteProduct(t *testing.T) {
	repo := newMockProductRepo()
	service := NewProductService(repo)

	p, _ := service.Create(context.Background(), owner, sample)
	if err := service.Delete(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := service.Delete(context.Background(), owner, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete must report not found, got %v", err)
	}
}
