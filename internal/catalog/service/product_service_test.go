package service

import (
	"context"
	"errors"
	"testing"

	"storefront-gateway/internal/catalog/domain"
)

// fakeProductRepo implements ProductRepo in memory for tests.
type fakeProductRepo struct {
	products map[string]*domain.Product
	err      error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*domain.Product{}}
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) ListPublished(ctx context.Context) ([]*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Product
	for _, p := range f.products {
		if p.Published {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Product
	for _, p := range f.products {
		if p.SellerID == sellerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if f.err != nil {
		return f.err
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *domain.Product) error {
	if f.err != nil {
		return f.err
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.products, id)
	return nil
}

func TestCreate_Success(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)

	p, err := svc.Create(context.Background(), "seller-1", ProductInput{
		Name: "Walnut desk", Description: "Solid walnut", PriceCents: 45000, Published: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated product id")
	}
	if p.SellerID != "seller-1" {
		t.Fatalf("SellerID = %q, want seller-1", p.SellerID)
	}
	if _, ok := repo.products[p.ID]; !ok {
		t.Fatal("product not persisted")
	}
}

func TestCreate_Failure_Validation(t *testing.T) {
	svc := NewService(newFakeProductRepo(), nil)

	tests := []struct {
		name string
		in   ProductInput
	}{
		{"empty name", ProductInput{Name: "  ", PriceCents: 100}},
		{"negative price", ProductInput{Name: "Desk", PriceCents: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "seller-1", tt.in); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGetPublished(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &domain.Product{ID: "p1", SellerID: "s1", Name: "Desk", Published: true}
	repo.products["p2"] = &domain.Product{ID: "p2", SellerID: "s1", Name: "Draft", Published: false}
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.GetPublished(ctx, "p1"); err != nil {
		t.Fatalf("GetPublished published: %v", err)
	}
	if _, err := svc.GetPublished(ctx, "p2"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("unpublished product: err = %v, want ErrProductNotFound", err)
	}
	if _, err := svc.GetPublished(ctx, "nope"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product: err = %v, want ErrProductNotFound", err)
	}
}

func TestUpdate_Failure_WrongSeller(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &domain.Product{ID: "p1", SellerID: "s1", Name: "Desk"}
	svc := NewService(repo, nil)

	_, err := svc.Update(context.Background(), "s2", "p1", ProductInput{Name: "Hijacked", PriceCents: 1})
	if !errors.Is(err, ErrNotProductOwner) {
		t.Fatalf("err = %v, want ErrNotProductOwner", err)
	}
	if repo.products["p1"].Name != "Desk" {
		t.Fatal("product must not be modified by another seller")
	}
}

func TestUpdate_Success(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &domain.Product{ID: "p1", SellerID: "s1", Name: "Desk", PriceCents: 100}
	svc := NewService(repo, nil)

	p, err := svc.Update(context.Background(), "s1", "p1", ProductInput{
		Name: "Standing desk", PriceCents: 200, Published: true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Name != "Standing desk" || p.PriceCents != 200 || !p.Published {
		t.Fatalf("unexpected product after update: %+v", p)
	}
}

func TestDelete_Failure_NotFound(t *testing.T) {
	svc := NewService(newFakeProductRepo(), nil)
	if err := svc.Delete(context.Background(), "s1", "nope"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestAdminRemove(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = &domain.Product{ID: "p1", SellerID: "s1", Name: "Desk"}
	svc := NewService(repo, nil)
	ctx := context.Background()

	if err := svc.AdminRemove(ctx, "p1"); err != nil {
		t.Fatalf("AdminRemove: %v", err)
	}
	if _, ok := repo.products["p1"]; ok {
		t.Fatal("product should be removed")
	}
	if err := svc.AdminRemove(ctx, "p1"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("second remove: err = %v, want ErrProductNotFound", err)
	}
}

func TestListPublished_RepoFailure(t *testing.T) {
	repo := newFakeProductRepo()
	repo.err = errors.New("db down")
	svc := NewService(repo, nil)

	if _, err := svc.ListPublished(context.Background()); err == nil {
		t.Fatal("expected repository error to surface")
	}
}
