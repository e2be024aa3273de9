package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/humsafar/dealer-api/internal/cache"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/redisx"
	"github.com/humsafar/dealer-api/internal/repository"
	"golang.org/x/sync/singleflight"
)

type ProductService struct {
	products repository.ProductRepo
	cache    cache.Cache
	tx       repository.TxManager
	sfg      singleflight.Group // collapses concurrent cache misses
}

func NewProductService(products repository.ProductRepo, c cache.Cache, tx repository.TxManager) *ProductService {
	return &ProductService{products: products, cache: c, tx: tx}
}

// List serves the catalog from cache when possible. Cache failures are
// logged and the store is read directly.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do(redisx.KeyProductList, func() (any, error) {
		if b, err := s.cache.Get(ctx, redisx.KeyProductList); err == nil {
			var out []domain.Product
			if err := json.Unmarshal(b, &out); err == nil {
				return out, nil
			}
		} else if err != cache.ErrCacheMiss {
			slog.Warn("product cache get failed", "err", err)
		}

		out, err := s.products.List(ctx)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, redisx.KeyProductList, b, redisx.TTLProductCache); err != nil {
				slog.Warn("product cache set failed", "err", err)
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Seed loads the starter catalog. A non-empty catalog is left alone. The
// check and the inserts run in one transaction; when a concurrent seed
// wins the race, the unique product name surfaces it and this call reports
// the catalog as already seeded.
func (s *ProductService) Seed(ctx context.Context) (int, error) {
	var seeded int
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		n, err := s.products.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, p := range seedProducts() {
			if err := s.products.Create(ctx, &p); err != nil {
				return err
			}
			seeded++
		}
		return nil
	})
	if errors.Is(err, repository.ErrDuplicateName) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if seeded > 0 {
		_ = s.cache.Del(ctx, redisx.KeyProductList)
	}
	return seeded, nil
}

func seedProducts() []domain.Product {
	now := time.Now().UTC()
	mk := func(name, desc, category, grade, packaging string, price int64, stock int, specs map[string]string) domain.Product {
		return domain.Product{
			ID:             uuid.NewString(),
			Name:           name,
			Description:    desc,
			Category:       category,
			Grade:          grade,
			Packaging:      packaging,
			Price:          price,
			Stock:          stock,
			Specifications: specs,
			CreatedAt:      now,
		}
	}
	return []domain.Product{
		mk("OPC 43 Grade Cement",
			"Ordinary Portland Cement 43 Grade - Ideal for all types of construction work including RCC work, plastering, and masonry.",
			"OPC", "43", "50kg bag", 35000, 5000,
			map[string]string{"compressive_strength": "43 MPa", "setting_time": "30 min - 10 hours", "fineness": "225 m2/kg"}),
		mk("OPC 53 Grade Cement",
			"Ordinary Portland Cement 53 Grade - High strength cement for high-rise buildings and heavy-duty construction.",
			"OPC", "53", "50kg bag", 38000, 4500,
			map[string]string{"compressive_strength": "53 MPa", "setting_time": "30 min - 10 hours", "fineness": "225 m2/kg"}),
		mk("PPC Cement",
			"Portland Pozzolana Cement - Eco-friendly cement with improved workability and lower heat of hydration.",
			"PPC", "PPC", "50kg bag", 34000, 6000,
			map[string]string{"compressive_strength": "33 MPa (28 days)", "setting_time": "30 min - 10 hours", "fineness": "300 m2/kg"}),
		mk("PSC Cement",
			"Portland Slag Cement - Durable cement with better resistance to chemicals and sulfates.",
			"PSC", "PSC", "50kg bag", 34500, 3500,
			map[string]string{"compressive_strength": "33 MPa (28 days)", "setting_time": "30 min - 10 hours", "fineness": "325 m2/kg"}),
		mk("OPC 43 Grade (25kg)",
			"Ordinary Portland Cement 43 Grade in smaller 25kg packaging for small projects.",
			"OPC", "43", "25kg bag", 18500, 3000,
			map[string]string{"compressive_strength": "43 MPa", "setting_time": "30 min - 10 hours", "fineness": "225 m2/kg"}),
		mk("OPC 53 Grade (25kg)",
			"Ordinary Portland Cement 53 Grade in smaller 25kg packaging.",
			"OPC", "53", "25kg bag", 20000, 2500,
			map[string]string{"compressive_strength": "53 MPa", "setting_time": "30 min - 10 hours", "fineness": "225 m2/kg"}),
	}
}
