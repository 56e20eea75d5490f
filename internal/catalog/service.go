// Package catalog supplies the read-only product list used by the editors.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-wms/internal/lineitems"
)

// loadTimeout bounds a shared fetch once it no longer follows any caller.
const loadTimeout = 30 * time.Second

// Fetcher loads products from the remote API.
type Fetcher interface {
	ListProducts(ctx context.Context) ([]lineitems.Entity, error)
}

// Service serves the product catalog from cache.
type Service struct {
	fetcher Fetcher
	cache   *Cache
	logger  *slog.Logger
	group   singleflight.Group
}

// NewService constructs the catalog service.
func NewService(fetcher Fetcher, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, cache: cache, logger: logger}
}

// Products returns the catalog. Concurrent cache misses share one fetch,
// and a caller that gives up does not cancel it for the others.
func (s *Service) Products(ctx context.Context) ([]lineitems.Entity, error) {
	key, err := s.cache.BuildKey(ctx, "wms", "catalog", "products")
	if err != nil {
		s.logger.Warn("catalog cache key", slog.Any("error", err))
		return s.fetch(ctx)
	}
	ch := s.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		var products []lineitems.Entity
		err := s.cache.FetchJSON(loadCtx, key, &products, func(ctx context.Context) (any, error) {
			return s.fetch(ctx)
		})
		return products, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]lineitems.Entity), nil
	}
}

// Refresh invalidates the cache and loads a fresh catalog.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	if err := s.cache.Bump(ctx); err != nil {
		return 0, fmt.Errorf("catalog: bump cache: %w", err)
	}
	products, err := s.Products(ctx)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// Search filters the catalog by name, or by name, brand and category when all is set.
func (s *Service) Search(ctx context.Context, query string, all bool) ([]lineitems.Entity, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	if all {
		return lineitems.SearchAll(products, query), nil
	}
	return lineitems.Search(products, query), nil
}

func (s *Service) fetch(ctx context.Context) ([]lineitems.Entity, error) {
	products, err := s.fetcher.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch products: %w", err)
	}
	if products == nil {
		products = []lineitems.Entity{}
	}
	return products, nil
}
