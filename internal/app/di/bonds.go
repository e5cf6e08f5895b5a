// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bond_dashboard/internal/feature/bonds/adapters"
	"bond_dashboard/internal/feature/bonds/registry"
	"bond_dashboard/internal/feature/bonds/transport/handler"
	"bond_dashboard/internal/feature/bonds/usecase"
	"bond_dashboard/internal/platform/cache"
	platformhandler "bond_dashboard/internal/platform/http/handler"
)

// cacheNamespace prefixes every cache key written by the bonds feature.
const cacheNamespace = "bonds"

// Bonds bundles the wired components of the bonds feature.
type Bonds struct {
	Handler *handler.DashboardHandler
	Store   platformhandler.Pinger

	cache *cache.CachingBondRepository
}

// NewBonds wires the bond repository, its cache, the usecase and the handler.
// If Redis is available, cached results are shared through it.
// Otherwise, they are kept in process memory.
func NewBonds(db *gorm.DB, rdb *redis.Client, ttl time.Duration, rec cache.Recorder) Bonds {
	store := adapters.NewBondRepository(db, adapters.LoadConfig())

	if rdb != nil {
		slog.Info("bond query cache backed by Redis", "ttl", ttl)
	} else {
		slog.Info("bond query cache backed by process memory", "ttl", ttl)
	}
	cached := cache.NewCachingBondRepository(rdb, ttl, store, cacheNamespace, rec)

	uc := usecase.NewDashboardUsecase(registry.Default(), cached)
	return Bonds{
		Handler: handler.NewDashboardHandler(uc, cached),
		Store:   store,
		cache:   cached,
	}
}
