package cache

import (
	"context"
	"time"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
)

// SettingsCache fronts the location settings lookup that feeds the pricing
// calculator on every render.
type SettingsCache interface {
	Get(ctx context.Context, key string) (*domain.LocationSettings, bool, error)
	Set(ctx context.Context, key string, value *domain.LocationSettings, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopSettingsCache struct{}

func (NoopSettingsCache) Get(_ context.Context, _ string) (*domain.LocationSettings, bool, error) {
	return nil, false, nil
}

func (NoopSettingsCache) Set(_ context.Context, _ string, _ *domain.LocationSettings, _ time.Duration) error {
	return nil
}

func (NoopSettingsCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
