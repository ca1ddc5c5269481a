package cache

import (
	"context"
	"time"

	"github.com/fadyboles-sys/presteg-store/internal/domain"
)

// ReportCache holds the read-side copy of a daily report keyed by date.
// Writers invalidate the key after every sale or restock so readers always
// see the latest recompute.
type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.DailyReport, bool, error)
	Set(ctx context.Context, key string, report *domain.DailyReport, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*domain.DailyReport, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *domain.DailyReport, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
