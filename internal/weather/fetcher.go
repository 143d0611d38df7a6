package weather

import (
	"context"

	"github.com/namefreezers/weather-etl/internal/weather/types"
)

// Fetcher returns the raw current-weather record for one city.
type Fetcher interface {
	FetchCurrent(ctx context.Context, city string) (types.RawRecord, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, city string) (types.RawRecord, error)

func (f FetcherFunc) FetchCurrent(ctx context.Context, city string) (types.RawRecord, error) {
	return f(ctx, city)
}
