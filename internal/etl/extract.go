package etl

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/namefreezers/weather-etl/internal/weather"
	"github.com/namefreezers/weather-etl/internal/weather/types"
)

// Extractor fetches one raw record per city and drops the cities that fail.
type Extractor struct {
	fetcher weather.Fetcher
	logger  *zap.Logger

	// Concurrency bounds in-flight requests. 1 means strictly sequential.
	Concurrency int
}

// NewExtractor returns a sequential Extractor.
func NewExtractor(fetcher weather.Fetcher, logger *zap.Logger) *Extractor {
	return &Extractor{fetcher: fetcher, logger: logger, Concurrency: 1}
}

// Extract returns the successfully fetched records in input order. A failed
// city is logged and omitted; it never fails the batch. An empty city list
// yields an empty result.
func (e *Extractor) Extract(ctx context.Context, cities []string) []types.RawRecord {
	if e.Concurrency <= 1 {
		return e.extractSequential(ctx, cities)
	}
	return e.extractConcurrent(ctx, cities)
}

func (e *Extractor) extractSequential(ctx context.Context, cities []string) []types.RawRecord {
	records := make([]types.RawRecord, 0, len(cities))
	for _, city := range cities {
		if rec, ok := e.fetchOne(ctx, city); ok {
			records = append(records, rec)
		}
	}
	return records
}

// extractConcurrent fans out over a bounded group; each worker owns one slot
// of the result slice so input order survives.
func (e *Extractor) extractConcurrent(ctx context.Context, cities []string) []types.RawRecord {
	type slot struct {
		rec types.RawRecord
		ok  bool
	}
	slots := make([]slot, len(cities))

	var g errgroup.Group
	g.SetLimit(e.Concurrency)
	for i, city := range cities {
		g.Go(func() error {
			slots[i].rec, slots[i].ok = e.fetchOne(ctx, city)
			return nil
		})
	}
	_ = g.Wait()

	records := make([]types.RawRecord, 0, len(cities))
	for _, s := range slots {
		if s.ok {
			records = append(records, s.rec)
		}
	}
	return records
}

func (e *Extractor) fetchOne(ctx context.Context, city string) (types.RawRecord, bool) {
	e.logger.Info("fetching weather data", zap.String("city", city))

	rec, err := e.fetcher.FetchCurrent(ctx, city)
	if err != nil {
		e.logger.Error("failed to fetch weather data",
			zap.String("city", city),
			zap.Error(err),
		)
		return types.RawRecord{}, false
	}
	return rec, true
}
