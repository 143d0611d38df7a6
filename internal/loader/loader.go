// Package loader persists a weather table to its configured sinks. Sink
// failures are captured in a Result and logged; they never abort the run.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-etl/internal/table"
)

const (
	FormatParquet  = "parquet"
	FormatCSV      = "csv"
	FormatPostgres = "postgres"
)

// BaseName is the output file name without extension.
const BaseName = "weather_analytics_data"

// ErrUnsupportedFormat is reported for a file format other than parquet or csv.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Sink is one destination for a table. Write replaces whatever the
// destination held before.
type Sink interface {
	Format() string
	Destination() string
	Write(ctx context.Context, tbl *table.Table) error
}

// Result is the outcome of writing a table to one sink.
type Result struct {
	Format      string
	Destination string
	Rows        int
	Err         error
}

// OK reports whether the write succeeded.
func (r Result) OK() bool { return r.Err == nil }

// FileName returns the output file name for format.
func FileName(format string) string {
	return BaseName + "." + format
}

// Loader writes tables to sinks and reports the outcome of each.
type Loader struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load writes tbl to dir/weather_analytics_data.<format>, overwriting any
// existing file. format is parquet or csv.
func (l *Loader) Load(ctx context.Context, tbl *table.Table, format, dir string) Result {
	sink, err := NewFileSink(format, dir)
	if err != nil {
		l.logger.Error("error loading data", zap.String("format", format), zap.Error(err))
		return Result{Format: format, Err: err}
	}
	return l.Write(ctx, tbl, sink)
}

// Write writes tbl to sink and never panics.
func (l *Loader) Write(ctx context.Context, tbl *table.Table, sink Sink) (res Result) {
	res = Result{Format: sink.Format(), Destination: sink.Destination(), Rows: tbl.Len()}

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("%s sink panicked: %v", sink.Format(), p)
		}
		if res.Err != nil {
			res.Rows = 0
			l.logger.Error("error loading data",
				zap.String("format", res.Format),
				zap.String("destination", res.Destination),
				zap.Error(res.Err),
			)
			return
		}
		l.logger.Info("data successfully loaded",
			zap.String("format", res.Format),
			zap.String("destination", res.Destination),
			zap.Int("rows", res.Rows),
		)
	}()

	if tbl == nil {
		res.Err = errors.New("nil table")
		return res
	}
	res.Err = sink.Write(ctx, tbl)
	return res
}

// NewFileSink returns the file sink for format inside dir.
func NewFileSink(format, dir string) (Sink, error) {
	switch strings.ToLower(format) {
	case FormatParquet:
		return &ParquetSink{Dir: dir}, nil
	case FormatCSV:
		return &CSVSink{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
