package etl

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-etl/internal/table"
	"github.com/namefreezers/weather-etl/internal/weather/types"
)

// ErrMissingCondition is returned when a record carries no weather condition
// description. It is the only fatal error of a run.
var ErrMissingCondition = errors.New("missing condition description")

// MissingConditionError identifies the record that broke the transform.
type MissingConditionError struct {
	Index int
	City  string
}

func (e *MissingConditionError) Error() string {
	if e.City == "" {
		return fmt.Sprintf("record %d: %s", e.Index, ErrMissingCondition)
	}
	return fmt.Sprintf("record %d (%s): %s", e.Index, e.City, ErrMissingCondition)
}

func (e *MissingConditionError) Unwrap() error { return ErrMissingCondition }

// Transformer flattens raw records into table rows.
type Transformer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewTransformer returns a Transformer stamping rows with the local wall clock.
func NewTransformer(logger *zap.Logger) *Transformer {
	return &Transformer{logger: logger, now: time.Now}
}

// WithClock replaces the clock used for extracted_at.
func (t *Transformer) WithClock(now func() time.Time) *Transformer {
	t.now = now
	return t
}

// Transform builds one row per record, in order. Missing optional fields
// become null cells. A record without a condition description aborts the
// whole transform and no table is returned.
func (t *Transformer) Transform(records []types.RawRecord) (*table.Table, error) {
	t.logger.Info("starting data transformation", zap.Int("records", len(records)))

	rows := make([]table.Row, 0, len(records))
	for i, rec := range records {
		row, err := t.flatten(rec)
		if err != nil {
			var mce *MissingConditionError
			if errors.As(err, &mce) {
				mce.Index = i
			}
			return nil, err
		}
		rows = append(rows, row)
	}
	return table.New(rows), nil
}

func (t *Transformer) flatten(rec types.RawRecord) (table.Row, error) {
	if len(rec.Weather) == 0 || rec.Weather[0].Description == nil {
		mce := &MissingConditionError{}
		if rec.Name != nil {
			mce.City = *rec.Name
		}
		return table.Row{}, mce
	}

	row := table.Row{
		CityName:         rec.Name,
		WeatherCondition: *rec.Weather[0].Description,
		ExtractedAt:      t.now().Format(table.TimestampLayout),
	}
	if rec.Sys != nil {
		row.Country = rec.Sys.Country
	}
	if rec.Main != nil {
		row.TemperatureC = rec.Main.Temp
		row.Humidity = rec.Main.Humidity
	}
	if rec.Wind != nil {
		row.WindSpeed = rec.Wind.Speed
	}
	return row, nil
}
