// Package table holds the flattened weather rows produced by the transform
// stage and the fixed column schema every sink writes.
package table

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// TimestampLayout is the second-precision local wall-clock format of extracted_at.
const TimestampLayout = "2006-01-02 15:04:05"

// Columns is the fixed output schema, in order.
var Columns = []string{
	"city_name",
	"country",
	"temperature_c",
	"humidity",
	"weather_condition",
	"wind_speed",
	"extracted_at",
}

// Row is one flattened weather observation. Nil pointers are null cells.
type Row struct {
	CityName         *string  `parquet:"city_name,optional" db:"city_name"`
	Country          *string  `parquet:"country,optional" db:"country"`
	TemperatureC     *float64 `parquet:"temperature_c,optional" db:"temperature_c"`
	Humidity         *int64   `parquet:"humidity,optional" db:"humidity"`
	WeatherCondition string   `parquet:"weather_condition" db:"weather_condition"`
	WindSpeed        *float64 `parquet:"wind_speed,optional" db:"wind_speed"`
	ExtractedAt      string   `parquet:"extracted_at" db:"extracted_at"`
}

// Cells renders the row as strings in column order. Null cells are empty.
func (r Row) Cells() []string {
	return r.cells("")
}

func (r Row) cells(null string) []string {
	return []string{
		str(r.CityName, null),
		str(r.Country, null),
		float(r.TemperatureC, null),
		integer(r.Humidity, null),
		r.WeatherCondition,
		float(r.WindSpeed, null),
		r.ExtractedAt,
	}
}

func str(p *string, null string) string {
	if p == nil {
		return null
	}
	return *p
}

func float(p *float64, null string) string {
	if p == nil {
		return null
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func integer(p *int64, null string) string {
	if p == nil {
		return null
	}
	return strconv.FormatInt(*p, 10)
}

// Table is an ordered set of rows sharing Columns.
type Table struct {
	Rows []Row
}

// New returns a table holding rows in the given order.
func New(rows []Row) *Table {
	return &Table{Rows: rows}
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Head returns at most the first n rows.
func (t *Table) Head(n int) []Row {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

const nullCell = "NULL"

// Preview writes the first n rows as an aligned text table, with a leading
// positional index column, the way a dataframe head is shown.
func (t *Table) Preview(w io.Writer, n int) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(append([]string{""}, Columns...))
	tw.SetAutoFormatHeaders(false)
	tw.SetBorder(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)

	for i, r := range t.Head(n) {
		tw.Append(append([]string{fmt.Sprint(i)}, r.cells(nullCell)...))
	}
	tw.Render()
}
