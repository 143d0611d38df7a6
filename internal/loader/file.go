package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/namefreezers/weather-etl/internal/table"
)

// ParquetSink writes Snappy-compressed parquet with no index column.
type ParquetSink struct {
	Dir string
}

func (s *ParquetSink) Format() string      { return FormatParquet }
func (s *ParquetSink) Destination() string { return filepath.Join(s.Dir, FileName(FormatParquet)) }

func (s *ParquetSink) Write(ctx context.Context, tbl *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return replaceFile(s.Destination(), func(w io.Writer) error {
		pw := parquet.NewGenericWriter[table.Row](w, parquet.Compression(&parquet.Snappy))
		if _, err := pw.Write(tbl.Rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("close parquet writer: %w", err)
		}
		return nil
	})
}

// CSVSink writes a header row and one comma-separated line per row, with
// empty cells for nulls and no index column.
type CSVSink struct {
	Dir string
}

func (s *CSVSink) Format() string      { return FormatCSV }
func (s *CSVSink) Destination() string { return filepath.Join(s.Dir, FileName(FormatCSV)) }

func (s *CSVSink) Write(ctx context.Context, tbl *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return replaceFile(s.Destination(), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(table.Columns); err != nil {
			return err
		}
		for _, row := range tbl.Rows {
			if err := cw.Write(row.Cells()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// replaceFile writes through a temp file in the destination directory and
// renames it over path, so path is either the old file or the complete new one.
func replaceFile(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
